/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package pool

import (
	"context"
	"io"
	"sync"
	"time"

	libatm "github.com/nabbar/golib/atomic"
	libtls "github.com/nabbar/golib/certificates"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	logent "github.com/nabbar/golib/logger/entry"
	loglvl "github.com/nabbar/golib/logger/level"
	libsem "golang.org/x/sync/semaphore"

	libcnn "github/sabouaram/httpool/connection"
	cnnstt "github/sabouaram/httpool/connection/state"
	libori "github/sabouaram/httpool/origin"
)

type pool struct {
	m sync.Mutex
	i map[libori.Origin]map[libcnn.Connection]struct{}
	s *libsem.Weighted
	c Config
	t libtls.TLSConfig
	f libatm.Value[libcnn.FuncConnection]
	l libatm.Value[liblog.FuncLog]
	w time.Time // last sweep
	d bool      // closed
}

// funcMake constructs the new connection admitted by acquire when no pooled
// connection can serve the request. The tunnel variant performs the CONNECT
// exchange here.
type funcMake func(ctx context.Context, tmo libori.Timeout) (libcnn.Connection, liberr.Error)

func (o *pool) SetLogger(fct liblog.FuncLog) {
	o.l.Store(fct)
}

func (o *pool) RegisterConnectionFactory(fct libcnn.FuncConnection) {
	if fct != nil {
		o.f.Store(fct)
	}
}

func (o *pool) factory() libcnn.FuncConnection {
	if f := o.f.Load(); f != nil {
		return f
	}

	return libcnn.New
}

func (o *pool) logEntry(lvl loglvl.Level, pattern string, args ...interface{}) logent.Entry {
	if f := o.l.Load(); f != nil {
		if g := f(); g != nil {
			return g.Entry(lvl, pattern, args...)
		}
	}

	return logent.New(loglvl.NilLevel)
}

func (o *pool) Request(ctx context.Context, method string, u libori.URL, hdr libori.Headers, body io.Reader, tmo libori.Timeout) (*libori.Response, liberr.Error) {
	return o.dispatch(ctx, method, u.Origin(), u, hdr, body, tmo, o.c.HTTP2, nil)
}

// dispatch runs the selection / admission / send loop against the pool entry
// keyed by org, sending the given wire URL on the connection. The forwarding
// proxy variant keys by the proxy origin while the wire URL carries the
// absolute-form target of the requested origin.
func (o *pool) dispatch(ctx context.Context, method string, org libori.Origin, wire libori.URL, hdr libori.Headers, body io.Reader, tmo libori.Timeout, h2 bool, mk funcMake) (*libori.Response, liberr.Error) {
	tmo = tmo.Merge(o.c.Timeout)

	if o.c.KeepAliveExpiry > 0 {
		o.sweep()
	}

	for {
		cnn, err := o.acquire(ctx, org, tmo, h2, mk)

		if err != nil {
			return nil, err
		}

		rsp, err := cnn.Request(ctx, method, wire, hdr, body, tmo)

		if err != nil {
			if err.HasCode(libcnn.ErrorConnectionRequired) {
				// the chosen connection turned out unusable for this
				// caller; a fresh selection runs
				if cnn.State() == cnnstt.Closed {
					o.evict(cnn)
				}
				continue
			}

			o.evict(cnn)

			return nil, err
		}

		rsp.Body = newStream(rsp.Body, cnn, o.responseClosed)

		return rsp, nil
	}
}

// acquire returns a reusable pooled connection for the origin, or constructs
// a new one, waits for admission and inserts it.
func (o *pool) acquire(ctx context.Context, org libori.Origin, tmo libori.Timeout, h2 bool, mk funcMake) (libcnn.Connection, liberr.Error) {
	if cnn := o.lookup(org, h2); cnn != nil {
		return cnn, nil
	}

	var (
		cnn libcnn.Connection
		err liberr.Error
	)

	if mk != nil {
		if cnn, err = mk(ctx, tmo); err != nil {
			return nil, err
		}
	} else {
		cnn = o.factory()(libcnn.Config{
			Origin: org,
			HTTP2:  h2,
			TLS:    o.t,
		})
	}

	if f := o.l.Load(); f != nil {
		cnn.SetLogger(f)
	}

	// admission waits outside the index lock
	if o.s != nil {
		var (
			cnl context.CancelFunc
			atx = ctx
		)

		if tmo.Pool > 0 {
			atx, cnl = context.WithTimeout(ctx, tmo.Pool.Time())
		}

		var e = o.s.Acquire(atx, 1)

		if cnl != nil {
			cnl()
		}

		if e != nil {
			_ = cnn.Close()
			return nil, ErrorPoolTimeout.Error(e)
		}
	}

	o.m.Lock()

	if o.d {
		o.m.Unlock()
		o.releasePermit()
		_ = cnn.Close()
		return nil, ErrorPoolClosed.Error(nil)
	}

	o.addLocked(cnn)
	o.m.Unlock()

	o.logEntry(loglvl.DebugLevel, "new connection admitted").FieldAdd("origin", org.String()).Log()

	return cnn, nil
}

// lookup scans the per-origin set once: a live idle connection wins, then an
// in-flight HTTP/2 connection, then a pending connection shared speculatively
// when HTTP/2 is enabled and no HTTP/1.1 connection was observed for the
// origin. Dropped idle connections are evicted in the same pass.
func (o *pool) lookup(org libori.Origin, h2 bool) libcnn.Connection {
	var dead []libcnn.Connection

	o.m.Lock()

	var (
		reuse libcnn.Connection
		mux   libcnn.Connection
		pend  libcnn.Connection
		h1    bool
	)

	for cnn := range o.i[org] {
		switch cnn.State() {
		case cnnstt.Idle:
			if cnn.IsConnectionDropped() {
				if o.removeLocked(cnn) {
					o.releasePermit()
					dead = append(dead, cnn)
				}
				continue
			}

			if reuse == nil {
				reuse = cnn
			}

		case cnnstt.Active:
			if mux == nil && cnn.IsHTTP2() {
				mux = cnn
			}

		case cnnstt.Pending:
			if pend == nil {
				pend = cnn
			}
		}

		if cnn.IsHTTP11() {
			h1 = true
		}
	}

	var pick = reuse

	if pick == nil {
		pick = mux
	}

	if pick == nil && h2 && !h1 {
		pick = pend
	}

	if pick != nil && !pick.MarkAsReady() {
		pick = nil
	}

	o.m.Unlock()

	for _, cnn := range dead {
		_ = cnn.Close()
		o.logEntry(loglvl.DebugLevel, "dropped idle connection evicted").FieldAdd("origin", org.String()).Log()
	}

	return pick
}

// evict removes the connection from the pool, releasing its admission
// permit, then closes it.
func (o *pool) evict(cnn libcnn.Connection) {
	o.m.Lock()

	if o.removeLocked(cnn) {
		o.releasePermit()
	}

	o.m.Unlock()

	_ = cnn.Close()
}

// responseClosed runs exactly once per request, when the wrapped response
// body is disposed of.
func (o *pool) responseClosed(cnn libcnn.Connection) {
	o.m.Lock()

	switch cnn.State() {
	case cnnstt.Closed:
		if o.removeLocked(cnn) {
			o.releasePermit()
		}

		o.m.Unlock()
		return

	case cnnstt.Idle:
		if o.c.MaxKeepAlive > 0 && o.lenLocked() > o.c.MaxKeepAlive {
			if o.removeLocked(cnn) {
				o.releasePermit()
			}

			o.m.Unlock()
			_ = cnn.Close()
			return
		}

		if o.c.KeepAliveExpiry > 0 {
			cnn.SetExpireAt(time.Now().Add(o.c.KeepAliveExpiry.Time()))
		}

	default:
		// still active: an HTTP/2 connection with other live streams
	}

	o.m.Unlock()
}

func (o *pool) releasePermit() {
	if o.s != nil {
		o.s.Release(1)
	}
}

func (o *pool) Close() error {
	var all []libcnn.Connection

	o.m.Lock()

	o.d = true

	for _, set := range o.i {
		for cnn := range set {
			all = append(all, cnn)
			o.releasePermit()
		}
	}

	o.i = make(map[libori.Origin]map[libcnn.Connection]struct{})

	o.m.Unlock()

	var err error

	for _, cnn := range all {
		if e := cnn.Close(); e != nil {
			err = e
		}
	}

	return err
}
