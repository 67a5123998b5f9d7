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

package connection

import (
	"bufio"
	"context"
	"crypto/tls"
	"io"
	"net"
	"sync"
	"time"

	libatm "github.com/nabbar/golib/atomic"
	libtls "github.com/nabbar/golib/certificates"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	logent "github.com/nabbar/golib/logger/entry"
	loglvl "github.com/nabbar/golib/logger/level"
	libhtp "golang.org/x/net/http2"

	cnnstt "github/sabouaram/httpool/connection/state"
	libori "github/sabouaram/httpool/origin"
)

type cnn struct {
	m sync.Mutex
	o libori.Origin
	h bool
	t libtls.TLSConfig
	l libatm.Value[liblog.FuncLog]
	x libatm.Value[time.Time]

	c net.Conn
	b *bufio.Reader
	s cnnstt.State
	p Protocol
	u bool // already served a request at least once
	n int  // live http2 streams
	cc *libhtp.ClientConn
}

func (o *cnn) SetLogger(fct liblog.FuncLog) {
	o.l.Store(fct)
}

func (o *cnn) logEntry(lvl loglvl.Level, pattern string, args ...interface{}) logent.Entry {
	if f := o.l.Load(); f != nil {
		if g := f(); g != nil {
			return g.Entry(lvl, pattern, args...)
		}
	}

	return logent.New(loglvl.NilLevel)
}

func (o *cnn) Origin() libori.Origin {
	return o.o
}

func (o *cnn) Socket() net.Conn {
	o.m.Lock()
	defer o.m.Unlock()

	return o.c
}

func (o *cnn) State() cnnstt.State {
	o.m.Lock()
	defer o.m.Unlock()

	return o.s
}

func (o *cnn) Protocol() Protocol {
	o.m.Lock()
	defer o.m.Unlock()

	return o.p
}

func (o *cnn) IsHTTP11() bool {
	o.m.Lock()
	defer o.m.Unlock()

	return o.s != cnnstt.Pending && o.p == ProtocolHTTP1
}

func (o *cnn) IsHTTP2() bool {
	o.m.Lock()
	defer o.m.Unlock()

	return o.s != cnnstt.Pending && o.p == ProtocolHTTP2
}

func (o *cnn) ActiveStreams() int {
	o.m.Lock()
	defer o.m.Unlock()

	return o.n
}

func (o *cnn) ExpiresAt() time.Time {
	return o.x.Load()
}

func (o *cnn) SetExpireAt(t time.Time) {
	o.x.Store(t)
}

func (o *cnn) Connect(ctx context.Context, tmo libori.Timeout) liberr.Error {
	o.m.Lock()
	defer o.m.Unlock()

	return o.connectLocked(ctx, tmo)
}

func (o *cnn) connectLocked(ctx context.Context, tmo libori.Timeout) liberr.Error {
	if o.s == cnnstt.Closed {
		return ErrorConnectionClosed.Error(nil)
	} else if o.s != cnnstt.Pending {
		return nil
	}

	if o.c == nil {
		var d = &net.Dialer{
			Timeout: tmo.Connect.Time(),
		}

		if con, err := d.DialContext(ctx, "tcp", o.o.Addr()); err != nil {
			o.s = cnnstt.Closed
			return ErrorDialConnection.Error(err)
		} else {
			o.c = con
		}
	}

	if o.o.IsTLS() {
		if err := o.handshakeLocked(ctx, tmo); err != nil {
			return err
		}
	}

	if o.p != ProtocolHTTP2 {
		o.p = ProtocolHTTP1
		o.b = bufio.NewReader(o.c)
	}

	o.s = cnnstt.Ready

	o.logEntry(loglvl.DebugLevel, "connection established").FieldAdd("origin", o.o.String()).FieldAdd("protocol", o.p.Code()).Log()

	return nil
}

func (o *cnn) handshakeLocked(ctx context.Context, tmo libori.Timeout) liberr.Error {
	var ssl *tls.Config

	if o.t != nil {
		ssl = o.t.TlsConfig(o.o.Host)
	} else {
		ssl = libtls.Default.TlsConfig(o.o.Host)
	}

	if ssl == nil {
		ssl = &tls.Config{}
	}

	if ssl.ServerName == "" {
		ssl.ServerName = o.o.Host
	}

	if o.h {
		ssl.NextProtos = []string{libhtp.NextProtoTLS, "http/1.1"}
	} else {
		ssl.NextProtos = []string{"http/1.1"}
	}

	var (
		cnl context.CancelFunc
		tlc = tls.Client(o.c, ssl)
	)

	if tmo.Connect > 0 {
		ctx, cnl = context.WithTimeout(ctx, tmo.Connect.Time())
		defer cnl()
	}

	if err := tlc.HandshakeContext(ctx); err != nil {
		o.s = cnnstt.Closed
		_ = o.c.Close()
		o.c = nil
		return ErrorTLSHandshake.Error(err)
	}

	o.c = tlc

	if tlc.ConnectionState().NegotiatedProtocol == libhtp.NextProtoTLS {
		if cc, err := (&libhtp.Transport{}).NewClientConn(o.c); err != nil {
			o.s = cnnstt.Closed
			_ = o.c.Close()
			o.c = nil
			return ErrorHTTP2Configure.Error(err)
		} else {
			o.p = ProtocolHTTP2
			o.cc = cc
		}
	}

	return nil
}

func (o *cnn) Request(ctx context.Context, method string, u libori.URL, hdr libori.Headers, body io.Reader, tmo libori.Timeout) (*libori.Response, liberr.Error) {
	o.m.Lock()

	if o.s == cnnstt.Pending {
		if err := o.connectLocked(ctx, tmo); err != nil {
			o.m.Unlock()
			return nil, err
		}
	}

	if o.s == cnnstt.Closed {
		o.m.Unlock()
		return nil, ErrorConnectionRequired.Error(nil)
	}

	if o.p == ProtocolHTTP2 {
		o.n++
		o.s = cnnstt.Active
		o.m.Unlock()

		return o.requestHTTP2(ctx, method, u, hdr, body, tmo)
	}

	if !o.s.IsReusable() {
		// another caller owns this HTTP/1.1 connection
		o.m.Unlock()
		return nil, ErrorConnectionRequired.Error(nil)
	}

	var reused = o.u

	o.s = cnnstt.Active
	o.u = true
	o.m.Unlock()

	return o.requestHTTP1(ctx, method, u, hdr, body, tmo, reused)
}

func (o *cnn) h2conn() *libhtp.ClientConn {
	o.m.Lock()
	defer o.m.Unlock()

	return o.cc
}

// release moves an HTTP/1.1 connection back to Idle once its response body
// has been fully consumed.
func (o *cnn) release() {
	o.m.Lock()
	defer o.m.Unlock()

	if o.s == cnnstt.Active {
		o.s = cnnstt.Idle
	}
}

// streamDone unbinds one HTTP/2 stream; the connection goes Idle when the
// last one ends.
func (o *cnn) streamDone() {
	o.m.Lock()
	defer o.m.Unlock()

	if o.n > 0 {
		o.n--
	}

	if o.n == 0 && o.s == cnnstt.Active {
		o.s = cnnstt.Idle
	}
}

func (o *cnn) Close() error {
	o.m.Lock()
	defer o.m.Unlock()

	return o.closeLocked()
}

func (o *cnn) closeLocked() error {
	if o.s == cnnstt.Closed && o.c == nil {
		return nil
	}

	o.s = cnnstt.Closed

	var err error

	if o.cc != nil {
		err = o.cc.Close()
		o.cc = nil
		o.c = nil
		return err
	}

	if o.c != nil {
		err = o.c.Close()
		o.c = nil
	}

	o.b = nil

	return err
}

func (o *cnn) Hijack() net.Conn {
	o.m.Lock()
	defer o.m.Unlock()

	var con = o.c

	o.c = nil
	o.b = nil
	o.s = cnnstt.Closed

	return con
}

func (o *cnn) MarkAsReady() bool {
	o.m.Lock()
	defer o.m.Unlock()

	o.x.Store(time.Time{})

	switch {
	case o.s == cnnstt.Closed:
		return false

	case o.s == cnnstt.Pending:
		// speculative claim, resolved at request time
		return true

	case o.p == ProtocolHTTP2:
		return true

	case o.s.IsReusable():
		o.s = cnnstt.Ready
		return true

	default:
		return false
	}
}

func (o *cnn) IsConnectionDropped() bool {
	o.m.Lock()
	defer o.m.Unlock()

	if o.s == cnnstt.Closed {
		return true
	} else if o.c == nil {
		return false
	}

	if o.cc != nil {
		return !o.cc.CanTakeNewRequest()
	}

	// A one byte read under an immediate deadline: a timeout means the peer
	// is silent and the socket alive; data or any other error on an idle
	// connection means it cannot be reused.
	_ = o.c.SetReadDeadline(time.Now().Add(time.Millisecond))

	defer func() {
		_ = o.c.SetReadDeadline(time.Time{})
	}()

	var one [1]byte

	if _, err := o.c.Read(one[:]); err == nil {
		return true
	} else if ner, ok := err.(net.Error); ok && ner.Timeout() {
		return false
	}

	return true
}
