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
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	libdur "github.com/nabbar/golib/duration"
	liberr "github.com/nabbar/golib/errors"

	libori "github/sabouaram/httpool/origin"
)

// newWireRequest maps the wire URL onto a net/http request. The target is
// stored in the URL opaque field so the request line carries it verbatim:
// origin-form for direct requests, absolute-form for forwarded proxy
// requests, authority-form for CONNECT. Header names are canonicalised and
// collected in an http.Header map: values of one name keep their order, the
// order between distinct names is not kept.
func (o *cnn) newWireRequest(ctx context.Context, method string, u libori.URL, hdr libori.Headers, body io.Reader) *http.Request {
	var (
		hst string
		hmp = make(http.Header, len(hdr))
	)

	for _, h := range hdr {
		if strings.EqualFold(h.Key, "Host") {
			if hst == "" {
				hst = h.Value
			}
			continue
		}

		var k = textproto.CanonicalMIMEHeaderKey(h.Key)
		hmp[k] = append(hmp[k], h.Value)
	}

	if hst == "" {
		hst = u.Origin().HostHeader()
	}

	var (
		bdy io.ReadCloser
		cnl int64
	)

	switch v := body.(type) {
	case nil:
		bdy = nil
	case *bytes.Buffer:
		cnl = int64(v.Len())
		bdy = io.NopCloser(v)
	case *bytes.Reader:
		cnl = int64(v.Len())
		bdy = io.NopCloser(v)
	case *strings.Reader:
		cnl = int64(v.Len())
		bdy = io.NopCloser(v)
	default:
		cnl = -1
		bdy = io.NopCloser(body)
	}

	var req = &http.Request{
		Method: method,
		URL: &url.URL{
			Scheme: u.Scheme,
			Host:   u.Origin().Addr(),
			Opaque: u.Target,
		},
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        hmp,
		Host:          hst,
		Body:          bdy,
		ContentLength: cnl,
	}

	return req.WithContext(ctx)
}

func (o *cnn) requestHTTP1(ctx context.Context, method string, u libori.URL, hdr libori.Headers, body io.Reader, tmo libori.Timeout, reused bool) (*libori.Response, liberr.Error) {
	o.m.Lock()
	var con, brd = o.c, o.b
	o.m.Unlock()

	if con == nil || brd == nil {
		return nil, ErrorConnectionRequired.Error(nil)
	}

	var req = o.newWireRequest(ctx, method, u, hdr, body)

	if tmo.Read > 0 {
		_ = con.SetReadDeadline(time.Now().Add(tmo.Read.Time()))
	} else {
		_ = con.SetReadDeadline(time.Time{})
	}

	if err := req.Write(con); err != nil {
		_ = o.Close()

		if reused {
			// the kept warm connection died since last use
			return nil, ErrorConnectionRequired.Error(err)
		}

		return nil, ErrorRequestWrite.Error(err)
	}

	var (
		err error
		rsp *http.Response
	)

	if rsp, err = http.ReadResponse(brd, req); err != nil {
		_ = o.Close()

		if reused {
			return nil, ErrorConnectionRequired.Error(err)
		}

		return nil, ErrorResponseRead.Error(err)
	}

	return &libori.Response{
		Proto:   rsp.Proto,
		Status:  rsp.StatusCode,
		Reason:  reasonPhrase(rsp),
		Headers: libori.FromStd(rsp.Header),
		Body: &bodyHTTP1{
			c: o,
			s: con,
			b: rsp.Body,
			k: !rsp.Close,
			t: tmo.Read,
		},
	}, nil
}

func reasonPhrase(rsp *http.Response) string {
	return strings.TrimSpace(strings.TrimPrefix(rsp.Status, strconv.Itoa(rsp.StatusCode)))
}

// bodyHTTP1 streams the response body and settles the connection state on
// close: Idle when the body was fully consumed on a keep-alive response,
// Closed otherwise.
type bodyHTTP1 struct {
	c *cnn
	s net.Conn
	b io.ReadCloser
	k bool // keep-alive allowed by the response
	t libdur.Duration
	e bool // end of stream observed
	o sync.Once
}

func (r *bodyHTTP1) Read(p []byte) (n int, err error) {
	if r.t > 0 {
		_ = r.s.SetReadDeadline(time.Now().Add(r.t.Time()))
	}

	n, err = r.b.Read(p)

	if err == io.EOF {
		r.e = true
	} else if err != nil {
		_ = r.c.Close()
	}

	return n, err
}

func (r *bodyHTTP1) Close() error {
	var err error

	r.o.Do(func() {
		err = r.b.Close()

		if r.e && r.k && err == nil {
			r.c.release()
		} else {
			_ = r.c.Close()
		}
	})

	return err
}
