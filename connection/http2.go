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
	"context"
	"io"
	"sync"

	liberr "github.com/nabbar/golib/errors"

	libori "github/sabouaram/httpool/origin"
)

func (o *cnn) requestHTTP2(ctx context.Context, method string, u libori.URL, hdr libori.Headers, body io.Reader, tmo libori.Timeout) (*libori.Response, liberr.Error) {
	var cnl context.CancelFunc = func() {}

	// per-read deadlines do not compose with a multiplexed connection, so
	// the read timeout bounds the whole exchange of this stream instead
	if tmo.Read > 0 {
		ctx, cnl = context.WithTimeout(ctx, tmo.Read.Time())
	}

	var cc = o.h2conn()

	if cc == nil {
		cnl()
		o.streamDone()
		return nil, ErrorConnectionRequired.Error(nil)
	}

	var (
		req      = o.newWireRequest(ctx, method, u, hdr, body)
		rsp, err = cc.RoundTrip(req)
	)

	if err != nil {
		cnl()
		o.streamDone()

		if !cc.CanTakeNewRequest() {
			_ = o.Close()
		}

		return nil, ErrorHTTP2Request.Error(err)
	}

	return &libori.Response{
		Proto:   rsp.Proto,
		Status:  rsp.StatusCode,
		Reason:  reasonPhrase(rsp),
		Headers: libori.FromStd(rsp.Header),
		Body: &bodyHTTP2{
			c: o,
			b: rsp.Body,
			f: cnl,
		},
	}, nil
}

// bodyHTTP2 streams one response stream and unbinds it from the connection
// on close.
type bodyHTTP2 struct {
	c *cnn
	b io.ReadCloser
	f context.CancelFunc
	o sync.Once
}

func (r *bodyHTTP2) Read(p []byte) (int, error) {
	return r.b.Read(p)
}

func (r *bodyHTTP2) Close() error {
	var err error

	r.o.Do(func() {
		err = r.b.Close()
		r.f()
		r.c.streamDone()
	})

	return err
}
