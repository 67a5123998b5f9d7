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

package request

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	liberr "github.com/nabbar/golib/errors"

	libori "github/sabouaram/httpool/origin"
)

type request struct {
	s sync.Mutex

	f FctTransport
	u *url.URL
	h libori.Headers
	p url.Values
	b io.Reader
	m string
	t libori.Timeout
	e *requestError
}

func (r *request) Clone() Request {
	r.s.Lock()
	defer r.s.Unlock()

	n := &request{
		s: sync.Mutex{},
		f: r.f,
		u: nil,
		h: r.h.Clone(),
		p: make(url.Values),
		b: r.b,
		m: r.m,
		t: r.t,
		e: nil,
	}

	if r.u != nil {
		n.u = &url.URL{
			Scheme:      r.u.Scheme,
			Opaque:      r.u.Opaque,
			User:        r.u.User,
			Host:        r.u.Host,
			Path:        r.u.Path,
			RawPath:     r.u.RawPath,
			ForceQuery:  r.u.ForceQuery,
			RawQuery:    r.u.RawQuery,
			Fragment:    r.u.Fragment,
			RawFragment: r.u.RawFragment,
		}
	}

	for k, v := range r.p {
		n.p[k] = v
	}

	return n
}

func (r *request) New() Request {
	r.s.Lock()
	defer r.s.Unlock()

	return &request{
		s: sync.Mutex{},
		f: r.f,
		u: nil,
		h: nil,
		p: make(url.Values),
		b: bytes.NewBuffer(make([]byte, 0)),
		m: "GET",
		t: r.t,
		e: nil,
	}
}

func (r *request) SetTransport(fct FctTransport) {
	r.s.Lock()
	defer r.s.Unlock()

	r.f = fct
}

func (r *request) SetTimeout(tmo libori.Timeout) {
	r.s.Lock()
	defer r.s.Unlock()

	r.t = tmo
}

func (r *request) Endpoint(uri string) error {
	if u, e := url.Parse(uri); e != nil {
		return e
	} else {
		r.s.Lock()
		defer r.s.Unlock()
		r.u = u
	}

	return nil
}

func (r *request) SetUrl(u *url.URL) {
	r.s.Lock()
	defer r.s.Unlock()

	r.u = u
}

func (r *request) GetUrl() *url.URL {
	r.s.Lock()
	defer r.s.Unlock()

	return r.u
}

func (r *request) AddPath(path string) {
	r.s.Lock()
	defer r.s.Unlock()

	if r.u == nil {
		return
	}

	if strings.HasPrefix(path, "/") {
		path = strings.TrimPrefix(path, "/")
	}

	if strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}

	r.u.Path = filepath.Join(r.u.Path, path)
}

func (r *request) AddParams(key, val string) {
	r.s.Lock()
	defer r.s.Unlock()

	if len(r.p) < 1 {
		r.p = make(url.Values)
	}

	r.p.Set(key, val)
}

func (r *request) AuthBearer(token string) {
	r.Header("Authorization", "Bearer "+token)
}

func (r *request) AuthBasic(user, pass string) {
	r.Header("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(user+":"+pass)))
}

func (r *request) ContentType(content string) {
	r.Header("Content-Type", content)
}

func (r *request) Header(key, value string) {
	r.s.Lock()
	defer r.s.Unlock()

	r.h = r.h.Set(key, value)
}

func (r *request) Method(mtd string) {
	r.s.Lock()
	defer r.s.Unlock()

	r.m = strings.ToUpper(mtd)
}

func (r *request) RequestJson(body interface{}) error {
	if p, e := json.Marshal(body); e != nil {
		return e
	} else {
		r.s.Lock()
		r.b = bytes.NewBuffer(p)
		r.s.Unlock()
	}

	r.ContentType("application/json")
	return nil
}

func (r *request) RequestReader(body io.Reader) {
	r.s.Lock()
	defer r.s.Unlock()

	r.b = body
}

func (r *request) Error() RequestError {
	r.s.Lock()
	defer r.s.Unlock()

	return r.e
}

func (r *request) Do(ctx context.Context) (*libori.Response, liberr.Error) {
	r.s.Lock()
	defer r.s.Unlock()

	if r.m == "" || r.u == nil || r.u.String() == "" {
		return nil, ErrorParamsInvalid.Error(nil)
	} else if r.f == nil {
		return nil, ErrorTransportMissing.Error(nil)
	}

	var trp = r.f()

	if trp == nil {
		return nil, ErrorTransportMissing.Error(nil)
	}

	r.e = nil

	var (
		err liberr.Error
		uri libori.URL
		rsp *libori.Response
	)

	if uri, err = r.makeUrl(); err != nil {
		return nil, err
	}

	rsp, err = trp.Request(ctx, r.m, uri, r.h.Clone(), r.b, r.t)

	if err != nil {
		r.e = &requestError{
			c: 0,
			s: "",
			b: nil,
			e: err,
		}
		return nil, ErrorSendRequest.Error(err)
	}

	return rsp, nil
}

func (r *request) makeUrl() (libori.URL, liberr.Error) {
	var u = &url.URL{
		Scheme:     r.u.Scheme,
		Host:       r.u.Host,
		Path:       r.u.Path,
		RawPath:    r.u.RawPath,
		ForceQuery: r.u.ForceQuery,
		RawQuery:   r.u.RawQuery,
	}

	var q = u.Query()

	for k := range r.p {
		q.Add(k, r.p.Get(k))
	}

	u.RawQuery = q.Encode()

	if uri, err := libori.ParseURL(u); err != nil {
		return libori.URL{}, ErrorUriInvalid.Error(err)
	} else {
		return uri, nil
	}
}

func (r *request) DoParse(ctx context.Context, model interface{}, validStatus ...int) liberr.Error {
	var (
		e error
		b = bytes.NewBuffer(make([]byte, 0))

		err liberr.Error
		rsp *libori.Response
	)

	if rsp, err = r.Do(ctx); err != nil {
		return err
	} else if rsp == nil {
		return ErrorResponseInvalid.Error(nil)
	}

	defer func() {
		if rsp.Body != nil {
			_ = rsp.Body.Close()
		}
	}()

	if rsp.Body != nil {
		if _, e = io.Copy(b, rsp.Body); e != nil {
			r.s.Lock()
			r.e = &requestError{
				c: rsp.Status,
				s: rsp.Reason,
				b: b,
				e: e,
			}
			r.s.Unlock()
			return ErrorResponseLoadBody.Error(e)
		}
	}

	if !r.isValidCode(validStatus, rsp.Status) {
		r.s.Lock()
		r.e = &requestError{
			c: rsp.Status,
			s: rsp.Reason,
			b: b,
			e: nil,
		}
		r.s.Unlock()
		return ErrorResponseStatus.Error(nil)
	}

	if e = json.Unmarshal(b.Bytes(), model); e != nil {
		r.s.Lock()
		r.e = &requestError{
			c: rsp.Status,
			s: rsp.Reason,
			b: b,
			e: e,
		}
		r.s.Unlock()
		return ErrorResponseUnmarshall.Error(e)
	}

	return nil
}

func (r *request) isValidCode(listValid []int, statusCode int) bool {
	if len(listValid) < 1 {
		return true
	}

	for _, c := range listValid {
		if c == statusCode {
			return true
		}
	}

	return false
}
