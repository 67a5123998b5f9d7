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

// Package pool brokers reusable transport connections to HTTP/1.1 and
// HTTP/2 origins.
//
// The pool satisfies concurrent outbound requests while bounding the total
// number of open connections through a global admission semaphore, keeping
// idle connections warm within a keep-alive TTL, sharing in-flight HTTP/2
// connections across requests, culling connections dropped by the peer, and
// handing back response bodies that re-inject their connection into the pool
// once consumed.
//
// NewProxy returns a pool variant routing through an HTTP proxy: clear-text
// requests are forwarded with an absolute-form target, https requests are
// tunnelled through CONNECT.
package pool

import (
	"context"
	"io"
	"sync"

	libatm "github.com/nabbar/golib/atomic"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	libsem "golang.org/x/sync/semaphore"

	libcnn "github/sabouaram/httpool/connection"
	libori "github/sabouaram/httpool/origin"
)

// Transport is the caller surface of the pool: one request operation and a
// teardown.
type Transport interface {
	// Request dispatches one request, reusing or establishing a pooled
	// connection for the URL origin. The response body must be disposed of
	// by the caller (fully draining it counts); disposal returns the
	// connection to the pool.
	Request(ctx context.Context, method string, u libori.URL, hdr libori.Headers, body io.Reader, tmo libori.Timeout) (*libori.Response, liberr.Error)

	// Close drains the pool and closes every pooled connection.
	Close() error
}

// ConnectionPool extends the transport with management and introspection.
type ConnectionPool interface {
	Transport

	// SetLogger registers the logger provider used for pool events. The
	// provider is propagated to the connections the pool constructs.
	SetLogger(fct liblog.FuncLog)

	// RegisterConnectionFactory replaces the connection constructor. Used
	// to substitute scripted connections in tests.
	RegisterConnectionFactory(fct libcnn.FuncConnection)

	// Len returns the number of pooled connections across all origins.
	Len() int

	// LenOrigin returns the number of pooled connections for one origin.
	LenOrigin(org libori.Origin) int
}

// New returns a connection pool for the given configuration.
func New(cfg Config) (ConnectionPool, liberr.Error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return newPool(cfg), nil
}

func newPool(cfg Config) *pool {
	var p = &pool{
		m: sync.Mutex{},
		i: make(map[libori.Origin]map[libcnn.Connection]struct{}),
		c: cfg,
		t: cfg.getTLS(),
		f: libatm.NewValue[libcnn.FuncConnection](),
		l: libatm.NewValue[liblog.FuncLog](),
	}

	if cfg.MaxConnections > 0 {
		p.s = libsem.NewWeighted(int64(cfg.MaxConnections))
	}

	p.f.Store(libcnn.New)

	return p
}

var _ ConnectionPool = &pool{}
