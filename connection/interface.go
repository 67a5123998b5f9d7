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

// Package connection implements one pooled transport connection to an HTTP
// origin.
//
// A connection owns a socket, an optional TLS session and a protocol codec:
// HTTP/1.1 requests are serialised one at a time on the socket, HTTP/2
// requests multiplex as concurrent streams over a single client connection.
// The protocol is negotiated through ALPN during the TLS handshake.
//
// The connection tracks its lifecycle through the states of the state
// sub-package and exposes the probes the pool needs for reuse decisions:
// whether the peer dropped the socket while idle, and whether the connection
// can be reserved for a new caller.
package connection

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	libatm "github.com/nabbar/golib/atomic"
	libtls "github.com/nabbar/golib/certificates"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"

	cnnstt "github/sabouaram/httpool/connection/state"
	libori "github/sabouaram/httpool/origin"
)

// FuncConnection is a connection factory. The pool uses it to construct new
// connections, and tests use it to substitute scripted connections.
type FuncConnection func(cfg Config) Connection

// Config carries the immutable parameters of a connection.
type Config struct {
	// Origin is the endpoint the connection belongs to.
	Origin libori.Origin

	// HTTP2 allows offering h2 during the TLS handshake. When false the
	// connection always speaks HTTP/1.1.
	HTTP2 bool

	// TLS is the TLS configuration used for https origins. When nil the
	// package default of the certificates library applies.
	TLS libtls.TLSConfig

	// Socket is an optional pre-established socket, as produced by a
	// successful CONNECT tunnel. When set, Connect skips dialing and runs
	// the TLS handshake (if any) directly on it.
	Socket net.Conn
}

// Connection is one reusable transport connection to an origin.
//
// An HTTP/1.1 connection carries at most one request at a time; the pool
// enforces single ownership through MarkAsReady. An HTTP/2 connection may
// carry many concurrent request streams.
type Connection interface {
	// Connect performs transport establishment: dial, TLS handshake, ALPN
	// and HTTP/2 preface when negotiated. It is idempotent once the
	// connection left the Pending state. Request calls it implicitly.
	Connect(ctx context.Context, tmo libori.Timeout) liberr.Error

	// Request serialises one request on the connection and returns the
	// response with a body stream bound to the connection lifecycle.
	// It fails with the ErrorConnectionRequired code when the connection
	// turns out to be unusable for this caller: the pool retries with a
	// fresh selection. Any other failure is terminal for the connection.
	Request(ctx context.Context, method string, u libori.URL, hdr libori.Headers, body io.Reader, tmo libori.Timeout) (*libori.Response, liberr.Error)

	// Close tears the transport down and moves the connection to Closed.
	Close() error

	// Hijack detaches and returns the underlying socket, leaving the
	// connection Closed without closing the socket. Used to upgrade a
	// CONNECT response into a tunnel.
	Hijack() net.Conn

	// Socket returns the underlying socket, or nil when none is attached:
	// before Connect on a connection built without Config.Socket, and after
	// Close or Hijack.
	Socket() net.Conn

	// SetLogger registers the logger provider used for connection events.
	SetLogger(fct liblog.FuncLog)

	// Origin returns the endpoint the connection belongs to.
	Origin() libori.Origin

	// State returns the current lifecycle state.
	State() cnnstt.State

	// Protocol returns the negotiated protocol. Stable once the connection
	// left the Pending state.
	Protocol() Protocol

	// IsHTTP11 reports whether the connection negotiated HTTP/1.1.
	IsHTTP11() bool

	// IsHTTP2 reports whether the connection negotiated HTTP/2.
	IsHTTP2() bool

	// ActiveStreams returns the number of request streams currently bound
	// to the connection.
	ActiveStreams() int

	// ExpiresAt returns the keep-alive deadline of an idle connection, or
	// the zero time when none is set.
	ExpiresAt() time.Time

	// SetExpireAt sets the keep-alive deadline. The pool calls it under its
	// own lock; the zero time clears the deadline.
	SetExpireAt(t time.Time)

	// IsConnectionDropped probes, without blocking, whether the peer closed
	// the socket since last use.
	IsConnectionDropped() bool

	// MarkAsReady reserves the connection for a caller: an HTTP/1.1
	// connection moves to Ready so no second caller can claim it, an
	// HTTP/2 connection keeps its state. The keep-alive deadline is
	// cleared. It reports false when the connection cannot be reserved.
	MarkAsReady() bool
}

// New returns a connection for the given configuration. The connection stays
// Pending until Connect (or the first Request) establishes the transport.
func New(cfg Config) Connection {
	return &cnn{
		m: sync.Mutex{},
		o: cfg.Origin,
		h: cfg.HTTP2,
		t: cfg.TLS,
		l: libatm.NewValue[liblog.FuncLog](),
		x: libatm.NewValue[time.Time](),
		c: cfg.Socket,
		s: cnnstt.Pending,
	}
}
