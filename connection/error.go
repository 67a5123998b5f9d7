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
	"fmt"

	liberr "github.com/nabbar/golib/errors"
)

const (
	// ErrorConnectionRequired signals that the chosen connection cannot
	// serve this caller after all; the pool retries with a fresh selection.
	// It never escapes the pool.
	ErrorConnectionRequired liberr.CodeError = iota + liberr.MinAvailable + 10
	ErrorConnectionClosed
	ErrorDialConnection
	ErrorTLSHandshake
	ErrorHTTP2Configure
	ErrorRequestWrite
	ErrorResponseRead
	ErrorHTTP2Request
)

func init() {
	if liberr.ExistInMapMessage(ErrorConnectionRequired) {
		panic(fmt.Errorf("error code collision with package httpool/connection"))
	}
	liberr.RegisterIdFctMessage(ErrorConnectionRequired, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorConnectionRequired:
		return "connection is not usable for this request, a new connection is required"
	case ErrorConnectionClosed:
		return "connection is closed"
	case ErrorDialConnection:
		return "error while dialing the origin endpoint"
	case ErrorTLSHandshake:
		return "error while performing the tls handshake"
	case ErrorHTTP2Configure:
		return "error while configuring the http2 client connection"
	case ErrorRequestWrite:
		return "error while writing the request on the connection"
	case ErrorResponseRead:
		return "error while reading the response from the connection"
	case ErrorHTTP2Request:
		return "error while performing the request on the http2 connection"
	}

	return liberr.NullMessage
}
