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
	"fmt"

	liberr "github.com/nabbar/golib/errors"
)

const (
	ErrorValidatorError liberr.CodeError = iota + liberr.MinAvailable + 30
	// ErrorPoolTimeout means the wait on the admission semaphore exceeded
	// the pool timeout.
	ErrorPoolTimeout
	// ErrorProxyConnect means the proxy answered the CONNECT request with a
	// non 2xx status; the parent error carries "<code> <reason>".
	ErrorProxyConnect
	ErrorPoolClosed
	ErrorParamInvalid
)

func init() {
	if liberr.ExistInMapMessage(ErrorValidatorError) {
		panic(fmt.Errorf("error code collision with package httpool/pool"))
	}
	liberr.RegisterIdFctMessage(ErrorValidatorError, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorValidatorError:
		return "config seems to be invalid"
	case ErrorPoolTimeout:
		return "timeout while waiting for a connection slot in the pool"
	case ErrorProxyConnect:
		return "proxy refused to establish the tunnel"
	case ErrorPoolClosed:
		return "connection pool is closed"
	case ErrorParamInvalid:
		return "at least one given parameters is invalid"
	}

	return liberr.NullMessage
}
