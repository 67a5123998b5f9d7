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
	"fmt"

	liberr "github.com/nabbar/golib/errors"
)

const (
	ErrorParamsInvalid liberr.CodeError = iota + liberr.MinAvailable + 50
	ErrorTransportMissing
	ErrorUriInvalid
	ErrorSendRequest
	ErrorResponseInvalid
	ErrorResponseLoadBody
	ErrorResponseStatus
	ErrorResponseUnmarshall
)

func init() {
	if liberr.ExistInMapMessage(ErrorParamsInvalid) {
		panic(fmt.Errorf("error code collision with package httpool/request"))
	}
	liberr.RegisterIdFctMessage(ErrorParamsInvalid, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorParamsInvalid:
		return "at least one given parameters is invalid"
	case ErrorTransportMissing:
		return "no transport registered to send the request"
	case ErrorUriInvalid:
		return "endpoint uri is not a valid http url"
	case ErrorSendRequest:
		return "error on sending the request over the pooled transport"
	case ErrorResponseInvalid:
		return "response seems to be invalid"
	case ErrorResponseLoadBody:
		return "error on reading the response body"
	case ErrorResponseStatus:
		return "response status is not in the valid status list"
	case ErrorResponseUnmarshall:
		return "error on unmarshalling the response body"
	}

	return liberr.NullMessage
}

type requestError struct {
	c int
	s string
	b *bytes.Buffer
	e error
}

func (r *requestError) StatusCode() int {
	return r.c
}

func (r *requestError) Status() string {
	return r.s
}

func (r *requestError) Body() *bytes.Buffer {
	return r.b
}

func (r *requestError) Error() error {
	return r.e
}
