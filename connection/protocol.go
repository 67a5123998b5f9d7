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

import "strings"

// Protocol is the wire protocol negotiated by a connection.
type Protocol uint8

const (
	ProtocolHTTP1 Protocol = iota
	ProtocolHTTP2
)

func ParseProtocol(str string) Protocol {
	switch {
	case strings.EqualFold(ProtocolHTTP2.Code(), str):
		return ProtocolHTTP2
	case strings.EqualFold(ProtocolHTTP2.String(), str):
		return ProtocolHTTP2
	default:
		return ProtocolHTTP1
	}
}

func (p Protocol) String() string {
	switch p {
	case ProtocolHTTP2:
		return "HTTP/2"
	default:
		return "HTTP/1.1"
	}
}

func (p Protocol) Code() string {
	switch p {
	case ProtocolHTTP2:
		return "http2"
	default:
		return "http1"
	}
}
