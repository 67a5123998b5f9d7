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

package origin

import (
	libdur "github.com/nabbar/golib/duration"
)

// Timeout bounds the three blocking phases of a pooled request. A zero
// duration leaves the corresponding phase unbounded.
type Timeout struct {
	// Pool bounds the wait on the admission semaphore.
	Pool libdur.Duration `json:"pool" yaml:"pool" toml:"pool" mapstructure:"pool"`

	// Connect bounds the transport handshake (dial + TLS).
	Connect libdur.Duration `json:"connect" yaml:"connect" toml:"connect" mapstructure:"connect"`

	// Read bounds the reads of an HTTP/1.1 response: the header read, then
	// each body read. On HTTP/2 it bounds the whole exchange of the request
	// stream, not each single read.
	Read libdur.Duration `json:"read" yaml:"read" toml:"read" mapstructure:"read"`
}

// Merge fills the zero fields of the timeout with the values of def.
func (t Timeout) Merge(def Timeout) Timeout {
	if t.Pool == 0 {
		t.Pool = def.Pool
	}

	if t.Connect == 0 {
		t.Connect = def.Connect
	}

	if t.Read == 0 {
		t.Read = def.Read
	}

	return t
}
