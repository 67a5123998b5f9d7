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
	libcnn "github/sabouaram/httpool/connection"
	libori "github/sabouaram/httpool/origin"
)

// The index maps each origin to its set of live connections. Membership is
// the authoritative marker that a connection counts against the admission
// budget: one entry, one permit. Empty sets are deleted with their key.
// Every mutator runs under the pool mutex.

func (o *pool) addLocked(cnn libcnn.Connection) {
	var org = cnn.Origin()

	if o.i[org] == nil {
		o.i[org] = make(map[libcnn.Connection]struct{})
	}

	o.i[org][cnn] = struct{}{}
}

func (o *pool) removeLocked(cnn libcnn.Connection) bool {
	var (
		org    = cnn.Origin()
		set, k = o.i[org]
	)

	if !k {
		return false
	}

	if _, k = set[cnn]; !k {
		return false
	}

	delete(set, cnn)

	if len(set) < 1 {
		delete(o.i, org)
	}

	return true
}

func (o *pool) lenLocked() int {
	var n int

	for _, set := range o.i {
		n += len(set)
	}

	return n
}

func (o *pool) Len() int {
	o.m.Lock()
	defer o.m.Unlock()

	return o.lenLocked()
}

func (o *pool) LenOrigin(org libori.Origin) int {
	o.m.Lock()
	defer o.m.Unlock()

	return len(o.i[org])
}
