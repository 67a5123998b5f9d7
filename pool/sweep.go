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
	"time"

	loglvl "github.com/nabbar/golib/logger/level"

	libcnn "github/sabouaram/httpool/connection"
	cnnstt "github/sabouaram/httpool/connection/state"
)

// sweep closes idle connections whose keep-alive deadline has passed. It is
// coalesced to at most one scan per wall second.
func (o *pool) sweep() {
	var dead []libcnn.Connection

	o.m.Lock()

	if time.Since(o.w) < time.Second {
		o.m.Unlock()
		return
	}

	o.w = time.Now()

	for _, set := range o.i {
		for cnn := range set {
			if cnn.State() != cnnstt.Idle {
				continue
			}

			if x := cnn.ExpiresAt(); !x.IsZero() && x.Before(o.w) {
				if o.removeLocked(cnn) {
					o.releasePermit()
					dead = append(dead, cnn)
				}
			}
		}
	}

	o.m.Unlock()

	for _, cnn := range dead {
		_ = cnn.Close()
		o.logEntry(loglvl.DebugLevel, "expired idle connection swept").FieldAdd("origin", cnn.Origin().String()).Log()
	}
}
