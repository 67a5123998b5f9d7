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

// Package state defines the lifecycle states of a pooled HTTP connection.
//
// A connection starts Pending while its handshake runs, is Ready once
// reserved for a caller, Active while at least one request is in flight,
// Idle while kept warm between requests, and Closed once the transport is
// torn down. The pool reads these states to decide reuse; the connection
// itself owns the transitions.
package state

import (
	"strings"
)

// State is the lifecycle state of a pooled connection.
type State uint8

const (
	// Pending means the transport handshake has not completed yet.
	Pending State = iota

	// Ready means the connection is reserved by the pool for a caller that
	// has not sent its request yet.
	Ready

	// Active means at least one request is in flight on the connection.
	Active

	// Idle means no request is outstanding and the connection is kept warm.
	Idle

	// Closed means the transport is half closed or fully closed.
	Closed
)

// List returns every known state, in lifecycle order.
func List() []State {
	return []State{
		Pending,
		Ready,
		Active,
		Idle,
		Closed,
	}
}

// Parse returns the state matching the given string, case-insensitive.
// Unknown strings map to Closed, the only state that is always safe to
// assume.
func Parse(s string) State {
	s = strings.ToLower(s)
	s = strings.Replace(s, "\"", "", -1) // nolint
	s = strings.Replace(s, "'", "", -1)  // nolint
	s = strings.TrimSpace(s)

	for _, v := range List() {
		if strings.EqualFold(v.Code(), s) {
			return v
		}
	}

	return Closed
}

// ParseBytes returns the state matching the given bytes, case-insensitive.
func ParseBytes(p []byte) State {
	return Parse(string(p))
}
