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

import "strings"

// ProxyMode selects how the proxy pool routes requests.
type ProxyMode uint8

const (
	// ProxyModeDefault forwards clear-text requests and tunnels https
	// requests through CONNECT.
	ProxyModeDefault ProxyMode = iota

	// ProxyModeForwardOnly forwards every request, regardless of scheme.
	ProxyModeForwardOnly

	// ProxyModeTunnelOnly tunnels every request through CONNECT.
	ProxyModeTunnelOnly
)

func ParseProxyMode(str string) ProxyMode {
	switch {
	case strings.EqualFold(ProxyModeForwardOnly.Code(), str):
		return ProxyModeForwardOnly
	case strings.EqualFold(ProxyModeTunnelOnly.Code(), str):
		return ProxyModeTunnelOnly
	default:
		return ProxyModeDefault
	}
}

func (m ProxyMode) String() string {
	switch m {
	case ProxyModeForwardOnly:
		return "FORWARD_ONLY"
	case ProxyModeTunnelOnly:
		return "TUNNEL_ONLY"
	default:
		return "DEFAULT"
	}
}

func (m ProxyMode) Code() string {
	return strings.ToLower(m.String())
}
