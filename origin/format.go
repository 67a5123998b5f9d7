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
	"net"
	"strconv"
	"strings"
)

// IsZero reports whether the origin is the zero value.
func (o Origin) IsZero() bool {
	return o.Scheme == "" && o.Host == "" && o.Port == 0
}

// IsTLS reports whether the origin scheme requires a TLS session.
func (o Origin) IsTLS() bool {
	return strings.EqualFold(o.Scheme, SchemeHTTPS)
}

// Addr returns the host:port pair used to dial the origin.
func (o Origin) Addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// HostHeader returns the value of the Host header for this origin: the bare
// host when the port is the scheme default, host:port otherwise.
func (o Origin) HostHeader() string {
	if o.Port == DefaultPort(o.Scheme) {
		return o.Host
	}

	return o.Addr()
}

func (o Origin) String() string {
	return o.Scheme + "://" + o.Addr()
}

// Origin returns the (scheme, host, port) triple of the URL.
func (u URL) Origin() Origin {
	return Origin{
		Scheme: u.Scheme,
		Host:   u.Host,
		Port:   u.Port,
	}
}

// Absolute returns the absolute-form of the URL, as used for the target of a
// forwarded proxy request. The port is always explicit.
func (u URL) Absolute() string {
	return u.Scheme + "://" + u.Origin().Addr() + u.Target
}

// Authority returns the host:port pair of the URL, as used for the target of
// a CONNECT request.
func (u URL) Authority() string {
	return u.Origin().Addr()
}

func (u URL) String() string {
	return u.Origin().String() + u.Target
}
