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

// Package origin models the client-side view of an HTTP endpoint and the
// messages exchanged with it.
//
// An Origin is the (scheme, host, port) triple identifying an endpoint; it is
// a comparable value type and is used as a pool partition key. A URL extends
// the origin with the wire target (path + query as sent on the request line).
// Headers keep the caller's ordering and allow duplicate names, which the
// standard http.Header map cannot express.
//
// The package assumes callers pass normalised values: host already lowercased
// and punycoded, port resolved to its effective value. No normalisation is
// performed here.
package origin

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// SchemeHTTP is the clear-text HTTP scheme.
	SchemeHTTP = "http"
	// SchemeHTTPS is the TLS HTTP scheme.
	SchemeHTTPS = "https"
)

// Origin is the (scheme, host, port) triple identifying an HTTP endpoint.
// The zero value is not a valid origin. Origin is comparable and can be used
// as a map key; equality is field equality.
type Origin struct {
	Scheme string
	Host   string
	Port   int
}

// URL is an origin plus the target portion of the request line, i.e. the
// path and query exactly as sent on the wire. For forwarded proxy requests
// the target may be an absolute URL, and for CONNECT it is an authority.
type URL struct {
	Scheme string
	Host   string
	Port   int
	Target string
}

// New returns an Origin for the given scheme, host and port. A zero port is
// replaced with the default port of the scheme.
func New(scheme, host string, port int) Origin {
	if port == 0 {
		port = DefaultPort(scheme)
	}

	return Origin{
		Scheme: scheme,
		Host:   host,
		Port:   port,
	}
}

// DefaultPort returns the default TCP port for the given scheme, or zero if
// the scheme has no default.
func DefaultPort(scheme string) int {
	switch strings.ToLower(scheme) {
	case SchemeHTTP:
		return 80
	case SchemeHTTPS:
		return 443
	}

	return 0
}

// ParseURL converts a parsed net/url URL into a wire URL. The host keeps the
// caller's casing, the port falls back to the scheme default when absent and
// the target is rebuilt from the escaped path and raw query.
func ParseURL(u *url.URL) (URL, error) {
	if u == nil {
		return URL{}, ErrorParamEmpty.Error(nil)
	}

	var prt int

	if p := u.Port(); p != "" {
		if i, e := strconv.Atoi(p); e != nil {
			return URL{}, ErrorPortInvalid.Error(e)
		} else {
			prt = i
		}
	} else if prt = DefaultPort(u.Scheme); prt == 0 {
		return URL{}, ErrorSchemeInvalid.Error(nil)
	}

	var tgt = u.EscapedPath()

	if tgt == "" {
		tgt = "/"
	}

	if u.RawQuery != "" {
		tgt += "?" + u.RawQuery
	}

	return URL{
		Scheme: u.Scheme,
		Host:   u.Hostname(),
		Port:   prt,
		Target: tgt,
	}, nil
}
