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
	"net/http"
	"net/textproto"
	"sort"
	"strings"
)

// Header is one (name, value) pair. Names are kept as given by the caller;
// the connection canonicalises them when it writes the request.
type Header struct {
	Key   string
	Value string
}

// Headers is an ordered header sequence. Duplicate names are permitted and
// the caller's ordering is preserved.
type Headers []Header

// Add appends a pair and returns the extended sequence.
func (h Headers) Add(key, value string) Headers {
	return append(h, Header{Key: key, Value: value})
}

// Set replaces every pair matching key (case-insensitive) with a single pair,
// appending it when no match exists.
func (h Headers) Set(key, value string) Headers {
	var res = make(Headers, 0, len(h)+1)

	for _, i := range h {
		if !strings.EqualFold(i.Key, key) {
			res = append(res, i)
		}
	}

	return append(res, Header{Key: key, Value: value})
}

// Get returns the first value matching key, case-insensitive.
func (h Headers) Get(key string) (string, bool) {
	for _, i := range h {
		if strings.EqualFold(i.Key, key) {
			return i.Value, true
		}
	}

	return "", false
}

// Values returns all values matching key, case-insensitive, in order.
func (h Headers) Values(key string) []string {
	var res []string

	for _, i := range h {
		if strings.EqualFold(i.Key, key) {
			res = append(res, i.Value)
		}
	}

	return res
}

// Del returns the sequence without any pair matching key, case-insensitive.
func (h Headers) Del(key string) Headers {
	var res = make(Headers, 0, len(h))

	for _, i := range h {
		if !strings.EqualFold(i.Key, key) {
			res = append(res, i)
		}
	}

	return res
}

// Clone returns a copy of the sequence.
func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}

	var res = make(Headers, len(h))
	copy(res, h)

	return res
}

// Prepend returns a sequence holding p before h. Used to place proxy headers
// ahead of the caller's headers.
func (h Headers) Prepend(p Headers) Headers {
	var res = make(Headers, 0, len(p)+len(h))

	res = append(res, p...)
	res = append(res, h...)

	return res
}

// Std converts the sequence into a net/http header map. Duplicates are kept
// as multiple values; the relative order of same-name values is preserved,
// the order between distinct names is lost to the map.
func (h Headers) Std() http.Header {
	var res = make(http.Header, len(h))

	for _, i := range h {
		res[textproto.CanonicalMIMEHeaderKey(i.Key)] = append(res[textproto.CanonicalMIMEHeaderKey(i.Key)], i.Value)
	}

	return res
}

// FromStd converts a net/http header map into an ordered sequence. Names are
// sorted so the result is deterministic.
func FromStd(src http.Header) Headers {
	if len(src) < 1 {
		return nil
	}

	var key = make([]string, 0, len(src))

	for k := range src {
		key = append(key, k)
	}

	sort.Strings(key)

	var res = make(Headers, 0, len(src))

	for _, k := range key {
		for _, v := range src[k] {
			res = append(res, Header{Key: k, Value: v})
		}
	}

	return res
}
