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

package origin_test

import (
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	libori "github/sabouaram/httpool/origin"
)

var _ = Describe("Origin", func() {
	Context("building an origin", func() {
		It("should infer the default port from the scheme", func() {
			Expect(libori.New("http", "example.org", 0).Port).To(Equal(80))
			Expect(libori.New("https", "example.org", 0).Port).To(Equal(443))
			Expect(libori.New("https", "example.org", 8443).Port).To(Equal(8443))
		})

		It("should be comparable by value", func() {
			a := libori.New("http", "example.org", 80)
			b := libori.New("http", "example.org", 80)
			c := libori.New("http", "example.org", 8080)

			Expect(a).To(Equal(b))
			Expect(a).ToNot(Equal(c))

			m := map[libori.Origin]bool{a: true}
			Expect(m[b]).To(BeTrue())
		})

		It("should format dial address and host header", func() {
			o := libori.New("https", "example.org", 443)
			Expect(o.Addr()).To(Equal("example.org:443"))
			Expect(o.HostHeader()).To(Equal("example.org"))

			o = libori.New("https", "example.org", 8443)
			Expect(o.HostHeader()).To(Equal("example.org:8443"))

			Expect(o.IsTLS()).To(BeTrue())
			Expect(libori.New("http", "example.org", 80).IsTLS()).To(BeFalse())
		})
	})

	Context("parsing a wire url", func() {
		It("should keep the target as sent on the wire", func() {
			u, _ := url.Parse("https://example.org/some/path?a=1&b=2")
			w, err := libori.ParseURL(u)

			Expect(err).ToNot(HaveOccurred())
			Expect(w.Origin()).To(Equal(libori.New("https", "example.org", 443)))
			Expect(w.Target).To(Equal("/some/path?a=1&b=2"))
		})

		It("should default the target to the root path", func() {
			u, _ := url.Parse("http://example.org")
			w, err := libori.ParseURL(u)

			Expect(err).ToNot(HaveOccurred())
			Expect(w.Target).To(Equal("/"))
		})

		It("should refuse unknown schemes without port", func() {
			u, _ := url.Parse("ftp://example.org/file")
			_, err := libori.ParseURL(u)

			Expect(err).To(HaveOccurred())
		})

		It("should format absolute and authority forms", func() {
			w := libori.URL{Scheme: "http", Host: "example.org", Port: 80, Target: "/p?q=1"}

			Expect(w.Absolute()).To(Equal("http://example.org:80/p?q=1"))
			Expect(w.Authority()).To(Equal("example.org:80"))
			Expect(w.String()).To(Equal("http://example.org:80/p?q=1"))
		})
	})
})

var _ = Describe("Headers", func() {
	It("should preserve order and duplicates", func() {
		h := libori.Headers{}
		h = h.Add("Accept", "text/html")
		h = h.Add("Cookie", "a=1")
		h = h.Add("Cookie", "b=2")

		Expect(h).To(HaveLen(3))
		Expect(h.Values("cookie")).To(Equal([]string{"a=1", "b=2"}))

		v, ok := h.Get("COOKIE")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("a=1"))
	})

	It("should prepend proxy headers ahead of caller headers", func() {
		c := libori.Headers{}.Add("Accept", "*/*")
		p := libori.Headers{}.Add("Proxy-Authorization", "Basic Zm9v")

		h := c.Prepend(p)
		Expect(h[0].Key).To(Equal("Proxy-Authorization"))
		Expect(h[1].Key).To(Equal("Accept"))
	})

	It("should replace values with Set and drop them with Del", func() {
		h := libori.Headers{}.Add("X-Test", "1").Add("x-test", "2")
		h = h.Set("X-Test", "3")

		Expect(h.Values("X-Test")).To(Equal([]string{"3"}))

		h = h.Del("x-TEST")
		_, ok := h.Get("X-Test")
		Expect(ok).To(BeFalse())
	})

	It("should round trip through a standard header map", func() {
		h := libori.Headers{}.Add("X-A", "1").Add("X-A", "2").Add("X-B", "3")
		s := h.Std()

		Expect(s.Values("X-A")).To(Equal([]string{"1", "2"}))

		r := libori.FromStd(s)
		Expect(r.Values("X-A")).To(Equal([]string{"1", "2"}))
		Expect(r.Values("X-B")).To(Equal([]string{"3"}))
	})
})
