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

package request_test

import (
	"context"
	"io"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	libpol "github/sabouaram/httpool/pool"
	libreq "github/sabouaram/httpool/request"
)

var _ = Describe("Request Builder", func() {
	var (
		ctx context.Context
		cnl context.CancelFunc
		trp *fakeTransport
		req libreq.Request
	)

	BeforeEach(func() {
		ctx, cnl = context.WithTimeout(context.Background(), 5*time.Second)
		trp = &fakeTransport{status: 200, reason: "OK", body: `{"name":"pool","okay":true}`}
		req = libreq.New(func() libpol.Transport {
			return trp
		})
	})

	AfterEach(func() {
		if cnl != nil {
			cnl()
		}
	})

	Context("composing the request", func() {
		It("should build the wire url from endpoint, path and params", func() {
			Expect(req.Endpoint("http://api.test/v1")).ToNot(HaveOccurred())
			req.AddPath("items/")
			req.AddParams("page", "2")
			req.Method(http.MethodGet)

			rsp, err := req.Do(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(rsp.Status).To(Equal(200))

			Expect(trp.method).To(Equal("GET"))
			Expect(trp.wire.Host).To(Equal("api.test"))
			Expect(trp.wire.Port).To(Equal(80))
			Expect(trp.wire.Target).To(Equal("/v1/items?page=2"))
		})

		It("should carry the auth and content type headers", func() {
			Expect(req.Endpoint("https://api.test/")).ToNot(HaveOccurred())
			req.AuthBearer("tok")
			req.ContentType("application/json")

			_, err := req.Do(ctx)
			Expect(err).ToNot(HaveOccurred())

			v, ok := trp.hdr.Get("Authorization")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("Bearer tok"))

			v, ok = trp.hdr.Get("Content-Type")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("application/json"))
		})

		It("should marshal a json body", func() {
			Expect(req.Endpoint("http://api.test/items")).ToNot(HaveOccurred())
			req.Method(http.MethodPost)
			Expect(req.RequestJson(map[string]string{"k": "v"})).ToNot(HaveOccurred())

			_, err := req.Do(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(trp.sent).To(Equal(`{"k":"v"}`))
		})

		It("should refuse running without endpoint or transport", func() {
			_, err := req.Do(ctx)
			Expect(err).To(HaveOccurred())

			r := libreq.New(nil)
			Expect(r.Endpoint("http://api.test/")).ToNot(HaveOccurred())

			_, err = r.Do(ctx)
			Expect(err).To(HaveOccurred())
			Expect(err.HasCode(libreq.ErrorTransportMissing)).To(BeTrue())
		})
	})

	Context("parsing the response", func() {
		type model struct {
			Name string `json:"name"`
			Okay bool   `json:"okay"`
		}

		It("should unmarshal a valid response", func() {
			Expect(req.Endpoint("http://api.test/item")).ToNot(HaveOccurred())

			var m model

			Expect(req.DoParse(ctx, &m, 200)).ToNot(HaveOccurred())
			Expect(m.Name).To(Equal("pool"))
			Expect(m.Okay).To(BeTrue())
		})

		It("should keep the failure details when the status is rejected", func() {
			trp.status = 500
			trp.reason = "Internal Server Error"
			trp.body = "boom"

			Expect(req.Endpoint("http://api.test/item")).ToNot(HaveOccurred())

			var m model

			err := req.DoParse(ctx, &m, 200, 201)
			Expect(err).To(HaveOccurred())
			Expect(err.HasCode(libreq.ErrorResponseStatus)).To(BeTrue())

			le := req.Error()
			Expect(le).ToNot(BeNil())
			Expect(le.StatusCode()).To(Equal(500))
			Expect(le.Status()).To(Equal("Internal Server Error"))
			Expect(le.Body().String()).To(Equal("boom"))
		})

		It("should report an unmarshalling failure", func() {
			trp.body = "not json"

			Expect(req.Endpoint("http://api.test/item")).ToNot(HaveOccurred())

			var m model

			err := req.DoParse(ctx, &m)
			Expect(err).To(HaveOccurred())
			Expect(err.HasCode(libreq.ErrorResponseUnmarshall)).To(BeTrue())
		})

		It("should clone into an independent request", func() {
			Expect(req.Endpoint("http://api.test/item")).ToNot(HaveOccurred())
			req.Header("X-Trace", "abc")

			c := req.Clone()
			c.Header("X-Trace", "def")

			_, err := req.Do(ctx)
			Expect(err).ToNot(HaveOccurred())

			v, _ := trp.hdr.Get("X-Trace")
			Expect(v).To(Equal("abc"))

			_, err = c.Do(ctx)
			Expect(err).ToNot(HaveOccurred())

			v, _ = trp.hdr.Get("X-Trace")
			Expect(v).To(Equal("def"))
		})
	})
})

var _ = Describe("Request error surface", func() {
	It("should expose the transport failure", func() {
		trp := &fakeTransport{fail: libpol.ErrorPoolTimeout.Error(nil)}
		req := libreq.New(func() libpol.Transport {
			return trp
		})

		Expect(req.Endpoint("http://api.test/")).ToNot(HaveOccurred())

		ctx, cnl := context.WithTimeout(context.Background(), time.Second)
		defer cnl()

		_, err := req.Do(ctx)
		Expect(err).To(HaveOccurred())
		Expect(err.HasCode(libreq.ErrorSendRequest)).To(BeTrue())
		Expect(err.HasCode(libpol.ErrorPoolTimeout)).To(BeTrue())
	})
})

var _ = Describe("Request body passthrough", func() {
	It("should hand the raw body stream back to the caller", func() {
		trp := &fakeTransport{status: 200, reason: "OK", body: "raw-bytes"}
		req := libreq.New(func() libpol.Transport {
			return trp
		})

		Expect(req.Endpoint("http://api.test/raw")).ToNot(HaveOccurred())

		ctx, cnl := context.WithTimeout(context.Background(), time.Second)
		defer cnl()

		rsp, err := req.Do(ctx)
		Expect(err).ToNot(HaveOccurred())

		p, e := io.ReadAll(rsp.Body)
		Expect(e).ToNot(HaveOccurred())
		Expect(string(p)).To(Equal("raw-bytes"))
		Expect(rsp.Body.Close()).ToNot(HaveOccurred())
	})
})
