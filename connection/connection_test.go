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

package connection_test

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	libdur "github.com/nabbar/golib/duration"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	libcnn "github/sabouaram/httpool/connection"
	cnnstt "github/sabouaram/httpool/connection/state"
	libori "github/sabouaram/httpool/origin"
)

var _ = Describe("Connection", func() {
	var (
		ctx context.Context
		cnl context.CancelFunc
		tmo libori.Timeout
	)

	BeforeEach(func() {
		ctx, cnl = context.WithTimeout(context.Background(), 5*time.Second)
		tmo = libori.Timeout{
			Connect: libdur.ParseDuration(2 * time.Second),
			Read:    libdur.ParseDuration(2 * time.Second),
		}
	})

	AfterEach(func() {
		if cnl != nil {
			cnl()
		}
	})

	Context("requesting over HTTP/1.1", func() {
		It("should serve one request and go idle once drained", func() {
			c := libcnn.New(libcnn.Config{Origin: org})
			defer func() {
				_ = c.Close()
			}()

			Expect(c.State()).To(Equal(cnnstt.Pending))

			rsp, err := c.Request(ctx, http.MethodGet, tgt("/"), nil, nil, tmo)
			Expect(err).ToNot(HaveOccurred())
			Expect(rsp.Status).To(Equal(200))
			Expect(rsp.Proto).To(Equal("HTTP/1.1"))
			Expect(c.State()).To(Equal(cnnstt.Active))
			Expect(c.IsHTTP11()).To(BeTrue())
			Expect(c.IsHTTP2()).To(BeFalse())

			p, e := io.ReadAll(rsp.Body)
			Expect(e).ToNot(HaveOccurred())
			Expect(string(p)).To(Equal("hello"))

			Expect(rsp.Body.Close()).ToNot(HaveOccurred())
			Expect(c.State()).To(Equal(cnnstt.Idle))
		})

		It("should reuse the same connection for sequential requests", func() {
			c := libcnn.New(libcnn.Config{Origin: org})
			defer func() {
				_ = c.Close()
			}()

			for i := 0; i < 3; i++ {
				Expect(c.MarkAsReady()).To(BeTrue())

				rsp, err := c.Request(ctx, http.MethodGet, tgt("/"), nil, nil, tmo)
				Expect(err).ToNot(HaveOccurred())

				_, _ = io.Copy(io.Discard, rsp.Body)
				Expect(rsp.Body.Close()).ToNot(HaveOccurred())
				Expect(c.State()).To(Equal(cnnstt.Idle))
			}
		})

		It("should send a request body and report the echo", func() {
			c := libcnn.New(libcnn.Config{Origin: org})
			defer func() {
				_ = c.Close()
			}()

			rsp, err := c.Request(ctx, http.MethodPost, tgt("/echo"), libori.Headers{}.Add("Content-Type", "text/plain"), bytes.NewBufferString("ping"), tmo)
			Expect(err).ToNot(HaveOccurred())

			p, _ := io.ReadAll(rsp.Body)
			Expect(string(p)).To(Equal("ping"))
			Expect(rsp.Body.Close()).ToNot(HaveOccurred())
		})

		It("should close the connection when the peer asks for it", func() {
			c := libcnn.New(libcnn.Config{Origin: org})

			rsp, err := c.Request(ctx, http.MethodGet, tgt("/close"), nil, nil, tmo)
			Expect(err).ToNot(HaveOccurred())

			_, _ = io.Copy(io.Discard, rsp.Body)
			Expect(rsp.Body.Close()).ToNot(HaveOccurred())

			Expect(c.State()).To(Equal(cnnstt.Closed))
			Expect(c.MarkAsReady()).To(BeFalse())
			Expect(c.IsConnectionDropped()).To(BeTrue())
		})

		It("should refuse a second claimant while a request is in flight", func() {
			c := libcnn.New(libcnn.Config{Origin: org})
			defer func() {
				_ = c.Close()
			}()

			var done = make(chan error, 1)

			go func() {
				rsp, err := c.Request(ctx, http.MethodGet, tgt("/slow"), nil, nil, tmo)
				if err != nil {
					done <- err
					return
				}
				_, _ = io.Copy(io.Discard, rsp.Body)
				done <- rsp.Body.Close()
			}()

			Eventually(c.State, time.Second, 10*time.Millisecond).Should(Equal(cnnstt.Active))

			_, err := c.Request(ctx, http.MethodGet, tgt("/"), nil, nil, tmo)
			Expect(err).To(HaveOccurred())
			Expect(err.HasCode(libcnn.ErrorConnectionRequired)).To(BeTrue())

			Expect(<-done).ToNot(HaveOccurred())
		})

		It("should time out a read bounded by the read timeout", func() {
			c := libcnn.New(libcnn.Config{Origin: org})

			short := tmo
			short.Read = libdur.ParseDuration(50 * time.Millisecond)

			_, err := c.Request(ctx, http.MethodGet, tgt("/slow"), nil, nil, short)
			Expect(err).To(HaveOccurred())
			Expect(err.HasCode(libcnn.ErrorResponseRead)).To(BeTrue())
			Expect(c.State()).To(Equal(cnnstt.Closed))
		})

		It("should fail the handshake against a dead endpoint", func() {
			dead := libori.New("http", "127.0.0.1", 1)
			c := libcnn.New(libcnn.Config{Origin: dead})

			_, err := c.Request(ctx, http.MethodGet, libori.URL{Scheme: "http", Host: "127.0.0.1", Port: 1, Target: "/"}, nil, nil, tmo)
			Expect(err).To(HaveOccurred())
			Expect(err.HasCode(libcnn.ErrorDialConnection)).To(BeTrue())
			Expect(c.State()).To(Equal(cnnstt.Closed))
		})
	})

	Context("probing a dropped peer", func() {
		It("should detect the peer closing an idle connection", func() {
			raw, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).ToNot(HaveOccurred())

			defer func() {
				_ = raw.Close()
			}()

			var closed = make(chan struct{})

			go func() {
				defer GinkgoRecover()

				con, e := raw.Accept()
				Expect(e).ToNot(HaveOccurred())

				br := bufio.NewReader(con)
				_, e = http.ReadRequest(br)
				Expect(e).ToNot(HaveOccurred())

				_, _ = io.WriteString(con, "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok")

				time.Sleep(100 * time.Millisecond)
				_ = con.Close()
				close(closed)
			}()

			o := libori.New("http", "127.0.0.1", raw.Addr().(*net.TCPAddr).Port)
			c := libcnn.New(libcnn.Config{Origin: o})

			defer func() {
				_ = c.Close()
			}()

			rsp, er := c.Request(ctx, http.MethodGet, libori.URL{Scheme: o.Scheme, Host: o.Host, Port: o.Port, Target: "/"}, nil, nil, tmo)
			Expect(er).ToNot(HaveOccurred())

			_, _ = io.Copy(io.Discard, rsp.Body)
			Expect(rsp.Body.Close()).ToNot(HaveOccurred())
			Expect(c.State()).To(Equal(cnnstt.Idle))
			Expect(c.IsConnectionDropped()).To(BeFalse())

			<-closed

			Eventually(c.IsConnectionDropped, time.Second, 20*time.Millisecond).Should(BeTrue())
		})
	})

	Context("hijacking the socket", func() {
		It("should detach the socket and leave the connection closed", func() {
			c := libcnn.New(libcnn.Config{Origin: org})

			rsp, err := c.Request(ctx, http.MethodGet, tgt("/"), nil, nil, tmo)
			Expect(err).ToNot(HaveOccurred())

			_, _ = io.Copy(io.Discard, rsp.Body)
			Expect(rsp.Body.Close()).ToNot(HaveOccurred())

			con := c.Hijack()
			Expect(con).ToNot(BeNil())
			Expect(c.State()).To(Equal(cnnstt.Closed))
			Expect(c.Socket()).To(BeNil())

			// the detached socket is still usable as a raw transport
			Expect(con.Close()).ToNot(HaveOccurred())
		})
	})

	Context("formatting the wire target", func() {
		It("should send the absolute form target verbatim", func() {
			raw, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).ToNot(HaveOccurred())

			defer func() {
				_ = raw.Close()
			}()

			var line = make(chan string, 1)

			go func() {
				defer GinkgoRecover()

				con, e := raw.Accept()
				Expect(e).ToNot(HaveOccurred())

				br := bufio.NewReader(con)
				l, _ := br.ReadString('\n')
				line <- strings.TrimSpace(l)

				_, _ = io.WriteString(con, "HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n")
				_ = con.Close()
			}()

			o := libori.New("http", "127.0.0.1", raw.Addr().(*net.TCPAddr).Port)
			c := libcnn.New(libcnn.Config{Origin: o})

			defer func() {
				_ = c.Close()
			}()

			w := libori.URL{Scheme: o.Scheme, Host: o.Host, Port: o.Port, Target: "http://example.org:80/path?q=1"}
			hdr := libori.Headers{}.Add("Host", "example.org")

			rsp, er := c.Request(ctx, http.MethodGet, w, hdr, nil, tmo)
			Expect(er).ToNot(HaveOccurred())
			_, _ = io.Copy(io.Discard, rsp.Body)
			_ = rsp.Body.Close()

			Expect(<-line).To(Equal("GET http://example.org:80/path?q=1 HTTP/1.1"))
		})
	})
})
