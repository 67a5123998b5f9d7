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
	"io"
	"sync"
	"sync/atomic"

	libcnn "github/sabouaram/httpool/connection"
)

// stream wraps a response body so that disposing of it, on any path, first
// closes the underlying body and then notifies the pool exactly once with
// the owning connection. Draining the body to EOF disposes of it too.
type stream struct {
	b io.ReadCloser
	c libcnn.Connection
	f func(libcnn.Connection)
	o sync.Once
	d atomic.Bool
}

func newStream(b io.ReadCloser, cnn libcnn.Connection, f func(libcnn.Connection)) io.ReadCloser {
	return &stream{
		b: b,
		c: cnn,
		f: f,
	}
}

func (s *stream) Read(p []byte) (int, error) {
	if s.d.Load() {
		return 0, io.EOF
	}

	n, err := s.b.Read(p)

	if err == io.EOF {
		_ = s.release()
	}

	return n, err
}

func (s *stream) Close() error {
	return s.release()
}

func (s *stream) release() error {
	var err error

	s.o.Do(func() {
		s.d.Store(true)

		// the pool callback runs on every exit path of the underlying close
		defer s.f(s.c)

		err = s.b.Close()
	})

	return err
}
