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

package state_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	cnnstt "github/sabouaram/httpool/connection/state"
)

var _ = Describe("Connection State", func() {
	Context("formatting", func() {
		It("should expose one code per state", func() {
			seen := make(map[string]bool)

			for _, s := range cnnstt.List() {
				Expect(s.String()).ToNot(BeEmpty())
				Expect(seen[s.Code()]).To(BeFalse())
				seen[s.Code()] = true
			}
		})

		It("should report reusable states", func() {
			Expect(cnnstt.Ready.IsReusable()).To(BeTrue())
			Expect(cnnstt.Idle.IsReusable()).To(BeTrue())
			Expect(cnnstt.Pending.IsReusable()).To(BeFalse())
			Expect(cnnstt.Active.IsReusable()).To(BeFalse())
			Expect(cnnstt.Closed.IsReusable()).To(BeFalse())
		})
	})

	Context("parsing", func() {
		It("should parse codes back to states", func() {
			for _, s := range cnnstt.List() {
				Expect(cnnstt.Parse(s.Code())).To(Equal(s))
				Expect(cnnstt.Parse(s.String())).To(Equal(s))
			}
		})

		It("should map unknown strings to Closed", func() {
			Expect(cnnstt.Parse("bogus")).To(Equal(cnnstt.Closed))
		})
	})

	Context("encoding", func() {
		It("should round trip through json", func() {
			for _, s := range cnnstt.List() {
				p, err := json.Marshal(s)
				Expect(err).ToNot(HaveOccurred())

				var r cnnstt.State
				Expect(json.Unmarshal(p, &r)).ToNot(HaveOccurred())
				Expect(r).To(Equal(s))
			}
		})

		It("should round trip through text", func() {
			for _, s := range cnnstt.List() {
				p, err := s.MarshalText()
				Expect(err).ToNot(HaveOccurred())

				var r cnnstt.State
				Expect(r.UnmarshalText(p)).ToNot(HaveOccurred())
				Expect(r).To(Equal(s))
			}
		})
	})
})
