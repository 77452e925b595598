/*
 * MIT License
 *
 * Copyright (c) 2026 Thierry Delhaise
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

package boxid_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tdelhaise/box/internal/boxid"
)

func TestBoxID(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "boxid suite")
}

var _ = Describe("New", func() {
	It("generates distinct, non-nil UUIDs", func() {
		a, err := boxid.New()
		Expect(err).NotTo(HaveOccurred())
		b, err := boxid.New()
		Expect(err).NotTo(HaveOccurred())

		Expect(a.IsNil()).To(BeFalse())
		Expect(a).NotTo(Equal(b))
	})
})

var _ = Describe("Parse and String", func() {
	It("round-trips a canonical dashed form", func() {
		orig := boxid.MustNew()
		parsed, err := boxid.Parse(orig.String())
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed).To(Equal(orig))
	})

	It("is tolerant of upper case input", func() {
		orig := boxid.MustNew()
		upper := stringsToUpper(orig.String())
		parsed, err := boxid.Parse(upper)
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed).To(Equal(orig))
	})

	It("trims surrounding whitespace", func() {
		orig := boxid.MustNew()
		parsed, err := boxid.Parse("  " + orig.String() + "\n")
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed).To(Equal(orig))
	})

	It("rejects a string of the wrong length", func() {
		_, err := boxid.Parse("not-a-uuid")
		Expect(err).To(MatchError(boxid.ErrMalformed))
	})

	It("rejects non-hex characters", func() {
		bad := "zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz"
		_, err := boxid.Parse(bad)
		Expect(err).To(MatchError(boxid.ErrMalformed))
	})
})

var _ = Describe("Bytes and FromBytes", func() {
	It("round-trips through the 16-byte binary form", func() {
		orig := boxid.MustNew()
		round, err := boxid.FromBytes(orig.Bytes())
		Expect(err).NotTo(HaveOccurred())
		Expect(round).To(Equal(orig))
	})

	It("rejects a slice that is not exactly 16 bytes", func() {
		_, err := boxid.FromBytes(make([]byte, 15))
		Expect(err).To(MatchError(boxid.ErrMalformed))
	})
})

var _ = Describe("MarshalText/UnmarshalText", func() {
	It("round-trips through JSON text marshaling", func() {
		orig := boxid.MustNew()
		text, err := orig.MarshalText()
		Expect(err).NotTo(HaveOccurred())

		var round boxid.UUID
		Expect(round.UnmarshalText(text)).To(Succeed())
		Expect(round).To(Equal(orig))
	})
})

var _ = Describe("IsNil", func() {
	It("reports true only for the zero value", func() {
		Expect(boxid.Nil.IsNil()).To(BeTrue())
		Expect(boxid.MustNew().IsNil()).To(BeFalse())
	})
})

var _ = Describe("Compare", func() {
	It("gives a total lexicographic order over the text form", func() {
		a := boxid.MustNew()
		b := boxid.MustNew()
		Expect(boxid.Compare(a, a)).To(Equal(0))
		if a.String() < b.String() {
			Expect(boxid.Compare(a, b)).To(BeNumerically("<", 0))
		} else {
			Expect(boxid.Compare(a, b)).To(BeNumerically(">", 0))
		}
	})
})

func stringsToUpper(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'a' && c <= 'z' {
			out[i] = c - ('a' - 'A')
		}
	}
	return string(out)
}
