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

package wire_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tdelhaise/box/internal/boxerr"
	"github.com/tdelhaise/box/internal/boxid"
	"github.com/tdelhaise/box/internal/wire"
)

func TestWire(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "wire suite")
}

var _ = Describe("Frame", func() {
	It("round-trips through Encode/Decode", func() {
		f := wire.Frame{
			Version:   wire.Version,
			Command:   wire.CmdPut,
			RequestID: boxid.MustNew(),
			NodeID:    boxid.MustNew(),
			UserID:    boxid.MustNew(),
			Payload:   []byte("payload bytes"),
		}
		raw, err := wire.Encode(f)
		Expect(err).NotTo(HaveOccurred())
		Expect(len(raw)).To(Equal(wire.HeaderSize + len(f.Payload)))

		decoded, err := wire.Decode(raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal(f))
	})

	It("rejects a payload larger than MaxPayloadSize", func() {
		_, err := wire.Encode(wire.Frame{Payload: make([]byte, wire.MaxPayloadSize+1)})
		Expect(boxerr.HasCode(err, boxerr.FrameDecode)).To(BeTrue())
	})

	It("rejects a datagram shorter than the header", func() {
		_, err := wire.Decode(make([]byte, wire.HeaderSize-1))
		Expect(boxerr.HasCode(err, boxerr.FrameDecode)).To(BeTrue())
	})

	It("rejects a bad magic number", func() {
		f := wire.Frame{RequestID: boxid.MustNew(), NodeID: boxid.MustNew(), UserID: boxid.MustNew()}
		raw, err := wire.Encode(f)
		Expect(err).NotTo(HaveOccurred())
		raw[0] ^= 0xFF

		_, err = wire.Decode(raw)
		Expect(boxerr.HasCode(err, boxerr.FrameDecode)).To(BeTrue())
	})

	It("rejects an unsupported version", func() {
		f := wire.Frame{RequestID: boxid.MustNew(), NodeID: boxid.MustNew(), UserID: boxid.MustNew()}
		raw, err := wire.Encode(f)
		Expect(err).NotTo(HaveOccurred())
		raw[4] = wire.Version + 1

		_, err = wire.Decode(raw)
		Expect(boxerr.HasCode(err, boxerr.FrameDecode)).To(BeTrue())
	})

	It("rejects a truncated payload", func() {
		f := wire.Frame{
			RequestID: boxid.MustNew(),
			NodeID:    boxid.MustNew(),
			UserID:    boxid.MustNew(),
			Payload:   []byte("hello"),
		}
		raw, err := wire.Encode(f)
		Expect(err).NotTo(HaveOccurred())

		_, err = wire.Decode(raw[:len(raw)-2])
		Expect(boxerr.HasCode(err, boxerr.FrameDecode)).To(BeTrue())
	})

	DescribeTable("Command.String",
		func(cmd wire.Command, want string) {
			Expect(cmd.String()).To(Equal(want))
		},
		Entry("HELLO", wire.CmdHello, "HELLO"),
		Entry("STATUS", wire.CmdStatus, "STATUS"),
		Entry("PUT", wire.CmdPut, "PUT"),
		Entry("GET", wire.CmdGet, "GET"),
		Entry("LOCATE", wire.CmdLocate, "LOCATE"),
		Entry("SEARCH", wire.CmdSearch, "SEARCH"),
		Entry("unknown", wire.Command(200), "UNKNOWN"),
	)
})

var _ = Describe("HelloPayload", func() {
	It("round-trips a request", func() {
		p := wire.HelloPayload{Status: 0, SupportedVersions: []uint8{1, 2}}
		raw, err := p.Encode()
		Expect(err).NotTo(HaveOccurred())

		decoded, err := wire.DecodeHello(raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal(p))
		Expect(decoded.IsRequest()).To(BeTrue())
		Expect(decoded.Supports(2)).To(BeTrue())
		Expect(decoded.Supports(9)).To(BeFalse())
	})

	It("round-trips a reply", func() {
		p := wire.HelloPayload{Status: wire.StatusCode(wire.StatusBadRequest), SupportedVersions: []uint8{1}}
		raw, err := p.Encode()
		Expect(err).NotTo(HaveOccurred())

		decoded, err := wire.DecodeHello(raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded.IsRequest()).To(BeFalse())
	})

	It("rejects a short payload", func() {
		_, err := wire.DecodeHello([]byte{0})
		Expect(boxerr.HasCode(err, boxerr.FrameDecode)).To(BeTrue())
	})

	It("rejects a version-count mismatch", func() {
		_, err := wire.DecodeHello([]byte{0, 2, 1})
		Expect(boxerr.HasCode(err, boxerr.FrameDecode)).To(BeTrue())
	})
})

var _ = Describe("StatusPayload", func() {
	It("round-trips a message", func() {
		p := wire.StatusPayload{Code: wire.StatusNotFound, Message: "queue not found"}
		raw, err := p.Encode()
		Expect(err).NotTo(HaveOccurred())

		decoded, err := wire.DecodeStatus(raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal(p))
	})

	It("rejects non-utf8 messages on encode", func() {
		_, err := wire.StatusPayload{Message: string([]byte{0xff, 0xfe})}.Encode()
		Expect(boxerr.HasCode(err, boxerr.FrameDecode)).To(BeTrue())
	})

	It("rejects a length mismatch on decode", func() {
		_, err := wire.DecodeStatus([]byte{0, 0, 5, 'h', 'i'})
		Expect(boxerr.HasCode(err, boxerr.FrameDecode)).To(BeTrue())
	})
})

var _ = Describe("PutPayload", func() {
	It("round-trips queue path, content type, and data", func() {
		p := wire.PutPayload{QueuePath: "INBOX", ContentType: "text/plain", Data: []byte("hello world")}
		raw, err := p.Encode()
		Expect(err).NotTo(HaveOccurred())

		decoded, err := wire.DecodePut(raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal(p))
	})

	It("round-trips empty data", func() {
		p := wire.PutPayload{QueuePath: "INBOX", ContentType: "", Data: nil}
		raw, err := p.Encode()
		Expect(err).NotTo(HaveOccurred())

		decoded, err := wire.DecodePut(raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded.QueuePath).To(Equal(p.QueuePath))
		Expect(decoded.Data).To(BeEmpty())
	})

	It("rejects a data length mismatch", func() {
		p := wire.PutPayload{QueuePath: "INBOX", ContentType: "text/plain", Data: []byte("hi")}
		raw, err := p.Encode()
		Expect(err).NotTo(HaveOccurred())

		_, err = wire.DecodePut(raw[:len(raw)-1])
		Expect(boxerr.HasCode(err, boxerr.FrameDecode)).To(BeTrue())
	})
})

var _ = Describe("GetPayload and SearchPayload", func() {
	It("round-trips GET", func() {
		p := wire.GetPayload{QueuePath: "INBOX/sub"}
		raw, err := p.Encode()
		Expect(err).NotTo(HaveOccurred())

		decoded, err := wire.DecodeGet(raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal(p))
	})

	It("rejects trailing bytes after the queue path", func() {
		p := wire.GetPayload{QueuePath: "INBOX"}
		raw, err := p.Encode()
		Expect(err).NotTo(HaveOccurred())

		_, err = wire.DecodeGet(append(raw, 0x00))
		Expect(boxerr.HasCode(err, boxerr.FrameDecode)).To(BeTrue())
	})

	It("round-trips SEARCH identically to GET", func() {
		p := wire.SearchPayload{QueuePath: "INBOX"}
		raw, err := p.Encode()
		Expect(err).NotTo(HaveOccurred())

		decoded, err := wire.DecodeSearch(raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal(p))
	})
})

var _ = Describe("LocatePayload", func() {
	It("round-trips a target node UUID", func() {
		p := wire.LocatePayload{TargetNodeID: boxid.MustNew()}
		raw, err := p.Encode()
		Expect(err).NotTo(HaveOccurred())
		Expect(raw).To(HaveLen(boxid.Size))

		decoded, err := wire.DecodeLocate(raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal(p))
	})

	It("rejects a payload of the wrong length", func() {
		_, err := wire.DecodeLocate(make([]byte, boxid.Size-1))
		Expect(boxerr.HasCode(err, boxerr.FrameDecode)).To(BeTrue())
	})
})
