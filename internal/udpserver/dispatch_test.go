package udpserver_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tdelhaise/box/internal/boxid"
	"github.com/tdelhaise/box/internal/location"
	"github.com/tdelhaise/box/internal/queuestore"
	"github.com/tdelhaise/box/internal/udpserver"
	"github.com/tdelhaise/box/internal/wire"
)

func TestUDPServer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "udpserver suite")
}

type alwaysPermanent struct{ names map[string]bool }

func (a alwaysPermanent) IsPermanent(q string) bool { return a.names[q] }

func newHandler(dir string) *udpserver.Handler {
	store := queuestore.New(dir)
	loc := location.New(store)
	serverNode := boxid.MustNew()
	serverUser := boxid.MustNew()
	return &udpserver.Handler{
		Store:      store,
		Location:   loc,
		Permanent:  alwaysPermanent{names: map[string]bool{}},
		ServerNode: serverNode,
		ServerUser: serverUser,
	}
}

var _ = Describe("Handler.Dispatch", func() {
	var (
		h   *udpserver.Handler
		ctx = context.Background()
	)

	BeforeEach(func() {
		h = newHandler(GinkgoT().TempDir())
	})

	It("rejects a frame with a bad magic number silently", func() {
		garbage := make([]byte, wire.HeaderSize)
		Expect(h.Dispatch(ctx, garbage)).To(BeEmpty())
	})

	It("replies HELLO(OK) when version 1 is supported", func() {
		reqID := boxid.MustNew()
		payload, err := wire.HelloPayload{Status: 0, SupportedVersions: []uint8{1}}.Encode()
		Expect(err).NotTo(HaveOccurred())
		raw, err := wire.Encode(wire.Frame{
			Version: wire.Version, Command: wire.CmdHello, RequestID: reqID,
			NodeID: boxid.MustNew(), UserID: boxid.MustNew(), Payload: payload,
		})
		Expect(err).NotTo(HaveOccurred())

		out := h.Dispatch(ctx, raw)
		Expect(out).To(HaveLen(1))

		reply, err := wire.Decode(out[0])
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Command).To(Equal(wire.CmdHello))
		Expect(reply.RequestID).To(Equal(reqID))

		hello, err := wire.DecodeHello(reply.Payload)
		Expect(err).NotTo(HaveOccurred())
		Expect(hello.Status).To(Equal(wire.StatusOK))
	})

	It("replies STATUS(BAD_REQUEST, unsupported-version) when version 1 is absent", func() {
		payload, _ := wire.HelloPayload{Status: 0, SupportedVersions: []uint8{99}}.Encode()
		raw, _ := wire.Encode(wire.Frame{
			Version: wire.Version, Command: wire.CmdHello, RequestID: boxid.MustNew(),
			NodeID: boxid.MustNew(), UserID: boxid.MustNew(), Payload: payload,
		})

		out := h.Dispatch(ctx, raw)
		Expect(out).To(HaveLen(1))
		reply, _ := wire.Decode(out[0])
		Expect(reply.Command).To(Equal(wire.CmdStatus))
		status, _ := wire.DecodeStatus(reply.Payload)
		Expect(status.Code).To(Equal(wire.StatusBadRequest))
		Expect(status.Message).To(Equal("unsupported-version"))
	})

	It("replies STATUS(UNAUTHORIZED, unknown-client) to PUT from an unpublished node", func() {
		payload, _ := wire.PutPayload{QueuePath: "inbox", ContentType: "text/plain", Data: []byte("hi")}.Encode()
		raw, _ := wire.Encode(wire.Frame{
			Version: wire.Version, Command: wire.CmdPut, RequestID: boxid.MustNew(),
			NodeID: boxid.MustNew(), UserID: boxid.MustNew(), Payload: payload,
		})

		out := h.Dispatch(ctx, raw)
		Expect(out).To(HaveLen(1))
		reply, _ := wire.Decode(out[0])
		status, _ := wire.DecodeStatus(reply.Payload)
		Expect(status.Code).To(Equal(wire.StatusUnauthorized))
		Expect(status.Message).To(Equal("unknown-client"))
	})

	It("unknown command yields STATUS(BAD_REQUEST, unknown-command)", func() {
		raw, _ := wire.Encode(wire.Frame{
			Version: wire.Version, Command: wire.Command(0xFE), RequestID: boxid.MustNew(),
			NodeID: boxid.MustNew(), UserID: boxid.MustNew(), Payload: nil,
		})

		out := h.Dispatch(ctx, raw)
		Expect(out).To(HaveLen(1))
		reply, _ := wire.Decode(out[0])
		status, _ := wire.DecodeStatus(reply.Payload)
		Expect(status.Code).To(Equal(wire.StatusBadRequest))
		Expect(status.Message).To(Equal("unknown-command"))
	})

	It("SEARCH on an absent queue yields STATUS(OK, sync-empty)", func() {
		payload, _ := wire.SearchPayload{QueuePath: "never-created"}.Encode()
		nodeID, userID := boxid.MustNew(), boxid.MustNew()
		raw, _ := wire.Encode(wire.Frame{
			Version: wire.Version, Command: wire.CmdSearch, RequestID: boxid.MustNew(),
			NodeID: nodeID, UserID: userID, Payload: payload,
		})

		// Publish so the node/user pair is authorized.
		Expect(h.Location.Publish(ctx, location.NodeRecord{NodeUUID: nodeID, UserUUID: userID})).To(Succeed())

		out := h.Dispatch(ctx, raw)
		Expect(out).To(HaveLen(1))
		reply, _ := wire.Decode(out[0])
		status, _ := wire.DecodeStatus(reply.Payload)
		Expect(status.Code).To(Equal(wire.StatusOK))
		Expect(status.Message).To(Equal("sync-empty"))
	})
})
