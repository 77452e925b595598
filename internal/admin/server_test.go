package admin_test

import (
	"context"
	"encoding/json"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tdelhaise/box/internal/admin"
)

func TestAdmin(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "admin suite")
}

func pingOnlyRegistry() *admin.Registry {
	return admin.NewRegistry(
		admin.Command{Name: "ping", Run: func(ctx context.Context, raw json.RawMessage) (any, error) {
			return map[string]any{"message": "pong dev"}, nil
		}},
	)
}

var _ = Describe("Registry", func() {
	It("looks up a registered command by name", func() {
		r := pingOnlyRegistry()
		cmd, ok := r.Lookup("ping")
		Expect(ok).To(BeTrue())
		Expect(cmd.Name).To(Equal("ping"))
	})

	It("reports absence for an unregistered command", func() {
		r := pingOnlyRegistry()
		_, ok := r.Lookup("nope")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("StringArg", func() {
	It("accepts a bare JSON string", func() {
		raw, _ := jsonMarshal("hello")
		v, err := admin.StringArg(raw, "key")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal("hello"))
	})

	It("extracts the named key from a JSON object", func() {
		raw := []byte(`{"target":"stdout"}`)
		v, err := admin.StringArg(raw, "target")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal("stdout"))
	})

	It("returns empty string for an omitted argument", func() {
		v, err := admin.StringArg(nil, "target")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(""))
	})

	It("rejects malformed JSON as a payload error", func() {
		_, err := admin.StringArg([]byte(`{not-json`), "target")
		Expect(err).To(HaveOccurred())
	})
})

func jsonMarshal(s string) ([]byte, error) {
	return []byte(`"` + s + `"`), nil
}
