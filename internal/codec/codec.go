// Package codec maps legacy castlist labels to stable synthetic ids and back.
//
// The mapping is a pure function of the label: URL-safe base64 (unpadded) of
// the label's UTF-8 bytes behind a fixed "virtual_" prefix. Real castlist ids
// never start with the prefix, so the two id spaces cannot collide and two
// distinct labels can never encode to the same id.
package codec

import (
	"encoding/base64"
	"strings"
)

// VirtualPrefix marks synthetic ids derived from legacy labels. Reserved:
// real entity ids must never start with it.
const VirtualPrefix = "virtual_"

// Encode returns the synthetic virtual id for a legacy label. Deterministic
// across processes and restarts; no randomness, no clock.
func Encode(label string) string {
	return VirtualPrefix + base64.RawURLEncoding.EncodeToString([]byte(label))
}

// Decode returns the legacy label a virtual id was derived from. Non-virtual
// ids pass through unchanged, as do virtual ids whose payload does not decode
// (treated as opaque rather than rejected).
func Decode(id string) string {
	if !IsVirtual(id) {
		return id
	}
	raw := strings.TrimPrefix(id, VirtualPrefix)
	label, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return id
	}
	return string(label)
}

// IsVirtual reports whether an id belongs to the synthetic id space. This is
// the sole authority for virtual-vs-real branching everywhere else.
func IsVirtual(id string) bool {
	return strings.HasPrefix(id, VirtualPrefix)
}
