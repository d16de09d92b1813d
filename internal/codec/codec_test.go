package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode_KnownValue(t *testing.T) {
	// "production" is the canonical fixture used across the service tests.
	assert.Equal(t, "virtual_cHJvZHVjdGlvbg", Encode("production"))
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	labels := []string{
		"production",
		"Season 5 Alumni",
		"winners",
		"ลิสต์ภาษาไทย",
		"emoji 🏆 label",
		"trailing space ",
		"a",
		"label/with+base64?chars=true",
	}

	for _, label := range labels {
		t.Run(label, func(t *testing.T) {
			id := Encode(label)
			assert.True(t, IsVirtual(id))
			assert.Equal(t, label, Decode(id))
		})
	}
}

func TestEncode_Deterministic(t *testing.T) {
	assert.Equal(t, Encode("jury"), Encode("jury"))
	assert.NotEqual(t, Encode("jury"), Encode("Jury"))
	assert.NotEqual(t, Encode("s1"), Encode("s2"))
}

func TestDecode_RealIDUnchanged(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"timestamp composite id", "castlist_1700000000000_391415444084490240"},
		{"default sentinel", "default"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, Decode(tt.id))
			assert.False(t, IsVirtual(tt.id))
		})
	}
}

func TestDecode_UndecodablePayloadPassesThrough(t *testing.T) {
	// "!" is outside the URL-safe alphabet; the id is treated as opaque.
	assert.Equal(t, "virtual_!!!", Decode("virtual_!!!"))
}

func TestIsVirtual(t *testing.T) {
	assert.True(t, IsVirtual("virtual_cHJvZHVjdGlvbg"))
	assert.True(t, IsVirtual("virtual_"))
	assert.False(t, IsVirtual("castlist_1700000000000_system"))
	assert.False(t, IsVirtual("Virtual_cHJvZHVjdGlvbg"))
}
