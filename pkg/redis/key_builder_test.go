package redis

import "testing"

func TestKeyBuilder_EnvironmentPrefixes(t *testing.T) {
	tests := []struct {
		name           string
		environment    string
		expectedPrefix string
	}{
		{"production uses prod prefix", "production", "prod"},
		{"development uses staging prefix", "development", "staging"},
		{"staging uses staging prefix", "staging", "staging"},
		{"test uses staging prefix", "test", "staging"},
		{"unknown defaults to prod prefix", "unknown", "prod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb := NewKeyBuilder(tt.environment)
			if kb.GetPrefix() != tt.expectedPrefix {
				t.Errorf("NewKeyBuilder(%s).GetPrefix() = %s, want %s",
					tt.environment, kb.GetPrefix(), tt.expectedPrefix)
			}
		})
	}
}

func TestKeyBuilder_KeyCommunityLists(t *testing.T) {
	kb := NewKeyBuilder("production")

	got := kb.KeyCommunityLists("391415444084490240")
	want := "prod:castlist:community:391415444084490240:lists"
	if got != want {
		t.Errorf("KeyCommunityLists = %s, want %s", got, want)
	}
}

func TestKeyBuilder_EnvironmentSeparation(t *testing.T) {
	prodKey := NewKeyBuilder("production").KeyCommunityLists("g1")
	stagingKey := NewKeyBuilder("development").KeyCommunityLists("g1")

	if prodKey == stagingKey {
		t.Errorf("production and staging keys should differ, both were %s", prodKey)
	}
}
