package cache

import (
	"testing"
)

func TestFileHasher_HashContent(t *testing.T) {
	hasher := NewFileHasher()

	first := hasher.HashContent([]byte("model Person: Observable {}"))
	second := hasher.HashContent([]byte("model Person: Observable {}"))
	if first != second {
		t.Errorf("HashContent() is not deterministic: %s != %s", first, second)
	}

	other := hasher.HashContent([]byte("model Address: Observable {}"))
	if first == other {
		t.Errorf("HashContent() collided for different content")
	}

	if len(first) != 64 {
		t.Errorf("HashContent() length = %d, want 64 hex characters", len(first))
	}
}

func TestFileHasher_HashStringMatchesContent(t *testing.T) {
	hasher := NewFileHasher()
	content := "model Person: Observable {\n  _name: string @notify\n}\n"

	if hasher.HashString(content) != hasher.HashContent([]byte(content)) {
		t.Error("HashString() disagrees with HashContent() for the same bytes")
	}
}

func TestFileHasher_HashStrings(t *testing.T) {
	hasher := NewFileHasher()

	// The separator keeps adjacent parts from collapsing into each other
	if hasher.HashStrings("ab", "c") == hasher.HashStrings("a", "bc") {
		t.Error("HashStrings() should not collide across part boundaries")
	}

	if hasher.HashStrings("hash", "v1") != hasher.HashStrings("hash", "v1") {
		t.Error("HashStrings() is not deterministic")
	}
}
