package idgen

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDv7(t *testing.T) {
	gen := UUIDv7()
	id := gen()
	parsed, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("not a valid uuid: %q", id)
	}
	if parsed.Version() != 7 {
		t.Errorf("version = %d, want 7", parsed.Version())
	}
	if gen() == id {
		t.Error("consecutive ids collide")
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("cap_", func() string { return "fixed" })
	if got := gen(); got != "cap_fixed" {
		t.Errorf("got %q, want cap_fixed", got)
	}
}

func TestDefault(t *testing.T) {
	if _, err := uuid.Parse(Default()); err != nil {
		t.Errorf("Default() did not produce a uuid: %v", err)
	}
}
