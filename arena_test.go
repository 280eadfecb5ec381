package terashuf

import (
	"errors"
	"testing"

	terashuferrors "github.com/alexandresalle/terashuf/errors"
)

func TestNewArenaRejectsNonPositiveSize(t *testing.T) {
	if _, err := NewArena(0); !errors.Is(err, terashuferrors.ErrAllocFailed) {
		t.Errorf("NewArena(0): expected ErrAllocFailed, got %v", err)
	}
	if _, err := NewArena(-1); !errors.Is(err, terashuferrors.ErrAllocFailed) {
		t.Errorf("NewArena(-1): expected ErrAllocFailed, got %v", err)
	}
}

func TestArenaLenMatchesRequestedSize(t *testing.T) {
	const size = 1 << 20
	a, err := NewArena(size)
	if err != nil {
		t.Fatalf("NewArena: %v", err)
	}
	defer a.Close()

	if a.Len() != size {
		t.Errorf("Len() = %d, want %d", a.Len(), size)
	}
	if len(a.Bytes()) != size {
		t.Errorf("len(Bytes()) = %d, want %d", len(a.Bytes()), size)
	}
}

func TestArenaBytesAreWritable(t *testing.T) {
	a, err := NewArena(1 << 16)
	if err != nil {
		t.Fatalf("NewArena: %v", err)
	}
	defer a.Close()

	buf := a.Bytes()
	for i := range buf {
		buf[i] = byte(i)
	}
	for i, b := range a.Bytes() {
		if b != byte(i) {
			t.Fatalf("byte %d = %d, want %d", i, b, byte(i))
		}
	}
}

func TestArenaCloseIsIdempotent(t *testing.T) {
	a, err := NewArena(1 << 16)
	if err != nil {
		t.Fatalf("NewArena: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
