package terashuf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSpillManagerCreateSpillUsesExpectedNamingContract(t *testing.T) {
	dir := t.TempDir()
	mgr := NewSpillManager(dir)
	sf, err := mgr.CreateSpill()
	if err != nil {
		t.Fatalf("CreateSpill: %v", err)
	}
	defer sf.CloseAndUnlink()

	base := filepath.Base(sf.path)
	if !strings.HasPrefix(base, spillNamePrefix) {
		t.Errorf("spill name %q does not start with %q", base, spillNamePrefix)
	}
	if len(base) != len(spillNamePrefix)+spillNameSuffixLen {
		t.Errorf("spill name %q has length %d, want %d", base, len(base), len(spillNamePrefix)+spillNameSuffixLen)
	}
	if _, err := os.Stat(sf.path); err != nil {
		t.Errorf("spill file does not exist on disk: %v", err)
	}
}

func TestSpillManagerCreateSpillUniqueNames(t *testing.T) {
	dir := t.TempDir()
	mgr := NewSpillManager(dir)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		sf, err := mgr.CreateSpill()
		if err != nil {
			t.Fatalf("CreateSpill: %v", err)
		}
		defer sf.CloseAndUnlink()
		if seen[sf.path] {
			t.Fatalf("duplicate spill path: %s", sf.path)
		}
		seen[sf.path] = true
	}
}

func TestSpillFileWriteRewindRoundtrip(t *testing.T) {
	dir := t.TempDir()
	mgr := NewSpillManager(dir)
	sf, err := mgr.CreateSpill()
	if err != nil {
		t.Fatalf("CreateSpill: %v", err)
	}
	defer sf.CloseAndUnlink()

	want := "first record\nsecond record\n"
	if _, err := sf.Write([]byte(want)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	sf.SetLineCount(2)

	if err := sf.Rewind(); err != nil {
		t.Fatalf("Rewind: %v", err)
	}

	got := make([]byte, len(want))
	n, _ := sf.file.Read(got)
	if string(got[:n]) != want {
		t.Errorf("read back %q, want %q", got[:n], want)
	}
	if sf.LineCount() != 2 {
		t.Errorf("LineCount() = %d, want 2", sf.LineCount())
	}
}

func TestSpillFileCloseAndUnlinkRemovesFile(t *testing.T) {
	dir := t.TempDir()
	mgr := NewSpillManager(dir)
	sf, err := mgr.CreateSpill()
	if err != nil {
		t.Fatalf("CreateSpill: %v", err)
	}
	path := sf.path
	if err := sf.CloseAndUnlink(); err != nil {
		t.Fatalf("CloseAndUnlink: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected spill file to be removed, stat err = %v", err)
	}
}

func TestSpillFilePreallocateDoesNotCorruptContent(t *testing.T) {
	dir := t.TempDir()
	mgr := NewSpillManager(dir)
	sf, err := mgr.CreateSpill()
	if err != nil {
		t.Fatalf("CreateSpill: %v", err)
	}
	defer sf.CloseAndUnlink()

	if err := sf.Preallocate(4096); err != nil {
		t.Fatalf("Preallocate: %v", err)
	}
	want := "abc\n"
	if _, err := sf.Write([]byte(want)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := sf.Rewind(); err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	got := make([]byte, len(want))
	n, _ := sf.file.Read(got)
	if string(got[:n]) != want {
		t.Errorf("read back %q, want %q", got[:n], want)
	}
}
