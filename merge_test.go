package terashuf

import (
	"testing"
)

func writeSpill(t *testing.T, dir string, content string, lineCount int64) *SpillFile {
	t.Helper()
	mgr := NewSpillManager(dir)
	sf, err := mgr.CreateSpill()
	if err != nil {
		t.Fatalf("CreateSpill: %v", err)
	}
	if _, err := sf.Write([]byte(content)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	sf.SetLineCount(lineCount)
	if err := sf.Rewind(); err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	return sf
}

func TestMergeReaderYieldsRecordsInOrder(t *testing.T) {
	dir := t.TempDir()
	sf := writeSpill(t, dir, "one\ntwo\nthree\n", 3)
	defer sf.CloseAndUnlink()

	mr := NewMergeReader('\n')
	dst := make([]byte, 256)
	want := []string{"one\n", "two\n", "three\n"}
	for i, w := range want {
		n, err := mr.ReadRecord(sf, dst)
		if err != nil {
			t.Fatalf("ReadRecord %d: %v", i, err)
		}
		if string(dst[:n]) != w {
			t.Errorf("record %d = %q, want %q", i, dst[:n], w)
		}
	}
}

func TestMergeReaderReturnsZeroAtExhaustion(t *testing.T) {
	dir := t.TempDir()
	sf := writeSpill(t, dir, "only\n", 1)
	defer sf.CloseAndUnlink()

	mr := NewMergeReader('\n')
	dst := make([]byte, 256)
	if n, err := mr.ReadRecord(sf, dst); err != nil || string(dst[:n]) != "only\n" {
		t.Fatalf("first ReadRecord = (%q, %v)", dst[:n], err)
	}
	n, err := mr.ReadRecord(sf, dst)
	if err != nil {
		t.Fatalf("ReadRecord at exhaustion: %v", err)
	}
	if n != 0 {
		t.Errorf("ReadRecord at exhaustion returned n = %d, want 0", n)
	}
}

func TestMergeReaderHandlesRecordsLargerThanReadBuffer(t *testing.T) {
	dir := t.TempDir()
	big := make([]byte, mergeReadBufSize*2+17)
	for i := range big {
		big[i] = 'a'
	}
	content := string(big) + "\n" + "tail\n"
	sf := writeSpill(t, dir, content, 2)
	defer sf.CloseAndUnlink()

	mr := NewMergeReader('\n')
	dst := make([]byte, len(content))
	n, err := mr.ReadRecord(sf, dst)
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if string(dst[:n]) != string(big)+"\n" {
		t.Errorf("first record length = %d, want %d", n, len(big)+1)
	}
	n, err = mr.ReadRecord(sf, dst)
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if string(dst[:n]) != "tail\n" {
		t.Errorf("second record = %q, want %q", dst[:n], "tail\n")
	}
}
