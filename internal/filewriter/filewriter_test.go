package filewriter

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileWriter(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "nested", "out.txt")

	fw, err := New(p)
	if err != nil {
		t.Fatal("New failed: ", err)
	}
	if _, err := fw.Write([]byte("1-a\n")); err != nil {
		t.Fatal("Write failed: ", err)
	}
	if _, err := fw.Write([]byte("b\n")); err != nil {
		t.Fatal("Write failed: ", err)
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Fatalf("%v exists before Close", p)
	}
	if err := fw.Close(); err != nil {
		t.Fatal("Close failed: ", err)
	}

	got, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "1-a\nb\n" {
		t.Errorf("file contains %q; want %q", got, "1-a\nb\n")
	}

	ents, err := os.ReadDir(filepath.Dir(p))
	if err != nil {
		t.Fatal(err)
	}
	if len(ents) != 1 {
		t.Errorf("directory has %d entries after Close; want 1", len(ents))
	}
	if fi, err := os.Stat(p); err == nil && fi.Mode().Perm() != 0o644 {
		t.Errorf("file mode is %v; want 0644", fi.Mode().Perm())
	}
}

func TestFileWriter_Abort(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out.txt")

	fw, err := New(p)
	if err != nil {
		t.Fatal("New failed: ", err)
	}
	fw.Write([]byte("discarded"))
	fw.Abort()

	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Errorf("%v exists after Abort", p)
	}
	ents, _ := os.ReadDir(dir)
	if len(ents) != 0 {
		t.Errorf("directory has %d entries after Abort; want 0", len(ents))
	}
}

func TestWriteFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "report.txt")
	if err := WriteFile(p, []byte("hello")); err != nil {
		t.Fatal("WriteFile failed: ", err)
	}
	if got, _ := os.ReadFile(p); string(got) != "hello" {
		t.Errorf("file contains %q; want %q", got, "hello")
	}
}
