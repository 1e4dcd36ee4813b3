package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_WriteFile(t *testing.T) {
	dir := t.TempDir()
	fs := NewOSFileSystem()
	path := filepath.Join(dir, "nested", "tracker.db")

	if err := fs.WriteFile(path, []byte("first"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := fs.WriteFile(path, []byte("second"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q; want second", got)
	}

	// 一時ファイルが残っていないこと
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected 1 file, found %d", len(entries))
	}
}

func TestOSFileSystem_AppendFile(t *testing.T) {
	dir := t.TempDir()
	fs := NewOSFileSystem()
	path := filepath.Join(dir, "sessions", "Session.tsv")

	for _, line := range []string{"header\n", "row1\n", "row2\n"} {
		if err := fs.AppendFile(path, []byte(line), 0644); err != nil {
			t.Fatalf("AppendFile() error = %v", err)
		}
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "header\nrow1\nrow2\n" {
		t.Errorf("content = %q", got)
	}
}

func TestOSFileSystem_FileExists(t *testing.T) {
	dir := t.TempDir()
	fs := NewOSFileSystem()
	path := filepath.Join(dir, "unlockdb")

	if fs.FileExists(path) {
		t.Error("FileExists returned true for non-existing file")
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if !fs.FileExists(path) {
		t.Error("FileExists returned false for existing file")
	}
}
