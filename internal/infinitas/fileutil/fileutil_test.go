package fileutil

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/shiroemons/go-infitracker/internal/infinitas/mocks"
)

func TestWithBOM(t *testing.T) {
	got := WithBOM([]byte("title\tType"))
	if !bytes.HasPrefix(got, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatalf("BOM missing: % X", got[:3])
	}
	if string(got[3:]) != "title\tType" {
		t.Errorf("content = %q", got[3:])
	}
}

func TestSaveToFileWithBOM(t *testing.T) {
	fs := mocks.NewMockFileSystem()
	if err := SaveToFileWithBOM(fs, "out/tracker.tsv", []byte("a\tb\n")); err != nil {
		t.Fatalf("SaveToFileWithBOM() error = %v", err)
	}
	if !fs.Dirs["out"] {
		t.Error("Output directory was not created")
	}
	if got := fs.Files["out/tracker.tsv"]; !bytes.Equal(got, append([]byte{0xEF, 0xBB, 0xBF}, "a\tb\n"...)) {
		t.Errorf("written = % X", got)
	}
}

func TestLocate(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(*mocks.MockFileSystem)
		input     string
		want      string
	}{
		{
			name: "カレントディレクトリにある",
			setupMock: func(fs *mocks.MockFileSystem) {
				fs.Files["/current/offsets.txt"] = []byte("P2D:J:B:A:2024")
			},
			input: "offsets.txt",
			want:  "/current/offsets.txt",
		},
		{
			name: "実行ファイルのディレクトリにある",
			setupMock: func(fs *mocks.MockFileSystem) {
				fs.Files["/exec/offsets.txt"] = []byte("P2D:J:B:A:2024")
			},
			input: "offsets.txt",
			want:  "/exec/offsets.txt",
		},
		{
			name:      "どこにもない",
			setupMock: func(fs *mocks.MockFileSystem) {},
			input:     "offsets.txt",
			want:      "/current/offsets.txt",
		},
		{
			name:      "絶対パス",
			setupMock: func(fs *mocks.MockFileSystem) {},
			input:     "/etc/infitracker/offsets.txt",
			want:      "/etc/infitracker/offsets.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := mocks.NewMockFileSystem()
			fs.WorkingDir = "/current"
			fs.ExecPath = "/exec/infitracker.exe"
			tt.setupMock(fs)

			got, err := Locate(fs, tt.input)
			if err != nil {
				t.Fatalf("Locate() error = %v", err)
			}
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("Locate() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestSessionFilename(t *testing.T) {
	started := time.Date(2024, 3, 9, 21, 5, 7, 0, time.Local)
	got := SessionFilename("sessions", started)
	want := filepath.Join("sessions", "Session_2024_03_09_21_05_07.tsv")
	if got != want {
		t.Errorf("SessionFilename() = %q; want %q", got, want)
	}
}
