package config

import (
	"testing"

	"github.com/shiroemons/go-infitracker/internal/infinitas/mocks"
)

func TestParseTable(t *testing.T) {
	tests := []struct {
		name  string
		input string
		sep   string
		want  map[string]string
	}{
		{
			name:  "タブ区切り",
			input: "2024052100\nfi\"ve\t5.1.1.\nA, B, C\tABC \r\n",
			sep:   "\t",
			want:  map[string]string{"fi\"ve": "5.1.1.", "A, B, C": "ABC"},
		},
		{
			name:  "カンマ区切り",
			input: "v1\n01000,Base\n25034, Sub ,extra\n",
			sep:   ",",
			want:  map[string]string{"01000": "Base", "25034": "Sub"},
		},
		{
			name:  "重複は先勝ち",
			input: "01000,Base\n01000,Bits\n",
			sep:   ",",
			want:  map[string]string{"01000": "Base"},
		},
		{
			name:  "空",
			input: "",
			sep:   ",",
			want:  map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTable([]byte(tt.input), tt.sep)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d; want %d (%v)", len(got), len(tt.want), got)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("got[%q] = %q; want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestLoadTables(t *testing.T) {
	fs := mocks.NewMockFileSystem()

	fixes, err := LoadEncodingFixes(fs, "encodingfixes.txt")
	if err != nil || len(fixes) != 0 {
		t.Errorf("missing file: %v, %v", fixes, err)
	}

	fs.Files["customtypes.txt"] = []byte("2024\n21201,Event\n")
	types, err := LoadCustomTypes(fs, "customtypes.txt")
	if err != nil {
		t.Fatalf("LoadCustomTypes() error = %v", err)
	}
	if types["21201"] != "Event" {
		t.Errorf("types = %v", types)
	}
}
