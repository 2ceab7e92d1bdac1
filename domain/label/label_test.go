package label

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	set, err := Load(strings.NewReader("0 Cat\n  1 Dog  \n2 Bird\r\n\n  \n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if set.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", set.Len())
	}

	want := []string{"0 Cat", "1 Dog", "2 Bird"}
	for i, w := range want {
		got, ok := set.Name(i)
		if !ok || got != w {
			t.Errorf("Name(%d) = %q, %v, want %q", i, got, ok, w)
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", ErrEmpty},
		{"only blank lines", "\n  \n\t\n", ErrEmpty},
		{"duplicate", "cat\ndog\ncat\n", ErrDuplicate},
		{"interior blank line", "cat\n\ndog\n", ErrBlankLine},
		{"leading blank line", "\ncat\ndog\n", ErrBlankLine},
		{"same output folder", "a/b\na_b\n", ErrDuplicate},
		{"folders differ only by case", "Cat\ncat\n", ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_LineIsClassIndex(t *testing.T) {
	set, err := Load(strings.NewReader("cat\ndog\nbird\n\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for i, want := range []string{"cat", "dog", "bird"} {
		if got, ok := set.Name(i); !ok || got != want {
			t.Errorf("Name(%d) = %q, %v, want %q", i, got, ok, want)
		}
	}
	if set.Len() != 3 {
		t.Errorf("Len() = %d, want 3", set.Len())
	}
}

func TestSet_NameOutOfRange(t *testing.T) {
	set := New("a", "b")

	if _, ok := set.Name(-1); ok {
		t.Error("Name(-1) should not be ok")
	}
	if _, ok := set.Name(2); ok {
		t.Error("Name(2) should not be ok")
	}
}

func TestSet_NamesIsCopy(t *testing.T) {
	set := New("a", "b")
	names := set.Names()
	names[0] = "modified"

	if got, _ := set.Name(0); got != "a" {
		t.Errorf("Names() returned internal slice, Name(0) = %q", got)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.txt")
	if err := os.WriteFile(path, []byte("apple\nbanana\n"), 0644); err != nil {
		t.Fatal(err)
	}

	set, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if set.Len() != 2 {
		t.Errorf("Len() = %d, want 2", set.Len())
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("LoadFile() on missing file should return error")
	}
}

func TestFolderName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cat", "cat"},
		{"0 Cat", "0 Cat"},
		{"a/b", "a_b"},
		{`a\b:c`, "a_b_c"},
		{"what?", "what_"},
		{"  ", "unlabeled"},
		{"..", "unlabeled"},
		{"tab\there", "tab_here"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := FolderName(tt.in); got != tt.want {
				t.Errorf("FolderName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
