package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func Test_Real_WriteFileAtomic_Replaces_Content_And_Applies_Mode(t *testing.T) {
	t.Parallel()

	r := NewReal()
	path := filepath.Join(t.TempDir(), "recipes.xml")

	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := r.WriteFileAtomic(path, []byte("new"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if string(got) != "new" {
		t.Fatalf("content=%q, want %q", got, "new")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	if got, want := info.Mode().Perm(), os.FileMode(0o644); got != want {
		t.Fatalf("mode=%v, want %v", got, want)
	}
}

func Test_Real_WriteFileAtomic_Leaves_No_Temp_Files_When_Done(t *testing.T) {
	t.Parallel()

	r := NewReal()
	dir := t.TempDir()
	path := filepath.Join(dir, "recipes.xml")

	for range 3 {
		if err := r.WriteFileAtomic(path, []byte("<recipes/>"), 0o644); err != nil {
			t.Fatalf("WriteFileAtomic: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}

		t.Fatalf("dir entries=%v, want only recipes.xml", names)
	}
}

func Test_Real_WriteFileAtomic_Returns_Error_When_Path_Is_Empty(t *testing.T) {
	t.Parallel()

	if err := NewReal().WriteFileAtomic("", []byte("x"), 0o644); err == nil {
		t.Fatal("WriteFileAtomic(\"\"): want error, got nil")
	}
}

func Test_Real_Exists_Reports_Presence(t *testing.T) {
	t.Parallel()

	r := NewReal()
	path := filepath.Join(t.TempDir(), "present")

	ok, err := r.Exists(path)
	if err != nil || ok {
		t.Fatalf("Exists(missing)=(%v, %v), want (false, nil)", ok, err)
	}

	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	ok, err = r.Exists(path)
	if err != nil || !ok {
		t.Fatalf("Exists(present)=(%v, %v), want (true, nil)", ok, err)
	}
}
