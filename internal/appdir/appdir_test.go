package appdir

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDataDirPrefersXDG(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir failed: %v", err)
	}
	want := filepath.Join(tmp, AppName)
	if dir != want {
		t.Fatalf("got %q, want %q", dir, want)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("DataDir did not create %q", dir)
	}
}

func TestDataDirFallsBackToHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", tmp)

	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir failed: %v", err)
	}
	want := filepath.Join(tmp, ".local", "share", AppName)
	if dir != want {
		t.Fatalf("got %q, want %q", dir, want)
	}
}
