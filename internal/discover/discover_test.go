package discover

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiscoverRustFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "src/main.rs", "fn main() {}")
	writeFile(t, dir, "src/lib/util.rs", "pub fn helper() {}")
	// Non-Rust file should be ignored
	writeFile(t, dir, "Cargo.toml", "[package]")
	// Hidden file should be ignored
	writeFile(t, dir, ".hidden.rs", "fn secret() {}")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(entries), paths)
	}

	// Should be sorted and slash separated
	if entries[0].Path != "src/lib/util.rs" {
		t.Errorf("entry 0: got %q", entries[0].Path)
	}
	if entries[1].Path != "src/main.rs" {
		t.Errorf("entry 1: got %q", entries[1].Path)
	}

	for _, e := range entries {
		if e.Language != "rust" {
			t.Errorf("entry %q: language = %q, want rust", e.Path, e.Language)
		}
		if e.Size == 0 || e.ModTime.IsZero() {
			t.Errorf("entry %q: missing size or mtime", e.Path)
		}
	}
}

func TestDiscoverSkipDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.rs", "fn main() {}")
	writeFile(t, dir, "target/debug/build/out.rs", "fn gen() {}")
	writeFile(t, dir, "node_modules/pkg.rs", "fn x() {}")
	writeFile(t, dir, ".hidden/secret.rs", "fn s() {}")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Path != "main.rs" {
		t.Errorf("expected main.rs, got %q", entries[0].Path)
	}
}

func TestDiscoverExclude(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "src/main.rs", "fn main() {}")
	writeFile(t, dir, "src/generated/bindings.rs", "fn ffi() {}")
	writeFile(t, dir, "benches/bench.rs", "fn bench() {}")
	writeFile(t, dir, "src/proto_gen.rs", "fn p() {}")

	entries, err := Files(dir, Options{Exclude: []string{"src/generated", "benches/**", "**/*_gen.rs"}})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if len(entries) != 1 || entries[0].Path != "src/main.rs" {
		t.Fatalf("expected only src/main.rs, got %+v", entries)
	}
}

func TestDiscoverInvalidExclude(t *testing.T) {
	t.Parallel()

	_, err := Files(t.TempDir(), Options{Exclude: []string{"src/[a"}})
	if err == nil || !strings.Contains(err.Error(), "invalid exclude pattern") {
		t.Fatalf("expected invalid pattern error, got %v", err)
	}
}

func TestDiscoverMaxFileSize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "small.rs", "fn a() {}")
	writeFile(t, dir, "big.rs", strings.Repeat("// padding\n", 100))

	entries, err := Files(dir, Options{MaxFileSize: 100})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "small.rs" {
		t.Fatalf("expected only small.rs, got %+v", entries)
	}
}

func TestDiscoverGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "vendor/\n")
	writeFile(t, dir, "lib.rs", "fn a() {}")
	writeFile(t, dir, "vendor/dep.rs", "fn b() {}")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "lib.rs" {
		t.Fatalf("expected only lib.rs, got %+v", entries)
	}
}

func TestDiscoverSymlinksSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "real.rs", "fn a() {}")

	err := os.Symlink(filepath.Join(dir, "real.rs"), filepath.Join(dir, "link.rs"))
	if err != nil {
		t.Skip("symlinks not supported")
	}

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry (no symlink), got %d", len(entries))
	}
	if entries[0].Path != "real.rs" {
		t.Errorf("expected real.rs, got %q", entries[0].Path)
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
