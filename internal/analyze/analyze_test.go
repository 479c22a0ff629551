package analyze

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/phobologic/rsinspect/internal/discover"
	"github.com/phobologic/rsinspect/internal/inspect"
	"github.com/phobologic/rsinspect/internal/metrics"
	"github.com/phobologic/rsinspect/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func setupRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "src/pair.rs", `pub struct Pair<A, B> { pub a: A, pub b: B }

pub fn convert<T>(x: T) -> T { x }
`)
	writeFile(t, dir, "src/main.rs", `struct my_struct;

fn main() {
    let p: Pair<i32, u8, f32> = todo!();
    let ok: Pair<i32, u8> = todo!();
    let c = convert::<i32, u8>(1);
}
`)
	writeFile(t, dir, "src/clean.rs", `pub fn helper() {}
`)
	return dir
}

func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	dir := setupRepo(t)
	report, err := Run(context.Background(), Options{Root: dir, Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, filepath.Base(dir), report.RepoName)
	assert.Equal(t, 3, report.Analyzed)
	require.Len(t, report.Files, 1, "only files with diagnostics are reported")

	fr := report.Files[0]
	assert.Equal(t, "src/main.rs", fr.Path)
	require.Len(t, fr.Diagnostics, 3)

	naming := fr.Diagnostics[0]
	assert.Equal(t, "struct-naming", naming.Inspection)
	assert.Equal(t, model.SeverityWarning, naming.Severity)
	assert.Equal(t, 1, naming.Line)
	assert.Equal(t, "Type 'my_struct' should have a camel case name such as 'MyStruct'", naming.Message)
	assert.Equal(t, model.Fix{Kind: model.RenameFix, Replacement: "MyStruct"}, naming.Fix)

	typeArity := fr.Diagnostics[1]
	assert.Equal(t, inspect.GenericsID, typeArity.Inspection)
	assert.Equal(t, model.SeverityError, typeArity.Severity)
	assert.Equal(t, 4, typeArity.Line)
	assert.Equal(t, "Wrong number of type arguments: expected 2, found 3", typeArity.Message)
	assert.Equal(t, model.Fix{Kind: model.RemoveTypeArguments, Keep: 2}, typeArity.Fix)

	callArity := fr.Diagnostics[2]
	assert.Equal(t, 6, callArity.Line)
	assert.Equal(t, "Wrong number of type arguments: expected 1, found 2", callArity.Message)

	assert.Equal(t, 2*3+1, fr.Score)
}

func TestRunLevelsAndDisabled(t *testing.T) {
	t.Parallel()

	dir := setupRepo(t)
	report, err := Run(context.Background(), Options{
		Root:     dir,
		Levels:   map[string]model.Level{"non_camel_case_types": model.Deny},
		Disabled: map[string]bool{inspect.GenericsID: true},
	})
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	require.Len(t, report.Files[0].Diagnostics, 1)
	assert.Equal(t, model.SeverityError, report.Files[0].Diagnostics[0].Severity)
}

func TestRunNoFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "README.md", "# nothing")

	_, err := Run(context.Background(), Options{Root: dir})
	assert.True(t, errors.Is(err, ErrNoFiles), "got %v", err)
}

func TestRunUnreadableFileSkipped(t *testing.T) {
	t.Parallel()

	dir := setupRepo(t)
	core, logs := observer.New(zap.WarnLevel)
	rec := metrics.New()

	files := []discover.FileEntry{
		{Path: "src/main.rs", Language: "rust"},
		{Path: "src/gone.rs", Language: "rust"},
	}
	report, err := Run(context.Background(), Options{
		Root:    dir,
		Files:   files,
		Logger:  zap.New(core),
		Metrics: rec,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Analyzed)
	assert.Equal(t, 1, logs.FilterMessage("failed to read file").Len())
}

func TestRunAllUnreadable(t *testing.T) {
	t.Parallel()

	_, err := Run(context.Background(), Options{
		Root:  t.TempDir(),
		Files: []discover.FileEntry{{Path: "missing.rs", Language: "rust"}},
	})
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	dir := setupRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Options{Root: dir})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunLintAttributeAllows(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "lib.rs", `#![allow(nonstandard_style)]
struct lower;
fn BadFn() {}
`)
	report, err := Run(context.Background(), Options{Root: dir})
	require.NoError(t, err)
	assert.Empty(t, report.Files)
	assert.Equal(t, 1, report.Analyzed)
}
