package packager

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/pbaille/contentpack/internal/catalog"
	"github.com/pbaille/contentpack/internal/domain"
	"github.com/pbaille/contentpack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCatalog_EntryUnderExactName(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "es.zip")
	p, err := Create(dest)
	require.NoError(t, err)

	require.NoError(t, p.AddCatalog(catalog.Catalog{"msgid": "msgstr"}, "test"))
	require.NoError(t, p.Commit())

	names, err := Names(dest)
	require.NoError(t, err)
	assert.Equal(t, []string{"test"}, names)

	b, err := ReadEntry(dest, "test")
	require.NoError(t, err)
	cat, err := catalog.DecodeMO(b)
	require.NoError(t, err)
	assert.Equal(t, catalog.Catalog{"msgid": "msgstr"}, cat)
}

func TestCommit_IsAtomic(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out", "es.zip")
	p, err := Create(dest)
	require.NoError(t, err)
	require.NoError(t, p.AddBytes("a.txt", []byte("a")))

	_, err = os.Stat(dest)
	assert.ErrorIs(t, err, fs.ErrNotExist, "nothing at dest before commit")

	require.NoError(t, p.Commit())
	_, err = os.Stat(dest)
	assert.NoError(t, err)
	_, err = os.Stat(dest + ".tmp")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	assert.ErrorIs(t, p.Commit(), ErrClosed)
	assert.ErrorIs(t, p.AddBytes("b.txt", nil), ErrClosed)
}

func TestAbort_LeavesNothing(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "es.zip")
	p, err := Create(dest)
	require.NoError(t, err)
	require.NoError(t, p.AddBytes("a.txt", []byte("a")))

	p.Abort()
	p.Abort()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDuplicateEntryRejected(t *testing.T) {
	p, err := Create(filepath.Join(t.TempDir(), "x.zip"))
	require.NoError(t, err)
	defer p.Abort()

	require.NoError(t, p.AddBytes("a", nil))
	assert.Error(t, p.AddBytes("a", nil))
}

func TestAddDirAndJSON(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "counting_1.html"), []byte("<p>1</p>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "nested", "b.html"), []byte("<p>2</p>"), 0o644))

	dest := filepath.Join(t.TempDir(), "pack.zip")
	p, err := Create(dest)
	require.NoError(t, err)

	n, err := p.AddDir(src, ExercisesDir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, p.AddJSON(MetadataName, map[string]any{"code": "es"}))
	require.NoError(t, p.Commit())

	names, err := Names(dest)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"exercises/counting_1.html", "exercises/nested/b.html", "metadata.json"}, names)

	b, err := ReadEntry(dest, MetadataName)
	require.NoError(t, err)
	var meta map[string]any
	require.NoError(t, json.Unmarshal(b, &meta))
	assert.Equal(t, "es", meta["code"])

	_, err = ReadEntry(dest, "nope")
	assert.Error(t, err)
}

func TestDatabaseRoundTrip(t *testing.T) {
	work := t.TempDir()
	dbPath := filepath.Join(work, "build.db")
	s, err := store.New(dbPath)
	require.NoError(t, err)

	want := []*domain.Entity{
		{ID: "root", Title: "Academia Khan", Slug: "khan", Kind: domain.KindTopic, Path: "khan/", Available: true},
		{ID: "v1", Title: "Suma", Description: "Sumar números", Slug: "suma", Kind: domain.KindVideo, Path: "khan/suma/", Available: true},
		{ID: "e1", Title: "Ejercicio", Slug: "ejercicio", Kind: domain.KindExercise, Path: "khan/ejercicio/"},
	}
	require.NoError(t, s.InsertEntities(want))
	require.NoError(t, s.Close())

	archive := filepath.Join(work, "es.zip")
	p, err := Create(archive)
	require.NoError(t, err)
	require.NoError(t, p.AddFile(dbPath, DatabaseName))
	require.NoError(t, p.Commit())

	extracted := filepath.Join(t.TempDir(), DatabaseName)
	require.NoError(t, ExtractEntry(archive, DatabaseName, extracted))

	reopened, err := store.New(extracted)
	require.NoError(t, err)
	defer reopened.Close()

	for _, w := range want {
		got, err := reopened.GetEntity(w.ID)
		require.NoError(t, err)
		assert.Equal(t, w.ID, got.ID)
		assert.Equal(t, w.Title, got.Title)
		assert.Equal(t, w.Description, got.Description)
		assert.Equal(t, w.Available, got.Available)
		assert.Equal(t, w.Slug, got.Slug)
		assert.Equal(t, w.Kind, got.Kind)
		assert.Equal(t, w.Path, got.Path)
	}
}
