// Package packager writes language pack archives. An archive is built in a
// temporary file next to its destination and only appears under the final name
// on Commit, so a failed build never leaves a partial pack behind.
package packager

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/pbaille/contentpack/internal/catalog"
)

// Archive entry names.
const (
	DatabaseName          = "content.db"
	MetadataName          = "metadata.json"
	FrontendCatalogName   = "frontend.mo"
	BackendCatalogName    = "backend.mo"
	ExercisesDir          = "exercises"
	SubtitlesDir          = "subtitles"
	AssessmentVersionName = "khan/assessmentitems.version"
)

var ErrClosed = errors.New("packager: archive already closed")

// Packager accumulates named entries into a zip archive.
type Packager struct {
	dest   string
	tmp    string
	file   *os.File
	zw     *zip.Writer
	names  map[string]bool
	closed bool
}

// Create starts an archive that Commit will place at dest.
func Create(dest string) (*Packager, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	return &Packager{
		dest:  dest,
		tmp:   tmp,
		file:  f,
		zw:    zip.NewWriter(f),
		names: make(map[string]bool),
	}, nil
}

// Dest returns the final archive path.
func (p *Packager) Dest() string { return p.dest }

func (p *Packager) create(name string) (io.Writer, error) {
	if p.closed {
		return nil, ErrClosed
	}
	if p.names[name] {
		return nil, fmt.Errorf("add %s: duplicate entry", name)
	}
	w, err := p.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("add %s: %w", name, err)
	}
	p.names[name] = true
	return w, nil
}

// AddBytes adds b under name.
func (p *Packager) AddBytes(name string, b []byte) error {
	w, err := p.create(name)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// AddJSON adds v encoded as indented JSON under name.
func (p *Packager) AddJSON(name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return p.AddBytes(name, b)
}

// AddCatalog compiles cat to a GNU MO file and adds it under name.
func (p *Packager) AddCatalog(cat catalog.Catalog, name string) error {
	return p.AddBytes(name, catalog.EncodeMO(cat))
}

// AddFile copies the file at src into the archive under name.
func (p *Packager) AddFile(src, name string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer f.Close()

	w, err := p.create(name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return nil
}

// AddDir adds every regular file under srcDir beneath prefix, keeping relative paths.
// It returns the number of files added.
func (p *Packager) AddDir(srcDir, prefix string) (int, error) {
	n := 0
	err := filepath.WalkDir(srcDir, func(fp string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, fp)
		if err != nil {
			return err
		}
		if err := p.AddFile(fp, path.Join(prefix, filepath.ToSlash(rel))); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("add dir %s: %w", srcDir, err)
	}
	return n, nil
}

// Commit finishes the archive and moves it to its destination.
func (p *Packager) Commit() error {
	if p.closed {
		return ErrClosed
	}
	p.closed = true

	if err := p.zw.Close(); err != nil {
		p.discard()
		return fmt.Errorf("finish archive: %w", err)
	}
	if err := p.file.Close(); err != nil {
		os.Remove(p.tmp)
		return fmt.Errorf("close archive: %w", err)
	}
	if err := os.Rename(p.tmp, p.dest); err != nil {
		os.Remove(p.tmp)
		return fmt.Errorf("commit archive: %w", err)
	}
	return nil
}

// Abort discards the archive. It is a no-op after Commit.
func (p *Packager) Abort() {
	if p.closed {
		return
	}
	p.closed = true
	p.discard()
}

func (p *Packager) discard() {
	p.file.Close()
	os.Remove(p.tmp)
}

// Names lists the entries of the archive at archivePath, in archive order.
func Names(archivePath string) ([]string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names, nil
}

// ReadEntry returns the content of entry name.
func ReadEntry(archivePath, name string) ([]byte, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	f, err := r.Open(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// ExtractEntry writes entry name to dest.
func ExtractEntry(archivePath, name, dest string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	src, err := r.Open(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dest), err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("extract %s: %w", name, err)
	}
	return out.Close()
}
