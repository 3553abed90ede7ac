// Package bundle drives a full language pack build: retrieval, the content-tree
// pipeline, persistence and packaging.
package bundle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pbaille/contentpack/internal/catalog"
	"github.com/pbaille/contentpack/internal/config"
	"github.com/pbaille/contentpack/internal/domain"
	"github.com/pbaille/contentpack/internal/fetcher"
	"github.com/pbaille/contentpack/internal/logger"
	"github.com/pbaille/contentpack/internal/packager"
	"github.com/pbaille/contentpack/internal/pipeline"
	"github.com/pbaille/contentpack/internal/store"
)

type Builder struct {
	Config  *config.Config
	Log     *logger.Logger
	Fetcher *fetcher.Fetcher
	// Now defaults to time.Now.
	Now func() time.Time
}

type Result struct {
	Archive  string
	Metadata Metadata
	Entities int
}

type sources struct {
	nodes    []domain.RawNode
	items    []domain.AssessmentItem
	content  *catalog.POFile
	frontend *catalog.POFile
	backend  *catalog.POFile
}

// Build produces the archive at Config.OutputPath. On error nothing is left at
// the destination.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	cfg := b.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log := b.Log
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With("lang", cfg.Language)
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}

	src, err := b.retrieve(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("retrieved sources", "nodes", len(src.nodes), "assessment_items", len(src.items))

	htmlDir := cfg.HTMLExercisesDir
	htmlIDs, err := htmlExerciseIDs(htmlDir)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("html exercises directory missing, packing none", "dir", htmlDir)
		htmlDir, htmlIDs, err = "", map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, err
	}
	var cat catalog.Catalog
	if cfg.IsEnglish() {
		// source text is the translation
		htmlIDs = allHTMLExerciseIDs(src.nodes)
	} else if src.content != nil {
		cat = src.content.Catalog
	}

	out := pipeline.Transform(pipeline.Input{
		Nodes:            src.nodes,
		AssessmentItems:  src.items,
		Catalog:          cat,
		HTMLExerciseIDs:  htmlIDs,
		UnavailablePaths: cfg.UnavailablePaths,
		KeepEmptyTopics:  cfg.KeepEmptyTopics,
	}, log)

	workDir, err := os.MkdirTemp("", "contentpack-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	dbPath := filepath.Join(workDir, packager.DatabaseName)
	counts, entities, err := b.persist(dbPath, out)
	if err != nil {
		return nil, err
	}

	meta := newMetadata(cfg.Language, cfg.SoftwareVersion, now())
	meta.PercentTranslated = interfacePercent(src.frontend, src.backend)
	switch {
	case cfg.IsEnglish():
		meta.PercentTranslated = 100
		meta.TopicTreeTranslated = 100
	case src.content != nil:
		meta.TopicTreeTranslated = src.content.PercentTranslated()
	}

	subtitles, err := countFiles(cfg.SubtitlesDir)
	if err != nil {
		return nil, err
	}
	meta.setCounts(counts, countDubbed(out.Nodes, cfg.Language), len(out.AssessmentItems), subtitles)
	if meta.Name == "" {
		log.Warn("no display name for language, metadata name left empty")
	}

	if err := b.pack(dbPath, htmlDir, src, meta); err != nil {
		return nil, err
	}

	log.Info("built language pack",
		"archive", cfg.OutputPath(),
		"build_id", meta.BuildID,
		"topics", meta.TopicCount,
		"videos", meta.VideoCount,
		"exercises", meta.ExerciseCount,
	)
	return &Result{Archive: cfg.OutputPath(), Metadata: meta, Entities: entities}, nil
}

func (b *Builder) retrieve(ctx context.Context) (*sources, error) {
	cfg := b.Config
	f := b.Fetcher
	if f == nil {
		f = fetcher.New(cfg.HTTP.Timeout, cfg.CacheDir)
		f.IgnoreCache = cfg.HTTP.IgnoreCache
		f.Retry.MaxAttempts = cfg.HTTP.MaxAttempts
	}

	var src sources
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		nodes, err := f.FetchNodes(gctx, cfg.NodeData)
		if err != nil {
			return fmt.Errorf("fetch node data: %w", err)
		}
		src.nodes = nodes
		return nil
	})
	if cfg.AssessmentItems != "" {
		g.Go(func() error {
			items, err := f.FetchAssessmentItems(gctx, cfg.AssessmentItems)
			if err != nil {
				return fmt.Errorf("fetch assessment items: %w", err)
			}
			src.items = items
			return nil
		})
	}

	loadPO := func(path string, dst **catalog.POFile) {
		if path == "" {
			return
		}
		g.Go(func() error {
			data, err := f.Fetch(gctx, path)
			if err != nil {
				return fmt.Errorf("fetch catalog: %w", err)
			}
			po, err := catalog.ParsePO(bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("parse catalog %s: %w", path, err)
			}
			*dst = po
			return nil
		})
	}
	loadPO(cfg.ContentPO, &src.content)
	loadPO(cfg.FrontendPO, &src.frontend)
	loadPO(cfg.BackendPO, &src.backend)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &src, nil
}

func (b *Builder) persist(dbPath string, out pipeline.Output) (map[domain.Kind]int, int, error) {
	cfg := b.Config
	s, err := store.New(dbPath)
	if err != nil {
		return nil, 0, err
	}
	defer s.Close()

	isRoot := pipeline.AnyRoot(pipeline.RootByPath(cfg.RootPath), pipeline.RootByTitle(cfg.RootTitle))
	linked, err := pipeline.Persist(s, out.Nodes, isRoot)
	if err != nil {
		return nil, 0, err
	}
	if err := s.SaveAssessmentItems(out.AssessmentItems); err != nil {
		return nil, 0, err
	}
	counts, err := s.CountByKind()
	if err != nil {
		return nil, 0, err
	}
	if err := s.Close(); err != nil {
		return nil, 0, fmt.Errorf("close database: %w", err)
	}
	return counts, len(linked), nil
}

func (b *Builder) pack(dbPath, htmlDir string, src *sources, meta Metadata) (err error) {
	cfg := b.Config
	p, err := packager.Create(cfg.OutputPath())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			p.Abort()
		}
	}()

	if err := p.AddFile(dbPath, packager.DatabaseName); err != nil {
		return err
	}
	if err := p.AddCatalog(poCatalog(src.frontend), packager.FrontendCatalogName); err != nil {
		return err
	}
	if err := p.AddCatalog(poCatalog(src.backend), packager.BackendCatalogName); err != nil {
		return err
	}
	if htmlDir != "" {
		if _, err := p.AddDir(htmlDir, packager.ExercisesDir); err != nil {
			return err
		}
	}
	if cfg.SubtitlesDir != "" {
		if _, err := p.AddDir(cfg.SubtitlesDir, packager.SubtitlesDir); err != nil {
			return err
		}
	}
	if cfg.IsEnglish() {
		if err := p.AddBytes(packager.AssessmentVersionName, []byte(cfg.SoftwareVersion)); err != nil {
			return err
		}
	}
	if err := p.AddJSON(packager.MetadataName, meta); err != nil {
		return err
	}
	return p.Commit()
}

func poCatalog(f *catalog.POFile) catalog.Catalog {
	if f == nil {
		return catalog.Catalog{}
	}
	return f.Catalog
}

// htmlExerciseIDs lists the file stems in dir: "counting_1.html" provides "counting_1".
func htmlExerciseIDs(dir string) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	if dir == "" {
		return ids, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read html exercises: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ids[strings.TrimSuffix(name, filepath.Ext(name))] = struct{}{}
	}
	return ids, nil
}

func allHTMLExerciseIDs(nodes []domain.RawNode) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, n := range nodes {
		if n.Is(domain.KindExercise) && !n.UsesAssessmentItems() {
			ids[n.ID()] = struct{}{}
		}
	}
	return ids
}

func countFiles(dir string) (int, error) {
	if dir == "" {
		return 0, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read subtitles: %w", err)
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() {
			n++
		}
	}
	return n, nil
}
