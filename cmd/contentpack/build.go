package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/pbaille/contentpack/internal/bundle"
	"github.com/pbaille/contentpack/internal/packager"
	"github.com/pbaille/contentpack/internal/sftpclient"
	"github.com/spf13/cobra"
)

func buildCmd() *cobra.Command {
	var (
		lang, out, nodeData, items       string
		contentPO, frontendPO, backendPO string
		htmlDir, subtitlesDir, cacheDir  string
		unavailable                      []string
		rootPath, rootTitle, version     string
		ignoreCache, keepEmpty           bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a language pack archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// flags win over file and environment
			flags := cmd.Flags()
			set := func(name string, dst *string, v string) {
				if flags.Changed(name) {
					*dst = v
				}
			}
			set("lang", &cfg.Language, lang)
			set("out", &cfg.Output, out)
			set("node-data", &cfg.NodeData, nodeData)
			set("assessment-items", &cfg.AssessmentItems, items)
			set("content-po", &cfg.ContentPO, contentPO)
			set("frontend-po", &cfg.FrontendPO, frontendPO)
			set("backend-po", &cfg.BackendPO, backendPO)
			set("html-exercises", &cfg.HTMLExercisesDir, htmlDir)
			set("subtitles", &cfg.SubtitlesDir, subtitlesDir)
			set("cache-dir", &cfg.CacheDir, cacheDir)
			set("root-path", &cfg.RootPath, rootPath)
			set("root-title", &cfg.RootTitle, rootTitle)
			set("software-version", &cfg.SoftwareVersion, version)
			if flags.Changed("unavailable") {
				cfg.UnavailablePaths = unavailable
			}
			if flags.Changed("ignore-cache") {
				cfg.HTTP.IgnoreCache = ignoreCache
			}
			if flags.Changed("keep-empty-topics") {
				cfg.KeepEmptyTopics = keepEmpty
			}

			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			b := &bundle.Builder{Config: cfg, Log: log}
			res, err := b.Build(ctx)
			if err != nil {
				return err
			}

			m := res.Metadata
			fmt.Printf("Built %s\n", res.Archive)
			fmt.Printf("  build:      %s (%s)\n", m.BuildID, m.LanguagePackVersion)
			fmt.Printf("  nodes:      %d topics, %d videos, %d exercises\n", m.TopicCount, m.VideoCount, m.ExerciseCount)
			fmt.Printf("  items:      %d assessment items\n", m.AssessmentItemCount)
			fmt.Printf("  translated: %.1f%% interface, %.1f%% topic tree\n", m.PercentTranslated, m.TopicTreeTranslated)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&lang, "lang", "l", "", "language code")
	f.StringVarP(&out, "out", "o", "", "archive path (default <lang>.zip)")
	f.StringVar(&nodeData, "node-data", "", "node feed path or URL")
	f.StringVar(&items, "assessment-items", "", "assessment items path or URL")
	f.StringVar(&contentPO, "content-po", "", "content catalog (PO)")
	f.StringVar(&frontendPO, "frontend-po", "", "frontend interface catalog (PO)")
	f.StringVar(&backendPO, "backend-po", "", "backend interface catalog (PO)")
	f.StringVar(&htmlDir, "html-exercises", "", "directory of translated HTML exercises")
	f.StringVar(&subtitlesDir, "subtitles", "", "directory of subtitle files")
	f.StringVar(&cacheDir, "cache-dir", "", "download cache directory")
	f.StringSliceVar(&unavailable, "unavailable", nil, "unavailable topic paths")
	f.StringVar(&rootPath, "root-path", "", "path of the root topic")
	f.StringVar(&rootTitle, "root-title", "", "title of the root topic")
	f.StringVar(&version, "software-version", "", "target software version")
	f.BoolVar(&ignoreCache, "ignore-cache", false, "download sources even when cached")
	f.BoolVar(&keepEmpty, "keep-empty-topics", false, "keep topics with no videos or exercises")
	return cmd
}

func unpackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpack [archive] [dest]",
		Short: "Extract the content database from an archive (dest defaults to --db)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := dbPath
			if len(args) == 2 {
				dest = args[1]
			}

			names, err := packager.Names(args[0])
			if err != nil {
				return err
			}
			if err := packager.ExtractEntry(args[0], packager.DatabaseName, dest); err != nil {
				return err
			}

			fmt.Printf("Extracted %s to %s\n", packager.DatabaseName, dest)
			fmt.Printf("Archive entries:\n")
			for _, n := range names {
				fmt.Printf("  %s\n", n)
			}
			return nil
		},
	}
}

func publishCmd() *cobra.Command {
	var remoteName string

	cmd := &cobra.Command{
		Use:   "publish [archive]",
		Short: "Upload an archive over SFTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateSFTP(); err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			name := remoteName
			if name == "" {
				name = filepath.Base(args[0])
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			err = sftpclient.UploadFile(ctx, sftpclient.Config{
				Host:                  cfg.SFTP.Host,
				Port:                  cfg.SFTP.Port,
				User:                  cfg.SFTP.User,
				Pass:                  cfg.SFTP.Pass,
				RemoteDir:             cfg.SFTP.RemoteDir,
				InsecureIgnoreHostKey: cfg.SFTP.InsecureIgnoreHostKey,
				KnownHostsFile:        cfg.SFTP.KnownHostsFile,
			}, args[0], name)
			if err != nil {
				return err
			}

			log.Info("published archive", "archive", args[0], "host", cfg.SFTP.Host, "remote", name)
			fmt.Printf("Published %s to %s:%s\n", args[0], cfg.SFTP.Host, filepath.ToSlash(filepath.Join(cfg.SFTP.RemoteDir, name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&remoteName, "name", "", "remote file name (default archive base name)")
	return cmd
}
