package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pbaille/contentpack/internal/api"
	"github.com/pbaille/contentpack/internal/config"
	"github.com/pbaille/contentpack/internal/logger"
	"github.com/pbaille/contentpack/internal/store"
	"github.com/spf13/cobra"
)

var (
	dbPath     string
	configPath string
	logMode    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "contentpack",
		Short:         "Build and inspect localized offline content packs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "content.db", "content database path")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "log mode: dev or prod (overrides config)")

	rootCmd.AddCommand(buildCmd())
	rootCmd.AddCommand(unpackCmd())
	rootCmd.AddCommand(publishCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(treeCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logMode != "" {
		cfg.LogMode = logMode
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// getStore opens an existing content database; inspection never creates one.
func getStore() (*store.Store, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("open %s: %w (build a pack and unpack it first)", dbPath, err)
	}
	return store.New(dbPath)
}

func listCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List nodes ordered by path",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			nodes, err := s.ListEntities(limit, offset)
			if err != nil {
				return err
			}

			if len(nodes) == 0 {
				fmt.Println("No nodes in this database.")
				return nil
			}

			for _, n := range nodes {
				fmt.Printf("%-8s  %-24s  %s\n", n.Kind, truncate(n.ID, 24), truncate(n.Path, 60))
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of nodes to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of nodes to skip")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show node details (id prefix accepted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.EntityByIDPrefix(args[0])
			if err != nil {
				return fmt.Errorf("node not found: %s", args[0])
			}

			fmt.Printf("ID:        %s\n", n.ID)
			fmt.Printf("Kind:      %s\n", n.Kind)
			fmt.Printf("Path:      %s\n", n.Path)
			fmt.Printf("Slug:      %s\n", n.Slug)
			fmt.Printf("Title:     %s\n", n.Title)
			fmt.Printf("Available: %t\n", n.Available)
			if n.ParentID != nil {
				fmt.Printf("Parent:    %s\n", *n.ParentID)
			}
			if n.Description != "" {
				fmt.Printf("Description:\n%s\n", n.Description)
			}

			children, err := s.Children(n.ID)
			if err != nil {
				return err
			}
			if len(children) > 0 {
				fmt.Printf("\nChildren:\n")
				for _, c := range children {
					fmt.Printf("  - %s (%s)\n", c.Title, c.Kind)
				}
			}

			return nil
		},
	}
}

func treeCmd() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the topic tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			nodes, err := s.AllEntities()
			if err != nil {
				return err
			}

			if len(nodes) == 0 {
				fmt.Println("No nodes in this database.")
				return nil
			}

			var printTree func(n api.TreeNode, indent int)
			printTree = func(n api.TreeNode, indent int) {
				prefix := strings.Repeat("  ", indent)
				fmt.Printf("%s%s [%s]\n", prefix, n.Title, n.Kind)
				if depth > 0 && indent+1 >= depth {
					return
				}
				for _, c := range n.Children {
					printTree(c, indent+1)
				}
			}

			for _, root := range api.BuildTree(nodes) {
				printTree(root, 0)
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "maximum depth to print (0 for all)")
	return cmd
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search nodes by title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			nodes, err := s.SearchEntities(args[0])
			if err != nil {
				return err
			}

			if len(nodes) == 0 {
				fmt.Println("No matching nodes found.")
				return nil
			}

			for _, n := range nodes {
				fmt.Printf("%-24s  %s\n", truncate(n.ID, 24), truncate(n.Title, 60))
			}

			return nil
		},
	}
}

// truncate shortens s to max runes for display; translated titles are rarely ASCII.
func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the content database read-only over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			s, err := getStore()
			if err != nil {
				return err
			}
			// Note: don't defer s.Close() as server runs indefinitely

			if !cmd.Flags().Changed("addr") {
				addr = fmt.Sprintf(":%d", cfg.API.Port)
			}
			server := api.New(s, addr, log)
			return server.Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "server address")
	return cmd
}
