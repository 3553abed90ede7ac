// Package config loads build settings from a YAML file overlaid with environment
// variables. CLI flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Language        string `yaml:"language"`
	SoftwareVersion string `yaml:"software_version"`

	// Sources: local paths or http(s) URLs
	NodeData        string `yaml:"node_data"`
	AssessmentItems string `yaml:"assessment_items"`

	// PO catalogs
	ContentPO  string `yaml:"content_po"`
	FrontendPO string `yaml:"frontend_po"`
	BackendPO  string `yaml:"backend_po"`

	HTMLExercisesDir string   `yaml:"html_exercises_dir"`
	SubtitlesDir     string   `yaml:"subtitles_dir"`
	UnavailablePaths []string `yaml:"unavailable_paths"`
	KeepEmptyTopics  bool     `yaml:"keep_empty_topics"`

	RootPath  string `yaml:"root_path"`
	RootTitle string `yaml:"root_title"`

	Output   string `yaml:"output"`
	CacheDir string `yaml:"cache_dir"`
	LogMode  string `yaml:"log_mode"`

	HTTP HTTPConfig `yaml:"http"`
	SFTP SFTPConfig `yaml:"sftp"`
	API  APIConfig  `yaml:"api"`
}

type HTTPConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
	IgnoreCache bool          `yaml:"ignore_cache"`
}

type SFTPConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	User                  string `yaml:"user"`
	Pass                  string `yaml:"pass"`
	RemoteDir             string `yaml:"remote_dir"`
	InsecureIgnoreHostKey bool   `yaml:"insecure_ignore_host_key"`
	KnownHostsFile        string `yaml:"known_hosts_file"`
}

type APIConfig struct {
	Port int `yaml:"port"`
}

// Default returns the settings used when neither file nor environment set a value.
func Default() *Config {
	return &Config{
		Language:        "en",
		SoftwareVersion: "0.13",
		RootPath:        "khan/",
		RootTitle:       "Khan Academy",
		CacheDir:        ".contentpack-cache",
		LogMode:         "dev",
		HTTP: HTTPConfig{
			Timeout:     30 * time.Second,
			MaxAttempts: 4,
		},
		SFTP: SFTPConfig{Port: 22},
		API:  APIConfig{Port: 8080},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (skipped when
// path is empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Language = getenv("CONTENTPACK_LANG", c.Language)
	c.SoftwareVersion = getenv("CONTENTPACK_SOFTWARE_VERSION", c.SoftwareVersion)
	c.NodeData = getenv("CONTENTPACK_NODE_DATA", c.NodeData)
	c.AssessmentItems = getenv("CONTENTPACK_ASSESSMENT_ITEMS", c.AssessmentItems)
	c.ContentPO = getenv("CONTENTPACK_CONTENT_PO", c.ContentPO)
	c.FrontendPO = getenv("CONTENTPACK_FRONTEND_PO", c.FrontendPO)
	c.BackendPO = getenv("CONTENTPACK_BACKEND_PO", c.BackendPO)
	c.HTMLExercisesDir = getenv("CONTENTPACK_HTML_EXERCISES_DIR", c.HTMLExercisesDir)
	c.SubtitlesDir = getenv("CONTENTPACK_SUBTITLES_DIR", c.SubtitlesDir)
	c.Output = getenv("CONTENTPACK_OUTPUT", c.Output)
	c.CacheDir = getenv("CONTENTPACK_CACHE_DIR", c.CacheDir)
	c.LogMode = getenv("CONTENTPACK_LOG_MODE", c.LogMode)
	if v := os.Getenv("CONTENTPACK_UNAVAILABLE_PATHS"); v != "" {
		c.UnavailablePaths = splitList(v)
	}
	c.KeepEmptyTopics = getenvBool("CONTENTPACK_KEEP_EMPTY_TOPICS", c.KeepEmptyTopics)

	c.HTTP.Timeout = getenvDuration("CONTENTPACK_HTTP_TIMEOUT", c.HTTP.Timeout)
	c.HTTP.MaxAttempts = getenvInt("CONTENTPACK_HTTP_MAX_ATTEMPTS", c.HTTP.MaxAttempts)
	c.HTTP.IgnoreCache = getenvBool("CONTENTPACK_IGNORE_CACHE", c.HTTP.IgnoreCache)

	// SFTP
	c.SFTP.Host = getenv("SFTP_HOST", c.SFTP.Host)
	c.SFTP.Port = getenvInt("SFTP_PORT", c.SFTP.Port)
	c.SFTP.User = getenv("SFTP_USER", c.SFTP.User)
	c.SFTP.Pass = getenv("SFTP_PASS", c.SFTP.Pass)
	c.SFTP.RemoteDir = getenv("SFTP_REMOTE_DIR", c.SFTP.RemoteDir)
	c.SFTP.InsecureIgnoreHostKey = getenvBool("SFTP_INSECURE_IGNORE_HOST_KEY", c.SFTP.InsecureIgnoreHostKey)
	c.SFTP.KnownHostsFile = getenv("SFTP_KNOWN_HOSTS", c.SFTP.KnownHostsFile)

	c.API.Port = getenvInt("CONTENTPACK_API_PORT", c.API.Port)
}

// OutputPath returns the archive destination, defaulting to "<language>.zip".
func (c *Config) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	return c.Language + ".zip"
}

// IsEnglish reports whether the pack is built for English, where no translation applies.
func (c *Config) IsEnglish() bool {
	return strings.EqualFold(c.Language, "en")
}

// Validate checks the settings a build needs.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Language) == "" {
		errs = append(errs, errors.New("language is required"))
	}
	if c.NodeData == "" {
		errs = append(errs, errors.New("node_data is required"))
	}
	if c.RootPath == "" && c.RootTitle == "" {
		errs = append(errs, errors.New("root_path or root_title is required"))
	}
	if c.HTTP.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("http.max_attempts must be at least 1, got %d", c.HTTP.MaxAttempts))
	}
	return errors.Join(errs...)
}

// ValidateSFTP checks the settings a publish needs.
func (c *Config) ValidateSFTP() error {
	var errs []error
	if c.SFTP.Host == "" {
		errs = append(errs, errors.New("sftp.host is required"))
	}
	if c.SFTP.User == "" {
		errs = append(errs, errors.New("sftp.user is required"))
	}
	if c.SFTP.Port <= 0 {
		errs = append(errs, fmt.Errorf("sftp.port must be positive, got %d", c.SFTP.Port))
	}
	return errors.Join(errs...)
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
