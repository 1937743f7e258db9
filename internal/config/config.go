// Package config loads catalogbuilder.yaml.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/catalogbuilder/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "catalogbuilder.yaml"

// DefaultMarker is the token that marks where resource listings are injected.
const DefaultMarker = "<!--INJECT_RESOURCE_LIST_HERE-->"

// Config represents the application configuration.
type Config struct {
	Pages      PagesConfig      `yaml:"pages"`
	Contents   ContentsConfig   `yaml:"contents"`
	Resources  ResourcesConfig  `yaml:"resources"`
	Output     OutputConfig     `yaml:"output"`
	Defaults   PageDefaults     `yaml:"defaults"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Notify     NotifyConfig     `yaml:"notify"`
	Watch      WatchConfig      `yaml:"watch"`
	Submission SubmissionConfig `yaml:"submission"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// PagesConfig locates the page spreadsheet.
type PagesConfig struct {
	Spreadsheet string      `yaml:"spreadsheet"`
	Sheet       string      `yaml:"sheet,omitempty"` // first sheet when empty
	Format      SheetFormat `yaml:"format,omitempty"`
}

// ContentsConfig locates the hand-authored base content tree.
type ContentsConfig struct {
	Directory string `yaml:"directory"`
	Marker    string `yaml:"marker,omitempty"`
}

// ResourcesConfig locates resource descriptors.
type ResourcesConfig struct {
	Directory       string        `yaml:"directory"`
	PublicURLPrefix string        `yaml:"public_url_prefix"`
	Source          *SourceConfig `yaml:"source,omitempty"`
}

// SourceConfig is a git repository that holds submitted descriptors.
type SourceConfig struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch,omitempty"`
	Token  string `yaml:"token,omitempty"`

	// Transient clone/fetch failures are retried; zero retries disables it.
	MaxRetries   int           `yaml:"max_retries,omitempty"`
	RetryBackoff string        `yaml:"retry_backoff,omitempty"` // fixed|linear|exponential
	RetryDelay   time.Duration `yaml:"retry_delay,omitempty"`
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// PageDefaults fill blank spreadsheet cells.
type PageDefaults struct {
	Layout   string `yaml:"layout"`
	LangCode string `yaml:"lang_code"`
}

// CatalogConfig points at a taxonomy file; the embedded taxonomy is used when empty.
type CatalogConfig struct {
	File string `yaml:"file,omitempty"`
}

type LedgerConfig struct {
	Path string `yaml:"path,omitempty"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	Interval time.Duration `yaml:"interval,omitempty"` // zero disables the periodic rebuild
}

// SubmissionConfig controls the submit command.
type SubmissionConfig struct {
	OutputDir       string `yaml:"output_dir"`
	Logo            string `yaml:"logo,omitempty"`
	ProjectTitle    string `yaml:"project_title"`
	ProjectSubtitle string `yaml:"project_subtitle,omitempty"`
}

type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			Fatal().WithContext("path", configPath).Build()
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
			Fatal().WithContext("path", configPath).Build()
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) normalize() error {
	format, err := sheetFormatNormalizer.Parse(string(c.Pages.Format))
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid pages.format").Fatal().Build()
	}
	c.Pages.Format = format
	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
	return nil
}

func (c *Config) applyDefaults() {
	if c.Pages.Spreadsheet == "" {
		c.Pages.Spreadsheet = "assets/web_layout/pages.xlsx"
	}
	if c.Contents.Directory == "" {
		c.Contents.Directory = "contents"
	}
	if c.Contents.Marker == "" {
		c.Contents.Marker = DefaultMarker
	}
	if c.Resources.Directory == "" {
		c.Resources.Directory = "assets/resources"
	}
	if c.Resources.PublicURLPrefix == "" {
		c.Resources.PublicURLPrefix = "/assets/resources"
	}
	if c.Resources.Source != nil && c.Resources.Source.Branch == "" {
		c.Resources.Source.Branch = "main"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "docs"
	}
	if c.Defaults.Layout == "" {
		c.Defaults.Layout = "home"
	}
	if c.Defaults.LangCode == "" {
		c.Defaults.LangCode = "en"
	}
	if c.Notify.Subject == "" {
		c.Notify.Subject = "catalogbuilder.runs"
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = 2 * time.Second
	}
	if c.Submission.OutputDir == "" {
		c.Submission.OutputDir = "submissions"
	}
	if c.Submission.ProjectTitle == "" {
		c.Submission.ProjectTitle = "Educational Resource Catalog"
	}
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).Build()
	}

	example := Config{
		Pages:    PagesConfig{Spreadsheet: "assets/web_layout/pages.xlsx", Format: SheetFormatAuto},
		Contents: ContentsConfig{Directory: "contents", Marker: DefaultMarker},
		Resources: ResourcesConfig{
			Directory:       "assets/resources",
			PublicURLPrefix: "/assets/resources",
		},
		Output:   OutputConfig{Directory: "docs"},
		Defaults: PageDefaults{Layout: "home", LangCode: "en"},
		Ledger:   LedgerConfig{Path: ".catalogbuilder/ledger.db"},
		Watch:    WatchConfig{Debounce: 2 * time.Second},
		Submission: SubmissionConfig{
			OutputDir:    "submissions",
			ProjectTitle: "Educational Resource Catalog",
		},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.FileSystemError("failed to write config file").WithCause(err).
			WithContext("path", configPath).Build()
	}
	return nil
}
