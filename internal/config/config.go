// Package config loads and validates the dashboard configuration document.
// The configuration is an explicit immutable value threaded through all
// components; nothing here mutates global state beyond process env expansion.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	apperrors "git.home.luguber.info/inful/dashboard/internal/errors"
)

// Config represents the full application configuration.
type Config struct {
	Profiles map[string]string `yaml:"profiles,omitempty"` // site -> profile URL
	Sections map[string]bool   `yaml:"sections,omitempty"` // section name -> enabled
	Manual   ManualData        `yaml:"manual"`
	GitHub   GitHubConfig      `yaml:"github,omitempty"`
	API      APIConfig         `yaml:"api,omitempty"`
	Output   OutputConfig      `yaml:"output,omitempty"`
	Daemon   *DaemonConfig     `yaml:"daemon,omitempty"`
}

// SectionEnabled reports whether a section is toggled on. Missing keys default to disabled.
func (c *Config) SectionEnabled(name string) bool {
	return c.Sections[name]
}

// ProfileURL returns the configured URL for a source, or "" when absent.
func (c *Config) ProfileURL(source Source) string {
	return c.Profiles[string(source)]
}

// Load loads configuration from the specified file.
// It loads a .env file first (best effort) and expands ${VAR} references in
// the document, so tokens never have to live in the committed config.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded environment variables from .env")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, apperrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryConfig, apperrors.SeverityFatal, "failed to read config file").
			WithContext("path", configPath)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryConfig, apperrors.SeverityFatal, "failed to unmarshal config").
			WithContext("path", configPath)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]string{}
	}
	if cfg.Sections == nil {
		cfg.Sections = map[string]bool{}
	}
	if cfg.Output.ReadmePath == "" {
		cfg.Output.ReadmePath = "README.md"
	}
	if cfg.GitHub.APIURL == "" {
		cfg.GitHub.APIURL = "https://api.github.com"
	}
	if cfg.API.RetryBackoff != "" {
		// Normalize casing; unknown modes fall back to fixed at policy construction.
		cfg.API.RetryBackoff = NormalizeRetryBackoff(string(cfg.API.RetryBackoff))
	}
	if cfg.Daemon != nil {
		if cfg.Daemon.DataDir == "" {
			cfg.Daemon.DataDir = "./dashboard-data"
		}
		if cfg.Daemon.NATS != nil && cfg.Daemon.NATS.Subject == "" {
			cfg.Daemon.NATS.Subject = "dashboard.runs"
		}
		if cfg.Daemon.Git != nil {
			if cfg.Daemon.Git.Remote == "" {
				cfg.Daemon.Git.Remote = "origin"
			}
			if cfg.Daemon.Git.Branch == "" {
				cfg.Daemon.Git.Branch = "main"
			}
			if cfg.Daemon.Git.CommitMessage == "" {
				cfg.Daemon.Git.CommitMessage = "Update dashboard"
			}
		}
	}
}

// Validate enforces required-field constraints. Profile keys referenced by
// enabled sections are deliberately NOT required: a missing key degrades that
// section to unavailable at run time instead of failing the load.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Manual.Name) == "" {
		return apperrors.ConfigRequired("manual.name")
	}
	if c.API.Retries < 0 {
		return apperrors.ValidationFailed("api.retries", "must not be negative")
	}
	if c.SectionEnabled(SectionGitHubStats) && c.GitHub.Username == "" {
		return apperrors.ValidationFailed("github.username", "required when the github_stats section is enabled")
	}
	if c.Daemon != nil {
		if _, err := c.Daemon.UpdateInterval(); err != nil {
			return apperrors.ValidationFailed("daemon.update_frequency", err.Error())
		}
	}
	return nil
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		Profiles: map[string]string{
			string(SourceResearchGate):  "https://www.researchgate.net/profile/Your-Name",
			string(SourceGoogleScholar): "https://scholar.google.com/citations?user=YOUR_ID",
			string(SourceLinkedIn):      "https://www.linkedin.com/in/your-handle/",
		},
		Sections: map[string]bool{
			SectionAbout:             true,
			SectionMetrics:           true,
			SectionResearchInterests: true,
			SectionEducation:         true,
			SectionCurrentProjects:   true,
			SectionLinks:             true,
			SectionGitHubStats:       true,
		},
		Manual: ManualData{
			Name:        "Your Name",
			Institution: "Your University",
			Department:  "Your Department",
			ResearchInterests: []string{
				"Ocean Current Analysis",
				"Data Visualization",
			},
			CurrentProjects: []string{
				"Ocean Current Observation and Analysis",
			},
			Education: []Education{
				{Institution: "Your University", Degree: "M.Sc.", Location: "Your City"},
			},
		},
		GitHub: GitHubConfig{
			Username:      "your-github-user",
			ShowStats:     true,
			ShowLanguages: true,
			Theme:         "radical",
			Token:         "${GITHUB_TOKEN}",
		},
		API: APIConfig{
			RateLimitDelay: "2s",
			Timeout:        "10s",
			Retries:        2,
			RetryBackoff:   RetryBackoffFixed,
		},
		Output: OutputConfig{ReadmePath: "README.md"},
		Daemon: &DaemonConfig{
			UpdateFrequency: "daily",
			MetricsAddr:     "",
			Git: &GitPublishConfig{
				Enabled:       false,
				Branch:        "main",
				CommitMessage: "Update dashboard",
			},
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
