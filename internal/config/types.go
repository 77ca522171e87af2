package config

import (
	"strings"
	"time"
)

// Source identifies a remote data source keyed under `profiles` (stringly for YAML compatibility).
type Source string

const (
	SourceResearchGate  Source = "researchgate"
	SourceGoogleScholar Source = "google_scholar"
	SourceLinkedIn      Source = "linkedin"
	SourceGitHub        Source = "github"
)

// Section names for the toggleable blocks of the rendered document.
const (
	SectionAbout             = "about"
	SectionMetrics           = "metrics"
	SectionResearchInterests = "research_interests"
	SectionEducation         = "education"
	SectionCurrentProjects   = "current_projects"
	SectionLinks             = "links"
	SectionGitHubStats       = "github_stats"
)

// KnownSections lists all managed sections in render order.
var KnownSections = []string{
	SectionAbout,
	SectionMetrics,
	SectionResearchInterests,
	SectionEducation,
	SectionCurrentProjects,
	SectionLinks,
	SectionGitHubStats,
}

// ManualData holds operator-supplied facts that are never scraped.
type ManualData struct {
	Name              string      `yaml:"name"`
	Institution       string      `yaml:"institution,omitempty"`
	Department        string      `yaml:"department,omitempty"`
	ResearchInterests []string    `yaml:"research_interests,omitempty"`
	CurrentProjects   []string    `yaml:"current_projects,omitempty"`
	Education         []Education `yaml:"education,omitempty"`
}

// Education is a single education history entry.
type Education struct {
	Institution string `yaml:"institution"`
	Degree      string `yaml:"degree,omitempty"`
	Location    string `yaml:"location,omitempty"`
}

// GitHubConfig controls the repository statistics source.
type GitHubConfig struct {
	Username      string `yaml:"username,omitempty"`
	ShowStats     bool   `yaml:"show_stats,omitempty"`
	ShowLanguages bool   `yaml:"show_languages,omitempty"`
	Theme         string `yaml:"theme,omitempty"`
	APIURL        string `yaml:"api_url,omitempty"` // defaults to https://api.github.com
	Token         string `yaml:"token,omitempty"`   // optional, env-expanded
}

// Enabled reports whether any GitHub API call is needed at all.
func (g GitHubConfig) Enabled() bool {
	return g.Username != "" && (g.ShowStats || g.ShowLanguages)
}

// APIConfig holds network tuning knobs shared by all fetchers.
// Durations are YAML strings ("10s") resolved with fallbacks at access time,
// so a zero-value config stays usable.
type APIConfig struct {
	RateLimitDelay string           `yaml:"rate_limit_delay,omitempty"` // delay between retry attempts (default 2s)
	Timeout        string           `yaml:"timeout,omitempty"`          // per-request wall clock limit (default 10s)
	Retries        int              `yaml:"retries,omitempty"`          // retry attempts after the first failure (default 2)
	RetryBackoff   RetryBackoffMode `yaml:"retry_backoff,omitempty"`    // fixed|linear|exponential (default fixed)
	UserAgent      string           `yaml:"user_agent,omitempty"`
}

// DefaultUserAgent is a browser-style agent; the scraped sites serve reduced
// markup to unknown clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// TimeoutOrDefault resolves the request timeout.
func (a APIConfig) TimeoutOrDefault() time.Duration {
	return parseDurationOr(a.Timeout, 10*time.Second)
}

// RateLimitDelayOrDefault resolves the inter-attempt delay.
func (a APIConfig) RateLimitDelayOrDefault() time.Duration {
	return parseDurationOr(a.RateLimitDelay, 2*time.Second)
}

// RetriesOrDefault resolves the retry budget.
func (a APIConfig) RetriesOrDefault() int {
	if a.Retries > 0 {
		return a.Retries
	}
	return 2
}

// UserAgentOrDefault resolves the User-Agent header value.
func (a APIConfig) UserAgentOrDefault() string {
	if strings.TrimSpace(a.UserAgent) != "" {
		return a.UserAgent
	}
	return DefaultUserAgent
}

// OutputConfig names the rendered artifact.
type OutputConfig struct {
	ReadmePath string `yaml:"readme_path,omitempty"` // defaults to README.md
}

// AuthType enumerates supported git authentication methods.
type AuthType string

const (
	AuthTypeNone  AuthType = "none"
	AuthTypeSSH   AuthType = "ssh"
	AuthTypeToken AuthType = "token"
	AuthTypeBasic AuthType = "basic"
)

// AuthConfig represents git authentication configuration.
type AuthConfig struct {
	Type     AuthType `yaml:"type"` // ssh|token|basic|none
	Username string   `yaml:"username,omitempty"`
	Password string   `yaml:"password,omitempty"`
	Token    string   `yaml:"token,omitempty"`
	KeyPath  string   `yaml:"key_path,omitempty"`
}

// IsZero reports whether no auth method is specified.
func (a *AuthConfig) IsZero() bool { return a == nil || a.Type == "" || a.Type == AuthTypeNone }

// GitPublishConfig controls committing and pushing the rendered README.
type GitPublishConfig struct {
	Enabled       bool        `yaml:"enabled,omitempty"`
	RepoPath      string      `yaml:"repo_path,omitempty"` // defaults to the README's directory
	Remote        string      `yaml:"remote,omitempty"`    // defaults to origin
	Branch        string      `yaml:"branch,omitempty"`    // defaults to main
	CommitMessage string      `yaml:"commit_message,omitempty"`
	AuthorName    string      `yaml:"author_name,omitempty"`
	AuthorEmail   string      `yaml:"author_email,omitempty"`
	Auth          *AuthConfig `yaml:"auth,omitempty"`
}

// NATSConfig enables publishing run events to a NATS subject.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject,omitempty"` // defaults to dashboard.runs
}

// DaemonConfig holds scheduled-mode settings.
type DaemonConfig struct {
	UpdateFrequency string            `yaml:"update_frequency,omitempty"` // daily|hourly|duration string (default daily)
	MetricsAddr     string            `yaml:"metrics_addr,omitempty"`     // e.g. :9090; empty disables the endpoint
	DataDir         string            `yaml:"data_dir,omitempty"`         // run history location (default ./dashboard-data)
	NATS            *NATSConfig       `yaml:"nats,omitempty"`
	Git             *GitPublishConfig `yaml:"git,omitempty"`
}

// UpdateInterval resolves update_frequency into a concrete tick interval.
func (d *DaemonConfig) UpdateInterval() (time.Duration, error) {
	if d == nil {
		return 24 * time.Hour, nil
	}
	switch strings.ToLower(strings.TrimSpace(d.UpdateFrequency)) {
	case "", "daily":
		return 24 * time.Hour, nil
	case "hourly":
		return time.Hour, nil
	default:
		return time.ParseDuration(d.UpdateFrequency)
	}
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
