// Package config provides centralized configuration management for the application.
//
// Values come from environment variables and, optionally, a YAML file
// ($HOME/.config/quill/config.yaml or the path given with --config).
// Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/danielolaszy/quill/pkg/models"
)

// Tracker backends.
const (
	BackendLinear = "linear"
	BackendJira   = "jira"
	BackendGitHub = "github"
	BackendTrello = "trello"
)

// Alternate AI services.
const (
	AlternateOpenAI = "openai"
	AlternateGemini = "gemini"
)

// Config holds all configuration parameters for the application.
type Config struct {
	Tracker TrackerConfig
	Linear  LinearConfig
	Jira    JiraConfig
	GitHub  GitHubConfig
	Trello  TrelloConfig
	AI      AIConfig
}

// TrackerConfig selects the issue tracker.
type TrackerConfig struct {
	Backend string
	Timeout time.Duration
}

// LinearConfig holds Linear specific configuration.
type LinearConfig struct {
	APIKey   string
	Endpoint string
}

// JiraConfig holds JIRA specific configuration.
type JiraConfig struct {
	URL       string
	Username  string
	Token     string
	IssueType string
}

// GitHubConfig holds GitHub specific configuration.
type GitHubConfig struct {
	Token  string
	Domain string
	Owner  string
}

// TrelloConfig holds Trello specific configuration.
type TrelloConfig struct {
	APIKey string
	Token  string
}

// AIConfig holds the generative service configuration.
type AIConfig struct {
	// UsePrimary selects the Anthropic service. When false the alternate is used.
	UsePrimary     bool
	AnthropicKey   string
	AnthropicModel string
	Creativity     float64

	Alternate    string
	AlternateKey string
	Model        string
	BaseURL      string
	Temperature  float64
	Timeout      time.Duration
}

var envBindings = map[string]string{
	"tracker.backend":    "QUILL_TRACKER",
	"tracker.timeout":    "QUILL_TRACKER_TIMEOUT",
	"linear.api_key":     "LINEAR_API_KEY",
	"linear.endpoint":    "LINEAR_API_ENDPOINT",
	"jira.url":           "JIRA_URL",
	"jira.username":      "JIRA_USERNAME",
	"jira.token":         "JIRA_TOKEN",
	"jira.issue_type":    "JIRA_ISSUE_TYPE",
	"github.token":       "GITHUB_TOKEN",
	"github.domain":      "GITHUB_DOMAIN",
	"github.owner":       "GITHUB_OWNER",
	"trello.api_key":     "TRELLO_API_KEY",
	"trello.token":       "TRELLO_TOKEN",
	"ai.use_primary":     "QUILL_USE_PRIMARY_AI",
	"ai.anthropic_key":   "ANTHROPIC_API_KEY",
	"ai.anthropic_model": "QUILL_ANTHROPIC_MODEL",
	"ai.creativity":      "QUILL_AI_CREATIVITY",
	"ai.alternate":       "QUILL_AI_ALTERNATE",
	"ai.alternate_key":   "QUILL_AI_ALTERNATE_KEY",
	"ai.model":           "QUILL_AI_MODEL",
	"ai.base_url":        "QUILL_AI_BASE_URL",
	"ai.temperature":     "QUILL_AI_TEMPERATURE",
	"ai.timeout":         "QUILL_AI_TIMEOUT",
}

// LoadConfig reads configuration from the environment and the config file.
// path selects an explicit config file; it must exist. With an empty path the
// default file is read when present.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	v.SetDefault("tracker.backend", BackendLinear)
	v.SetDefault("tracker.timeout", 30*time.Second)
	v.SetDefault("jira.issue_type", "Task")
	v.SetDefault("github.domain", "github.com")
	v.SetDefault("ai.use_primary", true)
	v.SetDefault("ai.creativity", 0.3)
	v.SetDefault("ai.alternate", AlternateOpenAI)
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ai.timeout", 60*time.Second)

	if err := readConfigFile(v, path); err != nil {
		return nil, err
	}

	config := &Config{
		Tracker: TrackerConfig{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString("tracker.backend"))),
			Timeout: v.GetDuration("tracker.timeout"),
		},
		Linear: LinearConfig{
			APIKey:   v.GetString("linear.api_key"),
			Endpoint: v.GetString("linear.endpoint"),
		},
		Jira: JiraConfig{
			URL:       v.GetString("jira.url"),
			Username:  v.GetString("jira.username"),
			Token:     v.GetString("jira.token"),
			IssueType: v.GetString("jira.issue_type"),
		},
		GitHub: GitHubConfig{
			Token:  v.GetString("github.token"),
			Domain: v.GetString("github.domain"),
			Owner:  v.GetString("github.owner"),
		},
		Trello: TrelloConfig{
			APIKey: v.GetString("trello.api_key"),
			Token:  v.GetString("trello.token"),
		},
		AI: AIConfig{
			UsePrimary:     v.GetBool("ai.use_primary"),
			AnthropicKey:   v.GetString("ai.anthropic_key"),
			AnthropicModel: v.GetString("ai.anthropic_model"),
			Creativity:     v.GetFloat64("ai.creativity"),
			Alternate:      strings.ToLower(strings.TrimSpace(v.GetString("ai.alternate"))),
			AlternateKey:   v.GetString("ai.alternate_key"),
			Model:          v.GetString("ai.model"),
			BaseURL:        v.GetString("ai.base_url"),
			Temperature:    v.GetFloat64("ai.temperature"),
			Timeout:        v.GetDuration("ai.timeout"),
		},
	}

	if config.AI.AlternateKey == "" {
		config.AI.AlternateKey = providerKey(config.AI.Alternate)
	}

	return config, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(home, ".config", "quill"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// providerKey returns the provider's conventional API key variable.
func providerKey(alternate string) string {
	switch alternate {
	case AlternateGemini:
		return os.Getenv("GEMINI_API_KEY")
	default:
		return os.Getenv("OPENAI_API_KEY")
	}
}

func missing(vars []string) error {
	if len(vars) == 0 {
		return nil
	}
	return fmt.Errorf("%w: missing required environment variables: %v", models.ErrMissingCredentials, vars)
}

// ValidateAIConfig checks that the selected generative service has a key.
func ValidateAIConfig(config *Config) error {
	if config.AI.UsePrimary {
		if config.AI.AnthropicKey == "" {
			return missing([]string{"ANTHROPIC_API_KEY"})
		}
		return nil
	}

	switch config.AI.Alternate {
	case AlternateOpenAI, AlternateGemini:
	default:
		return fmt.Errorf("unsupported AI service %q: expected %s or %s", config.AI.Alternate, AlternateOpenAI, AlternateGemini)
	}
	if config.AI.AlternateKey == "" {
		return fmt.Errorf("%w: set QUILL_AI_ALTERNATE_KEY or %s, or enable the primary AI service",
			models.ErrMissingCredentials, alternateEnv(config.AI.Alternate))
	}
	return nil
}

func alternateEnv(alternate string) string {
	if alternate == AlternateGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// ValidateTrackerConfig validates the configuration of the selected backend.
func ValidateTrackerConfig(config *Config) error {
	switch config.Tracker.Backend {
	case BackendLinear:
		return ValidateLinearConfig(config)
	case BackendJira:
		return ValidateJiraConfig(config)
	case BackendGitHub:
		return ValidateGitHubConfig(config)
	case BackendTrello:
		return ValidateTrelloConfig(config)
	}
	return fmt.Errorf("unsupported tracker %q: expected one of %s, %s, %s, %s",
		config.Tracker.Backend, BackendLinear, BackendJira, BackendGitHub, BackendTrello)
}

// ValidateLinearConfig validates Linear-specific configuration.
func ValidateLinearConfig(config *Config) error {
	var missingVars []string
	if config.Linear.APIKey == "" {
		missingVars = append(missingVars, "LINEAR_API_KEY")
	}
	return missing(missingVars)
}

// ValidateJiraConfig validates JIRA-specific configuration.
func ValidateJiraConfig(config *Config) error {
	var missingVars []string

	if config.Jira.URL == "" {
		missingVars = append(missingVars, "JIRA_URL")
	}
	if config.Jira.Username == "" {
		missingVars = append(missingVars, "JIRA_USERNAME")
	}
	if config.Jira.Token == "" {
		missingVars = append(missingVars, "JIRA_TOKEN")
	}

	return missing(missingVars)
}

// ValidateGitHubConfig validates GitHub-specific configuration.
func ValidateGitHubConfig(config *Config) error {
	var missingVars []string

	if config.GitHub.Token == "" {
		missingVars = append(missingVars, "GITHUB_TOKEN")
	}
	if config.GitHub.Owner == "" {
		missingVars = append(missingVars, "GITHUB_OWNER")
	}

	return missing(missingVars)
}

// ValidateTrelloConfig validates Trello-specific configuration.
func ValidateTrelloConfig(config *Config) error {
	var missingVars []string

	if config.Trello.APIKey == "" {
		missingVars = append(missingVars, "TRELLO_API_KEY")
	}
	if config.Trello.Token == "" {
		missingVars = append(missingVars, "TRELLO_TOKEN")
	}

	return missing(missingVars)
}
