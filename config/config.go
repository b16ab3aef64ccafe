// Package config implements aic's layered configuration.
//
// Settings come from three layers, lowest precedence first:
//
//  1. the global file (config.yaml under the config dir),
//  2. a project file (.aic.yaml), found by walking up from the working
//     directory to the repository root,
//  3. the AIC_API_TOKEN environment variable (for the token only).
//
// Merging is field-by-field: a non-empty value in a higher layer wins.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/zhubert/aic/logger"
	"github.com/zhubert/aic/paths"
	"gopkg.in/yaml.v3"
)

const (
	// ProjectConfigName is the per-repository override file, searched for
	// from the working directory up to the repository root.
	ProjectConfigName = ".aic.yaml"

	// EnvAPIToken overrides the configured token when set. A .env file in
	// the working directory is consulted as a fallback source for it.
	EnvAPIToken = "AIC_API_TOKEN"

	// DefaultAPIBaseURL is used when no base URL is configured.
	DefaultAPIBaseURL = "https://api.openai.com"

	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"
)

// DefaultSystemPrompt instructs the model to produce conventional commits.
const DefaultSystemPrompt = `You are an expert at writing clear and concise commit messages. Follow these rules strictly:

1. Start with a type: feat, fix, docs, style, refactor, perf, test, build, ci, chore, or revert
2. Add a scope in parentheses when the change affects a specific component/module
3. Write a brief description in imperative mood (e.g., 'add' not 'added')
4. Keep the first line under 72 characters
5. For simple changes (single file, small modifications), use only the subject line
6. For complex changes (multiple files, new features, breaking changes):
   - Add a body explaining what and why
   - Use numbered points (1., 2., 3., etc.) to list distinct changes
   - Organize points in order of importance

Examples:
Simple: fix(parser): correct string interpolation logic
Complex: feat(auth): implement OAuth2 authentication system

This commit adds comprehensive OAuth2 support:

1. Implement Google and GitHub OAuth2 providers
2. Create secure token storage and refresh mechanism
3. Add middleware for protected route authentication
4. Update user model to store OAuth identifiers`

// DefaultUserPrompt is the user message template. The {} placeholder is
// replaced with the staged diff.
const DefaultUserPrompt = `Generate a commit message for the following changes. First analyze the complexity of the diff.

For simple changes, provide only a subject line.

For complex changes, include a body with numbered points (1., 2., 3.) that clearly outline
each distinct modification or feature. Organize these points by importance.

Look for patterns like new features, bug fixes, or configuration changes to determine
the appropriate type and scope:

` + "```diff\n{}\n```"

// Config holds the resolved settings. Empty fields mean "unset" and fall
// back to the defaults via the getter methods.
type Config struct {
	APIToken     string `yaml:"api_token,omitempty"`
	APIBaseURL   string `yaml:"api_base_url,omitempty"`
	Model        string `yaml:"model,omitempty"`
	SystemPrompt string `yaml:"system_prompt,omitempty"`
	UserPrompt   string `yaml:"user_prompt,omitempty"`
}

// Keys lists the valid configuration key names, in display order.
func Keys() []string {
	return []string{"api_token", "api_base_url", "model", "system_prompt", "user_prompt"}
}

// Load resolves the full layered configuration for the current working
// directory: global file, then project file, then environment override.
func Load() (*Config, error) {
	cfg, err := LoadGlobal()
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	if projectPath, ok := FindProjectConfig(cwd); ok {
		project, err := loadFile(projectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load project config %s: %w", projectPath, err)
		}
		logger.WithComponent("config").Debug("merging project config", "path", projectPath)
		cfg = Merge(cfg, project)
	}

	if token := tokenFromEnv(); token != "" {
		cfg.APIToken = token
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadGlobal reads only the global config file, creating it with defaults
// on first use. The config subcommands operate on this layer.
func LoadGlobal() (*Config, error) {
	path, err := paths.ConfigFilePath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := defaultConfig()
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
		logger.WithComponent("config").Info("created default config", "path", path)
		return cfg, nil
	}

	return loadFile(path)
}

// defaultConfig is what gets written on first run. The token is left unset.
func defaultConfig() *Config {
	return &Config{
		APIBaseURL:   DefaultAPIBaseURL,
		Model:        DefaultModel,
		SystemPrompt: DefaultSystemPrompt,
		UserPrompt:   DefaultUserPrompt,
	}
}

// loadFile parses a YAML config file.
func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// FindProjectConfig searches for .aic.yaml starting at startDir and walking
// toward the filesystem root. The search is bounded by the repository root:
// the directory containing .git is the last one checked.
func FindProjectConfig(startDir string) (string, bool) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, ProjectConfigName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		// Stop at the repository root. .git is a directory in a normal
		// checkout but a file in linked worktrees and submodules.
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", false
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Merge combines two configs, with non-empty fields of override winning.
func Merge(base, override *Config) *Config {
	merged := *base
	if override.APIToken != "" {
		merged.APIToken = override.APIToken
	}
	if override.APIBaseURL != "" {
		merged.APIBaseURL = override.APIBaseURL
	}
	if override.Model != "" {
		merged.Model = override.Model
	}
	if override.SystemPrompt != "" {
		merged.SystemPrompt = override.SystemPrompt
	}
	if override.UserPrompt != "" {
		merged.UserPrompt = override.UserPrompt
	}
	return &merged
}

// tokenFromEnv returns the token from the environment, consulting a .env
// file in the working directory when the variable isn't already set.
func tokenFromEnv() string {
	if token := os.Getenv(EnvAPIToken); token != "" {
		return token
	}
	// Best effort: a missing .env is the common case
	if err := godotenv.Load(); err == nil {
		return os.Getenv(EnvAPIToken)
	}
	return ""
}

// Validate checks that the config is usable. It does not require a token;
// only operations that call the API do.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return nil
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("invalid api_base_url %q: %w", c.APIBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api_base_url %q: scheme must be http or https", c.APIBaseURL)
	}
	return nil
}

// Save writes the config to the global config file.
func (c *Config) Save() error {
	dir, err := paths.ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := paths.ConfigFilePath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Set updates a configuration value by key name and persists the change.
// An empty value unsets the key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "api_token":
		c.APIToken = value
	case "api_base_url":
		if value != "" {
			probe := &Config{APIBaseURL: value}
			if err := probe.Validate(); err != nil {
				return err
			}
		}
		c.APIBaseURL = value
	case "model":
		c.Model = value
	case "system_prompt":
		c.SystemPrompt = value
	case "user_prompt":
		c.UserPrompt = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return c.Save()
}

// Get returns a configuration value by key name. The second return value
// reports whether the key is known and set.
func (c *Config) Get(key string) (string, bool) {
	var value string
	switch key {
	case "api_token":
		value = c.APIToken
	case "api_base_url":
		value = c.APIBaseURL
	case "model":
		value = c.Model
	case "system_prompt":
		value = c.SystemPrompt
	case "user_prompt":
		value = c.UserPrompt
	default:
		return "", false
	}
	return value, value != ""
}

// GetAPIToken returns the configured token, or an error explaining how to
// set one.
func (c *Config) GetAPIToken() (string, error) {
	if c.APIToken == "" {
		return "", fmt.Errorf("API token not found. Set it with 'aic config set api_token YOUR_TOKEN' or the %s environment variable", EnvAPIToken)
	}
	return c.APIToken, nil
}

// GetAPIBaseURL returns the base URL, falling back to the default.
func (c *Config) GetAPIBaseURL() string {
	if c.APIBaseURL == "" {
		return DefaultAPIBaseURL
	}
	return c.APIBaseURL
}

// GetModel returns the model name, falling back to the default.
func (c *Config) GetModel() string {
	if c.Model == "" {
		return DefaultModel
	}
	return c.Model
}

// GetSystemPrompt returns the system prompt, falling back to the default.
func (c *Config) GetSystemPrompt() string {
	if c.SystemPrompt == "" {
		return DefaultSystemPrompt
	}
	return c.SystemPrompt
}

// GetUserPrompt returns the user prompt template, falling back to the default.
func (c *Config) GetUserPrompt() string {
	if c.UserPrompt == "" {
		return DefaultUserPrompt
	}
	return c.UserPrompt
}
