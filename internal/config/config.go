// Package config loads vibec.json, the compiler's configuration file.
//
// The file is JSON with comments and trailing commas (HuJSON):
//
//	{
//	  // compiler limits
//	  "compiler": {"max_nodes": 10000, "max_depth": 100},
//	  "global": {
//	    "provider": "OpenAI",
//	    "default_params": {"model": "gpt-3.5-turbo", "temperature": 0.7, "max_tokens": 150},
//	  },
//	  "overrides": {"getWeather": {"temperature": 0.2}},
//	}
//
// Every field is optional. A missing file yields Default().
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tailscale/hujson"

	"github.com/hassan/vibelang/internal/logging"
	"github.com/hassan/vibelang/internal/parser/ast"
)

// FileName is the configuration file looked up next to the sources.
const FileName = "vibec.json"

// Providers with a dedicated API key variable.
const (
	ProviderOpenAI    = "OpenAI"
	ProviderAnthropic = "Anthropic"
)

// Config is the parsed configuration.
type Config struct {
	Compiler  Compiler          `json:"compiler"`
	Global    Global            `json:"global"`
	Overrides map[string]Params `json:"overrides"`
}

// Compiler holds the limits and paths of the compiler itself.
type Compiler struct {
	MaxNodes int    `json:"max_nodes"`
	MaxDepth int    `json:"max_depth"`
	CacheDir string `json:"cache_dir"`
}

// Global holds the LLM settings shared by every prompt.
type Global struct {
	Provider      string `json:"provider"`
	APIKey        string `json:"api_key"`
	DefaultParams Params `json:"default_params"`
}

// Params are LLM request parameters. Pointer fields distinguish "not set"
// from a zero value, so an override can lower the temperature to 0.
type Params struct {
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	limits := ast.DefaultLimits()
	temp, tokens := 0.7, 150
	return &Config{
		Compiler: Compiler{
			MaxNodes: limits.MaxNodes,
			MaxDepth: limits.MaxDepth,
			CacheDir: "~/.vibelang_cache",
		},
		Global: Global{
			Provider: ProviderOpenAI,
			DefaultParams: Params{
				Model:       "gpt-3.5-turbo",
				Temperature: &temp,
				MaxTokens:   &tokens,
			},
		},
		Overrides: map[string]Params{},
	}
}

// Load reads the configuration at path. A missing file is not an error.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes HuJSON text on top of Default().
func Parse(b []byte) (*Config, error) {
	std, err := hujson.Standardize(b)
	if err != nil {
		return nil, errors.Wrap(err, "invalid syntax")
	}
	cfg := Default()
	if err := json.Unmarshal(std, cfg); err != nil {
		return nil, errors.Wrap(err, "invalid value")
	}
	if cfg.Overrides == nil {
		cfg.Overrides = map[string]Params{}
	}
	if cfg.Compiler.MaxNodes <= 0 || cfg.Compiler.MaxDepth <= 0 {
		return nil, errors.Errorf("compiler limits must be positive (max_nodes %d, max_depth %d)",
			cfg.Compiler.MaxNodes, cfg.Compiler.MaxDepth)
	}
	return cfg, nil
}

// Limits returns the tree limits the configuration asks for.
func (c *Config) Limits() ast.Limits {
	return ast.Limits{MaxNodes: c.Compiler.MaxNodes, MaxDepth: c.Compiler.MaxDepth}
}

// APIKey resolves the provider key: the configured key, then
// VIBELANG_API_KEY, then the provider's own variable.
func (c *Config) APIKey() string {
	if c.Global.APIKey != "" {
		return c.Global.APIKey
	}
	if k := os.Getenv("VIBELANG_API_KEY"); k != "" {
		return k
	}
	switch c.Global.Provider {
	case ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case ProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return ""
}

// ParamsFor returns the default parameters with fn's override applied.
func (c *Config) ParamsFor(fn string) Params {
	p := c.Global.DefaultParams
	o, ok := c.Overrides[fn]
	if !ok {
		return p
	}
	if o.Model != "" {
		p.Model = o.Model
	}
	if o.Temperature != nil {
		p.Temperature = o.Temperature
	}
	if o.MaxTokens != nil {
		p.MaxTokens = o.MaxTokens
	}
	return p
}

// Validate logs a warning for each override naming none of functions and
// returns those names, sorted.
func (c *Config) Validate(log logrus.FieldLogger, functions []string) []string {
	log = logging.OrDiscard(log)
	known := make(map[string]bool, len(functions))
	for _, f := range functions {
		known[f] = true
	}
	var unused []string
	for name := range c.Overrides {
		if !known[name] {
			unused = append(unused, name)
		}
	}
	sort.Strings(unused)
	for _, name := range unused {
		log.WithField("function", name).Warn("config override names no function")
	}
	return unused
}

// CacheDir returns the cache directory with a leading ~ expanded.
func (c *Config) CacheDir() (string, error) {
	dir := c.Compiler.CacheDir
	if dir != "~" && !strings.HasPrefix(dir, "~/") {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "expanding cache_dir")
	}
	return filepath.Join(home, strings.TrimPrefix(dir, "~")), nil
}

// Fingerprint is a stable encoding of the settings that affect generated
// code. The cache mixes it into its digests.
func (c *Config) Fingerprint() []byte {
	b, _ := json.Marshal(struct {
		Compiler  Compiler
		Global    Params
		Overrides map[string]Params
	}{c.Compiler, c.Global.DefaultParams, c.Overrides})
	return b
}
