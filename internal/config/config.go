package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultListenAddr   = "127.0.0.1:8080"
	DefaultEndpointPath = "/api-endpoint"
	DefaultLogLevel     = "info"
	DefaultBranch       = "main"
	DefaultAuthorName   = "llmdeploy"
	DefaultAuthorEmail  = "llmdeploy@users.noreply.github.com"
	DefaultBackend      = "memory"

	fileName        = "llmdeploy.toml"
	homeFileName    = ".llmdeploy.toml"
	configDirEnvKey = "LLMDEPLOY_CONFIG_DIR"
)

// Duration is a time.Duration written as a Go duration string in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// GitHubConfig configures the remote repository client.
type GitHubConfig struct {
	Owner         string   `toml:"owner"`
	Token         string   `toml:"token"`
	OwnerIsOrg    bool     `toml:"owner_is_org"`
	APIURL        string   `toml:"api_url"`
	Branch        string   `toml:"branch"`
	Workdir       string   `toml:"workdir"`
	AuthorName    string   `toml:"author_name"`
	AuthorEmail   string   `toml:"author_email"`
	PollInterval  Duration `toml:"poll_interval"`
	MaxChecks     int      `toml:"max_checks"`
	BuiltSettle   Duration `toml:"built_settle"`
	TimeoutSettle Duration `toml:"timeout_settle"`
	PushAttempts  int      `toml:"push_attempts"`
	PushBackoff   Duration `toml:"push_backoff"`
}

// LLMConfig configures the generation provider.
type LLMConfig struct {
	BaseURL string   `toml:"base_url"`
	Model   string   `toml:"model"`
	APIKey  string   `toml:"api_key"`
	Timeout Duration `toml:"timeout"`
}

// DeployConfig tunes the orchestrator.
type DeployConfig struct {
	Round1Settle  Duration `toml:"round1_settle"`
	Round2Settle  Duration `toml:"round2_settle"`
	MaxConcurrent int      `toml:"max_concurrent"`
}

// NotifyConfig tunes the evaluation callback.
type NotifyConfig struct {
	Timeout      Duration `toml:"timeout"`
	Attempts     int      `toml:"attempts"`
	InitialDelay Duration `toml:"initial_delay"`
}

// TrackingConfig selects the tracking store.
type TrackingConfig struct {
	Backend string `toml:"backend"`
	DBPath  string `toml:"db_path"`
}

// Config defines runtime configuration for llmdeploy.
type Config struct {
	ListenAddr   string         `toml:"listen_addr"`
	EndpointPath string         `toml:"endpoint_path"`
	LogLevel     string         `toml:"log_level"`
	Secret       string         `toml:"secret"`
	SecretHash   string         `toml:"secret_hash"`
	GitHub       GitHubConfig   `toml:"github"`
	LLM          LLMConfig      `toml:"llm"`
	Deploy       DeployConfig   `toml:"deploy"`
	Notify       NotifyConfig   `toml:"notify"`
	Tracking     TrackingConfig `toml:"tracking"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		ListenAddr:   DefaultListenAddr,
		EndpointPath: DefaultEndpointPath,
		LogLevel:     DefaultLogLevel,
		GitHub: GitHubConfig{
			Branch:        DefaultBranch,
			AuthorName:    DefaultAuthorName,
			AuthorEmail:   DefaultAuthorEmail,
			PollInterval:  Duration{5 * time.Second},
			MaxChecks:     15,
			BuiltSettle:   Duration{10 * time.Second},
			TimeoutSettle: Duration{15 * time.Second},
			PushAttempts:  3,
			PushBackoff:   Duration{2 * time.Second},
		},
		LLM: LLMConfig{
			Timeout: Duration{120 * time.Second},
		},
		Deploy: DeployConfig{
			Round1Settle: Duration{10 * time.Second},
			Round2Settle: Duration{20 * time.Second},
		},
		Notify: NotifyConfig{
			Timeout:      Duration{30 * time.Second},
			Attempts:     5,
			InitialDelay: Duration{time.Second},
		},
		Tracking: TrackingConfig{
			Backend: DefaultBackend,
		},
	}
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

// Path returns the config file location.
func Path() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		return filepath.Join(dir, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeFileName), nil
}

// Load reads the config file and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err != nil {
		return nil, err
	}
	if err := loadFile(path, &cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if strings.TrimSpace(cfg.Tracking.Backend) == "" {
		cfg.Tracking.Backend = DefaultBackend
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		env string
		dst *string
	}{
		{"LLMDEPLOY_LISTEN_ADDR", &c.ListenAddr},
		{"LLMDEPLOY_ENDPOINT_PATH", &c.EndpointPath},
		{"LLMDEPLOY_SECRET", &c.Secret},
		{"LLMDEPLOY_SECRET_HASH", &c.SecretHash},
		{"GITHUB_OWNER", &c.GitHub.Owner},
		{"GITHUB_TOKEN", &c.GitHub.Token},
		{"GITHUB_API_URL", &c.GitHub.APIURL},
		{"LLM_BASE_URL", &c.LLM.BaseURL},
		{"LLM_MODEL", &c.LLM.Model},
		{"LLM_API_KEY", &c.LLM.APIKey},
		{"LLMDEPLOY_TRACKING_DB", &c.Tracking.DBPath},
	}
	for _, o := range overrides {
		if value := strings.TrimSpace(os.Getenv(o.env)); value != "" {
			*o.dst = value
		}
	}
}

// ValidateServe checks what the HTTP service needs before it starts.
func (c *Config) ValidateServe() error {
	if strings.TrimSpace(c.Secret) == "" && strings.TrimSpace(c.SecretHash) == "" {
		return fmt.Errorf("secret or secret_hash is required (env LLMDEPLOY_SECRET)")
	}
	return c.ValidatePublish()
}

// ValidatePublish checks what a publish needs.
func (c *Config) ValidatePublish() error {
	if strings.TrimSpace(c.GitHub.Owner) == "" {
		return fmt.Errorf("github.owner is required (env GITHUB_OWNER)")
	}
	switch c.Tracking.Backend {
	case "", "memory", "sqlite":
	default:
		return fmt.Errorf("tracking.backend must be memory or sqlite, got %q", c.Tracking.Backend)
	}
	return nil
}

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindBool
	kindDuration
)

type keyDef struct {
	name   string
	kind   keyKind
	secret bool
	get    func(*Config) string
}

func durationString(d Duration) string { return d.Duration.String() }

var keyDefs = []keyDef{
	{name: "listen_addr", get: func(c *Config) string { return c.ListenAddr }},
	{name: "endpoint_path", get: func(c *Config) string { return c.EndpointPath }},
	{name: "log_level", get: func(c *Config) string { return c.LogLevel }},
	{name: "secret", secret: true, get: func(c *Config) string { return c.Secret }},
	{name: "secret_hash", get: func(c *Config) string { return c.SecretHash }},
	{name: "github.owner", get: func(c *Config) string { return c.GitHub.Owner }},
	{name: "github.token", secret: true, get: func(c *Config) string { return c.GitHub.Token }},
	{name: "github.owner_is_org", kind: kindBool, get: func(c *Config) string { return strconv.FormatBool(c.GitHub.OwnerIsOrg) }},
	{name: "github.api_url", get: func(c *Config) string { return c.GitHub.APIURL }},
	{name: "github.branch", get: func(c *Config) string { return c.GitHub.Branch }},
	{name: "github.workdir", get: func(c *Config) string { return c.GitHub.Workdir }},
	{name: "github.author_name", get: func(c *Config) string { return c.GitHub.AuthorName }},
	{name: "github.author_email", get: func(c *Config) string { return c.GitHub.AuthorEmail }},
	{name: "github.poll_interval", kind: kindDuration, get: func(c *Config) string { return durationString(c.GitHub.PollInterval) }},
	{name: "github.max_checks", kind: kindInt, get: func(c *Config) string { return strconv.Itoa(c.GitHub.MaxChecks) }},
	{name: "github.built_settle", kind: kindDuration, get: func(c *Config) string { return durationString(c.GitHub.BuiltSettle) }},
	{name: "github.timeout_settle", kind: kindDuration, get: func(c *Config) string { return durationString(c.GitHub.TimeoutSettle) }},
	{name: "github.push_attempts", kind: kindInt, get: func(c *Config) string { return strconv.Itoa(c.GitHub.PushAttempts) }},
	{name: "github.push_backoff", kind: kindDuration, get: func(c *Config) string { return durationString(c.GitHub.PushBackoff) }},
	{name: "llm.base_url", get: func(c *Config) string { return c.LLM.BaseURL }},
	{name: "llm.model", get: func(c *Config) string { return c.LLM.Model }},
	{name: "llm.api_key", secret: true, get: func(c *Config) string { return c.LLM.APIKey }},
	{name: "llm.timeout", kind: kindDuration, get: func(c *Config) string { return durationString(c.LLM.Timeout) }},
	{name: "deploy.round1_settle", kind: kindDuration, get: func(c *Config) string { return durationString(c.Deploy.Round1Settle) }},
	{name: "deploy.round2_settle", kind: kindDuration, get: func(c *Config) string { return durationString(c.Deploy.Round2Settle) }},
	{name: "deploy.max_concurrent", kind: kindInt, get: func(c *Config) string { return strconv.Itoa(c.Deploy.MaxConcurrent) }},
	{name: "notify.timeout", kind: kindDuration, get: func(c *Config) string { return durationString(c.Notify.Timeout) }},
	{name: "notify.attempts", kind: kindInt, get: func(c *Config) string { return strconv.Itoa(c.Notify.Attempts) }},
	{name: "notify.initial_delay", kind: kindDuration, get: func(c *Config) string { return durationString(c.Notify.InitialDelay) }},
	{name: "tracking.backend", get: func(c *Config) string { return c.Tracking.Backend }},
	{name: "tracking.db_path", get: func(c *Config) string { return c.Tracking.DBPath }},
}

func lookupKey(key string) (keyDef, bool) {
	for _, def := range keyDefs {
		if def.name == key {
			return def, true
		}
	}
	return keyDef{}, false
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	keys := make([]string, 0, len(keyDefs))
	for _, def := range keyDefs {
		keys = append(keys, def.name)
	}
	return keys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	_, ok := lookupKey(key)
	return ok
}

// IsSecretKey reports whether a key holds a credential that listings should mask.
func IsSecretKey(key string) bool {
	def, ok := lookupKey(key)
	return ok && def.secret
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	def, ok := lookupKey(key)
	if !ok {
		return "", fmt.Errorf("unknown key: %s", key)
	}
	return def.get(c), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	def, ok := lookupKey(key)
	if !ok {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(def, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

func parseSetValue(def keyDef, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch def.kind {
	case kindInt:
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("%s must be a non-negative integer", def.name)
		}
		return int64(parsed), nil
	case kindBool:
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", def.name)
		}
		return parsed, nil
	case kindDuration:
		parsed, err := time.ParseDuration(value)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("%s must be a duration such as 5s", def.name)
		}
		return parsed.String(), nil
	default:
		if def.name == "tracking.backend" && value != "memory" && value != "sqlite" {
			return nil, fmt.Errorf("%s must be memory or sqlite", def.name)
		}
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}
