package config

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

var (
	cfg  *Config
	once sync.Once
)

// Config holds all suite-wide settings. Everything is overridable from the
// environment; secrets (credentials) are deliberately not part of this struct
// and live in the creds package.
type Config struct {
	// BaseURL of the CRM instance under test.
	BaseURL string

	// Browser launch settings.
	Headless bool
	SlowMo   int

	// Bounded waits. Every interaction in the suite derives its timeout from
	// one of these; nothing blocks indefinitely.
	ActionTimeout     time.Duration
	NavigationTimeout time.Duration
	ExpectTimeout     time.Duration
	SettleDelay       time.Duration
	ScenarioTimeout   time.Duration
	CleanupTimeout    time.Duration

	// Failure diagnostics.
	ArtifactDir string
	RunID       string
	Screenshots bool
	Videos      bool
	Trace       bool

	// CI toggles retry behavior and the focus-marker lint.
	CI bool
}

// Get returns the suite configuration, loading it on first use.
func Get() *Config {
	once.Do(func() {
		loadDotEnv()
		cfg = load()
	})
	return cfg
}

func load() *Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("base_url", "https://crm.wkconnect.de")
	v.SetDefault("headless", true)
	v.SetDefault("slow_mo", 0)
	v.SetDefault("action_timeout", 15*time.Second)
	v.SetDefault("navigation_timeout", 30*time.Second)
	v.SetDefault("expect_timeout", 10*time.Second)
	v.SetDefault("settle_delay", 3*time.Second)
	v.SetDefault("scenario_timeout", 60*time.Second)
	v.SetDefault("cleanup_timeout", 30*time.Second)
	v.SetDefault("artifact_dir", "test-results")
	v.SetDefault("screenshots", true)
	v.SetDefault("videos", true)
	v.SetDefault("trace", true)

	return &Config{
		BaseURL:           strings.TrimRight(v.GetString("base_url"), "/"),
		Headless:          v.GetBool("headless"),
		SlowMo:            v.GetInt("slow_mo"),
		ActionTimeout:     v.GetDuration("action_timeout"),
		NavigationTimeout: v.GetDuration("navigation_timeout"),
		ExpectTimeout:     v.GetDuration("expect_timeout"),
		SettleDelay:       v.GetDuration("settle_delay"),
		ScenarioTimeout:   v.GetDuration("scenario_timeout"),
		CleanupTimeout:    v.GetDuration("cleanup_timeout"),
		ArtifactDir:       v.GetString("artifact_dir"),
		RunID:             uuid.NewString()[:8],
		Screenshots:       v.GetBool("screenshots"),
		Videos:            v.GetBool("videos"),
		Trace:             v.GetBool("trace"),
		CI:                v.GetString("ci") != "",
	}
}

// RunDir returns the artifact directory scoped to this run.
func (c *Config) RunDir() string {
	return filepath.Join(c.ArtifactDir, c.RunID)
}

// ResetForTesting clears the cached configuration so the next Get reloads
// from the current environment. Test-only.
func ResetForTesting() {
	once = sync.Once{}
	cfg = nil
}
