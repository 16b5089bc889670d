package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for pplx environment variables, e.g. PPLX_API_KEY.
const EnvPrefix = "PPLX"

var (
	// appConfig holds the current application configuration
	appConfig *Config
	configMu  sync.RWMutex
)

// SetDefaults installs the built-in defaults on v. Every key a Config field
// maps to has a default so an empty environment still yields a usable
// configuration (apart from the API key).
func SetDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "https://api.perplexity.ai")
	v.SetDefault("timeout", "30s")
	v.SetDefault("verify_ssl", true)
	v.SetDefault("user_agent", "perplexity-go/1.0")

	// Request defaults
	v.SetDefault("defaults.model", "sonar")
	v.SetDefault("defaults.system", "")

	// Retry defaults
	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.base_delay", "100ms")

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_minute", 60)

	// Store defaults
	v.SetDefault("store.path", DefaultStorePath())

	// Logging defaults
	v.SetDefault("logging.level", "info")
}

// Load layers environment variables over whatever defaults and config file
// v already carries, then unmarshals into a typed Config. A .env file in the
// working directory is folded into the environment first.
//
// This function is safe to call multiple times (e.g., for config reload).
func Load(v *viper.Viper) (*Config, error) {
	// A missing .env file is not an error; explicit environment wins
	// because godotenv never overwrites existing variables.
	_ = godotenv.Load()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	applyLegacyEnv(v)

	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}

	setConfig(cfg)
	return cfg, nil
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// applyLegacyEnv maps the original PERPLEXITY_* variable names onto config
// keys. A PPLX_* variable for the same key always takes precedence.
func applyLegacyEnv(v *viper.Viper) {
	legacy := map[string]string{
		"api_key":  "PERPLEXITY_API_KEY",
		"base_url": "PERPLEXITY_BASE_URL",
		"proxy":    "PERPLEXITY_PROXY",
	}

	for key, name := range legacy {
		if os.Getenv(pplxEnvName(key)) != "" {
			continue
		}
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			v.Set(key, value)
		}
	}

	// PERPLEXITY_TIMEOUT is a bare number of seconds.
	if os.Getenv(pplxEnvName("timeout")) == "" {
		if raw := strings.TrimSpace(os.Getenv("PERPLEXITY_TIMEOUT")); raw != "" {
			if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
				v.Set("timeout", (time.Duration(seconds) * time.Second).String())
			} else {
				v.Set("timeout", raw)
			}
		}
	}
}

func pplxEnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
