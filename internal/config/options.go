package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/riskibarqy/go-commitrewrite/internal/openai"
)

const (
	defaultMaxCommits = 1000
	defaultLogLevel   = "warn"
	defaultEnvFile    = ".env"

	// SettingsFileName is looked up in the working directory.
	SettingsFileName = ".commitrewrite.yaml"
)

// ErrMissingAPIKey is returned when no credential could be resolved.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

// Options captures all user facing configuration.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxCommits  int
	Timeout     time.Duration
	Commit      bool
	HookPath    string
	LogLevel    string
	EnvFile     string
	// SettingsFile is the YAML file that was read, if any.
	SettingsFile string
}

// binding ties a settings key to its flag and environment variables.
type binding struct {
	key  string
	flag string
	env  []string
}

var bindings = []binding{
	{key: "api_key", env: []string{"OPENAI_API_KEY", "COMMITREWRITE_API_KEY"}},
	{key: "base_url", flag: "base-url", env: []string{"OPENAI_BASE_URL", "COMMITREWRITE_BASE_URL"}},
	{key: "model", flag: "model", env: []string{"COMMITREWRITE_MODEL"}},
	{key: "temperature", flag: "temperature", env: []string{"COMMITREWRITE_TEMPERATURE"}},
	{key: "max_commits", flag: "max-commits", env: []string{"COMMITREWRITE_MAX_COMMITS"}},
	{key: "timeout", flag: "timeout", env: []string{"COMMITREWRITE_TIMEOUT"}},
	{key: "commit", flag: "commit", env: []string{"COMMITREWRITE_COMMIT"}},
	{key: "hook", flag: "hook", env: []string{"COMMITREWRITE_HOOK"}},
	{key: "log_level", flag: "log-level", env: []string{"COMMITREWRITE_LOG_LEVEL", "LOG_LEVEL"}},
}

// RegisterFlags adds the configuration flags to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("model", openai.DefaultModel, "Chat completion model used for the rewrite")
	flags.String("base-url", openai.DefaultBaseURL, "Base URL of the OpenAI-compatible API")
	flags.Float64("temperature", openai.DefaultTemperature, "Sampling temperature")
	flags.Int("max-commits", defaultMaxCommits, "Number of recent commits scanned for known scopes")
	flags.Duration("timeout", 0, "Request timeout for the completion call (0 disables it)")
	flags.Bool("commit", false, "Commit the staged changes with the rewritten message")
	flags.String("hook", "", "Also write the message into the given commit message file")
	flags.String("log-level", defaultLogLevel, "Log level on stderr: debug, info, warn, error")
	flags.String("env-file", defaultEnvFile, "Settings file with KEY=value lines loaded into the environment")
	flags.String("config", "", "YAML settings file (default ./"+SettingsFileName+" or $XDG_CONFIG_HOME/commitrewrite/config.yaml)")
}

// Load resolves options with the precedence flag > environment > settings file > default.
// The env file never overrides variables that are already set.
func Load(flags *pflag.FlagSet) (Options, error) {
	envFile, err := loadEnvFile(flags)
	if err != nil {
		return Options{}, err
	}

	v := viper.New()
	v.SetDefault("base_url", openai.DefaultBaseURL)
	v.SetDefault("model", openai.DefaultModel)
	v.SetDefault("temperature", openai.DefaultTemperature)
	v.SetDefault("max_commits", defaultMaxCommits)
	v.SetDefault("log_level", defaultLogLevel)

	for _, b := range bindings {
		if err := v.BindEnv(append([]string{b.key}, b.env...)...); err != nil {
			return Options{}, errors.Wrapf(err, "bind env for %s", b.key)
		}
		if b.flag == "" {
			continue
		}
		if f := flags.Lookup(b.flag); f != nil {
			if err := v.BindPFlag(b.key, f); err != nil {
				return Options{}, errors.Wrapf(err, "bind flag --%s", b.flag)
			}
		}
	}

	settings, err := settingsFile(flags)
	if err != nil {
		return Options{}, err
	}
	if settings != "" {
		v.SetConfigFile(settings)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Options{}, errors.Wrapf(err, "read settings file %s", settings)
		}
	}

	opts := Options{
		APIKey:       strings.TrimSpace(v.GetString("api_key")),
		BaseURL:      strings.TrimSpace(v.GetString("base_url")),
		Model:        strings.TrimSpace(v.GetString("model")),
		Temperature:  v.GetFloat64("temperature"),
		MaxCommits:   v.GetInt("max_commits"),
		Timeout:      v.GetDuration("timeout"),
		Commit:       v.GetBool("commit"),
		HookPath:     strings.TrimSpace(v.GetString("hook")),
		LogLevel:     strings.TrimSpace(v.GetString("log_level")),
		EnvFile:      envFile,
		SettingsFile: settings,
	}
	if opts.BaseURL == "" {
		opts.BaseURL = openai.DefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = openai.DefaultModel
	}

	if err := opts.check(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate reports whether the options are complete enough to call the API.
func (o Options) Validate() error {
	if o.APIKey == "" {
		return errors.WithHint(ErrMissingAPIKey,
			"export OPENAI_API_KEY or add OPENAI_API_KEY=... to the .env file")
	}
	return nil
}

func (o Options) check() error {
	if o.Temperature < 0 || o.Temperature > 2 {
		return errors.Newf("temperature must be between 0 and 2, got %v", o.Temperature)
	}
	if o.MaxCommits < 0 {
		return errors.Newf("max-commits must not be negative, got %d", o.MaxCommits)
	}
	if o.Timeout < 0 {
		return errors.Newf("timeout must not be negative, got %s", o.Timeout)
	}
	return nil
}

// loadEnvFile loads KEY=value pairs into the process environment. A missing
// default file is fine; a missing file the user asked for is not.
func loadEnvFile(flags *pflag.FlagSet) (string, error) {
	path, explicit := lookup(flags, "env-file", "COMMITREWRITE_ENV_FILE")
	if path == "" {
		path = defaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return "", nil
		}
		return "", errors.Wrapf(err, "load env file %s", path)
	}
	return path, nil
}

// settingsFile returns the YAML settings file to read, or "" when there is none.
func settingsFile(flags *pflag.FlagSet) (string, error) {
	if path, explicit := lookup(flags, "config", "COMMITREWRITE_CONFIG"); explicit {
		return path, nil
	}

	candidates := []string{SettingsFileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "commitrewrite", "config.yaml"))
	}
	for _, c := range candidates {
		info, err := os.Stat(c)
		if err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", nil
}

// lookup reads a flag that must be known before viper is set up. It reports
// whether the value came from the user rather than the flag default.
func lookup(flags *pflag.FlagSet, flag, env string) (string, bool) {
	if f := flags.Lookup(flag); f != nil && f.Changed {
		return f.Value.String(), true
	}
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v, true
	}
	if f := flags.Lookup(flag); f != nil {
		return f.Value.String(), false
	}
	return "", false
}
