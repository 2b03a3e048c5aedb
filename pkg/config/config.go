package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete vahti configuration
type Config struct {
	Snapshots  SnapshotsConfig  `mapstructure:"snapshots"`
	Kubernetes KubernetesConfig `mapstructure:"kubernetes"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Report     ReportConfig     `mapstructure:"report"`
	Output     OutputConfig     `mapstructure:"output"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// SnapshotsConfig controls where snapshots are kept and for how long
type SnapshotsConfig struct {
	Dir string `mapstructure:"dir"`
	// MaxHistory caps how many snapshot files are kept, 0 keeps all
	MaxHistory int `mapstructure:"max_history"`
}

// KubernetesConfig contains cluster connection configuration
type KubernetesConfig struct {
	Kubeconfig         string   `mapstructure:"kubeconfig"`
	Context            string   `mapstructure:"context"`
	Namespaces         []string `mapstructure:"namespaces"`
	InsecureSkipVerify bool     `mapstructure:"insecure_skip_verify"`
}

// SMTPConfig contains mail delivery configuration
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// UseSSL keeps the legacy string contract: any value except "no"
	// means STARTTLS is required
	UseSSL  string `mapstructure:"use_ssl"`
	From    string `mapstructure:"from"`
	To      string `mapstructure:"to"`
	Subject string `mapstructure:"subject"`
}

// StartTLS reports whether delivery must upgrade the connection
func (c SMTPConfig) StartTLS() bool {
	return c.UseSSL != "no"
}

// ReportConfig tunes the comparison engine
type ReportConfig struct {
	ScheduleGrace    time.Duration `mapstructure:"schedule_grace"`
	SuccessGrace     time.Duration `mapstructure:"success_grace"`
	SuppressedOwners []string      `mapstructure:"suppressed_owners"`
}

// OutputConfig contains output formatting configuration
type OutputConfig struct {
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Snapshots: SnapshotsConfig{
			Dir:        "~/.vahti/snapshots",
			MaxHistory: 0,
		},
		Kubernetes: KubernetesConfig{
			Namespaces: []string{},
		},
		SMTP: SMTPConfig{
			Port:    25,
			UseSSL:  "yes",
			Subject: "k8s status report",
		},
		Report: ReportConfig{
			ScheduleGrace:    7 * 24 * time.Hour,
			SuccessGrace:     24 * time.Hour,
			SuppressedOwners: []string{"Job"},
		},
		Output: OutputConfig{
			Format:  "text",
			NoColor: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from file, environment and defaults
func Load() (*Config, error) {
	config := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".vahti"))
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("VAHTI")
	viper.AutomaticEnv()

	// Legacy variable names from earlier deployments stay supported
	viper.BindEnv("smtp.host", "VAHTI_SMTP_HOST", "SMTP_HOST")
	viper.BindEnv("smtp.port", "VAHTI_SMTP_PORT", "SMTP_PORT")
	viper.BindEnv("smtp.use_ssl", "VAHTI_SMTP_USE_SSL", "SMTP_USE_SSL")
	viper.BindEnv("smtp.username", "VAHTI_SMTP_USERNAME", "SMTP_USERNAME")
	viper.BindEnv("smtp.password", "VAHTI_SMTP_PASSWORD", "SMTP_PASSWORD")
	viper.BindEnv("smtp.from", "VAHTI_SMTP_FROM", "FROM")
	viper.BindEnv("smtp.to", "VAHTI_SMTP_TO", "TO")
	viper.BindEnv("smtp.subject", "VAHTI_SMTP_SUBJECT", "SUBJECT")
	viper.BindEnv("snapshots.dir", "VAHTI_SNAPSHOTS_DIR", "SNAPSHOT_DIR")
	viper.BindEnv("logging.level", "VAHTI_LOG_LEVEL", "LOG_LEVEL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is not an error - we'll use defaults
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// VERIFY_SSL is a legacy inverted flag: only the literal "no"
	// disables certificate verification
	if os.Getenv("VERIFY_SSL") == "no" {
		config.Kubernetes.InsecureSkipVerify = true
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Snapshots.Dir == "" {
		return fmt.Errorf("snapshots.dir is required")
	}

	if c.Snapshots.MaxHistory < 0 {
		return fmt.Errorf("snapshots.max_history cannot be negative")
	}

	if c.Report.ScheduleGrace <= 0 {
		return fmt.Errorf("report.schedule_grace must be positive")
	}

	if c.Report.SuccessGrace <= 0 {
		return fmt.Errorf("report.success_grace must be positive")
	}

	return nil
}

// ValidateSMTP checks the settings needed to actually deliver mail.
// Called only on the delivery path so dry runs work unconfigured.
func (c *Config) ValidateSMTP() error {
	if c.SMTP.Host == "" {
		return fmt.Errorf("smtp.host is required")
	}

	if c.SMTP.To == "" {
		return fmt.Errorf("smtp.to is required")
	}

	if c.SMTP.From == "" {
		return fmt.Errorf("smtp.from is required")
	}

	return nil
}

// ExpandPaths expands home directory paths
func (c *Config) ExpandPaths() error {
	var err error
	c.Snapshots.Dir, err = expandPath(c.Snapshots.Dir)
	if err != nil {
		return fmt.Errorf("failed to expand snapshots dir: %w", err)
	}

	c.Kubernetes.Kubeconfig, err = expandPath(c.Kubernetes.Kubeconfig)
	if err != nil {
		return fmt.Errorf("failed to expand kubeconfig path: %w", err)
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path, err
	}

	if len(path) == 1 {
		return home, nil
	}

	return filepath.Join(home, path[1:]), nil
}
