// Package config provides configuration management for dseq-based
// services: fabric selection, the bulk-transport chunk threshold, the
// optional collective-call audit sink, snapshot export and log
// settings. Telemetry is configured from environment variables by
// pkg/telemetry, not here.
// The core library (pkg/dseq and below) takes no config dependency of
// its own — every collective is wired from explicit Go values — this
// package exists for the surrounding binaries (cmd/dseqctl) that need
// to build a Context and its collaborators from a file or environment.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for a dseq-based binary.
type Config struct {
	Fabric    FabricConfig  `mapstructure:"fabric"`
	Audit     AuditConfig   `mapstructure:"audit"`
	Snapshot  SnapshotConfig `mapstructure:"snapshot"`
	Log       LogConfig     `mapstructure:"log"`
}

// FabricConfig selects and tunes the message-passing transport.
type FabricConfig struct {
	// Type names the fabric implementation. "local" is the only one
	// shipped (an in-process goroutine/channel simulation); a
	// networked fabric is an external collaborator (spec §6).
	Type string `mapstructure:"type"`
	// Procs is how many ranks to simulate when Type is "local".
	Procs int `mapstructure:"procs"`
	// ChunkBytes is a chunk-size setting for the tree reducer's
	// bulk-payload path. It is loaded and validated here only: pkg/reduce
	// does not read it and always splits at its fixed reduce.ChunkSize
	// (1<<30). Defaults to 1<<30.
	ChunkBytes int `mapstructure:"chunk_bytes"`
}

// AuditConfig selects the collective-call audit recorder.
type AuditConfig struct {
	// Enabled turns on audit recording. Off by default: the core
	// library never requires a database.
	Enabled bool `mapstructure:"enabled"`
	// Driver is "gorm" or "sql"; see internal/audit.
	Driver   string `mapstructure:"driver"`
	Type     string `mapstructure:"type"` // postgres, mysql, or sqlite
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int    `mapstructure:"max_conns"`
}

// SnapshotConfig selects the object-storage backend used to archive a
// collect(root) result after the fact.
type SnapshotConfig struct {
	Type      string `mapstructure:"type"` // cos or local
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Domain    string `mapstructure:"domain"`
	Scheme    string `mapstructure:"scheme"`
	LocalPath string `mapstructure:"local_path"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("dseq")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/dseq")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("Config file not found, using defaults")
		} else if os.IsNotExist(err) {
			fmt.Printf("Config file %s not found, using defaults\n", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from raw bytes (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("fabric.type", "local")
	v.SetDefault("fabric.procs", 4)
	v.SetDefault("fabric.chunk_bytes", 1<<30)

	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.driver", "gorm")
	v.SetDefault("audit.type", "sqlite")
	v.SetDefault("audit.max_conns", 10)

	v.SetDefault("snapshot.type", "local")
	v.SetDefault("snapshot.local_path", "./snapshots")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Fabric.Type != "local" {
		return fmt.Errorf("unsupported fabric type: %s", c.Fabric.Type)
	}
	if c.Fabric.Procs < 1 {
		return fmt.Errorf("fabric procs must be at least 1")
	}
	if c.Fabric.ChunkBytes <= 0 {
		return fmt.Errorf("fabric chunk_bytes must be positive")
	}

	if c.Audit.Enabled {
		switch c.Audit.Type {
		case "postgres", "mysql", "sqlite":
		default:
			return fmt.Errorf("unsupported audit database type: %s", c.Audit.Type)
		}
	}

	// Snapshot config validation is delegated to pkg/snapshot.

	return nil
}
