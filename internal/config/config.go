package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for sbs.
type Config struct {
	UserID     string           `toml:"user_id"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Database   DatabaseConfig   `toml:"database"`
	Files      FilesConfig      `toml:"files"`
	Encryption EncryptionConfig `toml:"encryption"`
	Processing ProcessingConfig `toml:"processing"`
	Memory     MemoryConfig     `toml:"memory"`
	Import     ImportConfig     `toml:"import"`
}

// DatabaseConfig represents configuration for the document database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// FilesConfig represents configuration for the store of original files.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type FilesConfig struct {
	Type string `toml:"type"` // "memory", "filesystem" or "s3"

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
}

// EncryptionConfig holds paths to the age key pair that seals stored originals.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default), "test" or "none"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// ImportConfig controls directory imports.
type ImportConfig struct {
	Ignore []string `toml:"ignore"` // patterns skipped in addition to each directory's .sbsignore
}

// ProcessingConfig sizes the background document processor.
type ProcessingConfig struct {
	Workers       int     `toml:"workers"`         // concurrent jobs, defaults to 2
	Queue         int     `toml:"queue"`           // pending jobs before submit blocks, defaults to 16
	Timeout       string  `toml:"timeout"`         // per-job limit as a Go duration, defaults to "2m"
	RatePerSecond float64 `toml:"rate_per_second"` // extraction starts per second, 0 means unlimited
}

// MemoryConfig holds translation-memory search settings.
type MemoryConfig struct {
	MinConfidence float64 `toml:"min_confidence"` // search threshold when a query sets none
}

const (
	DefaultWorkers       = 2
	DefaultQueue         = 16
	DefaultTimeout       = 2 * time.Minute
	DefaultMinConfidence = 0.7
)

// WorkerCount returns Workers, or the default when unset.
func (p ProcessingConfig) WorkerCount() int {
	if p.Workers <= 0 {
		return DefaultWorkers
	}
	return p.Workers
}

// QueueSize returns Queue, or the default when unset.
func (p ProcessingConfig) QueueSize() int {
	if p.Queue <= 0 {
		return DefaultQueue
	}
	return p.Queue
}

// TimeoutDuration parses Timeout, falling back to the default when unset.
func (p ProcessingConfig) TimeoutDuration() (time.Duration, error) {
	if p.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid processing timeout %q: %w", p.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid processing timeout %q: must be positive", p.Timeout)
	}
	return d, nil
}

// Threshold returns MinConfidence, or the default when unset or out of range.
func (m MemoryConfig) Threshold() float64 {
	if m.MinConfidence <= 0 || m.MinConfidence > 1 {
		return DefaultMinConfidence
	}
	return m.MinConfidence
}

// NewConfig creates a new Config rooted at baseDir with local storage,
// age encryption and default processing settings.
func NewConfig(userID, baseDir string) *Config {
	return &Config{
		UserID:  userID,
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Files: FilesConfig{
			Type:   "filesystem",
			FSRoot: filepath.Join(baseDir, "files"),
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "sbs.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "sbs.key"),
		},
		Processing: ProcessingConfig{
			Workers: DefaultWorkers,
			Queue:   DefaultQueue,
			Timeout: DefaultTimeout.String(),
		},
		Memory: MemoryConfig{MinConfidence: DefaultMinConfidence},
		Import: ImportConfig{Ignore: []string{"*.bak", "*~"}},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
