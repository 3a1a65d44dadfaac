package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for camorg.
type Config struct {
	HostID     string           `toml:"host_id"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Dropbox    DropboxConfig    `toml:"dropbox"`
	Database   DatabaseConfig   `toml:"database"`
	Archives   []ArchiveConfig  `toml:"archives"`
	Encryption EncryptionConfig `toml:"encryption"`
	Filesystem FilesystemConfig `toml:"filesystem"`
}

// DropboxConfig describes where the camera uploads live and how they are
// organized. Destination and CameraUploads may be absolute (inside Root) or
// relative to Root.
type DropboxConfig struct {
	Root          string `toml:"root"`
	Destination   string `toml:"destination"`
	CameraUploads string `toml:"camera_uploads"`
	Layout        string `toml:"layout"` // "full", "month_only" or "short"
	Cleanup       bool   `toml:"cleanup"`
	Marker        string `toml:"marker,omitempty"`
}

// DatabaseConfig represents configuration for the run journal.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// ArchiveConfig represents configuration for a journal archive backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ArchiveConfig struct {
	Type string `toml:"type"` // "memory", "s3", or "filesystem"
	Name string `toml:"name"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket   string `toml:"s3_bucket,omitempty"`
	S3Prefix   string `toml:"s3_prefix,omitempty"`
	S3Region   string `toml:"s3_region,omitempty"`
	S3Endpoint string `toml:"s3_endpoint,omitempty"`
	// Static credentials; the default AWS credential chain is used when empty.
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSArchiveRoot string `toml:"fs_archive_root,omitempty"`
}

// EncryptionConfig holds the snapshot encryption settings.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "none" (default), "age" or "test"
	PublicKeyPath  string `toml:"public_key_path,omitempty"`
	PrivateKeyPath string `toml:"private_key_path,omitempty"`
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	Ignore []string `toml:"ignore"`
}

// Defaults for the [dropbox] section.
const (
	DefaultDropboxRoot   = "~/Dropbox"
	DefaultDestination   = "Photos/By Date"
	DefaultCameraUploads = "Camera Uploads"
	DefaultLayout        = "full"
	DefaultMarker        = ".dropbox"
)

// NewConfig creates a new Config with the provided values and defaults for
// everything else.
func NewConfig(hostID, baseDir string) *Config {
	return &Config{
		HostID:  hostID,
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Dropbox: DropboxConfig{
			Root:          DefaultDropboxRoot,
			Destination:   DefaultDestination,
			CameraUploads: DefaultCameraUploads,
			Layout:        DefaultLayout,
			Marker:        DefaultMarker,
		},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Encryption: EncryptionConfig{
			Type:           "none",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "camorg.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "camorg.key"),
		},
		Filesystem: FilesystemConfig{
			Ignore: []string{".dropbox.cache"},
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader. Missing [dropbox] values
// fall back to their defaults.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Dropbox.Root == "" {
		c.Dropbox.Root = DefaultDropboxRoot
	}
	if c.Dropbox.Destination == "" {
		c.Dropbox.Destination = DefaultDestination
	}
	if c.Dropbox.CameraUploads == "" {
		c.Dropbox.CameraUploads = DefaultCameraUploads
	}
	if c.Dropbox.Layout == "" {
		c.Dropbox.Layout = DefaultLayout
	}
	if c.Dropbox.Marker == "" {
		c.Dropbox.Marker = DefaultMarker
	}
	if c.Encryption.Type == "" {
		c.Encryption.Type = "none"
	}
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

func writeToFile(path string, cfg *Config) error {
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
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
