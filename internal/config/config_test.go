package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		HostID:  "test-host-abc",
		BaseDir: "/home/user/.local/share/camorg",
		LogDir:  "/home/user/.local/share/camorg/log",
		Dropbox: DropboxConfig{
			Root:          "/home/user/Dropbox",
			Destination:   "Photos/By Month",
			CameraUploads: "Camera Uploads",
			Layout:        "month_only",
			Cleanup:       true,
			Marker:        ".dropbox",
		},
		Archives: []ArchiveConfig{
			{Type: "filesystem", Name: "local", FSArchiveRoot: "/backup/camorg"},
			{Type: "s3", Name: "remote", S3Bucket: "journals", S3Region: "eu-west-1", S3Endpoint: "http://localhost:9000"},
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  "/home/user/.local/share/camorg/keys/camorg.pub",
			PrivateKeyPath: "/home/user/.local/share/camorg/keys/camorg.key",
		},
		Database: DatabaseConfig{Type: "sqlite", DataDir: "/home/user/.local/share/camorg/db"},
		Filesystem: FilesystemConfig{
			Ignore: []string{"*.tmp", ".dropbox.cache"},
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.HostID != original.HostID {
		t.Errorf("HostID = %q, want %q", got.HostID, original.HostID)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Dropbox != original.Dropbox {
		t.Errorf("Dropbox = %+v, want %+v", got.Dropbox, original.Dropbox)
	}
	if len(got.Archives) != 2 {
		t.Fatalf("len(Archives) = %d, want 2", len(got.Archives))
	}
	if got.Archives[0].FSArchiveRoot != "/backup/camorg" {
		t.Errorf("Archives[0].FSArchiveRoot = %q, want %q", got.Archives[0].FSArchiveRoot, "/backup/camorg")
	}
	if got.Archives[1].S3Endpoint != "http://localhost:9000" {
		t.Errorf("Archives[1].S3Endpoint = %q, want %q", got.Archives[1].S3Endpoint, "http://localhost:9000")
	}
	if got.Encryption != original.Encryption {
		t.Errorf("Encryption = %+v, want %+v", got.Encryption, original.Encryption)
	}
	if got.Database != original.Database {
		t.Errorf("Database = %+v, want %+v", got.Database, original.Database)
	}
	if len(got.Filesystem.Ignore) != 2 {
		t.Fatalf("len(Filesystem.Ignore) = %d, want 2", len(got.Filesystem.Ignore))
	}
}

func TestManager_Read_AppliesDefaults(t *testing.T) {
	input := `
host_id = "h1"
base_dir = "/data/camorg"

[dropbox]
cleanup = true
`
	got, err := (&Manager{}).Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	want := DropboxConfig{
		Root:          DefaultDropboxRoot,
		Destination:   DefaultDestination,
		CameraUploads: DefaultCameraUploads,
		Layout:        DefaultLayout,
		Cleanup:       true,
		Marker:        DefaultMarker,
	}
	if got.Dropbox != want {
		t.Errorf("Dropbox = %+v, want %+v", got.Dropbox, want)
	}
	if got.Encryption.Type != "none" {
		t.Errorf("Encryption.Type = %q, want %q", got.Encryption.Type, "none")
	}
}

func TestManager_Read_InvalidTOML(t *testing.T) {
	_, err := (&Manager{}).Read(strings.NewReader("host_id = "))
	if err == nil {
		t.Fatal("Read() expected error for invalid TOML")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("host-1", "/data/camorg")

	if cfg.HostID != "host-1" {
		t.Errorf("HostID = %q, want %q", cfg.HostID, "host-1")
	}
	if cfg.LogDir != "/data/camorg/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/camorg/log")
	}
	if cfg.Database.DataDir != "/data/camorg/db" {
		t.Errorf("Database.DataDir = %q, want %q", cfg.Database.DataDir, "/data/camorg/db")
	}
	if cfg.Dropbox.Layout != "full" {
		t.Errorf("Dropbox.Layout = %q, want %q", cfg.Dropbox.Layout, "full")
	}
	if cfg.Dropbox.Cleanup {
		t.Error("Dropbox.Cleanup = true, want false")
	}
	if cfg.Encryption.PublicKeyPath != "/data/camorg/keys/camorg.pub" {
		t.Errorf("Encryption.PublicKeyPath = %q, want %q", cfg.Encryption.PublicKeyPath, "/data/camorg/keys/camorg.pub")
	}
	if cfg.Encryption.PrivateKeyPath != "/data/camorg/keys/camorg.key" {
		t.Errorf("Encryption.PrivateKeyPath = %q, want %q", cfg.Encryption.PrivateKeyPath, "/data/camorg/keys/camorg.key")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "camorg.toml")
		cfg := NewConfig("h1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "camorg.toml")
		cfg := NewConfig("h1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "camorg.toml")
		cfg := NewConfig("read-test", dir)
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.HostID != "read-test" {
			t.Errorf("HostID = %q, want %q", got.HostID, "read-test")
		}
		if got.Database.Type != "memory" {
			t.Errorf("Database.Type = %q, want %q", got.Database.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/camorg.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
