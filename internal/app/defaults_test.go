package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "/custom/config.toml")
		t.Setenv(EnvHome, "/custom/camorg")

		got, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		want := Defaults{
			ConfigPath: "/custom/config.toml",
			BaseDir:    "/custom/camorg",
			LogDir:     "/custom/camorg/log",
		}
		if *got != want {
			t.Errorf("GetDefaults() = %+v, want %+v", *got, want)
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		t.Setenv(EnvHome, "")

		got, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()
		wantBase := filepath.Join(homeDir, ".local", "share", "camorg")
		want := Defaults{
			ConfigPath: filepath.Join(homeDir, ".config", "camorg.toml"),
			BaseDir:    wantBase,
			LogDir:     filepath.Join(wantBase, "log"),
		}
		if *got != want {
			t.Errorf("GetDefaults() = %+v, want %+v", *got, want)
		}
	})

	t.Run("mixes env and home defaults", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "/etc/camorg.toml")
		t.Setenv(EnvHome, "")

		got, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()
		if got.ConfigPath != "/etc/camorg.toml" {
			t.Errorf("ConfigPath = %q, want %q", got.ConfigPath, "/etc/camorg.toml")
		}
		if want := filepath.Join(homeDir, ".local", "share", "camorg"); got.BaseDir != want {
			t.Errorf("BaseDir = %q, want %q", got.BaseDir, want)
		}
	})
}
