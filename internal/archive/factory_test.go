package archive

import (
	"path/filepath"
	"testing"

	"camorg/internal/config"
)

func TestNewArchiveFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ArchiveConfig
		wantErr bool
	}{
		{
			name: "memory archive",
			cfg: config.ArchiveConfig{
				Type: "memory",
				Name: "test-memory",
			},
		},
		{
			name: "filesystem archive",
			cfg: config.ArchiveConfig{
				Type:          "filesystem",
				Name:          "test-fs",
				FSArchiveRoot: filepath.Join(t.TempDir(), "archive"),
			},
		},
		{
			name: "filesystem archive without root",
			cfg: config.ArchiveConfig{
				Type: "filesystem",
				Name: "test-fs",
			},
			wantErr: true,
		},
		{
			name: "s3 archive without bucket",
			cfg: config.ArchiveConfig{
				Type: "s3",
				Name: "test-s3",
			},
			wantErr: true,
		},
		{
			name: "unknown archive type",
			cfg: config.ArchiveConfig{
				Type: "unknown",
				Name: "test-unknown",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewArchiveFromConfig(tt.cfg)

			if (err != nil) != tt.wantErr {
				t.Errorf("NewArchiveFromConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if (got == nil) != tt.wantErr {
				t.Errorf("NewArchiveFromConfig() returned nil = %v, want %v", got == nil, tt.wantErr)
			}

			if !tt.wantErr && got != nil {
				if err := got.ValidateSetup(); err != nil {
					t.Errorf("ValidateSetup() error = %v", err)
				}
			}
		})
	}
}
