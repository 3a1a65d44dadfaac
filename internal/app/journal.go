package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"camorg/internal/archive"
	"camorg/internal/config"
	"camorg/internal/database"
	"camorg/internal/encryption"
)

// SetupKeys generates the snapshot encryption key pair described by the
// [encryption] config section.
func SetupKeys(cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if err := enc.Setup(passphrase); err != nil {
		return fmt.Errorf("setting up encryption keys: %w", err)
	}
	return nil
}

// PullJournal downloads the archived journal snapshot for this host from the
// first configured archive, decrypts it and installs it as the local journal.
// An existing local journal is kept next to it with a ".bak" suffix. It
// returns the version of the installed snapshot.
func PullJournal(cfg *config.Config, passphrase string) (int64, error) {
	if cfg.Database.Type != "sqlite" {
		return 0, fmt.Errorf("journal pull requires a sqlite database, have %q", cfg.Database.Type)
	}
	if len(cfg.Archives) == 0 {
		return 0, fmt.Errorf("no archives configured")
	}

	a := &CamorgApp{cfg: cfg}
	if err := a.acquireLock(); err != nil {
		return 0, err
	}
	defer a.release()

	arc, err := archive.NewArchiveFromConfig(cfg.Archives[0])
	if err != nil {
		return 0, fmt.Errorf("creating archive: %w", err)
	}
	version, err := arc.GetSnapshotVersion(cfg.HostID, SnapshotName)
	if err != nil {
		return 0, fmt.Errorf("checking archived journal version: %w", err)
	}
	if version == 0 {
		return 0, fmt.Errorf("no journal snapshot archived for host %s", cfg.HostID)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return 0, fmt.Errorf("creating encryptor: %w", err)
	}
	dec, err := enc.Unlock(passphrase)
	if err != nil {
		return 0, fmt.Errorf("unlocking encryption key: %w", err)
	}

	if err := os.MkdirAll(cfg.Database.DataDir, 0700); err != nil {
		return 0, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(cfg.Database.DataDir, cfg.HostID+".db")

	tmp, err := os.CreateTemp(cfg.Database.DataDir, ".pull-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	encrypted, err := os.CreateTemp("", "camorg-pull-*")
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(encrypted.Name())
	defer encrypted.Close()

	if err := arc.GetSnapshot(cfg.HostID, SnapshotName, encrypted); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("downloading journal snapshot: %w", err)
	}
	if _, err := encrypted.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("rewinding journal snapshot: %w", err)
	}
	if err := dec.Decrypt(encrypted, tmp); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("decrypting journal snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("writing journal snapshot: %w", err)
	}

	// Refuse to install something that is not a journal.
	check, err := database.NewSQLiteDatabase(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("opening pulled journal: %w", err)
	}
	local, err := check.MaxRunID()
	check.Close()
	if err != nil {
		return 0, fmt.Errorf("reading pulled journal: %w", err)
	}
	if local != version {
		return 0, fmt.Errorf("pulled journal has version %d, archive says %d", local, version)
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := os.Rename(dbPath, dbPath+".bak"); err != nil {
			return 0, fmt.Errorf("keeping old journal: %w", err)
		}
	}
	if err := os.Rename(tmpPath, dbPath); err != nil {
		return 0, fmt.Errorf("installing pulled journal: %w", err)
	}
	return version, nil
}
