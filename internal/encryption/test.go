package encryption

import (
	"bytes"
	"fmt"
	"io"

	"camorg/internal/organizer"
)

// testHeader marks data written by TestEncryptor.
var testHeader = []byte("CAMORG\x00\x00")

// TestEncryptor is a deterministic, reversible encryptor for tests. It
// prepends testHeader and strips it again on decryption, so ciphertext always
// differs from plaintext without any key material.
type TestEncryptor struct {
	setupCalled bool
}

// NewTestEncryptor creates a new TestEncryptor.
func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

func (e *TestEncryptor) Setup(passphrase string) error {
	e.setupCalled = true
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Unlock(passphrase string) (organizer.DecryptionContext, error) {
	return &TestDecryptionContext{}, nil
}

func (e *TestEncryptor) IsConfigured() bool {
	return true
}

// TestDecryptionContext strips the test header added by TestEncryptor.
type TestDecryptionContext struct{}

func (c *TestDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(header, testHeader) {
		return fmt.Errorf("invalid test encryption header")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

// NoneEncryptor stores snapshots as plaintext. It is the default when no
// keys have been set up.
type NoneEncryptor struct{}

func (NoneEncryptor) Setup(passphrase string) error {
	return fmt.Errorf("encryption type is none; set [encryption] type = \"age\" first")
}

func (NoneEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (NoneEncryptor) Unlock(passphrase string) (organizer.DecryptionContext, error) {
	return plaintextContext{}, nil
}

func (NoneEncryptor) IsConfigured() bool {
	return true
}

type plaintextContext struct{}

func (plaintextContext) Decrypt(r io.Reader, w io.Writer) error {
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

var (
	_ organizer.Encryptor         = (*TestEncryptor)(nil)
	_ organizer.DecryptionContext = (*TestDecryptionContext)(nil)
	_ organizer.Encryptor         = NoneEncryptor{}
)
