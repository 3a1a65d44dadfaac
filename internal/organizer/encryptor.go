package organizer

import "io"

// Encryptor protects journal snapshots before they leave the machine.
// Encryption needs only the public key; decryption needs the passphrase.
type Encryptor interface {
	// Setup generates a key pair and wraps the private key with passphrase.
	Setup(passphrase string) error

	// Encrypt writes the ciphertext of r to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock opens the private key for the rest of the session.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured reports whether the key files are in place.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key in memory.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}
