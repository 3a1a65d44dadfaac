package encryption

import (
	"bytes"
	"testing"

	"camorg/internal/config"
)

var roundTripInputs = []struct {
	name  string
	input []byte
}{
	{name: "simple text", input: []byte("hello world")},
	{name: "empty", input: []byte{}},
	{name: "binary data", input: []byte{0x00, 0xff, 0x01, 0xfe}},
	{name: "large data", input: bytes.Repeat([]byte("abcdef"), 10000)},
}

func TestTestEncryptor_Setup(t *testing.T) {
	t.Parallel()
	e := NewTestEncryptor()
	if err := e.Setup("any-passphrase"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !e.setupCalled {
		t.Error("Setup() did not record that it was called")
	}
	if !e.IsConfigured() {
		t.Error("IsConfigured() = false, want true")
	}
}

func TestTestEncryptor_EncryptDecrypt(t *testing.T) {
	t.Parallel()

	for _, tt := range roundTripInputs {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewTestEncryptor()

			var encrypted bytes.Buffer
			if err := e.Encrypt(bytes.NewReader(tt.input), &encrypted); err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if !bytes.HasPrefix(encrypted.Bytes(), testHeader) {
				t.Error("encrypted output does not start with test header")
			}

			ctx, err := e.Unlock("any-passphrase")
			if err != nil {
				t.Fatalf("Unlock() error = %v", err)
			}

			var decrypted bytes.Buffer
			if err := ctx.Decrypt(bytes.NewReader(encrypted.Bytes()), &decrypted); err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(decrypted.Bytes(), tt.input) {
				t.Errorf("round-trip failed: got %q, want %q", decrypted.Bytes(), tt.input)
			}
		})
	}
}

func TestTestDecryptionContext_BadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "invalid header", data: []byte("NOT_VALID_HEADER_data")},
		{name: "truncated header", data: []byte("CAM")},
		{name: "empty", data: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			ctx := &TestDecryptionContext{}
			var out bytes.Buffer
			if err := ctx.Decrypt(bytes.NewReader(tt.data), &out); err == nil {
				t.Error("Decrypt() expected error")
			}
		})
	}
}

func TestNoneEncryptor(t *testing.T) {
	t.Parallel()

	e := NoneEncryptor{}
	if !e.IsConfigured() {
		t.Error("IsConfigured() = false, want true")
	}
	if err := e.Setup("passphrase"); err == nil {
		t.Error("Setup() expected error for none encryptor")
	}

	for _, tt := range roundTripInputs {
		var encrypted bytes.Buffer
		if err := e.Encrypt(bytes.NewReader(tt.input), &encrypted); err != nil {
			t.Fatalf("%s: Encrypt() error = %v", tt.name, err)
		}
		if !bytes.Equal(encrypted.Bytes(), tt.input) {
			t.Errorf("%s: Encrypt() changed the data", tt.name)
		}

		ctx, err := e.Unlock("")
		if err != nil {
			t.Fatalf("%s: Unlock() error = %v", tt.name, err)
		}
		var decrypted bytes.Buffer
		if err := ctx.Decrypt(&encrypted, &decrypted); err != nil {
			t.Fatalf("%s: Decrypt() error = %v", tt.name, err)
		}
		if !bytes.Equal(decrypted.Bytes(), tt.input) {
			t.Errorf("%s: Decrypt() changed the data", tt.name)
		}
	}
}

func TestNewEncryptorFromConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ     string
		want    string
		wantErr bool
	}{
		{typ: "", want: "none"},
		{typ: "none", want: "none"},
		{typ: "age", want: "age"},
		{typ: "test", want: "test"},
		{typ: "rot13", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.typ, func(t *testing.T) {
			got, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: tt.typ})
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEncryptorFromConfig(%q) error = %v, wantErr %v", tt.typ, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			var kind string
			switch got.(type) {
			case NoneEncryptor:
				kind = "none"
			case *AgeEncryptor:
				kind = "age"
			case *TestEncryptor:
				kind = "test"
			}
			if kind != tt.want {
				t.Errorf("NewEncryptorFromConfig(%q) = %T, want %s", tt.typ, got, tt.want)
			}
		})
	}
}
