package signer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ralt/pirum/internal/models"
)

// writeTestKey generates a throwaway private key and stores it armored in
// dir, encrypted when passphrase is set
func writeTestKey(t *testing.T, dir, passphrase string) string {
	t.Helper()

	entity, err := openpgp.NewEntity("Channel Signer", "test", "signer@example.com", nil)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PrivateKeyType, nil)
	if err != nil {
		t.Fatal(err)
	}
	if passphrase == "" {
		err = entity.SerializePrivate(w, nil)
	} else {
		if err := entity.PrivateKey.Encrypt([]byte(passphrase)); err != nil {
			t.Fatal(err)
		}
		for _, subkey := range entity.Subkeys {
			if err := subkey.PrivateKey.Encrypt([]byte(passphrase)); err != nil {
				t.Fatal(err)
			}
		}
		err = entity.SerializePrivateWithoutSigning(w, nil)
	}
	if err != nil {
		t.Fatalf("failed to serialize key: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "signing.asc")
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSignDetachedVerifies(t *testing.T) {
	keyPath := writeTestKey(t, t.TempDir(), "")

	s, err := NewGPGSigner(keyPath, "")
	if err != nil {
		t.Fatalf("NewGPGSigner failed: %v", err)
	}

	data := []byte("<channel/>")
	sig, err := s.SignDetached(data)
	if err != nil {
		t.Fatalf("SignDetached failed: %v", err)
	}

	pub, err := s.GetPublicKey()
	if err != nil {
		t.Fatalf("GetPublicKey failed: %v", err)
	}
	keyring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(pub))
	if err != nil {
		t.Fatalf("failed to read public key: %v", err)
	}

	if _, err := openpgp.CheckArmoredDetachedSignature(keyring, bytes.NewReader(data), bytes.NewReader(sig), nil); err != nil {
		t.Errorf("signature does not verify: %v", err)
	}
	if _, err := openpgp.CheckArmoredDetachedSignature(keyring, bytes.NewReader([]byte("<tampered/>")), bytes.NewReader(sig), nil); err == nil {
		t.Error("signature verified over different data")
	}
}

func TestNewGPGSignerErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage")
	if err := os.WriteFile(garbage, []byte("not a key"), 0600); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{"", filepath.Join(dir, "missing"), garbage} {
		if _, err := NewGPGSigner(path, ""); !models.IsType(err, models.ErrSigning) {
			t.Errorf("NewGPGSigner(%q): expected SigningError, got %v", path, err)
		}
	}
}

func TestEncryptedKey(t *testing.T) {
	keyPath := writeTestKey(t, t.TempDir(), "secret")

	if _, err := NewGPGSigner(keyPath, ""); !models.IsType(err, models.ErrSigning) {
		t.Errorf("missing passphrase: expected SigningError, got %v", err)
	}
	if _, err := NewGPGSigner(keyPath, "wrong"); !models.IsType(err, models.ErrSigning) {
		t.Errorf("wrong passphrase: expected SigningError, got %v", err)
	}

	s, err := NewGPGSigner(keyPath, "secret")
	if err != nil {
		t.Fatalf("NewGPGSigner failed: %v", err)
	}
	if _, err := s.SignDetached([]byte("<channel/>")); err != nil {
		t.Errorf("SignDetached failed: %v", err)
	}
}
