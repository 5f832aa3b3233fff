package signer

import (
	"bytes"
	"crypto"
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/ralt/pirum/internal/models"
)

// GPGSigner implements Signer interface using GPG
type GPGSigner struct {
	entity *openpgp.Entity
}

// NewGPGSigner loads the first private key of an armored or binary key
// ring. An encrypted key needs its passphrase.
func NewGPGSigner(keyPath, passphrase string) (*GPGSigner, error) {
	if keyPath == "" {
		return nil, signingError("key path is empty")
	}

	keyFile, err := os.Open(keyPath)
	if err != nil {
		return nil, signingError("failed to open key file: %v", err)
	}
	defer keyFile.Close()

	entity, err := readEntity(keyFile)
	if err != nil {
		return nil, err
	}

	if err := unlock(entity, []byte(passphrase)); err != nil {
		return nil, err
	}
	return &GPGSigner{entity: entity}, nil
}

func readEntity(r io.ReadSeeker) (*openpgp.Entity, error) {
	entities, err := openpgp.ReadArmoredKeyRing(r)
	if err != nil {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, signingError("failed to read key: %v", err)
		}
		if entities, err = openpgp.ReadKeyRing(r); err != nil {
			return nil, signingError("failed to read key: %v", err)
		}
	}

	if len(entities) == 0 {
		return nil, signingError("no keys found in key file")
	}
	if entities[0].PrivateKey == nil {
		return nil, signingError("key file holds no private key")
	}
	return entities[0], nil
}

// unlock decrypts the primary key and its subkeys
func unlock(entity *openpgp.Entity, passphrase []byte) error {
	keys := []*packet.PrivateKey{entity.PrivateKey}
	for _, subkey := range entity.Subkeys {
		if subkey.PrivateKey != nil {
			keys = append(keys, subkey.PrivateKey)
		}
	}

	for _, key := range keys {
		if !key.Encrypted {
			continue
		}
		if len(passphrase) == 0 {
			return signingError("key %s is encrypted and no passphrase was given", key.KeyIdString())
		}
		if err := key.Decrypt(passphrase); err != nil {
			return signingError("failed to decrypt key %s: %v", key.KeyIdString(), err)
		}
	}
	return nil
}

// SignDetached creates an armored detached signature
func (s *GPGSigner) SignDetached(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	err := openpgp.ArmoredDetachSign(&buf, s.entity, bytes.NewReader(data), &packet.Config{
		DefaultHash: crypto.SHA512,
	})
	if err != nil {
		return nil, signingError("failed to create detached signature: %v", err)
	}

	return buf.Bytes(), nil
}

// GetPublicKey returns the public key in armored format
func (s *GPGSigner) GetPublicKey() ([]byte, error) {
	var buf bytes.Buffer

	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		return nil, signingError("failed to export public key: %v", err)
	}
	if err := s.entity.Serialize(w); err != nil {
		w.Close()
		return nil, signingError("failed to export public key: %v", err)
	}
	if err := w.Close(); err != nil {
		return nil, signingError("failed to export public key: %v", err)
	}

	return buf.Bytes(), nil
}

func signingError(format string, args ...interface{}) error {
	return &models.PirumError{Type: models.ErrSigning, Err: fmt.Errorf(format, args...)}
}
