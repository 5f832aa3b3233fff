package signer

// Signer interface for signing channel metadata
type Signer interface {
	// SignDetached creates an armored detached signature (channel.xml.asc)
	SignDetached(data []byte) ([]byte, error)

	// GetPublicKey returns the armored public key
	GetPublicKey() ([]byte, error)
}
