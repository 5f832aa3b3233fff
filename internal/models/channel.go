package models

// Channel is the identity of the channel being published
type Channel struct {
	Name            string
	Summary         string
	URL             string // no trailing slash
	Alias           string
	Mirrors         []string
	ValidatePackage string
	ValidateVersion string
}

// SuggestedAlias returns the alias, falling back to the channel name
func (c *Channel) SuggestedAlias() string {
	if c.Alias != "" {
		return c.Alias
	}
	return c.Name
}

// BuildConfig contains configuration for a channel build
type BuildConfig struct {
	// Root is both the input directory (pirum.xml, get/) and the publish root
	Root string

	// Signing
	GPGKeyPath    string
	GPGPassphrase string

	// ScratchDir overrides the parent of the scratch build directory
	ScratchDir string
}
