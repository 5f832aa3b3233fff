package channelxml

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ralt/pirum/internal/catalog"
	"github.com/ralt/pirum/internal/generator"
	"github.com/ralt/pirum/internal/models"
	"github.com/ralt/pirum/internal/signer"
	"github.com/ralt/pirum/internal/utils"
	"github.com/sirupsen/logrus"
)

const (
	// Filename is the channel descriptor fetched by channel-discover
	Filename = "channel.xml"
	// SignatureFilename holds the detached signature of channel.xml
	SignatureFilename = "channel.xml.asc"
	// PublicKeyFilename holds the key that verifies the signature
	PublicKeyFilename = "pubkey.asc"

	channelNamespace = "http://pear.php.net/channel-1.0"
)

// restVersions are advertised for every server, all served by the same tree
var restVersions = []string{"REST1.0", "REST1.1", "REST1.2", "REST1.3"}

// Generator implements the generator.Generator interface for channel.xml
type Generator struct {
	signer signer.Signer
}

// NewGenerator creates a new channel.xml generator. A nil signer leaves the
// descriptor unsigned.
func NewGenerator(s signer.Signer) generator.Generator {
	return &Generator{
		signer: s,
	}
}

// Name implements generator.Generator
func (g *Generator) Name() string {
	return "channel"
}

type channelXML struct {
	XMLName        xml.Name         `xml:"channel"`
	Version        string           `xml:"version,attr"`
	Xmlns          string           `xml:"xmlns,attr"`
	XmlnsXsi       string           `xml:"xmlns:xsi,attr"`
	SchemaLocation string           `xml:"xsi:schemaLocation,attr"`
	Name           string           `xml:"name"`
	Summary        string           `xml:"summary"`
	SuggestedAlias string           `xml:"suggestedalias,omitempty"`
	Primary        restXML          `xml:"servers>primary"`
	Mirrors        []mirrorXML      `xml:"servers>mirror"`
	Validate       *validatePackage `xml:"validatepackage"`
}

type mirrorXML struct {
	Host string `xml:"host,attr"`
	SSL  string `xml:"ssl,attr,omitempty"`
	restXML
}

type restXML struct {
	BaseURLs []baseURL `xml:"rest>baseurl"`
}

type baseURL struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type validatePackage struct {
	Version string `xml:"version,attr"`
	Value   string `xml:",chardata"`
}

// Generate writes channel.xml, plus its signature when a signer is set
func (g *Generator) Generate(ctx context.Context, cat *catalog.Catalog, outDir string) error {
	logrus.Info("Generating channel descriptor...")

	data, err := Render(cat.Channel)
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", Filename, err)
	}

	if err := utils.WriteFile(filepath.Join(outDir, Filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", Filename, err)
	}

	if g.signer == nil {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := g.sign(data, outDir); err != nil {
		return err
	}

	logrus.Info("Channel descriptor signed successfully")
	return nil
}

func (g *Generator) sign(data []byte, outDir string) error {
	sig, err := g.signer.SignDetached(data)
	if err != nil {
		return fmt.Errorf("failed to sign %s: %w", Filename, err)
	}
	if err := os.WriteFile(filepath.Join(outDir, SignatureFilename), sig, 0644); err != nil {
		return fmt.Errorf("failed to write signature: %w", err)
	}

	pubKey, err := g.signer.GetPublicKey()
	if err != nil {
		return &models.PirumError{Type: models.ErrSigning, Err: fmt.Errorf("failed to export public key: %w", err)}
	}
	if err := os.WriteFile(filepath.Join(outDir, PublicKeyFilename), pubKey, 0644); err != nil {
		return fmt.Errorf("failed to write public key: %w", err)
	}

	return nil
}

// Render encodes the channel descriptor
func Render(c *models.Channel) ([]byte, error) {
	doc := channelXML{
		Version:        "1.0",
		Xmlns:          channelNamespace,
		XmlnsXsi:       "http://www.w3.org/2001/XMLSchema-instance",
		SchemaLocation: channelNamespace + " http://pear.php.net/dtd/channel-1.0.xsd",
		Name:           c.Name,
		Summary:        c.Summary,
		SuggestedAlias: c.Alias,
		Primary:        newREST(c.URL),
	}

	for _, m := range c.Mirrors {
		mirror := mirrorXML{Host: mirrorHost(m), restXML: newREST(m)}
		if strings.HasPrefix(m, "https") {
			mirror.SSL = "yes"
		}
		doc.Mirrors = append(doc.Mirrors, mirror)
	}

	if c.ValidatePackage != "" && c.ValidateVersion != "" {
		doc.Validate = &validatePackage{Version: c.ValidateVersion, Value: c.ValidatePackage}
	}

	return generator.MarshalXML(doc)
}

func newREST(base string) restXML {
	var r restXML
	for _, v := range restVersions {
		r.BaseURLs = append(r.BaseURLs, baseURL{Type: v, Value: base + "/rest/"})
	}
	return r
}

// mirrorHost returns the host part of a mirror URL, or the value itself
// when it is a bare host name
func mirrorHost(mirror string) string {
	u, err := url.Parse(mirror)
	if err != nil || u.Host == "" {
		return mirror
	}
	return u.Host
}
