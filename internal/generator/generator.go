package generator

import (
	"context"
	"encoding/xml"

	"github.com/ralt/pirum/internal/catalog"
	"github.com/ralt/pirum/internal/utils"
)

// Generator renders part of the published channel from a catalog
type Generator interface {
	// Name identifies the generator in logs
	Name() string

	// Generate writes its files under outDir. Output depends only on the
	// catalog: the same catalog renders byte-identical files.
	Generate(ctx context.Context, cat *catalog.Catalog, outDir string) error
}

const (
	xsiNamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	xlinkNamespace = "http://www.w3.org/1999/xlink"
)

// RESTNamespace holds the namespace attributes of a PEAR REST document
type RESTNamespace struct {
	Xmlns          string `xml:"xmlns,attr"`
	XmlnsXsi       string `xml:"xmlns:xsi,attr"`
	XmlnsXlink     string `xml:"xmlns:xlink,attr"`
	SchemaLocation string `xml:"xsi:schemaLocation,attr"`
}

// NewRESTNamespace returns the attributes for a document type such as
// "rest.release"
func NewRESTNamespace(doc string) RESTNamespace {
	ns := "http://pear.php.net/dtd/" + doc
	return RESTNamespace{
		Xmlns:          ns,
		XmlnsXsi:       xsiNamespace,
		XmlnsXlink:     xlinkNamespace,
		SchemaLocation: ns + " " + ns + ".xsd",
	}
}

// Link is an element carrying an xlink:href attribute
type Link struct {
	Href  string `xml:"xlink:href,attr"`
	Value string `xml:",chardata"`
}

// MarshalXML encodes v with the XML declaration
func MarshalXML(v interface{}) ([]byte, error) {
	data, err := xml.MarshalIndent(v, "", " ")
	if err != nil {
		return nil, err
	}
	return append(append([]byte(xml.Header), data...), '\n'), nil
}

// WriteXML encodes v and writes it to path, creating directories as needed
func WriteXML(path string, v interface{}) error {
	data, err := MarshalXML(v)
	if err != nil {
		return err
	}
	return utils.WriteFile(path, data, 0644)
}
