package rest

import (
	"encoding/xml"

	"github.com/ralt/pirum/internal/generator"
)

// rest/p/packages.xml
type allPackages struct {
	XMLName xml.Name `xml:"a"`
	generator.RESTNamespace
	Channel  string   `xml:"c"`
	Packages []string `xml:"p"`
}

// rest/p/<name>/info.xml
type packageInfo struct {
	XMLName xml.Name `xml:"p"`
	generator.RESTNamespace
	packageFields
}

type packageFields struct {
	Name        string         `xml:"n"`
	Channel     string         `xml:"c"`
	Category    generator.Link `xml:"ca"`
	License     string         `xml:"l"`
	Summary     string         `xml:"s"`
	Description string         `xml:"d"`
	Releases    generator.Link `xml:"r"`
}

// rest/p/<name>/maintainers.xml and maintainers2.xml
type packageMaintainers struct {
	XMLName xml.Name `xml:"m"`
	generator.RESTNamespace
	Package     string              `xml:"p"`
	Channel     string              `xml:"c"`
	Maintainers []packageMaintainer `xml:"m"`
}

type packageMaintainer struct {
	Handle string `xml:"h"`
	Active string `xml:"a"`
	Role   string `xml:"r,omitempty"`
}

// rest/r/<name>/<version>.xml and v2.<version>.xml
type releaseInfo struct {
	XMLName xml.Name `xml:"r"`
	generator.RESTNamespace
	Package     generator.Link `xml:"p"`
	Channel     string         `xml:"c"`
	Version     string         `xml:"v"`
	APIVersion  *string        `xml:"a"`
	MinPHP      *string        `xml:"mp"`
	Stability   string         `xml:"st"`
	License     string         `xml:"l"`
	Maintainer  string         `xml:"m"`
	Summary     string         `xml:"s"`
	Description string         `xml:"d"`
	Date        string         `xml:"da"`
	Notes       string         `xml:"n"`
	Size        int64          `xml:"f"`
	Get         string         `xml:"g"`
	PackageXML  generator.Link `xml:"x"`
}

// rest/r/<name>/allreleases.xml and allreleases2.xml
type allReleases struct {
	XMLName xml.Name `xml:"a"`
	generator.RESTNamespace
	Package  string         `xml:"p"`
	Channel  string         `xml:"c"`
	Releases []releaseEntry `xml:"r"`
}

type releaseEntry struct {
	Version   string  `xml:"v"`
	Stability string  `xml:"s"`
	MinPHP    *string `xml:"m"`
}

// rest/c/categories.xml
type allCategories struct {
	XMLName xml.Name `xml:"a"`
	generator.RESTNamespace
	Channel  string         `xml:"ch"`
	Category generator.Link `xml:"c"`
}

// rest/c/<category>/info.xml
type categoryInfo struct {
	XMLName xml.Name `xml:"c"`
	generator.RESTNamespace
	Name        string `xml:"n"`
	Channel     string `xml:"c"`
	Alias       string `xml:"a"`
	Description string `xml:"d"`
}

// rest/c/<category>/packages.xml
type categoryPackages struct {
	XMLName xml.Name `xml:"l"`
	generator.RESTNamespace
	Packages []generator.Link `xml:"p"`
}

// rest/c/<category>/packagesinfo.xml
type categoryPackagesInfo struct {
	XMLName xml.Name `xml:"f"`
	generator.RESTNamespace
	Packages []packageSummary `xml:"pi"`
}

type packageSummary struct {
	Package  packageFields  `xml:"p"`
	Releases []releaseEntry `xml:"a>r"`
	Deps     []releaseDeps  `xml:"deps"`
}

type releaseDeps struct {
	Version string `xml:"v"`
	Deps    string `xml:"d"`
}

// rest/m/<nickname>/info.xml
type maintainerInfo struct {
	XMLName xml.Name `xml:"m"`
	generator.RESTNamespace
	Handle string `xml:"h"`
	Name   string `xml:"n"`
	URL    string `xml:"u"`
}

// rest/m/allmaintainers.xml
type allMaintainers struct {
	XMLName xml.Name `xml:"m"`
	generator.RESTNamespace
	Maintainers []generator.Link `xml:"h"`
}
