package models

import "strings"

// Stability is a release maturity classification
type Stability string

const (
	StabilityStable   Stability = "stable"
	StabilityBeta     Stability = "beta"
	StabilityAlpha    Stability = "alpha"
	StabilitySnapshot Stability = "snapshot"
	StabilityDevel    Stability = "devel"
)

// PointerStabilities lists the stabilities that get a pointer file, in render order
var PointerStabilities = []Stability{
	StabilityStable,
	StabilityBeta,
	StabilityAlpha,
	StabilitySnapshot,
	StabilityDevel,
}

// Maintainer role names
const (
	RoleLead      = "lead"
	RoleDeveloper = "developer"
)

// Maintainer is a person listed in a package.xml
type Maintainer struct {
	Nickname string
	Name     string
	Email    string
	URL      string
	Role     string
	Active   bool
}

// Descriptor represents the metadata of one package release
type Descriptor struct {
	// Core metadata
	Name         string
	Version      string
	APIVersion   string
	Stability    Stability
	APIStability Stability
	License      string
	LicenseURI   string
	Summary      string
	Description  string
	Date         string // YYYY-MM-DD HH:MM:SS
	Channel      string
	MinPHP       string
	Notes        string
	Extension    string // providesextension, empty for plain PHP packages
	Maintainers  []Maintainer
	Dependencies *Node

	// File information
	Filename string
	Size     int64

	// Raw package.xml, republished as package.<version>.xml
	PackageXML []byte
}

// PathName returns the case-normalized package name used in REST paths
func PathName(name string) string {
	return strings.ToLower(name)
}

// LowerName is the name used in REST paths
func (d *Descriptor) LowerName() string {
	return PathName(d.Name)
}

// ArchiveBase returns the archive name without extension, e.g. Foo-1.0.0
func (d *Descriptor) ArchiveBase() string {
	return d.Name + "-" + d.Version
}

// Release is one versioned publication of a package
type Release struct {
	Name       string
	Version    string
	Descriptor *Descriptor
}

// NewRelease wraps a descriptor into a Release keyed by its name and version
func NewRelease(d *Descriptor) *Release {
	return &Release{
		Name:       d.Name,
		Version:    d.Version,
		Descriptor: d,
	}
}
