package catalog

import (
	"github.com/ralt/pirum/internal/models"
)

// DefaultCategory is the single category every package belongs to
const DefaultCategory = "Default"

// Catalog is the aggregated, render-ready view of a channel
type Catalog struct {
	Channel  *models.Channel
	Packages []*Package // sorted by name

	// Maintainers is the global directory, sorted by nickname
	Maintainers []models.Maintainer
}

// Package groups every release of one package name
type Package struct {
	Name string

	// Taken from the latest release
	License      string
	LicenseURI   string
	Summary      string
	Description  string
	Extension    string
	Dependencies *models.Node

	// Releases are sorted by descending version
	Releases []*models.Release
	Latest   *models.Release
	Pointers map[models.Stability]*models.Release

	// Maintainers merges every release, the highest version winning per nickname
	Maintainers []models.Maintainer
	// CurrentMaintainers are the maintainers of the latest release
	CurrentMaintainers []models.Maintainer
}

// LowerName is the name used in REST paths
func (p *Package) LowerName() string {
	return models.PathName(p.Name)
}

// Pointer returns the newest release of the given stability, or nil
func (p *Package) Pointer(s models.Stability) *models.Release {
	return p.Pointers[s]
}

// Package returns the package with the given name, or nil
func (c *Catalog) Package(name string) *Package {
	for _, p := range c.Packages {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Releases returns every release of the channel, packages in name order
func (c *Catalog) Releases() []*models.Release {
	var all []*models.Release
	for _, p := range c.Packages {
		all = append(all, p.Releases...)
	}
	return all
}
