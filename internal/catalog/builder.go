package catalog

import (
	"sort"

	"github.com/ralt/pirum/internal/models"
	"github.com/ralt/pirum/internal/utils"
	"github.com/ralt/pirum/internal/version"
	"github.com/sirupsen/logrus"
)

// Builder accumulates releases and aggregates them into a Catalog
type Builder struct {
	releases map[string]*models.Release
}

// NewBuilder creates an empty catalog builder
func NewBuilder() *Builder {
	return &Builder{
		releases: make(map[string]*models.Release),
	}
}

// Add records a release. Adding the same name and version again replaces
// the earlier record.
func (b *Builder) Add(r *models.Release) {
	key := utils.ReleaseIdentity(r.Name, r.Version)
	if _, ok := b.releases[key]; ok {
		logrus.Debugf("Replacing release %s %s", r.Name, r.Version)
	}
	b.releases[key] = r
}

// Build aggregates the recorded releases for channel. It fails on the first
// release published for another channel, and when two package names only
// differ by case.
func (b *Builder) Build(channel *models.Channel) (*Catalog, error) {
	byName := make(map[string][]*models.Release)
	for _, r := range b.releases {
		byName[r.Name] = append(byName[r.Name], r)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	lower := make(map[string]string)
	for _, name := range names {
		path := models.PathName(name)
		if other, ok := lower[path]; ok {
			return nil, models.NewError(models.ErrConsistency, name,
				"package %q and package %q share the path %q", other, name, path)
		}
		lower[path] = name
	}

	cat := &Catalog{Channel: channel}
	for _, name := range names {
		releases := byName[name]
		sort.Slice(releases, func(i, j int) bool {
			if c := version.Compare(releases[i].Version, releases[j].Version); c != 0 {
				return c > 0
			}
			return releases[i].Version > releases[j].Version
		})

		for _, r := range releases {
			if r.Descriptor.Channel != channel.Name {
				return nil, models.NewError(models.ErrConsistency, name,
					"package %q channel (%s) is not %s", name, r.Descriptor.Channel, channel.Name)
			}
		}

		cat.Packages = append(cat.Packages, newPackage(name, releases))
	}

	cat.Maintainers = mergeDirectory(cat.Packages)

	logrus.Debugf("Catalog has %d packages and %d maintainers", len(cat.Packages), len(cat.Maintainers))
	return cat, nil
}

// newPackage builds a package from releases sorted by descending version
func newPackage(name string, releases []*models.Release) *Package {
	latest := releases[0]
	d := latest.Descriptor

	p := &Package{
		Name:               name,
		License:            d.License,
		LicenseURI:         d.LicenseURI,
		Summary:            d.Summary,
		Description:        d.Description,
		Extension:          d.Extension,
		Dependencies:       d.Dependencies,
		Releases:           releases,
		Latest:             latest,
		Pointers:           make(map[models.Stability]*models.Release),
		CurrentMaintainers: d.Maintainers,
	}

	var lists [][]models.Maintainer
	for _, r := range releases {
		if _, ok := p.Pointers[r.Descriptor.Stability]; !ok {
			p.Pointers[r.Descriptor.Stability] = r
		}
		lists = append(lists, r.Descriptor.Maintainers)
	}
	p.Maintainers = merge(lists...)

	return p
}

// merge concatenates maintainer lists keeping the first record per nickname
func merge(lists ...[]models.Maintainer) []models.Maintainer {
	var merged []models.Maintainer
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, m := range list {
			if seen[m.Nickname] {
				continue
			}
			seen[m.Nickname] = true
			merged = append(merged, m)
		}
	}
	return merged
}

// mergeDirectory builds the global maintainer directory sorted by nickname.
// Packages are visited in name order and a later package's record replaces
// an earlier one for the same nickname.
func mergeDirectory(packages []*Package) []models.Maintainer {
	byNick := make(map[string]models.Maintainer)
	for _, p := range packages {
		for _, m := range p.Maintainers {
			byNick[m.Nickname] = m
		}
	}

	all := make([]models.Maintainer, 0, len(byNick))
	for _, m := range byNick {
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Nickname < all[j].Nickname
	})
	return all
}
