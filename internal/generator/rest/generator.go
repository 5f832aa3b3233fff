package rest

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ralt/pirum/internal/catalog"
	"github.com/ralt/pirum/internal/descriptor"
	"github.com/ralt/pirum/internal/generator"
	"github.com/ralt/pirum/internal/models"
	"github.com/ralt/pirum/internal/utils"
	"github.com/sirupsen/logrus"
)

// Generator implements the generator.Generator interface for the REST tree
type Generator struct{}

// NewGenerator creates a new REST generator
func NewGenerator() generator.Generator {
	return &Generator{}
}

// Name implements generator.Generator
func (g *Generator) Name() string {
	return "rest"
}

// Generate writes the rest/ tree under outDir
func (g *Generator) Generate(ctx context.Context, cat *catalog.Catalog, outDir string) error {
	logrus.Info("Generating REST tree...")

	dir := filepath.Join(outDir, "rest")

	if err := g.generatePackages(ctx, cat, filepath.Join(dir, "p")); err != nil {
		return fmt.Errorf("failed to generate packages: %w", err)
	}
	if err := g.generateReleases(ctx, cat, filepath.Join(dir, "r")); err != nil {
		return fmt.Errorf("failed to generate releases: %w", err)
	}
	if err := g.generateCategories(cat, filepath.Join(dir, "c")); err != nil {
		return fmt.Errorf("failed to generate categories: %w", err)
	}
	if err := g.generateMaintainers(cat, filepath.Join(dir, "m")); err != nil {
		return fmt.Errorf("failed to generate maintainers: %w", err)
	}

	return nil
}

func (g *Generator) generatePackages(ctx context.Context, cat *catalog.Catalog, dir string) error {
	all := allPackages{
		RESTNamespace: generator.NewRESTNamespace("rest.allpackages"),
		Channel:       cat.Channel.Name,
	}

	for _, pkg := range cat.Packages {
		if err := ctx.Err(); err != nil {
			return err
		}
		logrus.Debugf("Building package %s", pkg.Name)

		all.Packages = append(all.Packages, pkg.Name)
		pkgDir := filepath.Join(dir, pkg.LowerName())

		info := packageInfo{
			RESTNamespace: generator.NewRESTNamespace("rest.package"),
			packageFields: newPackageFields(cat, pkg),
		}
		if err := generator.WriteXML(filepath.Join(pkgDir, "info.xml"), info); err != nil {
			return err
		}

		if err := generator.WriteXML(filepath.Join(pkgDir, "maintainers.xml"),
			newPackageMaintainers(cat, pkg, "rest.packagemaintainers", false)); err != nil {
			return err
		}
		if err := generator.WriteXML(filepath.Join(pkgDir, "maintainers2.xml"),
			newPackageMaintainers(cat, pkg, "rest.packagemaintainers2", true)); err != nil {
			return err
		}
	}

	return generator.WriteXML(filepath.Join(dir, "packages.xml"), all)
}

func (g *Generator) generateReleases(ctx context.Context, cat *catalog.Catalog, dir string) error {
	for _, pkg := range cat.Packages {
		if err := ctx.Err(); err != nil {
			return err
		}
		logrus.Debugf("Building releases for %s", pkg.Name)

		pkgDir := filepath.Join(dir, pkg.LowerName())

		all := allReleases{
			RESTNamespace: generator.NewRESTNamespace("rest.allreleases"),
			Package:       pkg.Name,
			Channel:       cat.Channel.Name,
		}
		all2 := allReleases{
			RESTNamespace: generator.NewRESTNamespace("rest.allreleases2"),
			Package:       pkg.Name,
			Channel:       cat.Channel.Name,
		}

		for _, r := range pkg.Releases {
			d := r.Descriptor
			all.Releases = append(all.Releases, releaseEntry{Version: d.Version, Stability: string(d.Stability)})
			all2.Releases = append(all2.Releases, releaseEntry{Version: d.Version, Stability: string(d.Stability), MinPHP: stringPtr(d.MinPHP)})

			if err := g.generateRelease(cat, pkg, r, pkgDir); err != nil {
				return fmt.Errorf("release %s %s: %w", pkg.Name, r.Version, err)
			}
		}

		if err := generator.WriteXML(filepath.Join(pkgDir, "allreleases.xml"), all); err != nil {
			return err
		}
		if err := generator.WriteXML(filepath.Join(pkgDir, "allreleases2.xml"), all2); err != nil {
			return err
		}

		if err := writePointer(filepath.Join(pkgDir, "latest.txt"), pkg.Latest); err != nil {
			return err
		}
		for _, s := range models.PointerStabilities {
			if r := pkg.Pointer(s); r != nil {
				if err := writePointer(filepath.Join(pkgDir, string(s)+".txt"), r); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func (g *Generator) generateRelease(cat *catalog.Catalog, pkg *catalog.Package, r *models.Release, dir string) error {
	d := r.Descriptor

	v1 := newReleaseInfo(cat, pkg, d, "rest.release")
	if err := generator.WriteXML(filepath.Join(dir, d.Version+".xml"), v1); err != nil {
		return err
	}

	v2 := newReleaseInfo(cat, pkg, d, "rest.release2")
	v2.APIVersion = stringPtr(d.APIVersion)
	v2.MinPHP = stringPtr(d.MinPHP)
	if err := generator.WriteXML(filepath.Join(dir, "v2."+d.Version+".xml"), v2); err != nil {
		return err
	}

	deps := []byte(descriptor.SerializePHP(d.Dependencies))
	if err := utils.WriteFile(filepath.Join(dir, "deps."+d.Version+".txt"), deps, 0644); err != nil {
		return err
	}

	return utils.WriteFile(filepath.Join(dir, "package."+d.Version+".xml"), d.PackageXML, 0644)
}

func (g *Generator) generateCategories(cat *catalog.Catalog, dir string) error {
	categories := allCategories{
		RESTNamespace: generator.NewRESTNamespace("rest.allcategories"),
		Channel:       cat.Channel.Name,
		Category: generator.Link{
			Href:  "/rest/c/" + catalog.DefaultCategory + "/info.xml",
			Value: catalog.DefaultCategory,
		},
	}
	if err := generator.WriteXML(filepath.Join(dir, "categories.xml"), categories); err != nil {
		return err
	}

	catDir := filepath.Join(dir, catalog.DefaultCategory)
	info := categoryInfo{
		RESTNamespace: generator.NewRESTNamespace("rest.category"),
		Name:          catalog.DefaultCategory,
		Channel:       cat.Channel.Name,
		Alias:         catalog.DefaultCategory,
		Description:   "Default category",
	}
	if err := generator.WriteXML(filepath.Join(catDir, "info.xml"), info); err != nil {
		return err
	}

	packages := categoryPackages{RESTNamespace: generator.NewRESTNamespace("rest.categorypackages")}
	packagesInfo := categoryPackagesInfo{RESTNamespace: generator.NewRESTNamespace("rest.categorypackageinfo")}

	for _, pkg := range cat.Packages {
		packages.Packages = append(packages.Packages, generator.Link{
			Href:  "/rest/p/" + pkg.LowerName(),
			Value: pkg.Name,
		})

		summary := packageSummary{Package: newPackageFields(cat, pkg)}
		for _, r := range pkg.Releases {
			d := r.Descriptor
			summary.Releases = append(summary.Releases, releaseEntry{Version: d.Version, Stability: string(d.Stability)})
			summary.Deps = append(summary.Deps, releaseDeps{Version: d.Version, Deps: descriptor.SerializePHP(d.Dependencies)})
		}
		packagesInfo.Packages = append(packagesInfo.Packages, summary)
	}

	if err := generator.WriteXML(filepath.Join(catDir, "packages.xml"), packages); err != nil {
		return err
	}
	return generator.WriteXML(filepath.Join(catDir, "packagesinfo.xml"), packagesInfo)
}

func (g *Generator) generateMaintainers(cat *catalog.Catalog, dir string) error {
	all := allMaintainers{RESTNamespace: generator.NewRESTNamespace("rest.allmaintainers")}

	for _, m := range cat.Maintainers {
		info := maintainerInfo{
			RESTNamespace: generator.NewRESTNamespace("rest.maintainer"),
			Handle:        m.Nickname,
			Name:          m.Name,
			URL:           m.URL,
		}
		if err := generator.WriteXML(filepath.Join(dir, m.Nickname, "info.xml"), info); err != nil {
			return err
		}

		all.Maintainers = append(all.Maintainers, generator.Link{
			Href:  "/rest/m/" + m.Nickname,
			Value: m.Nickname,
		})
	}

	return generator.WriteXML(filepath.Join(dir, "allmaintainers.xml"), all)
}

func newPackageFields(cat *catalog.Catalog, pkg *catalog.Package) packageFields {
	return packageFields{
		Name:    pkg.Name,
		Channel: cat.Channel.Name,
		Category: generator.Link{
			Href:  "/rest/c/" + catalog.DefaultCategory,
			Value: catalog.DefaultCategory,
		},
		License:     pkg.License,
		Summary:     pkg.Summary,
		Description: pkg.Description,
		Releases:    generator.Link{Href: "/rest/r/" + pkg.LowerName()},
	}
}

func newPackageMaintainers(cat *catalog.Catalog, pkg *catalog.Package, doc string, withRole bool) packageMaintainers {
	pm := packageMaintainers{
		RESTNamespace: generator.NewRESTNamespace(doc),
		Package:       pkg.Name,
		Channel:       cat.Channel.Name,
	}
	for _, m := range pkg.CurrentMaintainers {
		entry := packageMaintainer{Handle: m.Nickname, Active: yesNo(m.Active)}
		if withRole {
			entry.Role = m.Role
		}
		pm.Maintainers = append(pm.Maintainers, entry)
	}
	return pm
}

func newReleaseInfo(cat *catalog.Catalog, pkg *catalog.Package, d *models.Descriptor, doc string) *releaseInfo {
	var maintainer string
	if len(d.Maintainers) > 0 {
		maintainer = d.Maintainers[0].Nickname
	}

	return &releaseInfo{
		RESTNamespace: generator.NewRESTNamespace(doc),
		Package:       generator.Link{Href: "/rest/p/" + pkg.LowerName(), Value: pkg.Name},
		Channel:       cat.Channel.Name,
		Version:       d.Version,
		Stability:     string(d.Stability),
		License:       pkg.License,
		Maintainer:    maintainer,
		Summary:       pkg.Summary,
		Description:   pkg.Description,
		Date:          d.Date,
		Notes:         d.Notes,
		Size:          d.Size,
		Get:           DownloadURL(cat.Channel, d),
		PackageXML:    generator.Link{Href: "package." + d.Version + ".xml"},
	}
}

// DownloadURL is the archive location without extension, as PEAR clients
// append the one they support
func DownloadURL(c *models.Channel, d *models.Descriptor) string {
	return c.URL + "/get/" + d.ArchiveBase()
}

func writePointer(path string, r *models.Release) error {
	return utils.WriteFile(path, []byte(r.Version), 0644)
}

func stringPtr(s string) *string {
	return &s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
