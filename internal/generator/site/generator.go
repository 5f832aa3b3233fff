package site

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/ralt/pirum/internal/catalog"
	"github.com/ralt/pirum/internal/generator"
	"github.com/ralt/pirum/internal/models"
	"github.com/ralt/pirum/internal/utils"
	"github.com/sirupsen/logrus"
)

const (
	IndexFilename      = "index.html"
	StylesheetFilename = "pirum.css"
	FeedFilename       = "feed.xml"
)

//go:embed assets
var assets embed.FS

var indexTemplate = template.Must(template.New("index.html.tmpl").
	Funcs(template.FuncMap{"join": strings.Join}).
	ParseFS(assets, "assets/index.html.tmpl"))

// Generator implements the generator.Generator interface for the browsable pages
type Generator struct{}

// NewGenerator creates a new site generator
func NewGenerator() generator.Generator {
	return &Generator{}
}

// Name implements generator.Generator
func (g *Generator) Name() string {
	return "site"
}

// Generate writes index.html, pirum.css and feed.xml under outDir
func (g *Generator) Generate(ctx context.Context, cat *catalog.Catalog, outDir string) error {
	logrus.Info("Generating index, stylesheet and feed...")

	index, err := renderIndex(cat)
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", IndexFilename, err)
	}
	if err := utils.WriteFile(filepath.Join(outDir, IndexFilename), index, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", IndexFilename, err)
	}

	css, err := assets.ReadFile("assets/" + StylesheetFilename)
	if err != nil {
		return err
	}
	if err := utils.WriteFile(filepath.Join(outDir, StylesheetFilename), css, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", StylesheetFilename, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	feed, err := renderFeed(cat)
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", FeedFilename, err)
	}
	if err := utils.WriteFile(filepath.Join(outDir, FeedFilename), feed, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", FeedFilename, err)
	}

	return nil
}

type indexPage struct {
	Channel  *models.Channel
	Alias    string
	Packages []indexPackage
}

type indexPackage struct {
	Name         string
	Summary      string
	Description  string
	License      string
	Installer    string
	Groups       []installGroup
	Dependencies []string
	Maintainers  []models.Maintainer
	Releases     []indexRelease
}

type installGroup struct {
	Command string
	Hint    string
}

type indexRelease struct {
	Version   string
	Stability models.Stability
	URL       string
}

func renderIndex(cat *catalog.Catalog) ([]byte, error) {
	page := indexPage{
		Channel: cat.Channel,
		Alias:   cat.Channel.SuggestedAlias(),
	}

	for _, pkg := range cat.Packages {
		installer := "pear"
		if pkg.Extension != "" {
			installer = "pecl"
		}

		p := indexPackage{
			Name:        pkg.Name,
			Summary:     pkg.Summary,
			Description: pkg.Description,
			License:     pkg.License,
			Installer:   installer,
			Maintainers: pkg.CurrentMaintainers,
		}

		for _, grp := range pkg.Dependencies.Get("group").List() {
			attribs := grp.Get("attribs")
			p.Groups = append(p.Groups, installGroup{
				Command: fmt.Sprintf("%s install %s/%s#%s", installer, page.Alias, pkg.Name, attribs.Get("name").String()),
				Hint:    attribs.Get("hint").String(),
			})
		}

		for _, dep := range pkg.Dependencies.Get("required").Get("package").List() {
			p.Dependencies = append(p.Dependencies, dep.Get("channel").String()+"/"+dep.Get("name").String())
		}

		for _, r := range pkg.Releases {
			p.Releases = append(p.Releases, indexRelease{
				Version:   r.Version,
				Stability: r.Descriptor.Stability,
				URL:       cat.Channel.URL + "/get/" + archiveName(r.Descriptor),
			})
		}

		page.Packages = append(page.Packages, p)
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
