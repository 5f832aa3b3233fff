package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ralt/pirum/internal/archive"
	"github.com/ralt/pirum/internal/catalog"
	"github.com/ralt/pirum/internal/channel"
	"github.com/ralt/pirum/internal/descriptor"
	"github.com/ralt/pirum/internal/generator"
	"github.com/ralt/pirum/internal/generator/channelxml"
	"github.com/ralt/pirum/internal/generator/rest"
	"github.com/ralt/pirum/internal/generator/site"
	"github.com/ralt/pirum/internal/models"
	"github.com/ralt/pirum/internal/publish"
	"github.com/ralt/pirum/internal/scanner"
	"github.com/ralt/pirum/internal/signer"
	"github.com/ralt/pirum/internal/utils"
	"github.com/sirupsen/logrus"
)

// GetDir is the directory of the root holding uploaded archives
const GetDir = "get"

// Builder turns the archives of a channel root into its published tree
type Builder struct {
	config   *models.BuildConfig
	scanner  scanner.Scanner
	archives *archive.Reader
}

// New creates a builder for config.Root
func New(config *models.BuildConfig) *Builder {
	return &Builder{
		config:   config,
		scanner:  scanner.NewFileSystemScanner(),
		archives: archive.NewReader(),
	}
}

func (b *Builder) getDir() string {
	return filepath.Join(b.config.Root, GetDir)
}

// Build renders the channel and publishes it. Nothing under the root
// changes unless every archive is valid.
func (b *Builder) Build(ctx context.Context) (*publish.Result, error) {
	return b.build(ctx, nil)
}

// build runs the pipeline. Releases in refresh are read from their archive
// even when a published package.xml exists.
func (b *Builder) build(ctx context.Context, refresh []scanner.Archive) (*publish.Result, error) {
	logrus.Infof("Building channel in %s", b.config.Root)

	ch, err := channel.Load(b.config.Root)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Channel %s", ch.Name)

	if err := utils.EnsureDir(b.getDir()); err != nil {
		return nil, models.WrapIO("", fmt.Errorf("failed to create %s: %w", GetDir, err))
	}

	cat, err := b.catalog(ctx, ch, refresh)
	if err != nil {
		return nil, err
	}

	s, err := b.signer()
	if err != nil {
		return nil, err
	}

	stage, err := os.MkdirTemp(b.config.ScratchDir, "pirum-build-")
	if err != nil {
		return nil, models.WrapIO("", fmt.Errorf("failed to create scratch directory: %w", err))
	}
	defer os.RemoveAll(stage)

	for _, gen := range generators(s) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logrus.Debugf("Running %s generator", gen.Name())
		if err := gen.Generate(ctx, cat, stage); err != nil {
			return nil, models.WrapIO("", fmt.Errorf("failed to generate %s: %w", gen.Name(), err))
		}
	}

	res, err := publish.NewPublisher(b.config.Root).Publish(ctx, stage)
	if err != nil {
		return nil, err
	}

	logrus.Info("Build completed successfully!")
	return res, nil
}

// catalog scans get/ and aggregates every archive
func (b *Builder) catalog(ctx context.Context, ch *models.Channel, refresh []scanner.Archive) (*catalog.Catalog, error) {
	found, err := b.scanner.Scan(ctx, b.getDir())
	if err != nil {
		return nil, err
	}

	loader := descriptor.NewLoader(b.archives, b.config.Root)
	for _, a := range refresh {
		loader.Refresh(a.Name, a.Version)
	}

	cb := catalog.NewBuilder()
	for _, a := range found {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		logrus.Debugf("Parsing package %s for %s", a.Version, a.Name)
		d, err := loader.Load(a)
		if err != nil {
			return nil, err
		}
		cb.Add(models.NewRelease(d))
	}

	return cb.Build(ch)
}

func (b *Builder) signer() (signer.Signer, error) {
	if b.config.GPGKeyPath == "" {
		return nil, nil
	}

	s, err := signer.NewGPGSigner(b.config.GPGKeyPath, b.config.GPGPassphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GPG signer: %w", err)
	}
	logrus.Info("GPG signer initialized")
	return s, nil
}

// generators lists the renderers of a channel, in run order
func generators(s signer.Signer) []generator.Generator {
	return []generator.Generator{
		rest.NewGenerator(),
		channelxml.NewGenerator(s),
		site.NewGenerator(),
	}
}
