package cli

import (
	"github.com/ralt/pirum/internal/builder"
	"github.com/ralt/pirum/internal/publish"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewBuildCmd creates the build command
func NewBuildCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "build <dir>",
		Short: "Build the channel",
		Long: `Scans <dir>/get for archives and publishes the channel files in <dir>.
Nothing is published when any archive is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := builder.New(buildConfig(v, args[0])).Build(cmd.Context())
			if err != nil {
				return err
			}
			report(res)
			return nil
		},
	}
}

// NewAddCmd creates the add command
func NewAddCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "add <dir> <archive>",
		Short: "Add an archive to the channel and rebuild it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := builder.New(buildConfig(v, args[0])).Add(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			report(res)
			return nil
		},
	}
}

// NewRemoveCmd creates the remove command
func NewRemoveCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <dir> <archive>",
		Short: "Remove an archive from the channel and rebuild it",
		Long: `Deletes <dir>/get/<archive> and its uncompressed tar copy, then
rebuilds the channel.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := builder.New(buildConfig(v, args[0])).Remove(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			report(res)
			return nil
		},
	}
}

func report(res *publish.Result) {
	if !res.Flipped {
		logrus.Info("Channel is up to date")
		return
	}
	logrus.Infof("Channel published: %d added, %d changed, %d removed, %d unchanged",
		len(res.Added), len(res.Changed), len(res.Removed), len(res.Unchanged))
	for _, path := range res.Removed {
		logrus.Debugf("Removed %s", path)
	}
}
