package cli

import (
	"strings"

	"github.com/ralt/pirum/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "PIRUM"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "pirum",
		Short: "Build static PEAR channels",
		Long: `Pirum turns a directory of PEAR package archives into a static
channel that can be served by any web server.

The channel directory holds a pirum.xml descriptor and the archives under
get/. Every build renders channel.xml, the REST index, an HTML page and an
Atom feed, then publishes them atomically in the same directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(v, configFile); err != nil {
				return err
			}

			// Setup logging
			if v.GetBool("verbose") {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
			return nil
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&configFile, "config", "", "Settings file (yaml, toml or json)")
	flags.StringP("gpg-key", "k", "", "Path to GPG private key used to sign channel.xml")
	flags.StringP("gpg-passphrase", "p", "", "GPG key passphrase")
	flags.String("scratch-dir", "", "Parent directory of the scratch build tree")

	_ = v.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = v.BindPFlag("gpg_key", flags.Lookup("gpg-key"))
	_ = v.BindPFlag("gpg_passphrase", flags.Lookup("gpg-passphrase"))
	_ = v.BindPFlag("scratch_dir", flags.Lookup("scratch-dir"))

	// Add subcommands
	rootCmd.AddCommand(NewBuildCmd(v))
	rootCmd.AddCommand(NewAddCmd(v))
	rootCmd.AddCommand(NewRemoveCmd(v))

	return rootCmd
}

// initConfig layers environment variables and an optional settings file
// under the command line flags
func initConfig(v *viper.Viper, configFile string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		return nil
	}

	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return models.NewError(models.ErrConfig, "", "failed to read settings file %s: %v", configFile, err)
	}
	logrus.Debugf("Using settings file %s", v.ConfigFileUsed())
	return nil
}

// buildConfig assembles the build settings for a channel root
func buildConfig(v *viper.Viper, root string) *models.BuildConfig {
	return &models.BuildConfig{
		Root:          root,
		GPGKeyPath:    v.GetString("gpg_key"),
		GPGPassphrase: v.GetString("gpg_passphrase"),
		ScratchDir:    v.GetString("scratch_dir"),
	}
}
