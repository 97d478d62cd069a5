package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/machovotrish/luma/internal/version"
	"github.com/machovotrish/luma/pkg/config"
	"github.com/machovotrish/luma/pkg/log"
)

var (
	cfgFile     string
	showVersion bool
)

var rootCmd = &cobra.Command{
	Use:   "luma",
	Short: "Chat front-end for a desktop automation agent",
	Long: `Luma is a chat interface for driving an automation agent. Describe a
task in plain language and watch the agent's progress stream back into the
conversation. Tasks run one at a time and can be stopped between steps.`,
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(version.GetVersionString())
			os.Exit(0)
		}
		cmd.Help()
	},
}

func Execute() {
	PrintLogo()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.luma.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "V", false, "Show version information")

	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding verbose flag: %v\n", err)
	}
}

func initConfig() {
	level := zerolog.InfoLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	log.InitLogger(os.Stderr, level, true)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		log.WithField("config_file", cfgFile).Debug("using specified config file")
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			log.WithError(err).Error("failed to get home directory")
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".luma")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.WithField("config_file", viper.ConfigFileUsed()).Info("loaded configuration file")
	} else {
		log.WithError(err).Debug("no config file found, using defaults")
	}
}

// loadAppConfig resolves the application configuration: an explicit config
// file if one was located by viper, defaults otherwise.
func loadAppConfig() (*config.Config, error) {
	if path := viper.ConfigFileUsed(); path != "" {
		return config.LoadConfig(path)
	}
	return config.NewDefaultConfig(), nil
}

// reinitLoggerForTUI redirects operator logs away from the terminal so they
// do not corrupt the alternate screen.
func reinitLoggerForTUI(cfg *config.Config) (io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if cfg.Logging.File == "" {
		log.InitLogger(io.Discard, level, false)
		return nil, nil
	}

	f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		log.InitLogger(io.Discard, level, false)
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	log.InitLogger(f, level, false)
	return f, nil
}
