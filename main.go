package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rit3sh-x/mongoschema/core/config"
	"github.com/rit3sh-x/mongoschema/core/constants"
	"github.com/rit3sh-x/mongoschema/core/logger"
)

var (
	configFile string
	envFile    string
	debug      bool

	cfg *config.Config
	log *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:           "mongoschema",
	Short:         "Design MongoDB schemas and generate Mongoose, Prisma and validator code",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configFile, envFile)
		if err != nil {
			return err
		}
		if debug {
			loaded.Debug = true
		}
		cfg = loaded

		log, err = logger.New(cfg.Debug)
		if err != nil {
			return err
		}
		log.Debugw("configuration loaded", "config", configFile, "env", envFile, "envLoaded", cfg.EnvLoaded, "schema", cfg.SchemaFile)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", constants.CONFIG_FILE, "Path to config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", constants.ENV_FILE, "Path to .env file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	setupCommands()
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", constants.RED, err, constants.RESET)
		os.Exit(1)
	}
}
