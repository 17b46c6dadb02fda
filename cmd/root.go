// File: cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kalyptra/ariadne/internal/config"
	"github.com/kalyptra/ariadne/internal/observability"
)

// NewRootCommand builds the root command and all subcommands. A fresh
// instance per invocation keeps flag state from leaking between runs.
func NewRootCommand() *cobra.Command {
	var cfgFile string
	var appCfg *config.Config

	rootCmd := &cobra.Command{
		Use:     "ariadne",
		Short:   "Ariadne resolves natural-language descriptions to live page elements.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadViper(cfgFile)
			if err != nil {
				return err
			}
			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "ariadne"})
				return err
			}
			appCfg = cfg
			observability.InitializeLogger(cfg.Logger())
			observability.GetLogger().Debug("Starting ariadne.", zap.String("version", Version))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ~/.ariadne/ariadne.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	cfgFn := func() *config.Config { return appCfg }
	rootCmd.AddCommand(
		newSnapshotCommand(cfgFn),
		newLookCommand(cfgFn),
		newWaitCommand(cfgFn),
		newActCommand(cfgFn),
		newVersionCommand(),
	)
	return rootCmd
}

// Execute runs the CLI under the given context.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		observability.GetLogger().Error("Command execution failed.", zap.Error(err))
		return err
	}
	return nil
}

// loadViper reads the config file and environment into a fresh viper.
func loadViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if dir, err := config.DefaultConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.SetConfigName("ariadne")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("ARIADNE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults and env vars.
	}
	return v, nil
}
