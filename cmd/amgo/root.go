package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// settings holds the resolved configuration of one invocation.
type settings struct {
	Threads   int
	Tasks     int
	Producers int
	Awaitable bool
	Timeout   int64 // milliseconds
	LogLevel  string
}

func rootCommand() *cobra.Command {
	v := viper.New()
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "amgo",
		Short:         "Handle registry and task pool boundary",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().String("log-level", "warning", "log level: quiet, error, warning, info, debug, trace")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return fmt.Errorf("error binding flags: %w", err)
		}
		if cfgFile == "" {
			return nil
		}
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
		return nil
	}

	rootCmd.AddCommand(
		stressCommand(v),
		versionCommand(),
	)
	return rootCmd
}

// load resolves settings from flags, the config file and defaults, in that
// order of precedence.
func load(v *viper.Viper) settings {
	return settings{
		Threads:   v.GetInt("threads"),
		Tasks:     v.GetInt("tasks"),
		Producers: v.GetInt("producers"),
		Awaitable: v.GetBool("awaitable"),
		Timeout:   v.GetInt64("timeout"),
		LogLevel:  v.GetString("log-level"),
	}
}
