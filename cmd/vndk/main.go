// Command vndk-tool classifies Android shared libraries across the
// system and vendor partitions into the VNDK categories (spec §1-§9).
// It is a thin wrapper: every subcommand below only calls into the
// internal/* packages, never reimplements their logic.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vndk/vndk-tool/internal/vlog"
)

var (
	cfgFile string
	debug   bool
	log     *vlog.Logger
)

func main() {
	root := &cobra.Command{
		Use:           "vndk-tool",
		Short:         "Classify Android shared libraries into VNDK categories",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = vlog.New(debug)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file loaded into viper (subcommand flags are not read from it)")
	root.PersistentFlags().BoolVarP(&debug, "debug", "v", false, "verbose diagnostic logging")
	cobra.OnInitialize(initConfig)

	root.AddCommand(
		newElfdumpCmd(),
		newCreateGenericRefCmd(),
		newVndkCmd(),
		newDepsCmd(),
		newDepsClosureCmd(),
		newSPHALCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// initConfig loads the optional --config file into viper and enables
// VNDK_* environment variables. Subcommands take their flag values from
// the command line only: values from the config file or the environment
// are not applied to them.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		_ = viper.ReadInConfig()
	}
	viper.SetEnvPrefix("VNDK")
	viper.AutomaticEnv()
}
