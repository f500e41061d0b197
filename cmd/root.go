package cmd

import (
	"fmt"
	"os"

	"github.com/gkv-io/gkv/cmd/kv"
	"github.com/gkv-io/gkv/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "gkv",
		Short: "guarded key-value container",
		Long: fmt.Sprintf(`gKV (v%s)

An insertion-order-preserving key-value container with pluggable locking,
bounded-memory accounting with LRU eviction and resilient checksummed
persistence.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of gKV",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gKV v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "log-level"
	RootCmd.PersistentFlags().String(key, "info", util.WrapString("log level to use (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
