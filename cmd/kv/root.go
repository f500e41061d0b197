package kv

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/gkv-io/gkv/cmd/util"
	"github.com/gkv-io/gkv/lib/guard"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	store     *guard.Map[string, []byte]
	storeFile string

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:               "kv",
		Short:             "Operate on a file-backed guarded container",
		PersistentPreRunE: setupStore,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add container configuration flags to the KV command
	util.SetupStoreFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(atCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(hasCmd)
	KeyValueCommands.AddCommand(keysCmd)
	KeyValueCommands.AddCommand(statsCmd)
	KeyValueCommands.AddCommand(clearCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupStore creates the guarded container and loads it from the
// configured file if one exists
func setupStore(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	util.InitLoggers(viper.GetString("log-level"))

	store = guard.NewMap(util.GetStoreConfig())
	storeFile = util.GetStoreFile()

	f, err := os.Open(storeFile)
	if errors.Is(err, fs.ErrNotExist) {
		// fresh container, first mutation creates the file
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	return store.Load(cmd.Context(), f)
}

// saveStore writes the container to a temporary file and renames it over
// the configured path, so a failed save never corrupts the previous state
func saveStore(ctx context.Context) error {
	tmp := storeFile + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if err := store.Save(ctx, f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, storeFile)
}
