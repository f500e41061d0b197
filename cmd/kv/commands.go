package kv

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]
			if err := store.Insert(key, []byte(value)); err != nil {
				return err
			}
			if err := saveStore(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if resp, ok, err := store.Find(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%v, resp=%s\n", key, ok, resp)
			}
			return nil
		},
	}
	atCmd = &cobra.Command{
		Use:   "at [key]",
		Short: "Reads the value for a key, failing when it is absent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if resp, err := store.At(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, resp=%s\n", key, resp)
			}
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if _, removed, err := store.Erase(key); err != nil {
				return err
			} else if !removed {
				fmt.Println("key not found")
				return nil
			}
			if err := saveStore(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if found, err := store.Has(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%t\n", key, found)
			}
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Lists all keys in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := store.Keys()
			if err != nil {
				return err
			}
			for _, key := range keys {
				fmt.Println(key)
			}
			return nil
		},
	}
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Prints container and memory ledger statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := store.Stats()
			if err != nil {
				return err
			}
			fmt.Printf("size:                %d\n", stats.Size)
			fmt.Printf("bucket count:        %d\n", stats.BucketCount)
			fmt.Printf("load factor:         %.2f\n", stats.LoadFactor)
			fmt.Printf("memory used:         %d B\n", stats.MemoryUsed)
			if stats.MemoryLimit > 0 {
				fmt.Printf("memory limit:        %d B\n", stats.MemoryLimit)
			} else {
				fmt.Printf("memory limit:        unbounded\n")
			}
			fmt.Printf("fragmentation:       %.2f\n", stats.FragmentationRatio)
			fmt.Printf("avg entry size:      %d B\n", stats.AverageEntrySize)
			fmt.Printf("median entry size:   %d B\n", stats.MedianEntrySize)
			fmt.Printf("keyspace quality:    %.2f\n", stats.KeyspaceQuality)
			return nil
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Removes all entries from the container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.Clear(); err != nil {
				return err
			}
			if err := saveStore(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("cleared successfully")
			return nil
		},
	}
)
