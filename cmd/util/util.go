package util

import (
	"strings"
	"time"

	"github.com/gkv-io/gkv/lib/guard"
	"github.com/gkv-io/gkv/lib/lockpol"
	"github.com/gkv-io/gkv/lib/resilient"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupStoreFlags adds the container configuration flags to a command
func SetupStoreFlags(cmd *cobra.Command) {
	key := "file"
	cmd.PersistentFlags().String(key, "gkv.db", WrapString("Path of the container file. Loaded before and saved after every mutating command"))

	key = "memory-limit"
	cmd.PersistentFlags().Int(key, 0, WrapString("Memory ceiling for the container in MB. Least recently used entries are evicted when reached, 0 means unbounded"))

	key = "lock-mode"
	cmd.PersistentFlags().String(key, "shared", WrapString("Lock policy for the container (shared, exclusive, none)"))

	key = "eviction-batch"
	cmd.PersistentFlags().Int(key, 10, WrapString("How many eviction candidates to try per round when making room"))

	key = "fragmentation-threshold"
	cmd.PersistentFlags().Float64(key, 0.2, WrapString("Freed/(allocated+freed) ratio above which a compaction pass runs"))

	key = "timeout"
	cmd.PersistentFlags().Int(key, 30, WrapString("Per-attempt timeout for file operations in seconds"))

	key = "retries"
	cmd.PersistentFlags().Int(key, 3, WrapString("How many times to retry transient file operation failures"))

	key = "retry-delay"
	cmd.PersistentFlags().Int(key, 1000, WrapString("Backoff unit in milliseconds, the n-th retry waits n times this long"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("gkv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetStoreConfig reads the container configuration from viper
func GetStoreConfig() guard.Config[string, []byte] {
	cfg := guard.DefaultStringConfig()

	cfg.LockMode = lockpol.Mode(viper.GetString("lock-mode"))
	cfg.MemoryLimit = uint64(viper.GetInt("memory-limit")) * 1024 * 1024
	cfg.EvictionBatch = viper.GetInt("eviction-batch")
	cfg.FragmentationThreshold = viper.GetFloat64("fragmentation-threshold")
	cfg.Resilience = resilient.Config{
		Timeout:      time.Duration(viper.GetInt("timeout")) * time.Second,
		MaxRetries:   viper.GetInt("retries"),
		InitialDelay: time.Duration(viper.GetInt("retry-delay")) * time.Millisecond,
	}

	return cfg
}

// GetStoreFile retrieves the configured container file path
func GetStoreFile() string {
	return viper.GetString("file")
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
