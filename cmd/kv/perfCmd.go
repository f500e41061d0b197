package kv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gkv-io/gkv/cmd/util"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for the guarded container",
		Long:    "",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix   = "__test"
	perfValueSizeKB = 1
	perfNumThreads  = 10
	perfKeySpread   = 100
	perfOps         = 100000
	perfSkip        = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of goroutines to use for the benchmark"))
	key = "value-size"
	perfTestCmd.Flags().Int(key, 1, util.WrapString("Size of the values written by the benchmark (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "ops"
	perfTestCmd.Flags().Int(key, 100000, util.WrapString("How many operations to run per test"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfValueSizeKB = viper.GetInt("value-size")
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfOps = viper.GetInt("ops")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for the guarded container")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Printf("Keys: %d\n", perfKeySpread)
	fmt.Printf("Ops per test: %d\n", perfOps)
	fmt.Printf("Value size: %d KB\n", perfValueSizeKB)
	fmt.Println()

	fmt.Println("starting tests...")

	registry := gometrics.NewRegistry()
	value := make([]byte, perfValueSizeKB*1024)

	runBenchmark("set", registry, func(key string, _ int) error {
		return store.Insert(key, value)
	})

	// seed keys for the read-heavy tests
	seedKeys("get")
	runBenchmark("get", registry, func(key string, _ int) error {
		_, _, err := store.Find(key)
		return err
	})

	seedKeys("has")
	runBenchmark("has", registry, func(key string, _ int) error {
		_, err := store.Has(key)
		return err
	})

	runBenchmark("has-not", registry, func(_ string, i int) error {
		_, err := store.Has(fmt.Sprintf("%s/has-not-%d", perfKeyPrefix, i%perfKeySpread))
		return err
	})

	seedKeys("delete")
	runBenchmark("delete", registry, func(key string, _ int) error {
		_, _, err := store.Erase(key)
		return err
	})

	seedKeys("mixed")
	runBenchmark("mixed", registry, func(key string, i int) error {
		switch i % 4 {
		case 0:
			return store.Insert(key, value)
		case 1:
			_, _, err := store.Find(key)
			return err
		case 2:
			_, _, err := store.Erase(key)
			return err
		default:
			_, err := store.Has(key)
			return err
		}
	})

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, registry); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// perfKey returns a benchmark key by index (with wraparound)
func perfKey(test string, i int) string {
	return fmt.Sprintf("%s-%s-%d", perfKeyPrefix, test, i%perfKeySpread)
}

// seedKeys inserts the full key spread for a test so reads have hits
func seedKeys(test string) {
	value := make([]byte, perfValueSizeKB*1024)
	for i := 0; i < perfKeySpread; i++ {
		if err := store.Insert(perfKey(test, i), value); err != nil {
			fmt.Printf("(%s) - error seeding key: %v\n", test, err)
		}
	}
}

// runBenchmark spreads perfOps calls of op over the worker goroutines,
// timing every call into a registry timer, and prints the result
func runBenchmark(test string, registry gometrics.Registry, op func(key string, i int) error) {
	timer := gometrics.GetOrRegisterTimer(test, registry)

	if shouldSkip(test) {
		printResult(test, timer)
		return
	}

	opsPerThread := perfOps / perfNumThreads

	var wg sync.WaitGroup
	for t := 0; t < perfNumThreads; t++ {
		wg.Add(1)
		go func(t int) {
			defer wg.Done()
			for i := 0; i < opsPerThread; i++ {
				n := t*opsPerThread + i
				key := perfKey(test, n)

				start := time.Now()
				err := op(key, n)
				timer.UpdateSince(start)

				if err != nil {
					fmt.Printf("(%s) - operation error: %v\n", test, err)
				}
			}
		}(t)
	}
	wg.Wait()

	printResult(test, timer)
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, timer gometrics.Timer) {
	if timer.Count() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	mean := timer.Mean()
	p99 := time.Duration(int64(timer.Percentile(0.99)))
	opsPerSec := 1e9 / mean

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (p99 %s)\t%.0f ops/sec\n", test, mean, p99, opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, registry gometrics.Registry) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "Count", "MeanNsPerOp", "P95NsPerOp", "P99NsPerOp", "OpsPerSec", "Skipped",
		"Threads", "ValueSizeKB", "KeysCount",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	var writeErr error
	registry.Each(func(test string, metric interface{}) {
		timer, ok := metric.(gometrics.Timer)
		if !ok || writeErr != nil {
			return
		}

		var meanNs, opsPerSec float64
		skipped := "true"
		if timer.Count() > 0 {
			skipped = "false"
			meanNs = timer.Mean()
			opsPerSec = 1e9 / meanNs
		}

		row := []string{
			test,
			strconv.FormatInt(timer.Count(), 10),
			fmt.Sprintf("%.0f", meanNs),
			fmt.Sprintf("%.0f", timer.Percentile(0.95)),
			fmt.Sprintf("%.0f", timer.Percentile(0.99)),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			writeErr = fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	})

	return writeErr
}
