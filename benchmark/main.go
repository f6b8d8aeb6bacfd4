// Package main provides a performance benchmarking tool for the SAFE scoring engine.
// It generates random assessment states over the embedded catalog and measures
// batch evaluation across worker counts, running each case multiple times,
// treating the first run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Usage: go run ./benchmark [assessments]
//
//	assessments: Number of generated assessments per batch (default 2000)
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/safe/core"
	"github.com/huangsam/safe/internal/catalog"
	"github.com/huangsam/safe/schema"
	"github.com/montanaflynn/stats"
)

// BenchmarkResult holds the result of one benchmark case.
type BenchmarkResult struct {
	Fill     string
	Workers  int
	ColdTime string
	WarmTime string
	P90Time  string

	warmAvg float64 // seconds; 0 when no warm run succeeded
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Assessments int
	Runs        int
	Workers     []int
	FillRatios  []float64 // share of metrics rated in each generated state
	Seed        uint64
}

func main() {
	config := BenchmarkConfig{
		Assessments: 2000,
		Runs:        5,
		Workers:     []int{1, 2, 4, 8, 16},
		FillRatios:  []float64{0.1, 0.5, 1.0},
		Seed:        42,
	}
	if len(os.Args) == 2 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n <= 0 {
			fmt.Printf("Usage: %s [assessments]\n", os.Args[0])
			os.Exit(1)
		}
		config.Assessments = n
	}

	tax, err := catalog.Default()
	if err != nil {
		fmt.Printf("Failed to load catalog: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config, tax)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// generateInputs builds n random states where roughly fill of the metrics are rated.
func generateInputs(tax *schema.Taxonomy, n int, fill float64, rng *rand.Rand) []core.BatchInput {
	keys := tax.MetricKeys()
	inputs := make([]core.BatchInput, n)
	for i := range inputs {
		st := schema.NewAssessmentState()
		for _, k := range keys {
			if rng.Float64() >= fill {
				continue
			}
			st.Ratings.Set(k, schema.MinRating+rng.IntN(schema.MaxRating))
			if rng.IntN(20) == 0 {
				st.Priorities.Set(k, schema.PriorityA)
			}
		}
		inputs[i] = core.BatchInput{ID: strconv.Itoa(i), State: st}
	}
	return inputs
}

// runBenchmarks executes every fill ratio against every worker count.
func runBenchmarks(config BenchmarkConfig, tax *schema.Taxonomy) []BenchmarkResult {
	var results []BenchmarkResult
	rng := rand.New(rand.NewPCG(config.Seed, config.Seed))

	fmt.Printf("Starting benchmark: %d assessments, %d metrics, %d runs per case\n",
		config.Assessments, tax.MetricCount(), config.Runs)

	for _, fill := range config.FillRatios {
		inputs := generateInputs(tax, config.Assessments, fill, rng)
		fillLabel := fmt.Sprintf("%.0f%%", fill*100)
		fmt.Printf("Benchmarking fill %s\n", fillLabel)

		for _, workers := range config.Workers {
			times := runBenchmark(tax, inputs, workers, config.Runs)
			result := BenchmarkResult{Fill: fillLabel, Workers: workers, ColdTime: "FAILED", WarmTime: "FAILED", P90Time: "FAILED"}
			if len(times) > 0 {
				result.ColdTime = fmt.Sprintf("%.4fs", times[0])
			}
			if warm := times[min(1, len(times)):]; len(warm) > 0 {
				avg, _ := stats.Mean(warm)
				p90, _ := stats.Percentile(warm, 90)
				result.warmAvg = avg
				result.WarmTime = fmt.Sprintf("%.4fs", avg)
				result.P90Time = fmt.Sprintf("%.4fs", p90)
			}
			fmt.Printf("  %2d workers: Cold: %s, Warm average: %s, Warm p90: %s\n",
				workers, result.ColdTime, result.WarmTime, result.P90Time)
			results = append(results, result)
		}
	}

	return results
}

// runBenchmark evaluates the batch numRuns times and returns the durations in seconds.
func runBenchmark(tax *schema.Taxonomy, inputs []core.BatchInput, workers, numRuns int) []float64 {
	opts := schema.DefaultEngineOptions()
	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()
		if _, err := core.EvaluateBatch(context.Background(), tax, inputs, opts, workers); err != nil {
			fmt.Printf("  run %d failed: %v\n", run, err)
			continue
		}
		times = append(times, time.Since(start).Seconds())
	}
	return times
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s/safe_benchmark_%s.csv", os.TempDir(), timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"fill", "workers", "cold_time", "warm_avg", "warm_p90"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, r := range results {
		if err := writer.Write([]string{r.Fill, strconv.Itoa(r.Workers), r.ColdTime, r.WarmTime, r.P90Time}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the fastest warm configuration for each fill ratio
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	best := map[string]BenchmarkResult{}
	var order []string
	for _, r := range results {
		cur, ok := best[r.Fill]
		if !ok {
			order = append(order, r.Fill)
		}
		if !ok || (r.warmAvg > 0 && (cur.warmAvg == 0 || r.warmAvg < cur.warmAvg)) {
			best[r.Fill] = r
		}
	}
	for _, fill := range order {
		r := best[fill]
		fmt.Printf("  fill %-5s: fastest with %d workers (warm average %s)\n", fill, r.Workers, r.WarmTime)
	}
}
