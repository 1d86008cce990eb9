// Package main runs the route planners over scenario files and collects metrics.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/pdatta1/PathRouting/internal/algo"
	"github.com/pdatta1/PathRouting/internal/config"
	"github.com/pdatta1/PathRouting/internal/core"
	"github.com/pdatta1/PathRouting/internal/registry"
)

// BenchmarkResult stores results from a single planner run.
type BenchmarkResult struct {
	Timestamp  string  `json:"timestamp"`
	CommitHash string  `json:"commit_hash"`
	GoVersion  string  `json:"go_version"`
	OS         string  `json:"os"`
	Arch       string  `json:"arch"`
	Scenario   string  `json:"scenario"`
	NumAgents  int     `json:"num_agents"`
	Levels     int     `json:"levels"`
	Nodes      int     `json:"nodes"`
	Planner    string  `json:"planner"`
	RuntimeMs  float64 `json:"runtime_ms"`
	Success    bool    `json:"success"`
	Planned    int     `json:"planned"`
	Makespan   int     `json:"makespan"`
	SumOfCosts int     `json:"sum_of_costs"`
	Conflicts  int     `json:"num_conflicts"`
	Error      string  `json:"error,omitempty"`
}

// PlannerMetrics holds per-planner aggregated metrics.
type PlannerMetrics struct {
	Name           string
	TotalRuns      int
	Successes      int
	TotalRuntimeMs float64
	TotalMakespan  int
	Conflicts      int
}

var planners = []string{
	"independent",
	"prioritized",
}

func getGitCommit() string {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(output))
}

// runPlanner plans every agent of s with the named planner.
func runPlanner(ctx context.Context, s *config.Scenario, planner string, workers int) *BenchmarkResult {
	result := &BenchmarkResult{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		CommitHash: getGitCommit(),
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		Scenario:   s.Name,
		NumAgents:  len(s.Agents),
		Planner:    planner,
	}
	fail := func(err error) *BenchmarkResult {
		result.Error = err.Error()
		return result
	}

	m, err := s.BuildMap()
	if err != nil {
		return fail(err)
	}
	result.Levels, result.Nodes = m.Levels, m.Len()
	reg := registry.New(m)
	if err := s.Populate(reg); err != nil {
		return fail(err)
	}
	agents, err := s.ResolveAgents(m)
	if err != nil {
		return fail(err)
	}
	router := algo.NewRouter(m, reg)
	router.Options = s.Planner.Options()

	paths := make(map[string]*core.Path)
	startTime := time.Now()
	switch planner {
	case "independent":
		results, err := algo.PlanIndependent(ctx, algo.PathFinderFunc(router.FindRoute), agents, workers)
		if err != nil {
			return fail(err)
		}
		for _, r := range results {
			if r.Err == nil {
				paths[r.Agent] = r.Path
			}
		}
	case "prioritized":
		res := algo.NewPrioritized(router, nil).Solve(agents)
		paths = res.Paths
	default:
		return fail(fmt.Errorf("unknown planner %q", planner))
	}
	result.RuntimeMs = float64(time.Since(startTime).Microseconds()) / 1000.0

	for _, p := range paths {
		result.SumOfCosts += p.Edges()
		if p.EndTick() > result.Makespan {
			result.Makespan = p.EndTick()
		}
	}
	result.Planned = len(paths)
	result.Conflicts = len(algo.FindAllConflicts(paths))
	result.Success = result.Planned == len(agents) && result.Conflicts == 0
	return result
}

func writeCSV(results []*BenchmarkResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"timestamp", "commit_hash", "go_version", "os", "arch",
		"scenario", "num_agents", "levels", "nodes", "planner",
		"runtime_ms", "success", "planned", "makespan", "sum_of_costs",
		"num_conflicts", "error",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			r.Timestamp, r.CommitHash, r.GoVersion, r.OS, r.Arch,
			r.Scenario, fmt.Sprintf("%d", r.NumAgents), fmt.Sprintf("%d", r.Levels),
			fmt.Sprintf("%d", r.Nodes), r.Planner,
			fmt.Sprintf("%.3f", r.RuntimeMs), fmt.Sprintf("%t", r.Success),
			fmt.Sprintf("%d", r.Planned), fmt.Sprintf("%d", r.Makespan),
			fmt.Sprintf("%d", r.SumOfCosts), fmt.Sprintf("%d", r.Conflicts), r.Error,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeJSON(results []*BenchmarkResult, path string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func printSummary(results []*BenchmarkResult) {
	metrics := make(map[string]*PlannerMetrics)
	for _, r := range results {
		m, ok := metrics[r.Planner]
		if !ok {
			m = &PlannerMetrics{Name: r.Planner}
			metrics[r.Planner] = m
		}
		m.TotalRuns++
		m.Conflicts += r.Conflicts
		if r.Success {
			m.Successes++
			m.TotalRuntimeMs += r.RuntimeMs
			m.TotalMakespan += r.Makespan
		}
	}

	fmt.Println("\n=== BENCHMARK SUMMARY ===")
	fmt.Printf("%-14s %8s %8s %12s %12s %10s\n",
		"Planner", "Runs", "Success", "Avg Time(ms)", "AvgMakespan", "Conflicts")
	fmt.Println(strings.Repeat("-", 68))

	var names []string
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m := metrics[name]
		avgTime := 0.0
		avgMakespan := 0.0
		if m.Successes > 0 {
			avgTime = m.TotalRuntimeMs / float64(m.Successes)
			avgMakespan = float64(m.TotalMakespan) / float64(m.Successes)
		}
		fmt.Printf("%-14s %8d %8d %12.2f %12.2f %10d\n",
			m.Name, m.TotalRuns, m.Successes, avgTime, avgMakespan, m.Conflicts)
	}
}

func main() {
	inputDir := flag.String("input", "testdata", "Directory containing scenario YAML files")
	outputFile := flag.String("output", "evidence/benchmark_results.csv", "Output CSV file")
	jsonFile := flag.String("json", "", "Also write results as JSON to this file")
	timeout := flag.Duration("timeout", 5*time.Minute, "Timeout for the whole run")
	plannerFilter := flag.String("planner", "", "Run only specific planners (comma-separated)")
	agentFilter := flag.Int("agents", 0, "Run only scenarios with this many agents (0 = all)")
	workers := flag.Int("workers", runtime.NumCPU(), "Parallel searches for the independent planner")
	verbose := flag.Bool("verbose", false, "Verbose output")

	flag.Parse()

	outputDir := filepath.Dir(*outputFile)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	files, err := filepath.Glob(filepath.Join(*inputDir, "*.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error finding scenario files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No scenario files found in %s\n", *inputDir)
		fmt.Fprintf(os.Stderr, "Run gen_scenarios first: go run ./tools/gen_scenarios -scaling -output testdata\n")
		os.Exit(1)
	}

	activePlanners := planners
	if *plannerFilter != "" {
		activePlanners = strings.Split(*plannerFilter, ",")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var results []*BenchmarkResult
	totalRuns := len(files) * len(activePlanners)
	currentRun := 0

	fmt.Printf("Running benchmarks: %d scenarios x %d planners = %d runs\n",
		len(files), len(activePlanners), totalRuns)
	fmt.Println()

	for _, file := range files {
		s, err := config.LoadScenario(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", file, err)
			continue
		}
		if *agentFilter > 0 && len(s.Agents) != *agentFilter {
			continue
		}

		for _, planner := range activePlanners {
			currentRun++
			if *verbose {
				fmt.Printf("[%d/%d] %s / %s ... ", currentRun, totalRuns, s.Name, planner)
			} else {
				fmt.Printf("\r[%d/%d] Running...", currentRun, totalRuns)
			}

			result := runPlanner(ctx, s, planner, *workers)
			results = append(results, result)

			if *verbose {
				if result.Success {
					fmt.Printf("OK (%.2fms, makespan=%d)\n", result.RuntimeMs, result.Makespan)
				} else {
					fmt.Printf("FAILED (%d/%d planned, %d conflicts) %s\n",
						result.Planned, result.NumAgents, result.Conflicts, result.Error)
				}
			}
		}
	}

	fmt.Println()

	if err := writeCSV(results, *outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Results written to: %s\n", *outputFile)
	if *jsonFile != "" {
		if err := writeJSON(results, *jsonFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Results written to: %s\n", *jsonFile)
	}

	printSummary(results)
}
