// Command scheduler is the spec-literal single-process CLI (spec.md §6):
// it reads one or more task-set CSV files, runs the requested heuristic
// plus the PAF meta-heuristic, and writes a schedule CSV (or a .nosol
// marker) per job set, grounded on original_source/schedule.py's
// parse_args/process/main.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime/pprof"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"pafsched/pkg/heuristic"
	"pafsched/pkg/logger"
	"pafsched/pkg/paf"
	"pafsched/pkg/report"
	"pafsched/pkg/taskset"
)

var coresInFilename = regexp.MustCompile(`([0-9]+)Cores`)

type options struct {
	outputDir   string
	cores       int
	hasCores    bool
	jobSetIndex int
	hasIndex    bool
	heuristicName string
	logFailures bool
	profile     bool
}

func parseArgs(args []string) (options, []string) {
	fs := flag.NewFlagSet("scheduler", flag.ExitOnError)
	outDir := fs.String("o", "./Schedules", "where to store the generated schedules")
	cores := fs.Int("m", 0, "number of cores to assume (if not inferred from file name)")
	index := fs.Int("i", -1, "look only at a specific index in the task set file")
	heur := fs.String("heuristic", "", "run a scheduling heuristic: backfill or feasint")
	logFailures := fs.Bool("f", false, "write *.nosol failure indicators")
	fs.BoolVar(logFailures, "log-failures", false, "write *.nosol failure indicators")
	profile := fs.Bool("profile", false, "write a CPU profile alongside each schedule")
	fs.Parse(args)

	opts := options{
		outputDir:     *outDir,
		heuristicName: *heur,
		logFailures:   *logFailures,
		profile:       *profile,
	}
	if *cores > 0 {
		opts.cores = *cores
		opts.hasCores = true
	}
	if *index >= 0 {
		opts.jobSetIndex = *index
		opts.hasIndex = true
	}
	return opts, fs.Args()
}

func inferCores(fname string, opts options) (int, bool) {
	if m := coresInFilename.FindStringSubmatch(filepath.Base(fname)); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	if opts.hasCores {
		return opts.cores, true
	}
	return 0, false
}

func main() {
	log, err := logger.Init(logger.Config{Level: "info", Encoding: "console", OutputPath: "stdout", Service: "scheduler"})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	opts, files := parseArgs(os.Args[1:])
	if len(files) == 0 {
		log.Warn("no input files given")
		return
	}
	if err := os.MkdirAll(opts.outputDir, 0o755); err != nil {
		log.Fatal("failed to create output directory", zap.Error(err))
	}

	for _, fname := range files {
		processFile(log, opts, fname)
	}
}

func processFile(log *zap.Logger, opts options, fname string) {
	ncores, ok := inferCores(fname, opts)
	if !ok {
		log.Warn("could not infer number of cores, specify with -m", zap.String("file", fname))
		return
	}

	log.Info("processing task-set file", zap.String("file", fname))
	data, err := os.ReadFile(fname)
	if err != nil {
		log.Error("failed to read input file", zap.String("file", fname), zap.Error(err))
		return
	}

	sets, isDAG, err := taskset.LoadAuto(data)
	if err != nil {
		log.Error("malformed input", zap.String("file", fname), zap.Error(err))
		return
	}

	bname := strings.TrimSuffix(filepath.Base(fname), filepath.Ext(fname))
	for idx, ts := range sets {
		setIndex := idx + 1
		if opts.hasIndex && setIndex != opts.jobSetIndex {
			continue
		}
		name := fmt.Sprintf("%s-ID%03d", bname, setIndex)
		processJobSet(log, opts, ts, isDAG, ncores, name)
	}
}

func processJobSet(log *zap.Logger, opts options, ts taskset.TaskSet, isDAG bool, ncores int, name string) {
	hyperperiod := ts.Hyperperiod()
	specs := taskset.Expand(ts, hyperperiod)
	log.Info("scheduling job set", zap.String("name", name), zap.Int("jobs", len(specs)), zap.Int("cores", ncores))

	if opts.heuristicName == "" {
		return
	}
	driver, err := heuristic.Select(opts.heuristicName, isDAG)
	if err != nil {
		log.Error(err.Error(), zap.String("name", name))
		return
	}

	scheduleName := filepath.Join(opts.outputDir, name+"-schedule.csv")

	runHeuristic := func() paf.Outcome {
		return paf.Run(specs, driver, ncores)
	}

	var outcome paf.Outcome
	if opts.profile {
		profPath := filepath.Join(opts.outputDir, name+".prof")
		f, err := os.Create(profPath)
		if err != nil {
			log.Error("failed to create profile file", zap.Error(err))
			outcome = runHeuristic()
		} else {
			pprof.StartCPUProfile(f)
			outcome = runHeuristic()
			pprof.StopCPUProfile()
			f.Close()
		}
	} else {
		outcome = runHeuristic()
	}

	if len(outcome.Unassigned) > 0 {
		log.Info("no solution found", zap.String("name", name), zap.Int("unassigned", len(outcome.Unassigned)))
		if opts.logFailures {
			nosolPath := strings.TrimSuffix(scheduleName, ".csv") + ".nosol"
			if err := os.WriteFile(nosolPath, []byte("no solution found"), 0o644); err != nil {
				log.Error("failed to write .nosol marker", zap.Error(err))
			}
		}
		return
	}

	if violations := report.Validate(specs, outcome.Schedule, nil); len(violations) > 0 {
		for _, v := range violations {
			log.Error("invariant violation in validation", zap.String("name", name), zap.String("kind", v.Kind), zap.String("detail", v.Detail))
		}
		log.Fatal("heuristic produced an invalid schedule", zap.String("name", name))
	}

	f, err := os.Create(scheduleName)
	if err != nil {
		log.Error("failed to write schedule", zap.String("name", name), zap.Error(err))
		return
	}
	defer f.Close()
	if err := report.WriteCSV(f, outcome.Schedule); err != nil {
		log.Error("failed to write schedule", zap.String("name", name), zap.Error(err))
		return
	}
	log.Info("solution stored", zap.String("name", name), zap.String("path", scheduleName))
}
