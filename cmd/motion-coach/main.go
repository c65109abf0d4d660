package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"github.com/banshee-data/motion.report/internal/config"
	"github.com/banshee-data/motion.report/internal/monitoring"
	"github.com/banshee-data/motion.report/internal/motion/l4reps"
	"github.com/banshee-data/motion.report/internal/motion/l5sequence"
	"github.com/banshee-data/motion.report/internal/motion/pipeline"
	"github.com/banshee-data/motion.report/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// globals are the flags shared by every command.
type globals struct {
	configPath string
	debug      bool
	trace      bool
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("motion-coach", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var g globals
	showVersion := fs.Bool("version", false, "Print version and exit")
	fs.StringVar(&g.configPath, "config", "", "Tuning config JSON (defaults built in)")
	fs.BoolVar(&g.debug, "debug", false, "Enable the diagnostic log stream")
	fs.BoolVar(&g.trace, "trace", false, "Enable the per-frame trace stream")
	fs.Usage = func() { printUsage(stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintf(stdout, "motion-coach %s\n", version.String())
		return 0
	}
	if fs.NArg() < 1 {
		printUsage(stderr)
		return 2
	}

	setupLogging(stderr, g)

	cfg, err := loadTuning(g.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	command, rest := fs.Arg(0), fs.Args()[1:]
	switch command {
	case "reps":
		err = runReps(cfg, rest, stdout, stderr)
	case "posture":
		err = runPosture(cfg, rest, stdout, stderr)
	case "compare":
		err = runCompare(cfg, rest, stdout, stderr)
	case "library":
		err = runLibrary(cfg, rest, stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "motion-coach %s\n", version.String())
	case "help":
		printUsage(stdout)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		printUsage(stderr)
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `motion-coach - repetition counting, posture checks and movement comparison

Usage: motion-coach [global flags] <command> [options] <frames.jsonl>

Commands:
  reps       Count repetitions of an exercise
  posture    Calibrate on the first frames and report posture rule failures
  compare    Score a practice recording against a reference
  library    Manage saved reference sequences and session history
  version    Show version
  help       Show this help message

Global Flags:
  -config <file>   Tuning config JSON
  -debug           Enable the diagnostic log stream
  -trace           Enable the per-frame trace stream
  -version         Print version and exit

Frames are JSON lines, one pose frame per line:
  {"timestamp_ns": 0, "keypoints": {"left_knee": {"x": 0.4, "y": 0.7, "visibility": 0.9}}}`)
}

// setupLogging routes the shared Logf hook through a tint slog handler
// and enables the package log streams requested on the command line.
func setupLogging(stderr io.Writer, g globals) {
	level := slog.LevelInfo
	if g.debug || g.trace {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
	}))
	monitoring.SetLogger(monitoring.SlogPrintf(logger, slog.LevelInfo))

	var diag, trace io.Writer
	if g.debug {
		diag = stderr
	}
	if g.trace {
		trace = stderr
	}
	pipeline.SetLogWriters(stderr, diag, trace)
	l4reps.SetLogWriters(stderr, diag, trace)
	l5sequence.SetLogWriters(stderr, diag, trace)
}

func loadTuning(path string) (*config.TuningConfig, error) {
	if path == "" {
		return config.DefaultTuningConfig(), nil
	}
	return config.LoadTuningConfig(path)
}
