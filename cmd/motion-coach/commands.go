package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/banshee-data/motion.report/internal/config"
	"github.com/banshee-data/motion.report/internal/db"
	"github.com/banshee-data/motion.report/internal/fsutil"
	"github.com/banshee-data/motion.report/internal/motion/l1pose"
	"github.com/banshee-data/motion.report/internal/motion/l2angles"
	"github.com/banshee-data/motion.report/internal/motion/l5sequence"
	"github.com/banshee-data/motion.report/internal/motion/l6compare"
	"github.com/banshee-data/motion.report/internal/motion/pipeline"
	"github.com/banshee-data/motion.report/internal/motion/session"
	"github.com/banshee-data/motion.report/internal/motion/storage/sqlite"
	"github.com/banshee-data/motion.report/internal/timeutil"
)

const defaultDBPath = "motion.db"

func readFrames(path string) ([]l1pose.PoseFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	frames, err := l1pose.DecodeAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%s: no frames", path)
	}
	return frames, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func positional(fs *flag.FlagSet, name string) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%s requires exactly one frames file", name)
	}
	return fs.Arg(0), nil
}

// record runs frames through p while the controller records a reference.
func record(p *pipeline.Pipeline, name string, frames []l1pose.PoseFrame) (*l5sequence.Sequence, error) {
	ctl := p.Controller()
	if err := ctl.StartRecording(name); err != nil {
		return nil, err
	}
	for _, f := range frames {
		p.Process(f)
	}
	return ctl.StopRecording()
}

// sequenceFromPath loads a saved .mseq file, or records one named name
// from a frames file. An empty name uses the file's base name.
func sequenceFromPath(cfg *config.TuningConfig, path, name string) (*l5sequence.Sequence, error) {
	if filepath.Ext(path) == l5sequence.FileExt {
		return l5sequence.LoadFile(fsutil.OSFileSystem{}, path)
	}
	frames, err := readFrames(path)
	if err != nil {
		return nil, err
	}
	p, err := pipeline.NewFromTuning(cfg)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return record(p, name, frames)
}

// -----------------------------------------------------------------------------
// reps
// -----------------------------------------------------------------------------

func runReps(cfg *config.TuningConfig, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("reps", flag.ContinueOnError)
	fs.SetOutput(stderr)
	exercises := fs.String("exercise", "squat", "Comma-separated exercises to track ("+strings.Join(cfg.ExerciseNames(), ", ")+")")
	asJSON := fs.Bool("json", false, "Emit one JSON report per frame")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := positional(fs, "reps")
	if err != nil {
		return err
	}

	names := strings.Split(*exercises, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	p, err := pipeline.NewFromTuning(cfg, names...)
	if err != nil {
		return err
	}
	frames, err := readFrames(path)
	if err != nil {
		return err
	}

	start := frames[0].TimestampNanos
	for _, f := range frames {
		rep := p.Process(f)
		if *asJSON {
			if err := writeJSON(stdout, rep); err != nil {
				return err
			}
			continue
		}
		for _, u := range rep.Reps {
			if u.Counted {
				fmt.Fprintf(stdout, "%8.2fs  %s rep %d\n", timeutil.Elapsed(start, f.TimestampNanos).Seconds(), u.Exercise, u.Count)
			}
			for _, issue := range u.Issues {
				fmt.Fprintf(stdout, "%8.2fs  %s: %s (%s %.0f)\n", timeutil.Elapsed(start, f.TimestampNanos).Seconds(), u.Exercise, issue.Message, issue.Joint, issue.Value)
			}
		}
	}

	if *asJSON {
		return nil
	}
	counts := p.Counts()
	for _, name := range names {
		fmt.Fprintf(stdout, "%s: %d reps\n", name, counts[name])
	}
	st := p.Stats()
	fmt.Fprintf(stdout, "frames: %d (%d without a defined joint)\n", st.Frames, st.EmptyFrames)
	return nil
}

// -----------------------------------------------------------------------------
// posture
// -----------------------------------------------------------------------------

type ruleSummary struct {
	Rule      string `json:"rule"`
	Failed    int    `json:"failed"`
	Undefined int    `json:"undefined"`
	Evaluated int    `json:"evaluated"`
	Message   string `json:"message,omitempty"`
}

func runPosture(cfg *config.TuningConfig, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("posture", flag.ContinueOnError)
	fs.SetOutput(stderr)
	calibrate := fs.Int("calibrate", 30, "Calibrate the baseline after this many frames (0 disables)")
	asJSON := fs.Bool("json", false, "Emit the summary as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := positional(fs, "posture")
	if err != nil {
		return err
	}

	p, err := pipeline.NewFromTuning(cfg)
	if err != nil {
		return err
	}
	frames, err := readFrames(path)
	if err != nil {
		return err
	}

	summary := make(map[string]*ruleSummary)
	var order []string
	for i, f := range frames {
		rep := p.Process(f)
		if *calibrate > 0 && i+1 == *calibrate {
			if n, err := p.Calibrate(); err != nil {
				fmt.Fprintf(stderr, "calibration skipped: %v\n", err)
			} else {
				fmt.Fprintf(stderr, "calibrated %d metrics after %d frames\n", n, i+1)
			}
		}
		if *calibrate > 0 && i+1 <= *calibrate {
			continue
		}
		for _, r := range rep.Rules {
			s, ok := summary[r.Rule]
			if !ok {
				s = &ruleSummary{Rule: r.Rule}
				summary[r.Rule] = s
				order = append(order, r.Rule)
			}
			s.Evaluated++
			switch {
			case !r.Defined:
				s.Undefined++
			case !r.Pass:
				s.Failed++
				s.Message = r.Message
			}
		}
	}

	out := make([]ruleSummary, 0, len(order))
	for _, name := range order {
		out = append(out, *summary[name])
	}
	if *asJSON {
		return writeJSON(stdout, out)
	}
	for _, s := range out {
		fmt.Fprintf(stdout, "%-16s failed %4d / %4d  undefined %4d", s.Rule, s.Failed, s.Evaluated, s.Undefined)
		if s.Failed > 0 {
			fmt.Fprintf(stdout, "  (%s)", s.Message)
		}
		fmt.Fprintln(stdout)
	}
	return nil
}

// -----------------------------------------------------------------------------
// compare
// -----------------------------------------------------------------------------

type compareOutput struct {
	Result   *session.Result        `json:"result"`
	Feedback map[l6compare.Tier]int `json:"feedback"`
}

func runCompare(cfg *config.TuningConfig, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	fs.SetOutput(stderr)
	refPath := fs.String("reference", "", "Reference .mseq file or frames file")
	refID := fs.String("reference-id", "", "Reference sequence ID from the library (requires -db)")
	dbPath := fs.String("db", "", "Library database; the result is stored when set")
	asJSON := fs.Bool("json", false, "Emit the result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := positional(fs, "compare")
	if err != nil {
		return err
	}
	if (*refPath == "") == (*refID == "") {
		return errors.New("exactly one of -reference or -reference-id is required")
	}

	pc, err := pipeline.ConfigFromTuning(cfg)
	if err != nil {
		return err
	}

	var ref *l5sequence.Sequence
	if *dbPath != "" {
		d, err := db.Open(*dbPath)
		if err != nil {
			return err
		}
		defer d.Close()
		pc.Results = sqlite.NewResultStore(d.DB, nil)
		if *refID != "" {
			if ref, err = sqlite.NewSequenceStore(d.DB, nil).Load(*refID); err != nil {
				return err
			}
		}
	} else if *refID != "" {
		return errors.New("-reference-id requires -db")
	}
	if ref == nil {
		if ref, err = sequenceFromPath(cfg, *refPath, ""); err != nil {
			return fmt.Errorf("reference: %w", err)
		}
	}

	p, err := pipeline.New(pc)
	if err != nil {
		return err
	}
	frames, err := readFrames(path)
	if err != nil {
		return err
	}

	ctl := p.Controller()
	if err := ctl.LoadReference(ref); err != nil {
		return err
	}
	if err := ctl.StartPractice(); err != nil {
		return err
	}
	tiers := make(map[l6compare.Tier]int)
	for _, f := range frames {
		rep := p.Process(f)
		if fb := rep.Session.Feedback; fb != nil {
			tiers[fb.Worst()]++
		}
	}
	res, err := p.StopPractice()
	if err != nil {
		return err
	}

	if *asJSON {
		return writeJSON(stdout, compareOutput{Result: res, Feedback: tiers})
	}
	printResult(stdout, res, ref)
	fmt.Fprintf(stdout, "live feedback: good %d, acceptable %d, needs work %d, unknown %d\n",
		tiers[l6compare.TierGood], tiers[l6compare.TierAcceptable], tiers[l6compare.TierNeedsWork], tiers[l6compare.TierUnknown])
	return nil
}

func printResult(w io.Writer, res *session.Result, ref *l5sequence.Sequence) {
	fmt.Fprintf(w, "reference %s (%s, %d frames)\n", res.ReferenceID, ref.Name(), ref.Len())
	fmt.Fprintf(w, "score %.1f (spread %.1f) over %d practice frames\n", res.OverallScore, res.ScoreSpread, res.ComparedFrameCount)

	joints := make([]l2angles.Joint, 0, len(res.Joints))
	for j := range res.Joints {
		joints = append(joints, j)
	}
	sort.Slice(joints, func(a, b int) bool { return joints[a] < joints[b] })
	for _, j := range joints {
		jr := res.Joints[j]
		if !jr.Valid {
			fmt.Fprintf(w, "  %-16s   n/a  (%d comparable samples)\n", j, jr.ComparablePairs)
			continue
		}
		fmt.Fprintf(w, "  %-16s %5.1f  avg %.1f deg\n", j, jr.Score, jr.AverageDegrees)
	}
}

// -----------------------------------------------------------------------------
// library
// -----------------------------------------------------------------------------

func runLibrary(cfg *config.TuningConfig, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("library", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dbPath := fs.String("db", defaultDBPath, "Library database")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("library requires an action: list, save, export, delete, history")
	}

	d, err := db.Open(*dbPath)
	if err != nil {
		return err
	}
	defer d.Close()
	sequences := sqlite.NewSequenceStore(d.DB, nil)
	results := sqlite.NewResultStore(d.DB, nil)

	action, rest := fs.Arg(0), fs.Args()[1:]
	need := func(n int, usage string) error {
		if len(rest) != n {
			return fmt.Errorf("usage: library %s %s", action, usage)
		}
		return nil
	}

	switch action {
	case "list":
		list, err := sequences.List()
		if err != nil {
			return err
		}
		for _, s := range list {
			long := ""
			if s.LongRecording {
				long = "  (long)"
			}
			fmt.Fprintf(stdout, "%s  %-24s %5d frames  %6.2fs%s\n", s.SequenceID, s.Name, s.FrameCount, float64(s.DurationNanos)/1e9, long)
		}
		return nil

	case "save":
		if err := need(2, "<name> <frames.jsonl|file.mseq>"); err != nil {
			return err
		}
		seq, err := sequenceFromPath(cfg, rest[1], rest[0])
		if err != nil {
			return err
		}
		if err := sequences.Save(seq); err != nil {
			return err
		}
		fmt.Fprintln(stdout, seq.ID())
		return nil

	case "export":
		if err := need(2, "<sequence-id> <out.mseq>"); err != nil {
			return err
		}
		seq, err := sequences.Load(rest[0])
		if err != nil {
			return err
		}
		return l5sequence.SaveFile(fsutil.OSFileSystem{}, rest[1], seq)

	case "delete":
		if err := need(1, "<sequence-id>"); err != nil {
			return err
		}
		return sequences.Delete(rest[0])

	case "history":
		if err := need(1, "<sequence-id>"); err != nil {
			return err
		}
		list, err := results.ListByReference(rest[0])
		if err != nil {
			return err
		}
		for _, r := range list {
			fmt.Fprintf(stdout, "%s  %s  score %5.1f  spread %4.1f\n", r.CompletedAt.Format("2006-01-02 15:04:05"), r.SessionID, r.OverallScore, r.ScoreSpread)
		}
		return nil
	}
	return fmt.Errorf("unknown library action %q", action)
}
