package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// Smoothing method names accepted by smoothing_method.
const (
	SmoothingMovingAverage = "moving_average"
	SmoothingExponential   = "exponential"
)

// Score curve names accepted by score_curve.
const (
	ScoreCurveLinear      = "linear"
	ScoreCurveExponential = "exponential"
)

// TuningConfig represents the root configuration for motion analysis
// tuning parameters. Every field is optional; the Get* methods return
// the built-in default for fields omitted from the JSON.
type TuningConfig struct {
	// Geometry params
	ConfidenceFloor   *float64 `json:"confidence_floor,omitempty"`
	PreferWorldCoords *bool    `json:"prefer_world_coords,omitempty"`
	MinSpineExtent    *float64 `json:"min_spine_extent,omitempty"` // normalised image units

	// Signal params
	HistoryCapacity *int     `json:"history_capacity,omitempty"`
	SmoothingMethod *string  `json:"smoothing_method,omitempty"`
	SmoothingWindow *int     `json:"smoothing_window,omitempty"`
	SmoothingAlpha  *float64 `json:"smoothing_alpha,omitempty"`

	// Recorder params
	MinSequenceFrames    *int    `json:"min_sequence_frames,omitempty"`
	LongRecordingSoftCap *string `json:"long_recording_soft_cap,omitempty"` // duration string like "10s"

	// Comparison params
	MinComparablePairs        *int     `json:"min_comparable_pairs,omitempty"`
	ScoreCeilingDegrees       *float64 `json:"score_ceiling_degrees,omitempty"`
	ScoreCurve                *string  `json:"score_curve,omitempty"`
	ScoreDecay                *float64 `json:"score_decay,omitempty"`
	DTWWindow                 *int     `json:"dtw_window,omitempty"`
	FeedbackGoodDegrees       *float64 `json:"feedback_good_degrees,omitempty"`
	FeedbackAcceptableDegrees *float64 `json:"feedback_acceptable_degrees,omitempty"`
	KeyJoints                 []string `json:"key_joints,omitempty"`

	// Posture params
	PostureTolerance *float64 `json:"posture_tolerance,omitempty"`

	// Exercise table, keyed by exercise name
	Exercises map[string]ExerciseSpec `json:"exercises,omitempty"`
}

// ExerciseSpec describes how one exercise is tracked: which joint drives
// the rep counter, the hysteresis band, and which state the body rests in.
type ExerciseSpec struct {
	Joint      string          `json:"joint"`
	Low        float64         `json:"low"`
	High       float64         `json:"high"`
	Rest       string          `json:"rest"`                // "up" or "down"
	MinDwell   string          `json:"min_dwell,omitempty"` // duration string like "300ms"
	FormChecks []FormCheckSpec `json:"form_checks,omitempty"`
}

// FormCheckSpec is a single technique check attached to an exercise.
// Kind "symmetry" compares Joint against Pair; kind "range" bounds Joint.
type FormCheckSpec struct {
	Kind    string   `json:"kind"`
	Joint   string   `json:"joint"`
	Pair    string   `json:"pair,omitempty"`
	MaxDiff float64  `json:"max_diff,omitempty"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Message string   `json:"message"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated
// from the built-in defaults. It matches config/tuning.defaults.json.
func DefaultTuningConfig() *TuningConfig {
	empty := EmptyTuningConfig()
	return &TuningConfig{
		ConfidenceFloor:           ptrFloat64(empty.GetConfidenceFloor()),
		PreferWorldCoords:         ptrBool(empty.GetPreferWorldCoords()),
		MinSpineExtent:            ptrFloat64(empty.GetMinSpineExtent()),
		HistoryCapacity:           ptrInt(empty.GetHistoryCapacity()),
		SmoothingMethod:           ptrString(empty.GetSmoothingMethod()),
		SmoothingWindow:           ptrInt(empty.GetSmoothingWindow()),
		SmoothingAlpha:            ptrFloat64(empty.GetSmoothingAlpha()),
		MinSequenceFrames:         ptrInt(empty.GetMinSequenceFrames()),
		LongRecordingSoftCap:      ptrString(empty.GetLongRecordingSoftCap().String()),
		MinComparablePairs:        ptrInt(empty.GetMinComparablePairs()),
		ScoreCeilingDegrees:       ptrFloat64(empty.GetScoreCeilingDegrees()),
		ScoreCurve:                ptrString(empty.GetScoreCurve()),
		ScoreDecay:                ptrFloat64(empty.GetScoreDecay()),
		DTWWindow:                 ptrInt(empty.GetDTWWindow()),
		FeedbackGoodDegrees:       ptrFloat64(empty.GetFeedbackGoodDegrees()),
		FeedbackAcceptableDegrees: ptrFloat64(empty.GetFeedbackAcceptableDegrees()),
		KeyJoints:                 empty.GetKeyJoints(),
		PostureTolerance:          ptrFloat64(empty.GetPostureTolerance()),
		Exercises:                 empty.GetExercises(),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/motion/l4reps/
		"../../../../" + DefaultConfigPath, // from internal/motion/storage/sqlite/
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.ConfidenceFloor != nil {
		if *c.ConfidenceFloor < 0 || *c.ConfidenceFloor > 1 {
			return fmt.Errorf("confidence_floor must be between 0 and 1, got %f", *c.ConfidenceFloor)
		}
	}

	if c.HistoryCapacity != nil && *c.HistoryCapacity < 1 {
		return fmt.Errorf("history_capacity must be positive, got %d", *c.HistoryCapacity)
	}

	if c.SmoothingMethod != nil {
		switch *c.SmoothingMethod {
		case SmoothingMovingAverage, SmoothingExponential:
		default:
			return fmt.Errorf("unknown smoothing_method %q", *c.SmoothingMethod)
		}
	}

	if c.SmoothingWindow != nil && *c.SmoothingWindow < 1 {
		return fmt.Errorf("smoothing_window must be positive, got %d", *c.SmoothingWindow)
	}

	if c.SmoothingAlpha != nil {
		if *c.SmoothingAlpha <= 0 || *c.SmoothingAlpha > 1 {
			return fmt.Errorf("smoothing_alpha must be in (0, 1], got %f", *c.SmoothingAlpha)
		}
	}

	if c.MinSequenceFrames != nil && *c.MinSequenceFrames < 2 {
		return fmt.Errorf("min_sequence_frames must be at least 2, got %d", *c.MinSequenceFrames)
	}

	if c.LongRecordingSoftCap != nil && *c.LongRecordingSoftCap != "" {
		if _, err := time.ParseDuration(*c.LongRecordingSoftCap); err != nil {
			return fmt.Errorf("invalid long_recording_soft_cap '%s': %w", *c.LongRecordingSoftCap, err)
		}
	}

	if c.MinComparablePairs != nil && *c.MinComparablePairs < 1 {
		return fmt.Errorf("min_comparable_pairs must be positive, got %d", *c.MinComparablePairs)
	}

	if c.ScoreCeilingDegrees != nil && *c.ScoreCeilingDegrees <= 0 {
		return fmt.Errorf("score_ceiling_degrees must be positive, got %f", *c.ScoreCeilingDegrees)
	}

	if c.ScoreCurve != nil {
		switch *c.ScoreCurve {
		case ScoreCurveLinear, ScoreCurveExponential:
		default:
			return fmt.Errorf("unknown score_curve %q", *c.ScoreCurve)
		}
	}

	if c.ScoreDecay != nil && *c.ScoreDecay <= 0 {
		return fmt.Errorf("score_decay must be positive, got %f", *c.ScoreDecay)
	}

	if c.DTWWindow != nil && *c.DTWWindow < 0 {
		return fmt.Errorf("dtw_window must be non-negative, got %d", *c.DTWWindow)
	}

	if c.GetFeedbackGoodDegrees() > c.GetFeedbackAcceptableDegrees() {
		return fmt.Errorf("feedback_good_degrees (%f) must not exceed feedback_acceptable_degrees (%f)",
			c.GetFeedbackGoodDegrees(), c.GetFeedbackAcceptableDegrees())
	}

	for name, ex := range c.Exercises {
		if err := ex.validate(); err != nil {
			return fmt.Errorf("exercise %q: %w", name, err)
		}
	}

	return nil
}

func (e ExerciseSpec) validate() error {
	if e.Joint == "" {
		return fmt.Errorf("joint is required")
	}
	if e.Low >= e.High {
		return fmt.Errorf("low threshold %.1f must be below high threshold %.1f", e.Low, e.High)
	}
	if e.Rest != "up" && e.Rest != "down" {
		return fmt.Errorf("rest must be \"up\" or \"down\", got %q", e.Rest)
	}
	if e.MinDwell != "" {
		if _, err := time.ParseDuration(e.MinDwell); err != nil {
			return fmt.Errorf("invalid min_dwell '%s': %w", e.MinDwell, err)
		}
	}
	for i, fc := range e.FormChecks {
		switch fc.Kind {
		case "symmetry":
			if fc.Pair == "" {
				return fmt.Errorf("form check %d: symmetry requires pair", i)
			}
		case "range":
			if fc.Min == nil && fc.Max == nil {
				return fmt.Errorf("form check %d: range requires min or max", i)
			}
		default:
			return fmt.Errorf("form check %d: unknown kind %q", i, fc.Kind)
		}
	}
	return nil
}

// GetConfidenceFloor returns the confidence_floor value or the default.
func (c *TuningConfig) GetConfidenceFloor() float64 {
	if c.ConfidenceFloor == nil {
		return 0.5
	}
	return *c.ConfidenceFloor
}

// GetPreferWorldCoords returns the prefer_world_coords value or the default.
func (c *TuningConfig) GetPreferWorldCoords() bool {
	if c.PreferWorldCoords == nil {
		return true
	}
	return *c.PreferWorldCoords
}

// GetMinSpineExtent returns the min_spine_extent value or the default.
func (c *TuningConfig) GetMinSpineExtent() float64 {
	if c.MinSpineExtent == nil {
		return 0.01
	}
	return *c.MinSpineExtent
}

// GetHistoryCapacity returns the history_capacity value or the default.
func (c *TuningConfig) GetHistoryCapacity() int {
	if c.HistoryCapacity == nil {
		return 30
	}
	return *c.HistoryCapacity
}

// GetSmoothingMethod returns the smoothing_method value or the default.
func (c *TuningConfig) GetSmoothingMethod() string {
	if c.SmoothingMethod == nil || *c.SmoothingMethod == "" {
		return SmoothingMovingAverage
	}
	return *c.SmoothingMethod
}

// GetSmoothingWindow returns the smoothing_window value or the default.
func (c *TuningConfig) GetSmoothingWindow() int {
	if c.SmoothingWindow == nil {
		return 5
	}
	return *c.SmoothingWindow
}

// GetSmoothingAlpha returns the smoothing_alpha value or the default.
func (c *TuningConfig) GetSmoothingAlpha() float64 {
	if c.SmoothingAlpha == nil {
		return 0.3
	}
	return *c.SmoothingAlpha
}

// GetMinSequenceFrames returns the min_sequence_frames value or the default.
func (c *TuningConfig) GetMinSequenceFrames() int {
	if c.MinSequenceFrames == nil {
		return 10
	}
	return *c.MinSequenceFrames
}

// GetLongRecordingSoftCap parses and returns the LongRecordingSoftCap as a time.Duration.
func (c *TuningConfig) GetLongRecordingSoftCap() time.Duration {
	if c.LongRecordingSoftCap == nil || *c.LongRecordingSoftCap == "" {
		return 10 * time.Second // default
	}
	d, err := time.ParseDuration(*c.LongRecordingSoftCap)
	if err != nil {
		return 10 * time.Second // default on parse error
	}
	return d
}

// GetMinComparablePairs returns the min_comparable_pairs value or the default.
func (c *TuningConfig) GetMinComparablePairs() int {
	if c.MinComparablePairs == nil {
		return 5
	}
	return *c.MinComparablePairs
}

// GetScoreCeilingDegrees returns the score_ceiling_degrees value or the default.
func (c *TuningConfig) GetScoreCeilingDegrees() float64 {
	if c.ScoreCeilingDegrees == nil {
		return 45.0
	}
	return *c.ScoreCeilingDegrees
}

// GetScoreCurve returns the score_curve value or the default.
func (c *TuningConfig) GetScoreCurve() string {
	if c.ScoreCurve == nil || *c.ScoreCurve == "" {
		return ScoreCurveLinear
	}
	return *c.ScoreCurve
}

// GetScoreDecay returns the score_decay value or the default.
// Only used by the exponential score curve (per degree).
func (c *TuningConfig) GetScoreDecay() float64 {
	if c.ScoreDecay == nil {
		return 0.1
	}
	return *c.ScoreDecay
}

// GetDTWWindow returns the dtw_window value or the default (0 = unbounded).
func (c *TuningConfig) GetDTWWindow() int {
	if c.DTWWindow == nil {
		return 0
	}
	return *c.DTWWindow
}

// GetFeedbackGoodDegrees returns the feedback_good_degrees value or the default.
func (c *TuningConfig) GetFeedbackGoodDegrees() float64 {
	if c.FeedbackGoodDegrees == nil {
		return 15.0
	}
	return *c.FeedbackGoodDegrees
}

// GetFeedbackAcceptableDegrees returns the feedback_acceptable_degrees value or the default.
func (c *TuningConfig) GetFeedbackAcceptableDegrees() float64 {
	if c.FeedbackAcceptableDegrees == nil {
		return 30.0
	}
	return *c.FeedbackAcceptableDegrees
}

// GetKeyJoints returns the joints compared by the coach, or the default set.
func (c *TuningConfig) GetKeyJoints() []string {
	if len(c.KeyJoints) == 0 {
		return []string{
			"left_elbow", "right_elbow",
			"left_shoulder", "right_shoulder",
			"left_knee", "right_knee",
			"left_hip", "right_hip",
		}
	}
	out := make([]string, len(c.KeyJoints))
	copy(out, c.KeyJoints)
	return out
}

// GetPostureTolerance returns the posture_tolerance value or the default.
func (c *TuningConfig) GetPostureTolerance() float64 {
	if c.PostureTolerance == nil {
		return 15.0
	}
	return *c.PostureTolerance
}

// GetExercises returns the exercise table. Entries in the JSON replace the
// built-in entry of the same name; built-in exercises not mentioned are kept.
func (c *TuningConfig) GetExercises() map[string]ExerciseSpec {
	out := defaultExercises()
	for name, spec := range c.Exercises {
		out[name] = spec
	}
	return out
}

// ExerciseNames returns the sorted names of all configured exercises.
func (c *TuningConfig) ExerciseNames() []string {
	table := c.GetExercises()
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func defaultExercises() map[string]ExerciseSpec {
	return map[string]ExerciseSpec{
		"squat": {
			Joint: "left_knee", Low: 90, High: 160, Rest: "up",
			FormChecks: []FormCheckSpec{
				{Kind: "symmetry", Joint: "left_knee", Pair: "right_knee", MaxDiff: 15, Message: "Uneven knee bend"},
				{Kind: "range", Joint: "left_hip", Min: ptrFloat64(70), Message: "Keep back straight"},
			},
		},
		"pushup": {
			Joint: "left_elbow", Low: 70, High: 160, Rest: "up",
			FormChecks: []FormCheckSpec{
				{Kind: "range", Joint: "left_hip", Min: ptrFloat64(160), Message: "Keep body straight"},
				{Kind: "symmetry", Joint: "left_elbow", Pair: "right_elbow", MaxDiff: 20, Message: "Even arm bend"},
			},
		},
		"bicep_curl": {
			Joint: "left_elbow", Low: 40, High: 160, Rest: "up",
			FormChecks: []FormCheckSpec{
				{Kind: "range", Joint: "left_shoulder", Max: ptrFloat64(35), Message: "Keep elbow stable"},
			},
		},
		"shoulder_press": {
			Joint: "left_elbow", Low: 80, High: 170, Rest: "down",
			FormChecks: []FormCheckSpec{
				{Kind: "range", Joint: "left_hip", Min: ptrFloat64(160), Message: "Stand up straight"},
			},
		},
	}
}
