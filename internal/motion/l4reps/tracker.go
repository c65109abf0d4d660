package l4reps

import (
	"github.com/banshee-data/motion.report/internal/motion/l2angles"
	"github.com/banshee-data/motion.report/internal/motion/l3signal"
)

// TrackerUpdate is the per-frame output of an ExerciseTracker.
type TrackerUpdate struct {
	Exercise string         `json:"exercise"`
	Smoothed l2angles.Angle `json:"smoothed"`
	State    State          `json:"state"`
	Count    int            `json:"count"`
	Counted  bool           `json:"counted"` // this frame completed a rep
	Issues   []FormIssue    `json:"issues,omitempty"`
}

// ExerciseTracker counts reps of one exercise from per-frame angle sets.
// It owns its signal channel and counter; not safe for concurrent use.
type ExerciseTracker struct {
	exercise Exercise
	channel  *l3signal.Channel
	counter  *Counter
}

// NewExerciseTracker creates a tracker for ex.
func NewExerciseTracker(ex Exercise, sig l3signal.Config) (*ExerciseTracker, error) {
	ch, err := l3signal.NewChannel(sig)
	if err != nil {
		return nil, err
	}
	c, err := NewCounter(ex.Counter)
	if err != nil {
		return nil, err
	}
	return &ExerciseTracker{exercise: ex, channel: ch, counter: c}, nil
}

// Update consumes one frame's angles. An undefined driving joint leaves
// the counter untouched.
func (t *ExerciseTracker) Update(angles l2angles.AngleSet, tsNanos int64) TrackerUpdate {
	smoothed := t.channel.Push(angles.Get(t.exercise.Joint), tsNanos)

	u := TrackerUpdate{Exercise: t.exercise.Name, Smoothed: smoothed}
	if smoothed.Valid {
		u.Counted = t.counter.Update(smoothed.Degrees, tsNanos)
		if u.Counted {
			diagf("%s: rep %d completed", t.exercise.Name, t.counter.Count())
		}
	}

	for _, fc := range t.exercise.FormChecks {
		if issue, bad := fc.Evaluate(angles); bad {
			u.Issues = append(u.Issues, issue)
		}
	}

	st := t.counter.State()
	u.State = st.State
	u.Count = st.Count
	return u
}

// Exercise returns the tracked exercise.
func (t *ExerciseTracker) Exercise() Exercise {
	return t.exercise
}

// Count returns completed repetitions.
func (t *ExerciseTracker) Count() int {
	return t.counter.Count()
}

// Stats returns rolling statistics of the smoothed driving joint.
func (t *ExerciseTracker) Stats() (l3signal.Stats, bool) {
	return t.channel.Stats()
}

// Reset clears the count and signal history.
func (t *ExerciseTracker) Reset() {
	t.channel.Reset()
	t.counter.Reset()
}
