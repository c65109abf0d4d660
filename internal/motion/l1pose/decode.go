package l1pose

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/motion.report/internal/timeutil"
)

// maxLineBytes bounds a single JSON line; a 33-landmark frame is ~4KB.
const maxLineBytes = 1 << 20

type frameJSON struct {
	TimestampMs *float64                `json:"timestamp_ms,omitempty"`
	TimestampNs *int64                  `json:"timestamp_ns,omitempty"`
	Confidence  *float64                `json:"confidence,omitempty"`
	Keypoints   map[string]keypointJSON `json:"keypoints"`
}

type keypointJSON struct {
	X          float64     `json:"x"`
	Y          float64     `json:"y"`
	Z          *float64    `json:"z,omitempty"`
	Visibility *float64    `json:"visibility,omitempty"`
	Presence   *float64    `json:"presence,omitempty"`
	World      *[3]float64 `json:"world,omitempty"`
}

// FrameDecoder reads pose frames from JSON lines, one frame per line.
// Blank lines are skipped. Landmark names outside the vocabulary are
// dropped and counted in Unknown.
type FrameDecoder struct {
	scanner *bufio.Scanner
	line    int

	// Unknown counts dropped landmark entries across all decoded frames.
	Unknown int
}

// NewFrameDecoder returns a decoder reading from r.
func NewFrameDecoder(r io.Reader) *FrameDecoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &FrameDecoder{scanner: s}
}

// Next decodes the next frame. It returns io.EOF when the input is exhausted.
func (d *FrameDecoder) Next() (PoseFrame, error) {
	for d.scanner.Scan() {
		d.line++
		raw := bytes.TrimSpace(d.scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var fj frameJSON
		if err := json.Unmarshal(raw, &fj); err != nil {
			return PoseFrame{}, fmt.Errorf("line %d: failed to parse frame: %w", d.line, err)
		}
		return d.convert(fj), nil
	}
	if err := d.scanner.Err(); err != nil {
		return PoseFrame{}, fmt.Errorf("line %d: %w", d.line, err)
	}
	return PoseFrame{}, io.EOF
}

func (d *FrameDecoder) convert(fj frameJSON) PoseFrame {
	f := PoseFrame{
		Keypoints:  make(map[Landmark]Keypoint, len(fj.Keypoints)),
		Confidence: 1.0,
	}
	switch {
	case fj.TimestampNs != nil:
		f.TimestampNanos = *fj.TimestampNs
	case fj.TimestampMs != nil:
		f.TimestampNanos = timeutil.FromMillis(*fj.TimestampMs)
	}
	if fj.Confidence != nil {
		f.Confidence = *fj.Confidence
	}

	for name, kj := range fj.Keypoints {
		lm := Landmark(name)
		if !Known(lm) {
			d.Unknown++
			continue
		}
		kp := Keypoint{X: kj.X, Y: kj.Y, Visibility: 1.0, Presence: 1.0}
		if kj.Z != nil {
			kp.Z = *kj.Z
			kp.HasZ = true
		}
		if kj.Visibility != nil {
			kp.Visibility = *kj.Visibility
		}
		if kj.Presence != nil {
			kp.Presence = *kj.Presence
		}
		if kj.World != nil {
			kp.World = &Vec3{X: kj.World[0], Y: kj.World[1], Z: kj.World[2]}
		}
		f.Keypoints[lm] = kp
	}
	return f
}

// DecodeAll reads every frame from r.
func DecodeAll(r io.Reader) ([]PoseFrame, error) {
	d := NewFrameDecoder(r)
	var frames []PoseFrame
	for {
		f, err := d.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
	}
}
