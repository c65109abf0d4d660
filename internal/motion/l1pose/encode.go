package l1pose

import (
	"encoding/json"
	"io"
	"sort"
)

// FrameEncoder writes pose frames as JSON lines readable by FrameDecoder.
// Timestamps are written in nanoseconds so the round trip is exact.
type FrameEncoder struct {
	enc *json.Encoder
}

// NewFrameEncoder returns an encoder writing to w.
func NewFrameEncoder(w io.Writer) *FrameEncoder {
	return &FrameEncoder{enc: json.NewEncoder(w)}
}

// Encode writes one frame followed by a newline.
func (e *FrameEncoder) Encode(f PoseFrame) error {
	ts := f.TimestampNanos
	conf := f.Confidence
	fj := frameJSON{
		TimestampNs: &ts,
		Confidence:  &conf,
		Keypoints:   make(map[string]keypointJSON, len(f.Keypoints)),
	}

	names := make([]string, 0, len(f.Keypoints))
	for lm := range f.Keypoints {
		names = append(names, string(lm))
	}
	sort.Strings(names)

	for _, name := range names {
		kp := f.Keypoints[Landmark(name)]
		vis, pres := kp.Visibility, kp.Presence
		kj := keypointJSON{X: kp.X, Y: kp.Y, Visibility: &vis, Presence: &pres}
		if kp.HasZ {
			z := kp.Z
			kj.Z = &z
		}
		if kp.World != nil {
			kj.World = &[3]float64{kp.World.X, kp.World.Y, kp.World.Z}
		}
		fj.Keypoints[name] = kj
	}
	return e.enc.Encode(fj)
}

// EncodeAll writes every frame to w.
func EncodeAll(w io.Writer, frames []PoseFrame) error {
	e := NewFrameEncoder(w)
	for _, f := range frames {
		if err := e.Encode(f); err != nil {
			return err
		}
	}
	return nil
}
