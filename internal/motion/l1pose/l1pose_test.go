package l1pose

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnown(t *testing.T) {
	t.Parallel()

	assert.Len(t, Vocabulary, 33)
	assert.True(t, Known(LeftKnee))
	assert.True(t, Known(RightFootIndex))
	assert.False(t, Known(Landmark("tail")))
}

func TestKeypoint_Image(t *testing.T) {
	t.Parallel()

	flat := Keypoint{X: 0.2, Y: 0.4, Z: 9}
	assert.Equal(t, Vec3{X: 0.2, Y: 0.4}, flat.Image(), "Z ignored without HasZ")

	deep := Keypoint{X: 0.2, Y: 0.4, Z: -0.1, HasZ: true}
	assert.Equal(t, Vec3{X: 0.2, Y: 0.4, Z: -0.1}, deep.Image())
}

func TestVec3_Helpers(t *testing.T) {
	t.Parallel()

	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 3, Y: 6, Z: 9}
	assert.Equal(t, Vec3{X: 2, Y: 4, Z: 6}, b.Sub(a))
	assert.Equal(t, Vec3{X: 2, Y: 4, Z: 6}, a.Mid(b))
}

func TestPoseFrame_Visible(t *testing.T) {
	t.Parallel()

	f := PoseFrame{Keypoints: map[Landmark]Keypoint{
		LeftElbow: {X: 0.5, Y: 0.5, Visibility: 0.9},
		LeftWrist: {X: 0.6, Y: 0.6, Visibility: 0.3},
	}}

	_, ok := f.Visible(LeftElbow, 0.5)
	assert.True(t, ok)
	_, ok = f.Visible(LeftWrist, 0.5)
	assert.False(t, ok, "below floor")
	_, ok = f.Visible(LeftShoulder, 0.5)
	assert.False(t, ok, "absent")

	var empty PoseFrame
	_, ok = empty.Keypoint(Nose)
	assert.False(t, ok, "nil map must not panic")
}

func TestPoseFrame_Valid(t *testing.T) {
	t.Parallel()

	f := PoseFrame{Confidence: 0.8, Keypoints: map[Landmark]Keypoint{Nose: {}}}
	assert.True(t, f.Valid(0.5))
	assert.False(t, f.Valid(0.9))
	assert.False(t, PoseFrame{Confidence: 1}.Valid(0.5), "no keypoints")
}

func TestFrameDecoder(t *testing.T) {
	t.Parallel()

	input := `{"timestamp_ms": 1000, "confidence": 0.9, "keypoints": {"left_knee": {"x": 0.5, "y": 0.6, "z": -0.2, "visibility": 0.8}, "tail": {"x": 0, "y": 0}}}

{"timestamp_ns": 2000000000, "keypoints": {"nose": {"x": 0.1, "y": 0.2, "world": [0.01, -0.5, 0.2]}}}
`
	d := NewFrameDecoder(strings.NewReader(input))

	f1, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(time.Second), f1.TimestampNanos)
	assert.InDelta(t, 0.9, f1.Confidence, 1e-12)
	knee, ok := f1.Keypoint(LeftKnee)
	require.True(t, ok)
	assert.True(t, knee.HasZ)
	assert.InDelta(t, -0.2, knee.Z, 1e-12)
	assert.InDelta(t, 0.8, knee.Visibility, 1e-12)
	assert.InDelta(t, 1.0, knee.Presence, 1e-12, "presence defaults to 1")
	assert.Equal(t, 1, d.Unknown)

	f2, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(2*time.Second), f2.TimestampNanos)
	assert.InDelta(t, 1.0, f2.Confidence, 1e-12, "confidence defaults to 1")
	nose, ok := f2.Keypoint(Nose)
	require.True(t, ok)
	require.NotNil(t, nose.World)
	assert.Equal(t, Vec3{X: 0.01, Y: -0.5, Z: 0.2}, *nose.World)
	assert.False(t, nose.HasZ)

	_, err = d.Next()
	assert.Equal(t, io.EOF, err)
}

func TestFrameDecoder_Malformed(t *testing.T) {
	t.Parallel()

	d := NewFrameDecoder(strings.NewReader("{\"keypoints\": {}}\n{oops\n"))
	_, err := d.Next()
	require.NoError(t, err)
	_, err = d.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestDecodeAll(t *testing.T) {
	t.Parallel()

	frames, err := DecodeAll(strings.NewReader("{\"timestamp_ms\": 1, \"keypoints\": {}}\n{\"timestamp_ms\": 2, \"keypoints\": {}}\n"))
	require.NoError(t, err)
	assert.Len(t, frames, 2)
}

func TestFrameEncoder_RoundTrip(t *testing.T) {
	t.Parallel()

	frames := []PoseFrame{
		{
			TimestampNanos: 1_700_000_000_123_456_789,
			Confidence:     0.8,
			Keypoints: map[Landmark]Keypoint{
				LeftKnee:  {X: 0.4, Y: 0.7, Visibility: 0.9, Presence: 0.95},
				RightKnee: {X: 0.6, Y: 0.7, Z: -0.2, HasZ: true, Visibility: 0.4, Presence: 1, World: &Vec3{X: 0.1, Y: 0.2, Z: 0.3}},
			},
		},
		{TimestampNanos: 1_700_000_000_156_789_012, Confidence: 1, Keypoints: map[Landmark]Keypoint{}},
	}

	var buf strings.Builder
	require.NoError(t, EncodeAll(&buf, frames))
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))

	got, err := DecodeAll(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, frames, got)
}
