package l5sequence

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/banshee-data/motion.report/internal/motion/l2angles"
)

// Blob layout:
//
//	magic "MSEQ" | version byte | protobuf-wire message | CRC-32 (IEEE, big endian) of message
//
// Sequence message:
//
//	1: id (bytes)
//	2: name (bytes)
//	3: long_recording (varint)
//	4: frame (bytes, repeated)
//
// Frame message:
//
//	1: timestamp_nanos (zigzag varint)
//	2: angle (bytes, repeated, sorted by joint)
//
// Angle message:
//
//	1: joint (bytes)
//	2: degrees (fixed64, IEEE-754 bits)
//	3: valid (varint)
const (
	blobMagic   = "MSEQ"
	blobVersion = 1
	headerLen   = len(blobMagic) + 1
	trailerLen  = 4
)

const (
	seqID            protowire.Number = 1
	seqName          protowire.Number = 2
	seqLongRecording protowire.Number = 3
	seqFrame         protowire.Number = 4

	frameTimestamp protowire.Number = 1
	frameAngle     protowire.Number = 2

	angleJoint   protowire.Number = 1
	angleDegrees protowire.Number = 2
	angleValid   protowire.Number = 3
)

// Marshal encodes s as an opaque blob. Unmarshal(Marshal(s)) reproduces
// s exactly, including undefined markers and timestamps.
func Marshal(s *Sequence) []byte {
	var msg []byte
	msg = protowire.AppendTag(msg, seqID, protowire.BytesType)
	msg = protowire.AppendString(msg, s.id)
	msg = protowire.AppendTag(msg, seqName, protowire.BytesType)
	msg = protowire.AppendString(msg, s.name)
	msg = protowire.AppendTag(msg, seqLongRecording, protowire.VarintType)
	msg = protowire.AppendVarint(msg, protowire.EncodeBool(s.longRecording))

	var frame []byte
	for _, f := range s.frames {
		frame = appendFrame(frame[:0], f)
		msg = protowire.AppendTag(msg, seqFrame, protowire.BytesType)
		msg = protowire.AppendBytes(msg, frame)
	}

	out := make([]byte, 0, headerLen+len(msg)+trailerLen)
	out = append(out, blobMagic...)
	out = append(out, blobVersion)
	out = append(out, msg...)
	return binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(msg))
}

func appendFrame(b []byte, f Frame) []byte {
	b = protowire.AppendTag(b, frameTimestamp, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(f.TimestampNanos))

	var entry []byte
	for _, j := range f.Angles.SortedJoints() {
		a := f.Angles[j]
		entry = entry[:0]
		entry = protowire.AppendTag(entry, angleJoint, protowire.BytesType)
		entry = protowire.AppendString(entry, string(j))
		entry = protowire.AppendTag(entry, angleDegrees, protowire.Fixed64Type)
		entry = protowire.AppendFixed64(entry, math.Float64bits(a.Degrees))
		entry = protowire.AppendTag(entry, angleValid, protowire.VarintType)
		entry = protowire.AppendVarint(entry, protowire.EncodeBool(a.Valid))

		b = protowire.AppendTag(b, frameAngle, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b
}

// Unmarshal decodes a blob produced by Marshal. Any malformed input
// yields an error wrapping ErrSerializationCorrupt.
func Unmarshal(data []byte) (*Sequence, error) {
	if len(data) < headerLen+trailerLen {
		return nil, corrupt("blob is %d bytes", len(data))
	}
	if !bytes.Equal(data[:len(blobMagic)], []byte(blobMagic)) {
		return nil, corrupt("bad magic %q", data[:len(blobMagic)])
	}
	if v := data[len(blobMagic)]; v != blobVersion {
		return nil, corrupt("unsupported version %d", v)
	}

	msg := data[headerLen : len(data)-trailerLen]
	want := binary.BigEndian.Uint32(data[len(data)-trailerLen:])
	if got := crc32.ChecksumIEEE(msg); got != want {
		return nil, corrupt("checksum mismatch: %08x != %08x", got, want)
	}

	s := &Sequence{}
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if n < 0 {
			return nil, corrupt("sequence tag: %v", protowire.ParseError(n))
		}
		msg = msg[n:]

		switch {
		case num == seqID && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(msg)
			if n < 0 {
				return nil, corrupt("id: %v", protowire.ParseError(n))
			}
			s.id = v
			msg = msg[n:]
		case num == seqName && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(msg)
			if n < 0 {
				return nil, corrupt("name: %v", protowire.ParseError(n))
			}
			s.name = v
			msg = msg[n:]
		case num == seqLongRecording && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(msg)
			if n < 0 {
				return nil, corrupt("long_recording: %v", protowire.ParseError(n))
			}
			s.longRecording = protowire.DecodeBool(v)
			msg = msg[n:]
		case num == seqFrame && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(msg)
			if n < 0 {
				return nil, corrupt("frame %d: %v", len(s.frames), protowire.ParseError(n))
			}
			f, err := decodeFrame(v)
			if err != nil {
				return nil, corrupt("frame %d: %v", len(s.frames), err)
			}
			s.frames = append(s.frames, f)
			msg = msg[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if n < 0 {
				return nil, corrupt("field %d: %v", num, protowire.ParseError(n))
			}
			msg = msg[n:]
		}
	}

	if !sort.SliceIsSorted(s.frames, func(a, b int) bool {
		return s.frames[a].TimestampNanos < s.frames[b].TimestampNanos
	}) {
		return nil, corrupt("frames out of order")
	}
	return s, nil
}

func decodeFrame(b []byte) (Frame, error) {
	f := Frame{Angles: l2angles.AngleSet{}}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Frame{}, protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == frameTimestamp && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Frame{}, protowire.ParseError(n)
			}
			f.TimestampNanos = protowire.DecodeZigZag(v)
			b = b[n:]
		case num == frameAngle && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Frame{}, protowire.ParseError(n)
			}
			j, a, err := decodeAngle(v)
			if err != nil {
				return Frame{}, err
			}
			if _, dup := f.Angles[j]; dup {
				return Frame{}, fmt.Errorf("duplicate joint %q", j)
			}
			f.Angles[j] = a
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Frame{}, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return f, nil
}

func decodeAngle(b []byte) (l2angles.Joint, l2angles.Angle, error) {
	var (
		joint l2angles.Joint
		a     l2angles.Angle
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", a, protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == angleJoint && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return "", a, protowire.ParseError(n)
			}
			joint = l2angles.Joint(v)
			b = b[n:]
		case num == angleDegrees && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return "", a, protowire.ParseError(n)
			}
			a.Degrees = math.Float64frombits(v)
			b = b[n:]
		case num == angleValid && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return "", a, protowire.ParseError(n)
			}
			a.Valid = protowire.DecodeBool(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return "", a, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	if joint == "" {
		return "", a, fmt.Errorf("angle without joint")
	}
	return joint, a, nil
}

func corrupt(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSerializationCorrupt, fmt.Sprintf(format, args...))
}
