package l5sequence

import (
	"fmt"

	"github.com/banshee-data/motion.report/internal/fsutil"
)

// FileExt is the conventional extension for sequence files.
const FileExt = ".mseq"

// maxFileSize bounds LoadFile reads.
const maxFileSize = 64 << 20

// SaveFile writes s to path atomically.
func SaveFile(fsys fsutil.FileSystem, path string, s *Sequence) error {
	if err := fsutil.WriteFileAtomic(fsys, path, Marshal(s), 0644); err != nil {
		return fmt.Errorf("save sequence %s: %w", s.ID(), err)
	}
	diagf("saved sequence %s (%d frames) to %s", s.ID(), s.Len(), path)
	return nil
}

// LoadFile reads a sequence written by SaveFile.
func LoadFile(fsys fsutil.FileSystem, path string) (*Sequence, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load sequence: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("load sequence: %s is %d bytes, max %d", path, info.Size(), maxFileSize)
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load sequence: %w", err)
	}
	s, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("load sequence %s: %w", path, err)
	}
	return s, nil
}
