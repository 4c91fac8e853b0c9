package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"chromacast/internal/core/domain"

	"go.uber.org/zap"
)

// FileSource replays raw frame dumps from a directory as if they came
// from a live capture device. Each file holds one frame of interleaved
// B,G,R,A bytes for the configured geometry; files are delivered in
// lexical order at the configured rate. With Loop off the source signals
// end-of-stream after the last file, which terminates the pipeline the
// same way a removed camera would.
type FileSource struct {
	dir      string
	pattern  string
	width    uint32
	height   uint32
	interval time.Duration
	loop     bool
	logger   *zap.SugaredLogger

	files   []string
	idx     int
	started bool
	stopC   chan struct{}
}

type FileSourceConfig struct {
	Dir     string
	Pattern string
	Width   uint32
	Height  uint32
	FPS     float64
	Loop    bool
}

func NewFileSource(cfg FileSourceConfig, logger *zap.SugaredLogger) *FileSource {
	fps := cfg.FPS
	if fps <= 0 {
		fps = 10
	}
	pattern := cfg.Pattern
	if pattern == "" {
		pattern = "*.raw"
	}
	return &FileSource{
		dir:      cfg.Dir,
		pattern:  pattern,
		width:    cfg.Width,
		height:   cfg.Height,
		interval: time.Duration(float64(time.Second) / fps),
		loop:     cfg.Loop,
		logger:   logger,
		stopC:    make(chan struct{}),
	}
}

func (s *FileSource) Start() error {
	matches, err := filepath.Glob(filepath.Join(s.dir, s.pattern))
	if err != nil {
		return fmt.Errorf("globbing %s/%s: %w", s.dir, s.pattern, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("no frame files matching %s in %s", s.pattern, s.dir)
	}
	sort.Strings(matches)

	s.files = matches
	s.started = true
	s.logger.Infow("file source started",
		"dir", s.dir,
		"frames", len(matches),
		"fps", float64(time.Second)/float64(s.interval),
		"loop", s.loop,
	)
	return nil
}

// WaitForFrame blocks for one frame interval, then yields the next file.
// ok=false once the sequence is exhausted (loop off) or the source was
// stopped. Files whose size does not match the geometry are skipped; the
// capture contract promises whole pixel groups, not whole directories.
func (s *FileSource) WaitForFrame() (*domain.RawFrame, bool) {
	if !s.started {
		return nil, false
	}

	want := int(s.width) * int(s.height) * 4

	for {
		if s.idx >= len(s.files) {
			if !s.loop {
				return nil, false
			}
			s.idx = 0
		}

		select {
		case <-s.stopC:
			return nil, false
		case <-time.After(s.interval):
		}

		path := s.files[s.idx]
		s.idx++

		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warnw("skipping unreadable frame file", "path", path, "error", err)
			continue
		}
		if len(data) != want {
			s.logger.Warnw("skipping frame file with wrong size",
				"path", path, "size", len(data), "want", want)
			continue
		}

		return &domain.RawFrame{Width: s.width, Height: s.height, Data: data}, true
	}
}

func (s *FileSource) Stop() error {
	select {
	case <-s.stopC:
	default:
		close(s.stopC)
	}
	return nil
}
