package capture

import (
	"time"

	"chromacast/internal/core/domain"
)

// SyntheticSource generates frames in memory: a key-colored backdrop with
// a moving non-key block, so the chroma filter has something to do during
// bring-up and demos without a camera attached. Frames are produced in
// the device wire order (B,G,R,A), matching what a real capture device
// would hand the codec.
type SyntheticSource struct {
	width    uint32
	height   uint32
	interval time.Duration
	kind     domain.FilterKind

	frameNo int
	maxN    int // 0 means unbounded
	started bool
	stopC   chan struct{}
}

func NewSyntheticSource(width, height uint32, fps float64, kind domain.FilterKind, maxFrames int) *SyntheticSource {
	if fps <= 0 {
		fps = 10
	}
	return &SyntheticSource{
		width:    width,
		height:   height,
		interval: time.Duration(float64(time.Second) / fps),
		kind:     kind,
		maxN:     maxFrames,
		stopC:    make(chan struct{}),
	}
}

func (s *SyntheticSource) Start() error {
	s.started = true
	return nil
}

func (s *SyntheticSource) WaitForFrame() (*domain.RawFrame, bool) {
	if !s.started {
		return nil, false
	}
	if s.maxN > 0 && s.frameNo >= s.maxN {
		return nil, false
	}

	select {
	case <-s.stopC:
		return nil, false
	case <-time.After(s.interval):
	}

	frame := s.render(s.frameNo)
	s.frameNo++
	return frame, true
}

func (s *SyntheticSource) Stop() error {
	select {
	case <-s.stopC:
	default:
		close(s.stopC)
	}
	return nil
}

// render paints the backdrop in the key color and walks a gray block one
// column per frame. Wire order is B,G,R,A.
func (s *SyntheticSource) render(n int) *domain.RawFrame {
	w, h := int(s.width), int(s.height)
	data := make([]byte, w*h*4)

	var keyB, keyG, keyR uint8
	switch s.kind {
	case domain.RedKey:
		keyB, keyG, keyR = 20, 20, 200
	case domain.BlueKey:
		keyB, keyG, keyR = 200, 20, 20
	case domain.GreenKey:
		keyB, keyG, keyR = 20, 200, 20
	}

	blockW := w / 4
	if blockW == 0 {
		blockW = 1
	}
	blockX := 0
	if w > blockW {
		blockX = n % (w - blockW)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			if x >= blockX && x < blockX+blockW {
				data[i], data[i+1], data[i+2] = 90, 90, 90
			} else {
				data[i], data[i+1], data[i+2] = keyB, keyG, keyR
			}
			data[i+3] = 255
		}
	}

	return &domain.RawFrame{Width: s.width, Height: s.height, Data: data}
}
