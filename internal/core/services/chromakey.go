package services

import (
	"fmt"

	"chromacast/internal/core/domain"
)

// ChromaKeyConfig carries the classification tunables. The defaults are
// the production values; changing them changes which pixels are treated
// as background.
type ChromaKeyConfig struct {
	KeyMin            uint8
	KeyMax            uint8
	ReferenceLevel    uint8
	VarianceThreshold uint32
}

func DefaultChromaKeyConfig() ChromaKeyConfig {
	return ChromaKeyConfig{
		KeyMin:            150,
		KeyMax:            255,
		ReferenceLevel:    20,
		VarianceThreshold: 120,
	}
}

// ChromaKeyFilter substitutes background pixels wherever the per-pixel
// classification fires. Kind is fixed for the filter's lifetime.
type ChromaKeyFilter struct {
	kind domain.FilterKind
	cfg  ChromaKeyConfig
}

func NewChromaKeyFilter(kind domain.FilterKind, cfg ChromaKeyConfig) *ChromaKeyFilter {
	return &ChromaKeyFilter{kind: kind, cfg: cfg}
}

func (f *ChromaKeyFilter) Kind() domain.FilterKind {
	return f.kind
}

// Classify reports whether a pixel belongs to the keyed background: the
// key channel sits in [KeyMin, KeyMax) and the two remaining channels are
// both close to the reference level.
func (f *ChromaKeyFilter) Classify(p domain.Pixel) bool {
	var key uint8
	var ref0, ref1 uint8

	switch f.kind {
	case domain.RedKey:
		key, ref0, ref1 = p.R, p.G, p.B
	case domain.BlueKey:
		key, ref0, ref1 = p.B, p.G, p.R
	case domain.GreenKey:
		key, ref0, ref1 = p.G, p.B, p.R
	}

	variance := absDiff(uint32(ref0), uint32(f.cfg.ReferenceLevel)) +
		absDiff(uint32(ref1), uint32(f.cfg.ReferenceLevel))

	return key >= f.cfg.KeyMin && key < f.cfg.KeyMax && variance < f.cfg.VarianceThreshold
}

// Apply produces the filtered frame: for every classified pixel the
// background pixel is substituted, all others pass through unchanged.
// The second return value is the number of substituted pixels. Both
// frames come from the same capture session, so a geometry mismatch is
// an invariant violation and aborts processing.
func (f *ChromaKeyFilter) Apply(background, current []domain.Pixel) ([]domain.Pixel, int, error) {
	if len(background) != len(current) {
		return nil, 0, fmt.Errorf("%w: background=%d current=%d",
			domain.ErrGeometryMismatch, len(background), len(current))
	}

	out := make([]domain.Pixel, len(current))
	keyed := 0
	for i, p := range current {
		if f.Classify(p) {
			out[i] = background[i]
			keyed++
		} else {
			out[i] = p
		}
	}
	return out, keyed, nil
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
