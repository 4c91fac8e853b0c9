package domain

import "fmt"

// Pixel is the canonical 4-channel color value used everywhere past the
// capture boundary. Channel order is R, G, B, A regardless of how the
// capture device lays the bytes out on the wire.
type Pixel struct {
	R uint8
	G uint8
	B uint8
	A uint8
}

// RawFrame is a single frame as delivered by a capture source: device
// geometry plus the interleaved byte buffer in the device's native order.
type RawFrame struct {
	Width  uint32
	Height uint32
	Data   []byte
}

// PixelCount returns the number of complete pixels in the buffer.
func (f *RawFrame) PixelCount() int {
	return len(f.Data) / 4
}

// FilterKind selects which channel acts as the chroma key.
type FilterKind int

const (
	RedKey FilterKind = iota
	BlueKey
	GreenKey
)

func (k FilterKind) String() string {
	switch k {
	case RedKey:
		return "red"
	case BlueKey:
		return "blue"
	case GreenKey:
		return "green"
	default:
		return fmt.Sprintf("FilterKind(%d)", int(k))
	}
}

// ParseFilterKind maps a config value to a FilterKind.
func ParseFilterKind(s string) (FilterKind, error) {
	switch s {
	case "red":
		return RedKey, nil
	case "blue":
		return BlueKey, nil
	case "green":
		return GreenKey, nil
	default:
		return RedKey, fmt.Errorf("unknown filter kind: %q", s)
	}
}
