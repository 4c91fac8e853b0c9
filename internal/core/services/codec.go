package services

import "chromacast/internal/core/domain"

// PixelCodec converts between the capture device's interleaved byte
// buffers and canonical pixels. The device delivers channels as B,G,R,A;
// encoded output is emitted R,G,B,A, so a full decode/encode round trip
// swaps the R and B bytes relative to the raw input. Consumers are told
// about the output order via the payload's encoding-order field.
type PixelCodec struct{}

func NewPixelCodec() *PixelCodec {
	return &PixelCodec{}
}

// Decode groups raw into 4-byte windows and maps each to a Pixel.
// Trailing bytes that do not form a complete window are dropped; the
// capture contract always delivers whole pixel groups.
func (c *PixelCodec) Decode(raw []byte) []domain.Pixel {
	pixels := make([]domain.Pixel, 0, len(raw)/4)
	for i := 0; i+4 <= len(raw); i += 4 {
		pixels = append(pixels, domain.Pixel{
			R: raw[i+2],
			G: raw[i+1],
			B: raw[i],
			A: raw[i+3],
		})
	}
	return pixels
}

// Encode emits each pixel as R,G,B,A and concatenates.
func (c *PixelCodec) Encode(pixels []domain.Pixel) []byte {
	raw := make([]byte, 0, len(pixels)*4)
	for _, p := range pixels {
		raw = append(raw, p.R, p.G, p.B, p.A)
	}
	return raw
}
