package services

import (
	"strconv"
	"strings"
)

// EncodingOrder is the channel order of the image bytes in every payload.
// Advisory metadata for consumers; it describes the post-encode order,
// not the device's capture order.
const EncodingOrder = "RGBA"

// BuildPayload serializes one processed frame as a single-line JSON
// object. The key order and the literal byte-array rendering are part of
// the wire contract, so the payload is assembled by hand instead of going
// through a JSON encoder that would not guarantee either.
func BuildPayload(width, height uint32, image []byte) string {
	var b strings.Builder
	// "image": [n, n, ...] dominates; reserve roughly 4 bytes per element.
	b.Grow(len(image)*4 + 64)

	b.WriteString(`{"width": `)
	b.WriteString(strconv.FormatUint(uint64(width), 10))
	b.WriteString(`,"height": `)
	b.WriteString(strconv.FormatUint(uint64(height), 10))
	b.WriteString(`,"encoding-order": "`)
	b.WriteString(EncodingOrder)
	b.WriteString(`","image": [`)
	for i, v := range image {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(int(v)))
	}
	b.WriteString("]}")
	return b.String()
}
