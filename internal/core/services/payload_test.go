package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPayload_WireFormat(t *testing.T) {
	payload := BuildPayload(2, 1, []byte{3, 2, 1, 4, 0, 255, 10, 4})

	want := `{"width": 2,"height": 1,"encoding-order": "RGBA","image": [3, 2, 1, 4, 0, 255, 10, 4]}`
	assert.Equal(t, want, payload)
}

func TestBuildPayload_EmptyImage(t *testing.T) {
	payload := BuildPayload(0, 0, nil)

	assert.Equal(t, `{"width": 0,"height": 0,"encoding-order": "RGBA","image": []}`, payload)
}

// The hand-assembled payload must still be valid JSON for consumers that
// parse rather than pattern-match.
func TestBuildPayload_ParsesAsJSON(t *testing.T) {
	payload := BuildPayload(1, 1, []byte{1, 2, 3, 4})

	var decoded struct {
		Width         uint32  `json:"width"`
		Height        uint32  `json:"height"`
		EncodingOrder string  `json:"encoding-order"`
		Image         []uint8 `json:"image"`
	}
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))

	assert.Equal(t, uint32(1), decoded.Width)
	assert.Equal(t, uint32(1), decoded.Height)
	assert.Equal(t, "RGBA", decoded.EncodingOrder)
	assert.Equal(t, []uint8{1, 2, 3, 4}, decoded.Image)
}
