package wire

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RequestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"get", GetRequest("k")},
		{"set", SetRequest("k", "v")},
		{"remove", RemoveRequest("k")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewEncoder(&buf).EncodeRequest(tt.req))

			var got Request
			require.NoError(t, NewDecoder(&buf).DecodeRequest(&got))
			assert.Equal(t, tt.req, got)
		})
	}
}

func TestEncodeDecode_ResponseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		resp Response
	}{
		{"ok get found", OkGet("v", true)},
		{"ok get not found", OkGet("", false)},
		{"ok set", OkSet()},
		{"ok remove", OkRemove()},
		{"error", ErrResponse(OpRemove, "Key not found")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewEncoder(&buf).EncodeResponse(tt.resp))

			var got Response
			require.NoError(t, NewDecoder(&buf).DecodeResponse(&got))
			assert.Equal(t, tt.resp, got)
		})
	}
}

func TestDecoder_PipelinedRecords(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.EncodeRequest(GetRequest("a")))
	require.NoError(t, enc.EncodeRequest(SetRequest("b", "c")))

	dec := NewDecoder(&buf)

	var first, second Request
	require.NoError(t, dec.DecodeRequest(&first))
	require.NoError(t, dec.DecodeRequest(&second))
	assert.Equal(t, GetRequest("a"), first)
	assert.Equal(t, SetRequest("b", "c"), second)

	var third Request
	err := dec.DecodeRequest(&third)
	assert.ErrorIs(t, err, io.EOF)
}
