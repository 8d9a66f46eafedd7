// Package wire implements the request/response protocol codec: the
// self-delimiting JSON records exchanged back-to-back on a TCP connection
// (spec.md §4.6). There is no length prefix — record boundaries are
// recovered purely by streaming JSON decoding, the same technique
// keydir.Replay uses for the on-disk log.
//
// Grounded on vi88i-kvstash's KVStashRequest/KVStashResponse
// (models/data.go) for the flat request/response shape, generalized from
// its one-shot http json.Decoder to the persistent, pipelined streaming
// decoder the original project's serde_json::Deserializer::into_iter
// drives over a raw TCP connection (original_source/src/server.rs).
package wire

import (
	"encoding/json"
	"io"

	"github.com/jassi-singh/kvs/internal/kverrors"
)

// Op names the requested operation; the response carries the same Op so a
// client reading a stream of responses can tell which request each
// answers without correlating by position alone.
type Op string

const (
	OpGet    Op = "get"
	OpSet    Op = "set"
	OpRemove Op = "remove"
)

// Request is the wire shape for Get/Set/Remove.
type Request struct {
	Op    Op     `json:"op"`
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// GetRequest builds a Get request.
func GetRequest(key string) Request { return Request{Op: OpGet, Key: key} }

// SetRequest builds a Set request.
func SetRequest(key, value string) Request { return Request{Op: OpSet, Key: key, Value: value} }

// RemoveRequest builds a Remove request.
func RemoveRequest(key string) Request { return Request{Op: OpRemove, Key: key} }

// Response is the wire shape for every response variant. Ok is false iff
// Err carries the server-rendered error text. For a successful Get, Found
// reports whether the key existed and Value carries its value when it
// did — this is the wire encoding of Option<String>.
type Response struct {
	Op    Op     `json:"op"`
	Ok    bool   `json:"ok"`
	Found bool   `json:"found,omitempty"`
	Value string `json:"value,omitempty"`
	Err   string `json:"err,omitempty"`
}

// OkGet builds a successful Get response.
func OkGet(value string, found bool) Response {
	return Response{Op: OpGet, Ok: true, Found: found, Value: value}
}

// OkSet builds a successful Set response.
func OkSet() Response { return Response{Op: OpSet, Ok: true} }

// OkRemove builds a successful Remove response.
func OkRemove() Response { return Response{Op: OpRemove, Ok: true} }

// ErrResponse builds a failure response for op carrying msg as the
// server-rendered error text.
func ErrResponse(op Op, msg string) Response {
	return Response{Op: op, Ok: false, Err: msg}
}

// Encoder writes self-delimiting JSON records to an underlying writer.
type Encoder struct {
	enc *json.Encoder
}

// NewEncoder wraps w.
func NewEncoder(w io.Writer) *Encoder { return &Encoder{enc: json.NewEncoder(w)} }

// EncodeRequest writes req as the next record.
func (e *Encoder) EncodeRequest(req Request) error {
	if err := e.enc.Encode(req); err != nil {
		return kverrors.Serde("wire: encode request", err)
	}
	return nil
}

// EncodeResponse writes resp as the next record.
func (e *Encoder) EncodeResponse(resp Response) error {
	if err := e.enc.Encode(resp); err != nil {
		return kverrors.Serde("wire: encode response", err)
	}
	return nil
}

// Decoder reads self-delimiting JSON records from an underlying reader,
// one value per call, leaving the stream positioned after the consumed
// value.
type Decoder struct {
	dec *json.Decoder
}

// NewDecoder wraps r.
func NewDecoder(r io.Reader) *Decoder { return &Decoder{dec: json.NewDecoder(r)} }

// DecodeRequest reads the next request record. Returns io.EOF on clean
// stream end (no bytes of a partial record pending).
func (d *Decoder) DecodeRequest(req *Request) error {
	if err := d.dec.Decode(req); err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return kverrors.Serde("wire: decode request", err)
	}
	return nil
}

// DecodeResponse reads the next response record.
func (d *Decoder) DecodeResponse(resp *Response) error {
	if err := d.dec.Decode(resp); err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return kverrors.Serde("wire: decode response", err)
	}
	return nil
}
