// Package client implements a small synchronous Client over the kvs wire
// protocol (SPEC_FULL.md §4, a supplemented feature absent from spec.md's
// server-only scope but present in original_source as the kvs-client
// binary's KvsClient). Grounded on internal/server.serve's use of
// wire.Encoder/wire.Decoder over a buffered connection, used here from the
// opposite end.
package client

import (
	"bufio"
	"net"

	"github.com/jassi-singh/kvs/internal/kverrors"
	"github.com/jassi-singh/kvs/internal/wire"
)

// Client is a single connection to a kvs server. It is not safe for
// concurrent use: requests and their responses are strictly one-at-a-time
// on the underlying connection.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
	enc  *wire.Encoder
	dec  *wire.Decoder
}

// Dial opens a connection to a kvs server listening at addr.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, kverrors.Io("client: dial", err)
	}

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	return &Client{
		conn: conn,
		r:    r,
		w:    w,
		enc:  wire.NewEncoder(w),
		dec:  wire.NewDecoder(r),
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) roundTrip(req wire.Request) (wire.Response, error) {
	var resp wire.Response

	if err := c.enc.EncodeRequest(req); err != nil {
		return resp, err
	}
	if err := c.w.Flush(); err != nil {
		return resp, kverrors.Io("client: flush", err)
	}
	if err := c.dec.DecodeResponse(&resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Get retrieves the value of key. found reports whether the key existed;
// err is non-nil only for a transport or server-side failure distinct from
// a missing key.
func (c *Client) Get(key string) (value string, found bool, err error) {
	resp, err := c.roundTrip(wire.GetRequest(key))
	if err != nil {
		return "", false, err
	}
	if !resp.Ok {
		return "", false, kverrors.String(resp.Err)
	}
	return resp.Value, resp.Found, nil
}

// Set stores value under key, overwriting any existing value.
func (c *Client) Set(key, value string) error {
	resp, err := c.roundTrip(wire.SetRequest(key, value))
	if err != nil {
		return err
	}
	if !resp.Ok {
		return kverrors.String(resp.Err)
	}
	return nil
}

// Remove deletes key. It returns kverrors.ErrKeyNotFound (by message, since
// the error crosses the wire as text) if key does not exist.
func (c *Client) Remove(key string) error {
	resp, err := c.roundTrip(wire.RemoveRequest(key))
	if err != nil {
		return err
	}
	if !resp.Ok {
		return kverrors.String(resp.Err)
	}
	return nil
}
