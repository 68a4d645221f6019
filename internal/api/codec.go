package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

var errMissingData = errors.New("missing data")

// envelope is the wire format of every frame: {"event": ..., "data": ...}
type envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Inbound is one decoded client frame. Data is bound lazily since its
// shape depends on the event.
type Inbound struct {
	Event string
	bind  func(v interface{}) error
}

// Bind decodes the event data into v
func (in Inbound) Bind(v interface{}) error {
	return in.bind(v)
}

// Codec converts envelopes to and from WebSocket frames
type Codec interface {
	Name() string
	MessageType() int
	Encode(event string, data interface{}) ([]byte, error)
	Decode(msg []byte) (Inbound, error)
}

// CodecFromRequest picks the codec from the ?codec= query parameter.
// JSON text frames are the default.
func CodecFromRequest(r *http.Request) Codec {
	if r.URL.Query().Get("codec") == "msgpack" {
		return MsgpackCodec{}
	}
	return JSONCodec{}
}

// JSONCodec sends text frames
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) MessageType() int { return websocket.TextMessage }

func (JSONCodec) Encode(event string, data interface{}) ([]byte, error) {
	return json.Marshal(envelope{Event: event, Data: data})
}

func (JSONCodec) Decode(msg []byte) (Inbound, error) {
	var env struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(msg, &env); err != nil {
		return Inbound{}, err
	}
	return Inbound{
		Event: env.Event,
		bind: func(v interface{}) error {
			if len(env.Data) == 0 {
				return errMissingData
			}
			return json.Unmarshal(env.Data, v)
		},
	}, nil
}

// MsgpackCodec sends binary frames with the same field names as JSON
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }

func (MsgpackCodec) MessageType() int { return websocket.BinaryMessage }

func (MsgpackCodec) Encode(event string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(envelope{Event: event, Data: data}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (MsgpackCodec) Decode(msg []byte) (Inbound, error) {
	var env struct {
		Event string             `msgpack:"event"`
		Data  msgpack.RawMessage `msgpack:"data"`
	}
	if err := msgpack.Unmarshal(msg, &env); err != nil {
		return Inbound{}, err
	}
	return Inbound{
		Event: env.Event,
		bind: func(v interface{}) error {
			if len(env.Data) == 0 {
				return errMissingData
			}
			dec := msgpack.NewDecoder(bytes.NewReader(env.Data))
			dec.SetCustomStructTag("json")
			return dec.Decode(v)
		},
	}, nil
}
