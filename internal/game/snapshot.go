package game

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// EntitySnapshot is an immutable copy of an entity for the wire.
type EntitySnapshot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Color  Color   `json:"color"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Slot   int     `json:"playerNum"`
	IsBot  bool    `json:"isBot"`
}

// EntityEntry pairs an identity with its entity state.
type EntityEntry struct {
	ID     string
	Entity EntitySnapshot
}

// OrderedEntities is the entity mapping in insertion order. It encodes as an
// object whose keys keep that order, which is the collision order.
type OrderedEntities []EntityEntry

// Get returns the entity for an identity.
func (o OrderedEntities) Get(id string) (EntitySnapshot, bool) {
	for _, e := range o {
		if e.ID == id {
			return e.Entity, true
		}
	}
	return EntitySnapshot{}, false
}

// MarshalJSON writes the entries as one JSON object in order.
func (o OrderedEntities) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.ID)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Entity)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping key order.
func (o *OrderedEntities) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*o = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("entities: expected object, got %v", tok)
	}

	entries := OrderedEntities{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("entities: expected key, got %v", tok)
		}
		var e EntitySnapshot
		if err := dec.Decode(&e); err != nil {
			return fmt.Errorf("entities %s: %w", id, err)
		}
		entries = append(entries, EntityEntry{ID: id, Entity: e})
	}
	*o = entries
	return nil
}

// EncodeMsgpack writes the entries as one msgpack map in order.
func (o OrderedEntities) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(len(o)); err != nil {
		return err
	}
	for _, e := range o {
		if err := enc.EncodeString(e.ID); err != nil {
			return err
		}
		if err := enc.Encode(e.Entity); err != nil {
			return err
		}
	}
	return nil
}

// DecodeMsgpack reads a msgpack map keeping key order.
func (o *OrderedEntities) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}
	if n < 0 {
		*o = nil
		return nil
	}
	entries := make(OrderedEntities, 0, n)
	for i := 0; i < n; i++ {
		id, err := dec.DecodeString()
		if err != nil {
			return err
		}
		var e EntitySnapshot
		if err := dec.Decode(&e); err != nil {
			return fmt.Errorf("entities %s: %w", id, err)
		}
		entries = append(entries, EntityEntry{ID: id, Entity: e})
	}
	*o = entries
	return nil
}

// BallSnapshot is an immutable copy of the ball.
type BallSnapshot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Color  Color   `json:"color"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
}

// Snapshot is the full outbound world state, produced once per tick.
// It is never mutated after publication and may be shared between readers.
type Snapshot struct {
	Tick        uint64            `json:"tick"`
	Running     bool              `json:"running"`
	Players     OrderedEntities   `json:"players"`
	Names       map[string]string `json:"names"`
	Ball        *BallSnapshot     `json:"ball"`
	Score       Score             `json:"score"`
	Stats       map[string]Stats  `json:"stats"`
	ElapsedTime int64             `json:"elapsedTime"` // ms since match start
}

// Snapshot copies the world into a new immutable snapshot.
func (w *World) Snapshot() *Snapshot {
	snap := &Snapshot{
		Tick:    w.tick,
		Running: w.running,
		Players: make(OrderedEntities, 0, len(w.entities)),
		Names:   make(map[string]string, len(w.names)),
		Score:   w.score,
		Stats:   make(map[string]Stats, len(w.stats)),
	}

	for _, e := range w.entities {
		snap.Players = append(snap.Players, EntityEntry{
			ID: e.ID,
			Entity: EntitySnapshot{
				X:      e.X,
				Y:      e.Y,
				Radius: e.Radius,
				Color:  e.Color,
				DX:     e.DX,
				DY:     e.DY,
				Slot:   e.Slot,
				IsBot:  e.IsBot(),
			},
		})
	}
	for id, name := range w.names {
		snap.Names[id] = name
	}
	for id, s := range w.stats {
		snap.Stats[id] = *s
	}

	if w.ball != nil {
		snap.Ball = &BallSnapshot{
			X:      w.ball.X,
			Y:      w.ball.Y,
			Radius: w.ball.Radius,
			Color:  w.ball.Color,
			DX:     w.ball.DX,
			DY:     w.ball.DY,
		}
	}
	if w.running {
		snap.ElapsedTime = w.now().Sub(w.startTime).Milliseconds()
	}

	return snap
}
