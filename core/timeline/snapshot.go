package timeline

import "encoding/json"

// Snapshot serializes the structural state of the composition (ids, timing
// fields, references) for an external persistence layer. Clipboard contents
// are editor-local and not part of the snapshot.
func (c *Composition) Snapshot() ([]byte, error) {
	return json.Marshal(c)
}

// FromSnapshot restores a composition previously produced by Snapshot.
func FromSnapshot(data []byte) (*Composition, error) {
	var c Composition
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.Zoom == 0 {
		c.Zoom = 1.0
	}
	return &c, nil
}
