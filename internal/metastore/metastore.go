// Package metastore reads and writes a table's ".metadata/<name>.json"
// sidecar: the column definitions, constraints and SERIAL counters that
// accompany every CSV rows file. encoding/json does not preserve map key
// order on its own, so declaration order is carried alongside the lookup
// map and enforced through custom MarshalJSON/UnmarshalJSON, the same
// spirit as the teacher's core.Column using JSON struct tags to pin down
// exactly which fields serialize and under what name.
package metastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"csvgres/internal/csverr"
	"csvgres/internal/ioworker"
)

// ColumnMeta is the persisted description of one column, matching the
// spec's ColumnMeta fields: only the fields that apply to a given column
// are present in the encoded JSON.
type ColumnMeta struct {
	Type                 string `json:"type"`
	ArrayType            string `json:"array_type,omitempty"`
	IsSerial             bool   `json:"is_serial,omitempty"`
	NotNull              bool   `json:"not_null,omitempty"`
	PrimaryKey           bool   `json:"primary_key,omitempty"`
	Unique               bool   `json:"unique,omitempty"`
	Default              *RawDefault `json:"default,omitempty"`
	InitialCounterValue  int64  `json:"initial_counter_value,omitempty"`
	AutoIncrementCounter int64  `json:"auto_increment_counter,omitempty"`
}

// RawDefault wraps an unparsed DEFAULT literal so it can marshal either
// as a JSON string (the common case and the CURRENT_TIMESTAMP sentinel)
// or as an empty JSON array (ARRAY columns default to "[]").
type RawDefault struct {
	IsArray bool
	Literal string
}

func (d RawDefault) MarshalJSON() ([]byte, error) {
	if d.IsArray {
		return []byte("[]"), nil
	}
	return json.Marshal(d.Literal)
}

func (d *RawDefault) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		d.IsArray = true
		return nil
	}
	return json.Unmarshal(data, &d.Literal)
}

func StringDefault(s string) *RawDefault { return &RawDefault{Literal: s} }
func ArrayDefault() *RawDefault          { return &RawDefault{IsArray: true} }

// Metadata is the in-memory, order-preserving form of a table's sidecar:
// {"columns": {...}} with declaration order equal to CSV header order.
type Metadata struct {
	order []string
	cols  map[string]*ColumnMeta
}

func New() *Metadata {
	return &Metadata{cols: map[string]*ColumnMeta{}}
}

// Add appends a column in declaration order. Adding the same name twice
// replaces the metadata but keeps the original position.
func (m *Metadata) Add(name string, meta *ColumnMeta) {
	if _, exists := m.cols[name]; !exists {
		m.order = append(m.order, name)
	}
	m.cols[name] = meta
}

// Columns returns column names in declaration order.
func (m *Metadata) Columns() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

func (m *Metadata) Get(name string) (*ColumnMeta, bool) {
	c, ok := m.cols[name]
	return c, ok
}

func (m *Metadata) Has(name string) bool {
	_, ok := m.cols[name]
	return ok
}

func (m *Metadata) Len() int { return len(m.order) }

type jsonMetadata struct {
	Columns *orderedColumns `json:"columns"`
}

// orderedColumns marshals/unmarshals {name: ColumnMeta, ...} while
// preserving the order the names were added in, which plain
// map[string]*ColumnMeta cannot guarantee through encoding/json.
type orderedColumns struct {
	order []string
	cols  map[string]*ColumnMeta
}

func (o *orderedColumns) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range o.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(o.cols[name])
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *orderedColumns) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object for columns")
	}
	o.cols = map[string]*ColumnMeta{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected string key in columns object")
		}
		var cm ColumnMeta
		if err := dec.Decode(&cm); err != nil {
			return err
		}
		o.order = append(o.order, key)
		o.cols[key] = &cm
	}
	return nil
}

// MarshalJSON renders the metadata with 2-space indentation, per spec.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	wrapper := jsonMetadata{Columns: &orderedColumns{order: m.order, cols: m.cols}}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(wrapper); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	var wrapper jsonMetadata
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	if wrapper.Columns == nil {
		m.order = nil
		m.cols = map[string]*ColumnMeta{}
		return nil
	}
	m.order = wrapper.Columns.order
	m.cols = wrapper.Columns.cols
	return nil
}

// Load reads and parses a metadata sidecar off the worker pool.
func Load(ctx context.Context, pool *ioworker.Pool, path string) (*Metadata, error) {
	data, err := ioworker.Submit(ctx, pool, func() ([]byte, error) {
		return os.ReadFile(path)
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, csverr.NotFoundf("metadata %s does not exist", path)
		}
		return nil, csverr.IO("failed to read metadata", err)
	}
	m := New()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, csverr.IO("failed to parse metadata", err)
	}
	return m, nil
}

// Save writes the metadata sidecar off the worker pool, writing to a
// temp file and renaming into place to narrow (not eliminate) the window
// for a torn write, per the engine's documented non-atomicity.
func Save(ctx context.Context, pool *ioworker.Pool, path string, m *Metadata) error {
	data, err := m.MarshalJSON()
	if err != nil {
		return csverr.IO("failed to encode metadata", err)
	}
	data = append(data, '\n')
	return ioworker.SubmitVoid(ctx, pool, func() error {
		return writeFileAtomic(path, data)
	})
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return csverr.IO("failed to write temp metadata file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return csverr.IO("failed to rename temp metadata file", err)
	}
	return nil
}
