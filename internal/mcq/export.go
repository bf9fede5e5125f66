package mcq

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// MarshalJSON writes the pool as an object keyed by index, in numeric order.
func (p Pool) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range p.Keys() {
		if i > 0 {
			b.WriteByte(',')
		}
		data, err := json.Marshal(p[k])
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "%q:", strconv.Itoa(k))
		b.Write(data)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func (p *Pool) UnmarshalJSON(data []byte) error {
	var raw map[string]Question
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Pool, len(raw))
	for k, q := range raw {
		n, err := strconv.Atoi(k)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid question index %q", k)
		}
		out[n] = q
	}
	*p = out
	return nil
}

// SourcePool is one source's pool.
type SourcePool struct {
	Source string
	Pool   Pool
}

// Pools is an ordered set of per-source pools. It exports as
// {source: {index: question}} with sources in order.
type Pools []SourcePool

// Get returns the pool for source.
func (ps Pools) Get(source string) (Pool, bool) {
	for _, sp := range ps {
		if sp.Source == source {
			return sp.Pool, true
		}
	}
	return nil, false
}

// Map returns the pools keyed by source.
func (ps Pools) Map() map[string]Pool {
	out := make(map[string]Pool, len(ps))
	for _, sp := range ps {
		out[sp.Source] = sp.Pool
	}
	return out
}

func (ps Pools) MarshalJSON() ([]byte, error) {
	keys := make([]string, len(ps))
	vals := make([]any, len(ps))
	for i, sp := range ps {
		keys[i], vals[i] = sp.Source, sp.Pool
	}
	return orderedObject(keys, vals)
}

func (ps *Pools) UnmarshalJSON(data []byte) error {
	out := Pools{}
	err := decodeOrderedObject(data, func(key string, dec *json.Decoder) error {
		var p Pool
		if err := dec.Decode(&p); err != nil {
			return fmt.Errorf("source %q: %w", key, err)
		}
		out = append(out, SourcePool{Source: key, Pool: p})
		return nil
	})
	if err != nil {
		return err
	}
	*ps = out
	return nil
}

func orderedObject(keys []string, vals []any) ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(vals[i])
		if err != nil {
			return nil, err
		}
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// decodeOrderedObject walks a JSON object's members in document order.
func decodeOrderedObject(data []byte, member func(key string, dec *json.Decoder) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := member(key, dec); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
