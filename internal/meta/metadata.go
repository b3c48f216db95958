// Package meta provides the free-form string metadata carried by
// transactions (import ids, sync markers, tags). Encoding is stable so the
// same map always serializes to the same bytes.
package meta

import (
    "bytes"
    "encoding/json"
    "errors"
    "sort"
)

type Metadata map[string]string

const (
    MaxPairs     = 20
    MaxKeyLen    = 64
    MaxValLen    = 256
    MaxTotalJSON = 4096
)

func New(m map[string]string) Metadata {
    out := make(Metadata, len(m))
    for k, v := range m {
        out[k] = v
    }
    return out
}

func (m Metadata) Clone() Metadata {
    return New(m)
}

func (m Metadata) Get(k string) (string, bool) {
    v, ok := m[k]
    return v, ok
}

// Set stores a pair, silently dropping entries past the limits. Callers
// that need to surface the violation use Validate.
func (m Metadata) Set(k, v string) {
    if len(m) >= MaxPairs {
        return
    }
    if len(k) == 0 || len(k) > MaxKeyLen || len(v) > MaxValLen {
        return
    }
    m[k] = v
}

func (m Metadata) Del(k string) { delete(m, k) }

// Merge copies other's pairs into m, other winning on key collisions.
// Keys are applied in sorted order so the limit cutoff is deterministic.
func (m Metadata) Merge(other Metadata) {
    keys := make([]string, 0, len(other))
    for k := range other {
        keys = append(keys, k)
    }
    sort.Strings(keys)
    for _, k := range keys {
        if _, exists := m[k]; exists {
            m[k] = other[k]
            continue
        }
        m.Set(k, other[k])
    }
}

func (m Metadata) Validate() error {
    if len(m) > MaxPairs {
        return errors.New("metadata: too many pairs")
    }
    for k, v := range m {
        if len(k) == 0 || len(k) > MaxKeyLen {
            return errors.New("metadata: key empty or too long")
        }
        if len(v) > MaxValLen {
            return errors.New("metadata: value too long")
        }
    }
    b, err := m.MarshalStableJSON()
    if err != nil {
        return err
    }
    if len(b) > MaxTotalJSON {
        return errors.New("metadata: exceeds max encoded size")
    }
    return nil
}

// MarshalStableJSON encodes with keys sorted, so equal maps yield equal
// bytes regardless of insertion order.
func (m Metadata) MarshalStableJSON() ([]byte, error) {
    if len(m) == 0 {
        return []byte("{}"), nil
    }
    keys := make([]string, 0, len(m))
    for k := range m {
        keys = append(keys, k)
    }
    sort.Strings(keys)
    var buf bytes.Buffer
    buf.WriteByte('{')
    for i, k := range keys {
        kb, _ := json.Marshal(k)
        vb, _ := json.Marshal(m[k])
        buf.Write(kb)
        buf.WriteByte(':')
        buf.Write(vb)
        if i < len(keys)-1 {
            buf.WriteByte(',')
        }
    }
    buf.WriteByte('}')
    return buf.Bytes(), nil
}

func (m Metadata) MarshalJSON() ([]byte, error) { return m.MarshalStableJSON() }

func (m *Metadata) UnmarshalJSON(b []byte) error {
    if len(b) == 0 || bytes.Equal(b, []byte("null")) {
        *m = Metadata{}
        return nil
    }
    var tmp map[string]string
    if err := json.Unmarshal(b, &tmp); err != nil {
        return err
    }
    *m = New(tmp)
    return nil
}
