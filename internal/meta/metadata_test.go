package meta

import (
    "encoding/json"
    "fmt"
    "testing"
)

func TestSetGetDelMergeClone(t *testing.T) {
    m := New(nil)
    m.Set("import_id", "abc123")
    if v, ok := m.Get("import_id"); !ok || v != "abc123" {
        t.Fatal("get failed")
    }
    m.Merge(New(map[string]string{"source": "csv"}))
    if v, ok := m.Get("source"); !ok || v != "csv" {
        t.Fatal("merge failed")
    }
    cloned := m.Clone()
    if len(cloned) != 2 || cloned["import_id"] != "abc123" {
        t.Fatalf("clone failed: %+v", cloned)
    }
    m.Del("import_id")
    if _, ok := m.Get("import_id"); ok {
        t.Fatal("del failed")
    }
    if len(cloned) != 2 {
        t.Fatal("clone shares storage with original")
    }
}

func TestMergeOverwritesExistingKeys(t *testing.T) {
    m := New(map[string]string{"source": "csv"})
    m.Merge(New(map[string]string{"source": "ofx"}))
    if v, _ := m.Get("source"); v != "ofx" {
        t.Fatalf("expected overwrite, got %q", v)
    }
}

func TestValidationLimits(t *testing.T) {
    pairs := make(map[string]string)
    for i := 0; i < MaxPairs+1; i++ {
        pairs[fmt.Sprintf("k%d", i)] = "v"
    }
    if err := New(pairs).Validate(); err == nil {
        t.Fatal("expected too many pairs")
    }

    longKey := make([]byte, MaxKeyLen+1)
    for i := range longKey {
        longKey[i] = 'k'
    }
    if err := New(map[string]string{string(longKey): "v"}).Validate(); err == nil {
        t.Fatal("expected key too long")
    }

    longVal := make([]byte, MaxValLen+1)
    for i := range longVal {
        longVal[i] = 'v'
    }
    if err := New(map[string]string{"k": string(longVal)}).Validate(); err == nil {
        t.Fatal("expected value too long")
    }
}

func TestStableJSONAndRoundtrip(t *testing.T) {
    m := New(map[string]string{"b": "2", "a": "1"})
    b1, err := m.MarshalStableJSON()
    if err != nil {
        t.Fatalf("marshal: %v", err)
    }
    if string(b1) != `{"a":"1","b":"2"}` {
        t.Fatalf("unexpected stable json: %s", b1)
    }
    var back Metadata
    if err := json.Unmarshal(b1, &back); err != nil {
        t.Fatalf("unmarshal: %v", err)
    }
    if err := back.Validate(); err != nil {
        t.Fatalf("validate roundtrip: %v", err)
    }
}
