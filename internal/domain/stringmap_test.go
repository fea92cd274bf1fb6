package domain

import (
	"testing"
)

func TestStringMap_ValueNilEncodesEmptyObject(t *testing.T) {
	var m StringMap
	v, err := m.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v.(string) != "{}" {
		t.Fatalf("nil map must encode as {}, got %v", v)
	}
}

func TestStringMap_RoundTrip(t *testing.T) {
	m := StringMap{"email": "ada@example.com", "first_name": "Ada"}
	v, err := m.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var back StringMap
	if err := back.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if back["email"] != "ada@example.com" || back["first_name"] != "Ada" {
		t.Fatalf("round-trip mismatch: %v", back)
	}
}

func TestStringMap_ScanSources(t *testing.T) {
	var m StringMap
	if err := m.Scan([]byte(`{"a":"1"}`)); err != nil || m["a"] != "1" {
		t.Fatalf("scan []byte: %v / %v", m, err)
	}
	if err := m.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if len(m) != 0 {
		t.Fatalf("nil source must yield empty map, got %v", m)
	}
}

func TestStringMap_ScanMalformedErrors(t *testing.T) {
	var m StringMap
	if err := m.Scan("{corrupt"); err == nil {
		t.Fatalf("malformed stored JSON must surface an error")
	}
}
