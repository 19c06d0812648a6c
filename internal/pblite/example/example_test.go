package example

import (
	"encoding/json"
	"testing"

	"github.com/dpeckett/hangupsd/internal/pblite"
)

func decodeJSON(t *testing.T, raw string, msg pblite.Decodable) {
	t.Helper()
	if err := pblite.Decode([]byte(raw), msg); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
}

func TestPhoneNumberFull(t *testing.T) {
	var p PhoneNumber
	decodeJSON(t, `["16067624137",["CA", 1, 123]]`, &p)

	if p.E164 == nil || *p.E164 != "16067624137" {
		t.Fatalf("E164 = %v", p.E164)
	}
	if p.I18nData == nil {
		t.Fatalf("I18nData is nil")
	}
	if p.I18nData.RegionCode == nil || *p.I18nData.RegionCode != "CA" {
		t.Fatalf("RegionCode = %v", p.I18nData.RegionCode)
	}
	if p.I18nData.IsValid == nil || *p.I18nData.IsValid != true {
		t.Fatalf("IsValid = %v", p.I18nData.IsValid)
	}
	if p.I18nData.CountryCode == nil || *p.I18nData.CountryCode != 123 {
		t.Fatalf("CountryCode = %v", p.I18nData.CountryCode)
	}
}

func TestPhoneNumberTrailingAbsent(t *testing.T) {
	var p PhoneNumber
	decodeJSON(t, `["16067624137"]`, &p)

	if p.E164 == nil || *p.E164 != "16067624137" {
		t.Fatalf("E164 = %v", p.E164)
	}
	if p.I18nData != nil {
		t.Fatalf("expected I18nData absent, got %+v", p.I18nData)
	}
}

func TestPhoneNumberExplicitNull(t *testing.T) {
	var p PhoneNumber
	decodeJSON(t, `["16067624137", null]`, &p)

	if p.I18nData != nil {
		t.Fatalf("expected I18nData absent, got %+v", p.I18nData)
	}
}

func TestEmptyIgnoresTrailingPositions(t *testing.T) {
	var e Empty
	if err := pblite.Decode([]byte(`[1, "whatever", [1,2,3]]`), &e); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
}

func TestPhoneNumberRejectsWrongShape(t *testing.T) {
	var p PhoneNumber
	err := pblite.Decode([]byte(`[42]`), &p)
	if err == nil {
		t.Fatalf("expected error decoding numeric E164")
	}
}

func TestI18nDataRoundTripsViaRawMessage(t *testing.T) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(`["US", 0, 1]`), &items); err != nil {
		t.Fatal(err)
	}
	var d I18nData
	if err := pblite.DecodeArray(items, &d); err != nil {
		t.Fatalf("DecodeArray() error = %v", err)
	}
	if d.IsValid == nil || *d.IsValid != false {
		t.Fatalf("IsValid = %v, want false", d.IsValid)
	}
}
