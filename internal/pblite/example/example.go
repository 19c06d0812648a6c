// Package example mirrors the worked message types from the original
// hangups-rs pblite test suite (I18nData, PhoneNumber, Empty). It exists to
// demonstrate how a generated message type wires into the descriptor-driven
// decoder in internal/pblite, and to exercise the pblite property tests
// against a concrete, non-trivial message shape.
package example

import "github.com/dpeckett/hangupsd/internal/pblite"

// I18nData is field 2 of PhoneNumber: region code, validity flag, and
// country calling code.
type I18nData struct {
	RegionCode  *string
	IsValid     *bool
	CountryCode *uint32
}

func (m *I18nData) Name() string { return "I18nData" }

func (m *I18nData) Descriptor() []pblite.FieldDescriptor {
	return []pblite.FieldDescriptor{
		{
			Number: 1, Type: pblite.String, Cardinality: pblite.Optional,
			SetScalar: func(v any) { s := v.(string); m.RegionCode = &s },
		},
		{
			Number: 2, Type: pblite.Bool, Cardinality: pblite.Optional,
			SetScalar: func(v any) { b := v.(bool); m.IsValid = &b },
		},
		{
			Number: 3, Type: pblite.Uint32, Cardinality: pblite.Optional,
			SetScalar: func(v any) { n := v.(uint32); m.CountryCode = &n },
		},
	}
}

// PhoneNumber holds an E.164 number and its i18n metadata.
type PhoneNumber struct {
	E164     *string
	I18nData *I18nData
}

func (m *PhoneNumber) Name() string { return "PhoneNumber" }

func (m *PhoneNumber) Descriptor() []pblite.FieldDescriptor {
	return []pblite.FieldDescriptor{
		{
			Number: 1, Type: pblite.String, Cardinality: pblite.Optional,
			SetScalar: func(v any) { s := v.(string); m.E164 = &s },
		},
		{
			Number: 2, Type: pblite.Message, Cardinality: pblite.Optional,
			NewMessage: func() pblite.Decodable { return &I18nData{} },
			SetScalar:  func(v any) { m.I18nData = v.(*I18nData) },
		},
	}
}

// Empty is a message with no fields, used to test that trailing unknown
// positions are ignored rather than rejected.
type Empty struct{}

func (m *Empty) Name() string                        { return "Empty" }
func (m *Empty) Descriptor() []pblite.FieldDescriptor { return nil }
