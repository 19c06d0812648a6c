// Package pblite implements a descriptor-driven decoder for the pblite
// encoding: a positional, sparse, array-based encoding of protocol-buffer-
// like messages. Position i in the JSON array corresponds to field number
// i+1 of a message's descriptor; missing trailing elements and explicit
// JSON nulls both mean "absent."
package pblite

import (
	"encoding/base64"
	"encoding/json"
	"strconv"

	"github.com/dpeckett/hangupsd/internal/clienterrors"
)

// FieldType enumerates the scalar and structural field kinds a descriptor
// can declare.
type FieldType int

const (
	Double FieldType = iota
	Uint32
	Uint64
	Bool
	String
	Bytes
	Enum
	Message
)

// Cardinality distinguishes a field that holds at most one value from one
// that holds a JSON array of values.
type Cardinality int

const (
	Optional Cardinality = iota
	Repeated
)

// FieldDescriptor describes one field of a message: its 1-based field
// number, its type, and its cardinality. Number must be >= 1 and
// corresponds to position Number-1 in the pblite array.
type FieldDescriptor struct {
	Number      int
	Type        FieldType
	Cardinality Cardinality
	// EnumFromU32 maps a raw numeric value to an enum's underlying integer
	// representation, returning the zero value for any value the generated
	// enum type does not recognize. Only used when Type == Enum.
	EnumFromU32 func(uint32) any
	// NewMessage constructs a Decodable ready to have its fields populated
	// for a Message or repeated-Message field.
	NewMessage func() Decodable
	// SetScalar stores a decoded scalar value (or, for Message/Enum fields,
	// the already-constructed value) onto the owning struct.
	SetScalar func(v any)
	// SetRepeated stores a decoded []any onto the owning struct. It is
	// called with nil when the field is absent and with a non-nil (possibly
	// empty) slice when the field holds a JSON array.
	SetRepeated func(v []any)
}

// Decodable is implemented by generated message types. Descriptor returns
// the field list in field-number order; Name is used in error messages.
type Decodable interface {
	Name() string
	Descriptor() []FieldDescriptor
}

// Decode populates msg's fields from a pblite-encoded JSON array. raw must
// already have any leading header element stripped by the caller (the
// container parser is responsible for that — position 0 of the array
// corresponds to field number 1, not to a protocol header).
func Decode(raw []byte, msg Decodable) error {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return &clienterrors.InvalidMessage{Name: msg.Name(), Cause: err}
	}
	return DecodeArray(arr, msg)
}

// DecodeArray is like Decode but takes an already-split JSON array, useful
// when the caller obtained the array via a JSON path library rather than a
// fresh unmarshal (see internal/stream's container parser).
func DecodeArray(arr []json.RawMessage, msg Decodable) error {
	for _, fd := range msg.Descriptor() {
		pos := fd.Number - 1
		var elem json.RawMessage
		if pos < len(arr) {
			elem = arr[pos]
		}
		if err := decodeField(fd, elem); err != nil {
			return &clienterrors.InvalidMessage{
				Name:  msg.Name(),
				Cause: &clienterrors.InvalidField{Number: fd.Number, Cause: err},
			}
		}
	}
	return nil
}

func decodeField(fd FieldDescriptor, elem json.RawMessage) error {
	if isAbsent(elem) {
		if fd.Cardinality == Repeated {
			fd.SetRepeated(nil)
		}
		return nil
	}

	if fd.Cardinality == Repeated {
		var items []json.RawMessage
		if err := json.Unmarshal(elem, &items); err != nil {
			return &clienterrors.ExpectedValue{Expected: "array", Actual: string(elem)}
		}
		values := make([]any, 0, len(items))
		for _, item := range items {
			v, err := decodeScalar(fd, item)
			if err != nil {
				return err
			}
			values = append(values, v)
		}
		fd.SetRepeated(values)
		return nil
	}

	v, err := decodeScalar(fd, elem)
	if err != nil {
		return err
	}
	fd.SetScalar(v)
	return nil
}

// isAbsent reports whether elem is a missing trailing position (zero-length
// RawMessage) or an explicit JSON null.
func isAbsent(elem json.RawMessage) bool {
	return len(elem) == 0 || string(elem) == "null"
}

func decodeScalar(fd FieldDescriptor, elem json.RawMessage) (any, error) {
	if fd.Type == Message {
		var inner []json.RawMessage
		if err := json.Unmarshal(elem, &inner); err != nil {
			return nil, &clienterrors.ExpectedValue{Expected: "array", Actual: string(elem)}
		}
		nested := fd.NewMessage()
		if err := DecodeArray(inner, nested); err != nil {
			return nil, err
		}
		return nested, nil
	}

	var v any
	if err := json.Unmarshal(elem, &v); err != nil {
		return nil, &clienterrors.ExpectedValue{Expected: "json value", Actual: string(elem)}
	}

	switch fd.Type {
	case String:
		s, ok := v.(string)
		if !ok {
			return nil, &clienterrors.ExpectedValue{Expected: "string", Actual: v}
		}
		return s, nil

	case Bool:
		n, ok := v.(float64)
		if !ok || n != float64(int64(n)) {
			return nil, &clienterrors.ExpectedValue{Expected: "0 or 1", Actual: v}
		}
		switch int64(n) {
		case 0:
			return false, nil
		case 1:
			return true, nil
		default:
			return nil, &clienterrors.ExpectedValue{Expected: "0 or 1", Actual: v}
		}

	case Uint32:
		n, ok := v.(float64)
		if !ok || n != float64(int64(n)) || n < 0 || n > float64(^uint32(0)) {
			return nil, &clienterrors.ExpectedValue{Expected: "uint32", Actual: v}
		}
		return uint32(n), nil

	case Uint64:
		switch t := v.(type) {
		case float64:
			if t < 0 || t != float64(uint64(t)) {
				return nil, &clienterrors.ExpectedValue{Expected: "uint64", Actual: v}
			}
			return uint64(t), nil
		case string:
			n, err := strconv.ParseUint(t, 10, 64)
			if err != nil {
				return nil, &clienterrors.ExpectedValue{Expected: "uint64 string", Actual: v}
			}
			return n, nil
		default:
			return nil, &clienterrors.ExpectedValue{Expected: "number or string", Actual: v}
		}

	case Double:
		n, ok := v.(float64)
		if !ok {
			return nil, &clienterrors.ExpectedValue{Expected: "number", Actual: v}
		}
		return n, nil

	case Bytes:
		s, ok := v.(string)
		if !ok {
			return nil, &clienterrors.ExpectedValue{Expected: "string", Actual: v}
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, &clienterrors.ExpectedValue{Expected: "base64", Actual: v}
		}
		return b, nil

	case Enum:
		n, ok := v.(float64)
		if !ok || n != float64(int64(n)) || n < 0 || n > float64(^uint32(0)) {
			return nil, &clienterrors.ExpectedValue{Expected: "uint32", Actual: v}
		}
		return fd.EnumFromU32(uint32(n)), nil

	default:
		return nil, &clienterrors.ExpectedValue{Expected: "known field type", Actual: v}
	}
}
