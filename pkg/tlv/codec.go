// Package tlv maps BER-TLV data to and from Go structures using struct tags.
// It is used to snapshot SD card registers into a portable, self-describing
// blob (private class tags) and to read such blobs back.
//
// A field takes part when it carries a `tlv:"TAG"` struct tag:
//   - []byte fields are primitive TLVs,
//   - struct or *struct fields are constructed TLVs holding their own fields,
//   - a []bertlv.TLV field tagged `tlv:",unknown"` collects (and re-emits) the
//     TLVs no other field claimed.
package tlv

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/moov-io/bertlv"
)

// Unmarshal parses raw BER-TLV data and maps it into a target Go struct.
func Unmarshal(data []byte, target interface{}) error {
	packets, err := bertlv.Decode(data)
	if err != nil {
		return fmt.Errorf("bertlv decode failed: %w", err)
	}
	return UnmarshalFromPackets(packets, target)
}

// UnmarshalFromPackets maps pre-decoded TLVs to a target struct.
func UnmarshalFromPackets(packets []bertlv.TLV, target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target must be a non-nil pointer")
	}
	v = v.Elem()
	t := v.Type()

	consumed := make(map[int]bool)
	for i := 0; i < v.NumField(); i++ {
		tag, ok := fieldTag(t.Field(i))
		if !ok {
			continue
		}
		for idx, packet := range packets {
			if !strings.EqualFold(packet.Tag, tag) {
				continue
			}
			if err := decodeToValue(packet, v.Field(i)); err != nil {
				return fmt.Errorf("tag %s: %w", tag, err)
			}
			consumed[idx] = true
		}
	}

	if unknown, ok := unknownField(v); ok {
		var leftovers []bertlv.TLV
		for idx, packet := range packets {
			if !consumed[idx] {
				leftovers = append(leftovers, packet)
			}
		}
		if len(leftovers) > 0 {
			unknown.Set(reflect.ValueOf(leftovers))
		}
	}
	return nil
}

func decodeToValue(packet bertlv.TLV, field reflect.Value) error {
	switch {
	case isByteSlice(field):
		field.SetBytes(rawValue(packet))
		return nil
	case field.Kind() == reflect.Struct:
		return decodeNested(packet, field.Addr().Interface())
	case field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct:
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return decodeNested(packet, field.Interface())
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
}

func decodeNested(packet bertlv.TLV, target interface{}) error {
	if len(packet.TLVs) > 0 {
		return UnmarshalFromPackets(packet.TLVs, target)
	}
	return Unmarshal(packet.Value, target)
}

// Marshal encodes the tagged fields of a struct as BER-TLV. Empty byte slices
// and nil pointers are skipped.
func Marshal(source interface{}) ([]byte, error) {
	packets, err := MarshalToPackets(source)
	if err != nil {
		return nil, err
	}
	return bertlv.Encode(packets)
}

// MarshalToPackets builds the TLV tree of a struct without encoding it.
func MarshalToPackets(source interface{}) ([]bertlv.TLV, error) {
	v := reflect.ValueOf(source)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, fmt.Errorf("source must not be nil")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("source must be a struct, got %s", v.Kind())
	}
	t := v.Type()

	var packets []bertlv.TLV
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		tag, ok := fieldTag(t.Field(i))
		if !ok {
			continue
		}

		switch {
		case isByteSlice(field):
			if field.Len() == 0 {
				continue
			}
			packets = append(packets, bertlv.TLV{Tag: tag, Value: field.Bytes()})
		case field.Kind() == reflect.Struct || (field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct):
			if field.Kind() == reflect.Ptr && field.IsNil() {
				continue
			}
			children, err := MarshalToPackets(field.Interface())
			if err != nil {
				return nil, fmt.Errorf("tag %s: %w", tag, err)
			}
			packets = append(packets, bertlv.TLV{Tag: tag, TLVs: children})
		default:
			return nil, fmt.Errorf("tag %s: unsupported field kind %s", tag, field.Kind())
		}
	}

	if unknown, ok := unknownField(v); ok && unknown.Len() > 0 {
		packets = append(packets, unknown.Interface().([]bertlv.TLV)...)
	}
	return packets, nil
}

// GetValue scans the raw data for a top level tag and returns its payload.
func GetValue(data []byte, tag uint) ([]byte, error) {
	packets, err := bertlv.Decode(data)
	if err != nil {
		return nil, err
	}

	want := fmt.Sprintf("%X", tag)
	for _, p := range packets {
		if strings.EqualFold(p.Tag, want) {
			return rawValue(p), nil
		}
	}
	return nil, fmt.Errorf("tag %s not found", want)
}

// fieldTag returns the TLV tag of a struct field, if it has one.
func fieldTag(f reflect.StructField) (string, bool) {
	cfg := f.Tag.Get("tlv")
	if cfg == "" || strings.HasPrefix(cfg, ",") {
		return "", false
	}
	return strings.ToUpper(strings.Split(cfg, ",")[0]), true
}

func unknownField(v reflect.Value) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		if t.Field(i).Tag.Get("tlv") == ",unknown" && v.Field(i).Type() == reflect.TypeOf([]bertlv.TLV{}) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// rawValue returns the value bytes, re-encoding the children of a
// constructed TLV.
func rawValue(p bertlv.TLV) []byte {
	if len(p.TLVs) > 0 {
		if enc, err := bertlv.Encode(p.TLVs); err == nil {
			return enc
		}
	}
	return p.Value
}

func isByteSlice(v reflect.Value) bool {
	return v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8
}
