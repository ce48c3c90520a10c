package tlv

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/moov-io/bertlv"
)

type describedRegisters struct {
	OCR     []byte       `tlv:"DF01" fmt:"word"`
	Name    []byte       `tlv:"DF02" fmt:"ascii"`
	RCA     []byte       `tlv:"DF03" fmt:"int"`
	Raw     []byte       // No tag
	Empty   []byte       `tlv:"DF09"`
	Unknown []bertlv.TLV `tlv:",unknown"`
}

func TestWriteStructFields(t *testing.T) {
	regs := describedRegisters{
		OCR:  []byte{0xC0, 0xFF, 0x80, 0x00},
		Name: []byte{'S', 'D', '1', '6', 0x00},
		RCA:  []byte{0x12, 0x34},
		Raw:  []byte{0xCA, 0xFE},
		Unknown: []bertlv.TLV{
			{Tag: "DF7F", Value: []byte{0x12, 0x34}},
		},
	}
	want := func(prefix string) []string {
		return []string{
			"    - " + prefix + ".OCR (DF01): C0FF8000",
			"    - " + prefix + `.Name (DF02): 5344313600 ("SD16.")`,
			"    - " + prefix + ".RCA (DF03): 1234 (Dec: 4660)",
			"    - " + prefix + ".Raw: CAFE",
			"    - " + prefix + ".Unknown Tag DF7F: 1234",
		}
	}

	tests := []struct {
		name          string
		prefix        string
		input         interface{}
		expectedLines []string
	}{
		{
			name:          "Struct Pointer Input",
			prefix:        "Card",
			input:         &regs,
			expectedLines: want("Card"),
		},
		{
			name:          "Struct Value Input",
			prefix:        "Val",
			input:         regs,
			expectedLines: want("Val"),
		},
		{
			name:          "Nil Pointer",
			prefix:        "Nil",
			input:         (*describedRegisters)(nil),
			expectedLines: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			WriteStructFields(&sb, tt.prefix, tt.input)
			actualLines := strings.Split(sb.String(), "\n")

			if diff := cmp.Diff(tt.expectedLines, actualLines); diff != "" {
				t.Errorf("Mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatByteValue(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		format string
		want   string
	}{
		{"words", Words(0x400E0032, 0x5B590000), "word", "400E0032 5B590000"},
		{"ragged words fall back to hex", []byte{0x01, 0x02, 0x03}, "word", "010203"},
		{"int", []byte{0x00, 0x0F, 0x42, 0x41}, "int", "000F4241 (Dec: 1000001)"},
		{"default", []byte{0xab}, "", "AB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatByteValue(tt.data, tt.format); got != tt.want {
				t.Errorf("formatByteValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMakeSafeASCII(t *testing.T) {
	input := []byte{0x41, 0x42, 0x00, 0x1F, 0x7F, 0x43} // AB, null, US, DEL, C
	want := "AB...C"                                    // 0x7F (127) is > 126, so it becomes dot

	got := MakeSafeASCII(input)
	if got != want {
		t.Errorf("MakeSafeASCII() = %q, want %q", got, want)
	}
}
