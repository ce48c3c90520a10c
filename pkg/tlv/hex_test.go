package tlv

import (
	"bytes"
	"testing"
)

func TestHex(t *testing.T) {
	tests := []struct {
		name      string
		inputs    []string
		want      []byte
		wantPanic bool
	}{
		{"Tag and length", []string{"DF01", "04"}, []byte{0xDF, 0x01, 0x04}, false},
		{"Spaced register", []string{"C0FF 8000"}, []byte{0xC0, 0xFF, 0x80, 0x00}, false},
		{"Lower case", []string{"e1", "00"}, []byte{0xE1, 0x00}, false},
		{"Not hex", []string{"SD"}, nil, true},
		{"Half byte", []string{"DF0"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); (r != nil) != tt.wantPanic {
					t.Errorf("Hex(%q) panic = %v, wantPanic %t", tt.inputs, r, tt.wantPanic)
				}
			}()
			if got := Hex(tt.inputs...); !bytes.Equal(got, tt.want) {
				t.Errorf("Hex(%q) = %X, want %X", tt.inputs, got, tt.want)
			}
		})
	}
}

func TestWords(t *testing.T) {
	data := Words(0x400E0032, 0x5B590000)
	if !bytes.Equal(data, Hex("400E0032 5B590000")) {
		t.Fatalf("Words() = %X", data)
	}

	words, err := ToWords(data)
	if err != nil {
		t.Fatalf("ToWords failed: %v", err)
	}
	if len(words) != 2 || words[0] != 0x400E0032 || words[1] != 0x5B590000 {
		t.Errorf("ToWords() = %08X", words)
	}

	if _, err := ToWords([]byte{0x01, 0x02}); err == nil {
		t.Error("Expected error for a partial word, got nil")
	}
}
