package sdcard

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gregLibert/sdmmc/pkg/sdsim"
)

func TestParseCSD(t *testing.T) {
	type geometry struct {
		Version       CardVersion
		Class         uint16
		BlockCount    uint32
		BlockSize     uint32
		LogBlockCount uint32
	}

	tests := []struct {
		name  string
		words [4]uint32
		want  geometry
	}{
		{
			name: "Version 2.0 raw words, C_SIZE 1000000",
			// C_SIZE 0x0F4240 in bytes 5-7, READ_BL_LEN 9 and CCC 0x5B5 in
			// bytes 9-10, CSD_STRUCTURE 0x40 in byte 14.
			words: [4]uint32{0x00000000, 0x0F424000, 0x005B5900, 0x00400000},
			want:  geometry{Version2x, 0x5B5, 1000001 << 10, 512, 1000001 << 10},
		},
		{
			name:  "Version 2.0 built",
			words: sdsim.CSDv2(1, 0x5B5),
			want:  geometry{Version2x, 0x5B5, 2048, 512, 2048},
		},
		{
			name:  "Version 1.0, 512-byte blocks",
			words: sdsim.CSDv1(4095, 7, 9, 0x5B5),
			want:  geometry{Version1x, 0x5B5, 4096 << 9, 512, 4096 << 9},
		},
		{
			name:  "Version 1.0, 1024-byte blocks doubles the count",
			words: sdsim.CSDv1(1000, 3, 10, 0x1F5),
			want:  geometry{Version1x, 0x1F5, (1001 << 5) * 2, 1024, (1001 << 5) * 4},
		},
		{
			name:  "Version 1.0, 2048-byte blocks quadruples the count",
			words: sdsim.CSDv1(100, 2, 11, 0x5B5),
			want:  geometry{Version1x, 0x5B5, (101 << 4) * 4, 2048, (101 << 4) * 16},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			csd := ParseCSD(tt.words)
			got := geometry{csd.Version, csd.Class, csd.BlockCount(), csd.BlockSize(), csd.LogBlockCount()}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseCSDFields(t *testing.T) {
	csd := ParseCSD(sdsim.CSDv1(0xABC, 5, 9, 0x5B5))
	want := CSD{Version: Version1x, Class: 0x5B5, ReadBlLen: 9, CSize: 0xABC, SizeMult: 5}
	if diff := cmp.Diff(want, csd); diff != "" {
		t.Errorf("Mismatch (-want +got):\n%s", diff)
	}
}

func TestTimingForCoreClock(t *testing.T) {
	got := TimingForCoreClock(168000000)
	want := Timing{TicksPerMs: 21000, WriteTicksPerMs: 3360}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Mismatch (-want +got):\n%s", diff)
	}
}
