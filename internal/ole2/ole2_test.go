package ole2

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func biffRecord(id uint16, payload []byte) []byte {
	rec := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint16(rec[0:], id)
	binary.LittleEndian.PutUint16(rec[2:], uint16(len(payload)))
	copy(rec[4:], payload)
	return rec
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func TestBiffHasFilePass(t *testing.T) {
	bof := biffRecord(0x0809, make([]byte, 16))
	filePass := biffRecord(biffFilePass, make([]byte, 54))
	eof := biffRecord(0x000A, nil)
	dimensions := biffRecord(0x0200, make([]byte, 14))
	filler := biffRecord(0x003C, make([]byte, 0xFFFF))

	tests := []struct {
		name   string
		stream []byte
		want   bool
	}{
		{"protected workbook", concat(bof, filePass, dimensions, eof), true},
		{"plain workbook", concat(bof, dimensions, eof), false},
		{"filepass without bof", concat(filePass, eof), true},
		{"filepass after globals eof ignored", concat(bof, eof, filePass), false},
		{"filepass beyond scan window ignored", concat(bof, filler, filePass), false},
		{"declared length overruns stream", concat(bof, biffRecord(0x0200, nil)[:3]), false},
		{"truncated header", []byte{0x09, 0x08, 0x10}, false},
		{"empty stream", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := biffHasFilePass(bytes.NewReader(tt.stream), int64(len(tt.stream)))
			if got != tt.want {
				t.Errorf("biffHasFilePass() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInspectRejectsJunk(t *testing.T) {
	junk := make([]byte, 4096)
	copy(junk, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1})

	if _, err := Inspect(bytes.NewReader(junk)); err == nil {
		t.Error("Inspect() accepted a zeroed compound file header")
	}
}

func TestInspectRejectsTruncated(t *testing.T) {
	short := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

	if _, err := Inspect(bytes.NewReader(short)); err == nil {
		t.Error("Inspect() accepted an 8 byte file")
	}
}

func TestReadStreamMissing(t *testing.T) {
	junk := make([]byte, 4096)
	copy(junk, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1})

	if _, err := ReadStream(bytes.NewReader(junk), "WordDocument"); err == nil {
		t.Error("ReadStream() found a stream in a corrupt container")
	}
}
