package loader

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoadDecodesBigEndianWords(t *testing.T) {
	words, err := Load(bytes.NewReader([]byte{0x7c, 0x01, 0x00, 0x30}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []uint16{0x7c01, 0x0030}
	if len(words) != len(want) || words[0] != want[0] || words[1] != want[1] {
		t.Errorf("words = %v, want %v", words, want)
	}
}

func TestLoadTrailingOddByteBecomesHighByte(t *testing.T) {
	words, err := Load(bytes.NewReader([]byte{0x7c, 0x01, 0xab}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("len(words) = %d, want 2", len(words))
	}
	if words[1] != 0xab00 {
		t.Errorf("words[1] = 0x%x, want 0xab00 (trailing byte 0xab as high byte, low byte 0)", words[1])
	}
}

func TestLoadRejectsOversizedImage(t *testing.T) {
	big := strings.NewReader(strings.Repeat("x", MaxWords*2+2))
	if _, err := Load(big); err == nil {
		t.Error("Load with an oversized image should return an error")
	}
}

func TestDumpIsLoadInverse(t *testing.T) {
	words := []uint16{0x7c01, 0x0030, 0xffff, 0x0000}
	data := Dump(words)

	roundTripped, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(roundTripped) != len(words) {
		t.Fatalf("len(roundTripped) = %d, want %d", len(roundTripped), len(words))
	}
	for i, w := range words {
		if roundTripped[i] != w {
			t.Errorf("word %d = 0x%x, want 0x%x", i, roundTripped[i], w)
		}
	}
}
