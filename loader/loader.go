// Package loader reads a DCPU-16 program image (a big-endian stream of
// 16-bit words) into a word slice ready for cpu.CPU.LoadImage.
package loader

import (
	"fmt"
	"io"
)

// MaxWords is the number of addressable words in CPU memory; an image
// larger than this cannot fit starting at address 0.
const MaxWords = 0x10000

// Load reads r to completion and decodes it as a big-endian word
// stream: byte 2k is the high byte and 2k+1 the low byte of word k. A
// trailing odd byte becomes the high byte of a final word with low
// byte 0, per the image format.
func Load(r io.Reader) ([]uint16, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("loader: read image: %w", err)
	}
	if len(data) > MaxWords*2 {
		return nil, fmt.Errorf("loader: image is %d bytes, exceeds %d-word memory", len(data), MaxWords)
	}

	words := make([]uint16, (len(data)+1)/2)
	for i := range words {
		hi := data[i*2]
		var lo byte
		if i*2+1 < len(data) {
			lo = data[i*2+1]
		}
		words[i] = uint16(hi)<<8 | uint16(lo)
	}
	return words, nil
}

// Dump serializes words back to the same big-endian byte stream Load
// reads, high byte first, for round-tripping an image.
func Dump(words []uint16) []byte {
	data := make([]byte, len(words)*2)
	for i, w := range words {
		data[i*2] = byte(w >> 8)
		data[i*2+1] = byte(w)
	}
	return data
}
