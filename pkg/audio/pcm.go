package audio

import "encoding/binary"

// BytesPerSample is the width of one S16LE sample
const BytesPerSample = 2

// DecodeS16LE converts little-endian 16-bit PCM into samples. Only whole
// 2-byte groups are decoded; a dangling odd byte at the end of a partial
// read is dropped and reported through the second return value.
func DecodeS16LE(buf []byte) ([]int16, int) {
	n := len(buf) / BytesPerSample
	samples := make([]int16, n)
	for i := range n {
		samples[i] = int16(binary.LittleEndian.Uint16(buf[i*BytesPerSample:]))
	}
	return samples, len(buf) % BytesPerSample
}

// EncodeS16LE is the inverse of DecodeS16LE
func EncodeS16LE(samples []int16) []byte {
	buf := make([]byte, len(samples)*BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*BytesPerSample:], uint16(s))
	}
	return buf
}

// Channel returns every stride-th sample starting at offset, as float64
func Channel(samples []int16, offset, stride int) []float64 {
	if stride <= 0 || offset < 0 || offset >= len(samples) {
		return nil
	}
	out := make([]float64, 0, (len(samples)-offset+stride-1)/stride)
	for i := offset; i < len(samples); i += stride {
		out = append(out, float64(samples[i]))
	}
	return out
}
