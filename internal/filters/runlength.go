package filters

import "fmt"

const runLengthEOD = 0x80

// RunLengthDecode expands RunLengthDecode data. A length byte n < 128 copies
// the next n+1 bytes, n > 128 repeats the next byte 257-n times and 128 ends
// the data.
func RunLengthDecode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)*2)
	for i := 0; i < len(data); {
		n := data[i]
		i++
		switch {
		case n == runLengthEOD:
			return out, nil
		case n < runLengthEOD:
			end := i + int(n) + 1
			if end > len(data) {
				return nil, fmt.Errorf("RunLengthDecode: literal run of %d bytes at %d exceeds data", int(n)+1, i-1)
			}
			out = append(out, data[i:end]...)
			i = end
		default:
			if i >= len(data) {
				return nil, fmt.Errorf("RunLengthDecode: missing repeated byte at %d", i)
			}
			for j := 0; j < 257-int(n); j++ {
				out = append(out, data[i])
			}
			i++
		}
	}
	return out, nil
}
