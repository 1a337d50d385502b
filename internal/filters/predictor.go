package filters

import (
	"fmt"
	"math"
)

// Predictor values from the /DecodeParms dictionary.
const (
	PredictorNone = 1  // no prediction
	PredictorTIFF = 2  // TIFF predictor 2
	PredictorPNG  = 10 // PNG predictors; every value >= 10 carries a tag per row
)

// PNG row tags.
const (
	pngNone = iota
	pngSub
	pngUp
	pngAverage
	pngPaeth
)

// DecodePredictor reverses the delta encoding selected by predictor.
//
// Predictor 1 returns data unchanged. Predictor 2 undoes TIFF horizontal
// differencing, one byte per component. Predictors 10 and above undo PNG
// row filtering, where every row starts with a tag byte naming the filter
// used for that row. Any other value yields ErrUnsupportedPredictor.
func DecodePredictor(data []byte, predictor, bitsPerComponent, colors, columns int) ([]byte, error) {
	switch {
	case predictor == PredictorNone:
		return data, nil
	case predictor == PredictorTIFF:
		if colors < 1 {
			return nil, fmt.Errorf("/Colors %d: %w", colors, ErrUnsupportedFilterParameter)
		}
		return decodeTIFF(data, colors), nil
	case predictor >= PredictorPNG:
		if err := checkGeometry(bitsPerComponent, colors, columns); err != nil {
			return nil, err
		}
		return decodePNG(data, bitsPerComponent, colors, columns)
	default:
		return nil, fmt.Errorf("/Predictor %d: %w", predictor, ErrUnsupportedPredictor)
	}
}

func checkGeometry(bpc, colors, columns int) error {
	switch bpc {
	case 1, 2, 4, 8, 16:
	default:
		return fmt.Errorf("/BitsPerComponent %d: %w", bpc, ErrUnsupportedFilterParameter)
	}
	if colors < 1 {
		return fmt.Errorf("/Colors %d: %w", colors, ErrUnsupportedFilterParameter)
	}
	if columns < 1 {
		return fmt.Errorf("/Columns %d: %w", columns, ErrUnsupportedFilterParameter)
	}
	if colors > math.MaxInt/bpc || columns > (math.MaxInt-7)/(bpc*colors) {
		return fmt.Errorf("row of %d columns of %d colors overflows: %w", columns, colors, ErrUnsupportedFilterParameter)
	}
	return nil
}

// decodeTIFF adds every byte to the last decoded byte of the same component.
// The running sums start at zero and are never reset between rows.
func decodeTIFF(data []byte, colors int) []byte {
	out := make([]byte, len(data))
	last := make([]byte, min(colors, len(data)))
	for i, d := range data {
		c := i % colors
		last[c] += d
		out[i] = last[c]
	}
	return out
}

// decodePNG undoes PNG row filtering. A trailing short row is decoded as far
// as its bytes go. Buffers are sized from data, which may hold less than
// one of the rows the parameters describe.
func decodePNG(data []byte, bpc, colors, columns int) ([]byte, error) {
	rowLen := (bpc*colors*columns + 7) / 8
	bpp := (bpc*colors + 7) / 8

	bufLen := min(rowLen, len(data))
	out := make([]byte, 0, len(data))
	prev := make([]byte, bufLen)
	cur := make([]byte, bufLen)

	for row := 0; len(data) > 0; row++ {
		tag := data[0]
		raw := data[1:]
		if len(raw) > rowLen {
			raw = raw[:rowLen]
		}
		data = data[1+len(raw):]

		if err := unfilterRow(cur[:len(raw)], raw, prev, tag, bpp); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		out = append(out, cur[:len(raw)]...)
		prev, cur = cur, prev
	}
	return out, nil
}

// unfilterRow reconstructs one row into dst. prev holds the previous
// reconstructed row, all zero for the first row.
func unfilterRow(dst, raw, prev []byte, tag byte, bpp int) error {
	switch tag {
	case pngNone:
		copy(dst, raw)
	case pngSub:
		for i, r := range raw {
			dst[i] = r + left(dst, i, bpp)
		}
	case pngUp:
		for i, r := range raw {
			dst[i] = r + prev[i]
		}
	case pngAverage:
		for i, r := range raw {
			avg := (int(left(dst, i, bpp)) + int(prev[i])) / 2
			dst[i] = byte(int(r) + avg)
		}
	case pngPaeth:
		for i, r := range raw {
			dst[i] = r + paeth(left(dst, i, bpp), prev[i], left(prev, i, bpp))
		}
	default:
		return fmt.Errorf("PNG row tag %d: %w", tag, ErrUnsupportedPredictor)
	}
	return nil
}

// left returns the byte one pixel to the left of position i, or 0 inside
// the first pixel of a row.
func left(row []byte, i, bpp int) byte {
	if i < bpp {
		return 0
	}
	return row[i-bpp]
}

// paeth picks whichever of a (left), b (above), c (above left) is closest
// to a+b-c, preferring a, then b, then c on ties.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))

	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
