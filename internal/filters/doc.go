// Package filters implements the PDF stream filters needed to read a file:
// Flate and LZW with TIFF and PNG predictors, ASCIIHex, ASCII85, RunLength
// and CCITT fax.
//
// # Flate and predictors
//
//	decoded, err := filters.FlateDecode(data, filters.Params{
//	    "Predictor": 12,
//	    "Columns":   5,
//	})
//
// FlateDecode inflates first and then reverses the predictor named by the
// Predictor parameter:
//   - 1: no prediction (default)
//   - 2: TIFF predictor 2
//   - 10 and above: PNG predictors, with a filter tag at the start of every row
//
// BitsPerComponent, Colors and Columns default to 8, 1 and 1 when absent.
// DecodePredictor is exported for callers that apply predictors to output of
// other decompressors.
//
// FlateEncode compresses without prediction; it exists so that callers can
// build streams for tests and in-memory objects.
//
// # Errors
//
// Predictor problems are reported as ErrUnsupportedPredictor, bad parameter
// values as ErrUnsupportedFilterParameter. Both can be matched with errors.Is.
package filters
