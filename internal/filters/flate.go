package filters

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/tsawler/pdfxref/logging"
)

// FlateDecode decompresses Flate (zlib/deflate) compressed data and, when
// params request it, reverses the predictor applied before compression.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	return FlateDecodeLength(data, params, -1)
}

// FlateDecodeLength is FlateDecode with the inflated output capped at maxLen
// bytes before any predictor runs. A negative maxLen means no limit.
func FlateDecodeLength(data []byte, params Params, maxLen int64) ([]byte, error) {
	predictor, err := intParam(params, "Predictor", PredictorNone)
	if err != nil {
		return nil, err
	}

	decompressed, err := inflate(data, maxLen)
	if err != nil {
		return nil, fmt.Errorf("zlib decompression failed: %w", err)
	}
	return unpredict(decompressed, params, predictor)
}

// unpredict reverses the predictor named by params on data decoded by
// FlateDecode or LZWDecode.
func unpredict(data []byte, params Params, predictor int) ([]byte, error) {
	if predictor <= PredictorNone {
		return data, nil
	}

	bpc, err := intParam(params, "BitsPerComponent", 8)
	if err != nil {
		return nil, err
	}
	colors, err := intParam(params, "Colors", 1)
	if err != nil {
		return nil, err
	}
	columns, err := intParam(params, "Columns", 1)
	if err != nil {
		return nil, err
	}

	out, err := DecodePredictor(data, predictor, bpc, colors, columns)
	if err != nil {
		return nil, fmt.Errorf("predictor failed: %w", err)
	}
	return out, nil
}

// FlateEncode compresses data with zlib. Predictor encoding is not
// supported, so params asking for one are rejected.
func FlateEncode(data []byte, params Params) ([]byte, error) {
	predictor, err := intParam(params, "Predictor", PredictorNone)
	if err != nil {
		return nil, err
	}
	if predictor > PredictorNone {
		return nil, fmt.Errorf("cannot encode /Predictor %d: %w", predictor, ErrUnsupportedFilterParameter)
	}

	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// inflate reads only from data; bytes after the zlib checksum are never
// consumed. A stream cut short yields what was recovered.
func inflate(data []byte, maxLen int64) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var buf bytes.Buffer
	if maxLen < 0 {
		_, err = io.Copy(&buf, zr)
	} else {
		_, err = io.CopyN(&buf, zr, maxLen)
		if err == io.EOF {
			err = nil
		}
	}
	if err == io.ErrUnexpectedEOF {
		logging.Logger().Debug("truncated flate stream", "recovered", buf.Len(), "input", len(data))
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
