package filters

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hhrutter/lzw"
)

// LZWDecode expands LZW compressed data. /EarlyChange defaults to 1, the
// code width growing one code early as in TIFF. Predictors are handled as
// for FlateDecode.
func LZWDecode(data []byte, params Params) ([]byte, error) {
	early, err := intParam(params, "EarlyChange", 1)
	if err != nil {
		return nil, err
	}
	predictor, err := intParam(params, "Predictor", PredictorNone)
	if err != nil {
		return nil, err
	}

	rc := lzw.NewReader(bytes.NewReader(data), early == 1)
	defer rc.Close()
	out, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("lzw decompression failed: %w", err)
	}
	return unpredict(out, params, predictor)
}
