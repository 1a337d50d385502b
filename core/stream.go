package core

import (
	"fmt"

	"github.com/tsawler/pdfxref/internal/filters"
)

// Decode runs the stream data through its /Filter chain. /DecodeParms may be
// a single dictionary, or an array parallel to the filter array. Image
// filters (DCTDecode, JPXDecode) are left encoded.
func (s *Stream) Decode() ([]byte, error) {
	names, err := s.filterNames()
	if err != nil {
		return nil, err
	}

	data := s.Data
	for i, name := range names {
		var params filters.Params
		params, err = s.decodeParms(i)
		if err == nil {
			data, err = decodeWithFilter(data, name, params)
		}
		if err != nil {
			if len(names) == 1 {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			return nil, fmt.Errorf("filter %d (%s): %w", i, name, err)
		}
	}
	return data, nil
}

// Filters returns the names in /Filter, in the order they are applied.
func (s *Stream) Filters() []string {
	names, _ := s.filterNames()
	return names
}

func (s *Stream) filterNames() ([]string, error) {
	switch f := s.Dict.Get("Filter").(type) {
	case nil, Null:
		return nil, nil
	case Name:
		return []string{string(f)}, nil
	case Array:
		names := make([]string, len(f))
		for i, o := range f {
			n, ok := o.(Name)
			if !ok {
				return nil, fmt.Errorf("filter %d is %v, not a name", i, o)
			}
			names[i] = string(n)
		}
		return names, nil
	default:
		return nil, fmt.Errorf("invalid /Filter %v", f)
	}
}

// decodeParms returns the parameters for the i-th filter. Streams are decoded
// without a resolver, so an indirect parameters dictionary is an error rather
// than being dropped.
func (s *Stream) decodeParms(i int) (filters.Params, error) {
	obj := s.Dict.Get("DecodeParms")
	if ref, ok := obj.(IndirectRef); ok {
		return nil, fmt.Errorf("%w: indirect /DecodeParms %v", ErrUnsupportedFilterParameter, ref)
	}
	if arr, ok := obj.(Array); ok {
		obj = arr.Get(i)
		if ref, ok := obj.(IndirectRef); ok {
			return nil, fmt.Errorf("%w: indirect /DecodeParms[%d] %v", ErrUnsupportedFilterParameter, i, ref)
		}
	}
	dict, _ := obj.(Dict)
	return paramsFromDict(dict), nil
}

func decodeWithFilter(data []byte, name string, params filters.Params) ([]byte, error) {
	switch name {
	case "FlateDecode", "Fl":
		return filters.FlateDecode(data, params)
	case "ASCIIHexDecode", "AHx":
		return filters.ASCIIHexDecode(data)
	case "ASCII85Decode", "A85":
		return filters.ASCII85Decode(data)
	case "LZWDecode", "LZW":
		return filters.LZWDecode(data, params)
	case "RunLengthDecode", "RL":
		return filters.RunLengthDecode(data)
	case "CCITTFaxDecode", "CCF":
		return filters.CCITTFaxDecode(data, params)
	case "DCTDecode", "DCT", "JPXDecode":
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFilter, name)
}

// paramsFromDict converts PDF values to the Go values filters expects.
func paramsFromDict(dict Dict) filters.Params {
	if dict == nil {
		return nil
	}
	params := make(filters.Params, len(dict))
	for k, v := range dict {
		switch o := v.(type) {
		case Null:
			continue
		case Int:
			params[k] = int(o)
		case Real:
			params[k] = float64(o)
		case Bool:
			params[k] = bool(o)
		case Name:
			params[k] = string(o)
		case String:
			params[k] = string(o)
		default:
			params[k] = v
		}
	}
	return params
}
