package fetcher

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// DecodeJSONArray decodes a JSON array element by element. A top-level object
// whose first array-valued field holds the elements ({"items":[...]}) is
// accepted as well.
func DecodeJSONArray[T any](ctx context.Context, r io.Reader) ([]T, error) {
	decoder := json.NewDecoder(r)

	tok, err := decoder.Token()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, eris.Wrap(err, "json: read opening token")
	}

	if delim, ok := tok.(json.Delim); ok && delim == '{' {
		if err := seekArrayField(decoder); err != nil {
			return nil, err
		}
	} else if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, eris.Errorf("json: expected '[', got %v", tok)
	}

	var out []T
	for decoder.More() {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "json: context cancelled")
		}
		var item T
		if err := decoder.Decode(&item); err != nil {
			return nil, eris.Wrapf(err, "json: decode element %d", len(out))
		}
		out = append(out, item)
	}

	if _, err := decoder.Token(); err != nil && err != io.EOF {
		return nil, eris.Wrap(err, "json: read closing token")
	}
	return out, nil
}

// seekArrayField advances the decoder past object keys until it has consumed
// the '[' of the first array value.
func seekArrayField(decoder *json.Decoder) error {
	for decoder.More() {
		if _, err := decoder.Token(); err != nil { // key
			return eris.Wrap(err, "json: read object key")
		}
		tok, err := decoder.Token()
		if err != nil {
			return eris.Wrap(err, "json: read object value")
		}
		delim, ok := tok.(json.Delim)
		if !ok {
			continue
		}
		if delim == '[' {
			return nil
		}
		// Skip nested objects wholesale.
		if err := skipNested(decoder, delim); err != nil {
			return err
		}
	}
	return eris.New("json: object has no array field")
}

func skipNested(decoder *json.Decoder, open json.Delim) error {
	depth := 1
	for depth > 0 {
		tok, err := decoder.Token()
		if err != nil {
			return eris.Wrapf(err, "json: skip %v", open)
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}
