// Package wire encodes and decodes review server JSON payloads.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// xssiPrefix is prepended by Gerrit to every JSON response body.
var xssiPrefix = []byte(")]}'")

// DecodeError reports a payload that does not match the requested shape.
type DecodeError struct {
	Target string // Go type the payload was decoded into.
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Target, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode parses data into a value of type T. A leading XSSI guard line is
// stripped. Failures are returned as *DecodeError.
func Decode[T any](data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(stripXSSI(data), &v); err != nil {
		return v, &DecodeError{Target: fmt.Sprintf("%T", v), Err: err}
	}
	return v, nil
}

// DecodeAt parses the element at the gjson path into a value of type T.
// A missing element is a *DecodeError.
func DecodeAt[T any](data []byte, path string) (T, error) {
	var v T
	res := gjson.GetBytes(stripXSSI(data), path)
	if !res.Exists() {
		return v, &DecodeError{Target: fmt.Sprintf("%T", v), Err: fmt.Errorf("no element at %q", path)}
	}
	return Decode[T]([]byte(res.Raw))
}

// Encode marshals v to JSON.
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %T: %w", v, err)
	}
	return data, nil
}

func stripXSSI(data []byte) []byte {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(trimmed, xssiPrefix) {
		return data
	}
	return trimmed[len(xssiPrefix):]
}
