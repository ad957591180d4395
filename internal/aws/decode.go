package aws

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrMissingEnvelope is returned when a response lacks its top-level document key.
var ErrMissingEnvelope = errors.New("response is missing expected key")

// Decode parses a CLI response into one of the typed shapes in this package.
func Decode[T any](data []byte) (T, error) {
	var v T
	if len(bytes.TrimSpace(data)) == 0 {
		return v, errors.New("empty response")
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, err
	}
	return v, nil
}

// flexString accepts a JSON string or number. AWS returns pull request ids as
// strings, but older tooling and hand-written fixtures use numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

// flexTime accepts an RFC 3339 timestamp or epoch seconds. The AWS CLI emits
// ISO timestamps in v2 and epoch floats in v1.
type flexTime time.Time

func (f *flexTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		*f = flexTime(t)
		return nil
	}
	secs, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s", data)
	}
	whole := int64(secs)
	nanos := int64((secs - float64(whole)) * float64(time.Second))
	*f = flexTime(time.Unix(whole, nanos).UTC())
	return nil
}

func (f flexTime) Time() time.Time {
	return time.Time(f)
}
