// Package codec decodes Home Assistant websocket frames into domain types.
//
// The hub's device list is loosely typed: link quality may be a number, a
// numeric string, null or the literal "None", and network addresses may be
// strings or integers. Everything is normalized here so the reconciliation
// engine only sees domain.OptionalInt and plain strings.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Frame is the envelope shared by every websocket message
type Frame struct {
	ID   int    `json:"id,omitempty"`
	Type string `json:"type"`
}

// PeekFrame reads only the envelope of a message
func PeekFrame(raw []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Frame{}, fmt.Errorf("failed to parse frame: %w", err)
	}
	return f, nil
}

// flexInt accepts numbers, numeric strings, null and placeholder strings
type flexInt struct {
	Value int
	Valid bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	*f = flexInt{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		switch strings.ToLower(s) {
		case "", "none", "null", "unk", "unknown":
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid integer %q", s)
		}
		*f = flexInt{Value: n, Valid: true}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	v, err := n.Float64()
	if err != nil {
		return err
	}
	*f = flexInt{Value: int(v), Valid: true}
	return nil
}

// flexString accepts strings and numbers; numbers are rendered as 16-bit hex
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
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
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid network address %s", data)
	}
	*f = flexString(fmt.Sprintf("0x%04X", n))
	return nil
}
