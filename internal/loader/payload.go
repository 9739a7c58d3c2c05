package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/types"
)

// ErrUnsuccessful marks a payload that carried "success": false.
var ErrUnsuccessful = errors.New("source reported success=false")

// hrPayload is the HR endpoint body. Absent keys decode as nil slices and
// are stored as empty collections.
type hrPayload struct {
	Success    *bool          `json:"success"`
	Program    []types.Record `json:"program"`
	College    []types.Record `json:"college"`
	Staff      []types.Record `json:"staff"`
	Department []types.Record `json:"department"`
}

// listPayload covers the object shapes of the roster and session bodies.
type listPayload struct {
	Success  *bool           `json:"success"`
	Data     json.RawMessage `json:"data"`
	Students json.RawMessage `json:"students"`
}

func decodeHR(body []byte) (storage.Reference, error) {
	var p hrPayload
	if err := decodeJSON(body, &p); err != nil {
		return storage.Reference{}, err
	}
	if unsuccessful(p.Success) {
		return storage.Reference{}, ErrUnsuccessful
	}
	return storage.Reference{
		Programs:    p.Program,
		Colleges:    p.College,
		Employees:   p.Staff,
		Departments: p.Department,
	}, nil
}

// decodeSessions accepts a bare array, or an object carrying the array
// under "data" or, failing that, "students".
func decodeSessions(body []byte) ([]types.Record, error) {
	if isArray(body) {
		var records []types.Record
		if err := decodeJSON(body, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var p listPayload
	if err := decodeJSON(body, &p); err != nil {
		return nil, err
	}
	if unsuccessful(p.Success) {
		return nil, ErrUnsuccessful
	}

	switch {
	case present(p.Data):
		return decodeList(p.Data)
	case present(p.Students):
		return decodeList(p.Students)
	default:
		return []types.Record{}, nil
	}
}

// decodeRoster reads the local roster shape {"data": [...]}.
func decodeRoster(body []byte) ([]types.Record, error) {
	var p listPayload
	if err := decodeJSON(body, &p); err != nil {
		return nil, err
	}
	if unsuccessful(p.Success) {
		return nil, ErrUnsuccessful
	}
	if !present(p.Data) {
		return []types.Record{}, nil
	}
	return decodeList(p.Data)
}

func decodeList(raw json.RawMessage) ([]types.Record, error) {
	var records []types.Record
	if err := decodeJSON(raw, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// decodeJSON decodes with json.Number so ids keep their exact text.
func decodeJSON(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// Only an explicit false counts; a missing flag is a successful payload.
func unsuccessful(flag *bool) bool {
	return flag != nil && !*flag
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func isArray(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '['
}
