package store

import (
	"encoding/json"
	"fmt"

	"golang.org/x/mod/semver"

	"github.com/abhisek/brightpath/internal/performance"
)

// CurrentFormat is the record data format written by this release. A major
// bump means older releases can't read the record; minor bumps only add
// fields.
const CurrentFormat = "v1.0.0"

// EncodeHistory serializes h in the current format.
func EncodeHistory(h performance.History) ([]byte, string, error) {
	data, err := json.Marshal(h)
	if err != nil {
		return nil, "", fmt.Errorf("marshal history: %w", err)
	}
	return data, CurrentFormat, nil
}

// DecodeHistory parses stored record data. Rows without a valid format string
// are read as the current layout. Values outside their enums or ranges are
// reset by Normalize.
func DecodeHistory(data []byte, format string) (performance.History, error) {
	if semver.IsValid(format) && semver.Compare(semver.Major(format), semver.Major(CurrentFormat)) > 0 {
		return performance.History{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	var h performance.History
	if err := json.Unmarshal(data, &h); err != nil {
		return performance.History{}, fmt.Errorf("unmarshal history: %w", err)
	}
	return h.Normalize(), nil
}
