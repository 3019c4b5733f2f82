package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrDoctorIssuesFound = errors.New("doctor found issues")

type DoctorIssueLevel string

const (
	DoctorIssueLevelError DoctorIssueLevel = "error"
	DoctorIssueLevelWarn  DoctorIssueLevel = "warn"
)

type DoctorIssue struct {
	Level   DoctorIssueLevel `json:"level"`
	Code    string           `json:"code"`
	Message string           `json:"message"`
	Key     string           `json:"key,omitempty"`
}

type DoctorReport struct {
	Issues []DoctorIssue `json:"issues"`
}

func (r DoctorReport) HasErrors() bool {
	for _, it := range r.Issues {
		if it.Level == DoctorIssueLevelError {
			return true
		}
	}
	return false
}

func (r *DoctorReport) Add(level DoctorIssueLevel, code, key, format string, args ...any) {
	r.Issues = append(r.Issues, DoctorIssue{
		Level:   level,
		Code:    code,
		Key:     key,
		Message: fmt.Sprintf(format, args...),
	})
}

// KeyCheck validates every stored value whose key starts with Prefix.
// Decode is given the raw bytes and returns an error when they do not hold the expected shape.
type KeyCheck struct {
	Prefix string
	Decode func(raw []byte) error
}

// Doctor reads the backend directly (pending writes are not considered) and reports
// values that cannot be read, are not JSON, or fail their check.
func (s *Store) Doctor(ctx context.Context, checks ...KeyCheck) DoctorReport {
	report := DoctorReport{Issues: []DoctorIssue{}}
	for _, c := range checks {
		keys, err := s.backend.Keys(ctx, c.Prefix)
		if err != nil {
			report.Add(DoctorIssueLevelError, "list_failed", c.Prefix, "list keys: %v", err)
			continue
		}
		for _, k := range keys {
			raw, ok, err := s.backend.Get(ctx, k)
			switch {
			case err != nil:
				report.Add(DoctorIssueLevelError, "read_failed", k, "read: %v", err)
				continue
			case !ok:
				continue
			}
			if !json.Valid(raw) {
				report.Add(DoctorIssueLevelError, "invalid_json", k, "stored value is not valid JSON; it is ignored on load")
				continue
			}
			if c.Decode != nil {
				if err := c.Decode(raw); err != nil {
					report.Add(DoctorIssueLevelError, "invalid_value", k, "%v", err)
				}
			}
		}
	}
	return report
}
