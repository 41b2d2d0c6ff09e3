// Package schema validates serialized backup payloads before any other
// component is allowed to trust them. Every rejection names the offending
// field so diagnostics stay actionable.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mkravets/jobvault/internal/common"
	"github.com/mkravets/jobvault/internal/model"
)

// ValidationError reports a missing or mis-typed field in a backup payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid backup payload: field %q %s", e.Field, e.Reason)
}

// Warning is attached to a successfully validated payload that needs caller
// attention, e.g. a recognized but older schema version.
type Warning struct {
	Message string
}

// filePayload mirrors the on-disk snapshot shape. Records is kept as a raw
// message so a missing key can be told apart from an empty array.
type filePayload struct {
	SchemaVersion string                  `json:"schemaVersion" validate:"required"`
	CreatedAt     time.Time               `json:"createdAt"`
	Records       json.RawMessage         `json:"records"`
	Settings      json.RawMessage         `json:"settings"`
	Metadata      *model.SnapshotMetadata `json:"metadata" validate:"required"`
}

// Validator checks backup payloads against the known schema versions.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator with struct validation configured to report JSON
// field names rather than Go ones.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate parses raw bytes into a BackupSnapshot. A nil error means the
// snapshot is safe to use; a non-nil Warning flags a recognized legacy
// schema version. Parse failures return common.ErrMalformedData; shape
// failures return a *ValidationError naming the field.
func (s *Validator) Validate(raw []byte) (*model.BackupSnapshot, *Warning, error) {
	var p filePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrMalformedData, err)
	}

	if err := s.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, nil, &ValidationError{Field: verrs[0].Field(), Reason: "is required"}
		}
		return nil, nil, fmt.Errorf("%w: %v", common.ErrMalformedData, err)
	}

	warning, err := checkVersion(p.SchemaVersion)
	if err != nil {
		return nil, nil, err
	}

	if p.Records == nil {
		return nil, nil, &ValidationError{Field: "records", Reason: "is required"}
	}
	var records []model.Record
	if err := json.Unmarshal(p.Records, &records); err != nil {
		return nil, nil, &ValidationError{Field: "records", Reason: "must be an array of records"}
	}
	if err := checkRecords(records); err != nil {
		return nil, nil, err
	}

	snap := &model.BackupSnapshot{
		SchemaVersion: p.SchemaVersion,
		CreatedAt:     p.CreatedAt,
		Records:       records,
		Settings:      p.Settings,
		Metadata:      *p.Metadata,
	}
	return snap, warning, nil
}

func checkVersion(version string) (*Warning, error) {
	switch version {
	case model.SchemaVersionCurrent:
		return nil, nil
	case model.SchemaVersionLegacy:
		return &Warning{Message: fmt.Sprintf(
			"backup uses older schema version %s; it will be upgraded to version %s on the next backup",
			version, model.SchemaVersionCurrent)}, nil
	default:
		return nil, &ValidationError{
			Field:  "schemaVersion",
			Reason: fmt.Sprintf("has unsupported value %q", version),
		}
	}
}

func checkRecords(records []model.Record) error {
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if r.Id == "" {
			return &ValidationError{
				Field:  fmt.Sprintf("records[%d].id", i),
				Reason: "is required",
			}
		}
		if _, dup := seen[r.Id]; dup {
			return &ValidationError{
				Field:  "records",
				Reason: fmt.Sprintf("contains duplicate id %q", r.Id),
			}
		}
		seen[r.Id] = struct{}{}
	}
	return nil
}
