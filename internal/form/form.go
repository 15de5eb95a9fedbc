// Package form implements the "Add HR Data" popup: field state, per-field
// errors and validated submission.
package form

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/hrconnect/hr-directory/internal/catalog"
	"github.com/hrconnect/hr-directory/internal/models"
	"github.com/hrconnect/hr-directory/pkg/metrics"
)

// ErrSubmitInProgress is returned when a submit is attempted while another is pending
var ErrSubmitInProgress = errors.New("a submission is already in progress")

// ErrUnknownField is returned when editing a field the form does not have
var ErrUnknownField = errors.New("unknown form field")

// SaveFunc persists a validated record
type SaveFunc func(ctx context.Context, rec models.ContactRecord) error

// State is a snapshot of the form
type State struct {
	Open       bool                 `json:"open"`
	Submitting bool                 `json:"submitting"`
	Values     models.ContactRecord `json:"values"`
	Errors     models.FieldErrors   `json:"errors"`
}

// Form collects one new contact record
type Form struct {
	mu         sync.Mutex
	catalog    *catalog.Catalog
	validate   *validator.Validate
	values     models.ContactRecord
	errors     models.FieldErrors
	open       bool
	submitting bool
}

// New creates an empty, closed form validating roles and locations against cat
func New(cat *catalog.Catalog) *Form {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Form{
		catalog:  cat,
		validate: newValidator(cat),
		errors:   models.FieldErrors{},
	}
}

// Open shows the form
func (f *Form) Open() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = true
}

// Close hides the form. Entered values are kept until a successful save.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
}

// IsOpen reports whether the form is shown
func (f *Form) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// Set updates one field and clears only that field's error
func (f *Form) Set(field, value string) error {
	if !models.IsContactField(field) {
		return ErrUnknownField
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if field == models.FieldRole || field == models.FieldLocation {
		// dropdowns emit "" when cleared; "any" is not a valid record value
		if catalog.IsAny(value) {
			value = ""
		}
	}
	f.values = f.values.WithField(field, value)
	delete(f.errors, field)
	return nil
}

// Fill sets every field of rec, clearing the errors of each field
func (f *Form) Fill(rec models.ContactRecord) {
	for _, field := range models.ContactFields {
		_ = f.Set(field, rec.Field(field))
	}
}

// Values returns the entered values
func (f *Form) Values() models.ContactRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Errors returns a copy of the current field errors
func (f *Form) Errors() models.FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors.Clone()
}

// State returns a consistent snapshot
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{
		Open:       f.open,
		Submitting: f.submitting,
		Values:     f.values,
		Errors:     f.errors.Clone(),
	}
}

// Validate recomputes the error set wholesale from the entered values
func (f *Form) Validate() models.FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = validateRecord(f.validate, f.values)
	return f.errors.Clone()
}

// Submit validates and, if valid, saves the record. Invalid input returns the
// field errors without calling save. A save error is returned as-is and the
// entered values are kept; on success the form is cleared and closed.
func (f *Form) Submit(ctx context.Context, save SaveFunc) (models.FieldErrors, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}

	f.errors = validateRecord(f.validate, f.values)
	if f.errors.HasErrors() {
		errs := f.errors.Clone()
		f.mu.Unlock()
		for field := range errs {
			metrics.FormValidationFailures.WithLabelValues(field).Inc()
		}
		return errs, nil
	}

	rec := trimmed(f.values)
	rec.Role = f.catalog.Normalize(catalog.KindRole, rec.Role)
	rec.Location = f.catalog.Normalize(catalog.KindLocation, rec.Location)
	f.submitting = true
	f.mu.Unlock()

	err := save(ctx, rec)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		return nil, err
	}

	f.values = models.ContactRecord{}
	f.errors = models.FieldErrors{}
	f.open = false
	return nil, nil
}

func trimmed(rec models.ContactRecord) models.ContactRecord {
	return models.ContactRecord{
		Name:          strings.TrimSpace(rec.Name),
		ContactNumber: rec.ContactNumber,
		CompanyName:   strings.TrimSpace(rec.CompanyName),
		Role:          strings.TrimSpace(rec.Role),
		Location:      strings.TrimSpace(rec.Location),
	}
}
