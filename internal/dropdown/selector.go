package dropdown

import (
	"strings"
	"sync"

	"github.com/hrconnect/hr-directory/internal/catalog"
	"github.com/hrconnect/hr-directory/internal/models"
)

// ChangeFunc receives the selected code, or "" when the selection is cleared
type ChangeFunc func(code string)

// Config configures a Selector
type Config struct {
	Kind    catalog.Kind
	Catalog *catalog.Catalog
	// Options overrides the catalog list for the kind
	Options []models.Option
	// Placeholder defaults to the kind's "any" label
	Placeholder string
	// Required selectors have no "any" entry and mark the placeholder with '*'
	Required bool
	OnChange ChangeFunc
}

// Selector is a single-choice search box over a list of options
type Selector struct {
	mu       sync.RWMutex
	kind     catalog.Kind
	catalog  *catalog.Catalog
	options  []models.Option
	holder   string
	required bool
	selected string
	errMsg   string
	onChange ChangeFunc
}

// New creates a selector. Without injected options it lists the full catalog for its kind.
func New(cfg Config) *Selector {
	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.Default()
	}

	options := cfg.Options
	if options == nil {
		options = cat.Options(cfg.Kind)
	}

	holder := cfg.Placeholder
	if holder == "" {
		holder = catalog.AnyOption(cfg.Kind).Label
	}

	return &Selector{
		kind:     cfg.Kind,
		catalog:  cat,
		options:  append([]models.Option(nil), options...),
		holder:   holder,
		required: cfg.Required,
		onChange: cfg.OnChange,
	}
}

// NewRoleSelector creates the role filter selector
func NewRoleSelector(cat *catalog.Catalog, onChange ChangeFunc) *Selector {
	return New(Config{Kind: catalog.KindRole, Catalog: cat, OnChange: onChange})
}

// NewLocationSelector creates the location filter selector
func NewLocationSelector(cat *catalog.Catalog, onChange ChangeFunc) *Selector {
	return New(Config{Kind: catalog.KindLocation, Catalog: cat, OnChange: onChange})
}

// Kind returns the option kind the selector lists
func (s *Selector) Kind() catalog.Kind {
	return s.kind
}

// Placeholder returns the text shown when nothing is selected
func (s *Selector) Placeholder() string {
	if s.required {
		return s.holder + "*"
	}
	return s.holder
}

// Options returns the selectable entries; optional selectors list "any" first
func (s *Selector) Options() []models.Option {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Option, 0, len(s.options)+1)
	if !s.required {
		out = append(out, catalog.AnyOption(s.kind))
	}
	return append(out, s.options...)
}

// Search filters the options by case-insensitive label or code substring
func (s *Selector) Search(term string) []models.Option {
	term = strings.ToLower(strings.TrimSpace(term))
	all := s.Options()
	if term == "" {
		return all
	}

	var out []models.Option
	for _, o := range all {
		if strings.Contains(strings.ToLower(o.Label), term) || strings.Contains(strings.ToLower(o.Value), term) {
			out = append(out, o)
		}
	}
	return out
}

// Select chooses code and notifies the change callback. Choosing "any" or an
// unknown code clears the selection and emits "".
func (s *Selector) Select(code string) string {
	s.mu.Lock()
	s.selected = s.resolve(code)
	s.errMsg = ""
	selected := s.selected
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange(selected)
	}
	return selected
}

// Clear removes the selection and notifies the change callback with ""
func (s *Selector) Clear() {
	s.Select("")
}

// SetSelected reflects an externally controlled selection without notifying
func (s *Selector) SetSelected(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = s.resolve(code)
}

// Value returns the selected code, "" when nothing is selected
func (s *Selector) Value() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Selected returns the selected option. Optional selectors report their "any"
// entry when nothing is selected; required ones report the zero Option.
func (s *Selector) Selected() models.Option {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.selected == "" {
		if s.required {
			return models.Option{}
		}
		return catalog.AnyOption(s.kind)
	}
	for _, o := range s.options {
		if o.Value == s.selected {
			return o
		}
	}
	return models.Option{}
}

// SetError flags the selector with a validation message ("" clears it)
func (s *Selector) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
}

// Error returns the validation message, if any
func (s *Selector) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// resolve maps code onto one of the selector's own options. Caller holds mu.
func (s *Selector) resolve(code string) string {
	if catalog.IsAny(code) {
		return ""
	}
	for _, o := range s.options {
		if o.Value == code {
			return o.Value
		}
	}
	// fall back to the catalog's matching rules (case-insensitive roles)
	if o, ok := s.catalog.Lookup(s.kind, code); ok {
		for _, own := range s.options {
			if own.Value == o.Value {
				return own.Value
			}
		}
	}
	return ""
}
