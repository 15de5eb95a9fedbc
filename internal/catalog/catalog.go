// Package catalog holds the fixed role and location options and the single
// lookup used by every dropdown, the results table and form validation.
package catalog

import (
	"strings"

	"github.com/hrconnect/hr-directory/internal/models"
)

// Kind distinguishes the two option lists
type Kind string

const (
	KindRole     Kind = "role"
	KindLocation Kind = "location"
)

// AnyValue is the sentinel code of the "no filter" entry
const AnyValue = "any"

const (
	AnyRoleLabel     = "Any Role"
	AnyLocationLabel = "Anywhere"
	UnknownRoleLabel = "Unknown Role"
)

var roleOptions = []models.Option{
	{Value: "HR", Label: "HR"},
	{Value: "HR_MANAGER", Label: "HR Manager"},
	{Value: "HR_EXECUTIVE", Label: "HR Executive"},
	{Value: "HRBP", Label: "HR Business Partner"},
	{Value: "RECRUITER", Label: "Recruiter"},
	{Value: "TECHNICAL_RECRUITER", Label: "Technical Recruiter"},
	{Value: "TALENT_ACQUISITION", Label: "Talent Acquisition"},
	{Value: "FOUNDER", Label: "Founder"},
	{Value: "ENGINEERING_MANAGER", Label: "Engineering Manager"},
	{Value: "CTO", Label: "CTO"},
}

var locationOptions = []models.Option{
	{Value: "bengaluru", Label: "Bengaluru"},
	{Value: "mumbai", Label: "Mumbai"},
	{Value: "delhi", Label: "Delhi"},
	{Value: "gurugram", Label: "Gurugram"},
	{Value: "noida", Label: "Noida"},
	{Value: "hyderabad", Label: "Hyderabad"},
	{Value: "chennai", Label: "Chennai"},
	{Value: "pune", Label: "Pune"},
	{Value: "kolkata", Label: "Kolkata"},
	{Value: "ahmedabad", Label: "Ahmedabad"},
	{Value: "jaipur", Label: "Jaipur"},
	{Value: "kochi", Label: "Kochi"},
	{Value: "remote", Label: "Remote"},
}

// Catalog is a read-only set of role and location options
type Catalog struct {
	roles     []models.Option
	locations []models.Option
	roleIdx   map[string]models.Option
	locIdx    map[string]models.Option
}

// New builds a catalog from the given option lists
func New(roles, locations []models.Option) *Catalog {
	c := &Catalog{
		roles:     append([]models.Option(nil), roles...),
		locations: append([]models.Option(nil), locations...),
		roleIdx:   make(map[string]models.Option, len(roles)),
		locIdx:    make(map[string]models.Option, len(locations)),
	}
	for _, o := range c.roles {
		c.roleIdx[roleKey(o.Value)] = o
	}
	for _, o := range c.locations {
		c.locIdx[o.Value] = o
	}
	return c
}

var defaultCatalog = New(roleOptions, locationOptions)

// Default returns the built-in catalog
func Default() *Catalog {
	return defaultCatalog
}

// role codes are matched case-insensitively
func roleKey(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Roles returns a copy of the role options
func (c *Catalog) Roles() []models.Option {
	return append([]models.Option(nil), c.roles...)
}

// Locations returns a copy of the location options
func (c *Catalog) Locations() []models.Option {
	return append([]models.Option(nil), c.locations...)
}

// Options returns the options of the given kind
func (c *Catalog) Options(kind Kind) []models.Option {
	if kind == KindRole {
		return c.Roles()
	}
	return c.Locations()
}

// Role looks up a role by code
func (c *Catalog) Role(code string) (models.Option, bool) {
	o, ok := c.roleIdx[roleKey(code)]
	return o, ok
}

// Location looks up a location by code
func (c *Catalog) Location(code string) (models.Option, bool) {
	o, ok := c.locIdx[strings.TrimSpace(code)]
	return o, ok
}

// Lookup finds a code in the list of the given kind
func (c *Catalog) Lookup(kind Kind, code string) (models.Option, bool) {
	if kind == KindRole {
		return c.Role(code)
	}
	return c.Location(code)
}

// Contains reports whether code is a known option of the given kind
func (c *Catalog) Contains(kind Kind, code string) bool {
	_, ok := c.Lookup(kind, code)
	return ok
}

// Normalize returns the canonical code for a known option and "" otherwise.
// The "any" sentinel normalizes to "".
func (c *Catalog) Normalize(kind Kind, code string) string {
	if IsAny(code) {
		return ""
	}
	o, ok := c.Lookup(kind, code)
	if !ok {
		return ""
	}
	return o.Value
}

// RoleLabel returns the display label of a role, or "Unknown Role"
func (c *Catalog) RoleLabel(code string) string {
	if o, ok := c.Role(code); ok {
		return o.Label
	}
	return UnknownRoleLabel
}

// LocationLabel returns the display label of a location, or the raw code when unknown
func (c *Catalog) LocationLabel(code string) string {
	if o, ok := c.Location(code); ok {
		return o.Label
	}
	return code
}

// AnyOption returns the "no filter" entry for the kind
func AnyOption(kind Kind) models.Option {
	if kind == KindRole {
		return models.Option{Value: AnyValue, Label: AnyRoleLabel}
	}
	return models.Option{Value: AnyValue, Label: AnyLocationLabel}
}

// IsAny reports whether code means "no filter"
func IsAny(code string) bool {
	code = strings.TrimSpace(code)
	return code == "" || strings.EqualFold(code, AnyValue)
}
