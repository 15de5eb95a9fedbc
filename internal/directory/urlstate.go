package directory

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/hrconnect/hr-directory/internal/catalog"
	"github.com/hrconnect/hr-directory/internal/models"
)

// URL query parameter names
const (
	ParamQuery    = "query"
	ParamRole     = "role"
	ParamLocation = "location"
	ParamPage     = "page"
)

// EncodeState renders the shareable query string for s. Parameters at their
// default (blank query, unset filters, page 1) are omitted.
func EncodeState(s models.SearchState) string {
	var parts []string
	add := func(key, value string) {
		parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(value))
	}

	if strings.TrimSpace(s.Query) != "" {
		add(ParamQuery, s.Query)
	}
	if s.Role != "" {
		add(ParamRole, s.Role)
	}
	if s.Location != "" {
		add(ParamLocation, s.Location)
	}
	if s.Page > 1 {
		add(ParamPage, strconv.Itoa(s.Page))
	}
	return strings.Join(parts, "&")
}

// DecodeState parses a query string into a search state. Unknown role or
// location codes decode as unset; a missing, non-numeric or < 1 page is 1.
func DecodeState(rawQuery string, cat *catalog.Catalog) models.SearchState {
	if cat == nil {
		cat = catalog.Default()
	}
	// a malformed pair is skipped; the rest still applies
	values, _ := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))

	s := models.DefaultSearchState()
	s.Query = values.Get(ParamQuery)
	s.Role = cat.Normalize(catalog.KindRole, values.Get(ParamRole))
	s.Location = cat.Normalize(catalog.KindLocation, values.Get(ParamLocation))
	if page, err := strconv.Atoi(strings.TrimSpace(values.Get(ParamPage))); err == nil && page > 1 {
		s.Page = page
	}
	return s
}
