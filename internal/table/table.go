// Package table renders the directory results: loading placeholders, the
// empty state, or one row per record with the search text highlighted.
package table

import (
	"github.com/hrconnect/hr-directory/internal/catalog"
	"github.com/hrconnect/hr-directory/internal/models"
)

const (
	// SkeletonRows is the number of placeholder rows shown while loading
	SkeletonRows = 5
	// EmptyMessage is shown when a query returns no records
	EmptyMessage = "No data found"
)

// Columns are the table headers in display order
var Columns = []string{"Name", "Contact", "Company", "Role", "Location"}

// Row is a display-ready record
type Row struct {
	Key      string    `json:"key"`
	Name     []Segment `json:"name"`
	Contact  []Segment `json:"contact"`
	Company  []Segment `json:"company"`
	Role     string    `json:"role"`
	Location string    `json:"location"`
	Striped  bool      `json:"striped,omitempty"`
	Pending  bool      `json:"pending,omitempty"`
}

// Model is what the renderers draw. Loading wins over Empty, Empty over Rows.
type Model struct {
	Loading bool  `json:"loading"`
	Empty   bool  `json:"empty"`
	Rows    []Row `json:"rows,omitempty"`
}

// Build derives the table model from the directory rows
func Build(cat *catalog.Catalog, rows []models.DirectoryRow, query string, loading bool) Model {
	if cat == nil {
		cat = catalog.Default()
	}
	if loading {
		return Model{Loading: true}
	}
	if len(rows) == 0 {
		return Model{Empty: true}
	}

	out := make([]Row, 0, len(rows))
	for i, r := range rows {
		rec := r.Record
		out = append(out, Row{
			Key:      r.Key,
			Name:     Highlight(rec.Name, query),
			Contact:  Highlight(rec.ContactNumber, query),
			Company:  Highlight(rec.CompanyName, query),
			Role:     cat.RoleLabel(rec.Role),
			Location: cat.LocationLabel(rec.Location),
			Striped:  i%2 == 0,
			Pending:  r.Pending,
		})
	}
	return Model{Rows: out}
}
