package models

// SearchState is the directory's query, filters and pagination
type SearchState struct {
	Query      string `json:"query"`
	Role       string `json:"role"`
	Location   string `json:"location"`
	Page       int    `json:"page"`
	TotalPages int    `json:"totalPages"`
}

// DefaultSearchState is the state of a fresh directory with no URL parameters
func DefaultSearchState() SearchState {
	return SearchState{Page: 1, TotalPages: 1}
}

// ListParams are the query parameters of GET /api/v1/contact/all
type ListParams struct {
	SearchQuery string
	Role        string
	Location    string
	Page        int
}

// ListParams derives the backend request for the state
func (s SearchState) ListParams() ListParams {
	page := s.Page
	if page < 1 {
		page = 1
	}
	return ListParams{
		SearchQuery: s.Query,
		Role:        s.Role,
		Location:    s.Location,
		Page:        page,
	}
}

// ListResult is the response of GET /api/v1/contact/all
type ListResult struct {
	Data       []ContactRecord `json:"data"`
	TotalPages int             `json:"totalPages"`
}

// Option is a selectable catalog entry
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// IsZero reports whether the option is the empty selection
func (o Option) IsZero() bool {
	return o.Value == ""
}
