package handlers

import (
	"html/template"

	"github.com/hrconnect/hr-directory/internal/catalog"
	"github.com/hrconnect/hr-directory/internal/directory"
	"github.com/hrconnect/hr-directory/internal/form"
	"github.com/hrconnect/hr-directory/internal/models"
	"github.com/hrconnect/hr-directory/internal/session"
	"github.com/hrconnect/hr-directory/internal/table"
)

const paginationWindow = 7

// ViewResponse is the directory view sent to the page
type ViewResponse struct {
	Version       uint64                `json:"version"`
	State         models.SearchState    `json:"state"`
	URL           string                `json:"url"`
	Loading       bool                  `json:"loading"`
	Role          models.Option         `json:"role"`
	Location      models.Option         `json:"location"`
	Pages         []int                 `json:"pages"`
	Table         table.Model           `json:"table"`
	TableHTML     template.HTML         `json:"tableHtml"`
	Notifications []models.Notification `json:"notifications,omitempty"`
}

// FormResponse is the popup form sent to the page
type FormResponse struct {
	form.State
	RolePlaceholder     string          `json:"rolePlaceholder"`
	LocationPlaceholder string          `json:"locationPlaceholder"`
	RoleOptions         []models.Option `json:"roleOptions"`
	LocationOptions     []models.Option `json:"locationOptions"`
}

func buildView(cat *catalog.Catalog, v directory.View) (ViewResponse, error) {
	model := table.Build(cat, v.Rows, v.State.Query, v.Loading)
	html, err := table.HTML(model)
	if err != nil {
		return ViewResponse{}, err
	}

	role := catalog.AnyOption(catalog.KindRole)
	if o, ok := cat.Role(v.State.Role); ok {
		role = o
	}
	location := catalog.AnyOption(catalog.KindLocation)
	if o, ok := cat.Location(v.State.Location); ok {
		location = o
	}

	return ViewResponse{
		Version:   v.Version,
		State:     v.State,
		URL:       v.URL,
		Loading:   v.Loading,
		Role:      role,
		Location:  location,
		Pages:     pageWindow(v.State.Page, v.State.TotalPages),
		Table:     model,
		TableHTML: html,
	}, nil
}

func buildForm(sess *session.Session) FormResponse {
	return FormResponse{
		State:               sess.Form.State(),
		RolePlaceholder:     sess.FormRole.Placeholder(),
		LocationPlaceholder: sess.FormLocation.Placeholder(),
		RoleOptions:         sess.FormRole.Options(),
		LocationOptions:     sess.FormLocation.Options(),
	}
}

// pageWindow lists at most paginationWindow page numbers around current
func pageWindow(current, total int) []int {
	if total < 1 {
		total = 1
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		total = current
	}

	start := current - paginationWindow/2
	if start < 1 {
		start = 1
	}
	end := start + paginationWindow - 1
	if end > total {
		end = total
		start = end - paginationWindow + 1
		if start < 1 {
			start = 1
		}
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
