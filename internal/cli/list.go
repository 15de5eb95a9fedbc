package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hrconnect/hr-directory/internal/catalog"
	"github.com/hrconnect/hr-directory/internal/directory"
	"github.com/hrconnect/hr-directory/internal/models"
	"github.com/hrconnect/hr-directory/internal/table"
	"github.com/spf13/cobra"
)

type listFlags struct {
	query    string
	role     string
	location string
	page     int
	url      string
}

func (a *app) listCmd() *cobra.Command {
	var f listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Search the directory",
		Long: "Search the directory by free text, role and location.\n" +
			"A shareable link (or just its query string) can be passed with --url;\n" +
			"explicit flags override what the link says.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state := directory.DecodeState(queryPart(f.url), a.opts.Catalog)
			flags := cmd.Flags()
			if flags.Changed("query") {
				state.Query = f.query
				state.Page = 1
			}
			if flags.Changed("role") {
				state.Role = a.opts.Catalog.Normalize(catalog.KindRole, f.role)
				state.Page = 1
			}
			if flags.Changed("location") {
				state.Location = a.opts.Catalog.Normalize(catalog.KindLocation, f.location)
				state.Page = 1
			}
			if flags.Changed("page") {
				if f.page < 1 {
					return &ExitError{Code: ExitValidation, Err: errors.New("--page must be at least 1")}
				}
				state.Page = f.page
			}
			return a.runList(cmd, state)
		},
	}

	cmd.Flags().StringVarP(&f.query, "query", "q", "", "search text matched against name, contact number and company")
	cmd.Flags().StringVar(&f.role, "role", "", "role code, e.g. HR_MANAGER (any = no filter)")
	cmd.Flags().StringVar(&f.location, "location", "", "location code, e.g. bengaluru (any = no filter)")
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().StringVar(&f.url, "url", "", "shareable directory link or query string")
	return cmd
}

// queryPart extracts the query string from a link, a "?..." string or a bare query
func queryPart(link string) string {
	link = strings.TrimSpace(link)
	if i := strings.IndexByte(link, '?'); i >= 0 {
		link = link[i+1:]
	}
	if i := strings.IndexByte(link, '#'); i >= 0 {
		link = link[:i]
	}
	return link
}

func (a *app) runList(cmd *cobra.Command, state models.SearchState) error {
	backend, err := a.backend()
	if err != nil {
		return err
	}

	var (
		mu     sync.Mutex
		failed *models.Notification
	)
	ctrl := directory.New(directory.Config{
		Backend: backend,
		Catalog: a.opts.Catalog,
		Notifier: directory.NotifierFunc(func(n models.Notification) {
			if n.Level != models.NotificationError {
				return
			}
			mu.Lock()
			failed = &n
			mu.Unlock()
		}),
	})
	defer ctrl.Close()

	ctrl.Load(directory.EncodeState(state))
	if err := ctrl.Wait(contextOrBackground(cmd.Context())); err != nil {
		return &ExitError{Code: ExitBackend, Err: err}
	}

	mu.Lock()
	defer mu.Unlock()
	if failed != nil {
		return &ExitError{Code: ExitBackend, Err: errors.New(failed.Message)}
	}

	view := ctrl.View()
	model := table.Build(a.opts.Catalog, view.Rows, view.State.Query, false)

	var sb strings.Builder
	sb.WriteString(table.RenderText(model, a.styles()))
	fmt.Fprintf(&sb, "Page %d of %d\n", view.State.Page, view.State.TotalPages)
	if view.URL != "" {
		fmt.Fprintf(&sb, "Link: ?%s\n", view.URL)
	}
	return write(cmd.OutOrStdout(), sb.String())
}

func (a *app) styles() table.TextStyles {
	if a.plain {
		return table.TextStyles{}
	}
	return table.DefaultTextStyles()
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
