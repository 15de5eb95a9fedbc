package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hrconnect/hr-directory/internal/models"
	"github.com/spf13/cobra"
)

func (a *app) catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the role and location codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			styles := a.styles()
			var sb strings.Builder
			writeOptions(&sb, styles.Header.Render("Roles"), a.opts.Catalog.Roles(), styles.Muted)
			sb.WriteString("\n")
			writeOptions(&sb, styles.Header.Render("Locations"), a.opts.Catalog.Locations(), styles.Muted)
			return write(cmd.OutOrStdout(), sb.String())
		},
	}
}

func writeOptions(sb *strings.Builder, title string, opts []models.Option, muted lipgloss.Style) {
	sb.WriteString(title)
	sb.WriteString("\n")

	width := 0
	for _, o := range opts {
		if w := lipgloss.Width(o.Value); w > width {
			width = w
		}
	}
	for _, o := range opts {
		sb.WriteString("  ")
		sb.WriteString(o.Value)
		sb.WriteString(strings.Repeat(" ", width-lipgloss.Width(o.Value)+2))
		sb.WriteString(muted.Render(o.Label))
		sb.WriteString("\n")
	}
}
