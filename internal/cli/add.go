package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hrconnect/hr-directory/internal/directory"
	"github.com/hrconnect/hr-directory/internal/form"
	"github.com/hrconnect/hr-directory/internal/models"
	apperrors "github.com/hrconnect/hr-directory/pkg/errors"
	"github.com/spf13/cobra"
)

func (a *app) addCmd() *cobra.Command {
	var rec models.ContactRecord

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an HR contact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := form.New(a.opts.Catalog)
			f.Fill(rec)

			// validate before building a client so bad input never needs the API
			if errs := f.Validate(); errs.HasErrors() {
				return a.reportFieldErrors(cmd, errs)
			}

			backend, err := a.backend()
			if err != nil {
				return err
			}

			errs, err := f.Submit(contextOrBackground(cmd.Context()), backend.Create)
			if err != nil {
				return &ExitError{Code: ExitBackend, Err: errors.New(apperrors.UserMessage(err))}
			}
			if errs.HasErrors() {
				return a.reportFieldErrors(cmd, errs)
			}

			return write(cmd.OutOrStdout(), directory.ContactAddedMessage+"\n")
		},
	}

	cmd.Flags().StringVar(&rec.Name, "name", "", "full name (required)")
	cmd.Flags().StringVar(&rec.ContactNumber, "contact-number", "", "10-digit contact number (required)")
	cmd.Flags().StringVar(&rec.CompanyName, "company", "", "company name (required)")
	cmd.Flags().StringVar(&rec.Role, "role", "", "role code (required)")
	cmd.Flags().StringVar(&rec.Location, "location", "", "location code (required)")
	return cmd
}

func (a *app) reportFieldErrors(cmd *cobra.Command, errs models.FieldErrors) error {
	var sb strings.Builder
	for _, field := range models.ContactFields {
		if msg, ok := errs[field]; ok {
			fmt.Fprintf(&sb, "%s: %s\n", field, msg)
		}
	}
	if err := write(cmd.ErrOrStderr(), sb.String()); err != nil {
		return err
	}
	return &ExitError{Code: ExitValidation, Err: fmt.Errorf("%d invalid field(s)", len(errs))}
}
