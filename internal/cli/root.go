// Package cli implements directoryctl, a terminal client for the HR contact
// directory that shares the web page's search, URL and form rules.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hrconnect/hr-directory/internal/catalog"
	"github.com/hrconnect/hr-directory/internal/directory"
	"github.com/hrconnect/hr-directory/pkg/contactapi"
	"github.com/hrconnect/hr-directory/pkg/httpclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes
const (
	ExitOK         = 0
	ExitValidation = 1
	ExitBackend    = 2
)

const (
	envAPIBaseURL = "CONTACT_API_BASE_URL"
	envAPITimeout = "CONTACT_API_TIMEOUT_SECONDS"
)

// ExitError carries the process exit code for a failed command
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an Execute error onto a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitValidation
}

// BackendFactory builds the contact API client for a command
type BackendFactory func(baseURL string, timeout time.Duration) (directory.Backend, error)

// Options configure the root command
type Options struct {
	Version    string
	Catalog    *catalog.Catalog
	NewBackend BackendFactory
}

type app struct {
	opts  Options
	v     *viper.Viper
	plain bool
}

// DefaultBackend talks to the contact API over HTTP
func DefaultBackend(baseURL string, timeout time.Duration) (directory.Backend, error) {
	return contactapi.NewClient(baseURL, httpclient.NewClient(timeout))
}

// NewRootCommand builds the directoryctl command tree
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.NewBackend == nil {
		opts.NewBackend = DefaultBackend
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	a := &app{opts: opts, v: viper.New()}
	a.v.SetDefault(envAPITimeout, 10)
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "directoryctl",
		Short:         "Search and extend the HR contact directory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("api-url", "", "contact API base URL (env "+envAPIBaseURL+")")
	root.PersistentFlags().Int("timeout", 10, "contact API timeout in seconds (env "+envAPITimeout+")")
	root.PersistentFlags().BoolVar(&a.plain, "plain", false, "disable colors and highlighting")
	_ = a.v.BindPFlag(envAPIBaseURL, root.PersistentFlags().Lookup("api-url"))  //nolint:errcheck
	_ = a.v.BindPFlag(envAPITimeout, root.PersistentFlags().Lookup("timeout")) //nolint:errcheck

	root.AddCommand(a.listCmd(), a.addCmd(), a.catalogCmd(), a.versionCmd())
	return root
}

func (a *app) backend() (directory.Backend, error) {
	baseURL := strings.TrimSpace(a.v.GetString(envAPIBaseURL))
	if baseURL == "" {
		return nil, &ExitError{Code: ExitValidation, Err: fmt.Errorf("--api-url or %s is required", envAPIBaseURL)}
	}

	timeout := time.Duration(a.v.GetInt(envAPITimeout)) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	b, err := a.opts.NewBackend(baseURL, timeout)
	if err != nil {
		return nil, &ExitError{Code: ExitValidation, Err: err}
	}
	return b, nil
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "directoryctl %s\n", a.opts.Version)
			return err
		},
	}
}

func write(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}
