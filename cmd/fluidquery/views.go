package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pakkasys/fluidquery/client"
	"github.com/pakkasys/fluidquery/sendfunc"
	"github.com/pakkasys/fluidquery/server"
	"github.com/pakkasys/fluidquery/views"
	"github.com/spf13/cobra"
)

const defaultServerURL = "http://localhost:8080"

type noInput struct{}

type viewsInput struct {
	Name     string      `json:"name,omitempty"`
	Path     client.Path `json:"path,omitempty"`
	Query    any         `json:"query,omitempty"`
	Fragment any         `json:"fragment,omitempty"`
}

func (c *cli) viewsCmd() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "views",
		Short: "Manage the saved views of a running server",
	}
	cmd.PersistentFlags().StringVarP(
		&serverURL, "server", "s", defaultServerURL, "Base URL of the fluidquery server",
	)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	host := func() string { return strings.TrimRight(serverURL, "/") }

	cmd.AddCommand(
		c.viewsListCmd(httpClient, host),
		c.viewsGetCmd(httpClient, host),
		c.viewsCreateCmd(httpClient, host),
		c.viewsDeleteCmd(httpClient, host),
	)

	return cmd
}

func (c *cli) viewsListCmd(httpClient *http.Client, host func() string) *cobra.Command {
	var opts views.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			send := sendfunc.New[views.ListOptions, server.ListViewsOutput](
				httpClient, client.Path{server.ViewsPath}, http.MethodGet,
			)
			out, err := sendfunc.SendAndExtractPayload(cmd.Context(), send, host(), &opts)
			if err != nil {
				return err
			}
			for _, view := range out.Views {
				fmt.Fprintf(c.stdout, "%s\t%s\n", view.Name, view.URL)
			}
			c.success("%d of %d views", len(out.Views), out.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", views.DefaultLimit, "Maximum number of views")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Number of views to skip")

	return cmd
}

func (c *cli) viewsGetCmd(httpClient *http.Client, host func() string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Print the URL of a saved view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			send := sendfunc.New[noInput, server.ViewOutput](
				httpClient, viewPath(args[0]), http.MethodGet,
			)
			out, err := sendfunc.SendAndExtractPayload(cmd.Context(), send, host(), &noInput{})
			if err != nil {
				return err
			}
			if asJSON {
				return c.printJSON(out, false)
			}
			fmt.Fprintln(c.stdout, out.URL)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the whole view as JSON")

	return cmd
}

func (c *cli) viewsCreateCmd(httpClient *http.Client, host func() string) *cobra.Command {
	var (
		paths    []string
		query    string
		fragment string
	)

	cmd := &cobra.Command{
		Use:     "create <name>",
		Short:   "Save a view",
		Example: `  fluidquery views create daily --path /reports --query '{"range":{"days":7}}'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := &viewsInput{Name: args[0], Path: paths}
			var err error
			if input.Query, err = parseOptionalJSON("query", query); err != nil {
				return err
			}
			if input.Fragment, err = parseOptionalJSON("fragment", fragment); err != nil {
				return err
			}

			send := sendfunc.New[viewsInput, server.ViewOutput](
				httpClient, client.Path{server.ViewsPath}, http.MethodPost,
			)
			out, err := sendfunc.SendAndExtractPayload(cmd.Context(), send, host(), input)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, out.URL)
			c.success("Saved view %q", out.Name)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&paths, "path", "p", nil, "Path segment (repeatable)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Query as a JSON value")
	cmd.Flags().StringVarP(&fragment, "fragment", "f", "", "Fragment as a JSON value")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

func (c *cli) viewsDeleteCmd(httpClient *http.Client, host func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			send := sendfunc.New[noInput, server.DeleteViewOutput](
				httpClient, viewPath(args[0]), http.MethodDelete,
			)
			out, err := sendfunc.SendAndExtractPayload(cmd.Context(), send, host(), &noInput{})
			if err != nil {
				return err
			}
			if out.Deleted == 0 {
				return fmt.Errorf("view %q not found", args[0])
			}
			c.success("Deleted view %q", args[0])
			return nil
		},
	}
}

// viewPath returns the path of the named view.
func viewPath(name string) client.Path {
	return client.Path{server.ViewsPath, url.PathEscape(name)}
}
