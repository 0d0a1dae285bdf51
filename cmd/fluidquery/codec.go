package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pakkasys/fluidquery/client"
	"github.com/pakkasys/fluidquery/logging"
	"github.com/pakkasys/fluidquery/urlencoder"
	"github.com/spf13/cobra"
)

func (c *cli) encodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode [json]",
		Short: "Encode a JSON value as a query string",
		Long: `Encode a JSON value as a query string. The value is read from the
argument or, when there is none, from standard input.`,
		Example: `  fluidquery encode '{"filter":{"owner":"alice"},"public":true}'
  echo '{"page":2}' | fluidquery encode`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := c.readJSONArg(args)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, urlencoder.Encode(value))
			return nil
		},
	}
}

func (c *cli) decodeCmd() *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "decode [query]",
		Short: "Decode a query string into JSON",
		Long: `Decode a query string into JSON. A leading "?" or "#" is ignored, so a
full URL fragment or query can be pasted as is. The query is read from the
argument or, when there is none, from standard input.`,
		Example: `  fluidquery decode 'filter.owner=alice&public'`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := c.readArg(args)
			if err != nil {
				return err
			}
			return c.printJSON(urlencoder.Decode(strings.TrimSpace(query)), compact)
		},
	}

	cmd.Flags().BoolVar(&compact, "compact", false, "Print compact JSON")

	return cmd
}

func (c *cli) urlCmd() *cobra.Command {
	var (
		paths    []string
		query    string
		fragment string
	)

	cmd := &cobra.Command{
		Use:   "url",
		Short: "Compose a URL from path segments, a query and a fragment",
		Example: `  fluidquery url --path https://example.com/ --path /search \
    --query '{"q":"go"}' --fragment '{"top":true}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parts := client.URLParts{Path: paths}
			var err error
			if parts.Query, err = parseOptionalJSON("query", query); err != nil {
				return err
			}
			if parts.Fragment, err = parseOptionalJSON("fragment", fragment); err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, client.BuildURL(parts))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&paths, "path", "p", nil, "Path segment (repeatable)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Query as a JSON value")
	cmd.Flags().StringVarP(&fragment, "fragment", "f", "", "Fragment as a JSON value")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

func (c *cli) fetchCmd() *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetch a URL and print its JSON body",
		Long: `Fetch a URL and print its JSON body. Failures are logged and print
null, and the exit status is non-zero.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			logger, closeLog, err := c.newLogger(cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx := cmd.Context()
			if cfg.Fetch.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Fetch.Timeout)
				defer cancel()
			}

			fetcher := client.NewFetcher(
				&http.Client{Timeout: cfg.Fetch.Timeout},
				logging.Adapter{Logger: logger},
			)
			value := fetcher.FetchJSON(ctx, args[0])
			if err := c.printJSON(value, compact); err != nil {
				return err
			}
			if value == nil {
				return fmt.Errorf("no data from %s", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&compact, "compact", false, "Print compact JSON")

	return cmd
}

// readArg returns the only argument or, without one, standard input.
func (c *cli) readArg(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(c.stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func (c *cli) readJSONArg(args []string) (any, error) {
	raw, err := c.readArg(args)
	if err != nil {
		return nil, err
	}
	return parseOptionalJSON("input", raw)
}

// parseOptionalJSON parses raw keeping numbers as json.Number. Blank input
// yields nil.
func parseOptionalJSON(name string, raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("invalid JSON %s: %w", name, err)
	}
	return value, nil
}

func (c *cli) printJSON(value any, compact bool) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if !compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err := c.stdout.Write(buf.Bytes())
	return err
}
