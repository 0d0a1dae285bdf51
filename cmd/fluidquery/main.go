package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

// cli holds the streams and environment shared by the commands.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string

	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	c := &cli{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		getenv: os.Getenv,
	}
	if err := c.rootCmd().Execute(); err != nil {
		c.errorMsg("%s", err)
		os.Exit(1)
	}
}

func (c *cli) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fluidquery",
		Short: "Encode nested values as URL query strings and back",
		Long: `fluidquery converts nested JSON values to flat URL query strings and
back, composes URLs from path segments, and serves both over HTTP together
with a store of named saved views.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetIn(c.stdin)
	rootCmd.SetOut(c.stdout)
	rootCmd.SetErr(c.stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "Path to a YAML config file")
	flags.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&c.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(
		c.encodeCmd(),
		c.decodeCmd(),
		c.urlCmd(),
		c.fetchCmd(),
		c.serveCmd(),
		c.viewsCmd(),
		c.versionCmd(),
	)

	return rootCmd
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.stdout, "fluidquery %s (%s)\n", version, commit)
		},
	}
}

// success prints a success message.
func (c *cli) success(format string, args ...any) {
	color.New(color.FgGreen).Fprint(c.stderr, "✓ ")
	fmt.Fprintf(c.stderr, format+"\n", args...)
}

// errorMsg prints an error message.
func (c *cli) errorMsg(format string, args ...any) {
	color.New(color.FgRed).Fprint(c.stderr, "✗ ")
	fmt.Fprintf(c.stderr, format+"\n", args...)
}
