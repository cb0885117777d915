package main

import (
	"context"
	"embed"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"chatops/app"
	"chatops/markdown"
)

//go:embed templates/*.html static/*
var templatesFS embed.FS

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "chatops",
		Short:         "chat assistant backend and markdown tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), renderCmd(), extractCmd())
	return root
}

func serveCmd() *cobra.Command {
	var addr, driver, dsn string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "start the HTTP service",
		Long: `Starts the chat API, admin API and HTML pages. Settings come from
CHATOPS_* environment variables; flags override them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isatty.IsTerminal(os.Stderr.Fd()) {
				app.Logger().SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			}
			cfg := app.LoadConfig()
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("db-driver") {
				cfg.DBDriver = driver
			}
			if cmd.Flags().Changed("db-dsn") {
				cfg.DBDSN = dsn
			}
			return app.Run(cmd.Context(), cfg, templatesFS)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, e.g. :3005 or 127.0.0.1:8080")
	cmd.Flags().StringVar(&driver, "db-driver", "", "database driver: sqlite3 or pgx")
	cmd.Flags().StringVar(&dsn, "db-dsn", "", "database file or connection string")
	return cmd
}

func renderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render [file]",
		Short: "convert markdown to HTML",
		Long:  "Reads markdown from file, or stdin when no file is given, and writes HTML to stdout.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), markdown.Render(src))
			return err
		},
	}
}

func extractCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "convert rendered HTML back to markdown or plain text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var out string
			switch strings.ToLower(format) {
			case "markdown", "md":
				out = markdown.ToMarkdown(src)
			case "text", "plain":
				out = markdown.ToPlainText(src)
			default:
				return errors.Newf("unknown format %q (want markdown or text)", format)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "markdown", "output format: markdown or text")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), errors.Wrap(err, "read stdin")
	}
	b, err := os.ReadFile(args[0])
	return string(b), errors.Wrapf(err, "read %s", args[0])
}
