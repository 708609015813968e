// Package cli is the one-shot command adapter: parse flags, run a batch,
// render matrices, export. No business logic lives here.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"sanmar-inventory/internal/app"
	"sanmar-inventory/internal/backend"
	"sanmar-inventory/internal/config"
	"sanmar-inventory/internal/core"
	"sanmar-inventory/internal/export"
	"sanmar-inventory/internal/scrape"
	"sanmar-inventory/internal/store"
)

// Exit codes. Scripts branch on these, so they are part of the contract.
const (
	ExitOK          = 0
	ExitNoInventory = 1
	ExitUsage       = 2
	ExitCredentials = 3
	ExitExport      = 4
)

type options struct {
	url        string
	styles     string
	stylesFile string
	output     string
	format     string
	backend    string
	jsonFile   string
	dryRun     bool
	show       bool
}

// Run executes one invocation and returns its exit code. args is
// os.Args[1:].
func Run(ctx context.Context, settings config.Settings, logger *zap.Logger, args []string) int {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts options
	fs := flag.NewFlagSet("sanmar-inventory", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.StringVar(&opts.url, "url", "", "product or listing page URL to pull style codes from")
	fs.StringVar(&opts.styles, "styles", "", "comma-separated style codes or product slugs")
	fs.StringVar(&opts.stylesFile, "styles-file", "", "file with one style code per line")
	fs.StringVar(&opts.output, "output", "", "export path (.csv or .xlsx)")
	fs.StringVar(&opts.format, "format", "", "export format: csv or xlsx (default from OUTPUT_FORMAT)")
	fs.StringVar(&opts.backend, "backend", "", "backend: promostandards, standard, or webjson (default from SANMAR_BACKEND)")
	fs.StringVar(&opts.jsonFile, "json-file", "", "parse a captured inventory JSON payload instead of fetching")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "resolve the style list and stop before fetching")
	fs.BoolVar(&opts.show, "show", false, "print the last raw request/response after the run")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	backendName := opts.backend
	if backendName == "" {
		backendName = settings.Backend
	}
	kind, err := backend.ParseKind(backendName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitUsage
	}

	facade := backend.NewFacade(backend.Options{
		Username:       settings.Username,
		Password:       settings.Password,
		CustomerNumber: settings.CustomerNumber,
		UseTest:        settings.UseTest,
		Timeout:        settings.Timeout(),
		Cookie:         settings.WebJSONCookie,
		ExtraHeaders:   settings.WebJSONHeaders,
		Logger:         logger,
	})

	if opts.jsonFile != "" {
		return runOffline(facade, logger, opts)
	}

	styles, code := resolveStyles(ctx, settings, logger, opts, kind)
	if code != ExitOK {
		return code
	}

	if err := settings.Validate(string(kind)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitCredentials
	}

	if opts.dryRun {
		fmt.Printf("Backend: %s\n", kind)
		fmt.Printf("Styles (%d): %s\n", len(styles), strings.Join(styles, ", "))
		return ExitOK
	}

	var snaps *store.Store
	if settings.DatabaseURL != "" {
		snaps, err = store.New(ctx, settings.DatabaseURL)
		if err != nil {
			// The store is optional; a dead database never blocks a fetch.
			logger.Warn("snapshot store unavailable", zap.Error(err))
		} else {
			defer snaps.Close()
		}
	}

	svc := app.NewService(facade, snaps, logger, settings.RequestDelay)
	result := svc.FetchBatch(ctx, kind, styles)
	for _, f := range result.Failures {
		fmt.Fprintf(os.Stderr, "Error fetching %s: %s\n", f.Key, f.Message)
	}

	if opts.show {
		printDiagnostics(os.Stderr, svc, kind, settings.Password)
	}

	if len(result.Rows) == 0 {
		fmt.Fprintln(os.Stderr, "No inventory data retrieved.")
		return ExitNoInventory
	}

	tables, err := app.Tables(result.Rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitNoInventory
	}
	for _, table := range tables {
		PrintTable(os.Stdout, table)
	}

	if opts.output != "" {
		if err := writeOutput(result.Rows, tables, opts.output, opts.format, settings.DefaultFormat); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitExport
		}
	}
	return ExitOK
}

// runOffline parses a captured payload file. No credentials, no network.
func runOffline(facade *backend.Facade, logger *zap.Logger, opts options) int {
	slug := ""
	if opts.styles != "" {
		slug = strings.TrimSpace(strings.Split(opts.styles, ",")[0])
	}
	if slug == "" && opts.url != "" {
		slug = scrape.SlugFromProductURL(opts.url)
	}

	svc := app.NewService(facade, nil, logger, 0)
	env := svc.ParseOfflineFile(opts.jsonFile, slug)
	if env.Error {
		fmt.Fprintf(os.Stderr, "Error: %s\n", env.Message)
		return ExitNoInventory
	}
	if len(env.Rows) == 0 {
		fmt.Fprintln(os.Stderr, "No inventory data retrieved.")
		return ExitNoInventory
	}

	tables, err := app.Tables(env.Rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitNoInventory
	}
	for _, table := range tables {
		PrintTable(os.Stdout, table)
	}
	if opts.output != "" {
		if err := writeOutput(env.Rows, tables, opts.output, opts.format, "csv"); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitExport
		}
	}
	return ExitOK
}

// resolveStyles merges the three input sources into one deduplicated list.
// SOAP backends take uppercase style codes; the web backend takes slugs
// verbatim because slug case matters to the site.
func resolveStyles(ctx context.Context, settings config.Settings, logger *zap.Logger, opts options, kind backend.Kind) ([]string, int) {
	var styles []string

	if opts.url != "" {
		if kind == backend.KindWebJSON {
			if slug := scrape.SlugFromProductURL(opts.url); slug != "" {
				styles = append(styles, slug)
			}
		}
		if len(styles) == 0 {
			s := scrape.NewScraper(settings.Timeout(), logger)
			styles = append(styles, s.StylesFromURL(ctx, opts.url)...)
		}
	}
	if opts.styles != "" {
		for _, s := range strings.Split(opts.styles, ",") {
			styles = append(styles, strings.TrimSpace(s))
		}
	}
	if opts.stylesFile != "" {
		styles = append(styles, scrape.StylesFromFile(opts.stylesFile)...)
	}

	styles = DedupeStyles(styles, kind != backend.KindWebJSON)
	if len(styles) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no styles given. Use --styles, --styles-file, or --url.")
		return nil, ExitUsage
	}
	return styles, ExitOK
}

// DedupeStyles drops blanks and duplicates while preserving first-seen
// order. With upper set, codes are uppercased before comparison.
func DedupeStyles(styles []string, upper bool) []string {
	seen := make(map[string]bool, len(styles))
	out := make([]string, 0, len(styles))
	for _, s := range styles {
		s = strings.TrimSpace(s)
		if upper {
			s = strings.ToUpper(s)
		}
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func writeOutput(rows []core.Row, tables []*core.Table, path, format, defaultFormat string) error {
	if format == "" {
		format = defaultFormat
	}
	path, format = export.FixExtension(path, format)
	switch format {
	case "csv":
		if err := export.WriteCSV(rows, path); err != nil {
			return err
		}
	case "xlsx":
		if err := export.WriteXLSX(tables, path); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// printDiagnostics dumps the last raw exchange with the password masked.
func printDiagnostics(w io.Writer, svc *app.Service, kind backend.Kind, password string) {
	diag, ok := svc.Diagnostics(kind)
	if !ok {
		return
	}
	body := diag.RequestBody
	if password != "" {
		body = strings.ReplaceAll(body, password, "********")
	}
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintf(w, "  LAST EXCHANGE (%s)\n", kind)
	fmt.Fprintf(w, "  URL    : %s\n", diag.URL)
	fmt.Fprintf(w, "  Status : %d  (%s)\n", diag.Status, diag.ContentType)
	fmt.Fprintln(w, strings.Repeat("-", 62))
	if body != "" {
		fmt.Fprintln(w, body)
		fmt.Fprintln(w, strings.Repeat("-", 62))
	}
	fmt.Fprintln(w, diag.ResponseBody)
	fmt.Fprintln(w, strings.Repeat("=", 62))
}
