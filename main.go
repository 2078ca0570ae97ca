// teses renders and browses the rich-text theses of the firm's site from
// the command line: stored editor documents, or Markdown, HTML, EPUB and
// plain text sources converted on the fly.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/rlsouza/teses/internal/article"
	"github.com/rlsouza/teses/internal/config"
	"github.com/rlsouza/teses/internal/content"
	"github.com/rlsouza/teses/internal/importer"
	"github.com/rlsouza/teses/internal/render"
	"github.com/rlsouza/teses/internal/state"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// command is one subcommand of the CLI.
type command struct {
	name    string
	usage   string
	summary string
	flags   func(fs *pflag.FlagSet, o *options)
	run     func(e *env, path string) error
}

// options holds every flag value. Each command registers the subset it uses.
type options struct {
	configPath string
	logLevel   string
	logOutput  string

	format string
	width  int
	asJSON bool
	from   string
	start  int

	category   string
	search     string
	resetState bool
}

// env is what a command runs with once flags and configuration are loaded.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	opts   options
	fs     *pflag.FlagSet
	path   string
	stdout io.Writer
	stderr io.Writer
}

var commands = []command{
	{
		name:    "render",
		usage:   "render [--format html|terminal] FILE",
		summary: "render the article body",
		flags: func(fs *pflag.FlagSet, o *options) {
			fs.StringVarP(&o.format, "format", "f", "html", "output format: html or terminal")
			fs.IntVarP(&o.width, "width", "w", 0, "terminal wrap width (default from config)")
		},
		run: runRender,
	},
	{
		name:    "page",
		usage:   "page FILE",
		summary: "render the public article page as HTML",
		run:     runPage,
	},
	{
		name:    "list",
		usage:   "list [--category C] [--search Q] DIR",
		summary: "list the published articles of DIR, newest first",
		flags: func(fs *pflag.FlagSet, o *options) {
			fs.StringVarP(&o.category, "category", "c", article.AllCategories, "show only this category")
			fs.StringVarP(&o.search, "search", "s", "", "match title, description or category")
		},
		run: runList,
	},
	{
		name:    "images",
		usage:   "images [--json] FILE",
		summary: "list the images of the article in gallery order",
		flags: func(fs *pflag.FlagSet, o *options) {
			fs.BoolVar(&o.asJSON, "json", false, "print a JSON array")
		},
		run: runImages,
	},
	{
		name:    "toc",
		usage:   "toc FILE",
		summary: "print the table of contents with heading anchors",
		run:     runTOC,
	},
	{
		name:    "info",
		usage:   "info [--reset-state] FILE",
		summary: "print article metadata, word count and saved state",
		flags: func(fs *pflag.FlagSet, o *options) {
			fs.BoolVar(&o.resetState, "reset-state", false, "forget the saved views and gallery position first")
		},
		run: runInfo,
	},
	{
		name:    "import",
		usage:   "import [--from FORMAT] FILE",
		summary: "convert a source file into a stored JSON document",
		flags: func(fs *pflag.FlagSet, o *options) {
			fs.StringVar(&o.from, "from", "", "source format name (default: by file extension)")
		},
		run: runImport,
	},
	{
		name:    "view",
		usage:   "view [--start N] FILE",
		summary: "read the article and browse its images",
		flags: func(fs *pflag.FlagSet, o *options) {
			fs.IntVar(&o.start, "start", 0, "open the gallery at this image (1-based)")
			fs.IntVarP(&o.width, "width", "w", 0, "terminal wrap width (default from config)")
		},
		run: runView,
	},
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errUsage
	}
	switch args[0] {
	case "version", "-v", "--version":
		fmt.Fprintf(stdout, "teses %s (commit: %s, built: %s)\n", version, commit, date)
		return nil
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		printUsage(stderr)
		return fmt.Errorf("unknown command: %s", args[0])
	}

	var o options
	fs := pflag.NewFlagSet(cmd.name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "configuration file (default: $"+config.EnvVar+")")
	fs.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error (default from config)")
	fs.StringVar(&o.logOutput, "log-output", "", "write log records to this file instead of stderr")
	if cmd.flags != nil {
		cmd.flags(fs, &o)
	}
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage:\n  teses %s\n\nFlags:\n", cmd.usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errUsage
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, o, stderr, cmd.name == "view")
	if err != nil {
		return err
	}
	defer closeLog()

	e := &env{cfg: cfg, logger: logger, opts: o, fs: fs, path: fs.Arg(0), stdout: stdout, stderr: stderr}
	return cmd.run(e, e.path)
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "teses - render and browse thesis articles\n\nUsage:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  teses %-36s %s\n", c.usage, c.summary)
	}
	fmt.Fprintf(w, "  teses %-36s %s\n", "version", "print version information")
	fmt.Fprintf(w, "\nFILE is article metadata (.yaml) or a source document in one of:\n")
	for _, f := range importer.SupportedFormats() {
		fmt.Fprintf(w, "  %s\n", f)
	}
	fmt.Fprintf(w, "\nDIR holds article metadata files; drafts (published: false) are not listed.\n")
	fmt.Fprintf(w, "\nRun 'teses COMMAND --help' for the flags of a command.\n")
}

// newLogger builds the text logger. A terminal UI owns the screen, so
// without --log-output its records are discarded.
func newLogger(cfg *config.Config, o options, stderr io.Writer, tui bool) (*slog.Logger, func(), error) {
	level := cfg.SlogLevel()
	if o.logLevel != "" {
		l, err := config.ParseLevel(o.logLevel)
		if err != nil {
			return nil, nil, err
		}
		level = l
	}

	out, closeFn := stderr, func() {}
	switch {
	case o.logOutput != "":
		f, err := os.OpenFile(o.logOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log output: %w", err)
		}
		out, closeFn = f, func() { f.Close() }
	case tui:
		out = io.Discard
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	return logger, closeFn, nil
}

func (e *env) open(path string) (*article.Article, error) {
	a, err := article.Open(path, e.logger)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("article loaded", "path", path, "slug", a.Slug, "blocks", len(a.Body.Content))
	return a, nil
}

func (e *env) renderOptions() render.Options {
	return render.Options{HighlightStyle: e.cfg.Render.HighlightStyle}
}

func (e *env) terminalOptions() render.TerminalOptions {
	width := e.cfg.Render.Width
	if e.opts.width > 0 {
		width = e.opts.width
	}
	return render.TerminalOptions{Width: width, CodeStyle: e.cfg.Render.TerminalStyle}
}

func runRender(e *env, path string) error {
	a, err := e.open(path)
	if err != nil {
		return err
	}
	blocks := render.Render(a.Body)
	switch strings.ToLower(e.opts.format) {
	case "html":
		if err := render.WriteHTML(e.stdout, blocks, e.renderOptions()); err != nil {
			return err
		}
		fmt.Fprintln(e.stdout)
		return nil
	case "terminal", "term", "text":
		fmt.Fprintln(e.stdout, render.Terminal(blocks, e.terminalOptions()))
		return nil
	}
	return fmt.Errorf("unknown output format: %s", e.opts.format)
}

func runPage(e *env, path string) error {
	a, err := e.open(path)
	if err != nil {
		return err
	}
	if !a.Published {
		return fmt.Errorf("%w: %s", article.ErrNotPublished, path)
	}
	return article.WritePage(e.stdout, a, e.renderOptions())
}

// runList prints the article cards of dir the way the theses index shows
// them: published only, newest first, narrowed by category and search.
func runList(e *env, dir string) error {
	all, err := article.LoadDir(dir, e.logger)
	if err != nil {
		return err
	}
	published := article.Published(all)
	e.logger.Debug("articles loaded", "dir", dir, "total", len(all), "published", len(published))

	w := e.stdout
	categories := append([]string{article.AllCategories}, article.Categories(published)...)
	fmt.Fprintf(w, "Categorias: %s\n\n", strings.Join(categories, ", "))

	filter := article.Filter{Category: e.opts.category, Search: e.opts.search}
	matches := filter.Apply(published)
	if strings.TrimSpace(filter.Search) != "" {
		fmt.Fprintf(w, "%s\n\n", article.ResultsLabel(len(matches)))
	}
	if len(matches) == 0 {
		if strings.TrimSpace(filter.Search) != "" {
			fmt.Fprintln(w, "Nenhuma tese encontrada para sua busca.")
		} else {
			fmt.Fprintln(w, "Nenhuma tese encontrada nesta categoria.")
		}
		return nil
	}

	for i, a := range matches {
		if i > 0 {
			fmt.Fprintln(w)
		}
		meta := []string{}
		if a.Category != "" {
			meta = append(meta, a.Category)
		}
		meta = append(meta, article.ViewsLabel(a.Views))
		if a.PublishedAt != nil {
			meta = append(meta, article.FormatCardDate(*a.PublishedAt))
		}
		fmt.Fprintln(w, strings.Join(meta, " | "))
		fmt.Fprintln(w, a.Title)
		if a.Description != "" {
			fmt.Fprintln(w, a.Description)
		}
		fmt.Fprintf(w, "/teses/%s\n", a.Slug)
	}
	return nil
}

func runImages(e *env, path string) error {
	a, err := e.open(path)
	if err != nil {
		return err
	}
	images := a.Images()
	if e.opts.asJSON {
		enc := json.NewEncoder(e.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(images)
	}
	for i, src := range images {
		fmt.Fprintf(e.stdout, "%d\t%s\n", i+1, src)
	}
	return nil
}

func runTOC(e *env, path string) error {
	a, err := e.open(path)
	if err != nil {
		return err
	}
	for _, h := range content.Outline(a.Body) {
		fmt.Fprintf(e.stdout, "%s%s #%s\n", strings.Repeat("  ", h.Level-1), h.Title, h.Anchor)
	}
	return nil
}

func runInfo(e *env, path string) error {
	a, err := e.open(path)
	if err != nil {
		return err
	}
	w := e.stdout
	if e.opts.resetState {
		if err := resetState(e, path); err != nil {
			return err
		}
		fmt.Fprintln(w, "Estado de leitura apagado.")
	}
	fmt.Fprintf(w, "Título:   %s\n", a.Title)
	fmt.Fprintf(w, "Slug:     %s\n", a.Slug)
	if a.Category != "" {
		fmt.Fprintf(w, "Área:     %s\n", a.Category)
	}
	if a.Author != "" {
		fmt.Fprintf(w, "Autor:    %s\n", a.Author)
	}
	if a.PublishedAt != nil {
		fmt.Fprintf(w, "Data:     %s\n", article.FormatDate(*a.PublishedAt))
	}
	fmt.Fprintf(w, "Palavras: %d\n", content.WordCount(a.Body))
	fmt.Fprintf(w, "Imagens:  %d\n", len(a.Images()))
	fmt.Fprintf(w, "Seções:   %d\n", len(content.Outline(a.Body)))

	if key, err := state.ComputeHash(path); err == nil {
		if store, err := state.Open(e.cfg.StateDir); err == nil {
			st := store.Get(key)
			fmt.Fprintf(w, "Leituras: %s\n", article.ViewsLabel(a.Views+st.Views))
		}
	}
	return nil
}

// resetState forgets the saved views and gallery position of path.
func resetState(e *env, path string) error {
	key, err := state.ComputeHash(path)
	if err != nil {
		return err
	}
	store, err := state.Open(e.cfg.StateDir)
	if err != nil {
		return err
	}
	if err := store.Clear(key); err != nil {
		return fmt.Errorf("failed to reset reading state: %w", err)
	}
	e.logger.Info("reading state cleared", "path", path)
	return nil
}

func runImport(e *env, path string) error {
	var doc content.Document
	var err error
	if e.opts.from != "" {
		f, ferr := importer.Lookup(e.opts.from)
		if ferr != nil {
			return ferr
		}
		doc, err = f.Import(path)
	} else {
		doc, err = importer.ImportFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", path, err)
	}
	e.logger.Info("document imported", "path", path, "blocks", len(doc.Content), "images", len(content.Images(doc)))
	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// runView counts the view, restores the last gallery position and hands the
// article to the interactive browser of this build.
func runView(e *env, path string) error {
	a, err := e.open(path)
	if err != nil {
		return err
	}

	var store *state.Store
	key, err := state.ComputeHash(path)
	if err == nil {
		store, err = state.Open(e.cfg.StateDir)
	}
	if err != nil {
		e.logger.Warn("reading state unavailable", "error", err)
		store = nil
	}

	start := 0
	if store != nil {
		views, err := store.IncrementViews(key)
		if err != nil {
			e.logger.Warn("failed to record view", "error", err)
		}
		a.Views += views
		if e.cfg.Viewer.RememberPosition {
			start = store.ImageIndex(key)
		}
	}
	if e.fs.Changed("start") {
		start = e.opts.start - 1
	}

	last, err := browse(e, a, start)
	if err != nil {
		return err
	}
	if store != nil && e.cfg.Viewer.RememberPosition {
		if err := store.SetImageIndex(key, last); err != nil {
			e.logger.Warn("failed to save gallery position", "error", err)
		}
	}
	return nil
}
