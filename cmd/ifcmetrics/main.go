package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"ifcmetrics/internal/export"
	"ifcmetrics/internal/graph"
	"ifcmetrics/internal/logging"
	"ifcmetrics/internal/report"
	"ifcmetrics/internal/settings"
)

// noGraphMessage is shown when no model could be opened.
const noGraphMessage = "No file selected or file could not be opened."

// errReported marks an error already explained to the user; main exits
// without logging it again.
var errReported = errors.New("already reported")

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	// promptPath asks for a model path when none was given.
	promptPath = runPathPrompt
)

// command describes a CLI subcommand.
type command struct {
	name  string
	short string
	usage string
	long  string
	run   func(args []string) error
}

const flagHelp = `
Flags:
  -f, --format <fmt>   text, markdown, yaml, json or xlsx (default from settings)
  -o, --output <path>  write to a file instead of stdout (required for xlsx)
  --root <dir>         directory holding .ifcmetrics/settings.yaml and .env (default ".")
  --debug              log every resolution step to stderr

With no model argument on a terminal, ifcmetrics asks for the path.
`

var commands = []command{
	{
		name:  "walls",
		short: "List walls with type, description and placement",
		usage: "ifcmetrics walls [flags] <model>",
		long: `List every wall (including standard-case walls) in model order, with its
IFC class, description and placement location in metres.
` + flagHelp,
		run: reportCommand(report.KindWalls),
	},
	{
		name:  "doors",
		short: "List doors with overall width and height",
		usage: "ifcmetrics doors [flags] <model>",
		long: `List every door with its overall width and height in metres. Missing
dimensions are shown as N/A. Dimensions are converted from the project
length unit; when the model declares none, values above the length
threshold (100 by default) are taken as millimetres and marked with *.
` + flagHelp,
		run: reportCommand(report.KindDoors),
	},
	{
		name:  "windows",
		short: "List windows with overall width and height",
		usage: "ifcmetrics windows [flags] <model>",
		long: `List every window with its overall width and height in metres. Missing
dimensions are shown as N/A. Dimensions are converted from the project
length unit; when the model declares none, values above the length
threshold (100 by default) are taken as millimetres and marked with *.
` + flagHelp,
		run: reportCommand(report.KindWindows),
	},
	{
		name:  "areas",
		short: "Net floor area per space and in total",
		usage: "ifcmetrics areas [flags] <model>",
		long: `Compute the net floor area of every space: gross area from the space's
quantity or property sets (falling back to its extruded geometry) minus the
footprint of the walls bounding it, never below zero.
` + flagHelp,
		run: reportCommand(report.KindAreas),
	},
	{
		name:  "volumes",
		short: "Volume per space and in total",
		usage: "ifcmetrics volumes [flags] <model>",
		long: `Compute the volume of every space as net floor area times ceiling height.
Spaces missing either value are reported as unavailable.
` + flagHelp,
		run: reportCommand(report.KindVolumes),
	},
	{
		name:  "solar",
		short: "Solar heat gain through windows",
		usage: "ifcmetrics solar [flags] <model>",
		long: `Estimate the solar heat gain through every window as
area × g-value × irradiance. The g-value is read from the window's
property sets, else the configured default is used.
` + flagHelp,
		run: reportCommand(report.KindSolar),
	},
	{
		name:  "report",
		short: "Run every report",
		usage: "ifcmetrics report [flags] <model>",
		long: `Run every report against the model and render them together.
` + flagHelp,
		run: reportCommand(report.Kinds()...),
	},
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "ifcmetrics: quantities and derived metrics from building models\n\n")
	fmt.Fprintf(w, "Usage:\n  ifcmetrics <command> [flags] <model>\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.short)
	}
	fmt.Fprintf(w, "\nRun 'ifcmetrics help <command>' for details on a specific command.\n")
}

func printCommandHelp(w io.Writer, name string) {
	for _, cmd := range commands {
		if cmd.name == name {
			fmt.Fprintf(w, "Usage: %s\n\n%s", cmd.usage, cmd.long)
			return
		}
	}
	fmt.Fprintf(w, "ifcmetrics: unknown command %q\n\nRun 'ifcmetrics help' for usage.\n", name)
}

func dispatch(args []string) error {
	if len(args) == 0 || args[0] == "--help" || args[0] == "-h" {
		printUsage(stdout)
		return nil
	}
	if args[0] == "help" {
		if len(args) >= 2 {
			printCommandHelp(stdout, args[1])
		} else {
			printUsage(stdout)
		}
		return nil
	}
	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.run(args[1:])
		}
	}
	return fmt.Errorf("unknown command %q\n\nRun 'ifcmetrics help' for usage.", args[0])
}

// ---------------------------------------------------------------------------
// Flags
// ---------------------------------------------------------------------------

type options struct {
	format string
	output string
	root   string
	debug  bool
	model  string
}

// parseFlags accepts flags before and after the model argument.
func parseFlags(name string, args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.format, "f", "", "output format")
	fs.StringVar(&opts.format, "format", "", "output format")
	fs.StringVar(&opts.output, "o", "", "output file")
	fs.StringVar(&opts.output, "output", "", "output file")
	fs.StringVar(&opts.root, "root", ".", "settings root")
	fs.BoolVar(&opts.debug, "debug", false, "debug logging")

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w\nusage: ifcmetrics %s [flags] <model>", err, name)
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
	if len(positional) > 1 {
		return nil, fmt.Errorf("too many arguments: %s\nusage: ifcmetrics %s [flags] <model>", strings.Join(positional, " "), name)
	}
	if len(positional) == 1 {
		opts.model = positional[0]
	}
	return opts, nil
}

// ---------------------------------------------------------------------------
// Reports
// ---------------------------------------------------------------------------

// reportCommand returns a run func producing the given report kinds.
func reportCommand(kinds ...report.Kind) func(args []string) error {
	name := string(kinds[0])
	if len(kinds) > 1 {
		name = "report"
	}
	return func(args []string) error {
		opts, err := parseFlags(name, args)
		if err != nil {
			return err
		}
		return runReports(opts, kinds)
	}
}

func runReports(opts *options, kinds []report.Kind) error {
	cfg, err := settings.Load(opts.root)
	if err != nil {
		return err
	}
	logger := logging.New(stderr, logging.Options{Debug: cfg.Debug || opts.debug})

	format := cfg.Output.Format
	if opts.format != "" {
		format = opts.format
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	if f.Binary() && opts.output == "" {
		return fmt.Errorf("%s output needs a file: use -o <path>", f)
	}

	path := opts.model
	if path == "" && isatty.IsTerminal(os.Stdin.Fd()) {
		if path, err = promptPath(); err != nil {
			return err
		}
	}

	engine := report.NewEngine(graph.Loader{Logger: logger}, cfg.EngineOptions(logger))
	session, err := engine.Open(path)
	if err != nil {
		if errors.Is(err, report.ErrNoGraph) {
			fmt.Fprintln(stderr, noGraphMessage)
			logger.Debug("open failed", "err", err)
			return fmt.Errorf("%w: %w", errReported, err)
		}
		return err
	}

	reports, err := buildReports(session, kinds)
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := export.WriteFile(opts.output, f, reports...); err != nil {
			return err
		}
		logger.Info("report written", "path", opts.output, "format", f)
		return nil
	}
	return export.Render(stdout, f, reports...)
}

// buildReports runs kinds concurrently against the session's read-only
// graph and returns the reports in the order requested.
func buildReports(session *report.Session, kinds []report.Kind) ([]*report.Report, error) {
	reports := make([]*report.Report, len(kinds))
	var g errgroup.Group
	for i, kind := range kinds {
		i, kind := i, kind
		g.Go(func() error {
			rep, err := session.Report(kind)
			if err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// ---------------------------------------------------------------------------
// TUI prompt helpers
// ---------------------------------------------------------------------------

// pathPrompt is a bubbletea model asking for the model file path.
type pathPrompt struct {
	input     textinput.Model
	done      bool
	cancelled bool
}

func newPathPrompt() pathPrompt {
	ti := textinput.New()
	ti.Placeholder = "path/to/model.yaml"
	ti.CharLimit = 1024
	ti.Focus()
	return pathPrompt{input: ti}
}

func (m pathPrompt) Init() tea.Cmd {
	return textinput.Blink
}

func (m pathPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m pathPrompt) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return fmt.Sprintf("Model file: %s\n", m.input.View())
}

// value is the entered path, or "" when the prompt was cancelled.
func (m pathPrompt) value() string {
	if !m.done {
		return ""
	}
	return strings.TrimSpace(m.input.Value())
}

// runPathPrompt runs the TUI. A cancelled prompt yields an empty path,
// which the engine reports as no file selected.
func runPathPrompt() (string, error) {
	p := tea.NewProgram(newPathPrompt(), tea.WithOutput(stderr))
	result, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	final, ok := result.(pathPrompt)
	if !ok {
		return "", nil
	}
	return final.value(), nil
}

func main() {
	if err := dispatch(os.Args[1:]); err != nil {
		if errors.Is(err, errReported) {
			os.Exit(1)
		}
		logging.New(os.Stderr, logging.Options{}).Fatal("ifcmetrics failed", "err", err)
	}
}
