package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/tetratelabs/wazero"
	"golang.org/x/term"

	"github.com/Alia5/monobind/bindings"
	"github.com/Alia5/monobind/emitter"
	"github.com/Alia5/monobind/internal/configpaths"
	"github.com/Alia5/monobind/internal/log"
	"github.com/Alia5/monobind/internal/version"
	"github.com/Alia5/monobind/manifest"
	"github.com/Alia5/monobind/trampoline"
	"github.com/Alia5/monobind/wasmhost"
)

type Generate struct {
	Sets      []string `name:"set" help:"Binding set to generate; repeatable (default: all registered)" env:"MONOBIND_SETS"`
	Output    string   `short:"o" help:"Destination C# file, or - for stdout" default:"-" env:"MONOBIND_OUTPUT"`
	Manifest  string   `help:"Also write a manifest; format follows the extension (json, yaml, toml)" env:"MONOBIND_MANIFEST"`
	Registrar string   `help:"Where trampolines are committed: memory or wasm" default:"memory" enum:"memory,wasm" env:"MONOBIND_REGISTRAR"`
	Module    string   `help:"Host module name used by the wasm registrar" default:"monobind" env:"MONOBIND_WASM_MODULE"`
	Lenient   bool     `help:"Skip trampolines the wasm registrar cannot lower instead of failing; the C# still declares them" env:"MONOBIND_LENIENT"`
	Banner    bool     `help:"Start the output with an auto-generated banner" default:"true" negatable:"" env:"MONOBIND_BANNER"`
}

// Result summarizes one generate run.
type Result struct {
	Manifest *manifest.Manifest
	Bytes    int64
	// Skipped lists trampolines the wasm registrar could not lower.
	Skipped []string
}

// Run is called by Kong when the generate command is executed.
func (g *Generate) Run(logger *slog.Logger, tracer log.TraceLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := g.Execute(ctx, logger, tracer, os.Stdout)
	if err != nil {
		return err
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		printSummary(os.Stderr, res)
	}
	return nil
}

// Execute runs the generation. stdout receives the C# when Output is "-".
func (g *Generate) Execute(ctx context.Context, logger *slog.Logger, tracer log.TraceLogger, stdout io.Writer) (*Result, error) {
	sets, err := bindings.Resolve(g.Sets)
	if err != nil {
		return nil, err
	}

	out := stdout
	if g.Output != "" && g.Output != "-" {
		if err := configpaths.EnsureDir(g.Output); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
		f, err := os.Create(g.Output)
		if err != nil {
			return nil, fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	logger.Info("Generating bindings", "sets", setNames(sets), "output", g.Output, "registrar", g.Registrar)

	e, err := describe(out, sets, logger, tracer, g.Banner)
	if err != nil {
		return nil, err
	}

	res := &Result{Bytes: e.Written()}
	switch g.Registrar {
	case "wasm":
		skipped, err := g.commitWasm(ctx, e)
		if err != nil {
			return nil, err
		}
		res.Skipped = skipped
		if len(skipped) > 0 {
			logger.Warn("Skipped trampolines the wasm host cannot lower; their C# externs are unbound", "trampolines", skipped)
		}
	default:
		if err := e.Commit(trampoline.NewMapRegistrar()); err != nil {
			return nil, err
		}
	}

	res.Manifest = manifest.FromEmitter(e, version.String())
	if g.Manifest != "" {
		if err := manifest.Write(g.Manifest, res.Manifest); err != nil {
			return nil, err
		}
		logger.Info("Wrote manifest", "path", g.Manifest, "fingerprint", res.Manifest.Fingerprint)
	}

	logger.Info("Generation complete",
		"blocks", len(res.Manifest.Blocks),
		"trampolines", len(res.Manifest.Trampolines),
		"bytes", res.Bytes,
		"skipped", len(res.Skipped))
	return res, nil
}

// commitWasm commits into a wazero host module and instantiates it once, so a
// binding set that cannot be lowered fails here and not inside a guest.
func (g *Generate) commitWasm(ctx context.Context, e *emitter.Emitter) ([]string, error) {
	r := wasmhost.New(wasmhost.WithModuleName(g.Module), wasmhost.WithLenient(g.Lenient))
	if err := e.Commit(r); err != nil {
		return nil, err
	}

	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)
	if _, err := r.Instantiate(ctx, rt); err != nil && !errors.Is(err, wasmhost.ErrNoFunctions) {
		return nil, err
	}
	return r.Skipped(), nil
}

// describe runs sets through a fresh emitter writing to w.
func describe(w io.Writer, sets []bindings.Set, logger *slog.Logger, tracer log.TraceLogger, banner bool) (*emitter.Emitter, error) {
	opts := []emitter.Option{emitter.WithLogger(logger)}
	if tracer != nil {
		opts = append(opts, emitter.WithTracer(tracer))
	}
	if banner {
		opts = append(opts, emitter.WithBanner(version.String()))
	}
	e, err := emitter.New(w, opts...)
	if err != nil {
		return nil, err
	}
	if err := bindings.DescribeAll(e, sets); err != nil {
		return nil, err
	}
	return e, nil
}

func setNames(sets []bindings.Set) []string {
	names := make([]string, len(sets))
	for i, s := range sets {
		names[i] = s.Name()
	}
	return names
}

var (
	summaryHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Padding(0, 1)
	summaryCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	summarySkipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Padding(0, 1)
	summaryFootStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// printSummary renders the committed trampolines as a table. Only used on a TTY.
func printSummary(w io.Writer, res *Result) {
	skipped := make(map[string]bool, len(res.Skipped))
	for _, s := range res.Skipped {
		skipped[s] = true
	}
	ts := append([]manifest.Trampoline(nil), res.Manifest.Trampolines...)
	sort.Slice(ts, func(i, j int) bool { return ts[i].Name < ts[j].Name })

	rows := make([][]string, len(ts))
	for i, t := range ts {
		mark := ""
		if skipped[t.Name] {
			mark = "skipped"
		}
		rows[i] = []string{t.Name, t.Signature, mark}
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("TRAMPOLINE", "SIGNATURE", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return summaryHeaderStyle
			case col == 2:
				return summarySkipStyle
			default:
				return summaryCellStyle
			}
		})

	fmt.Fprintln(w, tbl.Render())
	fmt.Fprintln(w, summaryFootStyle.Render(fmt.Sprintf("%d trampolines, %d bytes, fingerprint %s",
		len(ts), res.Bytes, res.Manifest.Fingerprint)))
}
