package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"

	"github.com/Alia5/monobind/internal/cmd"
	"github.com/Alia5/monobind/internal/configpaths"
	"github.com/Alia5/monobind/internal/log"
	"github.com/Alia5/monobind/wasmhost"

	_ "github.com/Alia5/monobind/internal/registry" // Register all binding sets
)

func main() {

	userCfg := configpaths.FindUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli cmd.CLI
	ctx := kong.Parse(&cli,
		kong.Name("monobind"),
		kong.Description("C# glue and native trampolines for Go types embedded in Mono"),
		kong.UsageOnError(),
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	if zl, err := log.NewZap(cli.Log.Level); err != nil {
		logger.Warn("failed to setup wasm host logger", "error", err)
	} else {
		wasmhost.SetLogger(zl)
		defer func() { _ = zl.Sync() }()
	}

	tracer, traceFile, err := log.OpenTrace(cli.Log.TraceFile, traceFallback(cli.Log.Level))
	if err != nil {
		logger.Error("failed to open trace log file", "file", cli.Log.TraceFile, "error", err)
		tracer = log.NewTrace(nil)
	} else if traceFile != nil {
		closeFiles = append(closeFiles, traceFile)
	}

	ctx.Bind(logger)
	ctx.BindTo(tracer, (*log.TraceLogger)(nil))

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

// traceFallback is where the emission trace goes without --log.trace-file. The
// generated C# may be on stdout, so trace level uses stderr.
func traceFallback(level string) io.Writer {
	if log.ParseLevel(level) <= log.LevelTrace {
		return os.Stderr
	}
	return nil
}
