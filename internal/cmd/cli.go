// Package cmd holds the kong command tree of the monobind binary.
package cmd

// LogConfig is embedded under the "log." prefix.
type LogConfig struct {
	Level     string `help:"Log level: trace, debug, info, warn, error" default:"info" enum:"trace,debug,info,warn,error" env:"MONOBIND_LOG_LEVEL"`
	File      string `help:"Also write logs to this file" env:"MONOBIND_LOG_FILE"`
	TraceFile string `help:"Write one line per emitted chunk to this file" env:"MONOBIND_LOG_TRACE_FILE"`
}

// CLI is the root of the command tree.
type CLI struct {
	Log        LogConfig `embed:"" prefix:"log."`
	ConfigFile string    `name:"config" help:"Path to a json, yaml or toml config file" placeholder:"FILE"`

	Generate Generate      `cmd:"" help:"Generate C# glue and commit its trampolines"`
	Verify   Verify        `cmd:"" help:"Check a manifest against the compiled-in binding sets"`
	List     List          `cmd:"" help:"List registered binding sets"`
	Config   ConfigCommand `cmd:"" help:"Configuration helpers"`
	Version  VersionCmd    `cmd:"" help:"Print the monobind version"`
}
