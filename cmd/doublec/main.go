/*
Doublec compiles dooble source files to the reference C backend.

Usage:

	doublec [flags] [file ...]
	doublec unit_test

The flags are:

	-o, --output FILE
		Write the generated C source to FILE instead of stdout.

	-c, --config FILE
		Read project settings (source list, output path, backend name) from
		a dooble.toml-style file. Flags given on the command line override
		values loaded from the config file.

	-i, --repl
		Start an interactive console that lexes and parses one statement at
		a time and prints its AST, instead of compiling files.

	-w, --warnings-as-errors
		Treat warning diagnostics (e.g. a local shadowing an outer
		declaration) as errors for the purposes of the exit code. Also
		settable via dooble.toml's warnings_as_errors.

A single positional argument of "unit_test" runs the internal test suite
marker (spec.md §6.1) and exits instead of compiling anything.

Exit code 0 indicates success, 1 indicates one or more error diagnostics
(or, with warnings treated as errors, warning diagnostics) were reported
against the source, and 2 indicates an internal error.
*/
package main

import (
	"fmt"
	"os"

	"github.com/dekarrin/dooble"
	"github.com/dekarrin/dooble/internal/version"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful compile.
	ExitSuccess = iota

	// ExitDiagnosticError indicates the compile produced one or more error
	// diagnostics, or warnings while warnings are treated as errors.
	ExitDiagnosticError

	// ExitInternalError indicates an internal error (a recovered panic, or
	// a configuration/IO failure before compilation could start).
	ExitInternalError
)

var (
	returnCode        = ExitSuccess
	flagOutput        = pflag.StringP("output", "o", "", "Write generated C source to this file instead of stdout")
	flagConfig        = pflag.StringP("config", "c", "", "Read project settings from a dooble.toml-style file")
	flagRepl          = pflag.BoolP("repl", "i", false, "Start an interactive console instead of compiling files")
	flagDirect        = pflag.BoolP("direct", "d", false, "Force direct stdin reading instead of readline in --repl mode")
	flagVersion       = pflag.BoolP("version", "v", false, "Print the doublec version and exit")
	flagWarnAsErrors  = pflag.BoolP("warnings-as-errors", "w", false, "Treat warning diagnostics as errors for the purposes of the exit code")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			fmt.Fprintf(os.Stderr, "internal error: %v\n", panicErr)
			os.Exit(ExitInternalError)
		}
		os.Exit(returnCode)
	}()

	pflag.Parse()
	args := pflag.Args()

	if *flagVersion {
		fmt.Println("doublec " + version.Current)
		return
	}

	if len(args) == 1 && args[0] == "unit_test" {
		runUnitTestHook()
		return
	}

	if *flagRepl {
		runRepl(*flagDirect)
		return
	}

	runCompile(args)
}

// runUnitTestHook is the "unit_test" positional arg's trigger point
// (spec.md §6.1): in this repo it reports the marker and exits
// successfully, rather than re-implementing `go test ./...` inside the
// compiled binary.
func runUnitTestHook() {
	fmt.Println("unit_test: run `go test ./...` to execute the internal suite")
}

func runRepl(forceDirect bool) {
	console, err := dooble.NewConsole(os.Stdin, os.Stdout, forceDirect)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInternalError
		return
	}
	defer console.Close()

	if err := console.RunUntilQuit(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInternalError
	}
}

func runCompile(args []string) {
	sources := args
	output := *flagOutput
	warnAsErrors := *flagWarnAsErrors

	if *flagConfig != "" {
		cfg, err := dooble.LoadConfig(*flagConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitInternalError
			return
		}
		if len(sources) == 0 {
			sources = cfg.Sources
		}
		if output == "" {
			output = cfg.Output
		}
		warnAsErrors = warnAsErrors || cfg.WarningsAsErrors
	}

	if len(sources) == 0 {
		fmt.Fprintln(os.Stderr, "ERROR: no source files given (pass files, or -c/--config pointing to a dooble.toml with a sources list)")
		returnCode = ExitInternalError
		return
	}

	pipeline := dooble.NewPipeline()
	for _, path := range sources {
		if _, err := pipeline.CompileFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitInternalError
			return
		}
	}

	for _, d := range pipeline.Sink.All() {
		fmt.Fprintln(os.Stderr, d.FullMessage())
	}
	if pipeline.Sink.HasErrors() || (warnAsErrors && pipeline.Sink.HasWarnings()) {
		returnCode = ExitDiagnosticError
		return
	}

	generated := pipeline.Emit()

	if output == "" {
		fmt.Print(generated)
		return
	}
	if err := os.WriteFile(output, []byte(generated), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: write %s: %s\n", output, err.Error())
		returnCode = ExitInternalError
	}
}
