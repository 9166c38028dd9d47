// This is the main-driver for our compiler.

package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/skx/mylang-compiler/asm"
	"github.com/skx/mylang-compiler/ast"
	"github.com/skx/mylang-compiler/compiler"
	"github.com/skx/mylang-compiler/internal/diagnostics"
	"github.com/skx/mylang-compiler/lexer"
	"github.com/skx/mylang-compiler/sexpr"
)

func main() {
	//
	// Look for flags.
	//
	platformName := flag.String("platform", "linux", "Target platform for label mangling: linux or macos.")
	output := flag.String("o", "", "Write the generated assembly to this file instead of stdout.")
	verbose := flag.Bool("v", false, "Log pipeline stage timings and counts to stderr.")
	flag.Parse()

	level := slog.LevelInfo
	if !*verbose {
		level = slog.LevelError + 1 // effectively silent
	}
	log := slog.New(diagnostics.NewHandler(os.Stderr, level))

	ctx, err := platformContext(*platformName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	//
	// Read the whole program from STDIN.
	//
	source, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading source: %s\n", err)
		os.Exit(1)
	}

	asmText, err := run(string(source), ctx, log)
	if err != nil {
		reportError(err)
		os.Exit(1)
	}

	//
	// Write the generated program to STDOUT, or to -o, and terminate.
	//
	if *output == "" {
		fmt.Print(asmText)
		return
	}
	if err := os.WriteFile(*output, []byte(asmText), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %s\n", *output, err)
		os.Exit(1)
	}
}

// run drives the full pipeline: lex, parse, build the typed AST,
// generate the pseudo-instruction stream, and print it as NASM text.
func run(source string, ctx asm.CompilationContext, log *slog.Logger) (string, error) {
	start := time.Now()

	l := lexer.New(source)
	exprs, err := sexpr.Parse(l)
	if err != nil {
		return "", errors.WithMessage(err, "parse error")
	}
	log.Info("parsed", "top_level_forms", len(exprs), "elapsed", time.Since(start))

	prog, err := ast.Build(exprs)
	if err != nil {
		return "", errors.WithMessage(err, "build error")
	}
	log.Info("built", "defines", len(prog.Defines), "lambdas", len(ast.AllLambdas(prog)), "elapsed", time.Since(start))

	stmts, err := compiler.Compile(prog)
	if err != nil {
		return "", errors.WithMessage(err, "compile error")
	}
	log.Info("compiled", "statements", len(stmts), "elapsed", time.Since(start))

	return asm.Print(stmts, ctx), nil
}

func platformContext(name string) (asm.CompilationContext, error) {
	switch name {
	case "linux":
		return asm.CompilationContext{Platform: asm.PlatformLinux}, nil
	case "macos":
		return asm.CompilationContext{Platform: asm.PlatformMacOS}, nil
	default:
		return asm.CompilationContext{}, fmt.Errorf("unknown -platform %q: want linux or macos", name)
	}
}

// reportError prints a parse/build error with its source byte offset
// when one is available, falling back to the bare wrapped message
// otherwise (a compile-time consistency error already includes its
// own offset in Error()).
func reportError(err error) {
	switch e := errors.Cause(err).(type) {
	case *sexpr.ParseError:
		fmt.Fprintf(os.Stderr, "%s (at byte %d)\n", e.Message, e.Offset)
	case *ast.BuildError:
		fmt.Fprintf(os.Stderr, "%s (at byte %d)\n", e.Message, e.Offset)
	default:
		fmt.Fprintln(os.Stderr, err)
	}
}
