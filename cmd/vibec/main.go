// Command vibec compiles VibeLang sources to C.
//
// The pipeline runs for each input file:
//  1. Lexical and syntax analysis (parsing into an ast.Tree)
//  2. Semantic analysis (name resolution, type checking, prompt captures)
//  3. Code generation (C source that links against the VibeLang runtime)
//
// USAGE:
//
//	vibec [flags] file.vibe...
//	vibec repl
//	vibec watch DIR|FILE
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hassan/vibelang/internal/cache"
	"github.com/hassan/vibelang/internal/config"
	"github.com/hassan/vibelang/internal/driver"
	"github.com/hassan/vibelang/internal/logging"
	"github.com/hassan/vibelang/internal/runtime"
)

const version = "0.1.0"

// Exit codes.
const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

const usageText = `Usage: vibec [flags] file.vibe...
       vibec repl
       vibec watch DIR|FILE

Flags:
  -o, --output FILE     write the C output to FILE (one input only)
  -c, --check           stop after semantic analysis
  -v, --verbose         log each stage
  -d, --debug           log debugging detail
  -f, --force           rebuild even when the output is up to date
      --no-opt          keep unreachable and empty statements
      --config FILE     configuration file (default ./vibec.json)
      --dump-ast        print the syntax tree of each input
      --emit-runtime DIR
                        write the runtime headers to DIR
      --version         print the version
  -h, --help            show this help
`

type options struct {
	output      string
	check       bool
	verbose     bool
	debug       bool
	force       bool
	noOpt       bool
	configPath  string
	dumpAST     bool
	emitRuntime string
	showVersion bool
	help        bool
}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string) (*options, []string, error) {
	var o options
	fs := flag.NewFlagSet("vibec", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&o.output, "o", "", "")
	fs.StringVar(&o.output, "output", "", "")
	fs.BoolVar(&o.check, "c", false, "")
	fs.BoolVar(&o.check, "check", false, "")
	fs.BoolVar(&o.verbose, "v", false, "")
	fs.BoolVar(&o.verbose, "verbose", false, "")
	fs.BoolVar(&o.debug, "d", false, "")
	fs.BoolVar(&o.debug, "debug", false, "")
	fs.BoolVar(&o.force, "f", false, "")
	fs.BoolVar(&o.force, "force", false, "")
	fs.BoolVar(&o.noOpt, "no-opt", false, "")
	fs.StringVar(&o.configPath, "config", "", "")
	fs.BoolVar(&o.dumpAST, "dump-ast", false, "")
	fs.StringVar(&o.emitRuntime, "emit-runtime", "", "")
	fs.BoolVar(&o.showVersion, "version", false, "")
	fs.BoolVar(&o.help, "h", false, "")
	fs.BoolVar(&o.help, "help", false, "")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return &o, fs.Args(), nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, rest, err := parseFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, "vibec: %v\n\n%s", err, usageText)
		return exitUsage
	}

	switch {
	case opts.help:
		fmt.Fprint(stdout, usageText)
		return exitOK
	case opts.showVersion:
		fmt.Fprintf(stdout, "vibec %s\n", version)
		return exitOK
	}

	level := logging.LevelWarn
	switch {
	case opts.debug:
		level = logging.LevelDebug
	case opts.verbose:
		level = logging.LevelInfo
	}
	log := logging.New(stderr, level)

	if opts.emitRuntime != "" {
		if err := runtime.WriteHeaders(opts.emitRuntime); err != nil {
			fmt.Fprintf(stderr, "%s %v\n", red("✗"), err)
			return exitFail
		}
		fmt.Fprintf(stdout, "%s runtime headers written to %s\n", green("✓"), opts.emitRuntime)
		if len(rest) == 0 {
			return exitOK
		}
	}

	if len(rest) == 0 {
		fmt.Fprintf(stderr, "vibec: no input files\n\n%s", usageText)
		return exitUsage
	}

	comp, err := newCompiler(opts, log, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "%s %v\n", red("✗"), err)
		return exitFail
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch rest[0] {
	case "repl":
		return runREPL(comp, stdout, stderr)
	case "watch":
		if len(rest) != 2 {
			fmt.Fprintf(stderr, "vibec: watch takes one directory or file\n\n%s", usageText)
			return exitUsage
		}
		return runWatch(ctx, comp, rest[1], stdout, stderr)
	}

	if opts.output != "" && len(rest) > 1 {
		fmt.Fprintf(stderr, "vibec: -o cannot be used with several inputs\n\n%s", usageText)
		return exitUsage
	}
	jobs := make([]driver.Job, len(rest))
	for i, in := range rest {
		jobs[i] = driver.Job{Input: in, Output: driver.OutputPath(in)}
	}
	if opts.output != "" {
		jobs[0].Output = opts.output
	}

	reports, err := comp.CompileAll(ctx, jobs)
	for _, rep := range reports {
		printReport(stdout, stderr, rep, opts.check)
	}
	if err != nil {
		if errors.Cause(err) != driver.ErrFailed {
			fmt.Fprintf(stderr, "%s %v\n", red("✗"), err)
		}
		return exitFail
	}
	return exitOK
}

// newCompiler loads the configuration and builds the driver.
func newCompiler(opts *options, log *logrus.Logger, stdout io.Writer) (*driver.Compiler, error) {
	path := opts.configPath
	if path == "" {
		path = config.FileName
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if cfg.APIKey() == "" {
		log.Debug("no API key configured; generated programs need one at run time")
	}

	comp := driver.New(cfg, log)
	comp.CheckOnly = opts.check
	comp.Force = opts.force
	comp.NoOptimize = opts.noOpt
	if opts.dumpAST {
		comp.DumpAST = stdout
	}

	dir, err := cfg.CacheDir()
	if err != nil {
		return nil, err
	}
	salt := cfg.Fingerprint()
	if opts.noOpt {
		salt = append(salt, " no-opt"...)
	}
	comp.Cache = cache.New(dir, salt, log)
	return comp, nil
}

// printReport prints the status line of one compilation followed by its
// diagnostics.
func printReport(stdout, stderr io.Writer, rep *driver.Report, check bool) {
	if rep == nil {
		return
	}
	name := filepath.Base(rep.Input)
	for _, w := range rep.Warnings {
		fmt.Fprintf(stderr, "  %s %v\n", yellow("warning:"), w)
	}

	switch {
	case rep.UpToDate:
		fmt.Fprintf(stdout, "%s %s is up to date\n", green("✓"), name)
	case rep.OK() && check:
		fmt.Fprintf(stdout, "%s %s checked\n", green("✓"), name)
	case rep.OK():
		fmt.Fprintf(stdout, "%s %s -> %s\n", green("✓"), name, rep.Output)
	default:
		fmt.Fprintf(stderr, "%s %s: %s failed\n", red("✗"), name, rep.Stage)
		for _, p := range rep.Problems() {
			fmt.Fprintf(stderr, "  %v\n", p)
		}
	}
}
