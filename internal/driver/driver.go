// Package driver runs the compilation pipeline on files.
//
// PIPELINE:
//
//	read -> parse -> analyze -> optimize -> generate -> write
//
// Each stage runs only when the previous one succeeded. Every compilation
// gets its own ast.Tree, analyzer and generator, so CompileAll can run
// independent inputs in parallel.
package driver

import (
	"bytes"
	"context"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/hassan/vibelang/internal/cache"
	"github.com/hassan/vibelang/internal/codegen"
	"github.com/hassan/vibelang/internal/config"
	"github.com/hassan/vibelang/internal/logging"
	"github.com/hassan/vibelang/internal/optimizer"
	"github.com/hassan/vibelang/internal/parser"
	"github.com/hassan/vibelang/internal/parser/ast"
	"github.com/hassan/vibelang/internal/semantic"
)

// SourceExt is the extension of VibeLang source files.
const SourceExt = ".vibe"

// ErrFailed is the cause of every error returned for a compilation that
// reported diagnostics.
var ErrFailed = errors.New("compilation failed")

// Stage is a step of the pipeline.
type Stage int

const (
	StageRead Stage = iota
	StageParse
	StageAnalyze
	StageGenerate
	StageWrite
	StageDone
)

var stageNames = [...]string{
	StageRead:     "read",
	StageParse:    "parse",
	StageAnalyze:  "semantic analysis",
	StageGenerate: "code generation",
	StageWrite:    "write",
	StageDone:     "done",
}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

// Report describes one compilation.
type Report struct {
	Input  string
	Output string

	// Stage is the stage that failed, or StageDone.
	Stage Stage

	// UpToDate is set when the cache found nothing to rebuild.
	UpToDate bool

	ParseErrors []error
	Errors      []semantic.Diagnostic
	Warnings    []semantic.Diagnostic

	// Err is the IO or code generation error that stopped the pipeline.
	Err error
}

// OK reports whether the compilation succeeded.
func (r *Report) OK() bool {
	return r.Stage == StageDone
}

// Problems returns every error of the report in pipeline order.
func (r *Report) Problems() []error {
	var out []error
	out = append(out, r.ParseErrors...)
	for _, d := range r.Errors {
		out = append(out, d)
	}
	if r.Err != nil {
		out = append(out, r.Err)
	}
	return out
}

// Job is one input and its output path.
type Job struct {
	Input  string
	Output string
}

// Compiler holds the settings shared by every compilation.
type Compiler struct {
	Config *config.Config
	Log    logrus.FieldLogger

	// Cache skips inputs whose output is current. Nil always rebuilds.
	Cache *cache.Cache

	// CheckOnly stops after semantic analysis.
	CheckOnly bool

	// Force rebuilds even when the cache says the output is current.
	Force bool

	// NoOptimize skips the tree cleanups between analysis and generation.
	NoOptimize bool

	// DumpAST, when set, receives the syntax tree of every parsed input.
	DumpAST io.Writer
}

// New returns a compiler for cfg. A nil cfg uses config.Default().
func New(cfg *config.Config, log logrus.FieldLogger) *Compiler {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Compiler{Config: cfg, Log: logging.OrDiscard(log)}
}

// OutputPath derives the default output of an input: the .vibe extension
// is replaced by .c, any other name gets .c appended.
func OutputPath(in string) string {
	return strings.TrimSuffix(in, SourceExt) + ".c"
}

// CompileFile compiles in and writes the C translation to out. The error is
// non-nil when the report is not OK; its cause is ErrFailed for
// compilations rejected by the parser or the analyzer.
func (c *Compiler) CompileFile(ctx context.Context, in, out string) (*Report, error) {
	log := c.logger().WithField("file", in)
	rep := &Report{Input: in, Output: out}

	if err := ctx.Err(); err != nil {
		rep.Err = err
		return rep, err
	}
	if !c.Force && !c.CheckOnly && c.Cache != nil && !c.Cache.NeedsUpdate(in, out) {
		log.Info("up to date")
		rep.UpToDate = true
		rep.Stage = StageDone
		return rep, nil
	}

	src, err := os.ReadFile(in)
	if err != nil {
		rep.Err = errors.Wrap(err, "reading source")
		return rep, rep.Err
	}

	var buf bytes.Buffer
	if err := c.compile(ctx, rep, in, string(src), &buf); err != nil {
		return rep, err
	}
	if c.CheckOnly {
		return rep, nil
	}

	rep.Stage = StageWrite
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		rep.Err = errors.Wrap(err, "writing output")
		return rep, rep.Err
	}
	if c.Cache != nil {
		if err := c.Cache.Record(in, out); err != nil {
			log.WithError(err).Warn("cannot record build stamp")
		}
	}
	rep.Stage = StageDone
	log.WithField("output", out).Info("compiled")
	return rep, nil
}

// CompileSource compiles source text and writes the C translation to w.
// Nothing is written when the compilation fails.
func (c *Compiler) CompileSource(name, source string, w io.Writer) (*Report, error) {
	rep := &Report{Input: name}
	var buf bytes.Buffer
	if err := c.compile(context.Background(), rep, name, source, &buf); err != nil {
		return rep, err
	}
	if c.CheckOnly {
		return rep, nil
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		rep.Stage = StageWrite
		rep.Err = errors.Wrap(err, "writing output")
		return rep, rep.Err
	}
	return rep, nil
}

// compile runs parse, analyze and, unless CheckOnly, generate into buf.
func (c *Compiler) compile(ctx context.Context, rep *Report, name, source string, buf *bytes.Buffer) error {
	log := c.logger().WithField("file", name)

	rep.Stage = StageParse
	tree, errs := parser.Parse(name, source, c.Config.Limits())
	if len(errs) > 0 {
		rep.ParseErrors = errs
		return errors.Wrapf(ErrFailed, "%s: %d parse errors", name, len(errs))
	}
	log.WithField("nodes", tree.Metrics().Nodes).Debug("parsed")
	if c.DumpAST != nil {
		if err := ast.Fprint(c.DumpAST, tree, tree.Root()); err != nil {
			log.WithError(err).Warn("cannot dump syntax tree")
		}
	}
	if err := ctx.Err(); err != nil {
		rep.Err = err
		return err
	}

	rep.Stage = StageAnalyze
	a := semantic.New(c.logger())
	a.MaxDepth = c.Config.Compiler.MaxDepth
	res := a.Analyze(tree)
	rep.Errors, rep.Warnings = res.Errors, res.Warnings
	if !res.OK() {
		return errors.Wrapf(ErrFailed, "%s: %d semantic errors", name, len(res.Errors))
	}
	c.Config.Validate(log, functionNames(res))

	if c.CheckOnly {
		rep.Stage = StageDone
		return nil
	}
	if err := ctx.Err(); err != nil {
		rep.Err = err
		return err
	}

	rep.Stage = StageGenerate
	if !c.NoOptimize {
		if _, err := optimizer.New(c.logger()).Optimize(tree, res); err != nil {
			rep.Err = err
			return errors.Wrap(err, name)
		}
	}
	if err := codegen.New(c.logger()).Generate(buf, tree, res); err != nil {
		rep.Err = err
		return errors.Wrap(err, name)
	}
	rep.Stage = StageDone
	return nil
}

// CompileAll compiles jobs concurrently. Every job runs to completion even
// when others fail; the returned reports are in job order. The error
// reports how many jobs failed, or the context error if it was cancelled.
func (c *Compiler) CompileAll(ctx context.Context, jobs []Job) ([]*Report, error) {
	reports := make([]*Report, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			rep, err := c.CompileFile(ctx, job.Input, job.Output)
			reports[i] = rep
			if cerr := ctx.Err(); cerr != nil && errors.Is(err, cerr) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return reports, err
	}

	failed := 0
	for _, rep := range reports {
		if !rep.OK() {
			failed++
		}
	}
	if failed > 0 {
		return reports, errors.Wrapf(ErrFailed, "%d of %d files", failed, len(jobs))
	}
	return reports, nil
}

func (c *Compiler) logger() logrus.FieldLogger {
	return logging.OrDiscard(c.Log)
}

// functionNames lists the functions of an analysis for config validation.
// Methods are addressed as Class.method.
func functionNames(res *semantic.Result) []string {
	names := make([]string, 0, len(res.Functions))
	for _, fn := range res.Functions {
		if fn.Class != "" {
			names = append(names, fn.Class+"."+fn.Name)
			continue
		}
		names = append(names, fn.Name)
	}
	return names
}
