// Package optimizer simplifies an analyzed tree before code generation.
//
// Each optimization is a separate Pass over the statements of one function
// body. Passes edit the tree in place through the ast.Tree operations, so
// the nodes they drop are freed and the tree metrics stay accurate.
//
// DEFAULT PASS ORDER:
//  1. Unreachable code: statements after a return, or after a prompt in a
//     function that returns a value (the prompt's lowering returns)
//  2. Empty statements: `;` and blocks left empty by the first pass
package optimizer

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/hassan/vibelang/internal/logging"
	"github.com/hassan/vibelang/internal/parser/ast"
	"github.com/hassan/vibelang/internal/semantic"
)

// Unit is the input of a pass: a tree and its analysis.
type Unit struct {
	Tree   *ast.Tree
	Result *semantic.Result
	Log    logrus.FieldLogger
}

// Pass is one optimization over a function body.
type Pass interface {
	// Name returns a human-readable name for this pass.
	Name() string

	// Run optimizes the body of fn and records what it did in stats.
	Run(u *Unit, fn *semantic.Function, stats *Stats) error
}

// Optimizer runs passes over every function of a unit.
type Optimizer struct {
	passes []Pass
	log    logrus.FieldLogger
}

// New creates an optimizer with the default passes.
func New(log logrus.FieldLogger) *Optimizer {
	return &Optimizer{
		passes: []Pass{
			&UnreachableCodePass{},
			&EmptyStatementPass{},
		},
		log: logging.OrDiscard(log),
	}
}

// AddPass appends a pass to the pipeline.
func (o *Optimizer) AddPass(p Pass) {
	o.passes = append(o.passes, p)
}

// Optimize runs every pass on every function, in declaration order.
func (o *Optimizer) Optimize(tree *ast.Tree, res *semantic.Result) (*Stats, error) {
	u := &Unit{Tree: tree, Result: res, Log: o.log}
	stats := NewStats()

	fns := make([]*semantic.Function, 0, len(res.Functions))
	for _, fn := range res.Functions {
		fns = append(fns, fn)
	}
	sort.Slice(fns, func(i, j int) bool { return fns[i].Decl < fns[j].Decl })

	for _, fn := range fns {
		for _, p := range o.passes {
			if err := p.Run(u, fn, stats); err != nil {
				return stats, err
			}
			stats.PassExecutions[p.Name()]++
		}
	}
	o.log.WithFields(logrus.Fields{
		"unreachable": stats.UnreachableRemoved,
		"empty":       stats.EmptyRemoved,
	}).Debug("optimization finished")
	return stats, nil
}

// Stats counts what the passes removed.
type Stats struct {
	UnreachableRemoved int
	EmptyRemoved       int

	// PassExecutions tracks how many times each pass ran.
	PassExecutions map[string]int
}

// NewStats creates an empty stats tracker.
func NewStats() *Stats {
	return &Stats{PassExecutions: make(map[string]int)}
}

// body returns the body block of fn.
func body(u *Unit, fn *semantic.Function) (ast.NodeID, error) {
	v, err := ast.Decode(u.Tree, fn.Decl)
	if err != nil {
		return ast.NoNode, err
	}
	fd, ok := v.(*ast.FuncDecl)
	if !ok {
		return ast.NoNode, &ast.ShapeError{Node: fn.Decl, Kind: u.Tree.Kind(fn.Decl), Pos: u.Tree.Pos(fn.Decl), Reason: "not a function"}
	}
	return fd.Body, nil
}

// removeFrom frees the children of block from index i on.
func removeFrom(tree *ast.Tree, block ast.NodeID, i int) (int, error) {
	n := 0
	for j := tree.Len(block) - 1; j >= i; j-- {
		if err := tree.RemoveChild(block, j); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
