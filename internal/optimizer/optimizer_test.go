package optimizer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hassan/vibelang/internal/logging"
	"github.com/hassan/vibelang/internal/parser"
	"github.com/hassan/vibelang/internal/parser/ast"
	"github.com/hassan/vibelang/internal/semantic"
)

func analyze(t *testing.T, source string) (*ast.Tree, *semantic.Result) {
	t.Helper()
	tree, errs := parser.Parse("test.vibe", source, ast.DefaultLimits())
	if len(errs) > 0 {
		t.Fatalf("Parse() errors: %v", errs)
	}
	res := semantic.New(nil).Analyze(tree)
	if !res.OK() {
		t.Fatalf("Analyze() errors: %v", res.Errors)
	}
	return tree, res
}

// shape renders the statement kinds of the first function body, nested
// blocks in braces.
func shape(tree *ast.Tree) string {
	var fn ast.NodeID
	for _, id := range tree.Children(tree.Root()) {
		if tree.Kind(id) == ast.KindFunctionDecl {
			fn = id
			break
		}
	}
	v, err := ast.Decode(tree, fn)
	if err != nil {
		return err.Error()
	}
	var b strings.Builder
	var walk func(block ast.NodeID)
	walk = func(block ast.NodeID) {
		for i, c := range tree.Children(block) {
			if i > 0 {
				b.WriteByte(' ')
			}
			if tree.Kind(c) == ast.KindBlock {
				b.WriteByte('{')
				walk(c)
				b.WriteByte('}')
				continue
			}
			b.WriteString(tree.Kind(c).String())
		}
	}
	walk(v.(*ast.FuncDecl).Body)
	return b.String()
}

func TestOptimize(t *testing.T) {
	tests := []struct {
		name            string
		source          string
		want            string
		wantUnreachable int
		wantEmpty       int
	}{
		{
			name:   "nothing to do",
			source: "fn f() -> Int { let x = 1; return x; }",
			want:   "VarDecl ReturnStmt",
		},
		{
			name:            "after return",
			source:          "fn f() -> Int { return 1; let x = 2; return x; }",
			want:            "ReturnStmt",
			wantUnreachable: 2,
		},
		{
			name:            "after typed prompt",
			source:          "fn f() -> String { prompt \"hi\" let x = 2; }",
			want:            "PromptBlock",
			wantUnreachable: 1,
		},
		{
			name:   "untyped prompt does not return",
			source: "fn f() { prompt \"hi\" let x = 2; }",
			want:   "PromptBlock VarDecl",
		},
		{
			name:            "terminating nested block",
			source:          "fn f() -> Int { { return 1; let y = 1; } let x = 2; }",
			want:            "{ReturnStmt}",
			wantUnreachable: 2,
		},
		{
			name:      "empty statements and blocks",
			source:    "fn f() { ; let x = 1; { ; } {} }",
			want:      "VarDecl",
			wantEmpty: 4,
		},
		{
			name:            "block after return",
			source:          "fn f() -> Int { return 1; { let x = 1; } }",
			want:            "ReturnStmt",
			wantUnreachable: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, res := analyze(t, tt.source)
			before := tree.Live()

			stats, err := New(nil).Optimize(tree, res)
			if err != nil {
				t.Fatalf("Optimize() error: %v", err)
			}
			if got := shape(tree); got != tt.want {
				t.Errorf("body = %q, want %q", got, tt.want)
			}
			if stats.UnreachableRemoved != tt.wantUnreachable {
				t.Errorf("UnreachableRemoved = %d, want %d", stats.UnreachableRemoved, tt.wantUnreachable)
			}
			if stats.EmptyRemoved != tt.wantEmpty {
				t.Errorf("EmptyRemoved = %d, want %d", stats.EmptyRemoved, tt.wantEmpty)
			}
			if removed := tt.wantUnreachable + tt.wantEmpty; removed > 0 && tree.Live() >= before {
				t.Errorf("Live() = %d after removing %d statements, want fewer than %d", tree.Live(), removed, before)
			}
		})
	}
}

func TestOptimize_Methods(t *testing.T) {
	tree, res := analyze(t, "class C { fn m() -> Int { return 1; ; } }")
	stats, err := New(nil).Optimize(tree, res)
	if err != nil {
		t.Fatal(err)
	}
	if stats.UnreachableRemoved != 1 {
		t.Errorf("UnreachableRemoved = %d, want 1", stats.UnreachableRemoved)
	}
	if stats.PassExecutions["UnreachableCode"] != 1 || stats.PassExecutions["EmptyStatement"] != 1 {
		t.Errorf("PassExecutions = %v, want one run of each pass", stats.PassExecutions)
	}
}

func TestOptimize_WarnsAboutUnreachableCode(t *testing.T) {
	tree, res := analyze(t, "fn f() -> Int {\n  return 1;\n  let x = 2;\n}")
	var buf bytes.Buffer
	if _, err := New(logging.New(&buf, logging.LevelWarn)).Optimize(tree, res); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "unreachable code removed") || !strings.Contains(buf.String(), "test.vibe:3:3") {
		t.Errorf("log = %q, want a warning at test.vibe:3:3", buf.String())
	}
}

type countingPass struct{ runs int }

func (p *countingPass) Name() string { return "Counting" }

func (p *countingPass) Run(*Unit, *semantic.Function, *Stats) error {
	p.runs++
	return nil
}

func TestAddPass(t *testing.T) {
	tree, res := analyze(t, "fn a() {}\nfn b() {}")
	o := New(nil)
	p := &countingPass{}
	o.AddPass(p)
	if _, err := o.Optimize(tree, res); err != nil {
		t.Fatal(err)
	}
	if p.runs != 2 {
		t.Errorf("runs = %d, want 2", p.runs)
	}
}
