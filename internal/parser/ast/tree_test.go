package ast

import (
	"errors"
	"strings"
	"testing"
)

func mustNew(t *testing.T, tree *Tree, kind Kind) NodeID {
	t.Helper()
	id, err := tree.New(kind)
	if err != nil {
		t.Fatalf("New(%s) error: %v", kind, err)
	}
	return id
}

func mustAdd(t *testing.T, tree *Tree, parent, child NodeID) {
	t.Helper()
	if err := tree.AddChild(parent, child); err != nil {
		t.Fatalf("AddChild(%d, %d) error: %v", parent, child, err)
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindProgram, "Program"},
		{KindFunctionDecl, "FunctionDecl"},
		{KindMeaningType, "MeaningType"},
		{KindPromptBlock, "PromptBlock"},
		{KindBoolLiteral, "BoolLiteral"},
		{Kind(999), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("Kind.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTree_NodeLimit(t *testing.T) {
	tree := NewTree(Limits{MaxNodes: 3, MaxDepth: 10})
	for i := 0; i < 3; i++ {
		mustNew(t, tree, KindIdentifier)
	}
	if _, err := tree.New(KindIdentifier); !errors.Is(err, ErrResourceExhausted) {
		t.Fatalf("New() past limit error = %v, want ErrResourceExhausted", err)
	}

	tree.ResetMetrics()
	if got := tree.Metrics().Nodes; got != 0 {
		t.Errorf("Metrics().Nodes after reset = %d, want 0", got)
	}
	if _, err := tree.New(KindIdentifier); err != nil {
		t.Errorf("New() after ResetMetrics error = %v", err)
	}
}

func TestTree_DepthLimit(t *testing.T) {
	tree := NewTree(Limits{MaxNodes: 100, MaxDepth: 2})
	a := mustNew(t, tree, KindProgram)
	b := mustNew(t, tree, KindFunctionDecl)
	c := mustNew(t, tree, KindFunctionBody)
	d := mustNew(t, tree, KindPromptBlock)

	mustAdd(t, tree, a, b)
	mustAdd(t, tree, b, c)
	if err := tree.AddChild(c, d); !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("AddChild() at depth 3 error = %v, want ErrDepthExceeded", err)
	}
	if tree.Parent(d) != NoNode {
		t.Errorf("rejected child got a parent")
	}
	if got := tree.Metrics().MaxDepth; got != 2 {
		t.Errorf("Metrics().MaxDepth = %d, want 2", got)
	}
}

func TestTree_DepthLimitCountsSubtreeHeight(t *testing.T) {
	tree := NewTree(Limits{MaxNodes: 100, MaxDepth: 2})
	root := mustNew(t, tree, KindProgram)
	mid := mustNew(t, tree, KindFunctionDecl)
	mustAdd(t, tree, root, mid)

	// A detached subtree of height 1 under a node at depth 1 reaches depth 3.
	sub := mustNew(t, tree, KindFunctionBody)
	leaf := mustNew(t, tree, KindPromptBlock)
	mustAdd(t, tree, sub, leaf)

	if err := tree.AddChild(mid, sub); !errors.Is(err, ErrDepthExceeded) {
		t.Errorf("AddChild(subtree) error = %v, want ErrDepthExceeded", err)
	}
	if err := tree.AddChild(root, sub); err != nil {
		t.Errorf("AddChild(root, subtree) error = %v", err)
	}
}

func TestTree_AddChildRejectsSharingAndCycles(t *testing.T) {
	tree := NewTree(DefaultLimits())
	a := mustNew(t, tree, KindBlock)
	b := mustNew(t, tree, KindBlock)
	c := mustNew(t, tree, KindBlock)
	mustAdd(t, tree, a, b)
	mustAdd(t, tree, b, c)

	tests := []struct {
		name          string
		parent, child NodeID
		want          error
	}{
		{"already owned", c, b, ErrAlreadyAttached},
		{"ancestor as child", c, a, ErrCycle},
		{"self", a, a, ErrCycle},
		{"no node", a, NoNode, ErrInvalidNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tree.AddChild(tt.parent, tt.child); !errors.Is(err, tt.want) {
				t.Errorf("AddChild() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTree_RemoveAndReplace(t *testing.T) {
	tree := NewTree(DefaultLimits())
	call := mustNew(t, tree, KindCallExpr)
	args := []NodeID{
		mustNew(t, tree, KindIntLiteral),
		mustNew(t, tree, KindIdentifier),
		mustNew(t, tree, KindStringLiteral),
	}
	for _, a := range args {
		mustAdd(t, tree, call, a)
	}

	if err := tree.RemoveChild(call, 3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("RemoveChild(3) error = %v, want ErrIndexOutOfRange", err)
	}
	if err := tree.RemoveChild(call, -1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("RemoveChild(-1) error = %v, want ErrIndexOutOfRange", err)
	}

	if err := tree.RemoveChild(call, 1); err != nil {
		t.Fatalf("RemoveChild(1) error: %v", err)
	}
	if tree.Valid(args[1]) {
		t.Errorf("removed child is still live")
	}
	if got := tree.Children(call); len(got) != 2 || got[0] != args[0] || got[1] != args[2] {
		t.Errorf("Children() after remove = %v", got)
	}

	repl := mustNew(t, tree, KindBoolLiteral)
	if err := tree.ReplaceChild(call, 0, repl); err != nil {
		t.Fatalf("ReplaceChild(0) error: %v", err)
	}
	if tree.Valid(args[0]) {
		t.Errorf("replaced child is still live")
	}
	if tree.Child(call, 0) != repl || tree.Parent(repl) != call {
		t.Errorf("ReplaceChild() did not install the new child")
	}
	if err := tree.ReplaceChild(call, 5, repl); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("ReplaceChild(5) error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestTree_ReplaceChildKeepsOldOnFailure(t *testing.T) {
	tree := NewTree(Limits{MaxNodes: 100, MaxDepth: 1})
	root := mustNew(t, tree, KindBlock)
	old := mustNew(t, tree, KindExprStmt)
	mustAdd(t, tree, root, old)

	deep := mustNew(t, tree, KindExprStmt)
	mustAdd(t, tree, deep, mustNew(t, tree, KindCallExpr))

	if err := tree.ReplaceChild(root, 0, deep); !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("ReplaceChild() error = %v, want ErrDepthExceeded", err)
	}
	if tree.Child(root, 0) != old || !tree.Valid(old) || tree.Parent(old) != root {
		t.Errorf("failed ReplaceChild() disturbed the original child")
	}
}

// TestTree_FreeCounts checks every node has exactly its adding parent and
// that Free releases each node exactly once.
func TestTree_FreeCounts(t *testing.T) {
	tree := NewTree(DefaultLimits())
	prog := mustNew(t, tree, KindProgram)
	fn := mustNew(t, tree, KindFunctionDecl)
	body := mustNew(t, tree, KindFunctionBody)
	mustAdd(t, tree, prog, fn)
	mustAdd(t, tree, fn, body)
	for i := 0; i < 4; i++ {
		stmt := mustNew(t, tree, KindExprStmt)
		mustAdd(t, tree, body, stmt)
		mustAdd(t, tree, stmt, mustNew(t, tree, KindCallExpr))
	}
	if err := tree.RemoveChild(body, 2); err != nil {
		t.Fatal(err)
	}
	repl := mustNew(t, tree, KindPromptBlock)
	if err := tree.ReplaceChild(body, 0, repl); err != nil {
		t.Fatal(err)
	}

	visited := 0
	tree.Walk(prog, func(id NodeID) bool {
		visited++
		for _, c := range tree.Children(id) {
			if tree.Parent(c) != id {
				t.Errorf("Parent(%d) = %d, want %d", c, tree.Parent(c), id)
			}
		}
		return true
	})
	if visited != tree.Live() {
		t.Errorf("reachable nodes = %d, live nodes = %d", visited, tree.Live())
	}

	tree.Free(prog)
	if got := tree.Live(); got != 0 {
		t.Errorf("Live() after Free = %d, want 0", got)
	}
	tree.Free(prog)
	tree.Free(NoNode)
	if got := tree.Live(); got != 0 {
		t.Errorf("Live() after double Free = %d, want 0", got)
	}
}

func TestTree_FreeAttachedSubtreeUnlinks(t *testing.T) {
	tree := NewTree(DefaultLimits())
	parent := mustNew(t, tree, KindBlock)
	child := mustNew(t, tree, KindBlock)
	mustAdd(t, tree, parent, child)

	tree.Free(child)
	if n := tree.Len(parent); n != 0 {
		t.Errorf("Len(parent) after freeing child = %d, want 0", n)
	}
}

func TestProperties_Upsert(t *testing.T) {
	tree := NewTree(DefaultLimits())
	id := mustNew(t, tree, KindIntLiteral)

	tree.SetString(id, PropValue, "42")
	tree.SetInt(id, PropValue, 42)

	if got := tree.GetInt(id, PropValue); got != 42 {
		t.Errorf("GetInt() = %d, want 42", got)
	}
	if got := tree.GetString(id, PropValue); got != "" {
		t.Errorf("GetString() after retag = %q, want empty", got)
	}
	if got := tree.Prop(id, PropValue).Kind; got != ValueInt {
		t.Errorf("Prop().Kind = %s, want int", got)
	}
}

func TestProperties_Defaults(t *testing.T) {
	tree := NewTree(DefaultLimits())
	id := mustNew(t, tree, KindBoolLiteral)
	tree.SetBool(id, PropValue, true)

	if got := tree.GetString(id, "missing"); got != "" {
		t.Errorf("GetString(missing) = %q, want empty", got)
	}
	if got := tree.GetInt(id, PropValue); got != 0 {
		t.Errorf("GetInt(bool key) = %d, want 0", got)
	}
	if got := tree.GetFloat(id, PropValue); got != 0 {
		t.Errorf("GetFloat(bool key) = %g, want 0", got)
	}
	if got := tree.GetBool(NoNode, PropValue); got {
		t.Errorf("GetBool(NoNode) = true, want false")
	}
	if !tree.GetBool(id, PropValue) {
		t.Errorf("GetBool() = false, want true")
	}
}

func TestFprint(t *testing.T) {
	tree := NewTree(DefaultLimits())
	decl := mustNew(t, tree, KindTypeDecl)
	tree.SetString(decl, PropName, "Temperature")
	meaning := mustNew(t, tree, KindMeaningType)
	tree.SetString(meaning, PropMeaning, "temperature in Celsius")
	basic := mustNew(t, tree, KindBasicType)
	tree.SetString(basic, PropType, "Int")
	mustAdd(t, tree, decl, meaning)
	mustAdd(t, tree, meaning, basic)

	var b strings.Builder
	if err := Fprint(&b, tree, decl); err != nil {
		t.Fatal(err)
	}
	want := "TypeDecl name=\"Temperature\"\n" +
		"  MeaningType meaning=\"temperature in Celsius\"\n" +
		"    BasicType type=\"Int\"\n"
	if b.String() != want {
		t.Errorf("Fprint() = %q, want %q", b.String(), want)
	}
}
