package vparser

import (
	"testing"

	"vex/internal/arena"
	"vex/internal/engine"
	"vex/internal/value"
)

func newTestContext(t *testing.T) *engine.Context {
	t.Helper()
	return engine.New(256, arena.Options{})
}

// opsSlice walks a BLOCK's ops list and returns its elements in parse
// (already-reversed, left-to-right) order.
func opsSlice(c *engine.Context, block value.Value) []value.Value {
	cur := c.Arena.ReadValue(block.Offset() + 8)
	var out []value.Value
	for cur.Tag() == value.TagPL {
		off := cur.Offset()
		out = append(out, c.Arena.ReadValue(off))
		cur = c.Arena.ReadValue(off + 8)
	}
	return out
}

func TestParseSimpleOpsInOrder(t *testing.T) {
	c := newTestContext(t)
	block, err := Parse(c, "vrwlc")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ops := opsSlice(c, block)
	want := "vrwlc"
	if len(ops) != len(want) {
		t.Fatalf("got %d ops, want %d", len(ops), len(want))
	}
	for i, r := range want {
		if ops[i] != value.SmallInt(int64(r)) {
			t.Fatalf("op[%d] = %v, want SmallInt(%q)", i, ops[i], r)
		}
	}
}

// TestParseBracketedTextBlock checks that parsing "[vrwlc]" yields a
// block whose single op is an OPVAL(LAZYKF) wrapping a nested block of
// [v,r,w,l,c].
func TestParseBracketedTextBlock(t *testing.T) {
	c := newTestContext(t)
	block, err := Parse(c, "[vrwlc]")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ops := opsSlice(c, block)
	if len(ops) != 1 {
		t.Fatalf("got %d top-level ops, want 1", len(ops))
	}
	op := ops[0]
	if op.Tag() != value.TagO {
		t.Fatalf("expected a boxed OPVAL op, got tag %v", op.Tag())
	}
	header := c.Arena.ReadWord(op.Offset())
	otag, fields := value.SplitHeaderWord(header)
	if otag != value.OtagOpval {
		t.Fatalf("otag = %v, want OtagOpval", otag)
	}
	if value.BlockFlag(fields)&value.OpvalLazyKF == 0 {
		t.Fatalf("expected the block literal's OPVAL to be marked LAZYKF")
	}
	inner := c.Arena.ReadValue(op.Offset() + 8)
	innerOps := opsSlice(c, inner)
	want := "vrwlc"
	if len(innerOps) != len(want) {
		t.Fatalf("got %d inner ops, want %d", len(innerOps), len(want))
	}
	for i, r := range want {
		if innerOps[i] != value.SmallInt(int64(r)) {
			t.Fatalf("inner op[%d] = %v, want SmallInt(%q)", i, innerOps[i], r)
		}
	}
}

func TestParseTokenLiteral(t *testing.T) {
	c := newTestContext(t)
	block, err := Parse(c, "{foo}")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ops := opsSlice(c, block)
	if len(ops) != 1 {
		t.Fatalf("got %d ops, want 1", len(ops))
	}
	header := c.Arena.ReadWord(ops[0].Offset())
	otag, fields := value.SplitHeaderWord(header)
	if otag != value.OtagOptok {
		t.Fatalf("otag = %v, want OtagOptok", otag)
	}
	name := string(c.Arena.ReadBytes(ops[0].Offset()+8, fields))
	if name != "foo" {
		t.Fatalf("token name = %q, want foo", name)
	}
}

func TestParseTextLiteral(t *testing.T) {
	c := newTestContext(t)
	block, err := Parse(c, "\"hello\n~")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ops := opsSlice(c, block)
	if len(ops) != 1 {
		t.Fatalf("got %d ops, want 1", len(ops))
	}
	header := c.Arena.ReadWord(ops[0].Offset())
	otag, _ := value.SplitHeaderWord(header)
	if otag != value.OtagOpval {
		t.Fatalf("otag = %v, want OtagOpval", otag)
	}
	underlying := c.Arena.ReadValue(ops[0].Offset() + 8)
	text, _, err := c.ReadText(underlying, 1024)
	if err != nil {
		t.Fatalf("read_text: %v", err)
	}
	if text != "hello" {
		t.Fatalf("text = %q, want hello", text)
	}
}

func TestParseRejectsUnmatchedBracket(t *testing.T) {
	c := newTestContext(t)
	if _, err := Parse(c, "[vrwlc"); err == nil {
		t.Fatalf("expected an error for an unclosed block literal")
	}
}

func TestParseRejectsUnknownOp(t *testing.T) {
	c := newTestContext(t)
	if _, err := Parse(c, "q"); err == nil {
		t.Fatalf("expected an error for an op with no table entry")
	}
}
