package engine

import (
	"testing"

	"vex/internal/value"
)

func TestQuoteWrapsSingleOpvalBlock(t *testing.T) {
	c := newTestContext(t)
	if err := c.IntroI64(42); err != nil {
		t.Fatalf("intro: %v", err)
	}
	if err := c.Quote(); err != nil {
		t.Fatalf("quote: %v", err)
	}
	block, _, ok := c.pair(c.val)
	if !ok {
		t.Fatalf("expected (block, e)")
	}
	opsList, flags, isBlock := readBlock(c, block)
	if !isBlock {
		t.Fatalf("quote did not produce a BLOCK")
	}
	if flags != 0 {
		t.Fatalf("flags = %v, want 0", flags)
	}
	if opsList.Tag() != value.TagPL {
		t.Fatalf("expected a one-element ops list, got tag %v", opsList.Tag())
	}
}

func TestComposeConcatenatesOpsLists(t *testing.T) {
	c := newTestContext(t)
	opA, err := c.ConsOp(value.SmallInt('l'), value.UnitR)
	if err != nil {
		t.Fatalf("cons: %v", err)
	}
	left, err := c.WrapBlock(opA, 0)
	if err != nil {
		t.Fatalf("wrap left: %v", err)
	}
	opB, err := c.ConsOp(value.SmallInt('r'), value.UnitR)
	if err != nil {
		t.Fatalf("cons: %v", err)
	}
	right, err := c.WrapBlock(opB, 0)
	if err != nil {
		t.Fatalf("wrap right: %v", err)
	}

	// compose expects (left, (right, e)).
	tail, err := c.allocPair(right, value.Unit)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	v, err := c.allocPair(left, tail)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	c.val = v

	if err := c.Compose(); err != nil {
		t.Fatalf("compose: %v", err)
	}
	composed, _, ok := c.pair(c.val)
	if !ok {
		t.Fatalf("expected (block, e)")
	}
	opsList, _, isBlock := readBlock(c, composed)
	if !isBlock {
		t.Fatalf("compose result is not a block")
	}
	first := c.Arena.ReadValue(opsList.Offset())
	if first != value.SmallInt('l') {
		t.Fatalf("first op = %v, want 'l'", first)
	}
	restOff := c.Arena.ReadValue(opsList.Offset() + 8)
	second := c.Arena.ReadValue(restOff.Offset())
	if second != value.SmallInt('r') {
		t.Fatalf("second op = %v, want 'r'", second)
	}
}

func TestTrashProducesNormalTrashWithZeroSs(t *testing.T) {
	c := newTestContext(t)
	if err := c.IntroI64(5); err != nil {
		t.Fatalf("intro: %v", err)
	}
	if err := c.Trash(); err != nil {
		t.Fatalf("trash: %v", err)
	}
	trash, _, ok := c.pair(c.val)
	if !ok {
		t.Fatalf("expected (trash, e)")
	}
	header := c.Arena.ReadWord(trash.Offset())
	otag, fields := value.SplitHeaderWord(header)
	if otag != value.OtagTrash {
		t.Fatalf("otag = %v, want OtagTrash", otag)
	}
	if fields != 0 {
		t.Fatalf("trash ss = %d, want 0 for a non-substructural value", fields)
	}
}
