package arena

import (
	"testing"

	"vex/internal/value"
)

// mkPair allocates a pair cell. head/tail are rooted for the duration of
// the reservation so an intervening compaction (if one is needed)
// relocates them correctly before they're written into the new cell.
func mkPair(t *testing.T, a *Arena, head, tail value.Value) value.Value {
	t.Helper()
	if err := a.Reserve(2, []*value.Value{&head, &tail}); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	off := a.AllocR(2)
	a.WriteValue(off, head)
	a.WriteValue(off+8, tail)
	return value.TaggedOffset(off, value.TagP)
}

func TestAllocAndReadWrite(t *testing.T) {
	a := New(64, Options{})
	p := mkPair(t, a, value.SmallInt(7), value.Unit)
	if p.Tag() != value.TagP {
		t.Fatalf("expected TagP, got %v", p.Tag())
	}
	head := a.ReadValue(p.Offset())
	tail := a.ReadValue(p.Offset() + 8)
	if head.Int() != 7 {
		t.Fatalf("head = %v, want I(7)", head)
	}
	if tail != value.Unit {
		t.Fatalf("tail = %v, want Unit", tail)
	}
}

func TestCompactDropsUnreachable(t *testing.T) {
	a := New(4, Options{}) // small arena: 4 cells * 16B = 64B per space
	// Build a chain of pairs, keeping only the last as a root so the
	// earlier links become garbage once we swap which one is live.
	garbage := mkPair(t, a, value.SmallInt(1), value.Unit)
	_ = garbage
	root := mkPair(t, a, value.SmallInt(2), value.Unit)

	before := a.Alloc()
	a.Compact([]*value.Value{&root}, 0)
	after := a.Alloc()

	if after >= before {
		t.Fatalf("expected compaction to shrink live set: before=%d after=%d", before, after)
	}
	if root.Tag() != value.TagP {
		t.Fatalf("root lost its tag across compaction: %v", root)
	}
	head := a.ReadValue(root.Offset())
	if head.Int() != 2 {
		t.Fatalf("root.head = %v after compaction, want I(2)", head)
	}
}

func TestReserveTriggersCompactionThenCXFULL(t *testing.T) {
	a := New(1, Options{}) // 1 cell min -> rounds up to 16 bytes per space
	var root value.Value = value.Unit

	// Keep allocating small pairs chained off root until the arena can no
	// longer satisfy a reservation even after compaction.
	err := error(nil)
	for i := 0; i < 10000; i++ {
		if rerr := a.Reserve(2, []*value.Value{&root}); rerr != nil {
			err = rerr
			break
		}
		off := a.AllocR(2)
		a.WriteValue(off, value.SmallInt(int64(i)))
		a.WriteValue(off+8, root)
		root = value.TaggedOffset(off, value.TagP)
	}
	if err != CXFULL {
		t.Fatalf("expected eventual CXFULL, got %v", err)
	}
}

func TestVsizeMatchesCompactionDelta(t *testing.T) {
	a := New(64, Options{})
	var root value.Value = value.Unit
	for i := 0; i < 20; i++ {
		root = mkPair(t, a, value.SmallInt(int64(i)), root)
	}

	want := a.Vsize(root)

	beforeAlloc := a.Alloc()
	a.Compact([]*value.Value{&root}, 0)
	got := a.Alloc()
	_ = beforeAlloc

	if got != want {
		t.Fatalf("vsize=%d but compaction allocated %d bytes", want, got)
	}
}

func TestCapGrowsAfterCompaction(t *testing.T) {
	a := New(256, Options{MemFactor: 2, PageBytes: 64})
	var root value.Value = value.Unit
	for i := 0; i < 5; i++ {
		root = mkPair(t, a, value.SmallInt(int64(i)), root)
	}
	capBefore := a.Cap()
	a.Compact([]*value.Value{&root}, 0)
	if a.Cap() < capBefore && a.Cap() != a.ActiveLen() {
		t.Fatalf("cap shrank unexpectedly: before=%d after=%d", capBefore, a.Cap())
	}
}
