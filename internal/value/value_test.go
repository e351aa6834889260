package value

import "testing"

func TestTagAdjacency(t *testing.T) {
	if TagPL != TagP+1 || TagPR != TagP+2 {
		t.Fatalf("PL/PR adjacency broken: P=%d PL=%d PR=%d", TagP, TagPL, TagPR)
	}
	if TagUL != TagU+1 || TagUR != TagU+2 {
		t.Fatalf("UL/UR adjacency broken: U=%d UL=%d UR=%d", TagU, TagUL, TagUR)
	}
}

func TestWrapUnwrapSumShallowRoundTrip(t *testing.T) {
	p := TaggedOffset(0x40, TagP)
	for _, left := range []bool{true, false} {
		wrapped, ok := p.WrapSumShallow(left)
		if !ok {
			t.Fatalf("WrapSumShallow(%v) failed on pair", left)
		}
		unwrapped, gotLeft, ok := wrapped.UnwrapSumShallow()
		if !ok {
			t.Fatalf("UnwrapSumShallow failed on %v", wrapped)
		}
		if gotLeft != left {
			t.Fatalf("side mismatch: want %v got %v", left, gotLeft)
		}
		if unwrapped != p {
			t.Fatalf("round trip mismatch: want %v got %v", p, unwrapped)
		}
	}

	for _, left := range []bool{true, false} {
		wrapped, ok := Unit.WrapSumShallow(left)
		if !ok {
			t.Fatalf("WrapSumShallow(%v) failed on unit", left)
		}
		unwrapped, gotLeft, ok := wrapped.UnwrapSumShallow()
		if !ok || gotLeft != left || unwrapped != Unit {
			t.Fatalf("unit round trip failed: wrapped=%v unwrapped=%v left=%v ok=%v", wrapped, unwrapped, gotLeft, ok)
		}
	}
}

func TestSmallIntRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 42, -42, SmallIntMax, SmallIntMin}
	for _, n := range cases {
		v := SmallInt(n)
		if v.Tag() != TagI {
			t.Fatalf("SmallInt(%d) tag = %v, want I", n, v.Tag())
		}
		if got := v.Int(); got != n {
			t.Fatalf("SmallInt(%d) round trip = %d", n, got)
		}
	}
}

func TestOffsetPreservesTag(t *testing.T) {
	v := TaggedOffset(0x100, TagO)
	if v.Offset() != 0x100 {
		t.Fatalf("offset = %#x, want 0x100", v.Offset())
	}
	v2 := v.WithOffset(0x200)
	if v2.Tag() != TagO || v2.Offset() != 0x200 {
		t.Fatalf("WithOffset broke tag/offset: %v", v2)
	}
}

func TestHeaderWordRoundTrip(t *testing.T) {
	w := HeaderWord(OtagBlock, uint64(FlagAffine|FlagRelevant))
	tag, fields := SplitHeaderWord(w)
	if tag != OtagBlock {
		t.Fatalf("tag = %v, want BLOCK", tag)
	}
	if BlockFlag(fields) != FlagAffine|FlagRelevant {
		t.Fatalf("fields = %v", fields)
	}
}

func TestSsUnion(t *testing.T) {
	var s Ss
	s = s.Union(FlagAffine)
	if s.Copyable() {
		t.Fatalf("expected non-copyable after AFFINE union")
	}
	if !s.Droppable() {
		t.Fatalf("expected droppable, RELEVANT never unioned")
	}
	s = s.Union(FlagRelevant)
	if s.Droppable() {
		t.Fatalf("expected non-droppable after RELEVANT union")
	}
}

func TestHasUnsafeFlag(t *testing.T) {
	if (FlagAffine | FlagRelevant).HasUnsafeFlag() {
		t.Fatalf("safe flags flagged as unsafe")
	}
	if !FlagLazy.HasUnsafeFlag() {
		t.Fatalf("LAZY should be unsafe")
	}
	if !FlagFork.HasUnsafeFlag() {
		t.Fatalf("FORK should be unsafe")
	}
}
