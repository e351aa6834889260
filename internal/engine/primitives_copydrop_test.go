package engine

import "testing"

func TestCopyDuplicatesStructureIndependently(t *testing.T) {
	c := newTestContext(t)
	if err := c.IntroI64(9); err != nil {
		t.Fatalf("intro: %v", err)
	}
	if err := c.Copy(); err != nil {
		t.Fatalf("copy: %v", err)
	}
	orig, rest, ok := c.pair(c.val)
	if !ok {
		t.Fatalf("expected (v, (v', e))")
	}
	copyV, _, ok2 := c.pair(rest)
	if !ok2 {
		t.Fatalf("expected (v, (v', e))")
	}
	if orig.Int() != 9 || copyV.Int() != 9 {
		t.Fatalf("copy changed the value: orig=%v copy=%v", orig, copyV)
	}
}

func TestCopyRejectsAffineBlock(t *testing.T) {
	c := newTestContext(t)
	if err := c.IntroI64(1); err != nil {
		t.Fatalf("intro: %v", err)
	}
	if err := c.Quote(); err != nil {
		t.Fatalf("quote: %v", err)
	}
	if err := c.MarkAffine(); err != nil {
		t.Fatalf("mark affine: %v", err)
	}
	if err := c.Copy(); err == nil {
		t.Fatalf("expected copy of an affine block to fail")
	}
	code, _ := c.Error()
	if code != ETYPE {
		t.Fatalf("code = %v, want ETYPE", code)
	}
}

func TestDropRejectsRelevantBlock(t *testing.T) {
	c := newTestContext(t)
	if err := c.IntroI64(1); err != nil {
		t.Fatalf("intro: %v", err)
	}
	if err := c.Quote(); err != nil {
		t.Fatalf("quote: %v", err)
	}
	if err := c.MarkRelevant(); err != nil {
		t.Fatalf("mark relevant: %v", err)
	}
	if err := c.Drop(); err == nil {
		t.Fatalf("expected drop of a relevant block to fail")
	}
	code, _ := c.Error()
	if code != ETYPE {
		t.Fatalf("code = %v, want ETYPE", code)
	}
}

func TestDropOrdinaryValueSucceeds(t *testing.T) {
	c := newTestContext(t)
	if err := c.IntroI64(1); err != nil {
		t.Fatalf("intro: %v", err)
	}
	if err := c.IntroI64(2); err != nil {
		t.Fatalf("intro: %v", err)
	}
	if err := c.Drop(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	head, _, ok := c.pair(c.val)
	if !ok || head.Int() != 1 {
		t.Fatalf("expected (I(1), e) remaining after drop, got %v", c.val)
	}
}

func TestWrapSealSmallRoundTrip(t *testing.T) {
	c := newTestContext(t)
	if err := c.IntroI64(77); err != nil {
		t.Fatalf("intro: %v", err)
	}
	if err := c.WrapSeal(":foo"); err != nil {
		t.Fatalf("wrap_seal: %v", err)
	}
	name, err := c.UnwrapSeal()
	if err != nil {
		t.Fatalf("unwrap_seal: %v", err)
	}
	if name != ":foo" {
		t.Fatalf("name = %q, want :foo", name)
	}
	head, _, ok := c.pair(c.val)
	if !ok || head.Int() != 77 {
		t.Fatalf("expected (I(77), e) after unseal, got %v", c.val)
	}
}

func TestWrapSealLargeRoundTrip(t *testing.T) {
	c := newTestContext(t)
	if err := c.IntroI64(5); err != nil {
		t.Fatalf("intro: %v", err)
	}
	longName := "a-much-longer-seal-name-than-one-word"
	if err := c.WrapSeal(longName); err != nil {
		t.Fatalf("wrap_seal: %v", err)
	}
	name, err := c.UnwrapSeal()
	if err != nil {
		t.Fatalf("unwrap_seal: %v", err)
	}
	if name != longName {
		t.Fatalf("name = %q, want %q", name, longName)
	}
}

func TestWrapSealRejectsInvalidTokenChars(t *testing.T) {
	c := newTestContext(t)
	if err := c.IntroI64(5); err != nil {
		t.Fatalf("intro: %v", err)
	}
	if err := c.WrapSeal("has\nnewline"); err == nil {
		t.Fatalf("expected seal with a newline to be rejected")
	}
}
