package engine

import (
	"testing"

	"vex/internal/arena"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	return New(64, arena.Options{})
}

func TestIntDivFlooredQuotientOnTop(t *testing.T) {
	// intro_istr("0"); intro_istr("-11"); intro_istr("3"); int_div;
	// peek_istr; wswap; peek_istr yields quotient "-4" first, remainder
	// "1" second -- i.e. quotient ends up on top of the stack.
	c := newTestContext(t)
	if err := c.IntroIstr("0"); err != nil {
		t.Fatalf("intro 0: %v", err)
	}
	if err := c.IntroIstr("-11"); err != nil {
		t.Fatalf("intro -11: %v", err)
	}
	if err := c.IntroIstr("3"); err != nil {
		t.Fatalf("intro 3: %v", err)
	}
	if err := c.IntDiv(); err != nil {
		t.Fatalf("int_div: %v", err)
	}
	q, err := c.PeekIstr()
	if err != nil {
		t.Fatalf("peek quotient: %v", err)
	}
	if q != "-4" {
		t.Fatalf("quotient = %q, want -4", q)
	}
	if err := c.Wswap(); err != nil {
		t.Fatalf("wswap: %v", err)
	}
	r, err := c.PeekIstr()
	if err != nil {
		t.Fatalf("peek remainder: %v", err)
	}
	if r != "1" {
		t.Fatalf("remainder = %q, want 1", r)
	}
}

func TestIntAddOverflowLatchesImpl(t *testing.T) {
	c := newTestContext(t)
	if err := c.IntroI64(1 << 59); err != nil {
		t.Fatalf("intro: %v", err)
	}
	if err := c.IntroI64(1 << 59); err != nil {
		t.Fatalf("intro: %v", err)
	}
	if err := c.IntAdd(); err == nil {
		t.Fatalf("expected overflow error from int_add")
	}
	code, _ := c.Error()
	if code != IMPL {
		t.Fatalf("code = %v, want IMPL", code)
	}
}

func TestIntCmpOrdering(t *testing.T) {
	cases := []struct {
		a, b int64
	}{
		{1, 2},
		{2, 2},
		{3, 2},
	}
	for _, tc := range cases {
		c := newTestContext(t)
		if err := c.IntroI64(tc.a); err != nil {
			t.Fatalf("intro a: %v", err)
		}
		if err := c.IntroI64(tc.b); err != nil {
			t.Fatalf("intro b: %v", err)
		}
		if err := c.IntCmp(); err != nil {
			t.Fatalf("int_cmp: %v", err)
		}
	}
}
