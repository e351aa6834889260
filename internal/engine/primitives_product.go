package engine

import "vex/internal/value"

// IntroUnit pushes a fresh unit: e -> (unit, e). [alloc]
func (c *Context) IntroUnit() error {
	if c.HasError() {
		return c.err
	}
	v, err := c.allocPair(value.Unit, c.val)
	if err != nil {
		return err
	}
	c.val = v
	return nil
}

// ElimUnit removes a leading unit: (unit, e) -> e.
func (c *Context) ElimUnit() error {
	if c.HasError() {
		return c.err
	}
	head, tail, ok := c.pair(c.val)
	if !ok || head != value.Unit {
		e := NewTypeError("elim_unit", "expected (unit, e)")
		c.Latch(e)
		return e
	}
	c.val = tail
	return nil
}

// Assocl: (a, (b, c)) -> ((a, b), c). Re-threads the two involved
// cells' head/tail fields in place; no allocation.
func (c *Context) Assocl() error {
	if c.HasError() {
		return c.err
	}
	a, rest, ok := c.pair(c.val)
	if !ok {
		return c.typeErr("assocl", "expected (a, (b, c))")
	}
	b, cc, ok2 := c.pair(rest)
	if !ok2 {
		return c.typeErr("assocl", "expected (a, (b, c))")
	}
	outerOff := c.val.Offset()
	innerOff := rest.Offset()
	c.writePairAt(innerOff, a, b)                                // (a,b)
	c.writePairAt(outerOff, value.TaggedOffset(innerOff, value.TagP), cc) // ((a,b), c)
	c.val = value.TaggedOffset(outerOff, value.TagP)
	return nil
}

// Assocr: ((a, b), c) -> (a, (b, c)). Inverse of Assocl, same
// constant-time cell reuse.
func (c *Context) Assocr() error {
	if c.HasError() {
		return c.err
	}
	ab, cc, ok := c.pair(c.val)
	if !ok {
		return c.typeErr("assocr", "expected ((a, b), c)")
	}
	a, b, ok2 := c.pair(ab)
	if !ok2 {
		return c.typeErr("assocr", "expected ((a, b), c)")
	}
	outerOff := c.val.Offset()
	innerOff := ab.Offset()
	c.writePairAt(innerOff, b, cc)                                // (b,c)
	c.writePairAt(outerOff, a, value.TaggedOffset(innerOff, value.TagP)) // (a,(b,c))
	c.val = value.TaggedOffset(outerOff, value.TagP)
	return nil
}

// Wswap: (a, (b, c)) -> (b, (a, c)).
func (c *Context) Wswap() error {
	if c.HasError() {
		return c.err
	}
	a, rest, ok := c.pair(c.val)
	if !ok {
		return c.typeErr("wswap", "expected (a, (b, c))")
	}
	b, cc, ok2 := c.pair(rest)
	if !ok2 {
		return c.typeErr("wswap", "expected (a, (b, c))")
	}
	outerOff := c.val.Offset()
	innerOff := rest.Offset()
	c.writePairAt(innerOff, a, cc)                                // (a,c)
	c.writePairAt(outerOff, b, value.TaggedOffset(innerOff, value.TagP)) // (b,(a,c))
	c.val = value.TaggedOffset(outerOff, value.TagP)
	return nil
}

// Zswap: (a, (b, (c, d))) -> (a, (c, (b, d))).
func (c *Context) Zswap() error {
	if c.HasError() {
		return c.err
	}
	a, rest1, ok := c.pair(c.val)
	if !ok {
		return c.typeErr("zswap", "expected (a, (b, (c, d)))")
	}
	b, rest2, ok2 := c.pair(rest1)
	if !ok2 {
		return c.typeErr("zswap", "expected (a, (b, (c, d)))")
	}
	cv, d, ok3 := c.pair(rest2)
	if !ok3 {
		return c.typeErr("zswap", "expected (a, (b, (c, d)))")
	}
	off1 := c.val.Offset()
	off2 := rest1.Offset()
	off3 := rest2.Offset()
	_ = a
	c.writePairAt(off3, b, d)                                     // (b,d)
	c.writePairAt(off2, cv, value.TaggedOffset(off3, value.TagP)) // (c,(b,d))
	// off1 already holds (a, P@off2); its tail tag/offset are unchanged.
	c.val = value.TaggedOffset(off1, value.TagP)
	return nil
}

// Swap: (a, b) -> (b, a).
func (c *Context) Swap() error {
	if c.HasError() {
		return c.err
	}
	a, b, ok := c.pair(c.val)
	if !ok {
		return c.typeErr("swap", "expected (a, b)")
	}
	off := c.val.Offset()
	c.writePairAt(off, b, a)
	c.val = value.TaggedOffset(off, value.TagP)
	return nil
}

func (c *Context) typeErr(op, msg string) error {
	e := NewTypeError(op, msg)
	c.Latch(e)
	return e
}
