package engine

// sum-of-products primitives: the dual of the product-algebra family
// in primitives_product.go, built directly on top of wrapSum/unwrapSum
// rather than by hand-rolled header surgery, since a sum in general
// may be DEEPSUM-packed and not a single shallow tag bit.

// WrapSumL: e -> (L(e)), i.e. wrap the top value as the left choice of
// an unconstrained sum.
func (c *Context) WrapSumL() error {
	if c.HasError() {
		return c.err
	}
	v, err := c.wrapSum(c.val, true)
	if err != nil {
		return err
	}
	c.val = v
	return nil
}

// WrapSumR: e -> (R(e)).
func (c *Context) WrapSumR() error {
	if c.HasError() {
		return c.err
	}
	v, err := c.wrapSum(c.val, false)
	if err != nil {
		return err
	}
	c.val = v
	return nil
}

// UnwrapSumAssertL strips a sum wrapper off the top value, failing with
// ETYPE if the value turns out to carry the right choice. This is the
// 'C' ASCII-op semantics: "V"/"C" introduce/assert the left case of an
// otherwise unconstrained sum.
func (c *Context) UnwrapSumAssertL() error {
	if c.HasError() {
		return c.err
	}
	v, left, err := c.unwrapSum(c.val)
	if err != nil {
		c.Latch(err.(*EngineError))
		return err
	}
	if !left {
		return c.typeErr("unwrap_sum", "expected the left case")
	}
	c.val = v
	return nil
}

// SumAssocl: ((a + (b + c)) -> ((a + b) + c)).
func (c *Context) SumAssocl() error {
	if c.HasError() {
		return c.err
	}
	s, outerLeft, err := c.unwrapSum(c.val)
	if err != nil {
		c.Latch(err.(*EngineError))
		return err
	}
	if outerLeft {
		// a -> Left(Left(a))
		v, err := c.wrapSum(s, true, &s)
		if err != nil {
			return err
		}
		v, err = c.wrapSum(v, true)
		if err != nil {
			return err
		}
		c.val = v
		return nil
	}
	// (b+c): b -> Left(Right(b)), c -> Right(c)
	inner, innerLeft, err := c.unwrapSum(s)
	if err != nil {
		c.Latch(err.(*EngineError))
		return err
	}
	if innerLeft {
		v, err := c.wrapSum(inner, false, &inner)
		if err != nil {
			return err
		}
		v, err = c.wrapSum(v, true)
		if err != nil {
			return err
		}
		c.val = v
		return nil
	}
	v, err := c.wrapSum(inner, false)
	if err != nil {
		return err
	}
	c.val = v
	return nil
}

// SumAssocr: ((a + b) + c) -> (a + (b + c)). Inverse of SumAssocl.
func (c *Context) SumAssocr() error {
	if c.HasError() {
		return c.err
	}
	s, outerLeft, err := c.unwrapSum(c.val)
	if err != nil {
		c.Latch(err.(*EngineError))
		return err
	}
	if !outerLeft {
		v, err := c.wrapSum(s, false, &s)
		if err != nil {
			return err
		}
		v, err = c.wrapSum(v, false)
		if err != nil {
			return err
		}
		c.val = v
		return nil
	}
	inner, innerLeft, err := c.unwrapSum(s)
	if err != nil {
		c.Latch(err.(*EngineError))
		return err
	}
	if !innerLeft {
		// b -> Right(Left(b))
		v, err := c.wrapSum(inner, true, &inner)
		if err != nil {
			return err
		}
		v, err = c.wrapSum(v, false)
		if err != nil {
			return err
		}
		c.val = v
		return nil
	}
	v, err := c.wrapSum(inner, true)
	if err != nil {
		return err
	}
	c.val = v
	return nil
}

// SumWswap: (a + (b + c)) -> (b + (a + c)).
func (c *Context) SumWswap() error {
	if c.HasError() {
		return c.err
	}
	s, outerLeft, err := c.unwrapSum(c.val)
	if err != nil {
		c.Latch(err.(*EngineError))
		return err
	}
	if outerLeft {
		// a -> Right(Left(a))
		v, err := c.wrapSum(s, true, &s)
		if err != nil {
			return err
		}
		v, err = c.wrapSum(v, false)
		if err != nil {
			return err
		}
		c.val = v
		return nil
	}
	inner, innerLeft, err := c.unwrapSum(s)
	if err != nil {
		c.Latch(err.(*EngineError))
		return err
	}
	if innerLeft {
		// b -> Left(b)
		v, err := c.wrapSum(inner, true)
		if err != nil {
			return err
		}
		c.val = v
		return nil
	}
	// c -> Right(Right(c))
	v, err := c.wrapSum(inner, false, &inner)
	if err != nil {
		return err
	}
	v, err = c.wrapSum(v, false)
	if err != nil {
		return err
	}
	c.val = v
	return nil
}

// SumZswap: (a + (b + (c + d))) -> (a + (c + (b + d))).
func (c *Context) SumZswap() error {
	if c.HasError() {
		return c.err
	}
	s, outerLeft, err := c.unwrapSum(c.val)
	if err != nil {
		c.Latch(err.(*EngineError))
		return err
	}
	if outerLeft {
		v, err := c.wrapSum(s, true)
		if err != nil {
			return err
		}
		c.val = v
		return nil
	}
	// tail = b + (c + d); apply Wswap's logic to the tail, then
	// re-wrap Right.
	savedVal := c.val
	c.val = s
	if err := c.SumWswap(); err != nil {
		c.val = savedVal
		return err
	}
	v, err := c.wrapSum(c.val, false)
	if err != nil {
		return err
	}
	c.val = v
	return nil
}

// SumSwap: (a + b) -> (b + a).
func (c *Context) SumSwap() error {
	if c.HasError() {
		return c.err
	}
	s, left, err := c.unwrapSum(c.val)
	if err != nil {
		c.Latch(err.(*EngineError))
		return err
	}
	v, werr := c.wrapSum(s, !left)
	if werr != nil {
		return werr
	}
	c.val = v
	return nil
}

// SumDistrib: (a * (b + c)) -> ((a*b) + (a*c)).
func (c *Context) SumDistrib() error {
	if c.HasError() {
		return c.err
	}
	a, bc, ok := c.pair(c.val)
	if !ok {
		return c.typeErr("sum_distrib", "expected (a, (b+c))")
	}
	s, left, err := c.unwrapSum(bc)
	if err != nil {
		c.Latch(err.(*EngineError))
		return err
	}
	pair, perr := c.allocPair(a, s)
	if perr != nil {
		return perr
	}
	v, werr := c.wrapSum(pair, left)
	if werr != nil {
		return werr
	}
	c.val = v
	return nil
}

// SumFactor: ((a*b) + (a*c)) -> (a * (b+c)). Inverse of SumDistrib;
// requires both branches to share the same a (not separately checked:
// factor is only well-typed when the caller already knows the branches
// agree).
func (c *Context) SumFactor() error {
	if c.HasError() {
		return c.err
	}
	branch, left, err := c.unwrapSum(c.val)
	if err != nil {
		c.Latch(err.(*EngineError))
		return err
	}
	a, bOrC, ok := c.pair(branch)
	if !ok {
		return c.typeErr("sum_factor", "expected ((a*b)+(a*c))")
	}
	wrapped, werr := c.wrapSum(bOrC, left, &a)
	if werr != nil {
		return werr
	}
	v, perr := c.allocPair(a, wrapped)
	if perr != nil {
		return perr
	}
	c.val = v
	return nil
}
