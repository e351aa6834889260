package engine

import "vex/internal/value"

// opInline is an internal sentinel op code used only by compose's
// unsafe-flag rewrite (block_quote_inline_attrib); it is never produced
// by the parser and never appears in the public ASCII op table, since
// "inline a quoted block" has no single-letter surface syntax in this
// op set the way plain quote ('\'') and compose ('o') do. Parsed
// primitive ops are packed as value.SmallInt of their ASCII code
// (0-127), so a negative sentinel can never collide with one.
const opInline = -1

// smallFnLimit bounds how many cons hops compose will walk down a
// block's ops list looking for its UR terminator before giving up and
// falling back to a quote-and-inline rewrite.
const smallFnLimit = 15

// Quote: (v, e) -> (block, e) where block contains a single
// OPVAL(LAZYKF) op wrapping v. Fuses the BLOCK header, the one-element
// ops-list cons cell, and the OPVAL header into a single three-cell
// allocation, reusing the existing top pair cell for the result.
func (c *Context) Quote() error {
	if c.HasError() {
		return c.err
	}
	v, tail, ok := c.pair(c.val)
	if !ok {
		return c.typeErr("quote", "expected (v, e)")
	}
	block, err := c.buildQuoteBlock(v, &tail)
	if err != nil {
		return err
	}
	c.Arena.WriteValue(c.val.Offset(), block)
	return nil
}

// buildQuoteBlock allocates `[v]`: a BLOCK with ss=0 whose sole op is
// OPVAL(LAZYKF) wrapping v.
func (c *Context) buildQuoteBlock(v value.Value, protect ...*value.Value) (value.Value, error) {
	roots := append([]*value.Value{&v}, protect...)
	if err := c.reserve(6, roots...); err != nil {
		return 0, err
	}
	off := c.Arena.AllocR(6)
	blockOff, consOff, opvalOff := off, off+16, off+32

	c.Arena.WriteWord(opvalOff, value.HeaderWord(value.OtagOpval, uint64(value.OpvalLazyKF)))
	c.Arena.WriteValue(opvalOff+8, v)

	c.Arena.WriteValue(consOff, value.TaggedOffset(opvalOff, value.TagO))
	c.Arena.WriteValue(consOff+8, value.UnitR)

	c.Arena.WriteWord(blockOff, value.HeaderWord(value.OtagBlock, 0))
	c.Arena.WriteValue(blockOff+8, value.TaggedOffset(consOff, value.TagPL))

	return value.TaggedOffset(blockOff, value.TagO), nil
}

func readBlock(c *Context, v value.Value) (opsList value.Value, flags value.BlockFlag, ok bool) {
	if v.Tag() != value.TagO {
		return 0, 0, false
	}
	off := v.Offset()
	header := c.Arena.ReadWord(off)
	otag, fields := value.SplitHeaderWord(header)
	if otag != value.OtagBlock {
		return 0, 0, false
	}
	return c.Arena.ReadValue(off + 8), value.BlockFlag(fields), true
}

// blockQuoteInlineAttrib rewrites an unsafe block b as `[[b] inline]`:
// a fresh, flag-free BLOCK whose two ops are the quote block
// buildQuoteBlock makes of b (a BLOCK holding one OPVAL(LAZYKF) that
// wraps b) and the internal inline sentinel, so compose never has to
// splice through a block carrying LAZY/FORK.
func (c *Context) blockQuoteInlineAttrib(b value.Value) (value.Value, error) {
	quoted, err := c.buildQuoteBlock(b)
	if err != nil {
		return 0, err
	}
	if err := c.reserve(6, &quoted); err != nil {
		return 0, err
	}
	off := c.Arena.AllocR(6)
	blockOff, cons1Off, cons2Off := off, off+16, off+32

	c.Arena.WriteValue(cons2Off, value.SmallInt(opInline))
	c.Arena.WriteValue(cons2Off+8, value.UnitR)

	c.Arena.WriteValue(cons1Off, value.TaggedOffset(quoted.Offset(), value.TagO))
	c.Arena.WriteValue(cons1Off+8, value.TaggedOffset(cons2Off, value.TagPL))

	c.Arena.WriteWord(blockOff, value.HeaderWord(value.OtagBlock, 0))
	c.Arena.WriteValue(blockOff+8, value.TaggedOffset(cons1Off, value.TagPL))
	return value.TaggedOffset(blockOff, value.TagO), nil
}

// findOpsTerminator walks an ops-list spine looking for its UR
// terminator, returning the offset of the last cons cell visited (so
// the caller can splice in place) and ok=false if the list is empty or
// the walk exceeds smallFnLimit hops.
func (c *Context) findOpsTerminator(opsList value.Value) (lastConsOff uint64, ok bool) {
	cur := opsList
	hops := 0
	lastOff := uint64(0)
	hadCons := false
	for {
		if cur == value.UnitR {
			return lastOff, hadCons
		}
		if cur.Tag() != value.TagPL {
			return 0, false
		}
		if hops >= smallFnLimit {
			return 0, false
		}
		off := cur.Offset()
		lastOff = off
		hadCons = true
		cur = c.Arena.ReadValue(off + 8)
		hops++
	}
}

// Compose concatenates two blocks [a->b] and [b->c] into [a->c]. Both
// operands are rewritten identically when they carry an unsafe
// (LAZY/FORK) flag, before either's ops list is spliced or folded into
// resultFlags, so neither side's substructure attributes can leak past
// compose without the quote-and-inline indirection that hides them.
func (c *Context) Compose() error {
	if c.HasError() {
		return c.err
	}
	left, rest, ok := c.pair(c.val)
	if !ok {
		return c.typeErr("compose", "expected (left, (right, e))")
	}
	right, tail, ok2 := c.pair(rest)
	if !ok2 {
		return c.typeErr("compose", "expected (left, (right, e))")
	}

	leftOps, leftFlags, ok3 := readBlock(c, left)
	if !ok3 {
		return c.typeErr("compose", "left operand is not a block")
	}
	rightOps, rightFlags, ok4 := readBlock(c, right)
	if !ok4 {
		return c.typeErr("compose", "right operand is not a block")
	}

	if leftFlags.HasUnsafeFlag() {
		rewritten, err := c.blockQuoteInlineAttrib(left)
		if err != nil {
			return err
		}
		left = rewritten
		leftOps, leftFlags, _ = readBlock(c, left)
	}

	if rightFlags.HasUnsafeFlag() {
		rewritten, err := c.blockQuoteInlineAttrib(right)
		if err != nil {
			return err
		}
		right = rewritten
		rightOps, rightFlags, _ = readBlock(c, right)
	}

	lastOff, hasCons := c.findOpsTerminator(leftOps)
	if hasCons {
		// Splice right's ops list in place of the UR terminator.
		c.Arena.WriteValue(lastOff+8, rightOps)
	} else if leftOps == value.UnitR {
		leftOps = rightOps
	} else {
		// Spine exceeds SMALL_FN_LIMIT: fall back to a quote-and-inline
		// rewrite of the left operand, then retry the splice (now on a
		// two-op spine that is always within the hop limit).
		rewritten, err := c.blockQuoteInlineAttrib(left)
		if err != nil {
			return err
		}
		left = rewritten
		leftOps, leftFlags, _ = readBlock(c, left)
		lastOff, hasCons = c.findOpsTerminator(leftOps)
		if !hasCons {
			return c.typeErr("compose", "left operand spine still exceeds limit after rewrite")
		}
		c.Arena.WriteValue(lastOff+8, rightOps)
	}

	resultFlags := leftFlags | rightFlags
	if err := c.reserve(2, &tail); err != nil {
		return err
	}
	off := c.Arena.AllocR(2)
	c.Arena.WriteWord(off, value.HeaderWord(value.OtagBlock, uint64(resultFlags)))
	c.Arena.WriteValue(off+8, leftOps)
	result := value.TaggedOffset(off, value.TagO)

	v, err := c.allocPair(result, tail)
	if err != nil {
		return err
	}
	c.val = v
	return nil
}

// setBlockFlag implements 'k' (relevant) and 'f' (affine): tag the top
// block with an additional substructural flag, in place.
func (c *Context) setBlockFlag(op string, flag value.BlockFlag) error {
	if c.HasError() {
		return c.err
	}
	block, tail, ok := c.pair(c.val)
	if !ok {
		return c.typeErr(op, "expected (block, e)")
	}
	_, _, isBlock := readBlock(c, block)
	if !isBlock {
		return c.typeErr(op, "expected a block")
	}
	off := block.Offset()
	header := c.Arena.ReadWord(off)
	otag, fields := value.SplitHeaderWord(header)
	c.Arena.WriteWord(off, value.HeaderWord(otag, fields|uint64(flag)))
	_ = tail
	return nil
}

// MarkRelevant is the 'k' op: the top block may no longer be dropped.
func (c *Context) MarkRelevant() error { return c.setBlockFlag("relevant", value.FlagRelevant) }

// MarkAffine is the 'f' op: the top block may no longer be copied.
func (c *Context) MarkAffine() error { return c.setBlockFlag("affine", value.FlagAffine) }

// Trash: (v, e) -> (Trash, e). Scans v's substructure the same way
// Copy/Drop do; the resulting TRASH object's flags record whatever ss
// was observed, with no special zero-allocation singleton for the
// zero-flags case, since every tag bit pattern is already claimed by
// value.Tag (see DESIGN.md).
func (c *Context) Trash() error {
	if c.HasError() {
		return c.err
	}
	head, tail, ok := c.pair(c.val)
	if !ok {
		return c.typeErr("trash", "expected (v, e)")
	}
	ss := c.scanSs(head)
	if err := c.reserve(2, &tail); err != nil {
		return err
	}
	off := c.Arena.AllocR(2)
	c.Arena.WriteWord(off, value.HeaderWord(value.OtagTrash, uint64(ss)))
	c.Arena.WriteValue(off+8, value.Unit)
	trashVal := value.TaggedOffset(off, value.TagO)
	v, err := c.allocPair(trashVal, tail)
	if err != nil {
		return err
	}
	c.val = v
	return nil
}
