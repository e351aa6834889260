package engine

import "vex/internal/value"

// Parser support: the streaming parser is written in terms of the
// engine's own primitives, but a handful of moves it needs — consing an
// arbitrary op onto a reverse ops-list, wrapping that list as a BLOCK,
// wrapping a value as a standalone OPVAL, wrapping a token name as an
// OPTOK — have no single-ASCII-letter primitive of their own. They live
// here, exported for internal/vparser, rather than in primitives_*.go,
// since program text never spells them directly.
//
// Every allocating call below takes a variadic protect list. The
// parser's working state (its current ops list, its stack of suspended
// outer ops lists, its in-progress text chunks) lives in plain Go
// fields that the context's own val/pc/cc roots don't know about, so
// the parser passes pointers to all of it on every call here; anything
// left unprotected would be stranded at a stale offset by a compaction
// triggered mid-parse.

// ConsOp allocates a single PL-tagged list cell (op, tail): the same
// shape buildQuoteBlock uses for a one-element ops-list, generalized to
// an arbitrary head/tail.
func (c *Context) ConsOp(op, tail value.Value, protect ...*value.Value) (value.Value, error) {
	roots := append([]*value.Value{&op, &tail}, protect...)
	if err := c.reserve(2, roots...); err != nil {
		return 0, err
	}
	off := c.Arena.AllocR(2)
	c.Arena.WriteValue(off, op)
	c.Arena.WriteValue(off+8, tail)
	return value.TaggedOffset(off, value.TagPL), nil
}

// ReverseConsList reverses a PL/UR op list in place (pointer-swap, no
// allocation), the same trick ReverseBinaryChunks uses for BINARY
// chains. Used both when a block literal closes (`]`) and at top-level
// parse acceptance.
func (c *Context) ReverseConsList(v value.Value) value.Value {
	prev := value.UnitR
	cur := v
	for cur.Tag() == value.TagPL {
		off := cur.Offset()
		tail := c.Arena.ReadValue(off + 8)
		c.Arena.WriteValue(off+8, prev)
		prev = cur
		cur = tail
	}
	return prev
}

// WrapBlock builds a standalone BLOCK object around an already-built
// (and already-reversed) ops list.
func (c *Context) WrapBlock(opsList value.Value, flags value.BlockFlag, protect ...*value.Value) (value.Value, error) {
	roots := append([]*value.Value{&opsList}, protect...)
	if err := c.reserve(2, roots...); err != nil {
		return 0, err
	}
	off := c.Arena.AllocR(2)
	c.Arena.WriteWord(off, value.HeaderWord(value.OtagBlock, uint64(flags)))
	c.Arena.WriteValue(off+8, opsList)
	return value.TaggedOffset(off, value.TagO), nil
}

// WrapOpval builds a standalone OPVAL object wrapping v, optionally
// marked LAZYKF (the parser marks every block- and text-literal op
// LAZYKF, so a partially evaluated literal never drags its contents'
// substructure onto the enclosing block).
func (c *Context) WrapOpval(v value.Value, lazy bool, protect ...*value.Value) (value.Value, error) {
	roots := append([]*value.Value{&v}, protect...)
	if err := c.reserve(2, roots...); err != nil {
		return 0, err
	}
	var flags value.BlockFlag
	if lazy {
		flags = value.OpvalLazyKF
	}
	off := c.Arena.AllocR(2)
	c.Arena.WriteWord(off, value.HeaderWord(value.OtagOpval, uint64(flags)))
	c.Arena.WriteValue(off+8, v)
	return value.TaggedOffset(off, value.TagO), nil
}

// WrapOptok builds an OPTOK object (a `{token}` op) carrying name's raw
// bytes, with no inner value.
func (c *Context) WrapOptok(name string, protect ...*value.Value) (value.Value, error) {
	nameWords := wordsForLen(len(name))
	if err := c.reserve(uint64(1+nameWords), protect...); err != nil {
		return 0, err
	}
	off := c.Arena.AllocR(uint64(1 + nameWords))
	c.Arena.WriteWord(off, value.HeaderWord(value.OtagOptok, uint64(len(name))))
	c.Arena.WriteBytes(off+8, []byte(name))
	return value.TaggedOffset(off, value.TagO), nil
}
