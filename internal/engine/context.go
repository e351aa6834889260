// Package engine is the glue and L3 algebraic-primitive layer: it owns
// the Context (arena + root registers + sticky error register + stats)
// and every product/sum/integer/copy/drop/seal/quote/compose/trash
// primitive the runtime exposes.
package engine

import (
	"vex/internal/arena"
	"vex/internal/value"
)

// Context owns one arena and its root registers. pc and cc are
// reserved for the evaluator (out of scope for this core) but are
// carried as arena-resident roots so a future evaluator layer can
// read/write them through Compact the same way val already is.
type Context struct {
	Arena *arena.Arena

	val value.Value
	pc  value.Value
	cc  value.Value

	// txn is the opaque root for the external persistent key-value
	// store's transaction state. The core never inspects it; it only
	// carries it across Reset and exposes it for an external
	// collaborator (internal/txnstore) to bind against.
	txn interface{}

	code Code
	err  error
}

// New creates a context with an arena sized to hold at least cellCount
// cells per semi-space.
func New(cellCount int, opts arena.Options) *Context {
	c := &Context{Arena: arena.New(cellCount, opts)}
	c.val = value.Unit
	c.pc = value.Unit
	c.cc = value.Unit
	return c
}

// Reset clears the sticky error register and reinitializes the root
// registers to the empty stack. A latched context otherwise no-ops
// every operation until Reset is called.
func (c *Context) Reset() {
	c.code = OK
	c.err = nil
	c.val = value.Unit
	c.pc = value.Unit
	c.cc = value.Unit
}

// Val returns the current value register (the public value stack).
func (c *Context) Val() value.Value { return c.val }

// SetVal directly overwrites the value register. Exported for tests;
// internal/vparser's parser keeps its own working state in a plain Go
// struct instead of the value register, and roots it explicitly
// through the engine calls it drives (see ConsOp and friends in
// parser_support.go).
func (c *Context) SetVal(v value.Value) { c.val = v }

// BindTxn attaches the opaque external transaction root. See
// internal/txnstore.
func (c *Context) BindTxn(txn interface{}) { c.txn = txn }

// Txn returns the currently bound opaque transaction root, or nil.
func (c *Context) Txn() interface{} { return c.txn }

// roots returns the arena-resident root pointers that Compact must
// relocate. txn is deliberately excluded: it is external state, not an
// arena value.
func (c *Context) roots() []*value.Value {
	return []*value.Value{&c.val, &c.pc, &c.cc}
}

// Error returns the sticky error code and, if any, the detail error.
func (c *Context) Error() (Code, error) { return c.code, c.err }

// HasError reports whether the context is latched into an error state.
func (c *Context) HasError() bool { return c.code != OK }

// Latch sets the sticky error register if it is not already set. Once
// latched, primitives become no-ops until Reset.
func (c *Context) Latch(err *EngineError) {
	if c.code != OK {
		return
	}
	c.code = err.Code
	c.err = err
}

// reserve ensures nWords words are available, rooting val/pc/cc plus any
// extra temporaries the caller is holding onto outside those registers
// (e.g. a pair's head/tail before it has been linked into val). On
// failure it latches CXFULL and returns an error.
func (c *Context) reserve(nWords uint64, extra ...*value.Value) error {
	roots := append(c.roots(), extra...)
	if err := c.Arena.Reserve(nWords, roots); err != nil {
		e := NewError(CXFULL, "reserve", "arena exhausted after compaction")
		c.Latch(e)
		return e
	}
	return nil
}

// pair reads v as a strict product cell: tag must be exactly P, not a
// sum-wrapped PL/PR (those are sums, not products, and a product
// primitive applied to one is a type error).
func (c *Context) pair(v value.Value) (head, tail value.Value, ok bool) {
	if v.Tag() != value.TagP {
		return 0, 0, false
	}
	off := v.Offset()
	return c.Arena.ReadValue(off), c.Arena.ReadValue(off + 8), true
}

func (c *Context) writePairAt(off uint64, head, tail value.Value) {
	c.Arena.WriteValue(off, head)
	c.Arena.WriteValue(off+8, tail)
}

// allocPair allocates a brand new product cell. Used only where a
// primitive is explicitly allowed to allocate; everywhere else the
// associator/swap family reuses the cells already in hand (see
// primitives_product.go).
func (c *Context) allocPair(head, tail value.Value) (value.Value, error) {
	if err := c.reserve(2, &head, &tail); err != nil {
		return 0, err
	}
	off := c.Arena.AllocR(2)
	c.writePairAt(off, head, tail)
	return value.TaggedOffset(off, value.TagP), nil
}
