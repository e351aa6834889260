package arena

import (
	"encoding/binary"

	"vex/internal/value"
)

// copier drives the iterative semi-space copy. It holds an explicit
// worklist (a reusable scratch vector) rather than recursing, since a
// deeply nested list spine would otherwise blow the Go call stack.
type copier struct {
	dst  *Arena
	work []copyJob
}

// copyJob asks the copier to copy job.src (read from what is now the
// scratch space, i.e. pre-compaction active memory) and write the
// resulting relocated Value into the new active space at job.dstOff.
type copyJob struct {
	src    value.Value
	dstOff uint64
}

// copyRoot copies a whole root value (and everything reachable from it)
// into the new active space, returning its new, relocated Value. The
// root itself is copied directly (it has no slot in the arena to be
// written into), so the copy allocates exactly what Vsize reports.
func (c *copier) copyRoot(v value.Value) value.Value {
	if !needsRelocation(v) {
		return v
	}
	newVal := c.copyOne(v)
	c.drain()
	return newVal
}

func needsRelocation(v value.Value) bool {
	switch v.Tag() {
	case value.TagP, value.TagPL, value.TagPR, value.TagO:
		return true
	default:
		return false
	}
}

// enqueue schedules val to be copied into dstOff if it needs relocation,
// or writes it immediately if it is a self-contained tag (U/UL/UR/I).
func (c *copier) enqueue(val value.Value, dstOff uint64) {
	if needsRelocation(val) {
		c.work = append(c.work, copyJob{src: val, dstOff: dstOff})
		return
	}
	c.dst.WriteValue(dstOff, val)
}

func (c *copier) drain() {
	for len(c.work) > 0 {
		job := c.work[len(c.work)-1]
		c.work = c.work[:len(c.work)-1]
		newVal := c.copyOne(job.src)
		c.dst.WriteValue(job.dstOff, newVal)
	}
}

// copyOne relocates a single pointer-tagged value (a pair cell or a
// boxed object), queuing any nested pointer fields it contains, and
// returns the new tagged Value referring into the fresh active space.
func (c *copier) copyOne(v value.Value) value.Value {
	switch v.Tag() {
	case value.TagP, value.TagPL, value.TagPR:
		oldOff := v.Offset()
		head := c.dst.readValueScratch(oldOff)
		tail := c.dst.readValueScratch(oldOff + 8)
		newOff := c.dst.AllocR(2)
		c.enqueue(head, newOff)
		c.enqueue(tail, newOff+8)
		return value.TaggedOffset(newOff, v.Tag())
	case value.TagO:
		return c.copyObject(v)
	default:
		return v
	}
}

// readValueScratch / readWordScratch / readBytesScratch read from what
// is, mid-compaction, the scratch space (the pre-compaction active
// memory holding the values still being relocated).
func (a *Arena) readValueScratch(off uint64) value.Value {
	return value.Value(a.readWordScratch(off))
}

func (a *Arena) readWordScratch(off uint64) uint64 {
	return binary.LittleEndian.Uint64(a.scratch[off : off+wordSize])
}

func (a *Arena) readBytesScratch(off, n uint64) []byte {
	return a.scratch[off : off+n]
}

func (c *copier) copyObject(v value.Value) value.Value {
	oldOff := v.Offset()
	header := c.dst.readWordScratch(oldOff)
	otag, fields := value.SplitHeaderWord(header)

	switch otag {
	case value.OtagDeepsum, value.OtagSealSm:
		inner := c.dst.readValueScratch(oldOff + 8)
		newOff := c.dst.AllocR(2)
		c.dst.WriteWord(newOff, header)
		c.enqueue(inner, newOff+8)
		return value.TaggedOffset(newOff, value.TagO)

	case value.OtagBlock, value.OtagOpval, value.OtagTrash, value.OtagPend:
		inner := c.dst.readValueScratch(oldOff + 8)
		newOff := c.dst.AllocR(2)
		c.dst.WriteWord(newOff, header)
		c.enqueue(inner, newOff+8)
		return value.TaggedOffset(newOff, value.TagO)

	case value.OtagUtf8:
		underlying := c.dst.readValueScratch(oldOff + 8)
		newOff := c.dst.AllocR(2)
		c.dst.WriteWord(newOff, header)
		c.enqueue(underlying, newOff+8)
		return value.TaggedOffset(newOff, value.TagO)

	case value.OtagSeal:
		nameLen := fields
		nameWords := wordsFor(nameLen)
		inner := c.dst.readValueScratch(oldOff + 8)
		nameBytes := c.dst.readBytesScratch(oldOff+16, nameLen)
		newOff := c.dst.AllocR(2 + nameWords)
		c.dst.WriteWord(newOff, header)
		c.enqueue(inner, newOff+8)
		c.dst.WriteBytes(newOff+16, nameBytes)
		return value.TaggedOffset(newOff, value.TagO)

	case value.OtagOptok:
		nameLen := fields
		nameWords := wordsFor(nameLen)
		nameBytes := c.dst.readBytesScratch(oldOff+8, nameLen)
		newOff := c.dst.AllocR(1 + nameWords)
		c.dst.WriteWord(newOff, header)
		c.dst.WriteBytes(newOff+8, nameBytes)
		return value.TaggedOffset(newOff, value.TagO)

	case value.OtagBinary:
		next := c.dst.readValueScratch(oldOff + 8)
		size := c.dst.readWordScratch(oldOff + 16)
		bufPtr := c.dst.readWordScratch(oldOff + 24)
		data := c.dst.readBytesScratch(bufPtr, size)
		dataWords := wordsFor(size)
		newOff := c.dst.AllocR(4 + dataWords)
		newBuf := newOff + 32
		c.dst.WriteWord(newOff, header)
		c.enqueue(next, newOff+8)
		c.dst.WriteWord(newOff+16, size)
		c.dst.WriteWord(newOff+24, newBuf)
		c.dst.WriteBytes(newBuf, data)
		return value.TaggedOffset(newOff, value.TagO)

	case value.OtagArray:
		next := c.dst.readValueScratch(oldOff + 8)
		elemct := c.dst.readWordScratch(oldOff + 16)
		bufPtr := c.dst.readWordScratch(oldOff + 24)
		newOff := c.dst.AllocR(4 + elemct)
		newBuf := newOff + 32
		c.dst.WriteWord(newOff, header)
		c.enqueue(next, newOff+8)
		c.dst.WriteWord(newOff+16, elemct)
		c.dst.WriteWord(newOff+24, newBuf)
		for i := uint64(0); i < elemct; i++ {
			elem := c.dst.readValueScratch(bufPtr + i*8)
			c.enqueue(elem, newBuf+i*8)
		}
		return value.TaggedOffset(newOff, value.TagO)

	default:
		panic("arena: unknown otag during compaction; corrupt arena")
	}
}
