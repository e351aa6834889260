package engine

import "vex/internal/value"

// Copy and drop: both scan the value for the union of AFFINE/RELEVANT
// flags carried by every block reachable from it, with an
// OPVAL(LAZYKF) wrapper hiding its inner substructure from that scan.
// Copy performs the physical duplication and only then checks the
// aggregated ss, so the substructure violation is reported after the
// copy has already happened. Drop has no physical action beyond
// unlinking the reference, so the ordering is unobservable, but is
// kept the same way.

// Copy: (v, e) -> (v, (v', e)) where v' is a deep structural copy of v.
// Fails with ETYPE, after copying, if v contains an AFFINE block.
func (c *Context) Copy() error {
	if c.HasError() {
		return c.err
	}
	head, tail, ok := c.pair(c.val)
	if !ok {
		return c.typeErr("copy", "expected (v, e)")
	}
	sizeWords := c.Arena.Vsize(head) / 8
	if err := c.reserve(sizeWords+1+2, &head, &tail); err != nil {
		return err
	}
	copied, ss, err := c.deepCopy(head)
	if err != nil {
		return err
	}
	innerOff := c.Arena.AllocR(2)
	c.Arena.WriteValue(innerOff, copied)
	c.Arena.WriteValue(innerOff+8, tail)
	c.Arena.WriteValue(c.val.Offset()+8, value.TaggedOffset(innerOff, value.TagP))
	if !ss.Copyable() {
		return c.typeErr("copy", "value contains a non-copyable (AFFINE) block")
	}
	return nil
}

// Drop: (v, e) -> e. Fails with ETYPE if v contains a RELEVANT block.
func (c *Context) Drop() error {
	if c.HasError() {
		return c.err
	}
	head, tail, ok := c.pair(c.val)
	if !ok {
		return c.typeErr("drop", "expected (v, e)")
	}
	ss := c.scanSs(head)
	c.val = tail
	if !ss.Droppable() {
		return c.typeErr("drop", "value contains a non-droppable (RELEVANT) block")
	}
	return nil
}

func needsCopyRelocation(v value.Value) bool {
	switch v.Tag() {
	case value.TagP, value.TagPL, value.TagPR, value.TagO:
		return true
	default:
		return false
	}
}

// dupCopier drives Copy's iterative, allocation-based structural
// duplication within a single already-reserved arena budget, using an
// explicit worklist rather than recursion for the same reason Arena's
// own compacting copier does.
type dupCopier struct {
	c    *Context
	work []dupJob
	ss   value.Ss
}

type dupJob struct {
	src    value.Value
	dstOff uint64
	hidden bool
}

func (d *dupCopier) enqueue(val value.Value, dstOff uint64, hidden bool) {
	if needsCopyRelocation(val) {
		d.work = append(d.work, dupJob{val, dstOff, hidden})
		return
	}
	d.c.Arena.WriteValue(dstOff, val)
}

func (d *dupCopier) drain() error {
	for len(d.work) > 0 {
		job := d.work[len(d.work)-1]
		d.work = d.work[:len(d.work)-1]
		newVal := d.copyOne(job.src, job.hidden)
		d.c.Arena.WriteValue(job.dstOff, newVal)
	}
	return nil
}

func (d *dupCopier) copyOne(v value.Value, hidden bool) value.Value {
	switch v.Tag() {
	case value.TagP, value.TagPL, value.TagPR:
		a := d.c.Arena
		oldOff := v.Offset()
		head := a.ReadValue(oldOff)
		tail := a.ReadValue(oldOff + 8)
		newOff := a.AllocR(2)
		d.enqueue(head, newOff, hidden)
		d.enqueue(tail, newOff+8, hidden)
		return value.TaggedOffset(newOff, v.Tag())
	case value.TagO:
		return d.copyObject(v, hidden)
	default:
		return v
	}
}

func (d *dupCopier) copyObject(v value.Value, hidden bool) value.Value {
	a := d.c.Arena
	oldOff := v.Offset()
	header := a.ReadWord(oldOff)
	otag, fields := value.SplitHeaderWord(header)

	switch otag {
	case value.OtagDeepsum, value.OtagSealSm, value.OtagTrash, value.OtagPend, value.OtagUtf8:
		inner := a.ReadValue(oldOff + 8)
		newOff := a.AllocR(2)
		a.WriteWord(newOff, header)
		d.enqueue(inner, newOff+8, hidden)
		return value.TaggedOffset(newOff, value.TagO)

	case value.OtagBlock:
		if !hidden {
			d.ss = d.ss.Union(value.BlockFlag(fields))
		}
		inner := a.ReadValue(oldOff + 8)
		newOff := a.AllocR(2)
		a.WriteWord(newOff, header)
		d.enqueue(inner, newOff+8, hidden)
		return value.TaggedOffset(newOff, value.TagO)

	case value.OtagOpval:
		childHidden := hidden || value.BlockFlag(fields)&value.OpvalLazyKF != 0
		inner := a.ReadValue(oldOff + 8)
		newOff := a.AllocR(2)
		a.WriteWord(newOff, header)
		d.enqueue(inner, newOff+8, childHidden)
		return value.TaggedOffset(newOff, value.TagO)

	case value.OtagSeal:
		nameLen := fields
		nameWords := wordsForLen(int(nameLen))
		inner := a.ReadValue(oldOff + 8)
		nameBytes := a.ReadBytes(oldOff+16, nameLen)
		newOff := a.AllocR(uint64(2 + nameWords))
		a.WriteWord(newOff, header)
		d.enqueue(inner, newOff+8, hidden)
		a.WriteBytes(newOff+16, nameBytes)
		return value.TaggedOffset(newOff, value.TagO)

	case value.OtagOptok:
		nameLen := fields
		nameWords := wordsForLen(int(nameLen))
		nameBytes := a.ReadBytes(oldOff+8, nameLen)
		newOff := a.AllocR(uint64(1 + nameWords))
		a.WriteWord(newOff, header)
		a.WriteBytes(newOff+8, nameBytes)
		return value.TaggedOffset(newOff, value.TagO)

	case value.OtagBinary:
		next := a.ReadValue(oldOff + 8)
		size := a.ReadWord(oldOff + 16)
		bufPtr := a.ReadWord(oldOff + 24)
		data := a.ReadBytes(bufPtr, size)
		dataWords := wordsForLen(int(size))
		newOff := a.AllocR(uint64(binaryHeaderWords) + uint64(dataWords))
		newBuf := newOff + uint64(binaryHeaderWords)*8
		a.WriteWord(newOff, header)
		d.enqueue(next, newOff+8, hidden)
		a.WriteWord(newOff+16, size)
		a.WriteWord(newOff+24, newBuf)
		a.WriteBytes(newBuf, data)
		return value.TaggedOffset(newOff, value.TagO)

	case value.OtagArray:
		next := a.ReadValue(oldOff + 8)
		elemct := a.ReadWord(oldOff + 16)
		bufPtr := a.ReadWord(oldOff + 24)
		newOff := a.AllocR(uint64(arrayHeaderWords) + elemct)
		newBuf := newOff + uint64(arrayHeaderWords)*8
		a.WriteWord(newOff, header)
		d.enqueue(next, newOff+8, hidden)
		a.WriteWord(newOff+16, elemct)
		a.WriteWord(newOff+24, newBuf)
		for i := uint64(0); i < elemct; i++ {
			elem := a.ReadValue(bufPtr + i*8)
			d.enqueue(elem, newBuf+i*8, hidden)
		}
		return value.TaggedOffset(newOff, value.TagO)

	default:
		panic("engine: unknown otag during copy; corrupt arena")
	}
}

// deepCopy structurally duplicates v within the already-reserved budget
// (see Copy), returning the copy and the aggregated substructural
// summary.
func (c *Context) deepCopy(v value.Value) (value.Value, value.Ss, error) {
	if !needsCopyRelocation(v) {
		return v, value.Ss(0), nil
	}
	slot := c.Arena.AllocR(1)
	d := &dupCopier{c: c}
	d.enqueue(v, slot, false)
	if err := d.drain(); err != nil {
		return 0, d.ss, err
	}
	return c.Arena.ReadValue(slot), d.ss, nil
}

// scanSs walks v without allocating, aggregating the same ss Copy would
// compute, for Drop's read-only check.
func (c *Context) scanSs(v value.Value) value.Ss {
	type frame struct {
		v      value.Value
		hidden bool
	}
	stack := []frame{{v, false}}
	var ss value.Ss
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch f.v.Tag() {
		case value.TagP, value.TagPL, value.TagPR:
			off := f.v.Offset()
			head := c.Arena.ReadValue(off)
			tail := c.Arena.ReadValue(off + 8)
			stack = append(stack, frame{head, f.hidden}, frame{tail, f.hidden})

		case value.TagO:
			off := f.v.Offset()
			header := c.Arena.ReadWord(off)
			otag, fields := value.SplitHeaderWord(header)
			switch otag {
			case value.OtagBlock:
				if !f.hidden {
					ss = ss.Union(value.BlockFlag(fields))
				}
				inner := c.Arena.ReadValue(off + 8)
				stack = append(stack, frame{inner, f.hidden})

			case value.OtagOpval:
				childHidden := f.hidden || value.BlockFlag(fields)&value.OpvalLazyKF != 0
				inner := c.Arena.ReadValue(off + 8)
				stack = append(stack, frame{inner, childHidden})

			case value.OtagDeepsum, value.OtagSealSm, value.OtagTrash, value.OtagPend, value.OtagUtf8, value.OtagSeal:
				inner := c.Arena.ReadValue(off + 8)
				stack = append(stack, frame{inner, f.hidden})

			case value.OtagBinary:
				next := c.Arena.ReadValue(off + 8)
				stack = append(stack, frame{next, f.hidden})

			case value.OtagArray:
				next := c.Arena.ReadValue(off + 8)
				elemct := c.Arena.ReadWord(off + 16)
				bufPtr := c.Arena.ReadWord(off + 24)
				stack = append(stack, frame{next, f.hidden})
				for i := uint64(0); i < elemct; i++ {
					elem := c.Arena.ReadValue(bufPtr + i*8)
					stack = append(stack, frame{elem, f.hidden})
				}

			case value.OtagOptok:
				// leaf: a name buffer, no nested substructure.
			}
		}
	}
	return ss
}
