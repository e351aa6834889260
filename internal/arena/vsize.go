package arena

import "vex/internal/value"

// Vsize walks the same shapes Compact's copier does and reports the
// exact number of bytes a copy of v would allocate, without allocating
// anything. Reserve callers use this to size their request precisely;
// AllocR's caller-reserved-exact-size contract depends on this
// matching copyOne/copyObject's actual allocation byte-for-byte.
func (a *Arena) Vsize(v value.Value) uint64 {
	if !needsRelocation(v) {
		return 0
	}
	var total uint64
	stack := []value.Value{v}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch cur.Tag() {
		case value.TagP, value.TagPL, value.TagPR:
			off := cur.Offset()
			total += 2 * wordSize
			stack = pushIfPointer(stack, a.ReadValue(off))
			stack = pushIfPointer(stack, a.ReadValue(off+8))

		case value.TagO:
			off := cur.Offset()
			header := a.ReadWord(off)
			otag, fields := value.SplitHeaderWord(header)
			switch otag {
			case value.OtagDeepsum, value.OtagSealSm,
				value.OtagBlock, value.OtagOpval,
				value.OtagTrash, value.OtagPend, value.OtagUtf8:
				total += 2 * wordSize
				stack = pushIfPointer(stack, a.ReadValue(off+8))

			case value.OtagSeal:
				nameWords := wordsFor(fields)
				total += (2 + nameWords) * wordSize
				stack = pushIfPointer(stack, a.ReadValue(off+8))

			case value.OtagOptok:
				nameWords := wordsFor(fields)
				total += (1 + nameWords) * wordSize

			case value.OtagBinary:
				size := a.ReadWord(off + 16)
				total += (4 + wordsFor(size)) * wordSize
				stack = pushIfPointer(stack, a.ReadValue(off+8))

			case value.OtagArray:
				elemct := a.ReadWord(off + 16)
				bufPtr := a.ReadWord(off + 24)
				total += (4 + elemct) * wordSize
				stack = pushIfPointer(stack, a.ReadValue(off+8))
				for i := uint64(0); i < elemct; i++ {
					stack = pushIfPointer(stack, a.ReadValue(bufPtr+i*8))
				}

			default:
				panic("arena: unknown otag during vsize; corrupt arena")
			}
		}
	}
	return total
}

func pushIfPointer(stack []value.Value, v value.Value) []value.Value {
	if needsRelocation(v) {
		return append(stack, v)
	}
	return stack
}
