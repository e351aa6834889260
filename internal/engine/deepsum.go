package engine

import "vex/internal/value"

// DEEPSUM path packing. A DEEPSUM header packs "[tag|path<<8, inner]",
// with every 2 bits of path encoding an L or R step, up to W-8 such
// steps per cell. original_source's wikrt.c header (wikrt.h) wasn't
// retrieved, so the exact bit split is an implementation decision: the
// top 6 bits of the 56-bit field word hold a step count, the low 50
// bits hold the path itself, most-recently-wrapped step in the lowest
// two bits (a LIFO bit stack, so unwrap always peels the most recent
// wrap first). That leaves room for deepsumMaxSteps (25) steps per
// cell; a further wrap allocates a new DEEPSUM wrapper.
const (
	deepsumCountBits = 6
	deepsumPathBits  = 56 - deepsumCountBits
	deepsumMaxSteps  = deepsumPathBits / 2
)

func deepsumEncode(count int, path uint64) uint64 {
	mask := uint64(1)<<deepsumPathBits - 1
	return (uint64(count) << deepsumPathBits) | (path & mask)
}

func deepsumDecode(fields uint64) (count int, path uint64) {
	mask := uint64(1)<<deepsumPathBits - 1
	return int(fields >> deepsumPathBits), fields & mask
}

func sideCode(left bool) uint64 {
	if left {
		return 0
	}
	return 1
}

// wrapSum implements wrap_sum(L|R): fold a sum wrapper onto v, reusing
// the shallow PL/PR/UL/UR tag arithmetic when v is U or P tagged,
// appending two path bits in place when v is already a DEEPSUM with
// room, and otherwise allocating a fresh DEEPSUM wrapper. protect roots
// any temporaries the caller still needs relocated if the allocation
// triggers a compaction.
func (c *Context) wrapSum(v value.Value, left bool, protect ...*value.Value) (value.Value, error) {
	if shallow, ok := v.WrapSumShallow(left); ok {
		return shallow, nil
	}

	if v.Tag() == value.TagO {
		off := v.Offset()
		header := c.Arena.ReadWord(off)
		otag, fields := value.SplitHeaderWord(header)
		if otag == value.OtagDeepsum {
			count, path := deepsumDecode(fields)
			if count < deepsumMaxSteps {
				newFields := deepsumEncode(count+1, (path<<2)|sideCode(left))
				c.Arena.WriteWord(off, value.HeaderWord(value.OtagDeepsum, newFields))
				return v, nil
			}
		}
	}

	// Fresh DEEPSUM wrapper: [otag|path, inner].
	tmp := v
	roots := append([]*value.Value{&tmp}, protect...)
	if err := c.reserve(2, roots...); err != nil {
		return 0, err
	}
	off := c.Arena.AllocR(2)
	fields := deepsumEncode(1, sideCode(left))
	c.Arena.WriteWord(off, value.HeaderWord(value.OtagDeepsum, fields))
	c.Arena.WriteValue(off+8, tmp)
	return value.TaggedOffset(off, value.TagO), nil
}

// unwrapSum implements unwrap_sum: the exact inverse of wrapSum, plus
// the ARRAY/BINARY/UTF8 lazy-expansion path that pulls a head out of
// the chunk and synthesizes a PL cell. protect is forwarded to
// expandListHead, so callers holding roots outside val/pc/cc (the
// parser, mainly) stay valid across the expansion's allocation.
func (c *Context) unwrapSum(v value.Value, protect ...*value.Value) (unwrapped value.Value, left bool, err error) {
	if u, l, ok := v.UnwrapSumShallow(); ok {
		return u, l, nil
	}

	if v.Tag() != value.TagO {
		return 0, false, NewTypeError("unwrap_sum", "value carries no sum wrapper")
	}

	off := v.Offset()
	header := c.Arena.ReadWord(off)
	otag, fields := value.SplitHeaderWord(header)

	switch otag {
	case value.OtagDeepsum:
		count, path := deepsumDecode(fields)
		code := path & 0x3
		left = code == 0
		count--
		path >>= 2
		if count == 0 {
			return c.Arena.ReadValue(off + 8), left, nil
		}
		c.Arena.WriteWord(off, value.HeaderWord(value.OtagDeepsum, deepsumEncode(count, path)))
		return v, left, nil

	case value.OtagBinary, value.OtagArray, value.OtagUtf8:
		cons, err := c.expandListHead(v, protect...)
		if err != nil {
			return 0, false, err
		}
		return c.unwrapSum(cons, protect...)

	default:
		return 0, false, NewTypeError("unwrap_sum", "value carries no sum wrapper")
	}
}
