package engine

import "vex/internal/value"

// Seal/unseal: a sealed value keeps the arena representation of its
// payload but tags it with a discriminator name, so code without the
// matching unwrap_seal call can't observe or manipulate the payload's
// shape. Small names starting with ':' that fit seven bytes are folded
// directly into the header word (no allocation beyond the wrapper
// cell); anything else gets a full SEAL object carrying the name
// out-of-line.

// WrapSeal validates name as a token and wraps the top value:
// e -> (Sealed<name>(v), e) where v was the prior top value.
func (c *Context) WrapSeal(name string) error {
	if c.HasError() {
		return c.err
	}
	if !isValidTokenName(name) {
		return c.typeErr("wrap_seal", "not a valid token name")
	}
	v, tail, ok := c.pair(c.val)
	if !ok {
		return c.typeErr("wrap_seal", "expected (v, e)")
	}
	if len(name) > 0 && name[0] == ':' && len(name) <= value.SealSmallMaxLen {
		if err := c.reserve(2, &v, &tail); err != nil {
			return err
		}
		off := c.Arena.AllocR(2)
		c.Arena.WriteWord(off, value.HeaderWord(value.OtagSealSm, packSealSmBytes(name)))
		c.Arena.WriteValue(off+8, v)
		sealed := value.TaggedOffset(off, value.TagO)
		c.Arena.WriteValue(c.val.Offset(), sealed)
		return nil
	}

	nameWords := wordsForLen(len(name))
	if err := c.reserve(uint64(2+nameWords), &v, &tail); err != nil {
		return err
	}
	off := c.Arena.AllocR(uint64(2 + nameWords))
	c.Arena.WriteWord(off, value.HeaderWord(value.OtagSeal, uint64(len(name))))
	c.Arena.WriteValue(off+8, v)
	c.Arena.WriteBytes(off+16, []byte(name))
	sealed := value.TaggedOffset(off, value.TagO)
	c.Arena.WriteValue(c.val.Offset(), sealed)
	return nil
}

// UnwrapSeal pops a sealed value, replacing it with its payload:
// (Sealed<name>(v), e) -> (v, e), returning name.
func (c *Context) UnwrapSeal() (string, error) {
	if c.HasError() {
		return "", c.err
	}
	sealed, _, ok := c.pair(c.val)
	if !ok || sealed.Tag() != value.TagO {
		return "", c.typeErr("unwrap_seal", "expected (sealed-v, e)")
	}
	off := sealed.Offset()
	header := c.Arena.ReadWord(off)
	otag, fields := value.SplitHeaderWord(header)

	switch otag {
	case value.OtagSealSm:
		name := unpackSealSmBytes(fields)
		inner := c.Arena.ReadValue(off + 8)
		c.Arena.WriteValue(c.val.Offset(), inner)
		return name, nil
	case value.OtagSeal:
		nameLen := fields
		name := string(c.Arena.ReadBytes(off+16, nameLen))
		inner := c.Arena.ReadValue(off + 8)
		c.Arena.WriteValue(c.val.Offset(), inner)
		return name, nil
	default:
		return "", c.typeErr("unwrap_seal", "value is not sealed")
	}
}

func packSealSmBytes(name string) uint64 {
	var f uint64
	for i := 0; i < len(name) && i < value.SealSmallMaxLen; i++ {
		f |= uint64(name[i]) << (8 * i)
	}
	return f
}

func unpackSealSmBytes(fields uint64) string {
	buf := make([]byte, 0, value.SealSmallMaxLen)
	for i := 0; i < value.SealSmallMaxLen; i++ {
		b := byte(fields >> (8 * i))
		if b == 0 {
			break
		}
		buf = append(buf, b)
	}
	return string(buf)
}

// isValidTokenName implements the token character class: non-empty,
// under MaxTokenLen, excluding '{', '}', '\n', and control codes.
func isValidTokenName(name string) bool {
	if len(name) == 0 || len(name) >= value.MaxTokenLen {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isTokenChar(name[i]) {
			return false
		}
	}
	return true
}

func isTokenChar(b byte) bool {
	if b == '{' || b == '}' || b == '\n' {
		return false
	}
	return b >= 0x20 && b < 0x7F
}
