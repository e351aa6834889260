package engine

import (
	"math"
	"strconv"

	"vex/internal/value"
)

// integer primitives: arithmetic is checked against the 60-bit
// small-int range and against genuine machine overflow, surfacing IMPL
// (not a silent wraparound) when a result can't be represented, and
// EDIV0 on division by zero. Bignum integers beyond the small-int
// range are out of scope; IMPL is the documented stand-in for "would
// need a bignum representation this core doesn't have."

// IntroI64 pushes e -> (I(n), e).
func (c *Context) IntroI64(n int64) error {
	if c.HasError() {
		return c.err
	}
	if n < value.SmallIntMin || n > value.SmallIntMax {
		return c.typeErr("intro_i64", "integer literal out of small-int range")
	}
	v, err := c.allocPair(value.SmallInt(n), c.val)
	if err != nil {
		return err
	}
	c.val = v
	return nil
}

// IntroI32 pushes a 32-bit literal; every int32 fits the 60-bit
// small-int range, so this is IntroI64 with a narrower input type.
func (c *Context) IntroI32(n int32) error {
	return c.IntroI64(int64(n))
}

// PeekI32 reads the top integer, failing with IMPL if it doesn't fit a
// 32-bit signed value.
func (c *Context) PeekI32() (int32, error) {
	n, err := c.PeekI64()
	if err != nil {
		return 0, err
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		e := NewError(IMPL, "peek_i32", "value does not fit in 32 bits")
		c.Latch(e)
		return 0, e
	}
	return int32(n), nil
}

// IntroIstr parses a decimal string (optionally signed, at most 19
// characters including the sign) and pushes it as an integer; values
// outside the small-int range are rejected by IntroI64.
func (c *Context) IntroIstr(s string) error {
	if c.HasError() {
		return c.err
	}
	if len(s) == 0 || len(s) > 19 {
		return c.typeErr("intro_istr", "integer literal must be 1-19 characters")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return c.typeErr("intro_istr", "malformed decimal integer literal")
	}
	return c.IntroI64(n)
}

// PeekI64 reads the top value as an integer without popping it.
func (c *Context) PeekI64() (int64, error) {
	if c.HasError() {
		return 0, c.err
	}
	head, _, ok := c.pair(c.val)
	if !ok || !head.IsSmallInt() {
		return 0, c.typeErr("peek_i64", "expected (I(n), e)")
	}
	return head.Int(), nil
}

// PeekIstr renders the top integer as a decimal string without popping
// it.
func (c *Context) PeekIstr() (string, error) {
	n, err := c.PeekI64()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n, 10), nil
}

func (c *Context) popTwoInts(op string) (a, b int64, tail value.Value, ok bool) {
	x, rest, ok1 := c.pair(c.val)
	if !ok1 || !x.IsSmallInt() {
		c.typeErr(op, "expected (I(a), (I(b), e))")
		return 0, 0, 0, false
	}
	y, tail2, ok2 := c.pair(rest)
	if !ok2 || !y.IsSmallInt() {
		c.typeErr(op, "expected (I(a), (I(b), e))")
		return 0, 0, 0, false
	}
	return x.Int(), y.Int(), tail2, true
}

func (c *Context) pushInt(n int64, tail value.Value) error {
	if n < value.SmallIntMin || n > value.SmallIntMax {
		e := NewError(IMPL, "int-arith", "result exceeds small-int range; bignums not implemented")
		c.Latch(e)
		return e
	}
	v, err := c.allocPair(value.SmallInt(n), tail)
	if err != nil {
		return err
	}
	c.val = v
	return nil
}

// IntAdd: (I(a), (I(b), e)) -> (I(a+b), e).
func (c *Context) IntAdd() error {
	if c.HasError() {
		return c.err
	}
	a, b, tail, ok := c.popTwoInts("int_add")
	if !ok {
		return c.err
	}
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		e := NewError(IMPL, "int_add", "integer overflow")
		c.Latch(e)
		return e
	}
	return c.pushInt(sum, tail)
}

// IntMul: (I(a), (I(b), e)) -> (I(a*b), e).
func (c *Context) IntMul() error {
	if c.HasError() {
		return c.err
	}
	a, b, tail, ok := c.popTwoInts("int_mul")
	if !ok {
		return c.err
	}
	if a != 0 && b != 0 {
		prod := a * b
		if prod/b != a || (a == -1 && b == math.MinInt64) {
			e := NewError(IMPL, "int_mul", "integer overflow")
			c.Latch(e)
			return e
		}
		return c.pushInt(prod, tail)
	}
	return c.pushInt(0, tail)
}

// IntNeg: (I(a), e) -> (I(-a), e). Negation never overflows the
// small-int range, since it is symmetric around zero (SmallIntMin ==
// -SmallIntMax).
func (c *Context) IntNeg() error {
	if c.HasError() {
		return c.err
	}
	head, tail, ok := c.pair(c.val)
	if !ok || !head.IsSmallInt() {
		return c.typeErr("int_neg", "expected (I(a), e)")
	}
	return c.pushInt(-head.Int(), tail)
}

// IntDiv: (I(divisor), (I(dividend), e)) -> (I(quotient), (I(remainder), e)),
// using floored division: remainder always has the same sign as the
// divisor.
func (c *Context) IntDiv() error {
	if c.HasError() {
		return c.err
	}
	divisor, dividend, tail, ok := c.popTwoInts("int_div")
	if !ok {
		return c.err
	}
	if divisor == 0 {
		e := NewError(EDIV0, "int_div", "division by zero")
		c.Latch(e)
		return e
	}
	q := dividend / divisor
	r := dividend % divisor
	if r != 0 && (r < 0) != (divisor < 0) {
		q--
		r += divisor
	}
	rv, err := c.allocPair(value.SmallInt(r), tail)
	if err != nil {
		return err
	}
	v, err := c.allocPair(value.SmallInt(q), rv)
	if err != nil {
		return err
	}
	c.val = v
	return nil
}

// IntCmp compares the top two integers, replacing them with a sum tag:
// Left(Left(unit)) if a < b, Left(Right(unit)) if a == b, Right(unit)
// if a > b, leaving the continuation untouched underneath. Returning
// an order tag rather than a machine-int difference avoids a spurious
// overflow on the classic a-b comparison trick.
func (c *Context) IntCmp() error {
	if c.HasError() {
		return c.err
	}
	a, b, tail, ok := c.popTwoInts("int_cmp")
	if !ok {
		return c.err
	}
	var order value.Value
	var err error
	switch {
	case a < b:
		order, err = c.wrapSum(value.Unit, true)
		if err == nil {
			order, err = c.wrapSum(order, true)
		}
	case a == b:
		order, err = c.wrapSum(value.Unit, false)
		if err == nil {
			order, err = c.wrapSum(order, true)
		}
	default:
		order, err = c.wrapSum(value.Unit, false)
	}
	if err != nil {
		return err
	}
	v, perr := c.allocPair(order, tail)
	if perr != nil {
		return perr
	}
	c.val = v
	return nil
}
