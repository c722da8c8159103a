package engine

import (
	"fmt"

	"github.com/slowtec/msr/msrerr"
	"github.com/slowtec/msr/value"
)

// Comparator is the operator of a Comparison leaf.
type Comparator int

const (
	Less Comparator = iota
	LessOrEqual
	Greater
	GreaterOrEqual
	Equal
	NotEqual
)

// Comparison compares two Sources (spec section 4.5, "Comparison
// semantics").
type Comparison struct {
	Left  Source
	Op    Comparator
	Right Source
}

// Cmp builds a Comparison leaf as a BoolExpr.
func Cmp(left Source, op Comparator, right Source) BoolExpr {
	return BoolExpr{Kind: ExprComparison, Comparison: Comparison{Left: left, Op: op, Right: right}}
}

// Eval resolves both sides against state and compares them.
func (c Comparison) Eval(state *SystemState) (bool, error) {
	left, err := c.Left.Resolve(state)
	if err != nil {
		return false, err
	}
	right, err := c.Right.Resolve(state)
	if err != nil {
		return false, err
	}
	return compareValues(c.Op, left, right)
}

// compareValues implements the type-pair table from spec section 4.5:
// bool/string/bytes support Equal/NotEqual only (same kind); decimals and
// integers (same kind) support ordered comparisons; a Duration and a Bool
// compare via "is expired" (zero duration == true); any other cross-type
// pairing is invalid.
func compareValues(op Comparator, left, right value.Value) (bool, error) {
	if left.Kind() == value.KindDuration && right.Kind() == value.KindBool {
		d, _ := left.Duration()
		b, _ := right.Bool()
		return compareDurationBool(op, d == 0, b)
	}
	if left.Kind() == value.KindBool && right.Kind() == value.KindDuration {
		b, _ := left.Bool()
		d, _ := right.Duration()
		return compareDurationBool(op, b, d == 0)
	}
	if left.Kind() != right.Kind() {
		return false, invalidInput("cross-type comparison between %s and %s", left.Kind(), right.Kind())
	}

	switch left.Kind() {
	case value.KindBool:
		a, _ := left.Bool()
		b, _ := right.Bool()
		return compareEqualityOnly(op, a == b, "bool")
	case value.KindString:
		a, _ := left.String()
		b, _ := right.String()
		return compareEqualityOnly(op, a == b, "string")
	case value.KindBytes:
		a, _ := left.Bytes()
		b, _ := right.Bytes()
		return compareEqualityOnly(op, bytesEqual(a, b), "bytes")
	case value.KindDuration:
		a, _ := left.Duration()
		b, _ := right.Duration()
		return compareOrdered(op, int64(a), int64(b))
	case value.KindFloat32, value.KindFloat64:
		a, _ := left.Float64()
		b, _ := right.Float64()
		return compareOrderedFloat(op, a, b)
	case value.KindInt8, value.KindInt16, value.KindInt32, value.KindInt64:
		a, _ := left.Int64()
		b, _ := right.Int64()
		return compareOrdered(op, a, b)
	case value.KindUint8, value.KindUint16, value.KindUint32, value.KindUint64:
		a, _ := left.Uint64()
		b, _ := right.Uint64()
		return compareOrderedUint(op, a, b)
	default:
		return false, invalidInput("uncomparable kind %s", left.Kind())
	}
}

func compareDurationBool(op Comparator, expiredLeft, expiredRight bool) (bool, error) {
	switch op {
	case Equal:
		return expiredLeft == expiredRight, nil
	case NotEqual:
		return expiredLeft != expiredRight, nil
	default:
		return false, invalidInput("a duration and a bool can only be compared with Equal/NotEqual")
	}
}

func compareEqualityOnly(op Comparator, eq bool, kind string) (bool, error) {
	switch op {
	case Equal:
		return eq, nil
	case NotEqual:
		return !eq, nil
	default:
		return false, invalidInput("%s values can only be compared with Equal/NotEqual", kind)
	}
}

func compareOrdered[T ~int64](op Comparator, a, b T) (bool, error) {
	switch op {
	case Less:
		return a < b, nil
	case LessOrEqual:
		return a <= b, nil
	case Greater:
		return a > b, nil
	case GreaterOrEqual:
		return a >= b, nil
	case Equal:
		return a == b, nil
	case NotEqual:
		return a != b, nil
	default:
		return false, invalidInput("unknown comparator")
	}
}

func compareOrderedUint(op Comparator, a, b uint64) (bool, error) {
	switch op {
	case Less:
		return a < b, nil
	case LessOrEqual:
		return a <= b, nil
	case Greater:
		return a > b, nil
	case GreaterOrEqual:
		return a >= b, nil
	case Equal:
		return a == b, nil
	case NotEqual:
		return a != b, nil
	default:
		return false, invalidInput("unknown comparator")
	}
}

func compareOrderedFloat(op Comparator, a, b float64) (bool, error) {
	switch op {
	case Less:
		return a < b, nil
	case LessOrEqual:
		return a <= b, nil
	case Greater:
		return a > b, nil
	case GreaterOrEqual:
		return a >= b, nil
	case Equal:
		return a == b, nil
	case NotEqual:
		return a != b, nil
	default:
		return false, invalidInput("unknown comparator")
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func invalidInput(format string, args ...any) error {
	return &msrerr.StateInvalidError{Message: fmt.Sprintf("engine: invalid comparison: "+format, args...)}
}

// BoolExprKind tags a BoolExpr node.
type BoolExprKind int

const (
	ExprTrue BoolExprKind = iota
	ExprFalse
	ExprNot
	ExprAnd
	ExprOr
	ExprComparison
)

// BoolExpr is a boolean expression tree over rule/transition conditions
// (spec section 4.5, step 4): And/Or/Not combinators, literal True/False,
// and a Comparison leaf.
type BoolExpr struct {
	Kind       BoolExprKind
	Comparison Comparison
	Operand    *BoolExpr
	Operands   []BoolExpr
}

// True is the literal true expression.
func True() BoolExpr { return BoolExpr{Kind: ExprTrue} }

// False is the literal false expression.
func False() BoolExpr { return BoolExpr{Kind: ExprFalse} }

// Not negates operand.
func Not(operand BoolExpr) BoolExpr { return BoolExpr{Kind: ExprNot, Operand: &operand} }

// And is the conjunction of operands (true on an empty list).
func And(operands ...BoolExpr) BoolExpr { return BoolExpr{Kind: ExprAnd, Operands: operands} }

// Or is the disjunction of operands (false on an empty list).
func Or(operands ...BoolExpr) BoolExpr { return BoolExpr{Kind: ExprOr, Operands: operands} }

// Eval evaluates the expression against state, short-circuiting And/Or and
// propagating the first error encountered in evaluation order.
func (e BoolExpr) Eval(state *SystemState) (bool, error) {
	switch e.Kind {
	case ExprTrue:
		return true, nil
	case ExprFalse:
		return false, nil
	case ExprComparison:
		return e.Comparison.Eval(state)
	case ExprNot:
		v, err := e.Operand.Eval(state)
		if err != nil {
			return false, err
		}
		return !v, nil
	case ExprAnd:
		for _, op := range e.Operands {
			v, err := op.Eval(state)
			if err != nil {
				return false, err
			}
			if !v {
				return false, nil
			}
		}
		return true, nil
	case ExprOr:
		for _, op := range e.Operands {
			v, err := op.Eval(state)
			if err != nil {
				return false, err
			}
			if v {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, &msrerr.StateInvalidError{Message: "engine: boolean expression has no kind"}
	}
}
