package dist

import "testing"

func TestCheckCyclical(t *testing.T) {
	a := NewUniform(0, 1)
	b := NewOperator(OpAdd, a, NewConstant(1.0)) // b depends on a

	if !CheckCyclical(a, b) {
		t.Error("b depends on a, conditioning a on b must be flagged")
	}
	if CheckCyclical(b, a) {
		t.Error("a has no path to b, conditioning b on a is safe")
	}
}

func TestCheckCyclicalDeep(t *testing.T) {
	a := NewUniform(0, 1)
	mid := NewAttribute(NewOperator(OpSub, NewConstant(1.0), a), "x")
	top := NewFunctionCall(FuncNormalizeAngle, mid)

	if !CheckCyclical(a, top) {
		t.Error("a is reachable through two decorator layers")
	}
	if CheckCyclical(top, a) {
		t.Error("a is a leaf, it cannot reach top")
	}
}

func TestCheckCyclicalThroughConditioning(t *testing.T) {
	a := NewUniform(0, 1)
	b := NewUniform(0, 1)
	if CheckCyclical(a, b) {
		t.Fatal("independent leaves should not be cyclical")
	}

	// Conditioning b onto an expression over a creates the path.
	b.ConditionTo(NewOperator(OpAdd, a, NewConstant(1.0)))
	if !CheckCyclical(a, b) {
		t.Error("conditioned value should be traversed when checking for cycles")
	}
}

func TestCheckCyclicalSharedSubgraph(t *testing.T) {
	// Diamond: two paths reach the same leaf. The second visit must not
	// be mistaken for a cycle.
	shared := NewConstant(1.0)
	left := NewOperator(OpAdd, shared, NewConstant(2.0))
	right := NewOperator(OpSub, shared, NewConstant(3.0))
	top := NewOperator(OpAdd, left, right)

	unrelated := NewUniform(0, 1)
	if CheckCyclical(unrelated, top) {
		t.Error("diamond sharing should not be reported as a cycle")
	}
	if !CheckCyclical(shared, top) {
		t.Error("shared leaf is reachable from top")
	}
}
