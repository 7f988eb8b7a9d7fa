package nipl

import "strings"

// compareOps lists the two-character comparison operators a v2 if/elseif
// expression may use. splitExpr tries them before the single-character
// "=", "<" and ">" so "==" is preferred over a bare "=" at the same
// position.
var compareOps = []string{"==", "!=", "<>", "<=", ">="}

// splitExpr finds the first comparison operator in expr and splits around
// it. A variable name cannot itself contain an operator character, so the
// leftmost match is unambiguous.
func splitExpr(expr string) (lhs, op, rhs string, ok bool) {
	for i := 0; i < len(expr); i++ {
		if i+1 < len(expr) {
			two := expr[i : i+2]
			for _, o := range compareOps {
				if two == o {
					return strings.TrimSpace(expr[:i]), two, strings.TrimSpace(expr[i+2:]), true
				}
			}
		}
		switch expr[i] {
		case '=', '<', '>':
			return strings.TrimSpace(expr[:i]), string(expr[i]), strings.TrimSpace(expr[i+1:]), true
		}
	}
	return "", "", "", false
}

// evalExpr evaluates a v2 if/elseif expression. "LHS OP RHS" compares
// ns.Get(LHS) against ns.Expand(RHS) using one of 8 operators ("=" is an
// alias for "=="); a bare token is evaluated by truthiness (empty or "0" is
// false).
func evalExpr(ns *Namespace, expr string) (bool, error) {
	if lhs, op, rhs, ok := splitExpr(expr); ok {
		left := ns.Get(lhs)
		right := ns.Expand(rhs)
		return compareOp(op, left, right)
	}
	v := ns.Get(expr)
	return v != "" && v != "0", nil
}

func compareOp(op, l, r string) (bool, error) {
	switch op {
	case "=", "==":
		return l == r, nil
	case "!=", "<>":
		return l != r, nil
	case "<":
		return l < r, nil
	case "<=":
		return l <= r, nil
	case ">":
		return l > r, nil
	case ">=":
		return l >= r, nil
	}
	return false, newNIPLError("invalid comparison operator %q", op)
}
