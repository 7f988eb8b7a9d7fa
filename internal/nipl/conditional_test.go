package nipl

import "testing"

func TestSplitExprOperators(t *testing.T) {
	cases := []struct {
		expr         string
		lhs, op, rhs string
	}{
		{"a=b", "a", "=", "b"},
		{"a==b", "a", "==", "b"},
		{"a!=b", "a", "!=", "b"},
		{"a<>b", "a", "<>", "b"},
		{"a<=b", "a", "<=", "b"},
		{"a>=b", "a", ">=", "b"},
		{"a<b", "a", "<", "b"},
		{"a>b", "a", ">", "b"},
		{"phase = '2", "phase", "=", "'2"},
	}
	for _, c := range cases {
		lhs, op, rhs, ok := splitExpr(c.expr)
		if !ok {
			t.Fatalf("splitExpr(%q) failed to split", c.expr)
		}
		if lhs != c.lhs || op != c.op || rhs != c.rhs {
			t.Fatalf("splitExpr(%q) = (%q,%q,%q), want (%q,%q,%q)", c.expr, lhs, op, rhs, c.lhs, c.op, c.rhs)
		}
	}
}

func TestEvalExprComparison(t *testing.T) {
	ns := NewNamespace("http://example.com", nil)
	ns.SetVar("phase", "2")
	ok, err := evalExpr(ns, "nomatch = '1")
	if err != nil {
		t.Fatalf("evalExpr: %v", err)
	}
	if !ok {
		t.Fatalf("expected nomatch = '1 to be true when no match has occurred")
	}
}

func TestEvalExprBareTruthiness(t *testing.T) {
	ns := NewNamespace("http://example.com", nil)
	ns.SetVar("flag", "")
	ok, err := evalExpr(ns, "flag")
	if err != nil || ok {
		t.Fatalf("empty var should be falsy, got ok=%v err=%v", ok, err)
	}
	ns.SetVar("flag", "0")
	ok, _ = evalExpr(ns, "flag")
	if ok {
		t.Fatalf("\"0\" should be falsy")
	}
	ns.SetVar("flag", "yes")
	ok, _ = evalExpr(ns, "flag")
	if !ok {
		t.Fatalf("non-empty non-zero var should be truthy")
	}
}
