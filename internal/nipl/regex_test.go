package nipl

import "testing"

func TestMatchCapturesFound(t *testing.T) {
	groups, err := matchCaptures(`id=(\d+)&name=(\w+)`, "prefix id=42&name=foo suffix")
	if err != nil {
		t.Fatalf("matchCaptures: %v", err)
	}
	if len(groups) != 2 || groups[0] != "42" || groups[1] != "foo" {
		t.Fatalf("groups = %v, want [42 foo]", groups)
	}
}

func TestMatchCapturesNoMatch(t *testing.T) {
	groups, err := matchCaptures(`id=(\d+)`, "nothing here")
	if err != nil {
		t.Fatalf("matchCaptures: %v", err)
	}
	if groups != nil {
		t.Fatalf("groups = %v, want nil for no match", groups)
	}
}

func TestMatchCapturesBackreference(t *testing.T) {
	// Backreferences are RE2-inexpressible; regexp2 supports them, which is
	// the whole reason it was picked over the stdlib regexp package.
	groups, err := matchCaptures(`(\w+)=\1`, "foo=foo bar=baz")
	if err != nil {
		t.Fatalf("matchCaptures: %v", err)
	}
	if len(groups) != 1 || groups[0] != "foo" {
		t.Fatalf("groups = %v, want [foo]", groups)
	}
}

func TestReplaceAll(t *testing.T) {
	out, err := replaceAll(`\s+`, "a   b\tc", "_")
	if err != nil {
		t.Fatalf("replaceAll: %v", err)
	}
	if out != "a_b_c" {
		t.Fatalf("replaceAll = %q, want a_b_c", out)
	}
}

func TestInvalidRegex(t *testing.T) {
	if _, err := matchCaptures(`(unterminated`, "x"); err == nil {
		t.Fatalf("expected error for invalid regex")
	}
}
