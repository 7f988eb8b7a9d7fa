package nipl

import "github.com/dlclark/regexp2"

// compileRegex compiles a NIPL regex value with regexp2's backtracking
// engine rather than the stdlib's RE2 engine: processor scripts in the wild
// rely on backreferences and lookaround, which RE2 cannot express.
func compileRegex(pattern string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, newNIPLError("invalid regex %q: %v", pattern, err)
	}
	return re, nil
}

// matchCaptures runs pattern against value and returns its capture groups
// (excluding group 0, the whole match). It returns a nil slice with no error
// when the pattern simply didn't match, and a non-nil empty slice when it
// matched but defined no groups.
func matchCaptures(pattern, value string) ([]string, error) {
	re, err := compileRegex(pattern)
	if err != nil {
		return nil, err
	}
	m, err := re.FindStringMatch(value)
	if err != nil {
		return nil, newNIPLError("regex evaluation failed: %v", err)
	}
	if m == nil {
		return nil, nil
	}
	groups := m.Groups()
	if len(groups) <= 1 {
		return []string{}, nil
	}
	caps := make([]string, 0, len(groups)-1)
	for _, g := range groups[1:] {
		caps = append(caps, g.String())
	}
	return caps, nil
}

// replaceAll substitutes every non-overlapping match of pattern in value
// with repl.
func replaceAll(pattern, value, repl string) (string, error) {
	re, err := compileRegex(pattern)
	if err != nil {
		return "", err
	}
	out, err := re.Replace(value, repl, -1, -1)
	if err != nil {
		return "", newNIPLError("regex replace failed: %v", err)
	}
	return out, nil
}
