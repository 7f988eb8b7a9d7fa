package nipl

import "strings"

// ifState tracks one if/elseif/else/endif chain. Nested if is rejected
// outright; the grammar has no block stack.
type ifState struct {
	active     bool // inside an if chain at all
	branchTrue bool // is the currently selected branch executing
	everTrue   bool // has any branch in this chain evaluated true yet
}

// runV2 executes a full imperative v2 processor body line by line, handling
// the if/elseif/else/endif ladder itself and delegating everything else to
// the Evaluator.
func runV2(ev *Evaluator, lines []string) (*Descriptor, Signal, error) {
	var st ifState
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if st.active {
			switch {
			case strings.HasPrefix(line, "if "):
				return nil, SignalNone, newNIPLError("nested if not supported")
			case line == "endif":
				st = ifState{}
				continue
			case line == "else":
				st.branchTrue = !st.everTrue
				continue
			case strings.HasPrefix(line, "elseif "):
				if st.everTrue {
					st.branchTrue = false
					continue
				}
				cond, err := evalExpr(ev.ns, strings.TrimSpace(line[len("elseif "):]))
				if err != nil {
					return nil, SignalNone, err
				}
				st.branchTrue = cond
				if cond {
					st.everTrue = true
				}
				continue
			default:
				if !st.branchTrue {
					continue
				}
			}
		} else if strings.HasPrefix(line, "if ") {
			cond, err := evalExpr(ev.ns, strings.TrimSpace(line[len("if "):]))
			if err != nil {
				return nil, SignalNone, err
			}
			st = ifState{active: true, branchTrue: cond, everTrue: cond}
			continue
		}

		sig, err := ev.Execute(line)
		if err != nil {
			return nil, SignalNone, err
		}
		switch sig {
		case SignalPlay:
			return &Descriptor{
				URL:      ev.ns.Get("url"),
				Referer:  ev.ns.Get("referer"),
				Agent:    ev.ns.Get("agent"),
				Player:   ev.ns.Get("player"),
				SWFURL:   ev.ns.Get("swfurl"),
				PlayPath: ev.ns.Get("playpath"),
			}, SignalNone, nil
		case SignalReport:
			return nil, SignalReport, nil
		}
	}
	return nil, SignalNone, newNIPLError("processor script ended without play or report")
}
