package nipl

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// session drives the phase loop: compose the processor query, fetch it,
// run the dialect body, and either advance the phase on a report or return
// the terminal descriptor.
type session struct {
	sourceURL    string
	processorURL string
	platform     string
	version      string
	log          Logger
	fetcher      Fetcher
	ns           *Namespace

	forceV2 bool
	seen    map[string]struct{}
}

func (s *session) run(ctx context.Context) (*Descriptor, error) {
	for {
		desc, sig, err := s.fetchAndRunPhase(ctx)
		if err != nil {
			s.log.Errorf("%v", err)
			return nil, err
		}
		if sig == SignalReport {
			s.ns.AdvancePhase()
			continue
		}
		return desc, nil
	}
}

// reportParams returns the report-variable/capture params for the phase
// about to run, WITHOUT the phase number itself: this is the canonical
// loop-detection fingerprint. The phase counter always increases, so
// including it would make every fingerprint unique and defeat the
// detector entirely; a script stuck re-deriving the same v1/report values
// forever (while phase climbs) is exactly the loop this guards against.
// Captures are added before explicit report_val entries so report_val wins
// on key collision.
func (s *session) reportParams() url.Values {
	params := url.Values{}
	if s.ns.Phase() == 0 {
		params.Set("url", s.sourceURL)
		return params
	}
	for i, g := range s.ns.MatchCaptures() {
		params.Set(fmt.Sprintf("v%d", i+1), g)
	}
	for k, v := range s.ns.ReportVars() {
		params.Set(k, v)
	}
	return params
}

// composeProcessorQuery builds the full processor URL (with its query
// string, including phase) for the phase about to run.
func (s *session) composeProcessorQuery(params url.Values) string {
	phase := s.ns.Phase()
	if phase > 0 {
		params = cloneValues(params)
		params.Set("phase", strconv.Itoa(phase))
	}
	sep := "?"
	if strings.Contains(s.processorURL, "?") {
		sep = "&"
	}
	return s.processorURL + sep + params.Encode()
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+1)
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

// checkLoop records the fingerprint (processor URL plus the report
// params, phase number excluded) and fails if it was already seen this
// session.
func (s *session) checkLoop(fingerprint string) error {
	if _, seen := s.seen[fingerprint]; seen {
		return &NIPLLoopError{Msg: "loop detected: processor called twice with identical arguments"}
	}
	s.seen[fingerprint] = struct{}{}
	return nil
}

func (s *session) fetchAndRunPhase(ctx context.Context) (*Descriptor, Signal, error) {
	params := s.reportParams()
	fingerprint := s.processorURL + "?" + params.Encode()
	if err := s.checkLoop(fingerprint); err != nil {
		return nil, SignalNone, err
	}
	procURL := s.composeProcessorQuery(params)

	s.log.Debugf("fetching processor: %s", procURL)
	cookie := fmt.Sprintf("version=%s; platform=%s", s.version, s.platform)
	resp, err := s.fetcher.Fetch(ctx, ScrapeRequest{
		URL:    procURL,
		Method: "get",
		Action: "read",
		Cookie: cookie,
	})
	if err != nil {
		return nil, SignalNone, &NetworkError{Op: "fetch processor", Err: err}
	}

	lines := splitLines(resp.Content)
	if len(lines) == 0 {
		return nil, SignalNone, newNIPLError("processor returned no content")
	}

	s.ns.InitVars()

	if strings.TrimSpace(lines[0]) == "v2" {
		lines = lines[1:]
		s.forceV2 = true
	}

	ev := newEvaluator(ctx, s.ns, s.fetcher, s.log)
	if s.forceV2 {
		return runV2(ev, lines)
	}
	return runV1(ev, lines)
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
