package nipl

import "strings"

// runV1 executes a two-line v1 processor body: a bare URL terminates the
// resolve; a URL followed by a regex triggers one synthetic scrape and
// hands control back to the phase driver via SignalReport.
func runV1(ev *Evaluator, lines []string) (*Descriptor, Signal, error) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, SignalNone, newNIPLError("v1 processor body must contain at least a URL line")
	}
	url := strings.TrimSpace(lines[0])
	if len(lines) < 2 || strings.TrimSpace(lines[1]) == "" {
		return &Descriptor{
			URL:      url,
			Referer:  ev.ns.Get("s_url"),
			Agent:    ev.ns.Get("agent"),
			Player:   ev.ns.Get("player"),
			SWFURL:   ev.ns.Get("swfurl"),
			PlayPath: ev.ns.Get("playpath"),
		}, SignalNone, nil
	}

	regex := strings.TrimSpace(lines[1])
	ev.ns.SetVar("s_url", url)
	ev.ns.SetVar("regex", regex)
	if err := ev.doScrape(); err != nil {
		return nil, SignalNone, err
	}
	return nil, SignalReport, nil
}
