package nipl

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// Signal is returned from Execute to tell the dialect runner (or the phase
// driver) about a control-flow transfer. The evaluator itself never panics
// or uses exceptions for report/play; it returns these instead.
type Signal int

const (
	SignalNone Signal = iota
	SignalReport
	SignalPlay
)

// Evaluator runs one NIPL line at a time against a Namespace, dispatching
// assignments and the fixed command set.
type Evaluator struct {
	ctx     context.Context
	ns      *Namespace
	fetcher Fetcher
	log     Logger
	verbose int
}

func newEvaluator(ctx context.Context, ns *Namespace, fetcher Fetcher, log Logger) *Evaluator {
	if log == nil {
		log = NopLogger{}
	}
	return &Evaluator{ctx: ctx, ns: ns, fetcher: fetcher, log: log}
}

// splitLine tells an assignment ("name=value") from a command
// ("name arg...") by which delimiter — '=' or ' ' — appears first. A line
// with neither is a bare, argument-less command.
func splitLine(line string) (isAssign bool, name, rest string) {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '=':
			return true, line[:i], line[i+1:]
		case ' ':
			return false, line[:i], line[i+1:]
		}
	}
	return false, line, ""
}

// Execute runs a single non-blank, non-comment, non-conditional-control
// line.
func (e *Evaluator) Execute(line string) (Signal, error) {
	isAssign, name, rest := splitLine(line)
	if name == "" {
		return SignalNone, &ParseError{Line: line}
	}
	if isAssign {
		return SignalNone, e.ns.Set(name, rest)
	}
	return e.runCommand(name, rest)
}

func (e *Evaluator) runCommand(cmd, arg string) (Signal, error) {
	switch cmd {
	case "concat":
		return SignalNone, e.doConcat(arg)
	case "verbose":
		return SignalNone, e.doVerbose(arg)
	case "debug":
		e.doDebug(arg)
		return SignalNone, nil
	case "print":
		e.doPrint(arg)
		return SignalNone, nil
	case "error":
		return SignalNone, newNIPLError("%s", e.ns.Expand(arg))
	case "match":
		return SignalNone, e.doMatch(arg)
	case "replace":
		return SignalNone, e.doReplace(arg)
	case "unescape":
		return SignalNone, e.doUnescape(arg)
	case "scrape":
		return SignalNone, e.doScrape()
	case "report":
		return SignalReport, nil
	case "report_val":
		return SignalNone, e.doReportVal(arg)
	case "play":
		return SignalPlay, nil
	default:
		return SignalNone, newNIPLError("unknown processor command: %s", cmd)
	}
}

func (e *Evaluator) doConcat(arg string) error {
	parts := strings.SplitN(arg, " ", 2)
	if len(parts) != 2 {
		return &ParseError{Line: "concat " + arg}
	}
	v, x := parts[0], parts[1]
	e.ns.SetVar(v, e.ns.Get(v)+e.ns.Expand(x))
	return nil
}

func (e *Evaluator) doVerbose(arg string) error {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return newNIPLError("invalid verbose level: %q", arg)
	}
	e.verbose = n
	return nil
}

func (e *Evaluator) doDebug(arg string) {
	if e.verbose > 0 {
		e.log.Debugf("%s", e.ns.Expand(arg))
	}
}

func (e *Evaluator) doPrint(arg string) {
	e.log.Infof("%s", e.ns.Expand(arg))
}

func (e *Evaluator) doMatch(arg string) error {
	value := e.ns.Get(strings.TrimSpace(arg))
	regex := e.ns.RawVar("regex")
	if regex == "" {
		return newNIPLError("regex must be set before match")
	}
	return e.applyMatch(regex, value)
}

func (e *Evaluator) applyMatch(regex, value string) error {
	groups, err := matchCaptures(regex, value)
	if err != nil {
		return err
	}
	e.ns.setMatchResult(groups)
	return nil
}

func (e *Evaluator) doReplace(arg string) error {
	parts := strings.SplitN(arg, " ", 2)
	if len(parts) != 2 {
		return &ParseError{Line: "replace " + arg}
	}
	v, x := parts[0], parts[1]
	regex := e.ns.RawVar("regex")
	if regex == "" {
		return newNIPLError("regex must be set before replace")
	}
	repl := e.ns.Expand(x)
	newVal, err := replaceAll(regex, e.ns.RawVar(v), repl)
	if err != nil {
		return err
	}
	e.ns.SetVar(v, newVal)
	return nil
}

func (e *Evaluator) doUnescape(arg string) error {
	v := strings.TrimSpace(arg)
	decoded, err := url.QueryUnescape(e.ns.Get(v))
	if err != nil {
		return newNIPLError("failed to unescape %s: %v", v, err)
	}
	e.ns.SetVar(v, decoded)
	return nil
}

func (e *Evaluator) doReportVal(arg string) error {
	i := strings.IndexByte(arg, '=')
	if i < 0 {
		return &ParseError{Line: "report_val " + arg}
	}
	k := strings.TrimSpace(arg[:i])
	v := arg[i+1:]
	e.ns.ReportVars()[k] = e.ns.Expand(v)
	return nil
}

func (e *Evaluator) buildScrapeRequest() ScrapeRequest {
	return ScrapeRequest{
		URL:       e.ns.RawVar("s_url"),
		Method:    e.ns.Get("s_method"),
		Action:    e.ns.Get("s_action"),
		UserAgent: e.ns.Get("s_agent"),
		Referer:   e.ns.Get("s_referer"),
		Cookie:    e.ns.Get("s_cookie"),
		PostData:  e.ns.Get("s_postdata"),
		Headers:   e.ns.SHeaders(),
	}
}

func (e *Evaluator) doScrape() error {
	req := e.buildScrapeRequest()
	if req.URL == "" {
		return newNIPLError("s_url must be set before scrape")
	}
	// every scrape starts from a clean match state, whatever its action
	e.ns.setMatchResult(nil)
	e.log.Debugf("scraping %s", req.URL)
	resp, err := e.fetcher.Fetch(e.ctx, req)
	if err != nil {
		return &NetworkError{Op: "scrape " + req.URL, Err: err}
	}
	e.ns.SetCookies(resp.Cookies)
	e.ns.SetHeaders(resp.Headers)
	e.ns.SetVar("geturl", resp.FinalURL)

	switch strings.ToLower(req.Action) {
	case "read", "":
		e.ns.SetVar("htmRaw", resp.Content)
		regex := e.ns.RawVar("regex")
		if regex != "" {
			if err := e.applyMatch(regex, resp.Content); err != nil {
				return err
			}
		}
	case "headers":
		e.ns.SetVar("htmRaw", "")
	case "geturl":
		e.ns.setMatchResult(nil)
		e.ns.SetVar("v1", resp.FinalURL)
		e.ns.ReportVars()["v1"] = resp.FinalURL
	}
	return nil
}
