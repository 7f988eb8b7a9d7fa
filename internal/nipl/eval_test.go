package nipl

import (
	"context"
	"testing"
)

func newTestEvaluator(fetcher Fetcher) (*Evaluator, *Namespace) {
	ns := NewNamespace("http://example.com/source", nil)
	return newEvaluator(context.Background(), ns, fetcher, NopLogger{}), ns
}

func TestExecuteAssignment(t *testing.T) {
	ev, ns := newTestEvaluator(nil)
	if _, err := ev.Execute("url='http://target"); err != nil {
		t.Fatalf("Execute assignment: %v", err)
	}
	if got := ns.Get("url"); got != "http://target" {
		t.Fatalf("url = %q, want http://target", got)
	}
}

func TestExecuteConcatLiteral(t *testing.T) {
	ev, ns := newTestEvaluator(nil)
	ns.SetVar("greeting", "hello")
	if _, err := ev.Execute("concat greeting ' world"); err != nil {
		t.Fatalf("Execute concat: %v", err)
	}
	if got := ns.Get("greeting"); got != "hello world" {
		t.Fatalf("greeting = %q, want %q", got, "hello world")
	}
}

func TestExecuteConcatVar(t *testing.T) {
	ev, ns := newTestEvaluator(nil)
	ns.SetVar("a", "foo")
	ns.SetVar("b", "bar")
	if _, err := ev.Execute("concat a b"); err != nil {
		t.Fatalf("Execute concat: %v", err)
	}
	if got := ns.Get("a"); got != "foobar" {
		t.Fatalf("a = %q, want foobar", got)
	}
}

func TestExecuteMatchCommand(t *testing.T) {
	ev, ns := newTestEvaluator(nil)
	ns.SetVar("regex", `id=(\d+)`)
	ns.SetVar("page", "stuff id=99 stuff")
	if _, err := ev.Execute("match page"); err != nil {
		t.Fatalf("Execute match: %v", err)
	}
	if got := ns.Get("v1"); got != "99" {
		t.Fatalf("v1 = %q, want 99", got)
	}
	if got := ns.Get("nomatch"); got != "0" {
		t.Fatalf("nomatch = %q, want 0", got)
	}
}

func TestExecuteMatchCommandNoMatch(t *testing.T) {
	ev, ns := newTestEvaluator(nil)
	ns.SetVar("regex", `id=(\d+)`)
	ns.SetVar("page", "nothing relevant")
	if _, err := ev.Execute("match page"); err != nil {
		t.Fatalf("Execute match: %v", err)
	}
	if got := ns.Get("nomatch"); got != "1" {
		t.Fatalf("nomatch = %q, want 1", got)
	}
}

func TestExecuteReplace(t *testing.T) {
	ev, ns := newTestEvaluator(nil)
	ns.SetVar("regex", `\d+`)
	ns.SetVar("target", "room 42 and 7")
	if _, err := ev.Execute("replace target 'X"); err != nil {
		t.Fatalf("Execute replace: %v", err)
	}
	if got := ns.Get("target"); got != "room X and X" {
		t.Fatalf("target = %q, want %q", got, "room X and X")
	}
}

func TestExecuteUnescape(t *testing.T) {
	ev, ns := newTestEvaluator(nil)
	ns.SetVar("enc", "hello%20world%21")
	if _, err := ev.Execute("unescape enc"); err != nil {
		t.Fatalf("Execute unescape: %v", err)
	}
	if got := ns.Get("enc"); got != "hello world!" {
		t.Fatalf("enc = %q, want %q", got, "hello world!")
	}
}

func TestExecuteReportVal(t *testing.T) {
	ev, ns := newTestEvaluator(nil)
	if _, err := ev.Execute("report_val foo='bar"); err != nil {
		t.Fatalf("Execute report_val: %v", err)
	}
	if got := ns.ReportVars()["foo"]; got != "bar" {
		t.Fatalf("report var foo = %q, want bar", got)
	}
}

func TestExecuteReportAndPlaySignals(t *testing.T) {
	ev, _ := newTestEvaluator(nil)
	sig, err := ev.Execute("report")
	if err != nil || sig != SignalReport {
		t.Fatalf("report: sig=%v err=%v", sig, err)
	}
	sig, err = ev.Execute("play")
	if err != nil || sig != SignalPlay {
		t.Fatalf("play: sig=%v err=%v", sig, err)
	}
}

func TestExecuteError(t *testing.T) {
	ev, _ := newTestEvaluator(nil)
	_, err := ev.Execute("error 'boom")
	if err == nil {
		t.Fatalf("expected error from error command")
	}
	if _, ok := err.(*NIPLError); !ok {
		t.Fatalf("expected *NIPLError, got %T", err)
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	ev, _ := newTestEvaluator(nil)
	if _, err := ev.Execute("frobnicate x"); err == nil {
		t.Fatalf("expected error for unknown command")
	}
}

func TestScrapeReadWithRegexPopulatesCaptures(t *testing.T) {
	fetcher := newStubFetcher().on("http://scrape-target", "<html>id=1234</html>")
	ev, ns := newTestEvaluator(fetcher)
	ns.SetVar("s_url", "http://scrape-target")
	ns.SetVar("regex", `id=(\d+)`)
	if _, err := ev.Execute("scrape"); err != nil {
		t.Fatalf("Execute scrape: %v", err)
	}
	if got := ns.Get("v1"); got != "1234" {
		t.Fatalf("v1 = %q, want 1234", got)
	}
	if got := ns.Get("htmRaw"); got != "<html>id=1234</html>" {
		t.Fatalf("htmRaw not set correctly: %q", got)
	}
}

func TestScrapeGeturlActionSetsV1AndReportVar(t *testing.T) {
	fetcher := newStubFetcher().onResult("http://redirector", &ScrapeResponse{
		FinalURL: "http://final-destination",
		Headers:  map[string]string{},
		Cookies:  map[string]string{},
	})
	ev, ns := newTestEvaluator(fetcher)
	ns.SetVar("s_url", "http://redirector")
	if err := ns.Set("s_action", "'geturl"); err != nil {
		t.Fatalf("Set s_action: %v", err)
	}
	if _, err := ev.Execute("scrape"); err != nil {
		t.Fatalf("Execute scrape: %v", err)
	}
	if got := ns.Get("v1"); got != "http://final-destination" {
		t.Fatalf("v1 = %q, want http://final-destination", got)
	}
	if got := ns.ReportVars()["v1"]; got != "http://final-destination" {
		t.Fatalf("report var v1 = %q, want http://final-destination", got)
	}
}

func TestScrapeHeadersActionLeavesContentEmpty(t *testing.T) {
	fetcher := newStubFetcher().onResult("http://head-only", &ScrapeResponse{
		Content:  "should be ignored",
		FinalURL: "http://head-only",
		Headers:  map[string]string{"x-custom": "value"},
		Cookies:  map[string]string{},
	})
	ev, ns := newTestEvaluator(fetcher)
	ns.SetVar("s_url", "http://head-only")
	if err := ns.Set("s_action", "'headers"); err != nil {
		t.Fatalf("Set s_action: %v", err)
	}
	if _, err := ev.Execute("scrape"); err != nil {
		t.Fatalf("Execute scrape: %v", err)
	}
	if got := ns.Get("htmRaw"); got != "" {
		t.Fatalf("htmRaw = %q, want empty for action=headers", got)
	}
	if got := ns.Get("headers.x-custom"); got != "value" {
		t.Fatalf("headers.x-custom = %q, want value", got)
	}
}
