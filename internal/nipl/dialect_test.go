package nipl

import (
	"context"
	"testing"
)

func TestRunV1BareURLTerminal(t *testing.T) {
	ev, _ := newTestEvaluator(nil)
	desc, sig, err := runV1(ev, []string{"http://media.example.com/video.mp4"})
	if err != nil {
		t.Fatalf("runV1: %v", err)
	}
	if sig != SignalNone || desc == nil {
		t.Fatalf("expected terminal descriptor, got sig=%v desc=%v", sig, desc)
	}
	if desc.URL != "http://media.example.com/video.mp4" {
		t.Fatalf("desc.URL = %q", desc.URL)
	}
}

func TestRunV1TwoLineTriggersScrapeAndReport(t *testing.T) {
	fetcher := newStubFetcher().on("http://intermediate.example.com/page", "token=abc123")
	ev, ns := newTestEvaluator(fetcher)
	desc, sig, err := runV1(ev, []string{"http://intermediate.example.com/page", `token=(\w+)`})
	if err != nil {
		t.Fatalf("runV1: %v", err)
	}
	if sig != SignalReport || desc != nil {
		t.Fatalf("expected SignalReport with no descriptor, got sig=%v desc=%v", sig, desc)
	}
	if got := ns.Get("v1"); got != "abc123" {
		t.Fatalf("v1 = %q, want abc123", got)
	}
}

func TestRunV2AssignAndPlay(t *testing.T) {
	ev, _ := newTestEvaluator(nil)
	lines := []string{
		"url='http://media.example.com/stream.flv",
		"player='rtmp",
		"play",
	}
	desc, sig, err := runV2(ev, lines)
	if err != nil {
		t.Fatalf("runV2: %v", err)
	}
	if sig != SignalNone || desc == nil {
		t.Fatalf("expected terminal descriptor, got sig=%v desc=%v", sig, desc)
	}
	if desc.URL != "http://media.example.com/stream.flv" {
		t.Fatalf("desc.URL = %q", desc.URL)
	}
	if desc.Player != "rtmp" {
		t.Fatalf("desc.Player = %q", desc.Player)
	}
}

func TestRunV2IfElseLadder(t *testing.T) {
	ev, ns := newTestEvaluator(nil)
	ns.SetVar("mode", "mobile")
	lines := []string{
		"if mode = 'mobile",
		"url='http://m.example.com/video",
		"elseif mode = 'desktop",
		"url='http://example.com/video",
		"else",
		"url='http://fallback.example.com/video",
		"endif",
		"play",
	}
	desc, _, err := runV2(ev, lines)
	if err != nil {
		t.Fatalf("runV2: %v", err)
	}
	if desc.URL != "http://m.example.com/video" {
		t.Fatalf("desc.URL = %q, want mobile branch URL", desc.URL)
	}

	ns2 := NewNamespace("http://example.com/source", nil)
	ev2 := newEvaluator(context.Background(), ns2, nil, NopLogger{})
	ns2.SetVar("mode", "other")
	desc2, _, err := runV2(ev2, lines)
	if err != nil {
		t.Fatalf("runV2: %v", err)
	}
	if desc2.URL != "http://fallback.example.com/video" {
		t.Fatalf("desc2.URL = %q, want fallback branch URL", desc2.URL)
	}
}

func TestRunV2NestedIfRejected(t *testing.T) {
	ev, _ := newTestEvaluator(nil)
	lines := []string{
		"if a = 'b",
		"if c = 'd",
		"play",
		"endif",
		"endif",
	}
	_, _, err := runV2(ev, lines)
	if err == nil {
		t.Fatalf("expected error for nested if")
	}
}

func TestRunV2EndsWithoutPlayOrReportIsError(t *testing.T) {
	ev, _ := newTestEvaluator(nil)
	_, _, err := runV2(ev, []string{"url='http://example.com"})
	if err == nil {
		t.Fatalf("expected error when script ends without play or report")
	}
}
