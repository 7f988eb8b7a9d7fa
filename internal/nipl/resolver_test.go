package nipl

import (
	"context"
	"strings"
	"testing"
)

func TestResolveNoProcessorPassesThrough(t *testing.T) {
	desc, err := Resolve(context.Background(), "http://example.com/raw.mp4", "", Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if desc.URL != "http://example.com/raw.mp4" {
		t.Fatalf("desc.URL = %q", desc.URL)
	}
}

func TestResolveV1SingleLineTerminal(t *testing.T) {
	fetcher := newStubFetcher().on("http://proc.example.com/p", "http://media.example.com/final.mp4")
	desc, err := Resolve(context.Background(), "http://example.com/source", "http://proc.example.com/p", Options{Fetcher: fetcher})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if desc.URL != "http://media.example.com/final.mp4" {
		t.Fatalf("desc.URL = %q", desc.URL)
	}
	if len(fetcher.calls) != 1 {
		t.Fatalf("expected exactly one processor fetch, got %d", len(fetcher.calls))
	}
}

// TestResolveV1TwoPhaseFlow exercises a v1 script whose first phase performs
// a synthetic scrape (URL + regex), reports, and whose second phase
// resolves to the terminal URL directly.
func TestResolveV1TwoPhaseFlow(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.on("http://proc.example.com/p", "http://intermediate.example.com/page\nid=(\\d+)")
	fetcher.on("http://intermediate.example.com/page", "the id is id=777 here")
	fetcher.on("http://proc.example.com/p", "http://media.example.com/final-777.mp4")

	desc, err := Resolve(context.Background(), "http://example.com/source", "http://proc.example.com/p", Options{Fetcher: fetcher})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if desc.URL != "http://media.example.com/final-777.mp4" {
		t.Fatalf("desc.URL = %q", desc.URL)
	}

	// second processor call should have carried phase=1 and v1=777
	var secondProcCall *ScrapeRequest
	count := 0
	for i := range fetcher.calls {
		c := fetcher.calls[i]
		if strings.HasPrefix(c.URL, "http://proc.example.com/p") {
			count++
			if count == 2 {
				secondProcCall = &fetcher.calls[i]
			}
		}
	}
	if secondProcCall == nil {
		t.Fatalf("expected a second processor call")
	}
	if !strings.Contains(secondProcCall.URL, "phase=1") || !strings.Contains(secondProcCall.URL, "v1=777") {
		t.Fatalf("second processor call URL = %q, want phase=1 and v1=777", secondProcCall.URL)
	}
}

func TestResolveV2MultiPhaseWithReportVal(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.on("http://proc.example.com/p", "v2\ns_url='http://scrape.example.com/x\nregex='id=(\\d+)\nscrape\nreport_val session='abc\nreport")
	fetcher.on("http://scrape.example.com/x", "payload id=55 payload")
	fetcher.on("http://proc.example.com/p", "v2\nurl=v1\nplay")

	desc, err := Resolve(context.Background(), "http://example.com/source", "http://proc.example.com/p", Options{Fetcher: fetcher})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// The phase-1 processor query must carry the capture and the report_val.
	var second string
	count := 0
	for _, c := range fetcher.calls {
		if strings.HasPrefix(c.URL, "http://proc.example.com/p") {
			count++
			if count == 2 {
				second = c.URL
			}
		}
	}
	if second == "" {
		t.Fatalf("expected a second processor call")
	}
	for _, want := range []string{"phase=1", "v1=55", "session=abc"} {
		if !strings.Contains(second, want) {
			t.Fatalf("second processor call URL = %q, missing %q", second, want)
		}
	}
	if desc.URL != "55" {
		t.Fatalf("desc.URL = %q, want the captured group 55", desc.URL)
	}
}

// TestResolveV2LatchesAcrossPhases covers the once-v2-always-v2 rule: a
// later phase's body with no "v2" header must still be parsed as v2 (a v1
// parse would misread the url assignment as a bare URL line).
func TestResolveV2LatchesAcrossPhases(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.on("http://proc.example.com/p", "v2\nreport_val step='one\nreport")
	fetcher.on("http://proc.example.com/p", "url='http://media.example.com/latched.mp4\nplay")

	desc, err := Resolve(context.Background(), "http://example.com/source", "http://proc.example.com/p", Options{Fetcher: fetcher})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if desc.URL != "http://media.example.com/latched.mp4" {
		t.Fatalf("desc.URL = %q, want the v2-parsed url", desc.URL)
	}
}

func TestResolveLoopDetection(t *testing.T) {
	fetcher := newStubFetcher()
	// Every processor call returns the identical script, which reports
	// without any report_val or match, so every query after phase 0 carries
	// the same (empty) report params. The phase-1 fetch goes out; the
	// phase-2 attempt repeats its fingerprint and must trip the loop
	// detector before a third fetch is issued.
	body := "v2\nreport"
	fetcher.on("http://proc.example.com/p", body)
	fetcher.on("http://proc.example.com/p", body)

	_, err := Resolve(context.Background(), "http://example.com/source", "http://proc.example.com/p", Options{Fetcher: fetcher})
	if err == nil {
		t.Fatalf("expected loop detection error")
	}
	if _, ok := err.(*NIPLLoopError); !ok {
		t.Fatalf("expected *NIPLLoopError, got %T: %v", err, err)
	}
}
