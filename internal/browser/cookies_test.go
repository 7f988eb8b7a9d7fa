package browser

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestMatchesDomain(t *testing.T) {
	ce := NewCookieExtractor(BrowserAuto, nil)
	cases := []struct {
		cookie, target string
		want           bool
	}{
		{"example.com", "example.com", true},
		{".example.com", "example.com", true},
		{".example.com", "www.example.com", true},
		{"example.com", "notexample.com", false},
		{"", "example.com", false},
		{"example.com", "", false},
	}
	for _, c := range cases {
		if got := ce.matchesDomain(c.cookie, c.target); got != c.want {
			t.Fatalf("matchesDomain(%q, %q) = %v, want %v", c.cookie, c.target, got, c.want)
		}
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	if got := expandPath("~/profiles/default"); got != filepath.Join(home, "profiles", "default") {
		t.Fatalf("expandPath = %q", got)
	}
}

func TestExpandPathPassthrough(t *testing.T) {
	if got := expandPath("/absolute/path"); got != "/absolute/path" {
		t.Fatalf("expandPath = %q, want unchanged", got)
	}
}

func TestIsBrowserAvailableCustomPath(t *testing.T) {
	ce := NewCookieExtractor(BrowserChrome, map[string]string{"chrome": t.TempDir()})
	if !ce.isBrowserAvailable(BrowserChrome) {
		t.Fatalf("expected chrome available via custom path")
	}
}

func TestDetectAvailableBrowsersSeesCustomPath(t *testing.T) {
	ce := NewCookieExtractor(BrowserAuto, map[string]string{"firefox": t.TempDir()})
	for _, b := range ce.DetectAvailableBrowsers() {
		if b == BrowserFirefox {
			return
		}
	}
	t.Fatalf("expected firefox among detected browsers")
}

func TestSafariUnavailableOffDarwin(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("safari profile may legitimately exist")
	}
	ce := NewCookieExtractor(BrowserAuto, map[string]string{"safari": t.TempDir()})
	if ce.isBrowserAvailable(BrowserSafari) {
		t.Fatalf("safari should never be reported off darwin")
	}
}
