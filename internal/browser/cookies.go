// Package browser extracts cookies from installed desktop browsers so a
// resolver session can be seeded with an already-authenticated jar, the way
// a Navi-X user would log into a gated site once in their normal browser.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/all" // registers all supported browsers
)

type BrowserType string

const (
	BrowserAuto    BrowserType = "auto"
	BrowserChrome  BrowserType = "chrome"
	BrowserFirefox BrowserType = "firefox"
	BrowserSafari  BrowserType = "safari"
	BrowserZen     BrowserType = "zen"
)

type CookieExtractor struct {
	browserType BrowserType
	customPaths map[string]string
}

func NewCookieExtractor(browserType BrowserType, customPaths map[string]string) *CookieExtractor {
	return &CookieExtractor{
		browserType: browserType,
		customPaths: customPaths,
	}
}

// ExtractCookieMap returns the installed-browser cookies for targetURL's
// host as a flat name->value map, the shape nipl.Options.Cookies expects.
// Later cookies for the same name overwrite earlier ones.
func (ce *CookieExtractor) ExtractCookieMap(targetURL string) (map[string]string, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	out := map[string]string{}
	ctx := context.Background()
	for cookie, err := range kooky.TraverseCookies(ctx) {
		if err != nil {
			continue
		}
		if ce.matchesBrowserType(cookie.Browser, ce.browserType) && ce.matchesDomain(cookie.Domain, parsed.Host) {
			out[cookie.Name] = cookie.Value
		}
	}
	return out, nil
}

func (ce *CookieExtractor) matchesBrowserType(browser kooky.BrowserInfo, browserType BrowserType) bool {
	if browserType == BrowserAuto || browserType == "" {
		return true
	}

	browserName := strings.ToLower(browser.Browser())
	switch browserType {
	case BrowserChrome:
		return strings.Contains(browserName, "chrome") || strings.Contains(browserName, "chromium")
	case BrowserFirefox:
		return strings.Contains(browserName, "firefox")
	case BrowserSafari:
		return strings.Contains(browserName, "safari")
	case BrowserZen:
		return strings.Contains(browserName, "zen") ||
			(strings.Contains(browserName, "firefox") && strings.Contains(browser.FilePath(), "zen"))
	}

	return false
}

func (ce *CookieExtractor) matchesDomain(cookieDomain, targetDomain string) bool {
	if cookieDomain == "" || targetDomain == "" {
		return false
	}

	cookieDomain = strings.TrimPrefix(cookieDomain, ".")

	if cookieDomain == targetDomain {
		return true
	}

	return strings.HasSuffix(targetDomain, "."+cookieDomain)
}

// profileDirs lists where each browser family keeps its profile data, per
// platform convention. A custom path from the config's [browser.paths]
// table takes precedence over these.
var profileDirs = map[BrowserType][]string{
	BrowserChrome: {
		"~/.config/google-chrome",
		"~/Library/Application Support/Google/Chrome",
		"%LOCALAPPDATA%/Google/Chrome/User Data",
	},
	BrowserFirefox: {
		"~/.mozilla/firefox",
		"~/Library/Application Support/Firefox",
		"%APPDATA%/Mozilla/Firefox",
	},
	BrowserSafari: {
		"~/Library/Cookies",
	},
	BrowserZen: {
		"~/.zen",
		"~/Library/Application Support/Zen",
		"%APPDATA%/Zen",
	},
}

// DetectAvailableBrowsers reports which browser profiles exist on this
// host. The CLI prints it when --browser turns up no cookies, so the user
// can see which families were worth asking for.
func (ce *CookieExtractor) DetectAvailableBrowsers() []BrowserType {
	var available []BrowserType
	for _, b := range []BrowserType{BrowserChrome, BrowserFirefox, BrowserSafari, BrowserZen} {
		if ce.isBrowserAvailable(b) {
			available = append(available, b)
		}
	}
	return available
}

func (ce *CookieExtractor) isBrowserAvailable(b BrowserType) bool {
	if b == BrowserSafari && runtime.GOOS != "darwin" {
		return false
	}
	if custom := ce.customPaths[string(b)]; custom != "" {
		if _, err := os.Stat(expandPath(custom)); err == nil {
			return true
		}
	}
	for _, dir := range profileDirs[b] {
		if _, err := os.Stat(expandPath(dir)); err == nil {
			return true
		}
	}
	return false
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}

	if strings.Contains(path, "%LOCALAPPDATA%") {
		return strings.Replace(path, "%LOCALAPPDATA%", os.Getenv("LOCALAPPDATA"), 1)
	}

	if strings.Contains(path, "%APPDATA%") {
		return strings.Replace(path, "%APPDATA%", os.Getenv("APPDATA"), 1)
	}

	return path
}
