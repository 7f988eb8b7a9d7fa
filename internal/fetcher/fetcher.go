// Package fetcher provides a static-then-JS-rendering HTTP content fetcher
// for the `inspect` subcommand, so a processor author can see what a
// candidate scrape target serves — including pages whose content is
// injected by client-side JavaScript.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

type FetchMode string

const (
	FetchModeAuto   FetchMode = "auto"
	FetchModeStatic FetchMode = "static"
	FetchModeJS     FetchMode = "javascript"
)

type FetchOptions struct {
	Mode            FetchMode
	Timeout         time.Duration
	UserAgent       string
	BrowserAgent    string
	Cookies         []*http.Cookie
	SkipBanners     bool
	BannerTimeout   time.Duration
	WaitForSelector string
}

type FetchResult struct {
	HTML     string
	Title    string
	URL      string
	UsedJS   bool
	Metadata map[string]string
}

type ContentFetcher struct {
	client          *http.Client
	userAgentSelect *UserAgentSelector
}

func NewContentFetcher() *ContentFetcher {
	return &ContentFetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgentSelect: NewUserAgentSelector(),
	}
}

// Fetch resolves Mode: static does a plain HTTP GET; javascript renders with
// headless Chrome; auto tries static first and only pays for a browser if
// the static HTML looks like an empty SPA shell.
func (cf *ContentFetcher) Fetch(ctx context.Context, url string, opts FetchOptions) (*FetchResult, error) {
	if opts.Mode == FetchModeStatic {
		return cf.fetchStatic(ctx, url, opts)
	}

	if opts.Mode == FetchModeJS {
		return cf.fetchWithJS(ctx, url, opts)
	}

	result, err := cf.fetchStatic(ctx, url, opts)
	if err != nil {
		return nil, err
	}

	if cf.needsJSRendering(result.HTML) {
		return cf.fetchWithJS(ctx, url, opts)
	}

	return result, nil
}

func (cf *ContentFetcher) fetchStatic(ctx context.Context, url string, opts FetchOptions) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = cf.userAgentSelect.GetUserAgent(opts.BrowserAgent)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	for _, cookie := range opts.Cookies {
		req.AddCookie(cookie)
	}

	resp, err := cf.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	buf := make([]byte, 1024*1024)
	n, err := resp.Body.Read(buf)
	if err != nil && err.Error() != "EOF" {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	html := string(buf[:n])

	return &FetchResult{
		HTML:     html,
		Title:    cf.extractTitle(html),
		URL:      url,
		UsedJS:   false,
		Metadata: cf.extractMetadata(html),
	}, nil
}

func (cf *ContentFetcher) fetchWithJS(ctx context.Context, url string, opts FetchOptions) (*FetchResult, error) {
	chromeCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	if opts.Timeout > 0 {
		chromeCtx, cancel = context.WithTimeout(chromeCtx, opts.Timeout)
		defer cancel()
	}

	var html, title string

	tasks := []chromedp.Action{
		chromedp.Navigate(url),
	}

	if opts.SkipBanners {
		tasks = append(tasks, cf.dismissCookieBanners(opts.BannerTimeout)...)
	}

	if opts.WaitForSelector != "" {
		tasks = append(tasks, chromedp.WaitVisible(opts.WaitForSelector))
	} else {
		tasks = append(tasks, chromedp.WaitReady("body"))
	}

	tasks = append(tasks,
		chromedp.OuterHTML("html", &html),
		chromedp.Title(&title),
	)

	if err := chromedp.Run(chromeCtx, tasks...); err != nil {
		return nil, fmt.Errorf("failed to run Chrome tasks: %w", err)
	}

	return &FetchResult{
		HTML:     html,
		Title:    title,
		URL:      url,
		UsedJS:   true,
		Metadata: cf.extractMetadata(html),
	}, nil
}

// dismissCookieBanners best-effort-clicks a handful of common consent-banner
// accept buttons. Failures (selector absent) are swallowed: a missing
// banner is the common case, not an error.
func (cf *ContentFetcher) dismissCookieBanners(timeout time.Duration) []chromedp.Action {
	acceptSelectors := []string{
		`button[id*="accept" i]`,
		`button[class*="accept" i]`,
		`.cookie-accept`,
		`[data-action="accept"]`,
	}

	tasks := []chromedp.Action{chromedp.Sleep(1 * time.Second)}

	for _, selector := range acceptSelectors {
		sel := selector
		tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
			clickCtx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				clickCtx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			_ = chromedp.Click(sel, chromedp.NodeVisible).Do(clickCtx)
			return nil
		}))
	}

	return tasks
}

func (cf *ContentFetcher) needsJSRendering(html string) bool {
	lowerHTML := strings.ToLower(html)

	jsFrameworks := []string{
		"react", "vue", "angular", "backbone", "ember",
		"data-reactroot", "ng-app", "v-app",
	}

	for _, framework := range jsFrameworks {
		if strings.Contains(lowerHTML, framework) {
			return true
		}
	}

	if strings.Contains(lowerHTML, "loading") && len(strings.TrimSpace(html)) < 2000 {
		return true
	}

	scriptCount := strings.Count(lowerHTML, "<script")
	bodyContent := cf.extractBodyContent(html)

	return scriptCount > 5 && len(strings.TrimSpace(bodyContent)) < 1000
}

func (cf *ContentFetcher) extractTitle(html string) string {
	start := strings.Index(strings.ToLower(html), "<title")
	if start == -1 {
		return ""
	}

	rel := strings.Index(html[start:], ">")
	if rel == -1 {
		return ""
	}
	start += rel + 1

	end := strings.Index(strings.ToLower(html[start:]), "</title>")
	if end == -1 {
		return ""
	}

	return strings.TrimSpace(html[start : start+end])
}

func (cf *ContentFetcher) extractBodyContent(html string) string {
	lowerHTML := strings.ToLower(html)
	start := strings.Index(lowerHTML, "<body")
	if start == -1 {
		return html
	}

	rel := strings.Index(html[start:], ">")
	if rel == -1 {
		return html
	}
	start += rel + 1

	end := strings.Index(lowerHTML[start:], "</body>")
	if end == -1 {
		return html[start:]
	}

	return html[start : start+end]
}

func (cf *ContentFetcher) extractMetadata(html string) map[string]string {
	metadata := make(map[string]string)

	metaTags := []struct {
		name string
		attr string
	}{
		{"author", "author"},
		{"description", "description"},
		{"keywords", "keywords"},
		{"date", "date"},
		{"published", "article:published_time"},
		{"modified", "article:modified_time"},
	}

	for _, tag := range metaTags {
		if value := cf.findMetaContent(html, tag.attr); value != "" {
			metadata[tag.name] = value
		}
	}

	ogTags := []string{"og:title", "og:description", "og:image", "og:url", "og:type"}
	for _, tag := range ogTags {
		if value := cf.findMetaContent(html, tag); value != "" {
			metadata[strings.TrimPrefix(tag, "og:")] = value
		}
	}

	return metadata
}

func (cf *ContentFetcher) findMetaContent(html, property string) string {
	patterns := []string{
		fmt.Sprintf(`name="%s"`, property),
		fmt.Sprintf(`property="%s"`, property),
		fmt.Sprintf(`name='%s'`, property),
		fmt.Sprintf(`property='%s'`, property),
	}

	lowerHTML := strings.ToLower(html)

	for _, pattern := range patterns {
		idx := strings.Index(lowerHTML, pattern)
		if idx == -1 {
			continue
		}

		metaStart := strings.LastIndex(lowerHTML[:idx], "<meta")
		if metaStart == -1 {
			continue
		}

		metaEnd := strings.Index(lowerHTML[idx:], ">")
		if metaEnd == -1 {
			continue
		}
		metaEnd += idx

		metaTag := html[metaStart:metaEnd]

		contentStart := strings.Index(strings.ToLower(metaTag), `content="`)
		if contentStart == -1 {
			contentStart = strings.Index(strings.ToLower(metaTag), `content='`)
			if contentStart == -1 {
				continue
			}
			contentStart += 9
		} else {
			contentStart += 9
		}

		quote := metaTag[contentStart-1]
		contentEnd := strings.IndexByte(metaTag[contentStart:], quote)
		if contentEnd == -1 {
			continue
		}

		return strings.TrimSpace(metaTag[contentStart : contentStart+contentEnd])
	}

	return ""
}
