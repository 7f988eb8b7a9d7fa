package nipl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
)

// ScrapeRequest is the transient bundle describing one HTTP call driven by
// either the s_* variables (a `scrape` command) or the processor fetch
// itself.
type ScrapeRequest struct {
	URL       string
	Method    string // "get" or "post"
	Action    string // "read", "headers", or "geturl"
	UserAgent string
	Referer   string
	Cookie    string // literal Cookie header
	PostData  string
	Headers   map[string]string
}

// ScrapeResponse is the result of one HTTP call.
type ScrapeResponse struct {
	Content  string
	FinalURL string
	Headers  map[string]string
	Cookies  map[string]string
}

// Fetcher performs a single HTTP request as described by a ScrapeRequest.
// The default implementation shares one cookie jar across every scrape and
// processor call within a session; tests supply a stub.
type Fetcher interface {
	Fetch(ctx context.Context, req ScrapeRequest) (*ScrapeResponse, error)
}

// cookieSeeder lets a caller pre-populate a Fetcher's cookie jar, e.g. from
// the local browser's logged-in session, before the first scrape.
type cookieSeeder interface {
	SeedCookies(targetURL string, cookies map[string]string)
}

type httpFetcher struct {
	client *http.Client
}

func newHTTPFetcher() (*httpFetcher, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &httpFetcher{client: &http.Client{Jar: jar}}, nil
}

func (f *httpFetcher) SeedCookies(targetURL string, cookies map[string]string) {
	u, err := url.Parse(targetURL)
	if err != nil || f.client.Jar == nil {
		return
	}
	list := make([]*http.Cookie, 0, len(cookies))
	for k, v := range cookies {
		list = append(list, &http.Cookie{Name: k, Value: v})
	}
	f.client.Jar.SetCookies(u, list)
}

func (f *httpFetcher) Fetch(ctx context.Context, req ScrapeRequest) (*ScrapeResponse, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = "GET"
	}
	var body io.Reader
	if method == "POST" && req.PostData != "" {
		body = strings.NewReader(req.PostData)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	agent := req.UserAgent
	if agent == "" {
		agent = defaultUserAgent
	}
	httpReq.Header.Set("User-Agent", agent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if req.Referer != "" {
		httpReq.Header.Set("Referer", req.Referer)
	}
	if req.Cookie != "" {
		httpReq.Header.Set("Cookie", req.Cookie)
	}
	if method == "POST" {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	out := &ScrapeResponse{
		Headers: flattenHeader(httpResp.Header),
		Cookies: map[string]string{},
	}
	if httpResp.Request != nil && httpResp.Request.URL != nil {
		out.FinalURL = httpResp.Request.URL.String()
		if f.client.Jar != nil {
			for _, c := range f.client.Jar.Cookies(httpResp.Request.URL) {
				out.Cookies[c.Name] = c.Value
			}
		}
	} else {
		out.FinalURL = req.URL
	}

	action := strings.ToLower(req.Action)
	if action == "" {
		action = "read"
	}
	if action == "read" {
		data, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}
		out.Content = string(data)
	} else {
		io.Copy(io.Discard, httpResp.Body)
	}
	return out, nil
}

func flattenHeader(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[strings.ToLower(k)] = h.Get(k)
	}
	return out
}
