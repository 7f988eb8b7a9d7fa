package nipl

import (
	"context"

	"github.com/rmt/navix-cli/internal/nookie"
)

const (
	defaultPlatform = "unknown"
	defaultVersion  = "3.7"
)

// Options configures a Resolve call. All fields are optional; nil/empty
// values fall back to sensible defaults.
type Options struct {
	Platform string
	Version  string
	Nookies  nookie.Store
	Fetcher  Fetcher           // nil uses the default net/http fetcher
	Logger   Logger            // nil discards all logging
	Cookies  map[string]string // seeds the session cookie jar, e.g. from a local browser
}

// Resolve is the public entry point for the NIPL core: given a source URL
// and a processor URL, it runs the phase-driver state machine and returns
// the terminal Descriptor, or one of NIPLError/NIPLLoopError/NetworkError/
// ParseError.
func Resolve(ctx context.Context, sourceURL, processorURL string, opts Options) (*Descriptor, error) {
	if processorURL == "" {
		return &Descriptor{URL: sourceURL}, nil
	}

	platform := opts.Platform
	if platform == "" {
		platform = defaultPlatform
	}
	version := opts.Version
	if version == "" {
		version = defaultVersion
	}
	log := opts.Logger
	if log == nil {
		log = NopLogger{}
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		f, err := newHTTPFetcher()
		if err != nil {
			return nil, err
		}
		fetcher = f
	}
	nookies := opts.Nookies
	if nookies == nil {
		nookies = nookie.NewMemoryStore()
	}

	if seeder, ok := fetcher.(cookieSeeder); ok && len(opts.Cookies) > 0 {
		seeder.SeedCookies(sourceURL, opts.Cookies)
	}

	sess := &session{
		sourceURL:    sourceURL,
		processorURL: processorURL,
		platform:     platform,
		version:      version,
		log:          log,
		fetcher:      fetcher,
		ns:           NewNamespace(sourceURL, nookies),
		seen:         map[string]struct{}{},
	}
	return sess.run(ctx)
}
