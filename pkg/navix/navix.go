// Package navix is the public entry point for resolving Navi-X-style
// indirect media references. It wraps the internal NIPL interpreter with a
// facade that also knows how to open the durable, per-processor nookie
// store, so a caller with just a directory path doesn't need to reach into
// internal/nookie directly.
package navix

import (
	"context"
	"fmt"

	"github.com/rmt/navix-cli/internal/nipl"
	"github.com/rmt/navix-cli/internal/nookie"
)

// Descriptor is the terminal result of a resolve: a directly fetchable URL
// plus whatever player metadata the processor script reported along the way.
type Descriptor = nipl.Descriptor

// Fetcher and Logger are re-exported so callers providing their own HTTP
// transport or log sink don't need to import internal/nipl themselves.
type Fetcher = nipl.Fetcher
type Logger = nipl.Logger

// Options configures a Resolve call.
type Options struct {
	Platform string
	Version  string

	// NookieDir, if set and Nookies is nil, opens a badger-backed store
	// rooted at this directory, scoped to processorURL. The store is
	// closed before Resolve returns.
	NookieDir string
	// Nookies overrides NookieDir with a caller-supplied store (e.g. one
	// kept open across many Resolve calls for the same processor).
	Nookies nookie.Store

	Fetcher Fetcher
	Logger  Logger
	Cookies map[string]string
}

// Resolve runs the NIPL phase-driver state machine for sourceURL against
// processorURL and returns the terminal Descriptor.
func Resolve(ctx context.Context, sourceURL, processorURL string, opts Options) (*Descriptor, error) {
	nookies := opts.Nookies
	if nookies == nil && opts.NookieDir != "" {
		store, err := nookie.OpenBadgerStore(opts.NookieDir, processorURL)
		if err != nil {
			return nil, fmt.Errorf("open nookie store: %w", err)
		}
		defer store.Close()
		nookies = store
	}

	return nipl.Resolve(ctx, sourceURL, processorURL, nipl.Options{
		Platform: opts.Platform,
		Version:  opts.Version,
		Nookies:  nookies,
		Fetcher:  opts.Fetcher,
		Logger:   opts.Logger,
		Cookies:  opts.Cookies,
	})
}
