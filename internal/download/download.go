// Package download implements the resumable file downloader used by the
// interactive shell and the `download` subcommand.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
)

// Options configures one download.
type Options struct {
	// Resume, if true and a same-named file already exists, issues a Range
	// request to append to it instead of numbering a new file.
	Resume bool
	// Quiet suppresses the progress bar.
	Quiet bool
}

// Result reports where the file ended up and how large it turned out to be.
type Result struct {
	Path string
	Size int64
}

// Download fetches url into destDir/filename. If a file of that name
// already exists and Resume is not requested, the destination is numbered
// (name, name.1, name.2, ...); with Resume it issues a Range request and
// appends.
func Download(ctx context.Context, client *http.Client, url, destDir, filename string, opts Options) (*Result, error) {
	if client == nil {
		client = http.DefaultClient
	}
	dest := filepath.Join(destDir, filename)

	var resumeFrom int64
	openFlag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if opts.Resume {
		if info, err := os.Stat(dest); err == nil {
			resumeFrom = info.Size()
			openFlag = os.O_WRONLY | os.O_APPEND
		}
	} else {
		dest = nextAvailableName(dest)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	if resumeFrom > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", resumeFrom))
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resumeFrom > 0 && resp.StatusCode != http.StatusPartialContent {
		// server ignored the Range request; start over from scratch.
		resumeFrom = 0
		openFlag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	out, err := os.OpenFile(dest, openFlag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dest, err)
	}
	defer out.Close()

	var writer io.Writer = out
	if !opts.Quiet {
		total := resp.ContentLength
		if total > 0 && resumeFrom > 0 {
			total += resumeFrom
		}
		bar := progressbar.DefaultBytes(total, "downloading "+filepath.Base(dest))
		writer = io.MultiWriter(out, bar)
	}

	n, err := io.Copy(writer, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", dest, err)
	}

	return &Result{Path: dest, Size: resumeFrom + n}, nil
}

// nextAvailableName returns path unchanged if it doesn't exist, or
// path.1, path.2, ... for the first name that's free.
func nextAvailableName(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s.%d", path, i)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
