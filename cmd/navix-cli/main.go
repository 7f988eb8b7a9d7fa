// Command navix-cli resolves, plays, browses, and downloads Navi-X-style
// media playlists and NIPL processor scripts.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmt/navix-cli/internal/browser"
	"github.com/rmt/navix-cli/internal/config"
	"github.com/rmt/navix-cli/internal/download"
	"github.com/rmt/navix-cli/internal/fetcher"
	"github.com/rmt/navix-cli/internal/nipl"
	"github.com/rmt/navix-cli/internal/playlist"
	"github.com/rmt/navix-cli/internal/processor"
	"github.com/rmt/navix-cli/internal/shell"
	"github.com/rmt/navix-cli/pkg/navix"
)

// Exit codes for granular error handling.
const (
	ExitSuccess      = 0
	ExitNetworkError = 1
	ExitProcessError = 2
	ExitInvalidInput = 3
	ExitConfigError  = 4
	ExitFileIOError  = 5
	ExitScriptError  = 6
	ExitLoopDetected = 7
)

const appVersion = "1.0.0"

var (
	cfgFile      string
	verbose      bool
	quiet        bool
	platform     string
	nipVersion   string
	nookieDir    string
	browserName  string
	timeoutSecs  int
	downloadDir  string
	resumeFlag   bool
)

var rootCmd = &cobra.Command{
	Use:           "navix-cli",
	Short:         "Resolve, play, browse, and download Navi-X media playlists",
	Version:       appVersion,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if ee, ok := err.(*exitErr); ok {
			if ee.msg != "" && !quiet {
				fmt.Fprintf(os.Stderr, "%s\n", ee.msg)
			}
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitInvalidInput)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/navix-cli/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all non-result output")
	rootCmd.PersistentFlags().StringVar(&platform, "platform", "", "platform identity sent to processors (default from config)")
	rootCmd.PersistentFlags().StringVar(&nipVersion, "nipl-version", "", "client version sent to processors (default from config)")
	rootCmd.PersistentFlags().StringVar(&nookieDir, "nookie-dir", "", "directory for the durable nookie store (default from config)")
	rootCmd.PersistentFlags().StringVarP(&browserName, "browser", "b", "", "seed the session cookie jar from this browser (auto|chrome|firefox|safari|zen)")
	rootCmd.PersistentFlags().IntVar(&timeoutSecs, "timeout", 0, "request timeout in seconds (default from config)")

	downloadCmd.Flags().StringVarP(&downloadDir, "output", "o", "", "destination directory (default from config)")
	downloadCmd.Flags().BoolVar(&resumeFlag, "resume", false, "resume a partial download via HTTP Range")

	rootCmd.AddCommand(resolveCmd, playCmd, browseCmd, downloadCmd, inspectCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if platform != "" {
		cfg.NIPL.Platform = platform
	}
	if nipVersion != "" {
		cfg.NIPL.Version = nipVersion
	}
	if nookieDir != "" {
		cfg.Nookie.Dir = nookieDir
	}
	if timeoutSecs > 0 {
		cfg.Network.Timeout = timeoutSecs
	}
	if downloadDir != "" {
		cfg.Download.Dir = downloadDir
	}
	return cfg, nil
}

func newLogger() nipl.Logger {
	return &nipl.StderrLogger{Verbose: verbose, Quiet: quiet}
}

// seedCookies extracts browser cookies for targetURL when --browser was
// given; without the flag no cookies are seeded. When nothing usable turns
// up, the profiles actually present on this host are reported so the user
// can retry with a family that exists.
func seedCookies(targetURL, requestedBrowser string, customPaths map[string]string) map[string]string {
	if requestedBrowser == "" {
		return nil
	}
	extractor := browser.NewCookieExtractor(browser.BrowserType(requestedBrowser), customPaths)
	cookies, err := extractor.ExtractCookieMap(targetURL)
	if err != nil || len(cookies) == 0 {
		if !quiet {
			fmt.Fprintf(os.Stderr, "no %s cookies found for %s (browsers detected: %v)\n",
				requestedBrowser, targetURL, extractor.DetectAvailableBrowsers())
		}
		return nil
	}
	return cookies
}

func resolveDescriptor(ctx context.Context, cfg *config.Config, sourceURL, processorURL string) (*navix.Descriptor, error) {
	return navix.Resolve(ctx, sourceURL, processorURL, navix.Options{
		Platform:  cfg.NIPL.Platform,
		Version:   cfg.NIPL.Version,
		NookieDir: cfg.Nookie.Dir,
		Logger:    newLogger(),
		Cookies:   seedCookies(sourceURL, browserName, cfg.Browser.Paths),
	})
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <source-url> [processor-url]",
	Short: "Run the NIPL phase driver and print the resolved descriptor",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return exitError(ExitConfigError, "failed to load config: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Network.Timeout)*time.Second)
		defer cancel()

		processorURL := ""
		if len(args) == 2 {
			processorURL = args[1]
		}

		desc, err := resolveDescriptor(ctx, cfg, args[0], processorURL)
		if err != nil {
			return exitError(exitCodeFor(err), "resolve failed: %v", err)
		}

		fmt.Printf("url: %s\n", desc.URL)
		if desc.Referer != "" {
			fmt.Printf("referer: %s\n", desc.Referer)
		}
		if desc.Agent != "" {
			fmt.Printf("agent: %s\n", desc.Agent)
		}
		if desc.Player != "" {
			fmt.Printf("player: %s\n", desc.Player)
		}
		if desc.SWFURL != "" {
			fmt.Printf("swfurl: %s\n", desc.SWFURL)
		}
		if desc.PlayPath != "" {
			fmt.Printf("playpath: %s\n", desc.PlayPath)
		}
		return nil
	},
}

var playCmd = &cobra.Command{
	Use:   "play <source-url> [processor-url]",
	Short: "Resolve and print just the final URL, for piping into a media player",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return exitError(ExitConfigError, "failed to load config: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Network.Timeout)*time.Second)
		defer cancel()

		processorURL := ""
		if len(args) == 2 {
			processorURL = args[1]
		}

		desc, err := resolveDescriptor(ctx, cfg, args[0], processorURL)
		if err != nil {
			return exitError(exitCodeFor(err), "resolve failed: %v", err)
		}

		fmt.Println(desc.URL)
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <source-url> [processor-url]",
	Short: "Resolve and download the final URL to disk",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return exitError(ExitConfigError, "failed to load config: %v", err)
		}
		if cmd.Flags().Changed("resume") {
			cfg.Download.Resume = resumeFlag
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Network.Timeout)*time.Second)
		defer cancel()

		processorURL := ""
		if len(args) == 2 {
			processorURL = args[1]
		}

		desc, err := resolveDescriptor(ctx, cfg, args[0], processorURL)
		if err != nil {
			return exitError(exitCodeFor(err), "resolve failed: %v", err)
		}

		filename := filepath.Base(desc.URL)
		if filename == "" || filename == "." || filename == "/" {
			filename = "download"
		}

		res, err := download.Download(ctx, http.DefaultClient, desc.URL, cfg.Download.Dir, filename, download.Options{
			Resume: cfg.Download.Resume,
			Quiet:  quiet,
		})
		if err != nil {
			return exitError(ExitNetworkError, "download failed: %v", err)
		}

		if !quiet {
			fmt.Printf("saved to %s (%d bytes)\n", res.Path, res.Size)
		}
		return nil
	},
}

var browseCmd = &cobra.Command{
	Use:   "browse <playlist-url>",
	Short: "Open an interactive shell over a playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return exitError(ExitConfigError, "failed to load config: %v", err)
		}

		req, err := http.NewRequest(http.MethodGet, args[0], nil)
		if err != nil {
			return exitError(ExitInvalidInput, "invalid playlist URL: %v", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return exitError(ExitNetworkError, "failed to fetch playlist: %v", err)
		}
		defer resp.Body.Close()

		items, err := playlist.Parse(resp.Body)
		if err != nil {
			return exitError(ExitProcessError, "failed to parse playlist: %v", err)
		}

		resolver := func(ctx context.Context, sourceURL, processorURL string) (*navix.Descriptor, error) {
			return resolveDescriptor(ctx, cfg, sourceURL, processorURL)
		}

		b := shell.NewBrowser(args[0], items, resolver, cfg.Download.Dir)
		b.Run()
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <url>",
	Short: "Fetch a candidate scrape target and print its title/text/metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return exitError(ExitConfigError, "failed to load config: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Network.Timeout)*time.Second)
		defer cancel()

		mode := fetcher.FetchModeAuto
		switch cfg.Fetch.EnableJavaScript {
		case "always":
			mode = fetcher.FetchModeJS
		case "never":
			mode = fetcher.FetchModeStatic
		}

		cf := fetcher.NewContentFetcher()
		result, err := cf.Fetch(ctx, args[0], fetcher.FetchOptions{
			Mode:            mode,
			Timeout:         time.Duration(cfg.Fetch.JSTimeout) * time.Second,
			UserAgent:       cfg.Network.UserAgent,
			SkipBanners:     cfg.Fetch.SkipCookieBanners,
			BannerTimeout:   time.Duration(cfg.Fetch.BannerTimeout) * time.Second,
			WaitForSelector: cfg.Fetch.WaitForSelector,
		})
		if err != nil {
			return exitError(ExitNetworkError, "fetch failed: %v", err)
		}

		cp := processor.NewContentProcessor()
		processed, err := cp.Process(result.HTML, args[0], processor.ProcessOptions{
			MinContentLength: cfg.Fetch.MinContentLength,
			IncludeMetadata:  true,
			MetadataFields:   []string{"title", "author", "description", "date", "url"},
		})
		if err != nil {
			return exitError(ExitProcessError, "content processing failed: %v", err)
		}

		fmt.Printf("title: %s\n", processed.Title)
		if result.UsedJS {
			fmt.Println("rendered: javascript")
		}
		for k, v := range processed.Metadata {
			fmt.Printf("%s: %s\n", k, v)
		}
		fmt.Println("---")
		fmt.Println(cp.ToText(processed, 100))
		return nil
	},
}

// exitCodeFor maps NIPL's error kinds to the granular exit-code scheme.
func exitCodeFor(err error) int {
	switch err.(type) {
	case *nipl.NIPLLoopError:
		return ExitLoopDetected
	case *nipl.NIPLError, *nipl.ParseError:
		return ExitScriptError
	case *nipl.NetworkError:
		return ExitNetworkError
	default:
		return ExitProcessError
	}
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func exitError(code int, format string, args ...interface{}) *exitErr {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}
