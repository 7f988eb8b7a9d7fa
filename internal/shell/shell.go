// Package shell implements the interactive playlist browser, built on
// dolthub/ishell.
package shell

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/dolthub/ishell"

	"github.com/rmt/navix-cli/internal/download"
	"github.com/rmt/navix-cli/internal/playlist"
	"github.com/rmt/navix-cli/pkg/navix"
)

// Resolver resolves a playlist item's (sourceURL, processorURL) pair into a
// final Descriptor: pkg/navix.Resolve's signature without its Options
// argument, which the caller binds in.
type Resolver func(ctx context.Context, sourceURL, processorURL string) (*navix.Descriptor, error)

// frame is one level of playlist navigation: the items at that level and
// the breadcrumb name that got us here.
type frame struct {
	name  string
	items []playlist.Item
}

// Browser drives an interactive session over a root Playlist, descending
// into nested playlist items and playing/downloading leaf items.
type Browser struct {
	client      *http.Client
	resolve     Resolver
	downloadDir string

	stack []frame
}

// NewBrowser starts a browser rooted at items (typically the result of
// fetching and playlist.Parse-ing the top-level playlist URL).
func NewBrowser(name string, items []playlist.Item, resolve Resolver, downloadDir string) *Browser {
	return &Browser{
		client:      http.DefaultClient,
		resolve:     resolve,
		downloadDir: downloadDir,
		stack:       []frame{{name: name, items: items}},
	}
}

func (b *Browser) current() frame { return b.stack[len(b.stack)-1] }

func (b *Browser) item(n int) (playlist.Item, error) {
	items := b.current().items
	if n < 0 || n >= len(items) {
		return playlist.Item{}, fmt.Errorf("no item %d in this playlist", n)
	}
	return items[n], nil
}

func (b *Browser) prompt() string {
	names := make([]string, len(b.stack))
	for i, f := range b.stack {
		names[i] = stripColorTags(f.name)
	}
	return strings.Join(names, "/") + "> "
}

// stripColorTags removes [COLOR ...]/[/COLOR] markup from display names.
func stripColorTags(name string) string {
	for {
		start := strings.Index(name, "[COLOR")
		if start < 0 {
			start = strings.Index(name, "[/COLOR")
			if start < 0 {
				return name
			}
		}
		end := strings.Index(name[start:], "]")
		if end < 0 {
			return name
		}
		name = name[:start] + name[start+end+1:]
	}
}

func (b *Browser) descend(ctx context.Context, n int) error {
	it, err := b.item(n)
	if err != nil {
		return err
	}
	if it.Type != playlist.TypePlaylist {
		return fmt.Errorf("item %d is not a playlist", n)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, it.URL, nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch nested playlist: %w", err)
	}
	defer resp.Body.Close()
	items, err := playlist.Parse(resp.Body)
	if err != nil {
		return fmt.Errorf("parse nested playlist: %w", err)
	}
	b.stack = append(b.stack, frame{name: it.Name, items: items})
	return nil
}

func (b *Browser) ascend() error {
	if len(b.stack) <= 1 {
		return fmt.Errorf("already at the top level")
	}
	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

func (b *Browser) play(ctx context.Context, n int) (*navix.Descriptor, error) {
	it, err := b.item(n)
	if err != nil {
		return nil, err
	}
	if b.resolve == nil {
		return &navix.Descriptor{URL: it.URL}, nil
	}
	return b.resolve(ctx, it.URL, it.Extra["processor"])
}

func (b *Browser) download(ctx context.Context, n int) (*download.Result, error) {
	it, err := b.item(n)
	if err != nil {
		return nil, err
	}
	desc, err := b.play(ctx, n)
	if err != nil {
		return nil, err
	}
	filename := it.Name
	if filename == "" {
		filename = "download"
	}
	return download.Download(ctx, b.client, desc.URL, b.downloadDir, filename, download.Options{})
}

// Run starts the interactive shell loop and blocks until the user exits.
func (b *Browser) Run() {
	sh := ishell.New()
	sh.SetPrompt(b.prompt())

	refreshPrompt := func(c *ishell.Context) { sh.SetPrompt(b.prompt()) }

	sh.AddCmd(&ishell.Cmd{
		Name: "ls",
		Help: "list items in the current playlist",
		Func: func(c *ishell.Context) {
			var b2 strings.Builder
			for i, it := range b.current().items {
				fmt.Fprintf(&b2, "[%3d] (%s) %s\n", i, it.Type, stripColorTags(it.Name))
			}
			if err := Page(os.Stdout, b2.String()); err != nil {
				c.Println(err)
			}
		},
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "info",
		Help: "show details for item <n>",
		Func: func(c *ishell.Context) {
			n, err := parseIndex(c.Args)
			if err != nil {
				c.Println(err)
				return
			}
			it, err := b.item(n)
			if err != nil {
				c.Println(err)
				return
			}
			var b2 strings.Builder
			fmt.Fprintln(&b2, stripColorTags(it.Name))
			if it.Description != "" {
				fmt.Fprintln(&b2, it.Description)
			}
			fmt.Fprintf(&b2, "[URL=%s]\n", it.URL)
			if err := Page(os.Stdout, b2.String()); err != nil {
				c.Println(err)
			}
		},
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "cd",
		Help: "descend into playlist item <n>",
		Func: func(c *ishell.Context) {
			n, err := parseIndex(c.Args)
			if err != nil {
				c.Println(err)
				return
			}
			if err := b.descend(context.Background(), n); err != nil {
				c.Println(err)
				return
			}
			refreshPrompt(c)
		},
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "up",
		Help: "return to the parent playlist",
		Func: func(c *ishell.Context) {
			if err := b.ascend(); err != nil {
				c.Println(err)
				return
			}
			refreshPrompt(c)
		},
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "play",
		Help: "resolve and print the final URL for item <n>",
		Func: func(c *ishell.Context) {
			n, err := parseIndex(c.Args)
			if err != nil {
				c.Println(err)
				return
			}
			desc, err := b.play(context.Background(), n)
			if err != nil {
				c.Println(err)
				return
			}
			c.Println(desc.URL)
		},
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "download",
		Help: "resolve and download item <n>",
		Func: func(c *ishell.Context) {
			n, err := parseIndex(c.Args)
			if err != nil {
				c.Println(err)
				return
			}
			res, err := b.download(context.Background(), n)
			if err != nil {
				c.Println(err)
				return
			}
			c.Printf("saved to %s (%d bytes)\n", res.Path, res.Size)
		},
	})

	sh.Run()
}

func parseIndex(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one item number")
	}
	var n int
	if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid item number: %s", args[0])
	}
	return n, nil
}
