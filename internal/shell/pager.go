package shell

import (
	"io"
	"os/exec"
	"runtime"
	"strings"
)

// pagerCommand is `less -eFX` everywhere except Windows, where `less`
// usually isn't installed.
func pagerCommand() []string {
	if runtime.GOOS == "windows" {
		return []string{"more"}
	}
	return []string{"less", "-eFX"}
}

// Page writes text through the configured pager. If the pager can't be
// started (not installed, no controlling terminal), it falls back to
// writing straight to w.
func Page(w io.Writer, text string) error {
	cmdline := pagerCommand()
	cmd := exec.Command(cmdline[0], cmdline[1:]...)
	cmd.Stdout = w
	stdin, err := cmd.StdinPipe()
	if err != nil {
		_, werr := io.Copy(w, strings.NewReader(text))
		return werr
	}
	if err := cmd.Start(); err != nil {
		_, werr := io.Copy(w, strings.NewReader(text))
		return werr
	}
	io.Copy(stdin, strings.NewReader(text))
	stdin.Close()
	return cmd.Wait()
}
