package nipl

import (
	"fmt"
	"os"
)

// Logger is the small logging contract the interpreter expects: processor
// scripts chatter through debug/print, and the phase driver reports
// failures through Errorf.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger discards everything. It is the default when no Logger is given
// to Resolve.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

// StderrLogger writes to os.Stderr, gated by Verbose/Quiet the way the CLI
// gates its own output. Info and Error are unconditional unless Quiet.
type StderrLogger struct {
	Verbose bool
	Quiet   bool
}

func (l *StderrLogger) Debugf(format string, args ...any) {
	if l.Verbose && !l.Quiet {
		fmt.Fprintf(os.Stderr, "debug: "+format+"\n", args...)
	}
}

func (l *StderrLogger) Infof(format string, args ...any) {
	if !l.Quiet {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

func (l *StderrLogger) Errorf(format string, args ...any) {
	if !l.Quiet {
		fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	}
}
