package nipl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rmt/navix-cli/internal/nookie"
)

const defaultUserAgent = "Mozilla/5.0 (Windows; U; Windows NT 5.1; en-GB; rv:1.9.0.3) Gecko/2008092417 Firefox/3.0.3"

// Namespace is the NIPL variable namespace: plain scalar variables plus the
// cookies/headers/s_headers/nookies collections and the magic scalars
// (s_method, s_action, phase, nomatch) that get synthesized or validated
// rather than stored directly.
type Namespace struct {
	vars       map[string]string
	sHeaders   map[string]string
	headers    map[string]string
	cookies    map[string]string
	reportVars map[string]string
	nookies    nookie.Store

	phase       int
	matched     bool
	matchGroups []string
}

// NewNamespace seeds a fresh namespace for one resolve session.
func NewNamespace(sourceURL string, nookies nookie.Store) *Namespace {
	ns := &Namespace{
		vars:    map[string]string{"s_url": sourceURL},
		nookies: nookies,
	}
	ns.InitVars()
	return ns
}

// InitVars resets the s_* request variables ahead of a phase's script body
// and forgets the live match, without deleting the stored v1..v9 values:
// everything outside the s_* set — url, regex, v1..v9, htmRaw, player, ... —
// persists as plain variables across phases, so a later phase's script can
// still read the previous phase's captures by name. Only a fresh match or
// scrape clears them.
func (ns *Namespace) InitVars() {
	ns.vars["s_method"] = "get"
	ns.vars["s_action"] = "read"
	ns.vars["s_agent"] = defaultUserAgent
	ns.vars["s_referer"] = ""
	ns.vars["s_cookie"] = ""
	ns.vars["s_postdata"] = ""
	ns.sHeaders = map[string]string{}
	ns.headers = map[string]string{}
	ns.cookies = map[string]string{}
	ns.reportVars = map[string]string{}
	ns.matched = false
	ns.matchGroups = nil
}

func (ns *Namespace) clearMatch() {
	ns.matched = false
	ns.matchGroups = nil
	for i := 1; i <= 9; i++ {
		delete(ns.vars, "v"+strconv.Itoa(i))
	}
}

// setMatchResult records a match attempt's outcome: groups == nil means no
// match (nomatch becomes "1"); otherwise the captures populate v1..vN.
func (ns *Namespace) setMatchResult(groups []string) {
	ns.clearMatch()
	if groups == nil {
		return
	}
	ns.matched = true
	ns.matchGroups = groups
	for i, g := range groups {
		ns.vars[fmt.Sprintf("v%d", i+1)] = g
	}
}

// Phase returns the current phase counter (0 on the first processor call).
func (ns *Namespace) Phase() int { return ns.phase }

// AdvancePhase increments the monotonic phase counter after a report.
func (ns *Namespace) AdvancePhase() { ns.phase++ }

// ReportVars returns the accumulated report-variable map for the phase
// currently executing. report_val and the action=geturl scrape path write
// into it directly.
func (ns *Namespace) ReportVars() map[string]string { return ns.reportVars }

// MatchCaptures returns the most recent match/scrape's capture groups, or
// nil if nothing has matched since the last clear.
func (ns *Namespace) MatchCaptures() []string {
	if !ns.matched {
		return nil
	}
	return ns.matchGroups
}

// SHeaders returns the extra request headers accumulated via s_headers.*.
func (ns *Namespace) SHeaders() map[string]string { return ns.sHeaders }

// SetCookies / SetHeaders install the read-only cookies.*/headers.*
// collections after a scrape response comes back.
func (ns *Namespace) SetCookies(m map[string]string) { ns.cookies = m }
func (ns *Namespace) SetHeaders(m map[string]string) { ns.headers = m }

// Get resolves a variable through dotted-collection dispatch, then
// magic-getter dispatch, then a plain lookup.
func (ns *Namespace) Get(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, '.'); i >= 0 {
		if v, ok := ns.getCollection(name[:i], name[i+1:]); ok {
			return v
		}
	}
	if v, ok := ns.readMagic(name); ok {
		return v
	}
	return ns.vars[name]
}

func (ns *Namespace) getCollection(coll, key string) (string, bool) {
	switch coll {
	case "cookies":
		return ns.cookies[key], true
	case "headers":
		return ns.headers[key], true
	case "s_headers":
		return ns.sHeaders[key], true
	case "nookies":
		if ns.nookies == nil {
			return "", true
		}
		return ns.nookies.Get(key), true
	}
	return "", false
}

func (ns *Namespace) readMagic(name string) (string, bool) {
	switch name {
	case "phase":
		return strconv.Itoa(ns.phase), true
	case "nomatch":
		if ns.matched {
			return "0", true
		}
		return "1", true
	}
	return "", false
}

// Expand implements the universal argument rule: a leading single quote
// marks the rest of the token as a literal; anything else is a variable
// name resolved through Get.
func (ns *Namespace) Expand(token string) string {
	if strings.HasPrefix(token, "'") {
		return token[1:]
	}
	return ns.Get(token)
}

// Set assigns name to the expansion of raw, honoring dotted-collection and
// magic-setter dispatch and validation.
func (ns *Namespace) Set(name, raw string) error {
	name = strings.TrimSpace(name)
	value := ns.Expand(raw)
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return ns.setCollection(name[:i], name[i+1:], value)
	}
	if handled, err := ns.writeMagic(name, value); handled {
		return err
	}
	ns.vars[name] = value
	return nil
}

func (ns *Namespace) setCollection(coll, key, value string) error {
	switch coll {
	case "s_headers":
		ns.sHeaders[key] = value
		return nil
	case "nookies":
		if ns.nookies == nil {
			return newNIPLError("nookie store not configured")
		}
		expiry := ns.vars["nookie_expires"]
		if err := ns.nookies.Set(key, value, expiry); err != nil {
			return newNIPLError("nookies.%s: %v", key, err)
		}
		return nil
	case "cookies", "headers":
		return newNIPLError("variable %s.%s is read-only", coll, key)
	}
	return newNIPLError("unknown variable collection: %s", coll)
}

// writeMagic validates and stores a magic-setter target. handled is false
// when name isn't a magic setter, so the caller falls through to plain
// storage.
func (ns *Namespace) writeMagic(name, value string) (handled bool, err error) {
	switch name {
	case "s_method":
		v := strings.ToLower(strings.TrimSpace(value))
		if v != "get" && v != "post" {
			return true, newNIPLError("invalid value for s_method: %q", value)
		}
		ns.vars["s_method"] = v
		return true, nil
	case "s_action":
		v := strings.ToLower(strings.TrimSpace(value))
		if v != "read" && v != "headers" && v != "geturl" {
			return true, newNIPLError("invalid value for s_action: %q", value)
		}
		ns.vars["s_action"] = v
		return true, nil
	case "phase", "nomatch":
		return true, newNIPLError("variable %s is read-only", name)
	}
	return false, nil
}

// SetVar stores a raw value unconditionally, bypassing expand and magic
// dispatch. concat/replace/unescape/scrape use this to write back derived
// values.
func (ns *Namespace) SetVar(name, value string) {
	ns.vars[name] = value
}

// RawVar reads a stored literal value with no magic dispatch at all, used
// for internal lookups like the active regex.
func (ns *Namespace) RawVar(name string) string {
	return ns.vars[name]
}
