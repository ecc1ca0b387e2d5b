package tunnel

import (
	"regexp"
	"strconv"
)

// PathSuffixPattern matches the portion of the gateway's WebSocket
// upgrade path following the configured prefix; the single captured
// group is the raw UpstreamHint string. NewPathPattern anchors it to a
// concrete prefix.
var PathSuffixPattern = `(.+[:=\-]\d+)`

// NewPathPattern builds the full path-matching regexp for a gateway
// listening with the given path prefix (already stripped of any
// trailing slash).
func NewPathPattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + "/" + PathSuffixPattern + "$")
}

// UpstreamHint is a host±port pair extracted from the request URL path.
// Either field may be empty; the delimiter is whichever of ':', '=', '-'
// split the string.
type UpstreamHint struct {
	Host string
	Port string
}

var hintSplit = regexp.MustCompile(`^(.*)[:=\-](\d*)$`)

// ParseUpstreamHint splits raw on the last of ':', '=', or '-'. It never
// fails: any string without one of those delimiters yields a hint whose
// Host is the whole string and whose Port is empty.
func ParseUpstreamHint(raw string) UpstreamHint {
	if m := hintSplit.FindStringSubmatch(raw); m != nil {
		return UpstreamHint{Host: m[1], Port: m[2]}
	}
	return UpstreamHint{Host: raw}
}

// Empty reports whether both fields are unset.
func (h UpstreamHint) Empty() bool { return h.Host == "" && h.Port == "" }

// ResolveHost returns the hint's host, falling back to fallback when the
// hint didn't carry one.
func (h UpstreamHint) ResolveHost(fallback string) string {
	if h.Host != "" {
		return h.Host
	}
	return fallback
}

// ResolvePort returns the hint's port, falling back to fallback when the
// hint didn't carry one or didn't parse as an integer.
func (h UpstreamHint) ResolvePort(fallback int) int {
	if h.Port != "" {
		if p, err := strconv.Atoi(h.Port); err == nil {
			return p
		}
	}
	return fallback
}
