package oracle

import "net/url"

// Relay rewrites a target URL so the request goes through one request-relay
// endpoint. Relays are tried in slice order; the first entry is usually the
// identity relay (a direct request). Failure of one relay never prevents
// trying the next.
type Relay func(target string) string

// DefaultRelays is the fixed priority order used when none is injected:
// a direct request first, then two public request mirrors.
func DefaultRelays() []Relay {
	return []Relay{
		func(target string) string { return target },
		func(target string) string {
			return "https://api.allorigins.win/raw?url=" + url.QueryEscape(target)
		},
		func(target string) string {
			return "https://corsproxy.io/?url=" + url.QueryEscape(target)
		},
	}
}
