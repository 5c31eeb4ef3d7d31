// Package command parses the argument string of a slash command into a
// structured intent.
package command

import (
	"regexp"
	"strings"
)

// Args is the parsed form of a slash command's argument string, e.g.
// "<@U123|alice> write a chapter".
type Args struct {
	AddressedID   string // Slack UID of a mentioned user, "" when absent
	AddressedName string
	Body          string
	HasBody       bool
}

// mentionRE matches Slack's escaped mention form <@Uxxxxxxxx|name>.
var mentionRE = regexp.MustCompile(`<@(U\w+)\|([^>]+)>`)

// Parse extracts an optional addressed-user mention and the free-text body.
// HasBody distinguishes "no body" from an empty one: a mention with nothing
// after it must select query mode, not set an empty goal.
func Parse(raw string) Args {
	var a Args
	if m := mentionRE.FindStringSubmatchIndex(raw); m != nil {
		a.AddressedID = raw[m[2]:m[3]]
		a.AddressedName = raw[m[4]:m[5]]
		raw = raw[m[1]:] // everything after the mention
	}
	if body := strings.TrimSpace(raw); body != "" {
		a.Body = body
		a.HasBody = true
	}
	return a
}
