package calendar

import (
	"regexp"
	"strings"
)

var (
	urlPattern = regexp.MustCompile(`https?://[^\s<>"{}|\\^[\]` + "`" + `]+`)

	// conferencingHosts are preferred over any other link in the text.
	conferencingHosts = []string{
		"meet.jit.si",
		"zoom",
		"meet.google",
		"teams.microsoft",
		"webex",
		"gotomeeting",
		"whereby",
	}
)

// ExtractMeetingLink returns the first conferencing URL found in text, or
// the first URL of any kind, or "".
func ExtractMeetingLink(text string) string {
	if link := conferencingLink(text); link != "" {
		return link
	}
	if match := urlPattern.FindString(text); match != "" {
		return trimLinkPunctuation(match)
	}
	return ""
}

// conferencingLink returns the first URL in text on a known conferencing
// host, or "".
func conferencingLink(text string) string {
	for _, match := range urlPattern.FindAllString(text, -1) {
		lower := strings.ToLower(match)
		for _, host := range conferencingHosts {
			if strings.Contains(lower, host) {
				return trimLinkPunctuation(match)
			}
		}
	}
	return ""
}

// trimLinkPunctuation drops sentence punctuation glued to the end of a URL
// ("join at https://x.test/abc.").
func trimLinkPunctuation(u string) string {
	return strings.TrimRight(u, ".,;:!?)'")
}

// discoverURL fills e.URL from LOCATION, then DESCRIPTION, when it is empty.
// Any URL in LOCATION counts; DESCRIPTION only yields conferencing links so
// a linked agenda doc does not turn the row into a join.
func discoverURL(e *Event) {
	if e.URL != "" {
		return
	}
	if link := ExtractMeetingLink(e.Location); link != "" {
		e.URL = link
		return
	}
	e.URL = conferencingLink(e.Description)
}
