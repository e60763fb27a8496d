// Package urlnorm rewrites Google Drive share links embedded in HTML into a
// direct-content form that browsers can load inline. Drive's interactive
// viewer pages do not serve raw image bytes, so <img src="..."> references to
// share links render as broken images unless rewritten.
package urlnorm

import "regexp"

const directHost = "lh3.googleusercontent.com"

// quotedDriveURL matches a quoted Drive URL immediately preceded by '='. This
// covers both src="..."/src='...' attribute values and quoted string
// assignments in inline scripts. Best-effort text substitution, not an HTML
// parse.
var quotedDriveURL = regexp.MustCompile(`=(["'])(https?://drive\.google\.com/[^"']*)(["'])`)

// Accepted share-link shapes, each capturing the file ID.
var fileIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`open\?id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`uc\?[^"']*?id=([a-zA-Z0-9_-]+)`),
}

// Normalize rewrites recognised Drive share URLs in html to their
// direct-content form and leaves everything else untouched. It never fails:
// unmatched or malformed text passes through as-is. The transform is
// idempotent because rewritten URLs no longer carry the Drive host.
func Normalize(html string) string {
	return quotedDriveURL.ReplaceAllStringFunc(html, func(match string) string {
		sub := quotedDriveURL.FindStringSubmatch(match)
		open, rawURL, close := sub[1], sub[2], sub[3]
		if open != close {
			return match
		}
		for _, p := range fileIDPatterns {
			if m := p.FindStringSubmatch(rawURL); m != nil {
				return "=" + open + "https://" + directHost + "/d/" + m[1] + close
			}
		}
		return match
	})
}
