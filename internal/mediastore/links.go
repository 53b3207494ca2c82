package mediastore

import (
	"fmt"
	"regexp"
	"strings"
)

// Share links follow the /d/<key>/view grammar so keys survive copy and
// paste through chat clients that mangle query strings.
var (
	pathKeyPattern  = regexp.MustCompile(`/d/([A-Za-z0-9_.-]+)`)
	queryKeyPattern = regexp.MustCompile(`[?&]id=([A-Za-z0-9_.-]+)`)
	bareKeyPattern  = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

// BuildShareLink assembles the canonical share link for an object key.
func BuildShareLink(publicURL, key string) string {
	return fmt.Sprintf("%s/d/%s/view", strings.TrimSuffix(publicURL, "/"), key)
}

// ExtractKey pulls the object key out of a share link. It accepts the
// canonical /d/<key>/view form, an id query parameter, and a bare key as a
// last resort. Returns false when no key can be recovered.
func ExtractKey(link string) (string, bool) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", false
	}
	if match := pathKeyPattern.FindStringSubmatch(link); match != nil {
		return match[1], true
	}
	if match := queryKeyPattern.FindStringSubmatch(link); match != nil {
		return match[1], true
	}
	if !strings.ContainsAny(link, "/?&=") && bareKeyPattern.MatchString(link) {
		return link, true
	}
	return "", false
}
