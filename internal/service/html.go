package service

import (
	"fmt"
	"regexp"
	"strings"
)

var tagPattern = map[string]*regexp.Regexp{
	"h1": regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`),
	"h4": regexp.MustCompile(`(?is)<h4[^>]*>(.*?)</h4>`),
}

var innerTagPattern = regexp.MustCompile(`<[^>]+>`)

// firstTagText returns the text of the first occurrence of the given tag,
// with any nested markup stripped. The second return reports whether the
// tag was found at all.
func firstTagText(html []byte, tag string) (string, bool) {
	re, ok := tagPattern[tag]
	if !ok {
		panic(fmt.Sprintf("unsupported tag %q", tag))
	}
	match := re.FindSubmatch(html)
	if match == nil {
		return "", false
	}
	text := innerTagPattern.ReplaceAllString(string(match[1]), "")
	return strings.TrimSpace(text), true
}
