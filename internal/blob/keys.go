package blob

import (
	"fmt"
	"strings"
)

// ReportKey builds the blob key of an impact report artifact:
// `{report_id}/{report_id}.{ext}`.
func ReportKey(reportID, ext string) string {
	return fmt.Sprintf("%s/%s.%s", reportID, reportID, ext)
}

// ReportJSONKey builds the key of the impact report JSON payload
func ReportJSONKey(reportID string) string {
	return ReportKey(reportID, "json")
}

// DerivedKey substitutes the `.html` extension of a source document key
// with the extension of a rendered output, e.g. `a/b.html` -> `a/b.pdf`.
func DerivedKey(htmlFileKey, ext string) string {
	return strings.Replace(htmlFileKey, ".html", "."+ext, 1)
}

// ParentPrefix returns the directory-style prefix containing the key:
// everything up to and excluding the last path segment.
func ParentPrefix(key string) string {
	parts := strings.Split(key, "/")
	return strings.Join(parts[:len(parts)-1], "/")
}

// SplitKey splits a two-segment key into its directory and file name
func SplitKey(key string) (pathName, fileName string) {
	idx := strings.Index(key, "/")
	if idx < 0 {
		return "", key
	}
	return key[:idx], key[idx+1:]
}
