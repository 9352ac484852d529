package transport

import "strings"

// Resolve joins baseURL and path with a single slash. With a nil path baseURL
// is returned unchanged. Exactly one trailing slash is removed from baseURL
// and one leading slash from path; nothing else is normalized or escaped.
func Resolve(baseURL string, path *string) string {
	if path == nil {
		return baseURL
	}
	base := strings.TrimSuffix(baseURL, "/")
	p := strings.TrimPrefix(*path, "/")
	return base + "/" + p
}
