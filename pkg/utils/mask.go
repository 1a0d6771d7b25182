package utils

import (
	"net/url"
	"regexp"
)

var userinfoPasswordRegex = regexp.MustCompile(`(://[^:/@]*:)([^@/]+)(@)`)

// MaskURL hides the password of a connection URL (nats://, redis://, http://)
// so it can be logged. Inputs that do not parse are masked by pattern.
func MaskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return userinfoPasswordRegex.ReplaceAllString(raw, "${1}xxxxx${3}")
	}
	return u.Redacted()
}
