package xtream

import (
	"net/url"
	"regexp"

	"golang.org/x/net/idna"
)

var urlShape = regexp.MustCompile(`(?i)^(?:http|ftp)s?://` +
	`(?:(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+(?:[A-Z]{2,6}\.?|[A-Z0-9-]{2,}\.?)|` +
	`localhost|` +
	`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})` +
	`(?::\d+)?` +
	`(?:/?|[/?]\S+)$`)

// ValidURL reports whether raw looks like an http(s) or ftp(s) URL with a
// plausible host. Internationalised host names are checked in their ASCII form.
func ValidURL(raw string) bool {
	if raw == "" {
		return false
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}

	host := u.Hostname()
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return false
	}
	if ascii != host {
		if port := u.Port(); port != "" {
			u.Host = ascii + ":" + port
		} else {
			u.Host = ascii
		}
		raw = u.String()
	}

	return urlShape.MatchString(raw)
}
