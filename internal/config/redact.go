// internal/config/redact.go
package config

import (
	"net/url"
	"regexp"
	"strings"
)

// uriCredentials matches the userinfo section of a mongodb://-style URI.
// Used as a fallback for strings that do not parse as URLs (error text
// with an embedded connection string, for example).
var uriCredentials = regexp.MustCompile(`(mongodb(?:\+srv)?://)([^@/\s]+)@`)

// Redact removes embedded credentials from connection strings. The input
// may be a bare URI or arbitrary text containing one; every occurrence is
// rewritten so neither username nor password leaks into display or logs.
func Redact(s string) string {
	return uriCredentials.ReplaceAllString(s, "${1}***@")
}

// StripPassword removes only the password from a connection URI, keeping
// the username, and reports the password it removed. Non-URI inputs are
// returned unchanged.
func StripPassword(uri string) (stripped, password string) {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil {
		return uri, ""
	}
	pw, ok := u.User.Password()
	if !ok {
		return uri, ""
	}
	u.User = url.User(u.User.Username())
	return u.String(), pw
}

// WithPassword injects a password into a connection URI that carries a
// username but no password.
func WithPassword(uri, password string) string {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil || password == "" {
		return uri
	}
	if _, ok := u.User.Password(); ok {
		return uri
	}
	name := u.User.Username()
	if name == "" {
		return uri
	}
	u.User = url.UserPassword(name, password)
	return u.String()
}

// NeedsPassword reports whether a URI names a user but carries no
// password, meaning the password lives in the keyring.
func NeedsPassword(uri string) bool {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil || u.User.Username() == "" {
		return false
	}
	_, ok := u.User.Password()
	return !ok
}

// RedactError formats an error for display with credentials removed.
func RedactError(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimSpace(Redact(err.Error()))
}
