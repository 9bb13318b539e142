// Package emailpolicy validates signup email addresses: basic shape checking
// plus a short list of common disposable domains. Extend the list as needed
// or replace with a maintained data source.
package emailpolicy

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var disposableDomains = map[string]struct{}{
	"mailinator.com":    {},
	"10minutemail.com":  {},
	"temp-mail.org":     {},
	"guerrillamail.com": {},
	"yopmail.com":       {},
	"maildrop.cc":       {},
	"dispostable.com":   {},
	"fakeinbox.com":     {},
}

// ValidFormat reports whether the address has a plausible mailbox@domain.tld
// shape. Full RFC 5322 parsing is intentionally out of scope.
func ValidFormat(email string) bool {
	return emailRe.MatchString(email)
}

// IsDisposable reports whether the address belongs to a known throwaway
// email provider.
func IsDisposable(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	_, found := disposableDomains[domain]
	return found
}
