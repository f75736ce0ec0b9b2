package validators

import (
	"context"
	"net"
	"net/mail"
	"strings"
	"time"
)

// EmailChecker reports whether an address is acceptable for sign-up.
type EmailChecker func(ctx context.Context, email string) bool

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsEmailSyntaxValid accepts a bare address, without display name.
func IsEmailSyntaxValid(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// IsEmailDomainValid checks that the domain has an MX record or at least
// resolves to an address.
func IsEmailDomainValid(ctx context.Context, email string) bool {
	if !IsEmailSyntaxValid(email) {
		return false
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var r net.Resolver
	if mx, err := r.LookupMX(ctx, domain); err == nil && len(mx) > 0 {
		return true
	}
	if ips, err := r.LookupIPAddr(ctx, domain); err == nil && len(ips) > 0 {
		return true
	}
	return false
}

// SyntaxOnly skips the DNS lookup.
func SyntaxOnly(_ context.Context, email string) bool {
	return IsEmailSyntaxValid(email)
}
