package truelicense

import (
	"unicode"

	"github.com/zzq1314zll/truelicense/internal/messages"
)

// PlainPasswordProtection is the simplest PasswordProtection: it just hands
// back a copy of the secret on every access. Real deployments should prefer
// an implementation that zeroes its buffer after use; this one exists for
// tests and for wrapping already-protected secrets (e.g. out of a keystore).
type PlainPasswordProtection struct {
	secret []byte
}

// NewPlainPasswordProtection copies password into a PasswordProtection.
func NewPlainPasswordProtection(password []byte) *PlainPasswordProtection {
	cp := make([]byte, len(password))
	copy(cp, password)
	return &PlainPasswordProtection{secret: cp}
}

func (p *PlainPasswordProtection) Password(PasswordUsage) ([]byte, error) {
	cp := make([]byte, len(p.secret))
	copy(cp, p.secret)
	return cp, nil
}

// minPasswordLength requires at least 8 characters drawn from at least two
// of {lower, upper, digit, other}.
const minPasswordLength = 8

// MinimumPasswordPolicy is the context's default PasswordPolicy: it rejects
// passwords shorter than minPasswordLength or built from a single character
// class.
type MinimumPasswordPolicy struct{}

func (MinimumPasswordPolicy) Check(p PasswordProtection) error {
	secret, err := p.Password(PasswordWrite)
	if err != nil {
		return err
	}
	defer zero(secret)

	if len(secret) < minPasswordLength {
		return newError(PasswordPolicyFailure, messages.Message(messages.Unknown)+": password too short")
	}

	var classes int
	var hasLower, hasUpper, hasDigit, hasOther bool
	for _, r := range string(secret) {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasOther = true
		}
	}
	for _, b := range []bool{hasLower, hasUpper, hasDigit, hasOther} {
		if b {
			classes++
		}
	}
	if classes < 2 {
		return newError(PasswordPolicyFailure, "password must mix at least two character classes")
	}
	return nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// checkedPasswordProtection wraps a PasswordProtection so that WRITE usage
// is checked against a policy first; READ usage always passes through
// unchecked. This is the latest-safe-moment enforcement: a weak password is
// rejected at key generation/install time, not at configuration time.
type checkedPasswordProtection struct {
	policy     PasswordPolicy
	protection PasswordProtection
}

func newCheckedPasswordProtection(policy PasswordPolicy, protection PasswordProtection) PasswordProtection {
	return &checkedPasswordProtection{policy: policy, protection: protection}
}

func (c *checkedPasswordProtection) Password(usage PasswordUsage) ([]byte, error) {
	if usage == PasswordWrite {
		if err := c.policy.Check(c.protection); err != nil {
			return nil, wrap(PasswordPolicyFailure, err)
		}
	}
	return c.protection.Password(usage)
}
