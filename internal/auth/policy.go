package auth

import (
	"unicode"

	"github.com/portalworks/portal-auth/internal/config"
)

// Rule names reported by PasswordPolicy.Check.
const (
	RuleMinLength = "min_length"
	RuleMaxLength = "max_length"
	RuleUpper     = "uppercase"
	RuleLower     = "lowercase"
	RuleDigit     = "digit"
	RuleSymbol    = "symbol"
)

// MaxPasswordBytes is the longest input bcrypt will hash.
const MaxPasswordBytes = 72

// PasswordPolicy is the configurable strength predicate applied on
// registration, password change and reset.
type PasswordPolicy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

// NewPasswordPolicy maps configuration onto a policy.
func NewPasswordPolicy(cfg config.PasswordPolicyConfig) PasswordPolicy {
	return PasswordPolicy{
		MinLength:     cfg.MinLength,
		RequireUpper:  cfg.RequireUpper,
		RequireLower:  cfg.RequireLower,
		RequireDigit:  cfg.RequireDigit,
		RequireSymbol: cfg.RequireSymbol,
	}
}

// Check returns the violated rules; an empty result means the password passes.
func (p PasswordPolicy) Check(password string) []string {
	var upper, lower, digit, symbol bool
	length := 0
	for _, r := range password {
		length++
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}

	var violations []string
	if length < p.MinLength {
		violations = append(violations, RuleMinLength)
	}
	if len(password) > MaxPasswordBytes {
		violations = append(violations, RuleMaxLength)
	}
	if p.RequireUpper && !upper {
		violations = append(violations, RuleUpper)
	}
	if p.RequireLower && !lower {
		violations = append(violations, RuleLower)
	}
	if p.RequireDigit && !digit {
		violations = append(violations, RuleDigit)
	}
	if p.RequireSymbol && !symbol {
		violations = append(violations, RuleSymbol)
	}
	return violations
}
