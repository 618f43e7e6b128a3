package authcore

import (
	"net/mail"
	"regexp"
	"time"
	"unicode"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 50
	passwordMinLen = 8
	nameMaxLen     = 100
	minimumAge     = 18
)

const passwordRuleMsg = "password must be at least 8 characters with uppercase, lowercase, and number"

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// validateRegisterInput collects every violated rule so the caller sees
// the full list, not just the first failure.
func validateRegisterInput(in RegisterInput) []string {
	var violations []string

	if len(in.Username) < usernameMinLen || len(in.Username) > usernameMaxLen || !usernamePattern.MatchString(in.Username) {
		violations = append(violations,
			"username must be 3-50 characters and contain only letters, numbers, and underscores")
	}
	if !validEmail(in.Email) {
		violations = append(violations, "valid email is required")
	}
	if !strongPassword(in.Password) {
		violations = append(violations, passwordRuleMsg)
	}
	if in.Password != in.ConfirmPassword {
		violations = append(violations, "passwords do not match")
	}
	if in.FirstName == "" || len(in.FirstName) > nameMaxLen {
		violations = append(violations, "first name is required")
	}
	if in.LastName == "" || len(in.LastName) > nameMaxLen {
		violations = append(violations, "last name is required")
	}
	if in.AccountType != AccountTypeFan && in.AccountType != AccountTypeCreator {
		violations = append(violations, "account type must be fan or creator")
	}
	if in.BirthDate.IsZero() {
		violations = append(violations, "birth date is required")
	}
	if !in.AgreeToTerms {
		violations = append(violations, "you must agree to terms and conditions")
	}

	return violations
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// strongPassword enforces the platform password rule: at least 8
// characters containing an uppercase letter, a lowercase letter, and a
// digit.
func strongPassword(pw string) bool {
	if len(pw) < passwordMinLen {
		return false
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// ageYears computes calendar-aware age: the year difference, decremented
// when the birthday has not yet occurred this year. Someone turns 18 on
// their birthday itself, not the day after.
func ageYears(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}
