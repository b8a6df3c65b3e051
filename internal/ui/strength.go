package ui

import "unicode"

// PasswordStrength scores a candidate password 0..4 for the signup form's
// live feedback: length, case mix, digits and symbols each contribute.
// Purely presentational; the backend enforces its own policy.
func PasswordStrength(password string) int {
	if len(password) == 0 {
		return 0
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	score := 0
	if len(password) >= 8 {
		score++
	}
	if len(password) >= 12 {
		score++
	}
	if hasLower && hasUpper {
		score++
	}
	if hasDigit {
		score++
	}
	if hasSymbol {
		score++
	}
	if score > 4 {
		score = 4
	}
	return score
}

var strengthKeys = [5]string{
	"strength.very_weak",
	"strength.weak",
	"strength.fair",
	"strength.good",
	"strength.strong",
}

// strengthLabel maps a score to its localized label key.
func strengthLabel(score int) string {
	if score < 0 {
		score = 0
	}
	if score > 4 {
		score = 4
	}
	return strengthKeys[score]
}
