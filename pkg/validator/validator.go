// Package validator holds the small pure validations the intake forms
// depend on.
package validator

import (
	"strings"
	"time"
)

// ValidIsraeliID checks an Israeli national ID using the standard
// Luhn-variant checksum. IDs shorter than 9 digits are zero-padded on
// the left before weighing.
func ValidIsraeliID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > 9 {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}

	padded := strings.Repeat("0", 9-len(id)) + id
	sum := 0
	for i, r := range padded {
		digit := int(r - '0')
		product := digit * (i%2 + 1)
		if product > 9 {
			product = product%10 + 1
		}
		sum += product
	}
	return sum%10 == 0
}

// Age derives a person's age in whole years at the given instant.
// Returns -1 for a zero birth date.
func Age(birthDate, now time.Time) int {
	if birthDate.IsZero() {
		return -1
	}
	age := now.Year() - birthDate.Year()
	if now.Month() < birthDate.Month() ||
		(now.Month() == birthDate.Month() && now.Day() < birthDate.Day()) {
		age--
	}
	if age < 0 {
		return -1
	}
	return age
}
