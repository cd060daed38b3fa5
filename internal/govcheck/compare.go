// Package govcheck compares submitted identity records against government
// reference records and reports field-level discrepancies.
package govcheck

import (
	"strings"
	"unicode"

	"github.com/opencorrections/warden/internal/domain"
)

// addressMatchThreshold is the minimum fraction of submitted address tokens
// that must appear in the reference address for the fields to match.
const addressMatchThreshold = 0.70

// CompareIdentity compares a submitted identity record against the reference
// record field by field. All applicable checks run independently and results
// accumulate in a fixed order: name, dateOfBirth, gender, address. The
// function is deterministic and performs no I/O.
func CompareIdentity(submitted, reference domain.IdentityRecord) []domain.Discrepancy {
	var discrepancies []domain.Discrepancy

	if d, mismatch := compareNames(submitted.Name, reference.Name); mismatch {
		discrepancies = append(discrepancies, d)
	}

	subDOB := submitted.DateOfBirth.Format("2006-01-02")
	refDOB := reference.DateOfBirth.Format("2006-01-02")
	if subDOB != refDOB {
		discrepancies = append(discrepancies, domain.Discrepancy{
			Field:           "dateOfBirth",
			ProvidedValue:   subDOB,
			GovernmentValue: refDOB,
			Severity:        domain.DiscrepancyMajor,
			Notes:           "date of birth does not match government records",
		})
	}

	if submitted.Gender != reference.Gender {
		discrepancies = append(discrepancies, domain.Discrepancy{
			Field:           "gender",
			ProvidedValue:   string(submitted.Gender),
			GovernmentValue: string(reference.Gender),
			Severity:        domain.DiscrepancyCritical,
			Notes:           "gender does not match government records",
		})
	}

	// Address is only checked when the submitted record carries a street
	// component; an absent address is not a discrepancy.
	if strings.TrimSpace(submitted.Address) != "" {
		if !addressMatches(submitted.Address, reference.Address) {
			discrepancies = append(discrepancies, domain.Discrepancy{
				Field:           "address",
				ProvidedValue:   submitted.Address,
				GovernmentValue: reference.Address,
				Severity:        domain.DiscrepancyMinor,
				Notes:           "address differs substantially from government records",
			})
		}
	}

	return discrepancies
}

// compareNames normalizes both names and, when they differ, grades the
// mismatch by whether the first and last tokens still agree: both agree is
// minor (middle content only), exactly one is major, neither is critical.
func compareNames(submitted, reference string) (domain.Discrepancy, bool) {
	subNorm := NormalizeName(submitted)
	refNorm := NormalizeName(reference)
	if subNorm == refNorm {
		return domain.Discrepancy{}, false
	}

	subTokens := strings.Fields(subNorm)
	refTokens := strings.Fields(refNorm)

	firstMatch := len(subTokens) > 0 && len(refTokens) > 0 &&
		subTokens[0] == refTokens[0]
	lastMatch := len(subTokens) > 0 && len(refTokens) > 0 &&
		subTokens[len(subTokens)-1] == refTokens[len(refTokens)-1]

	var severity domain.DiscrepancySeverity
	var notes string
	switch {
	case firstMatch && lastMatch:
		severity = domain.DiscrepancyMinor
		notes = "first and last name match; middle name differs"
	case firstMatch || lastMatch:
		severity = domain.DiscrepancyMajor
		notes = "partial name match against government records"
	default:
		severity = domain.DiscrepancyCritical
		notes = "name does not match government records"
	}

	return domain.Discrepancy{
		Field:           "name",
		ProvidedValue:   submitted,
		GovernmentValue: reference,
		Severity:        severity,
		Notes:           notes,
	}, true
}

// NormalizeName lowercases a name, strips punctuation, and collapses runs of
// whitespace into single spaces.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
		// Punctuation is dropped entirely.
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// addressMatches tokenizes both addresses and reports whether at least 70%
// of the submitted tokens appear in the reference address token set.
func addressMatches(submitted, reference string) bool {
	subTokens := strings.Fields(strings.ToLower(submitted))
	if len(subTokens) == 0 {
		return true
	}

	refSet := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(reference)) {
		refSet[strings.Trim(tok, ".,;:")] = struct{}{}
	}

	matched := 0
	for _, tok := range subTokens {
		if _, ok := refSet[strings.Trim(tok, ".,;:")]; ok {
			matched++
		}
	}

	return float64(matched)/float64(len(subTokens)) >= addressMatchThreshold
}
