// Package patterns provides shared regex patterns and text helpers for
// tweet parsing.
package patterns

import "regexp"

// Token patterns used by the aircraft-line grammar. These match whole
// tokens, not substrings.
var (
	// CanadianTailPattern matches Canadian registrations: C, optional
	// hyphen, then 4 letters. e.g. C-GABC, CFABC.
	CanadianTailPattern = regexp.MustCompile(`^C-?[A-Z]{4}$`)

	// MexicanTailPattern matches Mexican registrations: XA- then 3
	// letters. e.g. XA-ABC.
	MexicanTailPattern = regexp.MustCompile(`^XA-[A-Z]{3}$`)

	// FlightNumPattern matches routing/flight designators: 2-3 letter
	// airline code + 1-4 digits. e.g. AA100, UAL1260.
	FlightNumPattern = regexp.MustCompile(`^[A-Z]{2,3}\d{1,4}$`)

	digitPattern = regexp.MustCompile(`\d`)
)

// ContainsDigit reports whether s contains at least one decimal digit.
func ContainsDigit(s string) bool {
	return digitPattern.MatchString(s)
}
