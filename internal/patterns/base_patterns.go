// Package patterns provides shared regex patterns and text helpers for
// tweet parsing. This file contains grok-style base patterns for use with
// the Compiler.
package patterns

// BasePatterns defines reusable regex components for grok-style pattern
// composition. These are referenced in format patterns using {PATTERN_NAME}
// syntax. Whole-token patterns (registrations, flight designators) live as
// compiled regexes in patterns.go; this map only holds the fragments grok
// formats compose.
var BasePatterns = map[string]string{
	// Airport codes. The posting template uses 3-letter IATA codes,
	// sometimes followed by a spelled-out airport name.
	"IATA": `[A-Z]{3}`,

	// Clock times as the template writes them: H:MM or HH:MM, an am/pm
	// marker and a 2-letter timezone code, e.g. "5:00pm ET".
	"CLOCK": `\d{1,2}:\d{2}\s?[AaPp][Mm]\s+[A-Za-z]{2}`,
}
