// Package aircraft parses aircraft lines from the v1 posting template.
//
// An aircraft line pipe-separates two or three short tokens carrying the
// tail number, routing/flight designator and aircraft type in no fixed
// order, e.g. "N12345|AA100|B737".
package aircraft

import (
	"strings"
	"unicode/utf8"

	"tweet_flights/internal/format"
	"tweet_flights/internal/patterns"
	"tweet_flights/internal/registry"
)

// Result represents a parsed aircraft line. Fields the line did not carry
// are left empty.
type Result struct {
	TailNumber   string `json:"tail_number,omitempty"`
	FlightNumber string `json:"flight_number,omitempty"`
	AircraftType string `json:"aircraft_type,omitempty"`
}

func (r *Result) Kind() string { return registry.KindAircraft }

// Parser parses aircraft lines.
type Parser struct{}

func init() {
	registry.Register(&Parser{})
}

func (p *Parser) Name() string               { return "aircraft" }
func (p *Parser) Versions() []format.Version { return []format.Version{format.V1} }
func (p *Parser) Priority() int              { return 30 }

func (p *Parser) QuickCheck(line string) bool {
	return strings.Contains(line, "|")
}

// Parse matches lines that pipe-split into 2 or 3 tokens of trimmed length
// 2-7. Each token is classified independently; unmatched tokens are dropped
// and the last match per category wins.
func (p *Parser) Parse(line string) registry.Result {
	parts := strings.Split(line, "|")
	if len(parts) < 2 || len(parts) > 3 {
		return nil
	}

	tokens := make([]string, len(parts))
	for i, part := range parts {
		tok := strings.TrimSpace(part)
		if n := utf8.RuneCountInString(tok); n < 2 || n > 7 {
			return nil
		}
		tokens[i] = tok
	}

	result := &Result{}
	for i, tok := range tokens {
		switch {
		case internationalTails[tok]:
			result.TailNumber = tok
		case i <= 1 && patterns.CanadianTailPattern.MatchString(tok):
			result.TailNumber = tok
		case i == 0 && patterns.MexicanTailPattern.MatchString(tok):
			result.TailNumber = tok
		case strings.HasPrefix(tok, "N") && patterns.ContainsDigit(tok) && len(tok) > 3:
			// US civil registration shape. Checked before the type rule
			// so registrations like N12345 are never taken for types.
			result.TailNumber = tok
		case tok[0] >= 'A' && tok[0] <= 'Z' && utf8.RuneCountInString(tok) <= 4:
			result.AircraftType = tok
		case patterns.FlightNumPattern.MatchString(tok):
			result.FlightNumber = tok
		}
	}

	return result
}
