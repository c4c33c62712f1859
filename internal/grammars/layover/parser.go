// Package layover parses layover lines from the v1 posting template.
//
// A layover line embeds an airport/time pair followed by a pipe and
// trailing detail, e.g. "ORD - 7:15pm CT|1h 40m". It is syntactically a
// superset of the plain airport line, so this grammar must be tested
// before the airport grammar.
package layover

import (
	"strings"

	"tweet_flights/internal/format"
	"tweet_flights/internal/registry"
)

// Result represents a parsed layover line: the airport/time pair taken
// from the segment before the pipe.
type Result struct {
	Code string `json:"code"`
	Time string `json:"time"`
}

func (r *Result) Kind() string { return registry.KindLayover }

// Parser parses layover lines.
type Parser struct{}

func init() {
	registry.Register(&Parser{})
}

func (p *Parser) Name() string               { return "layover" }
func (p *Parser) Versions() []format.Version { return []format.Version{format.V1} }
func (p *Parser) Priority() int              { return 10 }

func (p *Parser) QuickCheck(line string) bool {
	return strings.Contains(line, "|") && strings.Contains(line, "-")
}

// Parse matches lines with exactly one pipe whose pre-pipe segment is a
// dash-separated pair. The post-pipe detail is not extracted.
func (p *Parser) Parse(line string) registry.Result {
	if strings.Count(line, "|") != 1 {
		return nil
	}

	before, _, _ := strings.Cut(line, "|")
	parts := strings.Split(before, "-")
	if len(parts) != 2 {
		return nil
	}

	return &Result{
		Code: strings.TrimSpace(parts[0]),
		Time: strings.TrimSpace(parts[1]),
	}
}
