// Package airport parses airport/time lines from the v1 posting template.
package airport

import (
	"strings"
	"sync"

	"tweet_flights/internal/format"
	"tweet_flights/internal/patterns"
	"tweet_flights/internal/registry"
)

// Result represents a parsed airport/time line, e.g. "JFK - 5:00pm ET".
type Result struct {
	Code string `json:"code"`
	Time string `json:"time"`
}

func (r *Result) Kind() string { return registry.KindAirport }

// Parser parses airport/time lines.
type Parser struct{}

// Grok compiler singleton.
var (
	grokCompiler *patterns.Compiler
	grokOnce     sync.Once
	grokErr      error
)

// getCompiler returns the singleton grok compiler.
func getCompiler() (*patterns.Compiler, error) {
	grokOnce.Do(func() {
		grokCompiler = patterns.NewCompiler(Formats, nil)
		grokErr = grokCompiler.Compile()
	})
	return grokCompiler, grokErr
}

func init() {
	registry.Register(&Parser{})
}

func (p *Parser) Name() string               { return "airport" }
func (p *Parser) Versions() []format.Version { return []format.Version{format.V1} }
func (p *Parser) Priority() int              { return 20 }

func (p *Parser) QuickCheck(line string) bool {
	return strings.Contains(line, "-") && strings.Contains(line, ":")
}

// Parse matches lines that dash-split into exactly an airport segment and
// a clock time. The airport segment keeps any spelled-out name after the
// 3-letter code.
func (p *Parser) Parse(line string) registry.Result {
	compiler, err := getCompiler()
	if err != nil {
		return nil
	}

	match := compiler.Parse(strings.TrimSpace(line))
	if match == nil {
		return nil
	}

	return &Result{
		Code: strings.TrimSpace(match.Captures["code"]),
		Time: strings.TrimSpace(match.Captures["time"]),
	}
}
