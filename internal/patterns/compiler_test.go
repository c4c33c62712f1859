package patterns

import "testing"

func TestCompilerExpandAndParse(t *testing.T) {
	formats := []Format{
		{
			Name:    "airport_time",
			Pattern: `^(?P<code>{IATA})\s*-\s*(?P<time>{CLOCK})$`,
			Fields:  []string{"code", "time"},
		},
	}

	c := NewCompiler(formats, nil)
	if err := c.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	m := c.Parse("JFK - 5:00pm ET")
	if m == nil {
		t.Fatal("expected match, got nil")
	}
	if m.FormatName != "airport_time" {
		t.Errorf("FormatName = %q, want %q", m.FormatName, "airport_time")
	}
	if m.Captures["code"] != "JFK" {
		t.Errorf("code = %q, want %q", m.Captures["code"], "JFK")
	}
	if m.Captures["time"] != "5:00pm ET" {
		t.Errorf("time = %q, want %q", m.Captures["time"], "5:00pm ET")
	}

	if got := c.Parse("not an airport line"); got != nil {
		t.Errorf("expected nil for non-matching line, got %+v", got)
	}
}

func TestCompilerLocalOverride(t *testing.T) {
	formats := []Format{
		{Name: "word", Pattern: `^(?P<w>{WORD})$`},
	}

	c := NewCompiler(formats, map[string]string{"WORD": `[a-z]+`})
	if err := c.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if m := c.Parse("hello"); m == nil || m.Captures["w"] != "hello" {
		t.Fatalf("expected local pattern match, got %+v", m)
	}
	if m := c.Parse("HELLO"); m != nil {
		t.Errorf("expected case-sensitive miss, got %+v", m)
	}
}

func TestGetCapture(t *testing.T) {
	m := &Match{Captures: map[string]string{"code": "JFK", "time": ""}}

	if got := m.GetCapture("code", "dflt"); got != "JFK" {
		t.Errorf("GetCapture(code) = %q, want JFK", got)
	}
	if got := m.GetCapture("time", "dflt"); got != "dflt" {
		t.Errorf("GetCapture(empty) = %q, want dflt", got)
	}
	var nilMatch *Match
	if got := nilMatch.GetCapture("code", "dflt"); got != "dflt" {
		t.Errorf("GetCapture on nil = %q, want dflt", got)
	}
}

func TestTailPatterns(t *testing.T) {
	tests := []struct {
		pattern string
		in      string
		want    bool
	}{
		{"ca", "C-FGDT", true},
		{"ca", "CGABC", true},
		{"ca", "C-FGD", false},
		{"ca", "XC-FGDT", false},
		{"mx", "XA-ABC", true},
		{"mx", "XA-AB", false},
		{"flight", "AA100", true},
		{"flight", "UAL1234", true},
		{"flight", "A100", false},
		{"flight", "AA12345", false},
	}

	for _, tt := range tests {
		var got bool
		switch tt.pattern {
		case "ca":
			got = CanadianTailPattern.MatchString(tt.in)
		case "mx":
			got = MexicanTailPattern.MatchString(tt.in)
		case "flight":
			got = FlightNumPattern.MatchString(tt.in)
		}
		if got != tt.want {
			t.Errorf("%s pattern on %q = %v, want %v", tt.pattern, tt.in, got, tt.want)
		}
	}
}
