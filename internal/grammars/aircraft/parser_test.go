package aircraft

import "testing"

func TestParser_Parse(t *testing.T) {
	parser := &Parser{}

	tests := []struct {
		name       string
		line       string
		wantTail   string
		wantFlight string
		wantType   string
	}{
		{"us tail flight type", "N12345|AA100|B737", "N12345", "AA100", "B737"},
		{"two tokens", "N887XT|E75L", "N887XT", "", "E75L"},
		{"canadian first", "C-FGDT|AC123|A320", "C-FGDT", "AC123", "A320"},
		{"canadian second", "A320|C-FGDT", "C-FGDT", "", "A320"},
		{"mexican first", "XA-ABC|AM456|B738", "XA-ABC", "AM456", "B738"},
		{"allow listed", "JA801A|B788", "JA801A", "", "B788"},
		{"spaces trimmed", " N12345 | AA100 ", "N12345", "AA100", ""},
		{"short uppercase is type", "UA12|N45678", "N45678", "", "UA12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parser.Parse(tt.line)
			if result == nil {
				t.Fatalf("Parse(%q) = nil, want match", tt.line)
			}
			ar := result.(*Result)
			if ar.TailNumber != tt.wantTail {
				t.Errorf("TailNumber = %q, want %q", ar.TailNumber, tt.wantTail)
			}
			if ar.FlightNumber != tt.wantFlight {
				t.Errorf("FlightNumber = %q, want %q", ar.FlightNumber, tt.wantFlight)
			}
			if ar.AircraftType != tt.wantType {
				t.Errorf("AircraftType = %q, want %q", ar.AircraftType, tt.wantType)
			}
		})
	}
}

func TestParser_LastMatchWins(t *testing.T) {
	parser := &Parser{}

	// Two tokens both classify as tails; the later token takes the slot.
	result := parser.Parse("N12345|N67890")
	if result == nil {
		t.Fatal("expected match")
	}
	ar := result.(*Result)
	if ar.TailNumber != "N67890" {
		t.Errorf("TailNumber = %q, want %q (last match wins)", ar.TailNumber, "N67890")
	}
}

func TestParser_RegistrationShapeOverwritesAllowList(t *testing.T) {
	parser := &Parser{}

	// NH101 fits the US registration shape (N prefix, digit, length > 3),
	// so it takes the tail slot from the allow-listed token and is never
	// considered for the flight-number rule.
	result := parser.Parse("JA801A|NH101|B788")
	if result == nil {
		t.Fatal("expected match")
	}
	ar := result.(*Result)
	if ar.TailNumber != "NH101" {
		t.Errorf("TailNumber = %q, want %q", ar.TailNumber, "NH101")
	}
	if ar.FlightNumber != "" {
		t.Errorf("FlightNumber = %q, want empty", ar.FlightNumber)
	}
	if ar.AircraftType != "B788" {
		t.Errorf("AircraftType = %q, want %q", ar.AircraftType, "B788")
	}
}

func TestParser_MexicanOnlyFirstToken(t *testing.T) {
	parser := &Parser{}

	// XA- registrations are only recognised in the leading token. In the
	// second slot the token falls through to the type rule by length.
	result := parser.Parse("B738|XA-ABC")
	if result == nil {
		t.Fatal("expected match")
	}
	ar := result.(*Result)
	if ar.TailNumber != "" {
		t.Errorf("TailNumber = %q, want empty", ar.TailNumber)
	}
}

func TestParser_NoMatch(t *testing.T) {
	parser := &Parser{}

	lines := []string{
		"JFK - 5:00pm ET",        // no pipe
		"N12345",                 // single token
		"N12345|AA100|B737|X738", // four tokens
		"N12345|A",               // token below length 2
		"N12345|AAAA1234",        // token above length 7
	}

	for _, line := range lines {
		if result := parser.Parse(line); result != nil {
			t.Errorf("Parse(%q) = %+v, want nil", line, result)
		}
	}
}

func TestParser_UnmatchedTokensDropped(t *testing.T) {
	parser := &Parser{}

	// "9h 30m" starts with a digit and matches no category.
	result := parser.Parse("N12345|9h 30m")
	if result == nil {
		t.Fatal("expected match")
	}
	ar := result.(*Result)
	if ar.TailNumber != "N12345" {
		t.Errorf("TailNumber = %q, want N12345", ar.TailNumber)
	}
	if ar.FlightNumber != "" || ar.AircraftType != "" {
		t.Errorf("expected other fields empty, got %+v", ar)
	}
}
