package aircraft

// internationalTails lists registrations seen in the feed whose shape does
// not fit the general Canadian/Mexican/US rules. Matched exactly, before
// any of the shape rules.
var internationalTails = map[string]bool{
	"9V-SKA": true, // Singapore
	"A6-EDA": true, // United Arab Emirates
	"B-LRA":  true, // Hong Kong
	"D-AIMA": true, // Germany
	"F-HPJA": true, // France
	"G-XLEA": true, // United Kingdom
	"HL7614": true, // South Korea
	"JA801A": true, // Japan
	"PH-BHA": true, // Netherlands
	"VH-OQA": true, // Australia
	"ZK-NZE": true, // New Zealand
}
