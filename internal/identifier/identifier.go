// Package identifier decides whether free-text clinical notes contain
// patient-identifying signals. It is the gate that determines if text may be
// forwarded to an external language model: fourteen independent category
// detectors run over the input and every hit is reported back with the exact
// substring that triggered it.
//
// Detection is intentionally shape-based. Personal numbers are not checksum
// validated and dates are not calendar validated: a plausible-looking match is
// treated as a strong indicator and blocks, by product decision.
package identifier

// Reason tags one category of identifying information.
type Reason string

const (
	ReasonFullName          Reason = "full_name"
	ReasonInitialLastName   Reason = "initial_last_name"
	ReasonNameLabel         Reason = "name_label"
	ReasonNameTag           Reason = "name_tag"
	ReasonNameInProse       Reason = "name_in_prose"
	ReasonDate              Reason = "date"
	ReasonTemporalReference Reason = "temporal_reference"
	ReasonPreciseAge        Reason = "precise_age"
	ReasonPersonalNumber    Reason = "swedish_personal_number"
	ReasonPatientID         Reason = "patient_id_or_journal_number"
	ReasonEmail             Reason = "email"
	ReasonPhoneNumber       Reason = "phone_number"
	ReasonAddress           Reason = "address"
	ReasonWardBedTimestamp  Reason = "ward_bed_timestamp"
)

var reasonDescriptions = map[Reason]string{
	ReasonFullName:          "Possible full name detected",
	ReasonInitialLastName:   "Initial and last name detected",
	ReasonNameLabel:         "Name field detected",
	ReasonNameTag:           "Name tag line detected",
	ReasonNameInProse:       "Name in running text detected",
	ReasonDate:              "Date detected",
	ReasonTemporalReference: "Temporal reference detected",
	ReasonPreciseAge:        "Precise age detected",
	ReasonPersonalNumber:    "Swedish personal number detected",
	ReasonPatientID:         "Patient or journal number detected",
	ReasonEmail:             "Email address detected",
	ReasonPhoneNumber:       "Phone number detected",
	ReasonAddress:           "Address detected",
	ReasonWardBedTimestamp:  "Ward, bed and time combination detected",
}

// Description returns a short user-facing label for the reason.
func (r Reason) Description() string {
	if d, ok := reasonDescriptions[r]; ok {
		return d
	}
	return string(r)
}

// Match pairs a reason with the exact substring of the input that triggered
// it, so callers can show it back to the user verbatim.
type Match struct {
	Reason Reason `json:"reason"`
	Match  string `json:"match"`
}

// DetectionResult is the aggregate outcome of one detection call.
type DetectionResult struct {
	HasIdentifiers bool     `json:"has_identifiers"`
	Reasons        []Reason `json:"reasons"`
	Matches        []Match  `json:"matches"`
}

// detector is one category unit: a pure function from text to the first
// matching substring, or "" when the category is absent.
type detector struct {
	reason Reason
	find   func(text string) string
}

// detectors run in fixed priority order. The order only decides which reason
// surfaces first in the result, not the aggregate set.
var detectors = []detector{
	{ReasonPersonalNumber, findPersonalNumber},
	{ReasonDate, findDate},
	{ReasonTemporalReference, findTemporalReference},
	{ReasonPreciseAge, findPreciseAge},
	{ReasonFullName, findFullName},
	{ReasonInitialLastName, findInitialLastName},
	{ReasonNameLabel, findNameLabel},
	{ReasonNameTag, findNameTag},
	{ReasonNameInProse, findNameInProse},
	{ReasonPatientID, findPatientID},
	{ReasonPhoneNumber, findPhoneNumber},
	{ReasonEmail, findEmail},
	{ReasonAddress, findAddress},
	{ReasonWardBedTimestamp, findWardBedTimestamp},
}

// Detect runs every category detector against text and assembles the
// deduplicated result. It never fails: degenerate input simply produces an
// empty result. Safe for concurrent use; the call allocates only local state.
func Detect(text string) DetectionResult {
	res := DetectionResult{}
	if text == "" {
		return res
	}

	seenReason := make(map[Reason]bool, len(detectors))
	seenPair := make(map[Match]bool, len(detectors))

	for _, d := range detectors {
		m := d.find(text)
		if m == "" {
			continue
		}
		if !seenReason[d.reason] {
			seenReason[d.reason] = true
			res.Reasons = append(res.Reasons, d.reason)
		}
		pair := Match{Reason: d.reason, Match: m}
		if !seenPair[pair] {
			seenPair[pair] = true
			res.Matches = append(res.Matches, pair)
		}
	}

	res.HasIdentifiers = len(res.Reasons) > 0
	return res
}
