package model

// Provenance tags recorded in MatchResult.Match.
const (
	MatchCustom = "Custom" // resolved by the custom-field pre-match
	MatchCDS    = "CDS"    // resolved by the catalog/model match
)

// KeyFlagMark is the presence marker written to the key-flag output column.
const KeyFlagMark = "○"

// Verification markers set by the downstream existence check.
const (
	VerifyConfirmed     = "√"
	VerifyNotApplicable = "-"
)

// CandidateField is one row of catalog context handed to the language model:
// a field of a catalog view with the owning view's name and description
// attached. Read-only during matching.
type CandidateField struct {
	ViewName    string
	ViewDesc    string
	FieldName   string
	FieldDesc   string
	IsKey       bool
	FieldID     string
	DataType    string
	LengthTotal string
	LengthDec   string
}

// MatchResult is the outcome of either matching stage for one InputField.
// A zero MatchResult ("no match") is valid output: every input row produces
// exactly one result, possibly empty-valued.
type MatchResult struct {
	TableID     string
	FieldID     string
	FieldDesc   string
	KeyFlag     string
	Obligatory  string
	DataType    string
	LengthTotal string
	LengthDec   string
	SampleValue string
	Match       string // provenance tag: MatchCustom, MatchCDS, or empty
	Notes       string
	Verify      string
}

// MatchedRow pairs an InputField with the MatchResult that resolves it.
// It is the unit the merger and the writer operate on.
type MatchedRow struct {
	Field  InputField
	Result MatchResult
}
