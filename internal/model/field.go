// Package model defines the data types shared across the matching pipeline:
// the input rows extracted from a design sheet, the candidate catalog fields
// used as model context, and the per-row match results.
package model

import "strings"

// InputField is one row of the interface definition sheet. Values are kept as
// the raw cell strings; RowIndex is the sheet row and the stable ordering key
// for the whole pipeline. An InputField is immutable once extracted.
type InputField struct {
	RowIndex    int
	Module      string
	IfName      string
	IfDesc      string
	FieldName   string
	KeyFlag     string
	Obligatory  string
	DataType    string
	FieldID     string
	LengthTotal string
	LengthDec   string
	FieldText   string
	SampleValue string
	Remark      string
	Verify      string
}

// QueryString builds the similarity-search query for the custom-field
// pre-match: field name, descriptive text and sample value joined by single
// spaces with empty parts dropped.
func (f InputField) QueryString() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{f.FieldName, f.FieldText, f.SampleValue} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// InterfaceQuery builds the category-lookup query for a set of rows that
// share the same interface header: module, interface name and description
// joined by commas. All rows of one sheet carry the same header metadata, so
// the first row is representative.
func InterfaceQuery(fields []InputField) string {
	if len(fields) == 0 {
		return ""
	}
	f := fields[0]
	return strings.Join([]string{f.Module, f.IfName, f.IfDesc}, ",")
}
