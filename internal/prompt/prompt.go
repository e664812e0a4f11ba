// Package prompt renders the prompts and function-call schemas used by the
// matching engine. The text stays provider-neutral; provider wire formats
// are the llm package's concern.
package prompt

import (
	"fmt"
	"strings"

	"cdsmatch/internal/catalog"
	"cdsmatch/internal/model"
)

// Tool names recognized by the engine.
const (
	FieldMatchTool    = "review_field_matches"
	ViewSelectionTool = "select_relevant_views"
)

// FieldMatching renders the batch field-matching prompt. Input fields and
// candidate context ship as compact semicolon-separated lines to keep the
// token footprint low on large catalogs.
func FieldMatching(fields []model.InputField, context []model.CandidateField) string {
	var b strings.Builder

	b.WriteString("You are an SAP expert for intelligent field mapping.\n\n")
	b.WriteString("**Task:** Find the best CDS field matches for the following input fields. ")
	b.WriteString("A pre-filtered, highly relevant list of CDS fields is provided as context. ")
	b.WriteString("Your task is to perform the detailed field-level matching.\n\n")
	b.WriteString("Critical Rules:\n")
	b.WriteString("- Use ONLY exact field/view names from provided context\n")
	b.WriteString("- Set empty strings if no suitable match found\n\n")
	b.WriteString("Weighted Matching Criteria (total 100%):\n")
	b.WriteString("1. field_text semantic similarity (60%, primary)\n")
	b.WriteString("2. Business context alignment (20%)\n")
	b.WriteString("3. data_type compatibility (15%)\n")
	b.WriteString("4. length/precision alignment (5%)\n")
	b.WriteString("Note: Semantic meaning > technical attributes; fuzzy match for descriptions.\n\n")

	b.WriteString("Input Fields to Match (row_index;field_name;field_desc;key_flag;data_type;field_id;length_total):\n")
	for _, f := range fields {
		fmt.Fprintf(&b, "%d;%s;%s;%s;%s;%s;%s\n",
			f.RowIndex, f.FieldName, f.FieldText, f.KeyFlag, f.DataType, f.FieldID, f.LengthTotal)
	}

	fmt.Fprintf(&b, "\nAvailable CDS Context (%d fields):\n", len(context))
	b.WriteString("Format: table_id;field_id;key_flag;field_desc;data_type;length_total;length_dec\n\n")
	for _, c := range context {
		key := ""
		if c.IsKey {
			key = "X"
		}
		fmt.Fprintf(&b, "%s;%s;%s;%s;%s;%s;%s\n",
			c.ViewName, c.FieldName, key, c.FieldDesc, c.DataType, c.LengthTotal, c.LengthDec)
	}

	b.WriteString("\n---\n\n")
	b.WriteString("Output Requirements (use the " + FieldMatchTool + " function with the EXACT row_index from input):\n")
	b.WriteString("For each field provide:\n")
	b.WriteString("- table_id: Exact CDS view name from context (e.g. 'I_TIMESHEETRECORD')\n")
	b.WriteString("- field_id: Technical field name only (e.g. 'RECEIVERCOSTCENTER')\n")
	b.WriteString("- field_desc: Human-readable description from CDS context\n")
	b.WriteString("- data_type, length_total, length_dec: From matched CDS field\n")
	b.WriteString("- key_flag: 'X' if CDS field is marked as key, empty otherwise\n")
	b.WriteString("- match_confidence: 0-100 percentage\n")
	b.WriteString("- notes: one-sentence summary, view selection reasoning, confidence breakdown, required transformations and open concerns\n")

	return b.String()
}

// ViewSelection renders the view shortlist prompt from the interface header
// context and the candidate views.
func ViewSelection(fields []model.InputField, candidates []catalog.View) string {
	var b strings.Builder

	b.WriteString("You are an expert SAP data modeler. Your task is to select the most relevant CDS views ")
	b.WriteString("from a provided list that are suitable for an interface based on its required fields.\n\n")
	b.WriteString("**Primary Goal:** Identify and select the CDS views that are most likely to contain the data needed for the interface.\n\n")
	b.WriteString("**Critical Instructions:**\n")
	b.WriteString("1. Analyze the interface context: module, interface name and field descriptions define the business purpose.\n")
	b.WriteString("2. Evaluate each candidate view's description for relevance to that purpose.\n")
	b.WriteString("3. Prioritize semantic relevance over keyword matching.\n")
	b.WriteString("4. Return only a list of view names.\n\n")
	b.WriteString("---\n\n**Interface Context:**\n")

	if len(fields) > 0 {
		first := fields[0]
		fmt.Fprintf(&b, "- Module: %s\n", first.Module)
		fmt.Fprintf(&b, "- Interface Name: %s\n", first.IfName)
		fmt.Fprintf(&b, "- Interface Description: %s\n\n", first.IfDesc)
		b.WriteString("Required Fields for the Interface (field_name,field_description):\n")
		for _, f := range fields {
			fmt.Fprintf(&b, "%s,%s\n", f.FieldName, f.FieldText)
		}
	}

	b.WriteString("\n**Candidate CDS Views** (view_name,view_description):\n")
	for _, v := range candidates {
		fmt.Fprintf(&b, "%s,%s\n", v.Name, v.Desc)
	}

	b.WriteString("\n**Your Task:**\n")
	b.WriteString("Based on the interface context and the list of candidate views, call the " + ViewSelectionTool + " function with the names of the most appropriate CDS views.\n")

	return b.String()
}
