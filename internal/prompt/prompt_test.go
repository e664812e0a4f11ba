package prompt

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"cdsmatch/internal/catalog"
	"cdsmatch/internal/model"
)

func TestFieldMatchingPromptLines(t *testing.T) {
	fields := []model.InputField{{
		RowIndex:    13,
		FieldName:   "plant",
		FieldText:   "Plant code",
		KeyFlag:     "○",
		DataType:    "CHAR",
		FieldID:     "WERKS",
		LengthTotal: "4",
	}}
	context := []model.CandidateField{{
		ViewName:    "I_PLANT",
		FieldName:   "PLANT",
		IsKey:       true,
		FieldDesc:   "Plant",
		DataType:    "CHAR",
		LengthTotal: "4",
		LengthDec:   "0",
	}}

	p := FieldMatching(fields, context)

	want := []string{
		"13;plant;Plant code;○;CHAR;WERKS;4",
		"I_PLANT;PLANT;X;Plant;CHAR;4;0",
	}
	var got []string
	for _, line := range strings.Split(p, "\n") {
		for _, w := range want {
			if line == w {
				got = append(got, line)
			}
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("compact data lines mismatch (-want +got):\n%s", diff)
	}

	if !strings.Contains(p, FieldMatchTool) {
		t.Fatal("prompt must name the function to call")
	}
	if !strings.Contains(p, "Use ONLY exact field/view names") {
		t.Fatal("prompt must carry the exact-names rule")
	}
}

func TestViewSelectionPromptCarriesContext(t *testing.T) {
	fields := []model.InputField{{
		RowIndex:  13,
		Module:    "MM",
		IfName:    "IF001",
		IfDesc:    "Purchase order interface",
		FieldName: "vendor",
		FieldText: "Vendor number",
	}}
	candidates := []catalog.View{{Name: "I_SUPPLIER", Desc: "Supplier master"}}

	p := ViewSelection(fields, candidates)
	for _, want := range []string{
		"- Module: MM",
		"- Interface Name: IF001",
		"vendor,Vendor number",
		"I_SUPPLIER,Supplier master",
		ViewSelectionTool,
	} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestToolSchemasRequireFullRowShape(t *testing.T) {
	tool := FieldMatchingTool()
	props := tool.InputSchema["properties"].(map[string]any)
	review := props["review"].(map[string]any)
	items := review["items"].(map[string]any)
	required := items["required"].([]any)
	if len(required) != 10 {
		t.Fatalf("required fields = %d, want every row column mandatory", len(required))
	}

	sel := ViewSelectionToolDef()
	if sel.Name != ViewSelectionTool {
		t.Fatalf("tool name = %q", sel.Name)
	}
}
