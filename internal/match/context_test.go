package match

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"cdsmatch/internal/catalog"
)

type fakeContentProvider struct {
	blocks map[string]string
}

func (f *fakeContentProvider) FieldContent(_ context.Context, views []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, v := range views {
		if c, ok := f.blocks[v]; ok {
			out[v] = c
		}
	}
	return out, nil
}

func TestContextBuilderFlattensViews(t *testing.T) {
	provider := &fakeContentProvider{blocks: map[string]string{
		"I_SUPPLIER": `[["SUPPLIER","X","Supplier id","LIFNR","CHAR",10,0],["SUPPLIERNAME","","Name","NAME1","CHAR",35,0]]`,
		"I_MATERIAL": `[["MATERIAL","X","Material number","MATNR","CHAR",18,0]]`,
	}}
	b := NewContextBuilder(provider, zap.NewNop().Sugar())

	selected := []catalog.View{
		{Name: "I_SUPPLIER", Desc: "Supplier master"},
		{Name: "I_MATERIAL", Desc: "Material master"},
	}
	got, err := b.Build(context.Background(), selected)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("candidates = %d, want 3", len(got))
	}

	// Selection order is preserved: supplier fields first.
	if got[0].ViewName != "I_SUPPLIER" || got[2].ViewName != "I_MATERIAL" {
		t.Fatalf("view order broken: %q .. %q", got[0].ViewName, got[2].ViewName)
	}
	first := got[0]
	if first.FieldName != "SUPPLIER" || !first.IsKey || first.FieldID != "LIFNR" ||
		first.DataType != "CHAR" || first.LengthTotal != "10" || first.LengthDec != "0" {
		t.Fatalf("first candidate = %+v", first)
	}
	if first.ViewDesc != "Supplier master" {
		t.Fatalf("view desc = %q", first.ViewDesc)
	}
	if got[1].IsKey {
		t.Fatalf("SUPPLIERNAME should not be a key field")
	}
}

func TestContextBuilderRepairsInteriorQuotes(t *testing.T) {
	// An unescaped quote inside a description must not break decoding.
	provider := &fakeContentProvider{blocks: map[string]string{
		"I_NOTE": `[["FIELD","","the "special" one","ELEM","CHAR",5,0]]`,
	}}
	b := NewContextBuilder(provider, zap.NewNop().Sugar())

	got, err := b.Build(context.Background(), []catalog.View{{Name: "I_NOTE"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("candidates = %d, want 1", len(got))
	}
	if got[0].FieldDesc != `the "special" one` {
		t.Fatalf("field desc = %q", got[0].FieldDesc)
	}
}

func TestContextBuilderSkipsBadBlocksAndShortRows(t *testing.T) {
	provider := &fakeContentProvider{blocks: map[string]string{
		"I_BROKEN": `not json at all`,
		"I_MIXED":  `[["OK","","fine","EL","CHAR",1,0],["too","short"]]`,
	}}
	b := NewContextBuilder(provider, zap.NewNop().Sugar())

	got, err := b.Build(context.Background(), []catalog.View{
		{Name: "I_BROKEN"}, {Name: "I_MIXED"}, {Name: "I_MISSING"},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(got) != 1 || got[0].FieldName != "OK" {
		t.Fatalf("candidates = %+v, want only the well-formed row", got)
	}
}
