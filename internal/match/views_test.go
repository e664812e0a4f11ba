package match

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"cdsmatch/internal/catalog"
	"cdsmatch/internal/model"
)

type fakeCatalog struct {
	hits     []catalog.CategoryHit
	views    map[string][]catalog.View
	hitsErr  error
	viewsErr error
}

func (f *fakeCatalog) SearchCategories(_ context.Context, _ string, _ int) ([]catalog.CategoryHit, error) {
	return f.hits, f.hitsErr
}

func (f *fakeCatalog) ViewsByCategory(_ context.Context, category string) ([]catalog.View, error) {
	return f.views[category], f.viewsErr
}

func TestViewSelectorFiltersToCandidates(t *testing.T) {
	cat := &fakeCatalog{
		hits: []catalog.CategoryHit{{Scenario: "purchase", ViewCategory: "MM", Score: 0.9}},
		views: map[string][]catalog.View{
			"MM": {
				{Name: "I_SUPPLIER", Desc: "Supplier master"},
				{Name: "I_PURCHASEORDER", Desc: "Purchase orders"},
			},
		},
	}
	client := &fakeClient{payload: map[string]any{
		"relevant_view_names": []any{
			"I_PURCHASEORDER",
			"I_NOT_A_CANDIDATE",
			"I_SUPPLIER",
			"I_PURCHASEORDER", // duplicate
		},
	}}
	s := NewViewSelector(cat, cat, client, zap.NewNop().Sugar())

	got, err := s.Select(context.Background(), []model.InputField{testField(13, "vendor")})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("selected = %d views, want 2", len(got))
	}
	// Model order wins; unknown names and duplicates are dropped.
	if got[0].Name != "I_PURCHASEORDER" || got[1].Name != "I_SUPPLIER" {
		t.Fatalf("selected order = %q, %q", got[0].Name, got[1].Name)
	}
}

func TestViewSelectorNoCategoryMeansNoCoverage(t *testing.T) {
	s := NewViewSelector(&fakeCatalog{}, &fakeCatalog{}, &fakeClient{}, zap.NewNop().Sugar())

	got, err := s.Select(context.Background(), []model.InputField{testField(13, "vendor")})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got != nil {
		t.Fatalf("selected = %v, want none", got)
	}
}

func TestViewSelectorModelFailureDegradesToEmpty(t *testing.T) {
	cat := &fakeCatalog{
		hits:  []catalog.CategoryHit{{ViewCategory: "MM", Score: 0.9}},
		views: map[string][]catalog.View{"MM": {{Name: "I_SUPPLIER"}}},
	}
	s := NewViewSelector(cat, cat, &fakeClient{err: fmt.Errorf("rate limited")}, zap.NewNop().Sugar())

	got, err := s.Select(context.Background(), []model.InputField{testField(13, "vendor")})
	if err != nil {
		t.Fatalf("model failure must not surface as error, got %v", err)
	}
	if got != nil {
		t.Fatalf("selected = %v, want none on model failure", got)
	}
}

func TestViewSelectorStoreErrorPropagates(t *testing.T) {
	cat := &fakeCatalog{hitsErr: fmt.Errorf("connection refused")}
	s := NewViewSelector(cat, cat, &fakeClient{}, zap.NewNop().Sugar())

	if _, err := s.Select(context.Background(), []model.InputField{testField(13, "vendor")}); err == nil {
		t.Fatal("expected store error to propagate")
	}
}
