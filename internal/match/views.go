package match

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cdsmatch/internal/catalog"
	"cdsmatch/internal/llm"
	"cdsmatch/internal/model"
	"cdsmatch/internal/prompt"
	"cdsmatch/internal/usage"
)

// CategorySearcher resolves a business category for an interface.
type CategorySearcher interface {
	SearchCategories(ctx context.Context, query string, k int) ([]catalog.CategoryHit, error)
}

// ViewLister returns the active views tagged with a category.
type ViewLister interface {
	ViewsByCategory(ctx context.Context, category string) ([]catalog.View, error)
}

// ViewSelector shortlists the catalog views relevant to one interface. The
// shortlist is advisory: an empty result means "no catalog coverage" and the
// caller short-circuits to custom-only output.
type ViewSelector struct {
	categories CategorySearcher
	views      ViewLister
	client     llm.Client
	log        *zap.SugaredLogger
}

// NewViewSelector wires the selector's collaborators.
func NewViewSelector(categories CategorySearcher, views ViewLister, client llm.Client, log *zap.SugaredLogger) *ViewSelector {
	return &ViewSelector{categories: categories, views: views, client: client, log: log}
}

// Select resolves the interface's category, loads its candidate views and
// asks the model for the relevant subset. Store errors propagate; a model
// failure degrades to an empty shortlist, never an error.
func (s *ViewSelector) Select(ctx context.Context, fields []model.InputField) ([]catalog.View, error) {
	if len(fields) == 0 {
		return nil, nil
	}

	hits, err := s.categories.SearchCategories(ctx, model.InterfaceQuery(fields), 3)
	if err != nil {
		return nil, fmt.Errorf("category search: %w", err)
	}
	if len(hits) == 0 {
		s.log.Infow("no category found for interface", "interface", fields[0].IfName)
		return nil, nil
	}
	best := hits[0]
	s.log.Infow("category resolved", "category", best.ViewCategory, "score", best.Score)

	candidates, err := s.views.ViewsByCategory(ctx, best.ViewCategory)
	if err != nil {
		return nil, fmt.Errorf("views by category %q: %w", best.ViewCategory, err)
	}
	if len(candidates) == 0 {
		s.log.Infow("no candidate views for category", "category", best.ViewCategory)
		return nil, nil
	}

	payload, u, err := s.client.CallFunction(ctx, prompt.ViewSelection(fields, candidates), prompt.ViewSelectionToolDef())
	usage.Record(ctx, s.client.Name(), u.InputTokens, u.OutputTokens, u.TotalTokens)
	if err != nil {
		s.log.Warnw("view selection call failed, continuing without catalog views", "error", err)
		return nil, nil
	}
	if payload == nil {
		s.log.Warnw("view selection returned no structured payload")
		return nil, nil
	}

	names, _ := payload["relevant_view_names"].([]any)
	byName := make(map[string]catalog.View, len(candidates))
	for _, v := range candidates {
		byName[v.Name] = v
	}

	// Keep the model's order; drop names outside the candidate set and
	// duplicates.
	var selected []catalog.View
	seen := make(map[string]bool)
	for _, raw := range names {
		name, ok := raw.(string)
		if !ok || seen[name] {
			continue
		}
		v, ok := byName[name]
		if !ok {
			s.log.Debugw("model selected unknown view, dropped", "view", name)
			continue
		}
		seen[name] = true
		selected = append(selected, v)
	}

	s.log.Infow("views selected", "candidates", len(candidates), "selected", len(selected))
	return selected, nil
}
