package match

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"cdsmatch/internal/catalog"
	"cdsmatch/internal/jsonrepair"
	"cdsmatch/internal/model"
)

// FieldContentProvider returns per-view field definitions as raw text
// blocks keyed by view name.
type FieldContentProvider interface {
	FieldContent(ctx context.Context, views []string) (map[string]string, error)
}

// ContextBuilder flattens the selected views' field catalogs into the
// candidate list handed to the model. The raw content is a nested-array
// text block that may carry unescaped interior quotes, so it runs through
// the repair pass before decoding.
type ContextBuilder struct {
	content FieldContentProvider
	log     *zap.SugaredLogger
}

// NewContextBuilder wires the builder's collaborators.
func NewContextBuilder(content FieldContentProvider, log *zap.SugaredLogger) *ContextBuilder {
	return &ContextBuilder{content: content, log: log}
}

// Build fetches and decodes every selected view's field catalog. Views are
// emitted in selection order so prompts stay reproducible. Blocks or rows
// that still fail to decode after repair are skipped, not fatal.
func (b *ContextBuilder) Build(ctx context.Context, selected []catalog.View) ([]model.CandidateField, error) {
	if len(selected) == 0 {
		return nil, nil
	}

	names := make([]string, len(selected))
	for i, v := range selected {
		names[i] = v.Name
	}
	blocks, err := b.content.FieldContent(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("field content: %w", err)
	}

	var out []model.CandidateField
	for _, view := range selected {
		raw, ok := blocks[view.Name]
		if !ok || raw == "" {
			b.log.Warnw("no field content for view", "view", view.Name)
			continue
		}

		var rows [][]any
		if err := json.Unmarshal([]byte(jsonrepair.Repair(raw)), &rows); err != nil {
			b.log.Warnw("could not parse field content, view skipped", "view", view.Name, "error", err)
			continue
		}

		for _, row := range rows {
			// Tuple layout: name, key flag, description, element id,
			// data type, total length, decimal length.
			if len(row) < 7 {
				continue
			}
			out = append(out, model.CandidateField{
				ViewName:    view.Name,
				ViewDesc:    view.Desc,
				FieldName:   asString(row[0]),
				IsKey:       truthy(row[1]),
				FieldDesc:   asString(row[2]),
				FieldID:     asString(row[3]),
				DataType:    asString(row[4]),
				LengthTotal: asString(row[5]),
				LengthDec:   asString(row[6]),
			})
		}
	}

	return out, nil
}

// asString renders a decoded JSON value as a cell string. Integral numbers
// drop the decimal point.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// truthy interprets the catalog's key indicator: a boolean, or any
// non-empty string marker.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return false
	}
}
