package match

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cdsmatch/internal/llm"
	"cdsmatch/internal/model"
	"cdsmatch/internal/prompt"
	"cdsmatch/internal/usage"
)

// FieldMatcher resolves one batch of fields against the catalog context via
// a single function-calling model round trip.
type FieldMatcher struct {
	client llm.Client
	log    *zap.SugaredLogger
}

// NewFieldMatcher wires the matcher's collaborators.
func NewFieldMatcher(client llm.Client, log *zap.SugaredLogger) *FieldMatcher {
	return &FieldMatcher{client: client, log: log}
}

// MatchBatch returns exactly one result per input field, in input order. A
// model call that yields no structured payload is fatal for the batch;
// downgrading that to empty placeholders is the scheduler's call, not ours.
func (m *FieldMatcher) MatchBatch(ctx context.Context, fields []model.InputField, candidates []model.CandidateField) ([]model.MatchResult, error) {
	if len(fields) == 0 {
		return nil, nil
	}

	payload, u, err := m.client.CallFunction(ctx, prompt.FieldMatching(fields, candidates), prompt.FieldMatchingTool())
	usage.Record(ctx, m.client.Name(), u.InputTokens, u.OutputTokens, u.TotalTokens)
	if err != nil {
		return nil, fmt.Errorf("field matching call: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("model returned empty response for field matching")
	}

	review, _ := payload["review"].([]any)
	byRow := make(map[int]map[string]any, len(review))
	for _, raw := range review {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		idx, ok := intValue(entry["row_index"])
		if !ok {
			continue
		}
		byRow[idx] = entry
	}
	m.log.Debugw("model returned matches", "returned", len(byRow), "requested", len(fields))

	results := make([]model.MatchResult, len(fields))
	for i, field := range fields {
		entry, ok := byRow[field.RowIndex]
		if !ok {
			m.log.Warnw("no match returned for row, using empty values", "row", field.RowIndex)
			continue
		}
		results[i] = convertEntry(entry)
	}
	return results, nil
}

// convertEntry normalizes one model-returned row object into a MatchResult.
func convertEntry(entry map[string]any) model.MatchResult {
	tableID := stringValue(entry["table_id"])
	r := model.MatchResult{
		TableID:     tableID,
		FieldID:     cleanFieldID(stringValue(entry["field_id"])),
		FieldDesc:   stringValue(entry["field_desc"]),
		KeyFlag:     normalizeKeyFlag(entry["key_flag"]),
		DataType:    stringValue(entry["data_type"]),
		LengthTotal: stringValue(entry["length_total"]),
		LengthDec:   stringValue(entry["length_dec"]),
		Notes:       normalizeNotes(stringValue(entry["notes"])),
	}
	if tableID != "" {
		r.Match = model.MatchCDS
	}
	return r
}

// normalizeKeyFlag maps the model's key indicator to the presence marker.
// Booleans and the usual string spellings count; everything else is empty.
func normalizeKeyFlag(v any) string {
	switch t := v.(type) {
	case bool:
		if t {
			return model.KeyFlagMark
		}
	case string:
		switch strings.ToLower(t) {
		case "true", "y", "yes", "x":
			return model.KeyFlagMark
		}
	}
	return ""
}

// cleanFieldID strips a leading "ViewName." qualifier the model sometimes
// echoes. Only the first dot-delimited segment is removed; deeper dots stay.
func cleanFieldID(id string) string {
	if i := strings.Index(id, "."); i >= 0 {
		return id[i+1:]
	}
	return id
}

// normalizeNotes recomposes the notes into the canonical "NN% - text" form
// when a confidence percentage is embedded anywhere in the text.
func normalizeNotes(notes string) string {
	pct, desc := ParseNotes(notes)
	switch {
	case pct != "" && desc != "":
		return pct + " - " + desc
	case pct != "":
		return pct
	default:
		return desc
	}
}

func stringValue(v any) string {
	if v == nil {
		return ""
	}
	return asString(v)
}

// intValue accepts the integer shapes a decoded JSON payload can carry.
func intValue(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	default:
		return 0, false
	}
}
