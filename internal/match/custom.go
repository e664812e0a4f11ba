// Package match implements the two-stage field-matching engine: a
// deterministic similarity pre-match against the curated custom-field table,
// then language-model matching against a shortlisted catalog context, with a
// bounded-concurrency batch scheduler and an order-restoring merge.
package match

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cdsmatch/internal/catalog"
	"cdsmatch/internal/model"
)

// CustomSearcher is the similarity lookup against the custom-field table.
type CustomSearcher interface {
	SearchCustomField(ctx context.Context, query string, threshold float64) (*catalog.CustomFieldHit, error)
}

// CustomFieldMatcher partitions input fields into rows resolved directly
// from the custom-field table and rows left for the catalog stage.
type CustomFieldMatcher struct {
	store     CustomSearcher
	threshold float64
	log       *zap.SugaredLogger
}

// NewCustomFieldMatcher creates a matcher with the given acceptance
// threshold. A score exactly at the threshold is accepted.
func NewCustomFieldMatcher(store CustomSearcher, threshold float64, log *zap.SugaredLogger) *CustomFieldMatcher {
	return &CustomFieldMatcher{store: store, threshold: threshold, log: log}
}

// Match issues one similarity query per field. Every input field lands in
// exactly one of the two returned sets. A store error is fatal for the file.
func (m *CustomFieldMatcher) Match(ctx context.Context, fields []model.InputField) ([]model.MatchedRow, []model.InputField, error) {
	var matched []model.MatchedRow
	var unmatched []model.InputField

	for _, field := range fields {
		hit, err := m.store.SearchCustomField(ctx, field.QueryString(), m.threshold)
		if err != nil {
			return nil, nil, fmt.Errorf("custom field search for row %d: %w", field.RowIndex, err)
		}
		if hit == nil {
			unmatched = append(unmatched, field)
			continue
		}

		keyFlag := ""
		if hit.IsKey {
			keyFlag = model.KeyFlagMark
		}
		matched = append(matched, model.MatchedRow{
			Field: field,
			Result: model.MatchResult{
				TableID:     hit.TableName,
				FieldID:     hit.FieldName,
				FieldDesc:   hit.FieldDesc,
				KeyFlag:     keyFlag,
				Obligatory:  hit.Obligatory,
				DataType:    hit.DataType,
				LengthTotal: hit.LengthTotal,
				LengthDec:   hit.LengthDec,
				SampleValue: field.SampleValue,
				Match:       model.MatchCustom,
				Notes:       fmt.Sprintf("%d%% - Custom field match", int(hit.Similarity*100)),
			},
		})
		m.log.Debugw("custom field match", "row", field.RowIndex, "similarity", hit.Similarity)
	}

	return matched, unmatched, nil
}
