package catalog

import (
	"context"
	"fmt"
	"sort"

	"cdsmatch/internal/embedding"
)

// CategoryHit is one scenario record returned by SearchCategories.
type CategoryHit struct {
	Scenario     string
	Description  string
	ViewCategory string
	Score        float64 // cosine similarity, higher is better
}

// CustomFieldHit is the best custom-field record for a query, or nil when no
// record meets the threshold.
type CustomFieldHit struct {
	TableName   string
	FieldName   string
	FieldDesc   string
	IsKey       bool
	Obligatory  string
	DataType    string
	LengthTotal string
	LengthDec   string
	Similarity  float64
}

// SearchCategories returns the top-k scenario records most similar to query,
// descending by similarity.
func (s *Store) SearchCategories(ctx context.Context, query string, k int) ([]CategoryHit, error) {
	if k <= 0 {
		k = 3
	}
	queryVec, err := s.engine.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed category query: %w", err)
	}

	if s.hasVec {
		return s.searchCategoriesVec(ctx, queryVec, k)
	}
	return s.searchCategoriesScan(ctx, queryVec, k)
}

func (s *Store) searchCategoriesVec(ctx context.Context, queryVec []float32, k int) ([]CategoryHit, error) {
	// vec_distance_cosine is a distance: ascending order, score = 1 - d.
	rows, err := s.db.QueryContext(ctx, `
		SELECT scenario, description, view_category,
		       vec_distance_cosine(embedding, ?) AS distance
		FROM scenarios
		WHERE embedding IS NOT NULL
		ORDER BY distance ASC
		LIMIT ?`,
		encodeFloat32Blob(queryVec), k)
	if err != nil {
		return nil, fmt.Errorf("category search: %w", err)
	}
	defer rows.Close()

	var hits []CategoryHit
	for rows.Next() {
		var h CategoryHit
		var distance float64
		if err := rows.Scan(&h.Scenario, &h.Description, &h.ViewCategory, &distance); err != nil {
			return nil, err
		}
		h.Score = 1 - distance
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (s *Store) searchCategoriesScan(ctx context.Context, queryVec []float32, k int) ([]CategoryHit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT scenario, description, view_category, embedding FROM scenarios WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("category search: %w", err)
	}
	defer rows.Close()

	var hits []CategoryHit
	for rows.Next() {
		var h CategoryHit
		var blob []byte
		if err := rows.Scan(&h.Scenario, &h.Description, &h.ViewCategory, &blob); err != nil {
			return nil, err
		}
		score, err := embedding.CosineSimilarity(queryVec, decodeFloat32Blob(blob))
		if err != nil {
			continue // dimension mismatch, skip record
		}
		h.Score = score
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// SearchCustomField returns the single best active custom-field record for
// query, or nil when the best similarity is strictly below threshold. A score
// exactly at threshold is accepted.
func (s *Store) SearchCustomField(ctx context.Context, query string, threshold float64) (*CustomFieldHit, error) {
	queryVec, err := s.engine.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed custom-field query: %w", err)
	}

	var best *CustomFieldHit
	scan := func(h CustomFieldHit) {
		if best == nil || h.Similarity > best.Similarity {
			hh := h
			best = &hh
		}
	}

	if s.hasVec {
		err = s.scanCustomFieldsVec(ctx, queryVec, scan)
	} else {
		err = s.scanCustomFieldsGo(ctx, queryVec, scan)
	}
	if err != nil {
		return nil, err
	}

	if best == nil || best.Similarity < threshold {
		return nil, nil
	}
	return best, nil
}

func (s *Store) scanCustomFieldsVec(ctx context.Context, queryVec []float32, emit func(CustomFieldHit)) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name, field_name, field_desc, is_key, obligatory,
		       data_type, length_total, length_dec,
		       vec_distance_cosine(embedding, ?) AS distance
		FROM custom_fields
		WHERE active = 1 AND embedding IS NOT NULL
		ORDER BY distance ASC
		LIMIT 1`,
		encodeFloat32Blob(queryVec))
	if err != nil {
		return fmt.Errorf("custom-field search: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h CustomFieldHit
		var isKey int
		var distance float64
		if err := rows.Scan(&h.TableName, &h.FieldName, &h.FieldDesc, &isKey,
			&h.Obligatory, &h.DataType, &h.LengthTotal, &h.LengthDec, &distance); err != nil {
			return err
		}
		h.IsKey = isKey != 0
		h.Similarity = 1 - distance
		emit(h)
	}
	return rows.Err()
}

func (s *Store) scanCustomFieldsGo(ctx context.Context, queryVec []float32, emit func(CustomFieldHit)) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name, field_name, field_desc, is_key, obligatory,
		       data_type, length_total, length_dec, embedding
		FROM custom_fields
		WHERE active = 1 AND embedding IS NOT NULL`)
	if err != nil {
		return fmt.Errorf("custom-field search: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h CustomFieldHit
		var isKey int
		var blob []byte
		if err := rows.Scan(&h.TableName, &h.FieldName, &h.FieldDesc, &isKey,
			&h.Obligatory, &h.DataType, &h.LengthTotal, &h.LengthDec, &blob); err != nil {
			return err
		}
		score, err := embedding.CosineSimilarity(queryVec, decodeFloat32Blob(blob))
		if err != nil {
			continue
		}
		h.IsKey = isKey != 0
		h.Similarity = score
		emit(h)
	}
	return rows.Err()
}
