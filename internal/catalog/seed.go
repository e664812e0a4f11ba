package catalog

import (
	"context"
	"fmt"
)

// Seeding API used by the catalog import tooling and tests. Each Add embeds
// the record's searchable text before insert.

// AddScenario inserts a business scenario with its category tag.
func (s *Store) AddScenario(ctx context.Context, scenario, description, viewCategory string) error {
	blob, err := s.embed(ctx, scenario+" "+description)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scenarios (scenario, description, view_category, embedding) VALUES (?, ?, ?, ?)`,
		scenario, description, viewCategory, blob)
	if err != nil {
		return fmt.Errorf("insert scenario: %w", err)
	}
	return nil
}

// AddView inserts or replaces a catalog view.
func (s *Store) AddView(ctx context.Context, name, description, category string, active bool) error {
	act := 0
	if active {
		act = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO views (name, description, category, active) VALUES (?, ?, ?, ?)`,
		name, description, category, act)
	if err != nil {
		return fmt.Errorf("insert view: %w", err)
	}
	return nil
}

// SetFieldContent stores the raw field content block for a view in the given
// language.
func (s *Store) SetFieldContent(ctx context.Context, viewName, langu, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO view_fields (view_name, langu, content) VALUES (?, ?, ?)`,
		viewName, langu, content)
	if err != nil {
		return fmt.Errorf("insert field content: %w", err)
	}
	return nil
}

// AddCustomField inserts a pre-approved custom-field mapping. sourceDesc is
// the text the record is matched against.
func (s *Store) AddCustomField(ctx context.Context, hit CustomFieldHit, sourceDesc string, active bool) error {
	blob, err := s.embed(ctx, sourceDesc)
	if err != nil {
		return err
	}
	isKey, act := 0, 0
	if hit.IsKey {
		isKey = 1
	}
	if active {
		act = 1
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO custom_fields
			(table_name, field_name, field_desc, is_key, obligatory,
			 data_type, length_total, length_dec, source_desc, active, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		hit.TableName, hit.FieldName, hit.FieldDesc, isKey, hit.Obligatory,
		hit.DataType, hit.LengthTotal, hit.LengthDec, sourceDesc, act, blob)
	if err != nil {
		return fmt.Errorf("insert custom field: %w", err)
	}
	return nil
}
