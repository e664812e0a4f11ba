package catalog

import (
	"context"
	"fmt"
	"strings"
)

// View is a catalog view reference: name plus human description.
type View struct {
	Name string
	Desc string
}

// ViewsByCategory returns all active views tagged with category. Category
// strings may be slash-delimited lists ("MM/SD"); each segment is looked up
// independently and the results unioned, preserving first-seen order.
func (s *Store) ViewsByCategory(ctx context.Context, category string) ([]View, error) {
	var categories []string
	for _, c := range strings.Split(category, "/") {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}
	if len(categories) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(categories)), ",")
	args := make([]any, len(categories))
	for i, c := range categories {
		args[i] = c
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT name, description FROM views
			WHERE category IN (%s) AND active = 1
			ORDER BY name`, placeholders),
		args...)
	if err != nil {
		return nil, fmt.Errorf("views by category: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var views []View
	for rows.Next() {
		var v View
		if err := rows.Scan(&v.Name, &v.Desc); err != nil {
			return nil, err
		}
		if seen[v.Name] {
			continue
		}
		seen[v.Name] = true
		views = append(views, v)
	}
	return views, rows.Err()
}

// FieldContent returns the raw per-view field content blocks for the given
// views in the store's configured language. Views with no stored content are
// absent from the result.
func (s *Store) FieldContent(ctx context.Context, views []string) (map[string]string, error) {
	if len(views) == 0 {
		return map[string]string{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(views)), ",")
	args := make([]any, 0, len(views)+1)
	for _, v := range views {
		args = append(args, v)
	}
	args = append(args, s.lang)

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT view_name, content FROM view_fields
			WHERE view_name IN (%s) AND langu = ?`, placeholders),
		args...)
	if err != nil {
		return nil, fmt.Errorf("field content: %w", err)
	}
	defer rows.Close()

	content := make(map[string]string)
	for rows.Next() {
		var name, body string
		if err := rows.Scan(&name, &body); err != nil {
			return nil, err
		}
		content[name] = body
	}
	return content, rows.Err()
}
