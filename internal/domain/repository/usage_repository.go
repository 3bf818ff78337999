package repository

import (
	"context"
	"database/sql"
	"fmt"

	"problem_tracker/internal/domain/model"
)

// UsageRanker ranks tags and resources by how often they are linked,
// system-wide. Unused rows rank with a count of zero; ties go to the lower id.
type UsageRanker interface {
	TopTags(ctx context.Context, tx *sql.Tx, limit int) ([]model.TopTag, error)
	TopResources(ctx context.Context, tx *sql.Tx, limit int) ([]model.TopResource, error)
}

// pgUsageRanker recomputes the counts on every call.
type pgUsageRanker struct {
	db *sql.DB
}

func NewPgUsageRanker(db *sql.DB) UsageRanker {
	return &pgUsageRanker{db: db}
}

func (r *pgUsageRanker) TopTags(ctx context.Context, tx *sql.Tx, limit int) ([]model.TopTag, error) {
	query := `
        SELECT t.tag_id, t.tag_name, COUNT(pt.problem_id) AS usage_count
        FROM tags t
        LEFT JOIN problem_tags pt ON pt.tag_id = t.tag_id
        GROUP BY t.tag_id, t.tag_name
        ORDER BY usage_count DESC, t.tag_id ASC
        LIMIT $1`
	rows, err := conn(r.db, tx).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, classify("pgUsageRanker.TopTags query", err)
	}
	defer rows.Close()

	top := []model.TopTag{}
	for rows.Next() {
		var t model.TopTag
		if err := rows.Scan(&t.TagID, &t.TagName, &t.UsageCount); err != nil {
			return nil, fmt.Errorf("pgUsageRanker.TopTags scan: %w", err)
		}
		top = append(top, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUsageRanker.TopTags rows.Err: %w", err)
	}
	return top, nil
}

// TopResources counts problem links plus solution links per resource.
func (r *pgUsageRanker) TopResources(ctx context.Context, tx *sql.Tx, limit int) ([]model.TopResource, error) {
	query := `
        SELECT r.resource_id, r.title,
               (SELECT COUNT(*) FROM problem_resources pr WHERE pr.resource_id = r.resource_id)
             + (SELECT COUNT(*) FROM solution_resources sr WHERE sr.resource_id = r.resource_id) AS usage_count
        FROM resources r
        ORDER BY usage_count DESC, r.resource_id ASC
        LIMIT $1`
	rows, err := conn(r.db, tx).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, classify("pgUsageRanker.TopResources query", err)
	}
	defer rows.Close()

	top := []model.TopResource{}
	for rows.Next() {
		var t model.TopResource
		if err := rows.Scan(&t.ResourceID, &t.Title, &t.UsageCount); err != nil {
			return nil, fmt.Errorf("pgUsageRanker.TopResources scan: %w", err)
		}
		top = append(top, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUsageRanker.TopResources rows.Err: %w", err)
	}
	return top, nil
}
