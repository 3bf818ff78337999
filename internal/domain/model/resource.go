package model

import (
	"time"
)

type Resource struct {
	ID              int64      `json:"resource_id"`
	UserID          int64      `json:"user_id"`
	URL             string     `json:"url" validate:"required"`
	Title           *string    `json:"title" validate:"omitnil,max=500"`
	SourcePlatform  *string    `json:"source_platform" validate:"omitnil,max=50"`
	ContentSummary  *string    `json:"content_summary"`
	UsefulnessScore *float64   `json:"usefulness_score" validate:"omitnil,gte=0,lte=5"`
	VisitCount      int        `json:"visit_count" validate:"gte=1"`
	FirstVisitedAt  *time.Time `json:"first_visited_at"`
	LastVisitedAt   *time.Time `json:"last_visited_at"`
}

type ResourceDetail struct {
	Resource
	LinkedProblems  []ProblemSummary `json:"linked_problems"`
	LinkedSolutions []Solution       `json:"linked_solutions"`
	Tags            []Tag            `json:"tags"`
}
