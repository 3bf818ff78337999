package model

import (
	"time"
)

type Problem struct {
	ID          int64     `json:"problem_id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title" validate:"required,max=500"`
	Description *string   `json:"description"`
	ProblemType *string   `json:"problem_type" validate:"omitnil,max=100"`
	CreatedAt   time.Time `json:"created_at"`
	Resolved    bool      `json:"resolved"`
}

// ProblemSummary is the list-item shape used by the dashboard and resource detail.
type ProblemSummary struct {
	ID        int64     `json:"problem_id"`
	Title     string    `json:"title"`
	Resolved  bool      `json:"resolved"`
	CreatedAt time.Time `json:"created_at"`
}

func (p Problem) Summary() ProblemSummary {
	return ProblemSummary{ID: p.ID, Title: p.Title, Resolved: p.Resolved, CreatedAt: p.CreatedAt}
}

type ProblemWithAuthor struct {
	Problem
	Author UserPublic `json:"author"`
}
