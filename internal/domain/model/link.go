package model

import (
	"time"
)

// Association rows. Each is keyed by the pair of ids it links.

type ProblemTag struct {
	ProblemID int64 `json:"problem_id"`
	TagID     int64 `json:"tag_id"`
}

type ResourceTag struct {
	ResourceID int64    `json:"resource_id"`
	TagID      int64    `json:"tag_id"`
	Confidence *float64 `json:"confidence" validate:"omitnil,gte=0,lte=1"`
}

type ProblemResource struct {
	ProblemID        int64     `json:"problem_id"`
	ResourceID       int64     `json:"resource_id"`
	RelevanceScore   *float64  `json:"relevance_score" validate:"omitnil,gte=0,lte=1"`
	ContributionType *string   `json:"contribution_type" validate:"omitnil,max=50"`
	AddedAt          time.Time `json:"added_at"`
}

type SolutionResource struct {
	SolutionID int64 `json:"solution_id"`
	ResourceID int64 `json:"resource_id"`
}

// ProblemRelation is directed: (a, b) and (b, a) are independent rows.
type ProblemRelation struct {
	FromProblemID int64    `json:"from_problem_id"`
	ToProblemID   int64    `json:"to_problem_id"`
	RelationType  *string  `json:"relation_type" validate:"omitnil,max=50"`
	Strength      *float64 `json:"strength" validate:"omitnil,gte=0,lte=1"`
}
