package model

import (
	"time"
)

// DefaultVersionNumber is assigned to solutions created without a version.
const DefaultVersionNumber = 1

// Solution belongs to one problem and may branch off a parent solution.
// ParentSolutionID is a lookup key only; children are found by query.
type Solution struct {
	ID                     int64     `json:"solution_id"`
	ProblemID              int64     `json:"problem_id"`
	ParentSolutionID       *int64    `json:"parent_solution_id"`
	CodeSnippet            string    `json:"code_snippet" validate:"required"`
	Explanation            *string   `json:"explanation"`
	ApproachType           *string   `json:"approach_type" validate:"omitnil,max=100"`
	ImprovementDescription *string   `json:"improvement_description"`
	SuccessRate            *float64  `json:"success_rate" validate:"omitnil,gte=0,lte=100"`
	BranchType             *string   `json:"branch_type" validate:"omitnil,max=50"`
	VersionNumber          int       `json:"version_number" validate:"gte=1"`
	CreatedAt              time.Time `json:"created_at"`
}

type SolutionDetail struct {
	Solution
	ChildrenCount  int       `json:"children_count"`
	ParentSolution *Solution `json:"parent_solution"`
}

// SolutionWithResources is a solution as it appears inside ProblemFull.
type SolutionWithResources struct {
	Solution
	Resources []Resource `json:"resources"`
}
