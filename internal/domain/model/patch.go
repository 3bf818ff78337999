package model

import (
	"problem_tracker/internal/common"
)

// Patch types list the updatable fields of each entity. ApplyTo copies only the
// fields that were present in the request onto the current row.

type UserPatch struct {
	Username  Optional[string] `json:"username"`
	Email     Optional[string] `json:"email"`
	FirstName Optional[string] `json:"first_name"`
	LastName  Optional[string] `json:"last_name"`
}

func (p UserPatch) IsEmpty() bool {
	return !p.Username.Set && !p.Email.Set && !p.FirstName.Set && !p.LastName.Set
}

func (p UserPatch) ApplyTo(u *User) error {
	if err := setRequired("username", p.Username, &u.Username); err != nil {
		return err
	}
	if err := setRequired("email", p.Email, &u.Email); err != nil {
		return err
	}
	setNullable(p.FirstName, &u.FirstName)
	setNullable(p.LastName, &u.LastName)
	return nil
}

type ProblemPatch struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	ProblemType Optional[string] `json:"problem_type"`
	Resolved    Optional[bool]   `json:"resolved"`
}

func (p ProblemPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.ProblemType.Set && !p.Resolved.Set
}

func (p ProblemPatch) ApplyTo(pr *Problem) error {
	if err := setRequired("title", p.Title, &pr.Title); err != nil {
		return err
	}
	if err := setRequired("resolved", p.Resolved, &pr.Resolved); err != nil {
		return err
	}
	setNullable(p.Description, &pr.Description)
	setNullable(p.ProblemType, &pr.ProblemType)
	return nil
}

type SolutionPatch struct {
	ProblemID              Optional[int64]   `json:"problem_id"`
	ParentSolutionID       Optional[int64]   `json:"parent_solution_id"`
	CodeSnippet            Optional[string]  `json:"code_snippet"`
	Explanation            Optional[string]  `json:"explanation"`
	ApproachType           Optional[string]  `json:"approach_type"`
	ImprovementDescription Optional[string]  `json:"improvement_description"`
	SuccessRate            Optional[float64] `json:"success_rate"`
	BranchType             Optional[string]  `json:"branch_type"`
	VersionNumber          Optional[int]     `json:"version_number"`
}

func (p SolutionPatch) IsEmpty() bool {
	return !p.ProblemID.Set && !p.ParentSolutionID.Set && !p.CodeSnippet.Set &&
		!p.Explanation.Set && !p.ApproachType.Set && !p.ImprovementDescription.Set &&
		!p.SuccessRate.Set && !p.BranchType.Set && !p.VersionNumber.Set
}

func (p SolutionPatch) ApplyTo(s *Solution) error {
	if err := setRequired("problem_id", p.ProblemID, &s.ProblemID); err != nil {
		return err
	}
	if err := setRequired("code_snippet", p.CodeSnippet, &s.CodeSnippet); err != nil {
		return err
	}
	if err := setRequired("version_number", p.VersionNumber, &s.VersionNumber); err != nil {
		return err
	}
	setNullable(p.ParentSolutionID, &s.ParentSolutionID)
	setNullable(p.Explanation, &s.Explanation)
	setNullable(p.ApproachType, &s.ApproachType)
	setNullable(p.ImprovementDescription, &s.ImprovementDescription)
	setNullable(p.SuccessRate, &s.SuccessRate)
	setNullable(p.BranchType, &s.BranchType)
	return nil
}

type ResourcePatch struct {
	URL             Optional[string]  `json:"url"`
	Title           Optional[string]  `json:"title"`
	SourcePlatform  Optional[string]  `json:"source_platform"`
	ContentSummary  Optional[string]  `json:"content_summary"`
	UsefulnessScore Optional[float64] `json:"usefulness_score"`
}

func (p ResourcePatch) IsEmpty() bool {
	return !p.URL.Set && !p.Title.Set && !p.SourcePlatform.Set &&
		!p.ContentSummary.Set && !p.UsefulnessScore.Set
}

func (p ResourcePatch) ApplyTo(r *Resource) error {
	if err := setRequired("url", p.URL, &r.URL); err != nil {
		return err
	}
	setNullable(p.Title, &r.Title)
	setNullable(p.SourcePlatform, &r.SourcePlatform)
	setNullable(p.ContentSummary, &r.ContentSummary)
	setNullable(p.UsefulnessScore, &r.UsefulnessScore)
	return nil
}

type TagPatch struct {
	TagName     Optional[string] `json:"tag_name"`
	Category    Optional[string] `json:"category"`
	Description Optional[string] `json:"description"`
}

func (p TagPatch) IsEmpty() bool {
	return !p.TagName.Set && !p.Category.Set && !p.Description.Set
}

func (p TagPatch) ApplyTo(t *Tag) error {
	if err := setRequired("tag_name", p.TagName, &t.TagName); err != nil {
		return err
	}
	setNullable(p.Category, &t.Category)
	setNullable(p.Description, &t.Description)
	return nil
}

func setRequired[T any](field string, o Optional[T], dst *T) error {
	if !o.Set {
		return nil
	}
	if o.Value == nil {
		return common.Invalid("%s cannot be null", field)
	}
	*dst = *o.Value
	return nil
}

func setNullable[T any](o Optional[T], dst **T) {
	if !o.Set {
		return
	}
	if o.Value == nil {
		*dst = nil
		return
	}
	v := *o.Value
	*dst = &v
}
