package model

// Composite read views assembled by the view service.

type LinkedResource struct {
	Resource         Resource `json:"resource"`
	RelevanceScore   *float64 `json:"relevance_score"`
	ContributionType *string  `json:"contribution_type"`
}

type ProblemFull struct {
	Problem         ProblemWithAuthor       `json:"problem"`
	Solutions       []SolutionWithResources `json:"solutions"`
	Tags            []Tag                   `json:"tags"`
	LinkedResources []LinkedResource        `json:"linked_resources"`
	RelationsOut    []ProblemRelation       `json:"relations_out"`
	RelationsIn     []ProblemRelation       `json:"relations_in"`
}

type TopTag struct {
	TagID      int64  `json:"tag_id"`
	TagName    string `json:"tag_name"`
	UsageCount int64  `json:"usage_count"`
}

type TopResource struct {
	ResourceID int64   `json:"resource_id"`
	Title      *string `json:"title"`
	UsageCount int64   `json:"usage_count"`
}

type Dashboard struct {
	RecentProblems  []ProblemSummary `json:"recent_problems"`
	RecentSolutions []Solution       `json:"recent_solutions"`
	TopTags         []TopTag         `json:"top_tags"`
	TopResources    []TopResource    `json:"top_resources"`
}
