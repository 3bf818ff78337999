package model

// ProblemFilter holds search criteria; empty fields are ignored and the rest
// are combined with AND.
type ProblemFilter struct {
	Keyword string // substring of title or description, case-insensitive
	Type    string // problem_type, case-insensitive exact
	Tag     string // linked tag name, case-insensitive exact
}

type ResourceFilter struct {
	Keyword  string // substring of title, url or content_summary
	Platform string // source_platform, case-insensitive exact
	Tag      string
	MinScore *float64
}
