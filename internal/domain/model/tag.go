package model

type Tag struct {
	ID          int64   `json:"tag_id"`
	TagName     string  `json:"tag_name" validate:"required,max=100"`
	Category    *string `json:"category" validate:"omitnil,max=50"`
	Description *string `json:"description"`
}
