// Package constraint holds the invariant rules applied before any write:
// bounded scores, field lengths, no self-loop and no self-relation.
// The schema enforces the same rules; repository classification maps a
// violation surfaced by storage to the same error kind returned here.
package constraint

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"problem_tracker/internal/common"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// Check validates v against its `validate` tags. The first violation is
// returned as an ErrInvalidArgument naming the field.
func Check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return common.Invalid("%s", describe(verrs[0]))
	}
	return fmt.Errorf("constraint.Check: %w", err)
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be <= %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be > %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// NoSelfLoop rejects a solution that names itself as its parent. A zero id
// means the solution is not stored yet and cannot loop.
func NoSelfLoop(solutionID int64, parentID *int64) error {
	if solutionID != 0 && parentID != nil && *parentID == solutionID {
		return common.Invalid("solution %d cannot be its own parent", solutionID)
	}
	return nil
}

// NoSelfRelation rejects a problem relation whose endpoints are the same problem.
func NoSelfRelation(fromProblemID, toProblemID int64) error {
	if fromProblemID == toProblemID {
		return common.Invalid("problem %d cannot be related to itself", fromProblemID)
	}
	return nil
}
