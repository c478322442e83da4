package validation

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// MaxIdentifierLength is the longest author or blueprint name accepted.
const MaxIdentifierLength = 255

// Coordinate is one decoded point of a request body.
type Coordinate struct {
	X int
	Y int
}

// CreateBlueprintRequest mirrors the fields needed for create blueprint validation.
type CreateBlueprintRequest struct {
	Author string
	Name   string
	Points []Coordinate
}

// ValidateCreateBlueprintRequest validates the fields of a create blueprint request.
// Returns a slice of field errors; empty slice means valid. An empty point
// list is allowed.
func ValidateCreateBlueprintRequest(req CreateBlueprintRequest) []FieldError {
	var errs []FieldError
	errs = append(errs, validateIdentifier("author", req.Author)...)
	errs = append(errs, validateIdentifier("name", req.Name)...)
	for i, p := range req.Points {
		errs = append(errs, validateCoordinate(fmt.Sprintf("points[%d].x", i), p.X)...)
		errs = append(errs, validateCoordinate(fmt.Sprintf("points[%d].y", i), p.Y)...)
	}
	return errs
}

// AppendPointRequest mirrors the fields of an append point request. Nil
// coordinates were absent from the body.
type AppendPointRequest struct {
	X *int
	Y *int
}

// ValidateAppendPointRequest checks that both coordinates were supplied.
func ValidateAppendPointRequest(req AppendPointRequest) []FieldError {
	var errs []FieldError
	if req.X == nil {
		errs = append(errs, FieldError{Field: "x", Message: "x is required"})
	} else {
		errs = append(errs, validateCoordinate("x", *req.X)...)
	}
	if req.Y == nil {
		errs = append(errs, FieldError{Field: "y", Message: "y is required"})
	} else {
		errs = append(errs, validateCoordinate("y", *req.Y)...)
	}
	return errs
}

// validateCoordinate keeps coordinates within the 32-bit columns both stores use.
func validateCoordinate(field string, v int) []FieldError {
	if int64(v) < math.MinInt32 || int64(v) > math.MaxInt32 {
		return []FieldError{{Field: field, Message: fmt.Sprintf("%s must be between %d and %d", field, math.MinInt32, math.MaxInt32)}}
	}
	return nil
}

func validateIdentifier(field, value string) []FieldError {
	value = strings.TrimSpace(value)
	if value == "" {
		return []FieldError{{Field: field, Message: fmt.Sprintf("%s is required", field)}}
	}
	if utf8.RuneCountInString(value) > MaxIdentifierLength {
		return []FieldError{{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, MaxIdentifierLength)}}
	}
	if strings.Contains(value, "/") {
		return []FieldError{{Field: field, Message: fmt.Sprintf("%s must not contain '/'", field)}}
	}
	return nil
}
