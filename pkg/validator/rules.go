package validator

import (
	"fmt"
	"slices"
	"strings"
)

type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// RequiredString fails for empty or whitespace-only values.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

// OneOf fails unless value is one of options.
func OneOf[T comparable](field string, value T, options []T) Rule {
	return Rule{
		Check: func() bool { return slices.Contains(options, value) },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be one of: %v", options)},
	}
}

// NotEqual fails when value equals other. otherField names it in the message.
func NotEqual[T comparable](field string, value T, otherField string, other T) Rule {
	return Rule{
		Check: func() bool { return value != other },
		Error: ValidationError{Field: field, Message: "must differ from " + otherField},
	}
}

func RequiredSlice[T any](field string, value []T) Rule {
	return Rule{
		Check: func() bool { return len(value) > 0 },
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

func MaxLenSlice[T any](field string, value []T, max int) Rule {
	return Rule{
		Check: func() bool { return len(value) <= max },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must have at most %d items", max)},
	}
}

// MinNum fails when value is below min.
func MinNum[T Numeric](field string, value T, min T) Rule {
	return Rule{
		Check: func() bool { return value >= min },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at least %v", min)},
	}
}
