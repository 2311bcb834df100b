package fault

import (
	"errors"
	"fmt"
	"strings"
)

// Category is one of the six defect kinds in the corpus.
type Category string

const (
	OutOfBoundsWrite          Category = "OutOfBoundsWrite"
	UnboundedRead             Category = "UnboundedRead"
	FormatInjection           Category = "FormatInjection"
	IntegerOverflowAllocation Category = "IntegerOverflowAllocation"
	UseAfterFree              Category = "UseAfterFree"
	UnboundedResourceGrowth   Category = "UnboundedResourceGrowth"
)

// AllCategories is the fixed enumeration in corpus order.
var AllCategories = []Category{
	OutOfBoundsWrite,
	UnboundedRead,
	FormatInjection,
	IntegerOverflowAllocation,
	UseAfterFree,
	UnboundedResourceGrowth,
}

// Class values returned by Category.Class.
const (
	ClassMemorySafety       = "memory-safety"
	ClassResourceAccounting = "resource-accounting"
)

var ErrUnknownCategory = errors.New("unknown defect category")

// ParseCategory matches s against the enumeration, ignoring case.
func ParseCategory(s string) (Category, error) {
	for _, c := range AllCategories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Valid reports whether c is part of the enumeration.
func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Class separates resource accounting violations (leaks) from memory
// corruption. Detectors are scored on telling the two apart.
func (c Category) Class() string {
	if c == UnboundedResourceGrowth {
		return ClassResourceAccounting
	}
	return ClassMemorySafety
}

func (c Category) String() string {
	return string(c)
}
