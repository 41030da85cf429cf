package model

import "strings"

//go:generate go tool stringer -type=Shape -trimprefix=Shape -output=shape_string.go

// Shape classifies the declaration form of a type.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeStruct        // product type with named fields
	ShapeTuple         // product type with positional fields
	ShapeVariant       // sum type (interface, oneOf)
	ShapeScalar        // named non-composite type
	ShapeOther         // anything else (maps, channels, functions)
)

// ParseShape returns the Shape whose String form equals s (case-insensitive).
// Empty input is treated as ShapeStruct.
func ParseShape(s string) (Shape, bool) {
	if s == "" {
		return ShapeStruct, true
	}

	for sh := ShapeUnknown; sh <= ShapeOther; sh++ {
		if strings.EqualFold(sh.String(), s) {
			return sh, true
		}
	}

	return ShapeUnknown, false
}
