package social

import "fmt"

// PropertyKind enumerates the value kinds a city property may hold.
type PropertyKind string

const (
	KindNumber  PropertyKind = "number"
	KindVector2 PropertyKind = "vector2"
	KindVector3 PropertyKind = "vector3"
	KindString  PropertyKind = "string"
)

// Property is a tagged value stored in a city's property bag. Only the
// fields of its Kind are meaningful; Property values compare with ==.
type Property struct {
	Kind   PropertyKind `json:"kind"`
	Number float64      `json:"number,omitempty"`
	X      float64      `json:"x,omitempty"`
	Y      float64      `json:"y,omitempty"`
	Z      float64      `json:"z,omitempty"`
	Text   string       `json:"text,omitempty"`
}

// Number returns a numeric property.
func Number(v float64) Property {
	return Property{Kind: KindNumber, Number: v}
}

// Vector2 returns a 2D vector property.
func Vector2(x, y float64) Property {
	return Property{Kind: KindVector2, X: x, Y: y}
}

// Vector3 returns a 3D vector property.
func Vector3(x, y, z float64) Property {
	return Property{Kind: KindVector3, X: x, Y: y, Z: z}
}

// String returns a text property.
func String(s string) Property {
	return Property{Kind: KindString, Text: s}
}

// Validate checks that Kind is known.
func (p Property) Validate() error {
	switch p.Kind {
	case KindNumber, KindVector2, KindVector3, KindString:
		return nil
	default:
		return fmt.Errorf("unknown property kind %q", p.Kind)
	}
}

// Format renders the value for display.
func (p Property) Format() string {
	switch p.Kind {
	case KindNumber:
		return fmt.Sprintf("%g", p.Number)
	case KindVector2:
		return fmt.Sprintf("(%g, %g)", p.X, p.Y)
	case KindVector3:
		return fmt.Sprintf("(%g, %g, %g)", p.X, p.Y, p.Z)
	case KindString:
		return p.Text
	default:
		return ""
	}
}
