//go:build property
// +build property

package resolver

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestSubstituteProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("non-empty values replace their token and keep the separator", prop.ForAll(
		func(a, b string) bool {
			name := Substitute("${x}_?${y}.png", []Coordinate{{Dim: "x", Value: a}, {Dim: "y", Value: b}})
			return name == a+"_"+b+".png"
		},
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.Property("empty optional value drops its separator", prop.ForAll(
		func(a string) bool {
			name := Substitute("${x}_?${y}.png", []Coordinate{{Dim: "x", Value: a}, {Dim: "y", Value: ""}})
			return name == a+".png"
		},
		gen.Identifier(),
	))

	properties.Property("empty plain value leaves its separator", prop.ForAll(
		func(a string) bool {
			name := Substitute("${x}_${y}.png", []Coordinate{{Dim: "x", Value: a}, {Dim: "y", Value: ""}})
			return name == a+"_.png"
		},
		gen.Identifier(),
	))

	properties.Property("substitution is deterministic", prop.ForAll(
		func(a, b string) bool {
			coords := []Coordinate{{Dim: "x", Value: a}, {Dim: "y", Value: b}}
			return Substitute("${y}-?${x}", coords) == Substitute("${y}-?${x}", coords)
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
