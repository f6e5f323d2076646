package dependency

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func flatten(edges ...string) []string {
	var g Graph
	for _, e := range edges {
		target, dep, ok := strings.Cut(e, " -> ")
		if !ok {
			g.Add(e)
			continue
		}
		g.Add(target, dep)
	}
	var out []string
	g.Flatten(func(v string) { out = append(out, v) })
	return out
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name  string
		edges []string
		want  []string
	}{
		{
			name: "templates",
			edges: []string{
				"DateTime -> AbstractPatternType",
				"AbstractPatternType -> XsdType",
				"AbstractPatternType -> ValidationException",
				"XsdType -> OutputStream",
				"UnsignedByte -> AbstractIntegerType",
				"AbstractIntegerType -> XsdType",
			},
			want: []string{
				"OutputStream", "XsdType", "AbstractIntegerType",
				"ValidationException", "AbstractPatternType",
				"DateTime", "UnsignedByte",
			},
		},
		{
			name: "edge order does not matter",
			edges: []string{
				"AbstractIntegerType -> XsdType",
				"XsdType -> OutputStream",
				"UnsignedByte -> AbstractIntegerType",
				"AbstractPatternType -> ValidationException",
				"DateTime -> AbstractPatternType",
				"AbstractPatternType -> XsdType",
			},
			want: []string{
				"OutputStream", "XsdType", "AbstractIntegerType",
				"ValidationException", "AbstractPatternType",
				"DateTime", "UnsignedByte",
			},
		},
		{
			name: "cycles are visited once",
			edges: []string{
				"Book -> Shelf",
				"Shelf -> Book",
				"Catalog -> Shelf",
			},
			want: []string{"Shelf", "Book", "Catalog"},
		},
		{
			name:  "targets without dependencies",
			edges: []string{"Support", "OutputStream"},
			want:  []string{"OutputStream", "Support"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, flatten(tt.edges...))
		})
	}
}

func TestLen(t *testing.T) {
	var g Graph
	require.Zero(t, g.Len())
	g.Add("GYear", "AbstractPatternType")
	g.Add("AbstractPatternType", "XsdType")
	g.Add("GYear", "XsdType")
	require.Equal(t, 2, g.Len())
}
