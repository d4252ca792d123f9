package domain

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		parseable bool
		segments  []int
		pre       []string
		build     string
	}{
		{"plain semver", "1.4.2", true, []int{1, 4, 2}, nil, ""},
		{"v prefix", "v0.30.6", true, []int{0, 30, 6}, nil, ""},
		{"missing patch", "1.4", true, []int{1, 4}, nil, ""},
		{"single segment", "7", true, []int{7}, nil, ""},
		{"extra segment", "1.2.3.4", true, []int{1, 2, 3, 4}, nil, ""},
		{"pre-release", "1.0.0-alpha.1", true, []int{1, 0, 0}, []string{"alpha", "1"}, ""},
		{"build metadata", "1.0.0+20130313144700", true, []int{1, 0, 0}, nil, "20130313144700"},
		{"pre-release and build", "1.0.0-rc.1+build.5", true, []int{1, 0, 0}, []string{"rc", "1"}, "build.5"},
		{"empty string", "", false, nil, nil, ""},
		{"words", "banana-release", false, nil, nil, ""},
		{"non-numeric segment", "1.x.2", false, nil, nil, ""},
		{"trailing dot", "1.2.", false, nil, nil, ""},
		{"empty pre identifier", "1.0.0-alpha..1", false, nil, nil, ""},
		{"empty build", "1.0.0+", false, nil, nil, ""},
		{"date tag", "2024.01.15", true, []int{2024, 1, 15}, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ParseVersion(tt.raw)
			require.Equal(t, tt.raw, v.Raw, "raw string must be retained verbatim")
			require.Equal(t, tt.parseable, v.Parseable)
			if tt.parseable {
				require.Equal(t, tt.segments, v.Segments)
				require.Equal(t, tt.pre, v.Pre)
				require.Equal(t, tt.build, v.Build)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want Ordering
	}{
		{"equal", "0.30.6", "0.30.6", OrderEqual},
		{"patch less", "0.30.5", "0.30.6", OrderLess},
		{"patch greater", "0.30.7", "0.30.6", OrderGreater},
		{"minor not lexicographic", "0.9.0", "0.30.0", OrderLess},
		{"major greater", "1.0.0", "0.99.99", OrderGreater},
		{"v prefix equal", "v0.30.6", "0.30.6", OrderEqual},
		{"missing patch treated as 0", "0.30", "0.30.0", OrderEqual},
		{"missing minor and patch treated as 0", "1", "1.0.0", OrderEqual},
		{"extra segment greater", "1.2.3.1", "1.2.3", OrderGreater},
		{"pre-release before release", "1.0.0-rc.1", "1.0.0", OrderLess},
		{"release after pre-release", "1.0.0", "1.0.0-rc.1", OrderGreater},
		{"numeric pre identifiers numeric", "1.0.0-alpha.2", "1.0.0-alpha.10", OrderLess},
		{"alphanumeric pre lexicographic", "1.0.0-alpha", "1.0.0-beta", OrderLess},
		{"numeric pre before alphanumeric", "1.0.0-1", "1.0.0-alpha", OrderLess},
		{"pre prefix is less", "1.0.0-alpha", "1.0.0-alpha.1", OrderLess},
		{"equal pre-releases", "1.0.0-rc.1", "1.0.0-rc.1", OrderEqual},
		{"build metadata ignored", "1.0.0+a", "1.0.0+b", OrderEqual},
		{"build ignored with pre", "1.0.0-rc.1+x", "1.0.0-rc.1+y", OrderEqual},
		{"unparseable vs parseable", "banana-release", "1.0.0", OrderUnknown},
		{"parseable vs unparseable", "1.0.0", "banana-release", OrderUnknown},
		{"identical unparseable", "banana-release", "banana-release", OrderEqual},
		{"different unparseable", "banana-release", "mango-release", OrderUnknown},
		{"empty vs parseable", "", "1.0.0", OrderUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(ParseVersion(tt.a), ParseVersion(tt.b))
			require.Equal(t, tt.want, got, "Compare(%q, %q)", tt.a, tt.b)
		})
	}
}

func TestCompare_Symmetry(t *testing.T) {
	inverse := map[Ordering]Ordering{
		OrderLess:    OrderGreater,
		OrderGreater: OrderLess,
		OrderEqual:   OrderEqual,
		OrderUnknown: OrderUnknown,
	}

	pairs := [][2]string{
		{"1.4.2", "2.0.0"},
		{"1.0.0-rc.1", "1.0.0"},
		{"0.9.0", "0.30.0"},
		{"banana-release", "1.0.0"},
		{"banana-release", "banana-release"},
	}
	for _, p := range pairs {
		a, b := ParseVersion(p[0]), ParseVersion(p[1])
		require.Equal(t, inverse[Compare(a, b)], Compare(b, a), "Compare(%q, %q) not antisymmetric", p[0], p[1])
	}
}

// drawVersion generates a random parseable version via its string form so the
// properties exercise the parser as well as the comparator.
func drawVersion(t *rapid.T, label string) Version {
	segs := rapid.SliceOfN(rapid.IntRange(0, 50), 1, 4).Draw(t, label+"-segs")
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = fmt.Sprintf("%d", s)
	}
	raw := strings.Join(parts, ".")

	if rapid.Bool().Draw(t, label+"-hasPre") {
		ids := rapid.SliceOfN(
			rapid.OneOf(
				rapid.StringMatching(`[0-9]{1,3}`),
				rapid.StringMatching(`[a-z]{1,5}`),
			), 1, 3,
		).Draw(t, label+"-pre")
		raw += "-" + strings.Join(ids, ".")
	}

	v := ParseVersion(raw)
	if !v.Parseable {
		t.Fatalf("generated version %q did not parse", raw)
	}
	return v
}

func TestCompare_PropertyReflexive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := drawVersion(t, "v")
		if got := Compare(v, v); got != OrderEqual {
			t.Fatalf("Compare(%q, %q) = %v, want equal", v.Raw, v.Raw, got)
		}
	})
}

func TestCompare_PropertyAntisymmetric(t *testing.T) {
	inverse := map[Ordering]Ordering{
		OrderLess:    OrderGreater,
		OrderGreater: OrderLess,
		OrderEqual:   OrderEqual,
	}
	rapid.Check(t, func(t *rapid.T) {
		a := drawVersion(t, "a")
		b := drawVersion(t, "b")
		ab, ba := Compare(a, b), Compare(b, a)
		if ba != inverse[ab] {
			t.Fatalf("Compare(%q, %q) = %v but Compare(%q, %q) = %v", a.Raw, b.Raw, ab, b.Raw, a.Raw, ba)
		}
	})
}

func TestCompare_PropertyTransitive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := drawVersion(t, "a")
		b := drawVersion(t, "b")
		c := drawVersion(t, "c")
		if Compare(a, b) == OrderLess && Compare(b, c) == OrderLess {
			if got := Compare(a, c); got != OrderLess {
				t.Fatalf("%q < %q and %q < %q but Compare(%q, %q) = %v",
					a.Raw, b.Raw, b.Raw, c.Raw, a.Raw, c.Raw, got)
			}
		}
	})
}
