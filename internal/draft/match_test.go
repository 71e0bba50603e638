package draft

import "testing"

func TestFoldNormalizer(t *testing.T) {
	n := FoldNormalizer{}

	cases := []struct {
		in, want string
	}{
		{"Tomato", "tomato"},
		{"  Tomato  ", "tomato"},
		{"たまご", "たまご"},
		{" たまご\t", "たまご"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := n.Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
