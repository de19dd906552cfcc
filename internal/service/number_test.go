package service

import "testing"

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		prefix string
		id     uint
		want   string
	}{
		{PrefixBug, 1, "B1"},
		{PrefixBug, 105, "B105"},
		{PrefixRequirement, 7, "R7"},
		{PrefixTask, 42, "T42"},
		{PrefixTestCase, 9, "TC9"},
		{PrefixSprint, 3, "S3"},
	}
	for _, c := range cases {
		if got := FormatNumber(c.prefix, c.id); got != c.want {
			t.Errorf("FormatNumber(%q, %d) = %q, want %q", c.prefix, c.id, got, c.want)
		}
	}
}
