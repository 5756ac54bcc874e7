package repository

import "testing"

func TestLikePrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"yatco_vessel_", `yatco\_vessel\_%`},
		{"100%", `100\%%`},
		{`a\b`, `a\\b%`},
		{"", "%"},
	}

	for _, tt := range tests {
		if got := likePrefix(tt.in); got != tt.want {
			t.Errorf("likePrefix(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
