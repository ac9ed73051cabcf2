package snapshot

import "testing"

func TestNewJanitor_ClampsInterval(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{0, "@every 1m"},
		{-5, "@every 1m"},
		{1, "@every 1m"},
		{10, "@every 10m"},
	}
	for _, tc := range cases {
		j := NewJanitor(NewMemoryStore(), tc.minutes)
		if j.spec != tc.want {
			t.Errorf("NewJanitor(%d) spec = %q, want %q", tc.minutes, j.spec, tc.want)
		}
	}
}
