package likes_test

import (
	"testing"

	"modoojob/search-service/internal/likes"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		raw     string
		want    likes.Kind
		wantErr bool
	}{
		{"job", likes.KindJob, false},
		{"talent", likes.KindTalent, false},
		{"", "", true},
		{"jobs", "", true},
		{"JOB", "", true},
	}
	for _, tc := range cases {
		got, err := likes.ParseKind(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseKind(%q) = %q, want error", tc.raw, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseKind(%q) = (%q, %v), want %q", tc.raw, got, err, tc.want)
		}
	}
}
