package region_test

import (
	"testing"

	"modoojob/search-service/internal/region"
)

// ── HasRegion — positive matches ───────────────────────────────────────────

func TestHasRegion_FullName(t *testing.T) {
	queries := []string{
		"서울 강남구 개발자",
		"경기 성남시 프론트엔드",
		"부산 해운대구 신입",
	}
	for _, q := range queries {
		if !region.HasRegion(q) {
			t.Errorf("HasRegion(%q) should be true", q)
		}
	}
}

func TestHasRegion_TopLevelPrefix(t *testing.T) {
	queries := []string{
		"서울 백엔드 개발자",
		"제주 호텔 매니저",
		"경기 물류 관리",
	}
	for _, q := range queries {
		if !region.HasRegion(q) {
			t.Errorf("HasRegion(%q) should be true", q)
		}
	}
}

func TestHasRegion_DistrictToken(t *testing.T) {
	// Sub-region token with and without the administrative suffix.
	queries := []string{
		"강남구 풀스택 개발자",
		"강남 풀스택 개발자",
		"분당 React 3년 이상",
		"해운대 서비스직",
	}
	for _, q := range queries {
		if !region.HasRegion(q) {
			t.Errorf("HasRegion(%q) should be true", q)
		}
	}
}

func TestHasRegion_CombinedQuery(t *testing.T) {
	if !region.HasRegion("서울 강남 백엔드 개발자 3년") {
		t.Error(`HasRegion("서울 강남 백엔드 개발자 3년") should be true`)
	}
}

// ── HasRegion — negative matches ───────────────────────────────────────────

func TestHasRegion_NoRegion(t *testing.T) {
	queries := []string{
		"백엔드 개발자",
		"신입 프론트엔드 React",
		"영어 능숙한 데이터 사이언티스트",
		"",
		"   ",
	}
	for _, q := range queries {
		if region.HasRegion(q) {
			t.Errorf("HasRegion(%q) should be false", q)
		}
	}
}

func TestHasRegion_SubstringIsNotToken(t *testing.T) {
	// Region names embedded inside a larger token must not match.
	if region.HasRegion("서울대학교 연구원") {
		t.Error(`HasRegion("서울대학교 연구원") should be false (not a standalone token)`)
	}
}

func TestHasRegion_NoPreferenceExcluded(t *testing.T) {
	if region.HasRegion("지역무관 개발자") {
		t.Error(`HasRegion("지역무관 개발자") should be false (wildcard entry contributes no keywords)`)
	}
}

// ── Name / Code ────────────────────────────────────────────────────────────

func TestNameRoundTrip(t *testing.T) {
	code, ok := region.Code("서울 강남구")
	if !ok {
		t.Fatal(`Code("서울 강남구") not found`)
	}
	if got := region.Name(code); got != "서울 강남구" {
		t.Errorf("Name(%q) = %q, want %q", code, got, "서울 강남구")
	}
}

func TestName_UnknownCodePassesThrough(t *testing.T) {
	if got := region.Name("99999"); got != "99999" {
		t.Errorf("Name(unknown) = %q, want raw code", got)
	}
}
