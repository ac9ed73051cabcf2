// Package region answers whether a free-text search query already names a
// Korean region, and maps canonical region names to Work24 region codes.
//
// The keyword set is derived once from the region code table: for every
// canonical name ("서울 강남구") it contains the full name, the sub-region
// token ("강남구"), that token with its administrative suffix stripped
// ("강남"), and the top-level prefix ("서울"), all lowercased. Matching is
// token-level only — multi-word region names are never matched as phrases,
// so a district name that doubles as a common word can false-positive.
package region

import "strings"

// NoPreference is the table entry meaning "any region"; it contributes no
// keywords and carries the Work24 wildcard code.
const NoPreference = "지역무관"

// Codes maps canonical region names to Work24 region codes.
// Top-level entries use the 시/도 code; two-word entries the 시/군/구 code.
var Codes = map[string]string{
	NoPreference: "00000",

	"서울":      "11000",
	"서울 종로구":  "11110",
	"서울 중구":   "11140",
	"서울 용산구":  "11170",
	"서울 성동구":  "11200",
	"서울 광진구":  "11215",
	"서울 동대문구": "11230",
	"서울 중랑구":  "11260",
	"서울 성북구":  "11290",
	"서울 강북구":  "11305",
	"서울 도봉구":  "11320",
	"서울 노원구":  "11350",
	"서울 은평구":  "11380",
	"서울 서대문구": "11410",
	"서울 마포구":  "11440",
	"서울 양천구":  "11470",
	"서울 강서구":  "11500",
	"서울 구로구":  "11530",
	"서울 금천구":  "11545",
	"서울 영등포구": "11560",
	"서울 동작구":  "11590",
	"서울 관악구":  "11620",
	"서울 서초구":  "11650",
	"서울 강남구":  "11680",
	"서울 송파구":  "11710",
	"서울 강동구":  "11740",

	"부산":      "26000",
	"부산 중구":   "26110",
	"부산 해운대구": "26350",
	"부산 사상구":  "26530",
	"부산 기장군":  "26710",

	"대구":     "27000",
	"대구 수성구": "27260",
	"대구 달서구": "27290",

	"인천":     "28000",
	"인천 연수구": "28185",
	"인천 부평구": "28237",
	"인천 서구":  "28260",

	"광주":    "29000",
	"광주 서구": "29140",
	"광주 북구": "29170",

	"대전":     "30000",
	"대전 서구":  "30170",
	"대전 유성구": "30200",

	"울산":     "31000",
	"울산 남구":  "31140",
	"울산 울주군": "31710",

	"세종": "36110",

	"경기":      "41000",
	"경기 수원시":  "41110",
	"경기 성남시":  "41130",
	"경기 분당구":  "41135",
	"경기 안양시":  "41170",
	"경기 부천시":  "41190",
	"경기 광명시":  "41210",
	"경기 평택시":  "41220",
	"경기 안산시":  "41270",
	"경기 고양시":  "41280",
	"경기 과천시":  "41290",
	"경기 구리시":  "41310",
	"경기 남양주시": "41360",
	"경기 용인시":  "41460",
	"경기 파주시":  "41480",
	"경기 이천시":  "41500",
	"경기 김포시":  "41570",
	"경기 화성시":  "41590",
	"경기 양평군":  "41830",

	"강원":     "51000",
	"강원 춘천시": "51110",
	"강원 원주시": "51130",
	"강원 강릉시": "51150",

	"충북":     "43000",
	"충북 청주시": "43110",
	"충북 충주시": "43130",

	"충남":     "44000",
	"충남 천안시": "44130",
	"충남 아산시": "44200",

	"전북":     "45000",
	"전북 전주시": "45110",
	"전북 군산시": "45130",

	"전남":     "46000",
	"전남 목포시": "46110",
	"전남 여수시": "46130",

	"경북":     "47000",
	"경북 포항시": "47110",
	"경북 구미시": "47190",

	"경남":     "48000",
	"경남 창원시": "48120",
	"경남 김해시": "48250",
	"경남 거제시": "48310",

	"제주":      "50000",
	"제주 제주시":  "50110",
	"제주 서귀포시": "50130",
}

// names is the reverse of Codes, for rendering extracted params.
var names = func() map[string]string {
	m := make(map[string]string, len(Codes))
	for name, code := range Codes {
		m[code] = name
	}
	return m
}()

// administrative suffixes stripped from sub-region tokens ("강남구" → "강남").
var suffixes = []string{"구", "시", "군"}

// keywords is built once at startup from the Codes table.
var keywords = buildKeywords()

func buildKeywords() map[string]struct{} {
	set := make(map[string]struct{})
	for name := range Codes {
		if name == NoPreference {
			continue
		}

		set[strings.ToLower(name)] = struct{}{}

		parts := strings.Fields(name)
		if len(parts) > 1 {
			district := parts[1]
			set[strings.ToLower(district)] = struct{}{}

			for _, suffix := range suffixes {
				if trimmed := strings.TrimSuffix(district, suffix); trimmed != district && trimmed != "" {
					set[strings.ToLower(trimmed)] = struct{}{}
					break
				}
			}
		}

		set[strings.ToLower(parts[0])] = struct{}{}
	}
	return set
}

// HasRegion reports whether any whitespace-separated token of query is a known
// region keyword. Matching is per-token: "서울 강남 개발자" matches via both
// "서울" and "강남"; "백엔드 개발자" matches nothing.
func HasRegion(query string) bool {
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if _, ok := keywords[word]; ok {
			return true
		}
	}
	return false
}

// Name returns the canonical region name for a Work24 code, or the code
// itself when unknown (raw codes still render meaningfully in the UI).
func Name(code string) string {
	if name, ok := names[code]; ok {
		return name
	}
	return code
}

// Code returns the Work24 code for a canonical region name and whether the
// name is present in the table.
func Code(name string) (string, bool) {
	code, ok := Codes[name]
	return code, ok
}
