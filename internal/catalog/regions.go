package catalog

// Regions lists the region display names offered to clients.
var Regions = []string{
	"서울", "부산", "대구", "인천", "광주", "대전", "울산", "세종",
	"경기", "강원", "충북", "충남", "전북", "전남", "경북", "경남", "제주",
}

// SchoolLevels lists the school levels offered to clients.
var SchoolLevels = []string{"초등학교", "중학교", "고등학교"}

// regionCodes maps region display names to catalog partition codes.
var regionCodes = map[string]string{
	"서울":      "B10",
	"서울특별시":   "B10",
	"부산":      "C10",
	"부산광역시":   "C10",
	"대구":      "D10",
	"대구광역시":   "D10",
	"인천":      "E10",
	"인천광역시":   "E10",
	"광주":      "F10",
	"광주광역시":   "F10",
	"대전":      "G10",
	"대전광역시":   "G10",
	"울산":      "H10",
	"울산광역시":   "H10",
	"세종":      "I10",
	"세종특별자치시": "I10",
	"경기":      "J10",
	"경기도":     "J10",
	"강원":      "K10",
	"강원도":     "K10",
	"충북":      "M10",
	"충청북도":    "M10",
	"충남":      "N10",
	"충청남도":    "N10",
	"전북":      "P10",
	"전라북도":    "P10",
	"전남":      "Q10",
	"전라남도":    "Q10",
	"경북":      "R10",
	"경상북도":    "R10",
	"경남":      "S10",
	"경상남도":    "S10",
	"제주":      "T10",
	"제주특별자치도": "T10",
}

// CanonicalPartitions is the fixed order partitions are searched in when no
// preference narrows the list. The catalog has no nationwide search, so a
// full check walks these one by one.
var CanonicalPartitions = []string{
	"B10", "C10", "D10", "E10", "F10", "G10", "H10", "I10",
	"J10", "K10", "M10", "N10", "P10", "Q10", "R10", "S10", "T10",
}

// ProvCode translates a region display name to its partition code.
// Unknown names return the empty string.
func ProvCode(regionName string) string {
	return regionCodes[regionName]
}
