package taxonomy

import "strings"

// 家电分类
const (
	LargeAppliance = "Large Appliance"
	SmallAppliance = "Small Appliance"

	// Uncategorized 空品类的归类结果
	Uncategorized = "UNCATEGORIZED"
)

// Bucket 标准品类及其匹配词
type Bucket struct {
	Name   string
	Tokens []string
}

// buckets 按优先级排列，先匹配者胜出
var buckets = []Bucket{
	{Name: "FAN", Tokens: []string{"FAN"}},
	{Name: "MIXER GRINDER", Tokens: []string{"MIXER", "GRINDER", "MIXIE", "JUICER"}},
	{Name: "IRON BOX", Tokens: []string{"IRON"}},
	{Name: "ELECTRIC KETTLE", Tokens: []string{"KETTLE"}},
	{Name: "OTG", Tokens: []string{"OTG", "OVEN TOASTER"}},
	{Name: "STEAMER", Tokens: []string{"STEAMER"}},
	{Name: "INDUCTION COOKER", Tokens: []string{"INDUCTION", "COOKTOP"}},
}

var majorAppliances = []string{
	"REFRIGERATOR",
	"FRIDGE",
	"WASHING MACHINE",
	"AIR CONDITIONER",
	"SPLIT AC",
	"WINDOW AC",
	"TELEVISION",
	"LED TV",
	"SMART TV",
	"MICROWAVE",
	"DISHWASHER",
	"DRYER",
	"CHIMNEY",
	"WATER HEATER",
	"GEYSER",
}

var speakerTokens = []string{
	"SPEAKER",
	"SOUNDBAR",
	"SOUND BAR",
	"HOME THEATRE",
	"HOME THEATER",
	"PARTY BOX",
}

// BucketNames 返回标准品类名称（按优先级）
func BucketNames() []string {
	names := make([]string, len(buckets))
	for i, b := range buckets {
		names[i] = b.Name
	}
	return names
}

// Normalize 将原始品类映射为标准品类，未命中时原样返回
func Normalize(raw string) string {
	if name, ok := matchBucket(raw); ok {
		return name
	}
	if strings.TrimSpace(raw) == "" {
		return Uncategorized
	}
	return raw
}

// ApplianceClassOf 判断大家电/小家电，与标准品类互相独立
func ApplianceClassOf(raw string) string {
	if containsAny(strings.ToUpper(raw), majorAppliances) {
		return LargeAppliance
	}
	return SmallAppliance
}

// IsReplacementCategory 是否属于更换类标准品类
func IsReplacementCategory(raw string) bool {
	_, ok := matchBucket(raw)
	return ok
}

// IsSpeakerCategory 是否属于音箱类品类
func IsSpeakerCategory(raw string) bool {
	return containsAny(strings.ToUpper(raw), speakerTokens)
}

func matchBucket(raw string) (string, bool) {
	upper := strings.ToUpper(raw)
	for _, b := range buckets {
		if containsAny(upper, b.Tokens) {
			return b.Name, true
		}
	}
	return "", false
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
