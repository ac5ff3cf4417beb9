package calculator

import (
	"strings"

	"warrantyboard/internal/model"
	"warrantyboard/internal/service/taxonomy"
)

// 分组维度名称
const (
	DimensionStore          = "store"
	DimensionStaff          = "staff"
	DimensionRBM            = "rbm"
	DimensionBDM            = "bdm"
	DimensionCategory       = "category"
	DimensionRawCategory    = "raw_category"
	DimensionApplianceClass = "appliance_class"
	DimensionStaffStore     = "staff_store"
	DimensionPeriod         = "period"
)

// Dimension 分组维度：从记录中提取分组键
type Dimension struct {
	Name     string
	KeyNames []string
	Key      func(r model.Record) []string
}

var dimensions = []Dimension{
	{Name: DimensionStore, KeyNames: []string{"Store"}, Key: func(r model.Record) []string { return []string{r.Store} }},
	{Name: DimensionStaff, KeyNames: []string{"Staff"}, Key: func(r model.Record) []string { return []string{r.Staff} }},
	{Name: DimensionRBM, KeyNames: []string{"RBM"}, Key: func(r model.Record) []string { return []string{r.RBM} }},
	{Name: DimensionBDM, KeyNames: []string{"BDM"}, Key: func(r model.Record) []string { return []string{r.BDM} }},
	{Name: DimensionCategory, KeyNames: []string{"Category"}, Key: func(r model.Record) []string {
		return []string{taxonomy.Normalize(r.Category)}
	}},
	{Name: DimensionRawCategory, KeyNames: []string{"Item Category"}, Key: func(r model.Record) []string { return []string{r.Category} }},
	{Name: DimensionApplianceClass, KeyNames: []string{"Appliance Class"}, Key: func(r model.Record) []string {
		return []string{taxonomy.ApplianceClassOf(r.Category)}
	}},
	{Name: DimensionStaffStore, KeyNames: []string{"Staff", "Store"}, Key: func(r model.Record) []string {
		return []string{r.Staff, r.Store}
	}},
	{Name: DimensionPeriod, KeyNames: []string{"Period"}, Key: func(r model.Record) []string { return []string{r.Period} }},
}

// DimensionByName 按名称查找维度
func DimensionByName(name string) (Dimension, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, d := range dimensions {
		if d.Name == name {
			return d, true
		}
	}
	return Dimension{}, false
}

// DimensionNames 全部维度名称
func DimensionNames() []string {
	out := make([]string, len(dimensions))
	for i, d := range dimensions {
		out[i] = d.Name
	}
	return out
}

// CategoryDimension 标准品类维度
func CategoryDimension() Dimension {
	d, _ := DimensionByName(DimensionCategory)
	return d
}

// keySep 组合键内部分隔符
const keySep = "\x1f"

func joinKey(parts []string) string {
	return strings.Join(parts, keySep)
}

func labelOf(parts []string) string {
	return strings.Join(parts, " / ")
}
