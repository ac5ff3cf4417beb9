package model

import (
	"fmt"
	"strings"
)

// AllValue 组织筛选中表示"不过滤"的取值
const AllValue = "All"

// TaxonomyFilter 品类分类筛选，同一时刻只能启用一种
type TaxonomyFilter string

const (
	TaxonomyNone        TaxonomyFilter = ""
	TaxonomyReplacement TaxonomyFilter = "replacement" // 小家电更换类品类
	TaxonomySpeaker     TaxonomyFilter = "speaker"     // 音箱类品类
)

// ParseTaxonomyFilter 解析品类分类筛选
func ParseTaxonomyFilter(s string) (TaxonomyFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "all":
		return TaxonomyNone, nil
	case "replacement":
		return TaxonomyReplacement, nil
	case "speaker":
		return TaxonomySpeaker, nil
	}
	return TaxonomyNone, fmt.Errorf("unknown taxonomy filter: %q", s)
}

// OrgFilter 组织维度等值筛选，空值或 "All" 表示不过滤
type OrgFilter struct {
	BDM   string `json:"bdm"`
	RBM   string `json:"rbm"`
	Store string `json:"store"`
	Staff string `json:"staff"`
}

// IsActive 判断某个筛选值是否生效
func IsActive(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != AllValue
}

// MarkerFilter 门店名称标记筛选（如排除名称中含 "FUTURE" 的门店）
type MarkerFilter struct {
	Token         string `json:"token"`
	CaseSensitive bool   `json:"caseSensitive"`
	Exclude       bool   `json:"exclude"` // true 时排除命中记录，否则只保留命中记录
}

// FilterSpec 聚合前筛选条件
type FilterSpec struct {
	Taxonomy TaxonomyFilter `json:"taxonomy"`
	Org      OrgFilter      `json:"org"`
	Marker   *MarkerFilter  `json:"marker,omitempty"`
}

// RangeSpec 聚合后区间筛选，边界均为闭区间，nil 表示不限
type RangeSpec struct {
	Field MetricField `json:"field"`
	Min   *float64    `json:"min,omitempty"`
	Max   *float64    `json:"max,omitempty"`
}

// SortSpec 聚合后排序
type SortSpec struct {
	Field MetricField `json:"field"`
	Desc  bool        `json:"desc"`
}

// Selection 周期选择，All 为真时选择全部周期
type Selection struct {
	All   bool     `json:"all"`
	Names []string `json:"names"`
}

// ParseSelection 解析周期选择，"ALL" 表示全部，否则按逗号分隔
func ParseSelection(s string) Selection {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "ALL") {
		return Selection{All: true}
	}
	var names []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			names = append(names, p)
		}
	}
	return Selection{Names: names}
}
