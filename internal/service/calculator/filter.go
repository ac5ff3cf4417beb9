package calculator

import (
	"sort"
	"strings"

	"warrantyboard/internal/model"
	"warrantyboard/internal/service/taxonomy"
)

// ApplyPreFilters 聚合前筛选，各条件按逻辑与组合
func ApplyPreFilters(records []model.Record, spec model.FilterSpec) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if matchTaxonomy(r, spec.Taxonomy) && matchOrg(r, spec.Org) && matchMarker(r, spec.Marker) {
			out = append(out, r)
		}
	}
	return out
}

// EffectiveDimension 品类分类筛选生效时强制按标准品类分组
func EffectiveDimension(spec model.FilterSpec, requested Dimension) Dimension {
	if spec.Taxonomy != model.TaxonomyNone {
		return CategoryDimension()
	}
	return requested
}

func matchTaxonomy(r model.Record, f model.TaxonomyFilter) bool {
	switch f {
	case model.TaxonomyReplacement:
		return taxonomy.IsReplacementCategory(r.Category)
	case model.TaxonomySpeaker:
		return taxonomy.IsSpeakerCategory(r.Category)
	}
	return true
}

func matchOrg(r model.Record, f model.OrgFilter) bool {
	return matchEqual(r.BDM, f.BDM) &&
		matchEqual(r.RBM, f.RBM) &&
		matchEqual(r.Store, f.Store) &&
		matchEqual(r.Staff, f.Staff)
}

func matchEqual(value, want string) bool {
	if !model.IsActive(want) {
		return true
	}
	return value == strings.TrimSpace(want)
}

// matchMarker 门店名称子串匹配，大小写敏感性由筛选条件决定
func matchMarker(r model.Record, f *model.MarkerFilter) bool {
	if f == nil || f.Token == "" {
		return true
	}
	store, token := r.Store, f.Token
	if !f.CaseSensitive {
		store, token = strings.ToUpper(store), strings.ToUpper(token)
	}
	hit := strings.Contains(store, token)
	if f.Exclude {
		return !hit
	}
	return hit
}

// ApplyPostFilters 聚合后区间筛选与排序，只作用于数据行，合计行保持不变
func ApplyPostFilters(table model.MetricTable, rng *model.RangeSpec, order *model.SortSpec) model.MetricTable {
	rows := make([]model.MetricRow, 0, len(table.Rows))
	for _, r := range table.Rows {
		if inRange(r, rng) {
			rows = append(rows, r)
		}
	}

	if order != nil && order.Field != "" {
		sortRows(rows, *order)
	}

	table.Rows = rows
	table.EmptyAfterFilter = len(rows) == 0
	return table
}

// inRange 闭区间判断，nil 边界表示不限
func inRange(r model.MetricRow, rng *model.RangeSpec) bool {
	if rng == nil || rng.Field == "" {
		return true
	}
	v := r.Value(rng.Field)
	if rng.Min != nil && v < *rng.Min {
		return false
	}
	if rng.Max != nil && v > *rng.Max {
		return false
	}
	return true
}

// sortRows 稳定排序，值相同时按分组键升序
func sortRows(rows []model.MetricRow, order model.SortSpec) {
	sort.SliceStable(rows, func(i, j int) bool {
		vi, vj := rows[i].Value(order.Field), rows[j].Value(order.Field)
		if vi != vj {
			if order.Desc {
				return vi > vj
			}
			return vi < vj
		}
		return lessKey(rows[i].Key, rows[j].Key)
	})
}

func lessKey(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
