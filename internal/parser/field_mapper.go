package parser

// FieldMapper 表头字段映射器
type FieldMapper struct {
	aliases map[string]Field
}

// fieldAliases 规范化后的列名别名
var fieldAliases = map[Field][]string{
	FieldCategory:          {"category", "itemcategory", "productcategory", "itemgroup", "product", "productgroup"},
	FieldBDM:               {"bdm", "bdmname"},
	FieldRBM:               {"rbm", "rbmname"},
	FieldStore:             {"store", "storename", "branch", "branchname", "showroom"},
	FieldStaff:             {"staff", "staffname", "salesman", "salesperson", "employee", "employeename"},
	FieldTotalSoldAmount:   {"totalsoldamount", "totalsales", "salesamount", "soldamount", "totalsoldvalue", "netsales"},
	FieldWarrantyAmount:    {"warrantyamount", "ewamount", "extendedwarrantyamount", "warrantysales", "warrantyvalue"},
	FieldTotalUnitCount:    {"totalunitcount", "totalunits", "totalqty", "soldqty", "unitcount", "units", "qty"},
	FieldWarrantyUnitCount: {"warrantyunitcount", "warrantyunits", "warrantyqty", "ewqty", "ewcount", "ewunits"},
}

// requiredFields 识别明细表所需的全部字段
var requiredFields = []Field{
	FieldCategory,
	FieldBDM,
	FieldRBM,
	FieldStore,
	FieldStaff,
	FieldTotalSoldAmount,
	FieldWarrantyAmount,
	FieldTotalUnitCount,
	FieldWarrantyUnitCount,
}

// NewFieldMapper 创建字段映射器
func NewFieldMapper() *FieldMapper {
	m := &FieldMapper{aliases: make(map[string]Field)}
	for field, names := range fieldAliases {
		for _, n := range names {
			m.aliases[n] = field
		}
	}
	return m
}

// Lookup 按列名查找字段
func (m *FieldMapper) Lookup(columnName string) (Field, bool) {
	f, ok := m.aliases[NormalizeColumnName(columnName)]
	return f, ok
}

// Map 映射表头，同一字段出现多次时取第一列
func (m *FieldMapper) Map(columnNames []string) map[Field]FieldMapping {
	mappings := make(map[Field]FieldMapping)
	for idx, col := range columnNames {
		field, ok := m.Lookup(col)
		if !ok {
			continue
		}
		if _, dup := mappings[field]; dup {
			continue
		}
		mappings[field] = FieldMapping{
			ColumnIndex: idx,
			ColumnName:  col,
			Field:       field,
		}
	}
	return mappings
}

// Missing 返回未映射的必需字段
func Missing(mappings map[Field]FieldMapping) []Field {
	var out []Field
	for _, f := range requiredFields {
		if _, ok := mappings[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}
