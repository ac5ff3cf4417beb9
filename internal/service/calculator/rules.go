package calculator

import "warrantyboard/internal/model"

// ValidateRecord 校验记录数据规则，返回提示信息（不阻断导入）
func ValidateRecord(r model.Record) []string {
	errs := make([]string, 0, 4)

	if r.TotalSoldAmount < 0 || r.WarrantyAmount < 0 {
		errs = append(errs, "金额不能为负数")
	}
	if r.TotalUnitCount < 0 || r.WarrantyUnitCount < 0 {
		errs = append(errs, "件数不能为负数")
	}
	if r.TotalUnitCount == 0 && r.WarrantyUnitCount > 0 {
		errs = append(errs, "销售件数为 0 但延保件数大于 0")
	}
	if r.TotalSoldAmount > 0 && r.WarrantyAmount > r.TotalSoldAmount {
		errs = append(errs, "延保金额超过销售总额")
	}

	return errs
}
