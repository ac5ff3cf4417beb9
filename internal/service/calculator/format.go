package calculator

import (
	"github.com/shopspring/decimal"

	"warrantyboard/internal/model"
)

var (
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1_000)
	lakh     = decimal.NewFromInt(100_000)
	crore    = decimal.NewFromInt(10_000_000)
)

// FormatCurrency 金额缩写：≥1 千万记 Cr，≥10 万记 L，≥1 千记 K，其余取整
//
// Cr 与 L 保留两位小数，K 保留一位，四舍五入远离零。
// 先按档位舍入再判断是否进位到上一档，99999 记为 1.00 L。
func FormatCurrency(v float64) string {
	if !model.IsFinite(v) {
		v = 0
	}
	d := decimal.NewFromFloat(v)
	abs := d.Abs()

	switch {
	case abs.Round(0).LessThan(thousand):
		return d.StringFixed(0)
	case abs.Div(thousand).Round(1).LessThan(hundred):
		return d.Div(thousand).StringFixed(1) + " K"
	case abs.Div(lakh).Round(2).LessThan(hundred):
		return d.Div(lakh).StringFixed(2) + " L"
	}
	return d.Div(crore).StringFixed(2) + " Cr"
}

// FormatPercentage 百分比文本，保留两位小数
func FormatPercentage(v float64) string {
	if !model.IsFinite(v) {
		v = 0
	}
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

// FormatCount 件数文本
func FormatCount(v float64) string {
	if !model.IsFinite(v) {
		v = 0
	}
	return decimal.NewFromFloat(v).StringFixed(0)
}

// FormatValue 按字段语义标签格式化
func FormatValue(field model.MetricField, v float64) string {
	switch field.Tag() {
	case model.TagCurrency:
		return FormatCurrency(v)
	case model.TagPercentage:
		return FormatPercentage(v)
	case model.TagCount:
		return FormatCount(v)
	}
	if !model.IsFinite(v) {
		v = 0
	}
	return decimal.NewFromFloat(v).String()
}
