package parser

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeColumnName 规范化列名：小写并去除空白与标点
func NormalizeColumnName(name string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "")
}

// ContainsAny 检查字符串是否包含任意一个关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// PeriodFromSheetName 由 Sheet 名得到周期名
func PeriodFromSheetName(sheetName string) string {
	return strings.Join(strings.Fields(sheetName), " ")
}

// IsBlankRow 整行为空
func IsBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// IsTotalLabel 判断是否为表内小计/合计行的标签
func IsTotalLabel(s string) bool {
	switch NormalizeColumnName(s) {
	case "total", "grandtotal", "subtotal":
		return true
	}
	return false
}
