package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"warrantyboard/internal/model"
)

// 各语义类型的数字格式
var numFmts = map[model.FieldTag]string{
	model.TagPercentage: "0.00",
	model.TagCurrency:   "#,##0.00",
	model.TagCount:      "#,##0",
}

type styles struct {
	header int
	bold   int
	byTag  map[model.FieldTag]int
	bolded map[model.FieldTag]int // 合计行
}

func newStyles(f *excelize.File) (*styles, error) {
	st := &styles{
		byTag:  map[model.FieldTag]int{},
		bolded: map[model.FieldTag]int{},
	}

	var err error
	st.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("创建表头样式失败: %w", err)
	}
	st.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("创建加粗样式失败: %w", err)
	}

	for tag, code := range numFmts {
		code := code
		id, err := f.NewStyle(&excelize.Style{CustomNumFmt: &code})
		if err != nil {
			return nil, fmt.Errorf("创建数字样式失败: %w", err)
		}
		st.byTag[tag] = id

		id, err = f.NewStyle(&excelize.Style{CustomNumFmt: &code, Font: &excelize.Font{Bold: true}})
		if err != nil {
			return nil, fmt.Errorf("创建数字样式失败: %w", err)
		}
		st.bolded[tag] = id
	}
	return st, nil
}

// valueStyle 数值单元格样式，文本类型不设格式
func (s *styles) valueStyle(tag model.FieldTag, total bool) int {
	if total {
		if id, ok := s.bolded[tag]; ok {
			return id
		}
		return s.bold
	}
	return s.byTag[tag]
}

func (s *styles) textStyle(total bool) int {
	if total {
		return s.bold
	}
	return 0
}
