package model

import (
	"context"
	"errors"
	"math"
)

// ErrPeriodNotFound 周期不存在
var ErrPeriodNotFound = errors.New("period not found")

// Record 单条销售/延保记录（某个周期内一名销售员在某门店某品类下的业绩）
type Record struct {
	Category          string  `json:"category"`          // 原始品类名称
	BDM               string  `json:"bdm"`               // 业务发展经理
	RBM               string  `json:"rbm"`               // 区域经理
	Store             string  `json:"store"`             // 门店
	Staff             string  `json:"staff"`             // 销售员
	TotalSoldAmount   float64 `json:"totalSoldAmount"`   // 销售总额
	WarrantyAmount    float64 `json:"warrantyAmount"`    // 延保金额
	TotalUnitCount    float64 `json:"totalUnitCount"`    // 销售件数
	WarrantyUnitCount float64 `json:"warrantyUnitCount"` // 延保件数
	Period            string  `json:"period,omitempty"`  // 所属周期，合并多周期时填充
}

// Sanitize 将非有限数值归零，保证聚合时不会传播 NaN/Inf
func (r Record) Sanitize() Record {
	r.TotalSoldAmount = finite(r.TotalSoldAmount)
	r.WarrantyAmount = finite(r.WarrantyAmount)
	r.TotalUnitCount = finite(r.TotalUnitCount)
	r.WarrantyUnitCount = finite(r.WarrantyUnitCount)
	return r
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// PeriodInfo 周期元信息
type PeriodInfo struct {
	Name        string `json:"name"`
	RecordCount int    `json:"recordCount"`
	Source      string `json:"source,omitempty"`  // excel / sheets / memory
	BatchID     string `json:"batchId,omitempty"` // 导入批次
}

// PeriodBatch 一个周期的全部记录
type PeriodBatch struct {
	Name    string   `json:"name"`
	Records []Record `json:"records"`
}

// RecordSource 周期记录来源
type RecordSource interface {
	ListPeriods(ctx context.Context) ([]PeriodInfo, error)
	LoadPeriod(ctx context.Context, name string) ([]Record, error)
}
