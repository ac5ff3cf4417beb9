package v3

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"warrantyboard/internal/model"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized   bool             `json:"initialized"`   // 是否已有周期数据
	PeriodCount   int              `json:"periodCount"`   // 周期数
	RecordCount   int              `json:"recordCount"`   // 记录总数
	SheetsEnabled bool             `json:"sheetsEnabled"` // 是否配置了在线表格
	LastImport    *model.ImportLog `json:"lastImport"`    // 最近一次导入
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()

	periods, err := h.store.ListPeriods(ctx)
	if err != nil {
		h.log.WithError(err).Warn("list periods failed")
		c.JSON(http.StatusOK, StatusResponse{SheetsEnabled: h.sheets != nil})
		return
	}

	records := 0
	for _, p := range periods {
		records += p.RecordCount
	}

	resp := StatusResponse{
		Initialized:   records > 0,
		PeriodCount:   len(periods),
		RecordCount:   records,
		SheetsEnabled: h.sheets != nil,
	}
	if logs, err := h.store.ListImportLogs(ctx, 1); err == nil && len(logs) > 0 {
		resp.LastImport = &logs[0]
	}

	c.JSON(http.StatusOK, resp)
}
