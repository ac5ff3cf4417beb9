package v3

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"warrantyboard/internal/model"
)

type periodsResponse struct {
	Source string             `json:"source"`
	Items  []model.PeriodInfo `json:"items"`
}

// ListPeriods 获取可用周期列表
// GET /api/periods?source=sheets
func (h *Handler) ListPeriods(c *gin.Context) {
	svc, source, err := h.serviceFor(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	items, err := svc.Periods(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, periodsResponse{Source: source, Items: items})
}

// DeletePeriod 删除一个周期及其记录
// DELETE /api/periods/:name
func (h *Handler) DeletePeriod(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少周期名称"})
		return
	}

	if err := h.store.DeletePeriod(c.Request.Context(), name); err != nil {
		if errors.Is(err, model.ErrPeriodNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "周期不存在"})
			return
		}
		h.respondError(c, err)
		return
	}

	h.log.WithField("period", name).Info("period deleted")
	c.JSON(http.StatusOK, gin.H{"deleted": name})
}

// filterColumns 可作为筛选下拉的字段
var filterColumns = []string{"bdm", "rbm", "store", "staff", "category"}

// GetFilterOptions 各组织字段的去重取值
// GET /api/filters
func (h *Handler) GetFilterOptions(c *gin.Context) {
	ctx := c.Request.Context()

	out := make(map[string][]string, len(filterColumns))
	for _, col := range filterColumns {
		values, err := h.store.DistinctValues(ctx, col)
		if err != nil {
			h.respondError(c, err)
			return
		}
		out[col] = values
	}
	c.JSON(http.StatusOK, out)
}
