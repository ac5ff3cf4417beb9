package v3

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"warrantyboard/internal/model"
	"warrantyboard/internal/service/calculator"
	"warrantyboard/internal/service/taxonomy"
)

type metricFieldInfo struct {
	Field model.MetricField `json:"field"`
	Label string            `json:"label"`
	Tag   model.FieldTag    `json:"tag"`
}

type markerConfig struct {
	Token         string `json:"token"`
	CaseSensitive bool   `json:"caseSensitive"`
}

// ConfigResponse 配置响应
type ConfigResponse struct {
	Targets          model.Targets     `json:"targets"`
	Marker           markerConfig      `json:"marker"`
	DefaultDimension string            `json:"defaultDimension"`
	DefaultSort      *model.SortSpec   `json:"defaultSort"`
	Dimensions       []string          `json:"dimensions"`
	Metrics          []metricFieldInfo `json:"metrics"`
	Buckets          []string          `json:"buckets"`
}

// UpdateConfigRequest 更新配置请求，未提供的部分保持不变
type UpdateConfigRequest struct {
	Targets *model.Targets `json:"targets"`
	Marker  *markerConfig  `json:"marker"`
}

// GetConfig 获取看板配置
// GET /api/config
func (h *Handler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.configResponse())
}

func (h *Handler) configResponse() ConfigResponse {
	settings := h.local.Settings()

	fields := model.MetricFields()
	metrics := make([]metricFieldInfo, len(fields))
	for i, f := range fields {
		metrics[i] = metricFieldInfo{Field: f, Label: f.Label(), Tag: f.Tag()}
	}

	resp := ConfigResponse{
		Targets:          settings.Targets,
		DefaultDimension: settings.Dimension,
		DefaultSort:      settings.Sort,
		Dimensions:       calculator.DimensionNames(),
		Metrics:          metrics,
		Buckets:          taxonomy.BucketNames(),
	}
	if settings.Marker != nil {
		resp.Marker = markerConfig{Token: settings.Marker.Token, CaseSensitive: settings.Marker.CaseSensitive}
	}
	return resp
}

// UpdateConfig 更新目标与门店标记，持久化到本地库
// PATCH /api/config
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	if req.Targets != nil {
		if !validTarget(req.Targets.ValueConversion) || !validTarget(req.Targets.CountConversion) || !validTarget(req.Targets.AvgWarrantyPrice) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "目标值不能为负数"})
			return
		}
		if err := h.store.SetTargets(*req.Targets); err != nil {
			h.respondError(c, err)
			return
		}
		for _, svc := range h.services() {
			svc.SetTargets(*req.Targets)
		}
	}

	if req.Marker != nil {
		marker := model.MarkerFilter{Token: req.Marker.Token, CaseSensitive: req.Marker.CaseSensitive, Exclude: true}
		if cur := h.local.Settings().Marker; cur != nil {
			marker.Exclude = cur.Exclude
		}
		if err := h.store.SetMarker(marker); err != nil {
			h.respondError(c, err)
			return
		}
		for _, svc := range h.services() {
			svc.SetMarker(&marker)
		}
	}

	h.log.WithField("targets", req.Targets != nil).WithField("marker", req.Marker != nil).Info("config updated")
	c.JSON(http.StatusOK, h.configResponse())
}

func validTarget(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
