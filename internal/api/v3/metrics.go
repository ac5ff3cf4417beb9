package v3

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"warrantyboard/internal/model"
	"warrantyboard/internal/service/calculator"
)

// metricRowView 带展示文本的汇总行
type metricRowView struct {
	model.MetricRow
	Display map[model.MetricField]string `json:"display"`
}

func newMetricRowView(r model.MetricRow) metricRowView {
	display := make(map[model.MetricField]string, len(model.MetricFields()))
	for _, f := range model.MetricFields() {
		display[f] = calculator.FormatValue(f, r.Value(f))
	}
	return metricRowView{MetricRow: r, Display: display}
}

type metricsResponse struct {
	Source           string           `json:"source"`
	Periods          []string         `json:"periods"`
	Dimension        string           `json:"dimension"`
	KeyNames         []string         `json:"keyNames"`
	Rows             []metricRowView  `json:"rows"`
	Total            metricRowView    `json:"total"`
	EmptyAfterFilter bool             `json:"emptyAfterFilter"`
	Evaluation       model.Evaluation `json:"evaluation"`
}

// GetMetrics 汇总查询
// GET /api/metrics?periods=Jan,Feb&dimension=store&sort=valueConversion&order=desc
func (h *Handler) GetMetrics(c *gin.Context) {
	svc, source, err := h.serviceFor(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	q, err := parseMetricsQuery(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	res, err := svc.Metrics(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}

	rows := make([]metricRowView, len(res.Table.Rows))
	for i, r := range res.Table.Rows {
		rows[i] = newMetricRowView(r)
	}
	c.JSON(http.StatusOK, metricsResponse{
		Source:           source,
		Periods:          res.Periods,
		Dimension:        res.Table.Dimension,
		KeyNames:         res.Table.KeyNames,
		Rows:             rows,
		Total:            newMetricRowView(res.Table.Total),
		EmptyAfterFilter: res.Table.EmptyAfterFilter,
		Evaluation:       res.Evaluation,
	})
}

// GetComparison 两期对比
// GET /api/compare?a=Jan&b=Feb&dimension=store
func (h *Handler) GetComparison(c *gin.Context) {
	svc, _, err := h.serviceFor(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	q, err := parseCompareQuery(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	cmp, err := svc.Compare(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

// GetPivot 多期透视
// GET /api/pivot?periods=ALL&dimension=store&metric=sumSold
func (h *Handler) GetPivot(c *gin.Context) {
	svc, _, err := h.serviceFor(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	q, err := parsePivotQuery(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	pv, err := svc.Pivot(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pv)
}
