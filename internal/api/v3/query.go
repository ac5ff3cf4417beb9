package v3

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"warrantyboard/internal/config"
	"warrantyboard/internal/model"
	"warrantyboard/internal/service/dashboard"
)

// errBadQuery 查询参数错误
var errBadQuery = errors.New("bad query")

// errSheetsDisabled 未配置在线表格
var errSheetsDisabled = errors.New("sheets source not configured")

func badQuery(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadQuery, fmt.Sprintf(format, args...))
}

// serviceFor 按 source 参数选择数据来源，默认为本地库
func (h *Handler) serviceFor(c *gin.Context) (*dashboard.Service, string, error) {
	switch strings.ToLower(strings.TrimSpace(c.Query("source"))) {
	case "", "local":
		return h.local, "local", nil
	case "sheets":
		if h.live == nil {
			return nil, "", errSheetsDisabled
		}
		return h.live, "sheets", nil
	}
	return nil, "", badQuery("未知数据来源 %q", c.Query("source"))
}

// respondError 按错误类型返回状态码
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errBadQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": strings.TrimPrefix(err.Error(), errBadQuery.Error()+": ")})
	case errors.Is(err, errSheetsDisabled):
		c.JSON(http.StatusBadRequest, gin.H{"error": "未配置在线表格"})
	case errors.Is(err, dashboard.ErrPeriodsRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "请选择至少一个有效周期"})
	case errors.Is(err, dashboard.ErrComparisonNeedsTwoPeriods):
		c.JSON(http.StatusBadRequest, gin.H{"error": "周期对比需要两个周期"})
	case errors.Is(err, dashboard.ErrUnknownDimension):
		c.JSON(http.StatusBadRequest, gin.H{"error": "未知的分组维度"})
	case errors.Is(err, model.ErrPeriodNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "周期不存在"})
	default:
		h.log.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// parseFilter 解析聚合前筛选
//
// marker 参数出现即覆盖默认标记筛选，值为空表示关闭。
func parseFilter(c *gin.Context) (model.FilterSpec, error) {
	taxonomy, err := model.ParseTaxonomyFilter(c.Query("taxonomy"))
	if err != nil {
		return model.FilterSpec{}, badQuery("未知品类分类 %q", c.Query("taxonomy"))
	}

	spec := model.FilterSpec{
		Taxonomy: taxonomy,
		Org: model.OrgFilter{
			BDM:   c.Query("bdm"),
			RBM:   c.Query("rbm"),
			Store: c.Query("store"),
			Staff: c.Query("staff"),
		},
	}

	if token, ok := c.GetQuery("marker"); ok {
		exclude := true
		switch strings.ToLower(strings.TrimSpace(c.DefaultQuery("markerMode", "exclude"))) {
		case "exclude":
		case "include":
			exclude = false
		default:
			return model.FilterSpec{}, badQuery("markerMode 只能为 include 或 exclude")
		}
		spec.Marker = &model.MarkerFilter{
			Token:         token,
			CaseSensitive: config.ParseBool(c.Query("markerCaseSensitive"), true),
			Exclude:       exclude,
		}
	}
	return spec, nil
}

func parseField(name, value string) (model.MetricField, error) {
	f, ok := model.ParseMetricField(value)
	if !ok {
		return "", badQuery("%s 不是有效的指标字段: %q", name, value)
	}
	return f, nil
}

func parseOptionalFloat(c *gin.Context, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, badQuery("%s 不是有效数字: %q", key, raw)
	}
	return &v, nil
}

// parseRange 解析聚合后区间筛选
func parseRange(c *gin.Context) (*model.RangeSpec, error) {
	lo, err := parseOptionalFloat(c, "min")
	if err != nil {
		return nil, err
	}
	hi, err := parseOptionalFloat(c, "max")
	if err != nil {
		return nil, err
	}

	fieldName := strings.TrimSpace(c.Query("rangeField"))
	if fieldName == "" {
		if lo != nil || hi != nil {
			return nil, badQuery("指定 min/max 时必须同时指定 rangeField")
		}
		return nil, nil
	}

	field, err := parseField("rangeField", fieldName)
	if err != nil {
		return nil, err
	}
	return &model.RangeSpec{Field: field, Min: lo, Max: hi}, nil
}

// parseSort 解析排序，未指定时返回 nil 由服务使用默认排序
func parseSort(c *gin.Context) (*model.SortSpec, error) {
	fieldName := strings.TrimSpace(c.Query("sort"))
	if fieldName == "" {
		return nil, nil
	}
	field, err := parseField("sort", fieldName)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(c.DefaultQuery("order", "desc"))) {
	case "desc":
		return &model.SortSpec{Field: field, Desc: true}, nil
	case "asc":
		return &model.SortSpec{Field: field}, nil
	}
	return nil, badQuery("order 只能为 asc 或 desc")
}

func parseMetricsQuery(c *gin.Context) (dashboard.Query, error) {
	filter, err := parseFilter(c)
	if err != nil {
		return dashboard.Query{}, err
	}
	rng, err := parseRange(c)
	if err != nil {
		return dashboard.Query{}, err
	}
	order, err := parseSort(c)
	if err != nil {
		return dashboard.Query{}, err
	}
	return dashboard.Query{
		Periods:   model.ParseSelection(c.Query("periods")),
		Dimension: c.Query("dimension"),
		Filter:    filter,
		Range:     rng,
		Sort:      order,
	}, nil
}

// parseCompareQuery 支持 a/b 参数或恰好两个周期的 periods 列表
func parseCompareQuery(c *gin.Context) (dashboard.CompareQuery, error) {
	filter, err := parseFilter(c)
	if err != nil {
		return dashboard.CompareQuery{}, err
	}

	q := dashboard.CompareQuery{
		PeriodA:   c.Query("a"),
		PeriodB:   c.Query("b"),
		Dimension: c.Query("dimension"),
		Filter:    filter,
	}
	if q.PeriodA == "" && q.PeriodB == "" {
		sel := model.ParseSelection(c.Query("periods"))
		if sel.All || len(sel.Names) != 2 {
			return dashboard.CompareQuery{}, dashboard.ErrComparisonNeedsTwoPeriods
		}
		q.PeriodA, q.PeriodB = sel.Names[0], sel.Names[1]
	}
	return q, nil
}

func parsePivotQuery(c *gin.Context) (dashboard.PivotQuery, error) {
	filter, err := parseFilter(c)
	if err != nil {
		return dashboard.PivotQuery{}, err
	}

	var metric model.MetricField
	if raw := strings.TrimSpace(c.Query("metric")); raw != "" {
		if metric, err = parseField("metric", raw); err != nil {
			return dashboard.PivotQuery{}, err
		}
	}

	return dashboard.PivotQuery{
		Periods:   model.ParseSelection(c.Query("periods")),
		Dimension: c.Query("dimension"),
		Metric:    metric,
		Filter:    filter,
	}, nil
}
