package v3

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"warrantyboard/internal/exporter"
	"warrantyboard/internal/importer"
	"warrantyboard/internal/model"
	"warrantyboard/internal/service/dashboard"
	"warrantyboard/internal/store"
)

// SheetsSource 在线表格：既可作为导入工作簿，也可直接作为记录来源
type SheetsSource interface {
	importer.Workbook
	model.RecordSource
}

// Options 处理器依赖
type Options struct {
	Store         *store.Store
	Sheets        SheetsSource // 未配置在线表格时为 nil
	SpreadsheetID string
	Settings      dashboard.Settings
	Log           logrus.FieldLogger
}

// Handler V3 API 处理器
type Handler struct {
	store         *store.Store
	local         *dashboard.Service
	live          *dashboard.Service // 直接读取在线表格，未配置时为 nil
	sheets        SheetsSource
	spreadsheetID string
	coordinator   *importer.Coordinator
	exporter      *exporter.Exporter
	downloads     *exportDownloadStore
	log           logrus.FieldLogger
}

// NewHandler 创建 V3 API 处理器
func NewHandler(opts Options) *Handler {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	h := &Handler{
		store:         opts.Store,
		local:         dashboard.NewService(opts.Store, opts.Settings),
		sheets:        opts.Sheets,
		spreadsheetID: opts.SpreadsheetID,
		coordinator:   importer.NewCoordinator(opts.Store, log),
		exporter:      exporter.NewExporter(),
		downloads:     newExportDownloadStore(),
		log:           log,
	}
	if opts.Sheets != nil {
		h.live = dashboard.NewService(opts.Sheets, opts.Settings)
	}
	return h
}

// RegisterRoutes 注册 V3 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 周期
	router.GET("/periods", h.ListPeriods)
	router.DELETE("/periods/:name", h.DeletePeriod)
	router.GET("/filters", h.GetFilterOptions)

	// 配置管理
	router.GET("/config", h.GetConfig)
	router.PATCH("/config", h.UpdateConfig)

	// 数据导入
	router.POST("/import", h.Import)
	router.POST("/sync/sheets", h.SyncSheets)

	// 看板查询
	router.GET("/metrics", h.GetMetrics)
	router.GET("/compare", h.GetComparison)
	router.GET("/pivot", h.GetPivot)

	// 数据导出
	router.POST("/export", h.Export)
	router.POST("/export/stream", h.ExportStream)
	router.GET("/export/download/:token", h.DownloadExport)
}

// Close 清理未下载的导出文件
func (h *Handler) Close() {
	h.downloads.clear()
}

// services 所有看板服务，配置变更需同步到每一个
func (h *Handler) services() []*dashboard.Service {
	if h.live == nil {
		return []*dashboard.Service{h.local}
	}
	return []*dashboard.Service{h.local, h.live}
}

// LoadPersistedSettings 用 sqlite 中保存的目标与标记覆盖启动配置
func (h *Handler) LoadPersistedSettings() error {
	settings := h.local.Settings()

	targets, err := h.store.GetTargets(settings.Targets)
	if err != nil {
		return err
	}

	fallback := model.MarkerFilter{CaseSensitive: true, Exclude: true}
	if settings.Marker != nil {
		fallback = *settings.Marker
	}
	marker, err := h.store.GetMarker(fallback)
	if err != nil {
		return err
	}

	for _, svc := range h.services() {
		svc.SetTargets(targets)
		svc.SetMarker(&marker)
	}
	return nil
}
