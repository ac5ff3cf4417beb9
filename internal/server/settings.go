package server

import (
	"warrantyboard/internal/config"
	"warrantyboard/internal/model"
	"warrantyboard/internal/service/dashboard"
)

// dashboardSettings 由配置文件得到看板默认值
func dashboardSettings(cfg *config.AppConfig, marker model.MarkerFilter) dashboard.Settings {
	return dashboard.Settings{
		Dimension: cfg.Engine.DefaultDimension,
		Marker:    &marker,
		Sort:      cfg.Engine.SortSpec(),
		Targets:   cfg.Targets.ToTargets(),
	}
}
