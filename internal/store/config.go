package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"warrantyboard/internal/model"
)

// ErrConfigNotFound 配置项不存在
var ErrConfigNotFound = errors.New("config key not found")

// GetConfig 获取配置项
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, key)
		}
		return "", err
	}
	return value, nil
}

// GetConfigFloat 获取浮点数配置项
func (s *Store) GetConfigFloat(key string) (float64, error) {
	value, err := s.GetConfig(key)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(value, 64)
}

// SetConfig 设置配置项
func (s *Store) SetConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP
	`, key, value, value)
	return err
}

// SetConfigFloat 设置浮点数配置项
func (s *Store) SetConfigFloat(key string, value float64) error {
	return s.SetConfig(key, strconv.FormatFloat(value, 'f', -1, 64))
}

// 目标配置键
const (
	keyTargetValueConversion  = "target_value_conversion"
	keyTargetCountConversion  = "target_count_conversion"
	keyTargetAvgWarrantyPrice = "target_avg_warranty_price"
)

// GetTargets 读取目标配置，未设置的项使用 fallback
func (s *Store) GetTargets(fallback model.Targets) (model.Targets, error) {
	out := fallback
	items := []struct {
		key string
		dst *float64
	}{
		{keyTargetValueConversion, &out.ValueConversion},
		{keyTargetCountConversion, &out.CountConversion},
		{keyTargetAvgWarrantyPrice, &out.AvgWarrantyPrice},
	}
	for _, it := range items {
		v, err := s.GetConfigFloat(it.key)
		if errors.Is(err, ErrConfigNotFound) {
			continue
		}
		if err != nil {
			return fallback, fmt.Errorf("failed to get %s: %w", it.key, err)
		}
		*it.dst = v
	}
	return out, nil
}

// SetTargets 保存目标配置
func (s *Store) SetTargets(t model.Targets) error {
	if err := s.SetConfigFloat(keyTargetValueConversion, t.ValueConversion); err != nil {
		return err
	}
	if err := s.SetConfigFloat(keyTargetCountConversion, t.CountConversion); err != nil {
		return err
	}
	return s.SetConfigFloat(keyTargetAvgWarrantyPrice, t.AvgWarrantyPrice)
}

// 门店标记筛选配置键
const (
	keyMarkerToken         = "marker_token"
	keyMarkerCaseSensitive = "marker_case_sensitive"
)

// GetMarker 读取门店标记筛选，未设置的项使用 fallback
func (s *Store) GetMarker(fallback model.MarkerFilter) (model.MarkerFilter, error) {
	out := fallback

	token, err := s.GetConfig(keyMarkerToken)
	switch {
	case err == nil:
		out.Token = token
	case !errors.Is(err, ErrConfigNotFound):
		return fallback, fmt.Errorf("failed to get %s: %w", keyMarkerToken, err)
	}

	cs, err := s.GetConfig(keyMarkerCaseSensitive)
	switch {
	case err == nil:
		b, perr := strconv.ParseBool(cs)
		if perr != nil {
			return fallback, fmt.Errorf("invalid %s: %w", keyMarkerCaseSensitive, perr)
		}
		out.CaseSensitive = b
	case !errors.Is(err, ErrConfigNotFound):
		return fallback, fmt.Errorf("failed to get %s: %w", keyMarkerCaseSensitive, err)
	}
	return out, nil
}

// SetMarker 保存门店标记筛选
func (s *Store) SetMarker(m model.MarkerFilter) error {
	if err := s.SetConfig(keyMarkerToken, m.Token); err != nil {
		return err
	}
	return s.SetConfig(keyMarkerCaseSensitive, strconv.FormatBool(m.CaseSensitive))
}
