package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"warrantyboard/internal/model"
	"warrantyboard/internal/service/calculator"
)

var (
	ErrPeriodsRequired           = errors.New("no periods selected")
	ErrComparisonNeedsTwoPeriods = errors.New("comparison needs two periods")
	ErrUnknownDimension          = errors.New("unknown dimension")
)

// maxConcurrentLoads 并发加载的周期数
const maxConcurrentLoads = 8

// Settings 查询默认值，请求未指定时使用
type Settings struct {
	Dimension string
	Marker    *model.MarkerFilter
	Sort      *model.SortSpec
	Targets   model.Targets
}

// Service 看板查询服务
type Service struct {
	source model.RecordSource

	mu       sync.RWMutex
	settings Settings
}

// NewService 创建看板服务
func NewService(source model.RecordSource, settings Settings) *Service {
	return &Service{source: source, settings: settings}
}

// Settings 当前默认值
func (s *Service) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetTargets 更新指标目标
func (s *Service) SetTargets(t model.Targets) {
	s.mu.Lock()
	s.settings.Targets = t
	s.mu.Unlock()
}

// SetMarker 更新默认门店标记筛选，token 为空时关闭
func (s *Service) SetMarker(m *model.MarkerFilter) {
	s.mu.Lock()
	s.settings.Marker = m
	s.mu.Unlock()
}

// Query 汇总查询
type Query struct {
	Periods   model.Selection
	Dimension string
	Filter    model.FilterSpec
	Range     *model.RangeSpec
	Sort      *model.SortSpec
}

// MetricsResult 汇总结果
type MetricsResult struct {
	Periods    []string          `json:"periods"`
	Table      model.MetricTable `json:"table"`
	Evaluation model.Evaluation  `json:"evaluation"`
}

// CompareQuery 两期对比查询
type CompareQuery struct {
	PeriodA   string
	PeriodB   string
	Dimension string
	Filter    model.FilterSpec
}

// PivotQuery 多期透视查询
type PivotQuery struct {
	Periods   model.Selection
	Dimension string
	Metric    model.MetricField
	Filter    model.FilterSpec
}

// Periods 列出可用周期
func (s *Service) Periods(ctx context.Context) ([]model.PeriodInfo, error) {
	return s.source.ListPeriods(ctx)
}

// Metrics 合并所选周期、筛选、聚合并评估
func (s *Service) Metrics(ctx context.Context, q Query) (MetricsResult, error) {
	settings := s.Settings()

	dim, err := s.resolveDimension(q.Dimension)
	if err != nil {
		return MetricsResult{}, err
	}

	batches, err := s.loadSelection(ctx, q.Periods)
	if err != nil {
		return MetricsResult{}, err
	}

	spec := s.withDefaults(q.Filter)
	records := calculator.ApplyPreFilters(calculator.Combine(batches, model.Selection{All: true}), spec)
	table := calculator.Aggregate(records, calculator.EffectiveDimension(spec, dim))

	order := q.Sort
	if order == nil {
		order = settings.Sort
	}
	table = calculator.ApplyPostFilters(table, q.Range, order)

	return MetricsResult{
		Periods:    batchNames(batches),
		Table:      table,
		Evaluation: calculator.Evaluate(table, settings.Targets),
	}, nil
}

// Compare 两期按相同维度聚合后对比
func (s *Service) Compare(ctx context.Context, q CompareQuery) (model.Comparison, error) {
	a, b := strings.TrimSpace(q.PeriodA), strings.TrimSpace(q.PeriodB)
	if a == "" || b == "" {
		return model.Comparison{}, ErrComparisonNeedsTwoPeriods
	}

	dim, err := s.resolveDimension(q.Dimension)
	if err != nil {
		return model.Comparison{}, err
	}

	batches, err := s.loadNamed(ctx, []string{a, b})
	if err != nil {
		return model.Comparison{}, err
	}

	spec := s.withDefaults(q.Filter)
	dim = calculator.EffectiveDimension(spec, dim)
	tables := make([]model.MetricTable, len(batches))
	for i, batch := range batches {
		records := calculator.Combine([]model.PeriodBatch{batch}, model.Selection{All: true})
		tables[i] = calculator.Aggregate(calculator.ApplyPreFilters(records, spec), dim)
	}
	return calculator.BuildComparison(a, b, tables[0], tables[1]), nil
}

// Pivot 多期透视
func (s *Service) Pivot(ctx context.Context, q PivotQuery) (model.PivotTable, error) {
	dim, err := s.resolveDimension(q.Dimension)
	if err != nil {
		return model.PivotTable{}, err
	}

	batches, err := s.loadSelection(ctx, q.Periods)
	if err != nil {
		return model.PivotTable{}, err
	}

	spec := s.withDefaults(q.Filter)
	filtered := make([]model.PeriodBatch, len(batches))
	for i, b := range batches {
		filtered[i] = model.PeriodBatch{
			Name:    b.Name,
			Records: calculator.ApplyPreFilters(b.Records, spec),
		}
	}

	metric := q.Metric
	if metric == "" {
		metric = model.FieldValueConversion
	}
	return calculator.PivotByPeriod(filtered, calculator.EffectiveDimension(spec, dim), metric), nil
}

func (s *Service) resolveDimension(name string) (calculator.Dimension, error) {
	if strings.TrimSpace(name) == "" {
		name = s.Settings().Dimension
	}
	dim, ok := calculator.DimensionByName(name)
	if !ok {
		return calculator.Dimension{}, fmt.Errorf("%w: %q", ErrUnknownDimension, name)
	}
	return dim, nil
}

// withDefaults 请求未指定标记筛选时使用默认值
func (s *Service) withDefaults(spec model.FilterSpec) model.FilterSpec {
	if spec.Marker == nil {
		if m := s.Settings().Marker; m != nil && m.Token != "" {
			cp := *m
			spec.Marker = &cp
		}
	}
	return spec
}

// loadSelection 解析周期选择并加载，未知周期名被忽略
func (s *Service) loadSelection(ctx context.Context, sel model.Selection) ([]model.PeriodBatch, error) {
	infos, err := s.source.ListPeriods(ctx)
	if err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}

	available := make([]model.PeriodBatch, len(infos))
	for i, info := range infos {
		available[i] = model.PeriodBatch{Name: info.Name}
	}
	names := batchNames(calculator.SelectBatches(available, sel))
	if len(names) == 0 {
		return nil, ErrPeriodsRequired
	}
	return s.loadNamed(ctx, names)
}

// loadNamed 并发加载指定周期，结果保持传入顺序
func (s *Service) loadNamed(ctx context.Context, names []string) ([]model.PeriodBatch, error) {
	out := make([]model.PeriodBatch, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			records, err := s.source.LoadPeriod(gctx, name)
			if err != nil {
				return fmt.Errorf("load period %q: %w", name, err)
			}
			out[i] = model.PeriodBatch{Name: name, Records: records}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func batchNames(batches []model.PeriodBatch) []string {
	names := make([]string, len(batches))
	for i, b := range batches {
		names[i] = b.Name
	}
	return names
}
