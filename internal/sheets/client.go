package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"warrantyboard/internal/model"
	"warrantyboard/internal/parser"
)

// Source 在线表格数据源标识
const Source = "sheets"

// Client Google Sheets 只读客户端，每个周期一个 Sheet
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	parser        *parser.RecordParser
	recognizer    *parser.SheetRecognizer
	timeout       time.Duration
	log           logrus.FieldLogger
}

var _ model.RecordSource = (*Client)(nil)

// Options 客户端参数
type Options struct {
	SpreadsheetID   string
	CredentialsFile string
	CredentialsJSON string
	Timeout         time.Duration // 单次请求超时，0 表示不限
}

// New 使用服务账号凭据创建客户端
func New(ctx context.Context, opts Options, log logrus.FieldLogger) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	credentialsJSON, err := readCredentials(opts)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		parser:        parser.NewRecordParser(),
		recognizer:    parser.NewSheetRecognizer(),
		timeout:       opts.Timeout,
		log:           log,
	}, nil
}

func readCredentials(opts Options) ([]byte, error) {
	if v := strings.TrimSpace(opts.CredentialsJSON); v != "" {
		return []byte(v), nil
	}
	path := strings.TrimSpace(opts.CredentialsFile)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}

// SheetNames 按表格顺序返回 Sheet 标题
func (c *Client) SheetNames(ctx context.Context) ([]string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet: %w", err)
	}
	names := make([]string, 0, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties == nil {
			continue
		}
		names = append(names, sh.Properties.Title)
	}
	return names, nil
}

// Rows 读取 Sheet 全部行
func (c *Client) Rows(ctx context.Context, sheet string) ([][]string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	rng := sheetRange(sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		rows = append(rows, toStrings(row))
	}
	return rows, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// ListPeriods 只读取各 Sheet 表头识别周期，在线表格不统计记录数
func (c *Client) ListPeriods(ctx context.Context) ([]model.PeriodInfo, error) {
	names, err := c.SheetNames(ctx)
	if err != nil {
		return nil, err
	}
	headers, err := c.headerRows(ctx, names)
	if err != nil {
		return nil, err
	}
	return c.periodInfos(names, headers), nil
}

// headerRows 一次批量请求读取各 Sheet 首行，顺序与 names 一致
func (c *Client) headerRows(ctx context.Context, names []string) ([][]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	ranges := make([]string, len(names))
	for i, sheet := range names {
		ranges[i] = headerRange(sheet)
	}
	resp, err := c.svc.Spreadsheets.Values.BatchGet(c.spreadsheetID).
		Ranges(ranges...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet headers: %w", err)
	}

	headers := make([][]string, len(names))
	for i, vr := range resp.ValueRanges {
		if i >= len(headers) || vr == nil || len(vr.Values) == 0 {
			continue
		}
		headers[i] = toStrings(vr.Values[0])
	}
	return headers, nil
}

// periodInfos 按表格顺序挑出周期明细表，同名周期先出现者保留
func (c *Client) periodInfos(names []string, headers [][]string) []model.PeriodInfo {
	seen := make(map[string]struct{}, len(names))
	infos := make([]model.PeriodInfo, 0, len(names))
	for i, sheet := range names {
		var header []string
		if i < len(headers) {
			header = headers[i]
		}
		result := c.recognizer.Recognize(sheet, header)
		if result.SheetType != parser.SheetTypePeriod {
			c.log.WithField("sheet", sheet).Debug("skip sheet")
			continue
		}
		if _, dup := seen[result.Period]; dup {
			continue
		}
		seen[result.Period] = struct{}{}
		infos = append(infos, model.PeriodInfo{Name: result.Period, Source: Source})
	}
	return infos
}

// LoadPeriod 读取指定周期
func (c *Client) LoadPeriod(ctx context.Context, name string) ([]model.Record, error) {
	names, err := c.SheetNames(ctx)
	if err != nil {
		return nil, err
	}
	for _, sheet := range names {
		if parser.PeriodFromSheetName(sheet) != name {
			continue
		}
		rows, err := c.Rows(ctx, sheet)
		if err != nil {
			return nil, err
		}
		records, _, err := c.parser.ParseRows(sheet, rows)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}
		return records, nil
	}
	return nil, fmt.Errorf("%w: %s", model.ErrPeriodNotFound, name)
}

// sheetRange 整张 Sheet 的 A1 区间，名称需加单引号
func sheetRange(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}

// headerRange Sheet 首行
func headerRange(sheet string) string {
	return sheetRange(sheet) + "!1:1"
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
