package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"warrantyboard/internal/model"
)

// 环境变量
const (
	EnvSpreadsheetID   = "WARRANTYBOARD_SPREADSHEET_ID"
	EnvCredentialsFile = "WARRANTYBOARD_CREDENTIALS_FILE"
	EnvLogLevel        = "WARRANTYBOARD_LOG_LEVEL"
	EnvMarkerToken     = "WARRANTYBOARD_MARKER_TOKEN"
)

// AppConfig 应用配置
type AppConfig struct {
	Server  ServerConfig  `toml:"server"`
	Data    DataConfig    `toml:"data"`
	Engine  EngineConfig  `toml:"engine"`
	Targets TargetsConfig `toml:"targets"`
	Sheets  SheetsConfig  `toml:"sheets"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
	DBName  string `toml:"db_name"`
}

// EngineConfig 看板默认筛选与排序
type EngineConfig struct {
	MarkerToken         string `toml:"marker_token"`
	MarkerCaseSensitive bool   `toml:"marker_case_sensitive"`
	DefaultDimension    string `toml:"default_dimension"`
	DefaultSortField    string `toml:"default_sort_field"`
	DefaultSortDesc     bool   `toml:"default_sort_desc"`
}

// TargetsConfig 指标目标，0 表示未设置
type TargetsConfig struct {
	ValueConversion  float64 `toml:"value_conversion"`
	CountConversion  float64 `toml:"count_conversion"`
	AvgWarrantyPrice float64 `toml:"avg_warranty_price"`
}

// SheetsConfig Google Sheets 数据源配置
type SheetsConfig struct {
	SpreadsheetID   string `toml:"spreadsheet_id"`
	CredentialsFile string `toml:"credentials_file"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
}

// Enabled 是否配置了在线表格
func (c SheetsConfig) Enabled() bool {
	return strings.TrimSpace(c.SpreadsheetID) != ""
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	PortSpecified bool
	Path          string
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	t := model.DefaultTargets()
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
			DBName:  "warrantyboard.db",
		},
		Engine: EngineConfig{
			MarkerToken:         "FUTURE",
			MarkerCaseSensitive: true,
			DefaultDimension:    "store",
			DefaultSortField:    string(model.FieldValueConversion),
			DefaultSortDesc:     true,
		},
		Targets: TargetsConfig{
			ValueConversion:  t.ValueConversion,
			CountConversion:  t.CountConversion,
			AvgWarrantyPrice: t.AvgWarrantyPrice,
		},
		Sheets: SheetsConfig{
			TimeoutSeconds: 30,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ToTargets 转换为模型目标
func (c TargetsConfig) ToTargets() model.Targets {
	return model.Targets{
		ValueConversion:  c.ValueConversion,
		CountConversion:  c.CountConversion,
		AvgWarrantyPrice: c.AvgWarrantyPrice,
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultConfigPath 可执行文件同目录下的 config.toml
func DefaultConfigPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadFromFile 从指定路径加载配置，文件不存在时使用默认配置
func LoadFromFile(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: configPath}
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, info, err
	}
	if err == nil {
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, err
		}
	}

	applyEnv(config)
	return config, info, nil
}

// applyEnv 环境变量覆盖
func applyEnv(config *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvSpreadsheetID)); v != "" {
		config.Sheets.SpreadsheetID = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCredentialsFile)); v != "" {
		config.Sheets.CredentialsFile = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		config.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvMarkerToken); ok {
		config.Engine.MarkerToken = v
	}
}

// EnsureDataDir 确保数据目录存在，相对路径基于可执行文件目录
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := resolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// DBPath 数据库文件路径
func DBPath(config *AppConfig) string {
	return filepath.Join(resolveDataDir(config), config.Data.DBName)
}

func resolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	exeDir, _ := GetExeDir()
	if exeDir == "" {
		exeDir = "."
	}
	return filepath.Join(exeDir, config.Data.DataDir)
}

// SortSpec 默认排序
func (c EngineConfig) SortSpec() *model.SortSpec {
	f, ok := model.ParseMetricField(c.DefaultSortField)
	if !ok {
		return nil
	}
	return &model.SortSpec{Field: f, Desc: c.DefaultSortDesc}
}

// MarkerFilter 默认门店标记筛选，命中的门店被排除
func (c EngineConfig) MarkerFilter() model.MarkerFilter {
	return model.MarkerFilter{
		Token:         c.MarkerToken,
		CaseSensitive: c.MarkerCaseSensitive,
		Exclude:       true,
	}
}

// Timeout 在线表格请求超时（秒），未设置时为 30
func (c SheetsConfig) Timeout() int {
	if c.TimeoutSeconds <= 0 {
		return 30
	}
	return c.TimeoutSeconds
}

// ParseBool 宽松布尔解析，无法识别时返回 fallback
func ParseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return b
}
