package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"warrantyboard/internal/config"
	"warrantyboard/internal/logging"
	"warrantyboard/internal/server"
	"warrantyboard/internal/sheets"
	"warrantyboard/internal/store"
)

var (
	configPath = flag.String("config", "", "配置文件路径 (默认为可执行文件同目录下的 config.toml)")
	port       = flag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode    = flag.Bool("dev", false, "开发模式")
	dataDir    = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
)

func main() {
	flag.Parse()

	// .env 不存在时忽略
	_ = godotenv.Load()

	fmt.Println("==========================================")
	fmt.Println("  WarrantyBoard - 延保转化看板")
	fmt.Println("==========================================")

	// 加载配置
	path := *configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, info, err := config.LoadFromFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败，使用默认配置: %v\n", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	log := logging.New(cfg.Log)

	// 确保数据目录存在
	dir, err := config.EnsureDataDir(cfg)
	if err != nil {
		log.WithError(err).Fatal("创建数据目录失败")
	}
	log.WithField("dir", dir).Info("数据目录")

	st, err := store.New(config.DBPath(cfg))
	if err != nil {
		log.WithError(err).Fatal("初始化数据库失败")
	}
	defer st.Close()

	opts := server.Options{Config: cfg, Store: st, Log: log}
	if cfg.Sheets.Enabled() {
		if client := openSheets(cfg, log); client != nil {
			opts.Sheets = client
		}
	}

	srv, err := server.NewServer(opts)
	if err != nil {
		log.WithError(err).Fatal("创建服务失败")
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		log.WithField("port", cfg.Server.Port).Info("服务启动中")
		if err := srv.Run(addr); err != nil {
			log.WithError(err).Fatal("服务启动失败")
		}
	}()

	if cfg.Server.DevMode {
		log.Infof("开发模式: 请访问 http://localhost:%d", cfg.Server.Port)
	}
	fmt.Println("\n按 Ctrl+C 停止服务...")

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("关闭服务失败")
	}
}

// openSheets 初始化在线表格数据源，失败时只记录日志
func openSheets(cfg *config.AppConfig, log *logrus.Logger) *sheets.Client {
	client, err := sheets.New(context.Background(), sheets.Options{
		SpreadsheetID:   cfg.Sheets.SpreadsheetID,
		CredentialsFile: cfg.Sheets.CredentialsFile,
		Timeout:         time.Duration(cfg.Sheets.Timeout()) * time.Second,
	}, log)
	if err != nil {
		log.WithError(err).Warn("在线表格不可用，仅使用本地数据")
		return nil
	}
	log.WithField("spreadsheet", cfg.Sheets.SpreadsheetID).Info("已连接在线表格")
	return client
}
