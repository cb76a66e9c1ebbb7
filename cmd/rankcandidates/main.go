package main

import (
	"context"

	"interview-agent-go/internal/config"
	"interview-agent-go/internal/logger"
	"interview-agent-go/internal/ranking"
	"interview-agent-go/internal/storage"

	"github.com/spf13/pflag"
)

// 离线排名入口：读取 <data_dir>/<job_id>_analysis.json，
// 产出 _ranked.json / _ranked.csv 并整体替换数据库中该岗位的排名
func main() {
	var (
		configPath string
		jobID      string
	)
	pflag.StringVarP(&configPath, "config", "c", "internal/config/config.yaml", "配置文件路径")
	pflag.StringVarP(&jobID, "job", "j", "", "岗位ID（必填）")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("加载配置失败")
	}

	logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	if jobID == "" {
		pflag.Usage()
		logger.Fatal().Msg("缺少岗位ID参数")
	}

	mysql, err := storage.NewMySQL(&cfg.MySQL)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化MySQL失败")
	}
	defer mysql.Close()

	ranker := ranking.NewRanker(mysql, cfg.Ranking.DataDir)
	if err := ranker.Rank(context.Background(), jobID); err != nil {
		logger.Fatal().Err(err).Str("job_id", jobID).Msg("排名管道执行失败")
	}

	logger.Info().Str("job_id", jobID).Msg("排名管道执行完成")
}
