package storage

import (
	"context"
	"fmt"
	"time"

	"interview-agent-go/internal/config"
	"interview-agent-go/internal/constants"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

// Redis 封装Redis客户端，用于简历文件MD5去重
type Redis struct {
	Client *redis.Client
	cfg    *config.RedisConfig
}

// NewRedisAdapter 创建Redis客户端并挂载OpenTelemetry追踪钩子
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("Redis配置不能为空")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("挂载Redis追踪钩子失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Ping Redis (%s) 失败: %w", cfg.Address, err)
	}

	return &Redis{Client: client, cfg: cfg}, nil
}

// CheckResumeFileMD5Exists 检查简历文件MD5是否已存在
func (r *Redis) CheckResumeFileMD5Exists(ctx context.Context, md5Hex string) (bool, error) {
	exists, err := r.Client.SIsMember(ctx, constants.ResumeFileMD5SetKey, md5Hex).Result()
	if err != nil {
		return false, fmt.Errorf("查询简历文件MD5集合失败: %w", err)
	}
	return exists, nil
}

// AddResumeFileMD5 将简历文件MD5加入集合，并刷新集合过期时间
func (r *Redis) AddResumeFileMD5(ctx context.Context, md5Hex string) error {
	if err := r.Client.SAdd(ctx, constants.ResumeFileMD5SetKey, md5Hex).Err(); err != nil {
		return fmt.Errorf("添加简历文件MD5失败: %w", err)
	}
	if r.cfg.MD5RecordExpireDays > 0 {
		expiry := time.Duration(r.cfg.MD5RecordExpireDays) * 24 * time.Hour
		if err := r.Client.Expire(ctx, constants.ResumeFileMD5SetKey, expiry).Err(); err != nil {
			return fmt.Errorf("设置简历文件MD5集合过期时间失败: %w", err)
		}
	}
	return nil
}

// Close 关闭Redis连接
func (r *Redis) Close() error {
	return r.Client.Close()
}
