package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"interview-agent-go/internal/config"
	"interview-agent-go/internal/constants"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrObjectNotFound 表示对象在存储桶中不存在
var ErrObjectNotFound = errors.New("对象不存在")

// ObjectStorage 对象存储接口
type ObjectStorage interface {
	// UploadResumeFile 上传原始简历文件，返回对象键
	UploadResumeFile(ctx context.Context, objectKey string, reader io.Reader, fileSize int64) (string, error)

	// GetResumeFile 下载原始简历文件
	GetResumeFile(ctx context.Context, objectKey string) ([]byte, error)

	// GetAnswerAudio 下载指定问题的回答音频（前端直传，可能尚未到达）
	GetAnswerAudio(ctx context.Context, sessionID string, questionNumber int) ([]byte, error)
}

// 确保MinIO实现了ObjectStorage接口
var _ ObjectStorage = (*MinIO)(nil)

// MinIO 提供对象存储功能
type MinIO struct {
	client        *minio.Client
	cfg           *config.MinIOConfig
	resumesBucket string
	answersBucket string
}

// NewMinIO 创建MinIO客户端并确保业务存储桶存在
func NewMinIO(cfg *config.MinIOConfig) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{
		client:        client,
		cfg:           cfg,
		resumesBucket: cfg.ResumesBucket,
		answersBucket: cfg.AnswersBucket,
	}

	for _, bucket := range []string{m.resumesBucket, m.answersBucket} {
		if err := m.ensureBucketExists(bucket, cfg.Location); err != nil {
			return nil, fmt.Errorf("确保存储桶 %s 存在失败: %w", bucket, err)
		}
	}

	return m, nil
}

// ensureBucketExists 确保存储桶存在
func (m *MinIO) ensureBucketExists(bucketName, location string) error {
	exists, err := m.client.BucketExists(context.Background(), bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if !exists {
		err = m.client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{Region: location})
		if err != nil {
			return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
		}
	}
	return nil
}

// UploadResumeFile 上传原始简历文件到resumesBucket
func (m *MinIO) UploadResumeFile(ctx context.Context, objectKey string, reader io.Reader, fileSize int64) (string, error) {
	_, err := m.client.PutObject(ctx, m.resumesBucket, objectKey, reader, fileSize,
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		return "", fmt.Errorf("上传对象 %s/%s 失败: %w", m.resumesBucket, objectKey, err)
	}
	return objectKey, nil
}

// GetResumeFile 从resumesBucket下载简历文件
func (m *MinIO) GetResumeFile(ctx context.Context, objectKey string) ([]byte, error) {
	return m.downloadObject(ctx, m.resumesBucket, objectKey)
}

// GetAnswerAudio 从answersBucket下载回答音频
// 对象键模板: answers/<session_id>/<question_number>/audio.webm
func (m *MinIO) GetAnswerAudio(ctx context.Context, sessionID string, questionNumber int) ([]byte, error) {
	objectKey := AnswerAudioObjectKey(sessionID, questionNumber)
	return m.downloadObject(ctx, m.answersBucket, objectKey)
}

// AnswerAudioObjectKey 构建回答音频的对象键
func AnswerAudioObjectKey(sessionID string, questionNumber int) string {
	return fmt.Sprintf(constants.AnswerAudioPathTemplate, sessionID, questionNumber)
}

// downloadObject 下载对象并读取全部内容，对象缺失时返回ErrObjectNotFound
func (m *MinIO) downloadObject(ctx context.Context, bucketName, objectKey string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 失败: %w", bucketName, objectKey, err)
	}
	defer obj.Close()

	// GetObject是惰性的，Stat才能暴露对象是否存在
	if _, err := obj.Stat(); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucketName, objectKey)
		}
		return nil, fmt.Errorf("获取对象 %s/%s 状态失败: %w", bucketName, objectKey, err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s/%s 数据失败: %w", bucketName, objectKey, err)
	}
	return data, nil
}
