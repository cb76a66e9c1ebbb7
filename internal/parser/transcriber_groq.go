package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"interview-agent-go/internal/logger"
)

const (
	// Groq的OpenAI兼容audio transcriptions地址
	defaultWhisperAPIURL    = "https://api.groq.com/openai/v1/audio/transcriptions"
	defaultWhisperModelName = "whisper-large-v3-turbo"
)

// GroqWhisperTranscriber 调用Groq托管的Whisper模型做语音转写
type GroqWhisperTranscriber struct {
	apiKey     string
	apiURL     string
	modelName  string
	httpClient *http.Client
}

// NewGroqWhisperTranscriber 创建Whisper转写客户端
func NewGroqWhisperTranscriber(apiKey, apiURL, modelName string) (*GroqWhisperTranscriber, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API密钥不能为空")
	}
	if strings.TrimSpace(apiURL) == "" {
		apiURL = defaultWhisperAPIURL
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = defaultWhisperModelName
	}

	return &GroqWhisperTranscriber{
		apiKey:     apiKey,
		apiURL:     apiURL,
		modelName:  modelName,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// Transcribe 将音频字节转写为文本
// 使用 response_format=text，响应体即转写结果
func (t *GroqWhisperTranscriber) Transcribe(ctx context.Context, audioData []byte, fileName string) (string, error) {
	if len(audioData) == 0 {
		return "", fmt.Errorf("音频数据为空")
	}
	if fileName == "" {
		fileName = "audio.webm"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	filePart, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", fmt.Errorf("构建multipart文件字段失败: %w", err)
	}
	if _, err := filePart.Write(audioData); err != nil {
		return "", fmt.Errorf("写入音频数据失败: %w", err)
	}
	if err := writer.WriteField("model", t.modelName); err != nil {
		return "", fmt.Errorf("写入model字段失败: %w", err)
	}
	if err := writer.WriteField("response_format", "text"); err != nil {
		return "", fmt.Errorf("写入response_format字段失败: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("关闭multipart写入器失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL, &body)
	if err != nil {
		return "", fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	startTime := time.Now()
	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("发送转写请求失败: %w", err)
	}
	defer httpResp.Body.Close()

	respBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("读取转写响应失败: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		logger.Warn().
			Str("status", httpResp.Status).
			Str("model", t.modelName).
			Msg("Whisper转写请求失败")
		return "", fmt.Errorf("转写API请求失败，状态 %s: %s", httpResp.Status, string(respBytes))
	}

	transcript := strings.TrimSpace(string(respBytes))
	logger.Debug().
		Int("audio_bytes", len(audioData)).
		Int("transcript_length", len(transcript)).
		Dur("duration", time.Since(startTime)).
		Msg("语音转写完成")

	return transcript, nil
}
