package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"interview-agent-go/internal/logger"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const (
	// Groq的OpenAI兼容chat completions地址
	defaultGroqAPIURL    = "https://api.groq.com/openai/v1/chat/completions"
	defaultGroqModelName = "llama-3.3-70b-versatile"
)

// GroqChatModel 实现 model.ChatModel 接口，用于与Groq托管模型交互
type GroqChatModel struct {
	apiKey     string
	modelName  string
	apiURL     string
	maxTokens  int
	httpClient *http.Client
}

// GroqOption GroqChatModel的配置选项
type GroqOption func(*GroqChatModel)

// WithMaxTokens 配置单次补全的最大token数
func WithMaxTokens(maxTokens int) GroqOption {
	return func(g *GroqChatModel) {
		if maxTokens > 0 {
			g.maxTokens = maxTokens
		}
	}
}

// WithHTTPTimeout 配置HTTP客户端超时
func WithHTTPTimeout(timeout time.Duration) GroqOption {
	return func(g *GroqChatModel) {
		g.httpClient.Timeout = timeout
	}
}

// NewGroqChatModel 创建一个新的 GroqChatModel 实例
func NewGroqChatModel(apiKey string, modelName string, apiURL string, options ...GroqOption) (*GroqChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API密钥不能为空")
	}

	mn := modelName
	if strings.TrimSpace(mn) == "" {
		mn = defaultGroqModelName
	}

	url := apiURL
	if strings.TrimSpace(url) == "" {
		url = defaultGroqAPIURL
	}

	g := &GroqChatModel{
		apiKey:     apiKey,
		modelName:  mn,
		apiURL:     url,
		maxTokens:  1024,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, option := range options {
		option(g)
	}
	return g, nil
}

// --- OpenAI兼容请求/响应结构 ---

type groqChatCompletionRequest struct {
	Model     string            `json:"model"`
	Messages  []*schema.Message `json:"messages"` // eino schema.Message的role/content与OpenAI格式兼容
	MaxTokens int               `json:"max_tokens,omitempty"`
}

type groqMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

type groqChatChoice struct {
	Index        int         `json:"index"`
	Message      groqMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type groqCompletionResponse struct {
	Id      string           `json:"id"`
	Object  string           `json:"object"`
	Created int64            `json:"created"`
	Model   string           `json:"model"`
	Choices []groqChatChoice `json:"choices"`
}

// Generate 实现 model.ChatModel 接口
func (g *GroqChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	for _, opt := range options {
		_ = opt // 本客户端的行为全部由构造参数决定，调用级选项仅做确认
	}

	reqPayload := groqChatCompletionRequest{
		Model:     g.modelName,
		Messages:  messages,
		MaxTokens: g.maxTokens,
	}

	jsonData, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送HTTP请求失败: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		logger.Warn().
			Str("status", httpResp.Status).
			Str("model", g.modelName).
			Msg("Groq API请求失败")
		return nil, fmt.Errorf("API请求失败，状态 %s: %s", httpResp.Status, string(bodyBytes))
	}

	var groqResp groqCompletionResponse
	if err := json.Unmarshal(bodyBytes, &groqResp); err != nil {
		return nil, fmt.Errorf("反序列化API响应失败: %w", err)
	}

	if len(groqResp.Choices) == 0 {
		return nil, fmt.Errorf("从API收到空选项: %s", string(bodyBytes))
	}

	apiMessage := groqResp.Choices[0].Message
	responseContent := ""
	if apiMessage.Content != nil {
		responseContent = *apiMessage.Content
	}

	resultMessage := &schema.Message{
		Role:    schema.RoleType(apiMessage.Role),
		Content: responseContent,
	}
	if resultMessage.Role == "" {
		resultMessage.Role = schema.Assistant
	}

	return resultMessage, nil
}

// Stream 实现 model.ChatModel 接口 (本服务不需要流式响应)
func (g *GroqChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("GroqChatModel 的 Stream 方法未实现")
}

// BindTools 实现 model.ChatModel 接口（本服务不使用工具调用）
func (g *GroqChatModel) BindTools(tools []*schema.ToolInfo) error {
	if len(tools) > 0 {
		return fmt.Errorf("GroqChatModel 不支持工具调用")
	}
	return nil
}

// WithTools 实现 model.ToolCallingChatModel 接口（本服务不使用工具调用）
func (g *GroqChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	if len(tools) > 0 {
		return nil, fmt.Errorf("GroqChatModel 不支持工具调用")
	}
	return g, nil
}

var _ model.ChatModel = (*GroqChatModel)(nil)
var _ model.ToolCallingChatModel = (*GroqChatModel)(nil)
