package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"interview-agent-go/internal/logger"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
)

// EinoPDFTextExtractor 使用 Eino PDF Parser 从简历PDF中提取文本
type EinoPDFTextExtractor struct {
	parser *pdf.PDFParser
}

// NewEinoPDFTextExtractor 初始化 Eino PDF 文本提取器
// 默认配置为不按页面分割，以获取整个文档的连续文本
func NewEinoPDFTextExtractor(ctx context.Context) (*EinoPDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: false, // 问题生成需要简历全文作为单个字符串
	})
	if err != nil {
		return nil, fmt.Errorf("创建Eino PDF解析器失败: %w", err)
	}

	return &EinoPDFTextExtractor{parser: p}, nil
}

// ExtractTextFromReader 从 io.Reader 中提取PDF全文
func (e *EinoPDFTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, error) {
	startTime := time.Now()

	// PDF解析可能在损坏文件上长时间阻塞
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	docs, err := e.parser.Parse(ctx, reader, einoParser.WithURI(uri))
	if err != nil {
		return "", fmt.Errorf("解析PDF失败 (URI: %s): %w", uri, err)
	}
	if len(docs) == 0 {
		return "", fmt.Errorf("PDF解析无结果 (URI: %s)", uri)
	}

	var fullText bytes.Buffer
	for i, doc := range docs {
		fullText.WriteString(doc.Content)
		if i < len(docs)-1 {
			fullText.WriteString("\n\n")
		}
	}

	logger.Debug().
		Str("uri", uri).
		Int("text_length", fullText.Len()).
		Dur("duration", time.Since(startTime)).
		Msg("PDF文本提取完成")

	return fullText.String(), nil
}

// ExtractTextFromBytes 从字节数组提取PDF全文
func (e *EinoPDFTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, error) {
	return e.ExtractTextFromReader(ctx, bytes.NewReader(data), uri)
}
