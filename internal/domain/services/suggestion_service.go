package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"vdp-support-service/internal/domain/models"
	"vdp-support-service/internal/infrastructure/config"
	"vdp-support-service/pkg/logger"
)

// 最多返回的建议条数
const maxTips = 3

// TipGenerator 调用生成模型，返回 JSON 文本
type TipGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// InterfaceSuggestionService 定义故障排查建议接口
type InterfaceSuggestionService interface {
	GetTroubleshootingTips(ctx context.Context, description string, issueType models.IssueType) []models.TroubleshootingTip
}

// SuggestionService 根据问题描述给出自助排查建议，失败时返回空列表
type SuggestionService struct {
	Generator TipGenerator
}

// NewSuggestionService 创建建议服务，未配置 API Key 时始终返回空列表
func NewSuggestionService(cfg *config.Config) *SuggestionService {
	if cfg.GeminiAPIKey == "" {
		logger.Warning("未配置 GEMINI_API_KEY，AI 故障排查建议已关闭")
		return &SuggestionService{}
	}
	gen, err := NewGeminiGenerator(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Error("初始化 Gemini 客户端失败: %v", err)
		return &SuggestionService{}
	}
	return &SuggestionService{Generator: gen}
}

// 1 GetTroubleshootingTips 返回至多 3 条建议，任何失败都只记录日志
func (s *SuggestionService) GetTroubleshootingTips(ctx context.Context, description string, issueType models.IssueType) []models.TroubleshootingTip {
	if s.Generator == nil {
		return []models.TroubleshootingTip{}
	}

	text, err := s.Generator.Generate(ctx, buildTipsPrompt(description, issueType))
	if err != nil {
		logger.Error("获取故障排查建议失败: %v", err)
		globalMetrics().recordSuggestion("failure")
		return []models.TroubleshootingTip{}
	}

	tips, err := parseTips(text)
	if err != nil {
		logger.Error("解析故障排查建议失败: %v", err)
		globalMetrics().recordSuggestion("failure")
		return []models.TroubleshootingTip{}
	}
	globalMetrics().recordSuggestion("success")
	return tips
}

func buildTipsPrompt(description string, issueType models.IssueType) string {
	return fmt.Sprintf(`User is reporting an issue with their %s.
Issue Description: "%s".

Provide exactly 3 concise, technical troubleshooting steps that a non-technical resident could try immediately.
Format the response as a JSON array of objects with "title" and "suggestion" fields.`, issueType, description)
}

// parseTips 丢弃标题和内容都为空的条目，截断到 3 条
func parseTips(text string) ([]models.TroubleshootingTip, error) {
	var raw []models.TroubleshootingTip
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return nil, err
	}
	tips := make([]models.TroubleshootingTip, 0, maxTips)
	for _, tip := range raw {
		tip.Title = strings.TrimSpace(tip.Title)
		tip.Suggestion = strings.TrimSpace(tip.Suggestion)
		if tip.Title == "" && tip.Suggestion == "" {
			continue
		}
		tips = append(tips, tip)
		if len(tips) == maxTips {
			break
		}
	}
	return tips, nil
}

// GeminiGenerator 通过 genai SDK 调用 Gemini，约束返回为建议数组
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator 创建 Gemini 调用器
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

var tipsSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":      {Type: genai.TypeString},
			"suggestion": {Type: genai.TypeString},
		},
		Required: []string{"title", "suggestion"},
	},
}

// Generate 返回模型输出的 JSON 文本
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   tipsSchema,
	})
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("模型未返回内容")
	}
	return text, nil
}
