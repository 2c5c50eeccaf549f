package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"vdp-support-service/internal/domain/models"
	"vdp-support-service/internal/infrastructure/config"
	"vdp-support-service/pkg/logger"
)

// ConnectivityHint 读取失败时给管理员的排查提示
const ConnectivityHint = "check the web app is deployed with access 'Anyone' and the URL is correct (connectivity/permissions)"

// SubmissionStatus 工单写入结果
type SubmissionStatus = models.SubmissionStatus

const (
	SubmissionDispatched = models.SubmissionDispatched
	SubmissionConfirmed  = models.SubmissionConfirmed
	SubmissionFailed     = models.SubmissionFailed
)

// SubmissionResult 一次写入的结果
type SubmissionResult struct {
	Status SubmissionStatus
	Err    error
}

// Dispatched 兼容旧接口的布尔结果，true 不代表写入已持久化
func (r SubmissionResult) Dispatched() bool {
	return r.Status != SubmissionFailed
}

// TicketQueryErrorKind 读取失败的类别
type TicketQueryErrorKind string

const (
	QueryErrorStatus       TicketQueryErrorKind = "status"
	QueryErrorConnectivity TicketQueryErrorKind = "connectivity"
	QueryErrorDecode       TicketQueryErrorKind = "decode"
)

// TicketQueryError 读取工单列表失败
type TicketQueryError struct {
	Kind       TicketQueryErrorKind
	StatusCode int
	Hint       string
	Err        error
}

func (e *TicketQueryError) Error() string {
	switch e.Kind {
	case QueryErrorStatus:
		return fmt.Sprintf("读取工单失败: HTTP %d", e.StatusCode)
	case QueryErrorConnectivity:
		return fmt.Sprintf("无法连接工单表格: %v", e.Err)
	default:
		return fmt.Sprintf("工单数据无法解析: %v", e.Err)
	}
}

func (e *TicketQueryError) Unwrap() error {
	return e.Err
}

// InterfaceSheetService 定义表格读写接口
type InterfaceSheetService interface {
	SubmitTicket(ctx context.Context, ticket models.SupportTicket) SubmissionResult
	FetchTickets(ctx context.Context) ([]models.SupportTicket, error)
	SheetURL() string
}

// SheetService 通过 Apps Script Web App 读写工单表格
type SheetService struct {
	ScriptURL     string
	ReadURL       string
	ViewURL       string
	ConfirmWrites bool
	Client        *http.Client
}

// NewSheetService 创建表格服务
func NewSheetService(cfg *config.Config) *SheetService {
	readURL := cfg.SheetReadURL
	if readURL == "" {
		readURL = cfg.SheetScriptURL
	}
	return &SheetService{
		ScriptURL:     cfg.SheetScriptURL,
		ReadURL:       readURL,
		ViewURL:       cfg.GetSheetURL(),
		ConfirmWrites: cfg.SheetConfirmWrites,
		Client:        newHTTPClient(cfg.HTTPTimeout),
	}
}

// 1 SubmitTicket 以 JSON 提交工单。
// 只有传输失败才返回 Failed；确认模式下后端返回 success 时为 Confirmed。
func (s *SheetService) SubmitTicket(ctx context.Context, ticket models.SupportTicket) SubmissionResult {
	payload, err := json.Marshal(ticket)
	if err != nil {
		return SubmissionResult{Status: SubmissionFailed, Err: fmt.Errorf("序列化工单失败: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.ScriptURL, bytes.NewReader(payload))
	if err != nil {
		return SubmissionResult{Status: SubmissionFailed, Err: fmt.Errorf("构建请求失败: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Info("提交工单 %s 到表格", ticket.ID)
	resp, err := s.Client.Do(req)
	if err != nil {
		logger.Error("提交工单 %s 失败: %v", ticket.ID, err)
		return SubmissionResult{Status: SubmissionFailed, Err: err}
	}
	defer resp.Body.Close()

	if !s.ConfirmWrites {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return SubmissionResult{Status: SubmissionDispatched}
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if isSuccessStatus(resp.StatusCode) && isSuccessReply(body) {
		return SubmissionResult{Status: SubmissionConfirmed}
	}
	logger.Warning("工单 %s 未得到写入确认: HTTP %d", ticket.ID, resp.StatusCode)
	return SubmissionResult{Status: SubmissionDispatched}
}

// isSuccessReply 识别 {"result":"success"} 或 {"status":"success"}
func isSuccessReply(body []byte) bool {
	var reply map[string]interface{}
	if err := json.Unmarshal(body, &reply); err != nil {
		return false
	}
	for _, key := range []string{"result", "status"} {
		if v, ok := reply[key].(string); ok && strings.EqualFold(v, "success") {
			return true
		}
	}
	return false
}

// 2 FetchTickets 读取全部工单，最新的排在最前。
// 返回体不是数组时记录警告并返回空列表。
func (s *SheetService) FetchTickets(ctx context.Context) ([]models.SupportTicket, error) {
	status, body, err := fetchText(ctx, s.Client, s.ReadURL)
	if err != nil {
		if status != 0 {
			return nil, &TicketQueryError{Kind: QueryErrorDecode, StatusCode: status, Err: err}
		}
		return nil, &TicketQueryError{Kind: QueryErrorConnectivity, Hint: ConnectivityHint, Err: err}
	}
	if !isSuccessStatus(status) {
		return nil, &TicketQueryError{Kind: QueryErrorStatus, StatusCode: status}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var decoded interface{}
	if err := dec.Decode(&decoded); err != nil {
		return nil, &TicketQueryError{Kind: QueryErrorDecode, StatusCode: status, Err: err}
	}

	items, ok := decoded.([]interface{})
	if !ok {
		logger.Warning("工单接口返回的不是数组: %T", decoded)
		return []models.SupportTicket{}, nil
	}
	rows := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		row, ok := item.(map[string]interface{})
		if !ok {
			logger.Warning("跳过无法识别的工单行: %T", item)
			continue
		}
		rows = append(rows, row)
	}
	return MapTicketRecords(rows), nil
}

// 3 SheetURL 返回表格的浏览地址
func (s *SheetService) SheetURL() string {
	return s.ViewURL
}
