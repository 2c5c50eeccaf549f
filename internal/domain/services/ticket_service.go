package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"vdp-support-service/internal/domain/models"
	"vdp-support-service/pkg/logger"
)

const ticketListCacheKey = "vdp_support:tickets:list"

// InterfaceTicketService 定义工单服务接口
type InterfaceTicketService interface {
	Submit(ctx context.Context, ticket models.SupportTicket) SubmissionResult
	ListTickets(ctx context.Context) ([]models.SupportTicket, error)
	SheetURL() string
}

// TicketService 提交与读取工单。
// 表格是唯一的数据源，数据库只保存提交记录，Redis 只缓存列表。
type TicketService struct {
	Sheet    InterfaceSheetService
	DB       *gorm.DB
	Cache    InterfaceRedisService
	CacheTTL time.Duration
	Notifier TicketNotifier

	group singleflight.Group
}

// NewTicketService 创建工单服务，db、cache、notifier 均可为 nil
func NewTicketService(sheet InterfaceSheetService, db *gorm.DB, cache InterfaceRedisService, cacheTTL time.Duration, notifier TicketNotifier) *TicketService {
	return &TicketService{
		Sheet:    sheet,
		DB:       db,
		Cache:    cache,
		CacheTTL: cacheTTL,
		Notifier: notifier,
	}
}

// 1 Submit 写入表格，随后记录提交日志、发送通知并使列表缓存失效。
// 日志与通知失败只记录，不影响返回结果。
func (s *TicketService) Submit(ctx context.Context, ticket models.SupportTicket) SubmissionResult {
	result := s.Sheet.SubmitTicket(ctx, ticket)
	globalMetrics().recordSubmission(string(result.Status))

	s.recordSubmission(ctx, ticket, result)

	if !result.Dispatched() {
		return result
	}
	if s.Notifier != nil {
		if err := s.Notifier.NotifyTicketSubmitted(ctx, ticket, result.Status); err != nil {
			logger.Warning("工单 %s 通知未发送: %v", ticket.ID, err)
		}
	}
	s.invalidateList(ctx)
	return result
}

func (s *TicketService) recordSubmission(ctx context.Context, ticket models.SupportTicket, result SubmissionResult) {
	if s.DB == nil {
		return
	}
	entry := models.SubmissionLog{
		TicketID:    ticket.ID,
		TowerBlock:  ticket.TowerBlock,
		UnitNumber:  ticket.UnitNumber,
		IssueType:   string(ticket.IssueType),
		Urgency:     string(ticket.Urgency),
		Status:      result.Status,
		SubmittedAt: ticket.SubmittedAt,
	}
	if result.Err != nil {
		entry.Error = truncateRunes(result.Err.Error(), 255)
	}
	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		logger.Error("保存工单 %s 提交记录失败: %v", ticket.ID, err)
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (s *TicketService) invalidateList(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, ticketListCacheKey); err != nil {
		logger.Warning("清除工单列表缓存失败: %v", err)
	}
}

// 2 ListTickets 返回全部工单，最新的排在最前。
// 并发请求合并为一次表格读取；失败时不返回旧数据。
func (s *TicketService) ListTickets(ctx context.Context) ([]models.SupportTicket, error) {
	if s.Cache != nil {
		var cached []models.SupportTicket
		err := s.Cache.Get(ctx, ticketListCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			logger.Warning("读取工单列表缓存失败: %v", err)
		}
	}

	v, err, _ := s.group.Do(ticketListCacheKey, func() (interface{}, error) {
		// 单个调用方取消不应影响共享同一次读取的其他请求
		fetchCtx := context.WithoutCancel(ctx)
		done := globalMetrics().startQuery()
		tickets, err := s.Sheet.FetchTickets(fetchCtx)
		if err != nil {
			done("failure")
			return nil, err
		}
		done("success")
		if s.Cache != nil && s.CacheTTL > 0 {
			if err := s.Cache.Set(fetchCtx, ticketListCacheKey, tickets, s.CacheTTL); err != nil {
				logger.Warning("写入工单列表缓存失败: %v", err)
			}
		}
		return tickets, nil
	})
	if err != nil {
		logger.Error("读取工单列表失败: %v", err)
		return nil, err
	}

	tickets := v.([]models.SupportTicket)
	out := make([]models.SupportTicket, len(tickets))
	copy(out, tickets)
	return out, nil
}

// 3 SheetURL 返回表格的浏览地址
func (s *TicketService) SheetURL() string {
	return s.Sheet.SheetURL()
}
