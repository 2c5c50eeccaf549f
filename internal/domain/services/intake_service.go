package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vdp-support-service/internal/domain/models"
	"vdp-support-service/internal/domain/wizard"
	"vdp-support-service/pkg/logger"
	"vdp-support-service/pkg/utils"
)

// SubmissionFailedMessage 写入失败时展示给住户的提示
const SubmissionFailedMessage = "Submission failed. Ensure you have deployed the Google Apps Script correctly."

var (
	// ErrIntakeBusy 会话正在提交或分析
	ErrIntakeBusy = errors.New("会话正在处理中，请稍后再试")
	// ErrAnalysisUnavailable 描述太短或分析未完成
	ErrAnalysisUnavailable = fmt.Errorf("问题描述至少需要 %d 个字符", wizard.MinAnalysisLength)
	// ErrSubmissionFailed 工单未能送达表格
	ErrSubmissionFailed = errors.New(SubmissionFailedMessage)
)

// SessionView 返回给住户的会话视图，不包含名册中的原始记录
type SessionView struct {
	ID         string                      `json:"id"`
	Step       wizard.Step                 `json:"step"`
	StepName   string                      `json:"step_name"`
	Form       wizard.Form                 `json:"form"`
	Matched    bool                        `json:"matched"`
	Tips       []models.TroubleshootingTip `json:"tips"`
	Error      string                      `json:"error,omitempty"`
	Submitting bool                        `json:"submitting"`
	Analyzing  bool                        `json:"analyzing"`
	CanAnalyze bool                        `json:"can_analyze"`
}

// SubmitOutcome 提交结果
type SubmitOutcome struct {
	TicketID string           `json:"ticket_id"`
	Status   SubmissionStatus `json:"status"`
	Session  *SessionView     `json:"session"`
}

// InterfaceIntakeService 定义报修会话接口
type InterfaceIntakeService interface {
	CreateSession(ctx context.Context) (*SessionView, error)
	GetSession(ctx context.Context, id string) (*SessionView, error)
	UpdateFields(ctx context.Context, id string, fields map[string]string) (*SessionView, error)
	Next(ctx context.Context, id string) (*SessionView, error)
	Back(ctx context.Context, id string) (*SessionView, error)
	Analyze(ctx context.Context, id string) (*SessionView, error)
	Submit(ctx context.Context, id string) (*SubmitOutcome, error)
}

// IntakeService 管理服务端的报修向导会话。
// 同一会话的读改写串行执行；AI 分析与提交在锁外进行，期间会话仍可浏览和编辑。
type IntakeService struct {
	Store       SessionStore
	Roster      InterfaceRosterService
	Tickets     InterfaceTicketService
	Suggestions InterfaceSuggestionService

	locks *keyedMutex
	now   func() time.Time
	newID func() string
}

// NewIntakeService 创建报修会话服务
func NewIntakeService(store SessionStore, roster InterfaceRosterService, tickets InterfaceTicketService, suggestions InterfaceSuggestionService) *IntakeService {
	return &IntakeService{
		Store:       store,
		Roster:      roster,
		Tickets:     tickets,
		Suggestions: suggestions,
		locks:       newKeyedMutex(),
		now:         time.Now,
		newID:       utils.NewTicketID,
	}
}

func newSessionView(s *IntakeSession) *SessionView {
	w := s.Wizard
	tips := w.Tips
	if tips == nil {
		tips = []models.TroubleshootingTip{}
	}
	return &SessionView{
		ID:         s.ID,
		Step:       w.Step,
		StepName:   w.Step.String(),
		Form:       w.Form,
		Matched:    w.Matched != nil,
		Tips:       tips,
		Error:      w.Error,
		Submitting: w.Submitting,
		Analyzing:  w.Analyzing,
		CanAnalyze: w.CanAnalyze(),
	}
}

// update 在会话锁内加载、修改并保存。fn 返回错误时仍保存，以便保留校验提示。
func (s *IntakeService) update(ctx context.Context, id string, fn func(w *wizard.Wizard) error) (*IntakeSession, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.Store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Wizard == nil {
		session.Wizard = wizard.New()
	}
	fnErr := fn(session.Wizard)

	var ve *wizard.ValidationError
	if fnErr != nil && !errors.As(fnErr, &ve) {
		return session, fnErr
	}
	session.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, fnErr
}

func (s *IntakeService) match(building, flatNo string) (models.ResidentRecord, bool) {
	if s.Roster == nil {
		return models.ResidentRecord{}, false
	}
	return s.Roster.Match(building, flatNo)
}

// 1 CreateSession 创建新的会话
func (s *IntakeService) CreateSession(ctx context.Context) (*SessionView, error) {
	now := s.now()
	session := &IntakeSession{
		ID:        uuid.New().String(),
		Wizard:    wizard.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	return newSessionView(session), nil
}

// 2 GetSession 获取会话
func (s *IntakeService) GetSession(ctx context.Context, id string) (*SessionView, error) {
	session, err := s.Store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Wizard == nil {
		session.Wizard = wizard.New()
	}
	return newSessionView(session), nil
}

// 3 UpdateFields 批量修改字段，任一字段无效时不保存
func (s *IntakeService) UpdateFields(ctx context.Context, id string, fields map[string]string) (*SessionView, error) {
	session, err := s.update(ctx, id, func(w *wizard.Wizard) error {
		// 按固定顺序应用，错误信息稳定
		for _, name := range wizard.EditableFields {
			if v, ok := fields[name]; ok {
				if err := w.SetField(name, v); err != nil {
					return err
				}
			}
		}
		for name := range fields {
			if !isEditableField(name) {
				return fmt.Errorf("%w: %s", wizard.ErrUnknownField, name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newSessionView(session), nil
}

func isEditableField(name string) bool {
	for _, f := range wizard.EditableFields {
		if f == name {
			return true
		}
	}
	return false
}

// 4 Next 前进一步，校验失败时返回会话视图和 *wizard.ValidationError
func (s *IntakeService) Next(ctx context.Context, id string) (*SessionView, error) {
	session, err := s.update(ctx, id, func(w *wizard.Wizard) error {
		return w.Next(s.match)
	})
	if session == nil {
		return nil, err
	}
	return newSessionView(session), err
}

// 5 Back 后退一步
func (s *IntakeService) Back(ctx context.Context, id string) (*SessionView, error) {
	session, err := s.update(ctx, id, func(w *wizard.Wizard) error {
		w.Back()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newSessionView(session), nil
}

// 6 Analyze 获取 AI 故障排查建议，结果写回会话。
// 请求结束前会话保持 Analyzing，重复调用返回 ErrIntakeBusy。
func (s *IntakeService) Analyze(ctx context.Context, id string) (*SessionView, error) {
	var description string
	var issueType models.IssueType
	_, err := s.update(ctx, id, func(w *wizard.Wizard) error {
		if w.Analyzing {
			return ErrIntakeBusy
		}
		if !w.CanAnalyze() {
			return ErrAnalysisUnavailable
		}
		w.Analyzing = true
		description = w.Form.Description
		issueType = w.Form.IssueType
		return nil
	})
	if err != nil {
		return nil, err
	}

	tips := []models.TroubleshootingTip{}
	if s.Suggestions != nil {
		tips = s.Suggestions.GetTroubleshootingTips(context.WithoutCancel(ctx), description, issueType)
	}

	session, err := s.update(context.WithoutCancel(ctx), id, func(w *wizard.Wizard) error {
		w.Tips = tips
		w.Analyzing = false
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newSessionView(session), nil
}

// 7 Submit 生成工单并写入表格。
// 未失败时重置向导；失败时保留表单并返回 ErrSubmissionFailed。
func (s *IntakeService) Submit(ctx context.Context, id string) (*SubmitOutcome, error) {
	var ticket models.SupportTicket
	session, err := s.update(ctx, id, func(w *wizard.Wizard) error {
		if w.Submitting {
			return ErrIntakeBusy
		}
		t, err := w.BuildTicket(s.newID(), s.now())
		if err != nil {
			return err
		}
		ticket = t
		w.Submitting = true
		return nil
	})
	if err != nil {
		var ve *wizard.ValidationError
		if errors.As(err, &ve) && session != nil {
			return &SubmitOutcome{Session: newSessionView(session)}, err
		}
		return nil, err
	}

	// 住户断开连接不应中断已发出的写入
	result := s.Tickets.Submit(context.WithoutCancel(ctx), ticket)

	session, err = s.update(context.WithoutCancel(ctx), id, func(w *wizard.Wizard) error {
		w.Submitting = false
		if result.Dispatched() {
			w.Reset()
		}
		return nil
	})
	if err != nil {
		if result.Dispatched() {
			logger.Warning("工单 %s 已提交，但会话 %s 无法重置: %v", ticket.ID, id, err)
			return &SubmitOutcome{TicketID: ticket.ID, Status: result.Status}, nil
		}
		return nil, err
	}

	outcome := &SubmitOutcome{TicketID: ticket.ID, Status: result.Status, Session: newSessionView(session)}
	if !result.Dispatched() {
		return outcome, ErrSubmissionFailed
	}
	logger.Info("工单 %s 已提交，状态: %s", ticket.ID, result.Status)
	return outcome, nil
}
