// Package wizard 实现三步报修向导：位置、住户身份、问题详情。
// 向导只保存状态并做校验，网络调用由调用方完成。
package wizard

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"vdp-support-service/internal/domain/models"
	"vdp-support-service/pkg/utils"
)

// Step 向导步骤
type Step int

const (
	StepLocation         Step = 1
	StepResidentIdentity Step = 2
	StepIssueDetails     Step = 3
)

func (s Step) String() string {
	switch s {
	case StepLocation:
		return "location"
	case StepResidentIdentity:
		return "resident_identity"
	case StepIssueDetails:
		return "issue_details"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// MinAnalysisLength 触发 AI 分析所需的最短描述长度（字符数）
const MinAnalysisLength = 10

// 展示给住户的校验提示
const (
	MsgLocationRequired    = "Please enter both Tower and Flat number."
	MsgIdentityRequired    = "Please enter your name and contact number."
	MsgDescriptionRequired = "Please describe the issue."
)

var (
	// ErrUnknownField 字段名不在可编辑列表中
	ErrUnknownField = errors.New("未知字段")
	// ErrInvalidValue 枚举字段取值无法识别
	ErrInvalidValue = errors.New("字段取值无效")
	// ErrWrongStep 当前步骤不允许该操作
	ErrWrongStep = errors.New("当前步骤不允许该操作")
)

// ValidationError 阻止步骤切换的校验失败，Message 直接展示给住户
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Matcher 按楼栋与房号查找住户
type Matcher func(building, flatNo string) (models.ResidentRecord, bool)

// Form 住户填写的工单字段
type Form struct {
	TowerBlock    string           `json:"towerBlock"`
	UnitNumber    string           `json:"unitNumber"`
	FullName      string           `json:"fullName"`
	ContactNumber string           `json:"contactNumber"`
	Email         string           `json:"email"`
	IssueType     models.IssueType `json:"issueType"`
	Urgency       models.Urgency   `json:"urgency"`
	Description   string           `json:"description"`
	PhotoURL      string           `json:"photoUrl"`
}

func defaultForm() Form {
	return Form{IssueType: models.IssueTypeVDP, Urgency: models.UrgencyMedium}
}

// Wizard 一次报修会话的向导状态
type Wizard struct {
	Step       Step                        `json:"step"`
	Form       Form                        `json:"form"`
	Matched    *models.ResidentRecord      `json:"matched,omitempty"`
	Tips       []models.TroubleshootingTip `json:"tips"`
	Error      string                      `json:"error,omitempty"`
	Submitting bool                        `json:"submitting"`
	Analyzing  bool                        `json:"analyzing"`
}

// New 返回处于第一步、带默认值的向导
func New() *Wizard {
	return &Wizard{
		Step: StepLocation,
		Form: defaultForm(),
		Tips: []models.TroubleshootingTip{},
	}
}

// EditableFields 可通过 SetField 修改的字段
var EditableFields = []string{
	"towerBlock", "unitNumber", "fullName", "contactNumber", "email",
	"issueType", "urgency", "description", "photoUrl",
}

// SetField 修改一个字段并清除校验提示。
// 楼栋和姓名按输入转为大写；枚举字段接受宽松写法。
func (w *Wizard) SetField(name, value string) error {
	switch name {
	case "towerBlock":
		w.Form.TowerBlock = strings.ToUpper(value)
	case "unitNumber":
		w.Form.UnitNumber = value
	case "fullName":
		w.Form.FullName = strings.ToUpper(value)
	case "contactNumber":
		w.Form.ContactNumber = value
	case "email":
		w.Form.Email = value
	case "issueType":
		t, ok := models.ParseIssueType(value)
		if !ok {
			return fmt.Errorf("%w: issueType %q", ErrInvalidValue, value)
		}
		w.Form.IssueType = t
	case "urgency":
		u, ok := models.ParseUrgency(value)
		if !ok {
			return fmt.Errorf("%w: urgency %q", ErrInvalidValue, value)
		}
		w.Form.Urgency = u
	case "description":
		w.Form.Description = value
	case "photoUrl":
		w.Form.PhotoURL = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	w.Error = ""
	return nil
}

func (w *Wizard) fail(message string) error {
	w.Error = message
	return &ValidationError{Message: message}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Next 校验当前步骤并前进。
// 位置步骤通过后查找住户，命中时用脱敏姓名预填，未命中不算错误。
func (w *Wizard) Next(match Matcher) error {
	switch w.Step {
	case StepLocation:
		if blank(w.Form.TowerBlock) || blank(w.Form.UnitNumber) {
			return w.fail(MsgLocationRequired)
		}
		w.Matched = nil
		if match != nil {
			if record, ok := match(w.Form.TowerBlock, w.Form.UnitNumber); ok {
				w.Matched = &record
				w.Form.FullName = record.MaskedName()
			}
		}
		w.Step = StepResidentIdentity
	case StepResidentIdentity:
		if blank(w.Form.FullName) || blank(w.Form.ContactNumber) {
			return w.fail(MsgIdentityRequired)
		}
		w.Step = StepIssueDetails
	default:
		return ErrWrongStep
	}
	w.Error = ""
	return nil
}

// Back 后退一步并清除校验提示，第一步时保持不动
func (w *Wizard) Back() {
	if w.Step > StepLocation {
		w.Step--
	}
	w.Error = ""
}

// CanAnalyze 描述至少 10 个字符且没有进行中的分析
func (w *Wizard) CanAnalyze() bool {
	return !w.Analyzing && utf8.RuneCountInString(w.Form.Description) >= MinAnalysisLength
}

// BuildTicket 在问题详情步骤生成待提交的工单
func (w *Wizard) BuildTicket(id string, submittedAt time.Time) (models.SupportTicket, error) {
	if w.Step != StepIssueDetails {
		return models.SupportTicket{}, ErrWrongStep
	}
	if blank(w.Form.Description) {
		return models.SupportTicket{}, w.fail(MsgDescriptionRequired)
	}
	if blank(w.Form.TowerBlock) || blank(w.Form.UnitNumber) {
		return models.SupportTicket{}, w.fail(MsgLocationRequired)
	}
	if blank(w.Form.FullName) || blank(w.Form.ContactNumber) {
		return models.SupportTicket{}, w.fail(MsgIdentityRequired)
	}
	issueType := w.Form.IssueType
	if issueType == "" {
		issueType = models.IssueTypeVDP
	}
	urgency := w.Form.Urgency
	if urgency == "" {
		urgency = models.UrgencyMedium
	}
	return models.SupportTicket{
		ID:            id,
		FullName:      w.Form.FullName,
		UnitNumber:    w.Form.UnitNumber,
		TowerBlock:    w.Form.TowerBlock,
		ContactNumber: w.Form.ContactNumber,
		Email:         w.Form.Email,
		IssueType:     issueType,
		Urgency:       urgency,
		Description:   w.Form.Description,
		SubmittedAt:   utils.FormatSubmittedAt(submittedAt),
		PhotoURL:      w.Form.PhotoURL,
	}, nil
}

// Reset 回到第一步并恢复默认值，清除匹配结果、建议和提示
func (w *Wizard) Reset() {
	w.Step = StepLocation
	w.Form = defaultForm()
	w.Matched = nil
	w.Tips = []models.TroubleshootingTip{}
	w.Error = ""
	w.Submitting = false
	w.Analyzing = false
}
