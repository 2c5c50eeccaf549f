package models

import "strings"

// IssueType 报修设备类别，取值与表格中保存的文字一致
type IssueType string

const (
	IssueTypeVDP        IssueType = "Video Door Phone (VDP)"
	IssueTypeAccessCard IssueType = "Door Access Card"
	IssueTypeBoth       IssueType = "Both VDP and Access Card"
	IssueTypeOther      IssueType = "Other"
)

// AllIssueTypes 按界面展示顺序排列
var AllIssueTypes = []IssueType{IssueTypeVDP, IssueTypeAccessCard, IssueTypeBoth, IssueTypeOther}

var issueTypeAliases = map[string]IssueType{
	"vdp":         IssueTypeVDP,
	"access card": IssueTypeAccessCard,
	"access_card": IssueTypeAccessCard,
	"card":        IssueTypeAccessCard,
	"both":        IssueTypeBoth,
	"other":       IssueTypeOther,
}

// ParseIssueType 宽松解析：完整取值（忽略大小写）或简称，无法识别时返回 false
func ParseIssueType(raw string) (IssueType, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	for _, t := range AllIssueTypes {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	if t, ok := issueTypeAliases[strings.ToLower(s)]; ok {
		return t, true
	}
	return "", false
}

// Urgency 紧急程度，每个级别带有描述后缀
type Urgency string

const (
	UrgencyLow      Urgency = "Low - Routine Check"
	UrgencyMedium   Urgency = "Medium - Intermittent Issue"
	UrgencyHigh     Urgency = "High - Completely Broken"
	UrgencyCritical Urgency = "Critical - Security Risk"
)

// AllUrgencies 从低到高
var AllUrgencies = []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical}

// Level 返回描述后缀之前的级别名，例如 "High"
func (u Urgency) Level() string {
	s := string(u)
	if idx := strings.Index(s, " - "); idx >= 0 {
		return s[:idx]
	}
	return s
}

// ParseUrgency 宽松解析：完整取值或级别名（忽略大小写），无法识别时返回 false
func ParseUrgency(raw string) (Urgency, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	for _, u := range AllUrgencies {
		if strings.EqualFold(s, string(u)) || strings.EqualFold(s, u.Level()) {
			return u, true
		}
	}
	if idx := strings.Index(s, " - "); idx >= 0 {
		return ParseUrgency(s[:idx])
	}
	return "", false
}

// SupportTicket 住户提交的一条报修工单，字段名与表格脚本接收的 JSON 一致
type SupportTicket struct {
	ID            string    `json:"id"`
	FullName      string    `json:"fullName"`
	UnitNumber    string    `json:"unitNumber"`
	TowerBlock    string    `json:"towerBlock"`
	ContactNumber string    `json:"contactNumber"`
	Email         string    `json:"email"`
	IssueType     IssueType `json:"issueType"`
	Urgency       Urgency   `json:"urgency"`
	Description   string    `json:"description"`
	SubmittedAt   string    `json:"submittedAt"`
	PhotoURL      string    `json:"photoUrl,omitempty"`
}

// TroubleshootingTip AI 给出的一条自助排查建议
type TroubleshootingTip struct {
	Title      string `json:"title"`
	Suggestion string `json:"suggestion"`
}
