package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"vdp-support-service/internal/domain/models"
	"vdp-support-service/pkg/utils"
)

// 表格列名可能是脚本写入的字段名，也可能是人工维护的表头，按顺序探测
var (
	idAliases            = []string{"id", "ID", "Ticket ID", "ticketId"}
	fullNameAliases      = []string{"fullName", "Full Name", "name", "Name"}
	unitNumberAliases    = []string{"unitNumber", "Unit Number", "Flat No.", "flatNo", "unit"}
	towerBlockAliases    = []string{"towerBlock", "Tower/Block", "Tower", "building", "Building"}
	contactNumberAliases = []string{"contactNumber", "Contact Number", "phone", "Phone"}
	emailAliases         = []string{"email", "Email", "E-mail"}
	issueTypeAliases     = []string{"issueType", "Issue Type", "type"}
	urgencyAliases       = []string{"urgency", "Urgency", "priority"}
	descriptionAliases   = []string{"description", "Description", "details"}
	submittedAtAliases   = []string{"submittedAt", "Submitted At", "timestamp", "Timestamp"}
	photoURLAliases      = []string{"photoUrl", "Photo URL"}
)

// MapTicketRecord 把表格中的一行转换为完整工单，缺失字段取默认值，不会失败
func MapTicketRecord(raw map[string]interface{}) models.SupportTicket {
	return MapTicketRecordAt(raw, time.Now())
}

// MapTicketRecordAt 同 MapTicketRecord，submittedAt 缺失时使用 now
func MapTicketRecordAt(raw map[string]interface{}, now time.Time) models.SupportTicket {
	issueType := models.IssueTypeOther
	if v, ok := firstPresent(raw, issueTypeAliases); ok {
		if t, ok := models.ParseIssueType(v); ok {
			issueType = t
		}
	}
	urgency := models.UrgencyMedium
	if v, ok := firstPresent(raw, urgencyAliases); ok {
		if u, ok := models.ParseUrgency(v); ok {
			urgency = u
		}
	}
	submittedAt, ok := firstPresent(raw, submittedAtAliases)
	if !ok {
		submittedAt = utils.FormatSubmittedAt(now)
	}

	return models.SupportTicket{
		ID:            valueOrEmpty(raw, idAliases),
		FullName:      valueOrEmpty(raw, fullNameAliases),
		UnitNumber:    valueOrEmpty(raw, unitNumberAliases),
		TowerBlock:    valueOrEmpty(raw, towerBlockAliases),
		ContactNumber: valueOrEmpty(raw, contactNumberAliases),
		Email:         valueOrEmpty(raw, emailAliases),
		IssueType:     issueType,
		Urgency:       urgency,
		Description:   valueOrEmpty(raw, descriptionAliases),
		SubmittedAt:   submittedAt,
		PhotoURL:      valueOrEmpty(raw, photoURLAliases),
	}
}

// MapTicketRecords 逐行转换后倒序，最新追加的行排在最前
func MapTicketRecords(rows []map[string]interface{}) []models.SupportTicket {
	now := time.Now()
	tickets := make([]models.SupportTicket, len(rows))
	for i, row := range rows {
		tickets[len(rows)-1-i] = MapTicketRecordAt(row, now)
	}
	return tickets
}

func valueOrEmpty(raw map[string]interface{}, aliases []string) string {
	v, _ := firstPresent(raw, aliases)
	return v
}

// firstPresent 返回第一个存在且非空的别名取值
func firstPresent(raw map[string]interface{}, aliases []string) (string, bool) {
	for _, key := range aliases {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if s := stringify(v); s != "" {
			return s, true
		}
	}
	return "", false
}

// stringify 数字不使用科学计数法
func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
