package models

// SubmissionStatus 工单写入表格的结果
type SubmissionStatus string

const (
	// SubmissionDispatched 请求已发出且未出现网络错误，不代表表格已写入
	SubmissionDispatched SubmissionStatus = "dispatched"
	// SubmissionConfirmed 表格服务明确返回写入成功
	SubmissionConfirmed SubmissionStatus = "confirmed"
	// SubmissionFailed 发送时出现网络错误
	SubmissionFailed SubmissionStatus = "failed"
)

// SubmissionLog 每次工单提交尝试的本地审计记录，表格仍是工单的唯一数据源
type SubmissionLog struct {
	BaseModel
	TicketID    string           `gorm:"type:varchar(20);index;not null" json:"ticket_id"`
	TowerBlock  string           `gorm:"type:varchar(50)" json:"tower_block"`
	UnitNumber  string           `gorm:"type:varchar(50)" json:"unit_number"`
	IssueType   string           `gorm:"type:varchar(50)" json:"issue_type"`
	Urgency     string           `gorm:"type:varchar(50)" json:"urgency"`
	Status      SubmissionStatus `gorm:"type:varchar(20);not null" json:"status"`
	Error       string           `gorm:"type:varchar(255)" json:"error,omitempty"`
	SubmittedAt string           `gorm:"type:varchar(40)" json:"submitted_at"`
}
