package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:         "成功",
	ErrUnknown:         "未知错误",
	ErrBind:            "请求参数绑定错误",
	ErrValidation:      "请求参数验证错误",
	ErrTokenInvalid:    "无效的认证令牌",
	ErrTooManyRequests: "请求频率过高，请稍后再试",

	// 管理员相关错误码
	ErrAdminNotFound:           "管理员不存在",
	ErrAdminCredentialsInvalid: "用户名或密码错误",
	ErrAdminForbidden:          "权限不足",

	// 数据库相关错误码
	ErrDatabase:       "数据库错误",
	ErrRecordNotFound: "记录不存在",

	// 工单相关错误码
	ErrTicketSubmitFailed: "Submission failed. Ensure you have deployed the Google Apps Script correctly.",
	ErrTicketQueryFailed:  "工单查询失败",
	ErrTicketConnectivity: "无法连接工单表格，请检查网络或访问权限",
	ErrTicketExportFailed: "工单导出失败",

	// 报修向导相关错误码
	ErrIntakeSessionNotFound: "报修会话不存在或已过期",
	ErrIntakeValidation:      "请完善当前步骤的必填信息",
	ErrIntakeBusy:            "请求处理中，请稍候",
	ErrIntakeInvalidField:    "无效的字段",

	// 住户名册相关错误码
	ErrRosterUnavailable: "住户名册暂不可用",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,

	// 管理员相关错误码
	ErrAdminNotFound:           StatusNotFound,
	ErrAdminCredentialsInvalid: StatusUnauthorized,
	ErrAdminForbidden:          StatusForbidden,

	// 数据库相关错误码
	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,

	// 工单相关错误码
	ErrTicketSubmitFailed: StatusBadGateway,
	ErrTicketQueryFailed:  StatusBadGateway,
	ErrTicketConnectivity: StatusServiceUnavailable,
	ErrTicketExportFailed: StatusInternalServerError,

	// 报修向导相关错误码
	ErrIntakeSessionNotFound: StatusNotFound,
	ErrIntakeValidation:      StatusBadRequest,
	ErrIntakeBusy:            StatusConflict,
	ErrIntakeInvalidField:    StatusBadRequest,

	// 住户名册相关错误码
	ErrRosterUnavailable: StatusServiceUnavailable,
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "未知错误"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
