package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未授权.
	StatusUnauthorized = 401
	// StatusForbidden - 403: 禁止访问.
	StatusForbidden = 403
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusConflict - 409: 操作进行中.
	StatusConflict = 409
	// StatusTooManyRequests - 429: 请求过多.
	StatusTooManyRequests = 429
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
	// StatusBadGateway - 502: 上游表格服务错误.
	StatusBadGateway = 502
	// StatusServiceUnavailable - 503: 上游不可达.
	StatusServiceUnavailable = 503
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrTokenInvalid - 401: 令牌无效.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: 请求频率过高.
	ErrTooManyRequests
)

// 管理员相关错误码 (101xxx).
const (
	// ErrAdminNotFound - 404: 管理员不存在.
	ErrAdminNotFound int = iota + 101000
	// ErrAdminCredentialsInvalid - 401: 用户名或密码错误.
	ErrAdminCredentialsInvalid
	// ErrAdminForbidden - 403: 权限不足.
	ErrAdminForbidden
)

// 数据库相关错误码 (105xxx).
const (
	// ErrDatabase - 500: 数据库错误.
	ErrDatabase int = iota + 105000
	// ErrRecordNotFound - 404: 记录不存在.
	ErrRecordNotFound
)

// 工单相关错误码 (106xxx).
const (
	// ErrTicketSubmitFailed - 502: 工单提交失败.
	ErrTicketSubmitFailed int = iota + 106000
	// ErrTicketQueryFailed - 502: 工单查询失败.
	ErrTicketQueryFailed
	// ErrTicketConnectivity - 503: 表格服务不可达或无权限.
	ErrTicketConnectivity
	// ErrTicketExportFailed - 500: 工单导出失败.
	ErrTicketExportFailed
)

// 报修向导相关错误码 (107xxx).
const (
	// ErrIntakeSessionNotFound - 404: 报修会话不存在.
	ErrIntakeSessionNotFound int = iota + 107000
	// ErrIntakeValidation - 400: 当前步骤校验未通过.
	ErrIntakeValidation
	// ErrIntakeBusy - 409: 会话正在提交或分析中.
	ErrIntakeBusy
	// ErrIntakeInvalidField - 400: 字段名或字段值无效.
	ErrIntakeInvalidField
)

// 住户名册相关错误码 (108xxx).
const (
	// ErrRosterUnavailable - 503: 住户名册不可用.
	ErrRosterUnavailable int = iota + 108000
)
