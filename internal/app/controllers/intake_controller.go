package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"vdp-support-service/internal/domain/services"
	"vdp-support-service/internal/domain/services/container"
	"vdp-support-service/internal/domain/wizard"
	"vdp-support-service/internal/error/code"
	"vdp-support-service/internal/error/response"
	"vdp-support-service/pkg/logger"
)

// InterfaceIntakeController 定义报修向导控制器接口
type InterfaceIntakeController interface {
	CreateSession()
	GetSession()
	UpdateFields()
	Next()
	Back()
	Analyze()
	Submit()
}

// IntakeController 报修向导控制器
type IntakeController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewIntakeController 创建报修向导控制器
func NewIntakeController(ctx *gin.Context, container *container.ServiceContainer) *IntakeController {
	return &IntakeController{
		Ctx:       ctx,
		Container: container,
	}
}

// UpdateFieldsRequest 字段名到取值，例如 {"towerBlock": "T1", "unitNumber": "101"}
type UpdateFieldsRequest map[string]string

// HandleIntakeFunc 返回一个处理报修向导请求的Gin处理函数
func HandleIntakeFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewIntakeController(ctx, container)

		switch method {
		case "createSession":
			controller.CreateSession()
		case "getSession":
			controller.GetSession()
		case "updateFields":
			controller.UpdateFields()
		case "next":
			controller.Next()
		case "back":
			controller.Back()
		case "analyze":
			controller.Analyze()
		case "submit":
			controller.Submit()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *IntakeController) intake() services.InterfaceIntakeService {
	svc, _ := c.Container.GetService("intake").(services.InterfaceIntakeService)
	return svc
}

// fail 将服务错误映射为响应；校验失败时把会话视图一并返回，便于前端展示提示
func (c *IntakeController) fail(view *services.SessionView, err error) {
	var ve *wizard.ValidationError
	switch {
	case errors.As(err, &ve):
		response.FailWithMessage(c.Ctx, code.ErrIntakeValidation, ve.Message, view)
	case errors.Is(err, services.ErrSessionNotFound):
		response.Fail(c.Ctx, code.ErrIntakeSessionNotFound, nil)
	case errors.Is(err, services.ErrIntakeBusy):
		response.Fail(c.Ctx, code.ErrIntakeBusy, view)
	case errors.Is(err, wizard.ErrUnknownField), errors.Is(err, wizard.ErrInvalidValue):
		response.FailWithMessage(c.Ctx, code.ErrIntakeInvalidField, err.Error(), nil)
	case errors.Is(err, wizard.ErrWrongStep), errors.Is(err, services.ErrAnalysisUnavailable):
		response.FailWithMessage(c.Ctx, code.ErrValidation, err.Error(), view)
	default:
		logger.Error("报修会话处理失败: %v", err)
		response.ServerError(c.Ctx)
	}
}

// 1. CreateSession 创建报修会话
// @Summary      Create intake session
// @Description  Start a new three-step support wizard at the location step
// @Tags         Intake
// @Produce      json
// @Success      200  {object}  response.Response{data=services.SessionView}
// @Router       /intake/sessions [post]
func (c *IntakeController) CreateSession() {
	view, err := c.intake().CreateSession(c.Ctx.Request.Context())
	if err != nil {
		c.fail(nil, err)
		return
	}
	response.Success(c.Ctx, view)
}

// 2. GetSession 获取报修会话
// @Summary      Get intake session
// @Tags         Intake
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200  {object}  response.Response{data=services.SessionView}
// @Failure      404  {object}  response.Response
// @Router       /intake/sessions/{id} [get]
func (c *IntakeController) GetSession() {
	view, err := c.intake().GetSession(c.Ctx.Request.Context(), c.Ctx.Param("id"))
	if err != nil {
		c.fail(view, err)
		return
	}
	response.Success(c.Ctx, view)
}

// 3. UpdateFields 修改表单字段
// @Summary      Update wizard fields
// @Description  Set one or more form fields; an unknown field or invalid option rejects the whole update
// @Tags         Intake
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body UpdateFieldsRequest true "Field values"
// @Success      200  {object}  response.Response{data=services.SessionView}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /intake/sessions/{id}/fields [put]
func (c *IntakeController) UpdateFields() {
	var req UpdateFieldsRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	view, err := c.intake().UpdateFields(c.Ctx.Request.Context(), c.Ctx.Param("id"), req)
	if err != nil {
		c.fail(view, err)
		return
	}
	response.Success(c.Ctx, view)
}

// 4. Next 进入下一步
// @Summary      Next step
// @Description  Validate the current step; leaving the location step looks the flat up in the roster
// @Tags         Intake
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200  {object}  response.Response{data=services.SessionView}
// @Failure      400  {object}  response.Response{data=services.SessionView}
// @Failure      404  {object}  response.Response
// @Router       /intake/sessions/{id}/next [post]
func (c *IntakeController) Next() {
	view, err := c.intake().Next(c.Ctx.Request.Context(), c.Ctx.Param("id"))
	if err != nil {
		c.fail(view, err)
		return
	}
	response.Success(c.Ctx, view)
}

// 5. Back 返回上一步
// @Summary      Previous step
// @Tags         Intake
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200  {object}  response.Response{data=services.SessionView}
// @Failure      404  {object}  response.Response
// @Router       /intake/sessions/{id}/back [post]
func (c *IntakeController) Back() {
	view, err := c.intake().Back(c.Ctx.Request.Context(), c.Ctx.Param("id"))
	if err != nil {
		c.fail(view, err)
		return
	}
	response.Success(c.Ctx, view)
}

// 6. Analyze 获取 AI 排查建议
// @Summary      Troubleshooting tips
// @Description  Ask the AI model for up to three troubleshooting steps; needs a description of at least 10 characters
// @Tags         Intake
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200  {object}  response.Response{data=services.SessionView}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /intake/sessions/{id}/analyze [post]
func (c *IntakeController) Analyze() {
	view, err := c.intake().Analyze(c.Ctx.Request.Context(), c.Ctx.Param("id"))
	if err != nil {
		c.fail(view, err)
		return
	}
	response.Success(c.Ctx, view)
}

// 7. Submit 提交工单
// @Summary      Submit ticket
// @Description  Build the ticket from the wizard and append it to the support sheet; the wizard resets on success
// @Tags         Intake
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200  {object}  response.Response{data=services.SubmitOutcome}
// @Failure      400  {object}  response.Response{data=services.SessionView}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Failure      502  {object}  response.Response{data=services.SubmitOutcome}
// @Router       /intake/sessions/{id}/submit [post]
func (c *IntakeController) Submit() {
	outcome, err := c.intake().Submit(c.Ctx.Request.Context(), c.Ctx.Param("id"))
	if errors.Is(err, services.ErrSubmissionFailed) {
		response.FailWithMessage(c.Ctx, code.ErrTicketSubmitFailed, services.SubmissionFailedMessage, outcome)
		return
	}
	if err != nil {
		var view *services.SessionView
		if outcome != nil {
			view = outcome.Session
		}
		c.fail(view, err)
		return
	}
	response.Success(c.Ctx, outcome)
}
