package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vdp-support-service/internal/domain/models"
	"vdp-support-service/internal/domain/services"
	"vdp-support-service/internal/domain/services/container"
	"vdp-support-service/internal/error/code"
	"vdp-support-service/internal/error/response"
	"vdp-support-service/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InterfaceTicketController 定义工单管理控制器接口
type InterfaceTicketController interface {
	GetTickets()
	ExportCSV()
	ExportXLSX()
	GetSheetURL()
}

// TicketController 工单管理控制器
type TicketController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
	now       func() time.Time
}

// NewTicketController 创建工单管理控制器
func NewTicketController(ctx *gin.Context, container *container.ServiceContainer) *TicketController {
	return &TicketController{
		Ctx:       ctx,
		Container: container,
		now:       time.Now,
	}
}

// TicketListData 工单列表
type TicketListData struct {
	Total   int                    `json:"total" example:"1"`
	Tickets []models.SupportTicket `json:"tickets"`
}

// HandleTicketFunc 返回一个处理工单管理请求的Gin处理函数
func HandleTicketFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewTicketController(ctx, container)

		switch method {
		case "getTickets":
			controller.GetTickets()
		case "exportCSV":
			controller.ExportCSV()
		case "exportXLSX":
			controller.ExportXLSX()
		case "getSheetURL":
			controller.GetSheetURL()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *TicketController) tickets() services.InterfaceTicketService {
	svc, _ := c.Container.GetService("ticket").(services.InterfaceTicketService)
	return svc
}

// load 读取工单，失败时已写出带排查提示的错误响应
func (c *TicketController) load() ([]models.SupportTicket, bool) {
	svc := c.tickets()
	if svc == nil {
		response.ServerError(c.Ctx)
		return nil, false
	}

	tickets, err := svc.ListTickets(c.Ctx.Request.Context())
	if err == nil {
		return tickets, true
	}

	logger.Warning("读取工单失败: %v", err)
	empty := TicketListData{Tickets: []models.SupportTicket{}}
	var qe *services.TicketQueryError
	if errors.As(err, &qe) {
		errorCode := code.ErrTicketQueryFailed
		if qe.Kind == services.QueryErrorConnectivity {
			errorCode = code.ErrTicketConnectivity
		}
		response.FailWithHint(c.Ctx, errorCode, qe.Error(), qe.Hint, empty)
		return nil, false
	}
	response.FailWithHint(c.Ctx, code.ErrTicketQueryFailed, err.Error(), services.ConnectivityHint, empty)
	return nil, false
}

// 1. GetTickets 获取全部工单，最新的在前
// @Summary      List tickets
// @Description  Read every ticket from the support sheet, newest first
// @Tags         Tickets
// @Produce      json
// @Success      200  {object}  response.Response{data=TicketListData}
// @Failure      502  {object}  response.Response{data=TicketListData}
// @Failure      503  {object}  response.Response{data=TicketListData}
// @Router       /admin/tickets [get]
// @Security     BearerAuth
func (c *TicketController) GetTickets() {
	tickets, ok := c.load()
	if !ok {
		return
	}
	response.Success(c.Ctx, TicketListData{Total: len(tickets), Tickets: tickets})
}

// 2. ExportCSV 导出 CSV
// @Summary      Export tickets as CSV
// @Tags         Tickets
// @Produce      text/csv
// @Success      200  {file}    file
// @Failure      502  {object}  response.Response
// @Router       /admin/tickets/export.csv [get]
// @Security     BearerAuth
func (c *TicketController) ExportCSV() {
	tickets, ok := c.load()
	if !ok {
		return
	}
	c.attachment(services.ExportFilename(c.now(), "csv"), "text/csv; charset=utf-8", []byte(services.GenerateCSV(tickets)))
}

// 3. ExportXLSX 导出 Excel
// @Summary      Export tickets as XLSX
// @Tags         Tickets
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}    file
// @Failure      500  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /admin/tickets/export.xlsx [get]
// @Security     BearerAuth
func (c *TicketController) ExportXLSX() {
	tickets, ok := c.load()
	if !ok {
		return
	}
	data, err := services.GenerateXLSX(tickets)
	if err != nil {
		logger.Error("导出 Excel 失败: %v", err)
		response.Fail(c.Ctx, code.ErrTicketExportFailed, nil)
		return
	}
	c.attachment(services.ExportFilename(c.now(), "xlsx"), xlsxContentType, data)
}

func (c *TicketController) attachment(filename, contentType string, data []byte) {
	c.Ctx.Header("Content-Disposition", "attachment; filename="+filename)
	c.Ctx.Data(http.StatusOK, contentType, data)
}

// 4. GetSheetURL 表格地址
// @Summary      Support sheet URL
// @Description  Link to the spreadsheet that stores the tickets
// @Tags         Tickets
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /admin/sheet-url [get]
// @Security     BearerAuth
func (c *TicketController) GetSheetURL() {
	svc := c.tickets()
	if svc == nil {
		response.ServerError(c.Ctx)
		return
	}
	response.Success(c.Ctx, gin.H{"url": svc.SheetURL()})
}
