package controllers

import (
	"github.com/gin-gonic/gin"

	"vdp-support-service/internal/domain/models"
	"vdp-support-service/internal/domain/services"
	"vdp-support-service/internal/domain/services/container"
	"vdp-support-service/internal/error/code"
	"vdp-support-service/internal/error/response"
	"vdp-support-service/pkg/logger"
)

// InterfaceRosterController 定义住户名册控制器接口
type InterfaceRosterController interface {
	Match()
	Reload()
	Stats()
	Search()
}

// RosterController 住户名册控制器
type RosterController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewRosterController 创建住户名册控制器
func NewRosterController(ctx *gin.Context, container *container.ServiceContainer) *RosterController {
	return &RosterController{
		Ctx:       ctx,
		Container: container,
	}
}

// RosterSearchData 按姓名查找的结果
type RosterSearchData struct {
	Total     int                     `json:"total"`
	Residents []models.ResidentRecord `json:"residents"`
}

// RosterMatchData 匹配结果，只返回打码后的姓名
type RosterMatchData struct {
	Matched    bool   `json:"matched" example:"true"`
	MaskedName string `json:"masked_name,omitempty" example:"JONA...TH"`
}

// HandleRosterFunc 返回一个处理住户名册请求的Gin处理函数
func HandleRosterFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewRosterController(ctx, container)

		switch method {
		case "match":
			controller.Match()
		case "reload":
			controller.Reload()
		case "stats":
			controller.Stats()
		case "search":
			controller.Search()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *RosterController) roster() services.InterfaceRosterService {
	svc, _ := c.Container.GetService("roster").(services.InterfaceRosterService)
	return svc
}

// 1. Match 按楼栋与房号匹配住户
// @Summary      Match resident
// @Description  Look up the roster by tower/block and flat number; only the masked name is returned
// @Tags         Roster
// @Produce      json
// @Param        building query string true "Tower / block"
// @Param        flat query string true "Flat number"
// @Success      200  {object}  response.Response{data=RosterMatchData}
// @Failure      400  {object}  response.Response
// @Router       /roster/match [get]
func (c *RosterController) Match() {
	building := c.Ctx.Query("building")
	flat := c.Ctx.Query("flat")
	if building == "" || flat == "" {
		response.ParamError(c.Ctx, "building 和 flat 参数不能为空")
		return
	}

	roster := c.roster()
	if roster == nil {
		response.Fail(c.Ctx, code.ErrRosterUnavailable, nil)
		return
	}

	record, ok := roster.Match(building, flat)
	if !ok {
		response.Success(c.Ctx, RosterMatchData{Matched: false})
		return
	}
	response.Success(c.Ctx, RosterMatchData{Matched: true, MaskedName: record.MaskedName()})
}

// 2. Reload 重新加载住户名册
// @Summary      Reload roster
// @Description  Fetch the roster CSV again; on failure the previous roster stays in use
// @Tags         Roster
// @Produce      json
// @Success      200  {object}  response.Response{data=services.RosterStats}
// @Failure      503  {object}  response.Response{data=services.RosterStats}
// @Router       /admin/roster/reload [post]
// @Security     BearerAuth
func (c *RosterController) Reload() {
	roster := c.roster()
	if roster == nil {
		response.Fail(c.Ctx, code.ErrRosterUnavailable, nil)
		return
	}

	stats, err := roster.Reload(c.Ctx.Request.Context())
	if err != nil {
		logger.Warning("住户名册重新加载失败: %v", err)
		response.FailWithMessage(c.Ctx, code.ErrRosterUnavailable, err.Error(), stats)
		return
	}
	logger.Info("住户名册已重新加载，共 %d 条记录", stats.Records)
	response.Success(c.Ctx, stats)
}

// 3. Stats 名册状态
// @Summary      Roster stats
// @Description  Number of loaded records and the last load attempt
// @Tags         Roster
// @Produce      json
// @Success      200  {object}  response.Response{data=services.RosterStats}
// @Router       /admin/roster/stats [get]
// @Security     BearerAuth
func (c *RosterController) Stats() {
	roster := c.roster()
	if roster == nil {
		response.Fail(c.Ctx, code.ErrRosterUnavailable, nil)
		return
	}
	response.Success(c.Ctx, roster.Stats())
}

// 4. Search 按姓名查找住户
// @Summary      Search roster by name
// @Description  Find residents whose normalized first name or full name equals the query; honorifics are ignored
// @Tags         Roster
// @Produce      json
// @Param        name query string true "Resident name"
// @Success      200  {object}  response.Response{data=RosterSearchData}
// @Failure      400  {object}  response.Response
// @Router       /admin/roster/search [get]
// @Security     BearerAuth
func (c *RosterController) Search() {
	name := c.Ctx.Query("name")
	if name == "" {
		response.ParamError(c.Ctx, "name 参数不能为空")
		return
	}
	roster := c.roster()
	if roster == nil {
		response.Fail(c.Ctx, code.ErrRosterUnavailable, nil)
		return
	}

	found := roster.FindByName(name)
	if found == nil {
		found = []models.ResidentRecord{}
	}
	response.Success(c.Ctx, RosterSearchData{Total: len(found), Residents: found})
}
