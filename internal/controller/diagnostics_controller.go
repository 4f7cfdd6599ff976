package controller

import (
	"context"
	"strconv"

	"study_plan_backend/internal/service"
	"study_plan_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type diagnosticsLister interface {
	Recent(ctx context.Context, limit int64) ([]service.DiagnosticsEntry, error)
}

type DiagnosticsController struct {
	Lister diagnosticsLister
}

func NewDiagnosticsController(l diagnosticsLister) *DiagnosticsController {
	return &DiagnosticsController{Lister: l}
}

// @Summary 最近的AI诊断记录
// @Tags 管理
// @Produce json
// @Param limit query int false "条数，默认 20"
// @Success 200 {object} util.Response
// @Router /api/admin/ai-diagnostics [get]
func (c *DiagnosticsController) ListRecent(ctx *gin.Context) {
	if c.Lister == nil {
		util.NotFound(ctx, "诊断记录未启用")
		return
	}

	limit, err := strconv.ParseInt(ctx.DefaultQuery("limit", "20"), 10, 64)
	if err != nil || limit <= 0 {
		util.BadRequest(ctx, "limit 必须为正整数")
		return
	}

	entries, err := c.Lister.Recent(ctx.Request.Context(), limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"list":  entries,
		"total": len(entries),
	})
}
