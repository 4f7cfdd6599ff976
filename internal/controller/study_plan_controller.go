package controller

import (
	"context"
	"time"

	"study_plan_backend/internal/model"
	"study_plan_backend/internal/service"
	"study_plan_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type planGenerator interface {
	GenerateForSurvey(ctx context.Context, survey model.SurveyInput) service.Outcome
}

type StudyPlanController struct {
	Service planGenerator
}

func NewStudyPlanController(s planGenerator) *StudyPlanController {
	return &StudyPlanController{Service: s}
}

// @Summary 根据问卷生成学习计划
// @Description 依次调用已配置的大模型服务，全部不可用时返回本地生成的计划，接口本身不会因模型故障失败
// @Tags 学习计划
// @Accept json
// @Produce json
// @Param survey body model.SurveyInput true "问卷"
// @Success 200 {object} util.Response
// @Router /api/study-plans/generate [post]
func (c *StudyPlanController) Generate(ctx *gin.Context) {
	var survey model.SurveyInput
	if err := ctx.ShouldBindJSON(&survey); err != nil {
		util.BadRequest(ctx, "问卷参数错误: "+err.Error())
		return
	}
	if _, err := time.Parse(util.DateFormat, survey.ExamDate); err != nil {
		util.BadRequest(ctx, "examDate 格式应为 YYYY-MM-DD")
		return
	}

	out := c.Service.GenerateForSurvey(ctx.Request.Context(), survey)
	ctx.Header("X-Request-ID", out.RequestID)
	ctx.Header("X-Plan-Source", out.Source)
	util.Success(ctx, out.Plan)
}
