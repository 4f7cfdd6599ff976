package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"study_plan_backend/internal/config"
	"study_plan_backend/internal/model"
	"study_plan_backend/internal/planner"
	"study_plan_backend/internal/util"
	"study_plan_backend/pkg/logger"
	"study_plan_backend/pkg/monitoring"
	"study_plan_backend/pkg/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Outcome 一次生成的结果及其来源
type Outcome struct {
	RequestID       string
	Plan            model.StudyPlanResult
	Source          string // util.PlanSourceProvider 或 util.PlanSourceFallback
	Provider        string
	Strategy        planner.Strategy
	SynthesizedDays int
}

type materialLoader interface {
	GetMaterial(ctx context.Context, level model.CertificationLevel) (*model.LearningMaterial, error)
}

// StudyPlanService 按优先级依次调用服务商，恢复并补全响应；全部失败时使用本地兜底计划
type StudyPlanService struct {
	client      ProviderClient
	materials   materialLoader
	diagnostics *AsyncDiagnostics
	now         func() time.Time

	outlineLimit        int
	defaultDailyMinutes int

	mu        sync.RWMutex
	providers []config.ProviderConfig
}

type StudyPlanOption func(*StudyPlanService)

// WithClock 注入参考时间，测试与离线重放使用
func WithClock(now func() time.Time) StudyPlanOption {
	return func(s *StudyPlanService) { s.now = now }
}

func WithDiagnostics(sink DiagnosticsSink) StudyPlanOption {
	return func(s *StudyPlanService) { s.diagnostics = NewAsyncDiagnostics(sink) }
}

func WithMaterialLoader(loader materialLoader) StudyPlanOption {
	return func(s *StudyPlanService) { s.materials = loader }
}

func WithPlanConfig(cfg config.PlanConfig) StudyPlanOption {
	return func(s *StudyPlanService) {
		s.outlineLimit = cfg.MaterialOutlineSize
		s.defaultDailyMinutes = cfg.DefaultDailyMinutes
	}
}

func NewStudyPlanService(client ProviderClient, providers []config.ProviderConfig, opts ...StudyPlanOption) *StudyPlanService {
	s := &StudyPlanService{
		client:      client,
		diagnostics: NewAsyncDiagnostics(nil),
		now:         time.Now,
		providers:   append([]config.ProviderConfig(nil), providers...),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetProviders 配置热更新时替换服务商列表，进行中的请求继续使用旧列表
func (s *StudyPlanService) SetProviders(providers []config.ProviderConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers = append([]config.ProviderConfig(nil), providers...)
}

func (s *StudyPlanService) Providers() []config.ProviderConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]config.ProviderConfig(nil), s.providers...)
}

// GenerateForSurvey 按考试级别加载资料后生成，资料缺失时按无资料处理
func (s *StudyPlanService) GenerateForSurvey(ctx context.Context, survey model.SurveyInput) Outcome {
	var material *model.LearningMaterial
	if s.materials != nil {
		m, err := s.materials.GetMaterial(ctx, survey.TargetLevel)
		switch {
		case err == nil:
			material = m
		case errors.Is(err, util.ErrMaterialNotFound):
			logger.Log.Info("未找到学习资料，使用默认科目", zap.String("level", string(survey.TargetLevel)))
		default:
			logger.Log.Warn("加载学习资料失败", zap.Error(err))
		}
	}
	return s.Run(ctx, survey, material)
}

// Generate 永远返回结构完整的计划
func (s *StudyPlanService) Generate(ctx context.Context, survey model.SurveyInput, material *model.LearningMaterial) model.StudyPlanResult {
	return s.Run(ctx, survey, material).Plan
}

func (s *StudyPlanService) Run(ctx context.Context, survey model.SurveyInput, material *model.LearningMaterial) Outcome {
	ctx, span := tracing.Start(ctx, "study_plan.generate")
	defer span.End()

	requestID := uuid.NewString()
	opts := s.options(survey, material)
	span.SetAttributes(
		attribute.String("study_plan.request_id", requestID),
		attribute.Int("study_plan.days", opts.Days),
		attribute.Int("study_plan.knowledge_points", opts.KnowledgePoints),
	)

	prompt := BuildPlanPrompt(survey, opts, s.outlineLimit)
	s.record(requestID, "prompt", prompt)

	providers := s.Providers()
	if len(providers) == 0 {
		logger.Log.Warn("未配置AI服务商", zap.String("requestId", requestID), zap.Error(util.ErrNoProviderConfigured))
	}

	messages := []AIChatMessage{{Role: "user", Content: prompt}}
	for _, p := range providers {
		text, err := s.client.Call(ctx, p, messages)
		if err != nil {
			s.record(requestID, p.Name+"_error", err.Error())
			continue
		}
		s.record(requestID, p.Name+"_response", text)

		candidate, strategy := planner.Recover(text)
		monitoring.RecoveryStrategy.WithLabelValues(p.Name, string(strategy)).Inc()
		if !candidate.Acceptable() {
			err := fmt.Errorf("%w: provider %s (%d chars)", util.ErrUnsalvageableResponse, p.Name, len(text))
			logger.Log.Warn("AI响应无法恢复", zap.String("requestId", requestID), zap.String("provider", p.Name), zap.Error(err))
			s.record(requestID, p.Name+"_error", err.Error())
			continue
		}

		plan := planner.Complete(candidate, opts)
		synthesized := opts.Days - candidate.UsableDays(opts.Days)
		monitoring.PlansGenerated.WithLabelValues(util.PlanSourceProvider).Inc()
		monitoring.SynthesizedDays.Add(float64(synthesized))
		logger.Log.Info("学习计划生成成功",
			zap.String("requestId", requestID),
			zap.String("provider", p.Name),
			zap.String("strategy", string(strategy)),
			zap.Int("days", opts.Days),
			zap.Int("synthesizedDays", synthesized))
		span.SetAttributes(attribute.String("study_plan.source", util.PlanSourceProvider), attribute.String("ai.provider", p.Name))

		return Outcome{
			RequestID:       requestID,
			Plan:            plan,
			Source:          util.PlanSourceProvider,
			Provider:        p.Name,
			Strategy:        strategy,
			SynthesizedDays: synthesized,
		}
	}

	plan := planner.GenerateFallback(survey, opts)
	monitoring.PlansGenerated.WithLabelValues(util.PlanSourceFallback).Inc()
	logger.Log.Warn("所有AI服务商均不可用，使用本地计划",
		zap.String("requestId", requestID),
		zap.Int("providers", len(providers)),
		zap.Int("days", opts.Days))
	span.SetAttributes(attribute.String("study_plan.source", util.PlanSourceFallback))

	return Outcome{
		RequestID:       requestID,
		Plan:            plan,
		Source:          util.PlanSourceFallback,
		Strategy:        planner.StrategyNone,
		SynthesizedDays: opts.Days,
	}
}

// Fallback 只使用本地生成，离线模式和测试使用
func (s *StudyPlanService) Fallback(survey model.SurveyInput, material *model.LearningMaterial) model.StudyPlanResult {
	return planner.GenerateFallback(survey, s.options(survey, material))
}

// Complete 对已保存的原始响应重放恢复与补全
func (s *StudyPlanService) Complete(raw string, survey model.SurveyInput, material *model.LearningMaterial) (model.StudyPlanResult, planner.Strategy, error) {
	candidate, strategy := planner.Recover(raw)
	if !candidate.Acceptable() {
		return model.StudyPlanResult{}, strategy, util.ErrUnsalvageableResponse
	}
	return planner.Complete(candidate, s.options(survey, material)), strategy, nil
}

// Wait 等待后台诊断写入完成
func (s *StudyPlanService) Wait() {
	s.diagnostics.Wait()
}

func (s *StudyPlanService) options(survey model.SurveyInput, material *model.LearningMaterial) planner.Options {
	opts := planner.NewOptions(survey, material, s.now())
	if opts.DailyMinutes <= 0 && s.defaultDailyMinutes > 0 {
		opts.DailyMinutes = s.defaultDailyMinutes
	}
	return opts
}

func (s *StudyPlanService) record(requestID, kind, content string) {
	s.diagnostics.Record(requestID+"_"+kind, content)
}
