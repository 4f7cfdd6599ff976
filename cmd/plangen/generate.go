package main

import (
	"fmt"

	"study_plan_backend/internal/config"
	"study_plan_backend/internal/model"
	"study_plan_backend/internal/repository"
	"study_plan_backend/internal/service"
	"study_plan_backend/pkg/database"
	"study_plan_backend/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newGenerateCmd(root *rootOptions) *cobra.Command {
	var (
		configDir string
		offline   bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "按服务商顺序生成学习计划，全部失败时本地生成",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			survey, err := root.survey()
			if err != nil {
				return err
			}
			clock, err := root.clock()
			if err != nil {
				return err
			}

			if offline {
				svc := service.NewStudyPlanService(nil, nil, service.WithClock(clock))
				out := svc.Run(cmd.Context(), survey, nil)
				printSummary(cmd, out)
				return root.writePlan(cmd, out.Plan)
			}

			cfg, err := config.LoadConfig(configDir)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			opts := []service.StudyPlanOption{
				service.WithClock(clock),
				service.WithPlanConfig(cfg.Plan),
			}
			if cfg.Diagnostics.Enabled {
				storage := service.NewStorageService(&cfg.Storage)
				opts = append(opts, service.WithDiagnostics(service.NewStorageDiagnosticsWriter(storage, cfg.Diagnostics.Prefix)))
			}

			svc := service.NewStudyPlanService(
				service.NewAIService(config.NewEnvCredentials()),
				cfg.AI.EnabledProviders(),
				opts...,
			)
			defer svc.Wait()

			out := svc.Run(cmd.Context(), survey, loadMaterial(cmd, cfg, survey.TargetLevel))
			printSummary(cmd, out)
			return root.writePlan(cmd, out.Plan)
		},
	}

	cmd.Flags().StringVarP(&configDir, "config", "c", "configs", "配置目录（包含 config.yaml）")
	cmd.Flags().BoolVar(&offline, "offline", false, "不调用服务商，直接本地生成")
	return cmd
}

// loadMaterial 配置了数据库时读取学习资料，失败只记录日志
func loadMaterial(cmd *cobra.Command, cfg *config.Config, level model.CertificationLevel) *model.LearningMaterial {
	if cfg.Database.Host == "" {
		return nil
	}
	db, err := database.InitDB(&cfg.Database, false)
	if err != nil {
		logger.Log.Warn("连接数据库失败，不使用学习资料", zap.Error(err))
		return nil
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	svc := service.NewLearningMaterialService(repository.NewLearningMaterialRepository(db))
	material, err := svc.GetMaterial(cmd.Context(), level)
	if err != nil {
		logger.Log.Warn("读取学习资料失败", zap.Error(err))
		return nil
	}
	return material
}
