package main

import (
	"fmt"
	"os"

	"study_plan_backend/internal/planner"
	"study_plan_backend/internal/service"

	"github.com/spf13/cobra"
)

func newRecoverCmd(root *rootOptions) *cobra.Command {
	var responseFile string

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "对保存的模型原始响应重放恢复与补全",
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
			raw, err := os.ReadFile(responseFile)
			if err != nil {
				return fmt.Errorf("read response: %w", err)
			}

			svc := service.NewStudyPlanService(nil, nil, service.WithClock(clock))
			plan, strategy, err := svc.Complete(string(raw), survey, nil)
			if err != nil {
				return fmt.Errorf("recover %s (strategy %s): %w", responseFile, strategy, err)
			}

			candidate, _ := planner.Recover(string(raw))
			fmt.Fprintf(cmd.ErrOrStderr(), "strategy=%s days=%d kept=%d\n",
				strategy, len(plan.DailyPlans), candidate.UsableDays(len(plan.DailyPlans)))
			return root.writePlan(cmd, plan)
		},
	}

	cmd.Flags().StringVarP(&responseFile, "response", "r", "", "模型原始响应文件")
	_ = cmd.MarkFlagRequired("response")
	return cmd
}

func newFallbackCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fallback",
		Short: "只使用本地规则生成学习计划",
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
			svc := service.NewStudyPlanService(nil, nil, service.WithClock(clock))
			return root.writePlan(cmd, svc.Fallback(survey, nil))
		},
	}
}
