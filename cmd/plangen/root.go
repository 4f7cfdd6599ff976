package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"study_plan_backend/internal/model"
	"study_plan_backend/internal/service"
	"study_plan_backend/internal/util"
	"study_plan_backend/pkg/logger"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type rootOptions struct {
	surveyFile string
	outputFile string
	today      string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "plangen",
		Short: "离线生成、重放学习计划",
		Long: `plangen 在命令行中运行学习计划生成流程。

Examples:
  # 按配置依次调用大模型服务商
  plangen generate --survey survey.yaml --config configs

  # 不调用任何服务商，直接本地生成
  plangen generate --survey survey.json --offline

  # 重放一份保存下来的模型原始响应
  plangen recover --survey survey.json --response ai_logs/2026-10-16/xxx_deepseek_response.txt`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.InitConsole(opts.verbose)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.surveyFile, "survey", "s", "", "问卷文件（JSON 或 YAML）")
	cmd.PersistentFlags().StringVarP(&opts.outputFile, "output", "o", "", "输出文件，默认写到标准输出")
	cmd.PersistentFlags().StringVar(&opts.today, "today", "", "参考日期 YYYY-MM-DD，默认当天")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "输出调试日志")

	cmd.AddCommand(newGenerateCmd(opts), newRecoverCmd(opts), newFallbackCmd(opts))
	return cmd
}

// clock 返回命令使用的参考时间
func (o *rootOptions) clock() (func() time.Time, error) {
	if o.today == "" {
		return time.Now, nil
	}
	t, err := time.ParseInLocation(util.DateFormat, o.today, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --today %q: %w", o.today, err)
	}
	return func() time.Time { return t }, nil
}

func (o *rootOptions) survey() (model.SurveyInput, error) {
	if o.surveyFile == "" {
		return model.SurveyInput{}, fmt.Errorf("--survey is required")
	}
	return loadSurvey(o.surveyFile)
}

// loadSurvey 读取问卷，YAML 先转成 JSON 再解码，字段名与接口保持一致
func loadSurvey(path string) (model.SurveyInput, error) {
	var survey model.SurveyInput

	data, err := os.ReadFile(path)
	if err != nil {
		return survey, fmt.Errorf("read survey: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var raw map[string]interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return survey, fmt.Errorf("parse survey yaml: %w", err)
		}
		if data, err = json.Marshal(raw); err != nil {
			return survey, fmt.Errorf("convert survey yaml: %w", err)
		}
	}

	if err := json.Unmarshal(data, &survey); err != nil {
		return survey, fmt.Errorf("parse survey: %w", err)
	}
	return survey, nil
}

func (o *rootOptions) writePlan(cmd *cobra.Command, plan model.StudyPlanResult) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	data = append(data, '\n')

	var w io.Writer = cmd.OutOrStdout()
	if o.outputFile != "" {
		f, err := os.Create(o.outputFile)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	_, err = w.Write(data)
	return err
}

func printSummary(cmd *cobra.Command, out service.Outcome) {
	provider := out.Provider
	if provider == "" {
		provider = "-"
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "source=%s provider=%s strategy=%s days=%d synthesized=%d\n",
		out.Source, provider, out.Strategy, len(out.Plan.DailyPlans), out.SynthesizedDays)
}
