package main

import (
	"flag"
	"log"

	"study_plan_backend/internal/app"
	"study_plan_backend/internal/config"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)

	// 迁移完成后直接退出
	if *migrateOnly {
		application.Close()
		log.Println("数据库迁移完成，退出程序")
		return
	}

	application.Run()
}
