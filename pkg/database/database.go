package database

import (
	"fmt"
	"log"

	"study_plan_backend/internal/config"
	"study_plan_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	charset := cfg.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if !migrate {
		return db, nil
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")
	return db, nil
}

// Migrate 建表并在资料为空时写入一份基础护理资料
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.MaterialSubject{},
		&model.MaterialDiscipline{},
		&model.MaterialChapter{},
		&model.MaterialKnowledgePoint{},
	)
	if err != nil {
		return err
	}

	var count int64
	db.Model(&model.MaterialSubject{}).Count(&count)
	if count > 0 {
		return nil
	}

	for _, s := range defaultMaterial() {
		subject := s
		if err := db.Create(&subject).Error; err != nil {
			return fmt.Errorf("seed material %s: %w", subject.Name, err)
		}
	}
	return nil
}

type seedChapter struct {
	name   string
	points []string
}

func defaultMaterial() []model.MaterialSubject {
	build := func(order int, name, discipline string, chapters []seedChapter) model.MaterialSubject {
		d := model.MaterialDiscipline{Name: discipline, Order: 1}
		for i, ch := range chapters {
			c := model.MaterialChapter{Name: ch.name, Order: i + 1}
			for j, p := range ch.points {
				c.KnowledgePoints = append(c.KnowledgePoints, model.MaterialKnowledgePoint{Name: p, Order: j + 1})
			}
			d.Chapters = append(d.Chapters, c)
		}
		return model.MaterialSubject{
			Name:        name,
			Level:       model.LevelNurse,
			Order:       order,
			Disciplines: []model.MaterialDiscipline{d},
		}
	}

	return []model.MaterialSubject{
		build(1, "基础护理学", "基础护理", []seedChapter{
			{"生命体征的评估与护理", []string{"体温的测量", "脉搏的测量", "呼吸的观察", "血压的测量"}},
			{"给药", []string{"口服给药法", "注射原则", "静脉输液"}},
			{"医院感染的预防和控制", []string{"清洁、消毒、灭菌", "无菌技术", "隔离技术"}},
		}),
		build(2, "内科护理学", "内科护理", []seedChapter{
			{"呼吸系统疾病病人的护理", []string{"慢性阻塞性肺疾病", "支气管哮喘", "肺炎"}},
			{"循环系统疾病病人的护理", []string{"心力衰竭", "高血压", "冠心病"}},
		}),
		build(3, "外科护理学", "外科护理", []seedChapter{
			{"围术期护理", []string{"术前准备", "术后并发症的护理"}},
			{"水、电解质、酸碱代谢失衡", []string{"脱水", "低钾血症与高钾血症"}},
		}),
		build(4, "妇产科护理学", "妇产科护理", []seedChapter{
			{"正常分娩", []string{"影响分娩的因素", "产程观察与护理"}},
		}),
		build(5, "儿科护理学", "儿科护理", []seedChapter{
			{"生长发育", []string{"体格生长指标", "小儿计划免疫"}},
		}),
	}
}
