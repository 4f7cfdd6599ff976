package model

// MaterialSubject 学习资料科目，例如"基础护理学"
type MaterialSubject struct {
	UUIDBase
	Name        string               `gorm:"size:100;not null" json:"name"`
	Level       CertificationLevel   `gorm:"size:20;index" json:"level"`
	Order       int                  `gorm:"default:0" json:"order"`
	Disciplines []MaterialDiscipline `gorm:"foreignKey:SubjectID" json:"disciplines"`
}

func (MaterialSubject) TableName() string {
	return "material_subjects"
}

type MaterialDiscipline struct {
	UUIDBase
	SubjectID string            `gorm:"index;type:varchar(36)" json:"subjectId"`
	Name      string            `gorm:"size:100;not null" json:"name"`
	Order     int               `gorm:"default:0" json:"order"`
	Chapters  []MaterialChapter `gorm:"foreignKey:DisciplineID" json:"chapters"`
}

func (MaterialDiscipline) TableName() string {
	return "material_disciplines"
}

type MaterialChapter struct {
	UUIDBase
	DisciplineID    string                   `gorm:"index;type:varchar(36)" json:"disciplineId"`
	Name            string                   `gorm:"size:255;not null" json:"name"`
	Order           int                      `gorm:"default:0" json:"order"`
	KnowledgePoints []MaterialKnowledgePoint `gorm:"foreignKey:ChapterID" json:"knowledgePoints"`
}

func (MaterialChapter) TableName() string {
	return "material_chapters"
}

type MaterialKnowledgePoint struct {
	UUIDBase
	ChapterID string `gorm:"index;type:varchar(36)" json:"chapterId"`
	Name      string `gorm:"size:255;not null" json:"name"`
	Order     int    `gorm:"default:0" json:"order"`
}

func (MaterialKnowledgePoint) TableName() string {
	return "material_knowledge_points"
}

// LearningMaterial 已组装好的只读资料树：科目 → 学科 → 章节 → 知识点
type LearningMaterial struct {
	Subjects []SubjectNode `json:"subjects"`
}

type SubjectNode struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Disciplines []DisciplineNode `json:"disciplines"`
}

type DisciplineNode struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Chapters []ChapterNode `json:"chapters"`
}

type ChapterNode struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	KnowledgePoints []KnowledgePointNode `json:"knowledgePoints"`
}

type KnowledgePointNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ChapterRef 展平后的章节，带上所属科目名称
type ChapterRef struct {
	Subject         string
	Discipline      string
	Chapter         string
	KnowledgePoints []string
}

// KnowledgePointCount 叶子节点（知识点）总数，nil 安全
func (m *LearningMaterial) KnowledgePointCount() int {
	if m == nil {
		return 0
	}
	count := 0
	for _, s := range m.Subjects {
		for _, d := range s.Disciplines {
			for _, c := range d.Chapters {
				count += len(c.KnowledgePoints)
			}
		}
	}
	return count
}

// SubjectNames 按资料顺序返回非空科目名称
func (m *LearningMaterial) SubjectNames() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.Subjects))
	for _, s := range m.Subjects {
		if s.Name != "" {
			names = append(names, s.Name)
		}
	}
	return names
}

// Chapters 按资料顺序展平所有章节
func (m *LearningMaterial) Chapters() []ChapterRef {
	if m == nil {
		return nil
	}
	var refs []ChapterRef
	for _, s := range m.Subjects {
		for _, d := range s.Disciplines {
			for _, c := range d.Chapters {
				kps := make([]string, 0, len(c.KnowledgePoints))
				for _, kp := range c.KnowledgePoints {
					kps = append(kps, kp.Name)
				}
				refs = append(refs, ChapterRef{
					Subject:         s.Name,
					Discipline:      d.Name,
					Chapter:         c.Name,
					KnowledgePoints: kps,
				})
			}
		}
	}
	return refs
}
