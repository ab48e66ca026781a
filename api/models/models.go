package models

import (
	"time"

	"gorm.io/gorm"
)

// Course represents one uploaded document and the training material
// generated from it. The phase flags are owned by the caller layer; the
// pipeline itself has no notion of phases.
type Course struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	SourceName   string    `json:"source_name"`
	SourceHash   string    `gorm:"index" json:"source_hash"`
	Format       string    `json:"format"`
	WordCount    int       `json:"word_count"`
	PageCount    int       `json:"page_count"`
	SourceText   string    `json:"-"` // full normalized text, fed to later stages
	UploadDone   bool      `json:"upload_done"`
	AnalyzeDone  bool      `json:"analyze_done"`
	EditDone     bool      `json:"edit_done"`
	GenerateDone bool      `json:"generate_done"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Topic is a persisted snapshot of one extracted topic.
type Topic struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	CourseID        string    `gorm:"index" json:"course_id"`
	TopicNum        int       `json:"topic_num"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	KeyConcepts     string    `json:"key_concepts"` // JSON-encoded array
	Importance      string    `json:"importance"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
}

// Outline is a persisted snapshot of the generated course outline.
type Outline struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	CourseID        string    `gorm:"uniqueIndex" json:"course_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Duration        string    `json:"duration"`
	TotalModules    int       `json:"total_modules"`
	EstimatedSlides int       `json:"estimated_slides"`
	Objectives      string    `json:"objectives"` // JSON-encoded array
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Module is one unit of a persisted outline.
type Module struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	OutlineID       string    `gorm:"index" json:"outline_id"`
	ModuleNum       int       `json:"module_num"`
	Title           string    `json:"title"`
	Duration        string    `json:"duration"`
	Objectives      string    `json:"objectives"` // JSON-encoded array
	Topics          string    `json:"topics"`     // JSON-encoded array
	KeyPoints       string    `json:"key_points"` // JSON-encoded array
	EstimatedSlides int       `json:"estimated_slides"`
	CreatedAt       time.Time `json:"created_at"`
}

// Slide is a persisted snapshot of one generated slide.
type Slide struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	CourseID    string    `gorm:"index" json:"course_id"`
	ModuleNum   int       `json:"module_num"`
	SlideNumber int       `json:"slide_number"`
	Title       string    `json:"title"`
	Content     string    `json:"content"` // JSON-encoded array of bullets
	Notes       string    `json:"notes"`
	SlideType   string    `json:"slide_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// Question is a persisted assessment question for one module.
type Question struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	CourseID      string    `gorm:"index" json:"course_id"`
	ModuleNum     int       `json:"module_num"`
	Type          string    `json:"type"`
	Question      string    `json:"question"`
	Options       string    `json:"options"` // JSON-encoded array
	CorrectAnswer string    `json:"correct_answer"`
	Explanation   string    `json:"explanation"`
	GradingPoints string    `json:"grading_points"` // JSON-encoded array
	SampleAnswer  string    `json:"sample_answer"`
	CreatedAt     time.Time `json:"created_at"`
}

// AutoMigrate runs all migrations
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Course{},
		&Topic{},
		&Outline{},
		&Module{},
		&Slide{},
		&Question{},
	)
}
