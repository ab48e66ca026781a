package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/local/traingen/api/config"
	"github.com/local/traingen/api/models"
	"github.com/local/traingen/api/services"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Handler is the upstream caller of the generation pipeline: it validates
// uploads and credentials, persists each stage's snapshot, feeds snapshots
// to the next stage, and tracks the 4-phase completion flags.
type Handler struct {
	db        *gorm.DB
	cfg       *config.Config
	ai        services.AIProvider
	extractor *services.Extractor
}

func New(db *gorm.DB, cfg *config.Config) *Handler {
	var ai services.AIProvider
	if cfg.ModelProvider == "openai" {
		ai = services.NewAIProvider("openai", cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		ai = services.NewAIProvider("anthropic", cfg.AnthropicAPIKey, cfg.AnthropicModel)
	}

	return &Handler{
		db:        db,
		cfg:       cfg,
		ai:        ai,
		extractor: services.NewExtractor(cfg.TempDir),
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"model_provider": h.cfg.ModelProvider,
	})
}

// requireAPIKey checks the configured credential format before any stage
// that calls the model service.
func (h *Handler) requireAPIKey(c *gin.Context) bool {
	if !services.ValidateAPIKey(h.cfg.APIKey()) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or malformed API key"})
		return false
	}
	return true
}

func supportedExtension(filename string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	for _, supported := range services.SupportedFormats {
		if ext == supported {
			return ext, true
		}
	}
	return ext, false
}

type UploadResponse struct {
	CourseID           string `json:"course_id"`
	Filename           string `json:"filename"`
	Format             string `json:"format"`
	WordCount          int    `json:"word_count"`
	PageCount          int    `json:"page_count"`
	ReadingTimeMinutes int    `json:"reading_time_minutes"`
	RecommendedModules int    `json:"recommended_modules"`
	Message            string `json:"message"`
}

func (h *Handler) UploadDocument(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	ext, ok := supportedExtension(file.Filename)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unsupported format: %s", ext)})
		return
	}

	if file.Size > h.cfg.MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File size exceeds 50MB limit"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}

	doc, err := h.extractor.ExtractUpload(content, file.Filename)
	if err != nil {
		log.Error().Err(err).Str("file", file.Filename).Msg("Failed to extract document")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("Failed to extract document: %v", err)})
		return
	}

	course := &models.Course{
		ID:         uuid.New().String(),
		SourceName: doc.Filename,
		SourceHash: services.FileHash(content),
		Format:     doc.Format,
		WordCount:  doc.WordCount,
		PageCount:  doc.PageCount,
		SourceText: doc.Text,
		UploadDone: true,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := h.db.Create(course).Error; err != nil {
		log.Error().Err(err).Msg("Failed to create course")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course"})
		return
	}

	c.JSON(http.StatusOK, UploadResponse{
		CourseID:           course.ID,
		Filename:           doc.Filename,
		Format:             doc.Format,
		WordCount:          doc.WordCount,
		PageCount:          doc.PageCount,
		ReadingTimeMinutes: services.ReadingTime(doc.WordCount),
		RecommendedModules: services.RecommendedModules(services.DurationToSlides["1 day"]),
		Message:            fmt.Sprintf("Processed %s: %d words across %d pages", doc.Filename, doc.WordCount, doc.PageCount),
	})
}

type ExtractTopicsRequest struct {
	CourseID  string `json:"course_id" binding:"required"`
	NumTopics int    `json:"num_topics"`
}

func (h *Handler) ExtractTopics(c *gin.Context) {
	var req ExtractTopicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.requireAPIKey(c) {
		return
	}
	if req.NumTopics <= 0 {
		req.NumTopics = 8
	}

	course, ok := h.loadCourse(c, req.CourseID)
	if !ok {
		return
	}

	analyzer := services.NewTopicAnalyzer(h.ai)
	topics, err := analyzer.ExtractTopics(course.SourceText, req.NumTopics)
	if err != nil {
		log.Error().Err(err).Msg("Topic extraction failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Topic extraction failed: %v", err)})
		return
	}

	h.db.Where("course_id = ?", course.ID).Delete(&models.Topic{})
	h.saveTopics(course.ID, topics)

	h.db.Model(course).Updates(map[string]interface{}{
		"analyze_done": true,
		"updated_at":   time.Now(),
	})

	c.JSON(http.StatusOK, gin.H{"course_id": course.ID, "topics": topics})
}

func (h *Handler) UpdateTopics(c *gin.Context) {
	courseID := c.Param("courseId")

	var topics []services.TopicInfo
	if err := c.ShouldBindJSON(&topics); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course, ok := h.loadCourse(c, courseID)
	if !ok {
		return
	}

	h.db.Where("course_id = ?", course.ID).Delete(&models.Topic{})
	h.saveTopics(course.ID, topics)

	h.db.Model(course).Updates(map[string]interface{}{
		"edit_done":  true,
		"updated_at": time.Now(),
	})

	c.JSON(http.StatusOK, gin.H{"course_id": course.ID, "topics": topics})
}

func (h *Handler) GetTopics(c *gin.Context) {
	courseID := c.Param("courseId")
	topics, err := h.loadTopics(courseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve topics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"course_id": courseID, "topics": topics})
}

type GenerateOutlineRequest struct {
	CourseID      string `json:"course_id" binding:"required"`
	TargetModules int    `json:"target_modules"`
	TargetSlides  int    `json:"target_slides"`
	Duration      string `json:"duration"`
	Template      string `json:"template"`
}

func (h *Handler) GenerateOutline(c *gin.Context) {
	var req GenerateOutlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.requireAPIKey(c) {
		return
	}

	if req.Duration == "" {
		req.Duration = "1 day"
	}
	if req.TargetSlides <= 0 {
		if slides, ok := services.DurationToSlides[req.Duration]; ok {
			req.TargetSlides = slides
		} else {
			req.TargetSlides = 50
		}
	}
	if req.TargetModules <= 0 {
		req.TargetModules = services.RecommendedModules(req.TargetSlides)
	}
	if req.Template == "" {
		req.Template = services.TemplateOptions[0]
	}

	course, ok := h.loadCourse(c, req.CourseID)
	if !ok {
		return
	}

	topics, err := h.loadTopics(course.ID)
	if err != nil || len(topics) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No topics found for this course; extract topics first"})
		return
	}

	generator := services.NewOutlineGenerator(h.ai)
	outline, err := generator.GenerateOutline(topics, req.TargetModules, req.TargetSlides, req.Duration, req.Template)
	if err != nil {
		log.Error().Err(err).Msg("Outline generation failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Outline generation failed: %v", err)})
		return
	}

	if err := h.saveOutline(course, outline); err != nil {
		log.Error().Err(err).Msg("Failed to save outline")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save outline"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"course_id": course.ID, "outline": outline})
}

func (h *Handler) UpdateOutline(c *gin.Context) {
	courseID := c.Param("courseId")

	var outline services.CourseOutline
	if err := c.ShouldBindJSON(&outline); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course, ok := h.loadCourse(c, courseID)
	if !ok {
		return
	}

	if err := h.saveOutline(course, &outline); err != nil {
		log.Error().Err(err).Msg("Failed to save outline")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save outline"})
		return
	}

	h.db.Model(course).Updates(map[string]interface{}{
		"edit_done":  true,
		"updated_at": time.Now(),
	})

	c.JSON(http.StatusOK, gin.H{"course_id": course.ID, "outline": outline})
}

func (h *Handler) GetOutline(c *gin.Context) {
	courseID := c.Param("courseId")
	outline, err := h.loadOutline(courseID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Outline not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"course_id": courseID, "outline": outline})
}

type GenerateSlidesRequest struct {
	CourseID string `json:"course_id" binding:"required"`
}

func (h *Handler) GenerateSlides(c *gin.Context) {
	var req GenerateSlidesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.requireAPIKey(c) {
		return
	}

	course, ok := h.loadCourse(c, req.CourseID)
	if !ok {
		return
	}

	outline, err := h.loadOutline(course.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Outline not found; generate an outline first"})
		return
	}

	generator := services.NewSlideGenerator(h.ai)
	if err := generator.SetSourceContent(course.SourceText); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	// Modules are generated serially; each module call is independent.
	var allSlides []services.SlideContent
	moduleOfSlide := make(map[int]int)

	for _, module := range outline.Modules {
		progress := func(status string, percent int) {
			log.Info().Str("module", module.Title).Str("status", status).Int("percent", percent).
				Msg("Slide generation progress")
		}

		slides, err := generator.GenerateSlidesForModule(module, progress)
		if err != nil {
			log.Error().Err(err).Str("module", module.Title).Msg("Slide generation failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Slide generation failed for module %q: %v", module.Title, err)})
			return
		}
		for range slides {
			moduleOfSlide[len(moduleOfSlide)] = module.ID
		}
		allSlides = append(allSlides, slides...)
	}

	services.NumberSlides(allSlides)

	h.db.Where("course_id = ?", course.ID).Delete(&models.Slide{})
	for i, slide := range allSlides {
		content, _ := json.Marshal(slide.Content)
		record := &models.Slide{
			ID:          uuid.New().String(),
			CourseID:    course.ID,
			ModuleNum:   moduleOfSlide[i],
			SlideNumber: slide.SlideNumber,
			Title:       slide.Title,
			Content:     string(content),
			Notes:       slide.Notes,
			SlideType:   slide.SlideType,
			CreatedAt:   time.Now(),
		}
		if err := h.db.Create(record).Error; err != nil {
			log.Warn().Err(err).Msg("Failed to save slide")
		}
	}

	h.db.Model(course).Updates(map[string]interface{}{
		"generate_done": true,
		"updated_at":    time.Now(),
	})

	c.JSON(http.StatusOK, gin.H{
		"course_id":   course.ID,
		"slide_count": len(allSlides),
		"slides":      allSlides,
	})
}

func (h *Handler) GetSlides(c *gin.Context) {
	courseID := c.Param("courseId")

	var records []models.Slide
	if err := h.db.Where("course_id = ?", courseID).Order("slide_number ASC").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve slides"})
		return
	}

	slides := make([]services.SlideContent, 0, len(records))
	for _, r := range records {
		slides = append(slides, slideFromModel(r))
	}

	c.JSON(http.StatusOK, gin.H{"course_id": courseID, "slides": slides})
}

type GenerateQuestionsRequest struct {
	CourseID string `json:"course_id" binding:"required"`
}

func (h *Handler) GenerateQuestions(c *gin.Context) {
	var req GenerateQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.requireAPIKey(c) {
		return
	}

	course, ok := h.loadCourse(c, req.CourseID)
	if !ok {
		return
	}

	outline, err := h.loadOutline(course.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Outline not found; generate an outline first"})
		return
	}

	generator := services.NewAssessmentGenerator(h.ai)

	h.db.Where("course_id = ?", course.ID).Delete(&models.Question{})
	questionsByModule := make(map[int][]services.AssessmentQuestion)

	for _, module := range outline.Modules {
		questions := generator.GenerateQuestions(module, course.SourceText)
		questionsByModule[module.ID] = questions

		for _, q := range questions {
			options, _ := json.Marshal(q.Options)
			points, _ := json.Marshal(q.GradingPoints)
			record := &models.Question{
				ID:            uuid.New().String(),
				CourseID:      course.ID,
				ModuleNum:     module.ID,
				Type:          q.Type,
				Question:      q.Question,
				Options:       string(options),
				CorrectAnswer: q.CorrectAnswer,
				Explanation:   q.Explanation,
				GradingPoints: string(points),
				SampleAnswer:  q.SampleAnswer,
				CreatedAt:     time.Now(),
			}
			if err := h.db.Create(record).Error; err != nil {
				log.Warn().Err(err).Msg("Failed to save question")
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"course_id": course.ID, "questions": questionsByModule})
}

func (h *Handler) GetQuestions(c *gin.Context) {
	courseID := c.Param("courseId")

	var records []models.Question
	if err := h.db.Where("course_id = ?", courseID).Order("module_num ASC").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve questions"})
		return
	}

	questionsByModule := make(map[int][]services.AssessmentQuestion)
	for _, r := range records {
		questionsByModule[r.ModuleNum] = append(questionsByModule[r.ModuleNum], questionFromModel(r))
	}

	c.JSON(http.StatusOK, gin.H{"course_id": courseID, "questions": questionsByModule})
}

func (h *Handler) GetCourse(c *gin.Context) {
	courseID := c.Param("courseId")

	var course models.Course
	if err := h.db.Where("id = ?", courseID).First(&course).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	c.JSON(http.StatusOK, course)
}

func (h *Handler) ExportCourse(c *gin.Context) {
	courseID := c.Param("courseId")

	course, ok := h.loadCourse(c, courseID)
	if !ok {
		return
	}

	outline, err := h.loadOutline(course.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Outline not found; generate an outline first"})
		return
	}

	var slideRecords []models.Slide
	if err := h.db.Where("course_id = ?", course.ID).Order("slide_number ASC").Find(&slideRecords).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve slides"})
		return
	}
	slides := make([]services.SlideContent, 0, len(slideRecords))
	for _, r := range slideRecords {
		slides = append(slides, slideFromModel(r))
	}

	var questionRecords []models.Question
	h.db.Where("course_id = ?", course.ID).Order("module_num ASC").Find(&questionRecords)
	questionsByModule := make(map[int][]services.AssessmentQuestion)
	for _, r := range questionRecords {
		questionsByModule[r.ModuleNum] = append(questionsByModule[r.ModuleNum], questionFromModel(r))
	}

	path, err := services.ExportBundle(outline, slides, questionsByModule, h.cfg.OutputDir, course.ID)
	if err != nil {
		log.Error().Err(err).Msg("Export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Export failed: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"course_id": course.ID, "package": path})
}

// ----- persistence helpers -----

func (h *Handler) loadCourse(c *gin.Context, courseID string) (*models.Course, bool) {
	var course models.Course
	if err := h.db.Where("id = ?", courseID).First(&course).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return nil, false
	}
	return &course, true
}

func (h *Handler) saveTopics(courseID string, topics []services.TopicInfo) {
	for _, topic := range topics {
		concepts, _ := json.Marshal(topic.KeyConcepts)
		record := &models.Topic{
			ID:              uuid.New().String(),
			CourseID:        courseID,
			TopicNum:        topic.ID,
			Title:           topic.Title,
			Description:     topic.Description,
			KeyConcepts:     string(concepts),
			Importance:      topic.Importance,
			DurationMinutes: topic.DurationMinutes,
			CreatedAt:       time.Now(),
		}
		if err := h.db.Create(record).Error; err != nil {
			log.Warn().Err(err).Int("topic", topic.ID).Msg("Failed to save topic")
		}
	}
}

func (h *Handler) loadTopics(courseID string) ([]services.TopicInfo, error) {
	var records []models.Topic
	if err := h.db.Where("course_id = ?", courseID).Order("topic_num ASC").Find(&records).Error; err != nil {
		return nil, err
	}

	topics := make([]services.TopicInfo, 0, len(records))
	for _, r := range records {
		var concepts []string
		json.Unmarshal([]byte(r.KeyConcepts), &concepts)
		topics = append(topics, services.TopicInfo{
			ID:              r.TopicNum,
			Title:           r.Title,
			Description:     r.Description,
			KeyConcepts:     concepts,
			Importance:      r.Importance,
			DurationMinutes: r.DurationMinutes,
		})
	}
	return topics, nil
}

func (h *Handler) saveOutline(course *models.Course, outline *services.CourseOutline) error {
	var existing models.Outline
	if err := h.db.Where("course_id = ?", course.ID).First(&existing).Error; err == nil {
		h.db.Where("outline_id = ?", existing.ID).Delete(&models.Module{})
		h.db.Delete(&existing)
	}

	objectives, _ := json.Marshal(outline.Objectives)
	record := &models.Outline{
		ID:              uuid.New().String(),
		CourseID:        course.ID,
		Title:           outline.Title,
		Description:     outline.Description,
		Duration:        outline.Duration,
		TotalModules:    outline.TotalModules,
		EstimatedSlides: outline.EstimatedSlides,
		Objectives:      string(objectives),
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := h.db.Create(record).Error; err != nil {
		return err
	}

	for _, module := range outline.Modules {
		moduleObjectives, _ := json.Marshal(module.Objectives)
		moduleTopics, _ := json.Marshal(module.Topics)
		keyPoints, _ := json.Marshal(module.KeyPoints)
		moduleRecord := &models.Module{
			ID:              uuid.New().String(),
			OutlineID:       record.ID,
			ModuleNum:       module.ID,
			Title:           module.Title,
			Duration:        module.Duration,
			Objectives:      string(moduleObjectives),
			Topics:          string(moduleTopics),
			KeyPoints:       string(keyPoints),
			EstimatedSlides: module.EstimatedSlides,
			CreatedAt:       time.Now(),
		}
		if err := h.db.Create(moduleRecord).Error; err != nil {
			return err
		}
	}

	return h.db.Model(course).Updates(map[string]interface{}{
		"title":       outline.Title,
		"description": outline.Description,
		"updated_at":  time.Now(),
	}).Error
}

func (h *Handler) loadOutline(courseID string) (*services.CourseOutline, error) {
	var record models.Outline
	if err := h.db.Where("course_id = ?", courseID).First(&record).Error; err != nil {
		return nil, err
	}

	var moduleRecords []models.Module
	if err := h.db.Where("outline_id = ?", record.ID).Order("module_num ASC").Find(&moduleRecords).Error; err != nil {
		return nil, err
	}

	var objectives []string
	json.Unmarshal([]byte(record.Objectives), &objectives)

	outline := &services.CourseOutline{
		Title:           record.Title,
		Description:     record.Description,
		Duration:        record.Duration,
		TotalModules:    record.TotalModules,
		EstimatedSlides: record.EstimatedSlides,
		Objectives:      objectives,
	}

	for _, m := range moduleRecords {
		var moduleObjectives, moduleTopics, keyPoints []string
		json.Unmarshal([]byte(m.Objectives), &moduleObjectives)
		json.Unmarshal([]byte(m.Topics), &moduleTopics)
		json.Unmarshal([]byte(m.KeyPoints), &keyPoints)
		outline.Modules = append(outline.Modules, services.ModuleOutline{
			ID:              m.ModuleNum,
			Title:           m.Title,
			Duration:        m.Duration,
			Objectives:      moduleObjectives,
			Topics:          moduleTopics,
			KeyPoints:       keyPoints,
			EstimatedSlides: m.EstimatedSlides,
		})
	}

	return outline, nil
}

func slideFromModel(r models.Slide) services.SlideContent {
	var content []string
	json.Unmarshal([]byte(r.Content), &content)
	return services.SlideContent{
		SlideNumber: r.SlideNumber,
		Title:       r.Title,
		Content:     content,
		Notes:       r.Notes,
		SlideType:   r.SlideType,
	}
}

func questionFromModel(r models.Question) services.AssessmentQuestion {
	var options, points []string
	json.Unmarshal([]byte(r.Options), &options)
	json.Unmarshal([]byte(r.GradingPoints), &points)
	return services.AssessmentQuestion{
		Type:          r.Type,
		Question:      r.Question,
		Options:       options,
		CorrectAnswer: r.CorrectAnswer,
		Explanation:   r.Explanation,
		GradingPoints: points,
		SampleAnswer:  r.SampleAnswer,
	}
}
