package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const questionContextChars = 5000

// AssessmentGenerator produces quiz questions per module, grounded in the
// source text, with a deterministic fallback when the model cannot be
// reached. The fallback never fails and never calls the model.
type AssessmentGenerator struct {
	ai    AIProvider
	retry retryPolicy
}

func NewAssessmentGenerator(ai AIProvider) *AssessmentGenerator {
	return &AssessmentGenerator{
		ai:    ai,
		retry: retryPolicy{attempts: 3, base: 4 * time.Second, cap: 30 * time.Second},
	}
}

// GenerateQuestions asks the model for 3 multiple-choice and 1 short-answer
// question for the module. Exhausted retries or any other failure degrade to
// the fallback generator rather than failing the caller.
func (g *AssessmentGenerator) GenerateQuestions(module ModuleOutline, sourceContent string) []AssessmentQuestion {
	contextChunk := truncateRunes(sourceContent, questionContextChars)

	objectives := module.Objectives
	if len(objectives) > 3 {
		objectives = objectives[:3]
	}
	keyPoints := module.KeyPoints
	if len(keyPoints) > 5 {
		keyPoints = keyPoints[:5]
	}

	prompt := fmt.Sprintf(`Generate assessment questions for this training module.

MODULE: %s
OBJECTIVES: %s
KEY POINTS: %s

SOURCE CONTENT:
%s

Generate 4 questions in JSON format:
{
  "questions": [
    {
      "type": "multiple_choice",
      "question": "Specific question based on content",
      "options": ["A. Option 1", "B. Option 2", "C. Option 3", "D. Option 4"],
      "correct_answer": "A",
      "explanation": "Why this is correct"
    },
    {
      "type": "multiple_choice",
      "question": "Another specific question",
      "options": ["A. ...", "B. ...", "C. ...", "D. ..."],
      "correct_answer": "B",
      "explanation": "Explanation"
    },
    {
      "type": "multiple_choice",
      "question": "Third question",
      "options": ["A. ...", "B. ...", "C. ...", "D. ..."],
      "correct_answer": "C",
      "explanation": "Explanation"
    },
    {
      "type": "short_answer",
      "question": "Open-ended question about key concept",
      "grading_points": ["Point 1", "Point 2", "Point 3"],
      "sample_answer": "Example good answer"
    }
  ]
}

Requirements:
- Use REAL content from source document
- Include specific data, numbers, or facts
- Make questions practical and relevant
- Ensure correct answers are accurate
- Return ONLY valid JSON`,
		module.Title, strings.Join(objectives, ", "), strings.Join(keyPoints, ", "), contextChunk)

	systemPrompt := "You are an expert assessment designer. Create specific, relevant questions based on source content. Return only valid JSON."

	var questions []AssessmentQuestion
	err := g.retry.run(func() error {
		response, err := g.ai.GenerateJSON(prompt, systemPrompt, 0.3, 2000)
		if err != nil {
			return err
		}

		var result struct {
			Questions []AssessmentQuestion `json:"questions"`
		}
		if err := DecodeModelJSON(response, &result); err != nil {
			return err
		}
		questions = result.Questions
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("module", module.Title).Msg("AI question generation failed, using fallback")
		return FallbackQuestions(module)
	}

	log.Info().Int("questions", len(questions)).Str("module", module.Title).Msg("Generated questions")
	return questions
}

// FallbackQuestions builds generic questions from the module's own
// objectives and key points: one multiple-choice question per objective (up
// to 3) and one short-answer question graded on the first key points.
func FallbackQuestions(module ModuleOutline) []AssessmentQuestion {
	var questions []AssessmentQuestion

	objectives := module.Objectives
	if len(objectives) > 3 {
		objectives = objectives[:3]
	}
	for _, objective := range objectives {
		questions = append(questions, AssessmentQuestion{
			Type:     "multiple_choice",
			Question: fmt.Sprintf("Which statement best describes: %s?", objective),
			Options: []string{
				"A. First interpretation",
				"B. Second interpretation",
				"C. Third interpretation",
				"D. Fourth interpretation",
			},
			CorrectAnswer: "A",
			Explanation:   fmt.Sprintf("Based on module objective: %s", objective),
		})
	}

	if len(module.KeyPoints) > 0 {
		points := module.KeyPoints
		if len(points) > 3 {
			points = points[:3]
		}
		questions = append(questions, AssessmentQuestion{
			Type:          "short_answer",
			Question:      fmt.Sprintf("Explain the key concepts covered in %s.", module.Title),
			GradingPoints: points,
			SampleAnswer:  fmt.Sprintf("A good answer should cover: %s", strings.Join(points, ", ")),
		})
	}

	return questions
}
