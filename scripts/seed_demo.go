// Seeds a published demo assessment for local development.
//
// Usage: go run scripts/seed_demo.go

package main

import (
	"encoding/json"
	"log"
	"talent_portal_backend/internal/config"
	"talent_portal_backend/internal/model"
	"talent_portal_backend/pkg/database"
	"talent_portal_backend/pkg/logger"
	"time"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	now := time.Now()
	assessment := &model.Assessment{
		Title:               "Backend Engineer Screening",
		Description:         "Timed multiple-choice screen for backend candidates.",
		TimeLimitSeconds:    60,
		RandomizeQuestions:  true,
		PreventBacktracking: true,
		IsPublished:         true,
		PublishedAt:         &now,
	}
	if err := db.Create(assessment).Error; err != nil {
		log.Fatalf("Failed to create assessment: %v", err)
	}

	sections := []struct {
		title     string
		questions []struct {
			text    string
			options []string
			correct int
		}
	}{
		{
			title: "General Aptitude",
			questions: []struct {
				text    string
				options []string
				correct int
			}{
				{"Which data structure gives O(1) average lookup by key?", []string{"Linked list", "Hash table", "Binary heap"}, 1},
				{"What does idempotent mean for an HTTP method?", []string{"It is cacheable", "Repeating it has the same effect as doing it once", "It requires authentication"}, 1},
			},
		},
		{
			title: "Role Knowledge",
			questions: []struct {
				text    string
				options []string
				correct int
			}{
				{"Which isolation level prevents dirty reads at the lowest cost?", []string{"Read uncommitted", "Read committed", "Serializable"}, 1},
				{"A message broker decouples services primarily by…", []string{"Sharing a database", "Asynchronous delivery", "Load balancing"}, 1},
			},
		},
	}

	for i, sec := range sections {
		section := &model.AssessmentSection{
			AssessmentID: assessment.ID,
			Title:        sec.title,
			Order:        i,
		}
		if err := db.Create(section).Error; err != nil {
			log.Fatalf("Failed to create section: %v", err)
		}
		for j, q := range sec.questions {
			options, _ := json.Marshal(q.options)
			question := &model.AssessmentQuestion{
				SectionID:          section.ID,
				Text:               q.text,
				Options:            options,
				CorrectAnswerIndex: q.correct,
				Order:              j,
			}
			if err := db.Create(question).Error; err != nil {
				log.Fatalf("Failed to create question: %v", err)
			}
		}
	}

	log.Printf("Seeded demo assessment %d with %d sections", assessment.ID, len(sections))
}
