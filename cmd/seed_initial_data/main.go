package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"practice-engine/cmd/seed_initial_data/internal/seedmodels"
	"practice-engine/internal/config"
	"practice-engine/internal/database"
	"practice-engine/internal/domain"
	"practice-engine/internal/logger"
	"practice-engine/internal/repository"
	"practice-engine/internal/repository/models"
	"practice-engine/internal/util"

	"go.uber.org/zap"
)

const defaultSeedFilePath = "config/seed_data/initial_content.json"

func firstN(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}

func main() {
	seedFilePath := flag.String("file", defaultSeedFilePath, "path to the seed JSON file")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	log.Info("Starting content seeding process...")
	db, err := database.NewSQLXDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	byteValue, err := os.ReadFile(*seedFilePath)
	if err != nil {
		log.Fatal("Failed to read seed file", zap.String("path", *seedFilePath), zap.Error(err))
	}

	var subjects []seedmodels.SeedSubject
	if err := json.Unmarshal(byteValue, &subjects); err != nil {
		log.Fatal("Failed to unmarshal seed data", zap.Error(err))
	}
	log.Info("Loaded seed data", zap.Int("subjects", len(subjects)))

	txManager := repository.NewTransactionManagerAdapter(db)
	writer := repository.NewContentWriter(db)

	failed := 0
	for _, s := range subjects {
		err := txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			return seedSubject(txCtx, writer, log, s)
		})
		if err != nil {
			failed++
			log.Error("Error seeding subject, transaction rolled back", zap.String("subject", s.Name), zap.Error(err))
			continue
		}
		log.Info("Committed subject", zap.String("subject", s.Name))
	}
	if failed > 0 {
		log.Fatal("Content seeding finished with errors", zap.Int("failed_subjects", failed))
	}
	log.Info("Content seeding process completed.")
}

func seedSubject(ctx context.Context, w *repository.ContentWriter, log *zap.Logger, s seedmodels.SeedSubject) error {
	subjectID, created, err := w.EnsureSubject(ctx, s.Name)
	if err != nil {
		return err
	}
	log.Info("Processing subject", zap.String("id", subjectID), zap.String("name", s.Name), zap.Bool("created", created))

	for _, ch := range s.Chapters {
		chapterID, created, err := w.EnsureChapter(ctx, subjectID, ch.Name)
		if err != nil {
			return err
		}
		log.Info("Processing chapter", zap.String("id", chapterID), zap.String("name", ch.Name), zap.Bool("created", created))

		for _, tp := range ch.Topics {
			topicID, created, err := w.EnsureTopic(ctx, chapterID, tp.Name)
			if err != nil {
				return err
			}
			log.Info("Processing topic", zap.String("id", topicID), zap.String("name", tp.Name), zap.Bool("created", created))

			for _, sq := range tp.Questions {
				q, options := toQuestionRows(sq, subjectID, chapterID, topicID)
				if err := w.InsertQuestion(ctx, q, options); err != nil {
					return fmt.Errorf("question '%s': %w", firstN(sq.Text, 50), err)
				}
				log.Debug("Created question", zap.String("id", q.ID), zap.String("preview", firstN(sq.Text, 20)))
			}
		}
	}
	return nil
}

func toQuestionRows(sq seedmodels.SeedQuestion, subjectID, chapterID, topicID string) (*models.Question, []models.QuestionOption) {
	awarded := sq.MarksAwarded
	if awarded == 0 {
		awarded = 1
	}
	q := &models.Question{
		SubjectID:     util.StringToNullString(subjectID),
		ChapterID:     util.StringToNullString(chapterID),
		TopicID:       util.StringToNullString(topicID),
		QuestionText:  sq.Text,
		Difficulty:    util.StringToNullString(string(domain.ParseDifficulty(sq.Difficulty))),
		MarksAwarded:  sql.NullFloat64{Float64: awarded, Valid: true},
		MarksDeducted: sql.NullFloat64{Float64: sq.MarksDeducted, Valid: true},
		Explanation:   util.StringToNullString(sq.Explanation),
		Solution:      util.StringToNullString(sq.Solution),
		IsActive:      1,
	}
	options := make([]models.QuestionOption, 0, len(sq.Options))
	for i, o := range sq.Options {
		correct := 0
		if o.Correct {
			correct = 1
		}
		options = append(options, models.QuestionOption{
			OptionText:   o.Text,
			IsCorrect:    correct,
			DisplayOrder: i + 1,
		})
	}
	return q, options
}
