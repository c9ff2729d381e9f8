package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/prepdeck/prepdeck-backend/internal/config"
	"github.com/prepdeck/prepdeck-backend/internal/database"
	"github.com/prepdeck/prepdeck-backend/internal/engine"
	"github.com/prepdeck/prepdeck-backend/internal/logger"
	"github.com/prepdeck/prepdeck-backend/internal/model"
	"github.com/prepdeck/prepdeck-backend/internal/repository"
)

func main() {
	var seedFile string
	flag.StringVar(&seedFile, "file", "seed/question_sets.json", "Path to question set seed file")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	raw, err := os.ReadFile(seedFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", seedFile).Msg("Failed to read seed file")
	}

	var sets []model.QuestionSetPayload
	if err := json.Unmarshal(raw, &sets); err != nil {
		log.Fatal().Err(err).Msg("Seed file is not a question set array")
	}

	repo := repository.NewQuestionSetRepository(pool)

	fmt.Printf("=== Seeding %d Question Sets ===\n", len(sets))

	seeded := 0
	for i := range sets {
		set := &sets[i]

		// Reject sets the session engine could not play.
		var questions []engine.Question
		if err := json.Unmarshal(set.Questions, &questions); err != nil {
			log.Error().Err(err).Str("set_id", set.SetID).Msg("Skipping set with undecodable questions")
			continue
		}
		if len(questions) == 0 {
			log.Error().Str("set_id", set.SetID).Msg("Skipping empty set")
			continue
		}
		set.QuestionCount = len(questions)

		if err := repo.Upsert(ctx, set); err != nil {
			log.Error().Err(err).Str("set_id", set.SetID).Msg("Upsert failed")
			continue
		}

		fmt.Printf("  seeded %s (%d questions)\n", set.SetID, len(questions))
		seeded++
	}

	fmt.Printf("Done: %d/%d sets seeded\n", seeded, len(sets))
}
