package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/yourusername/score-api/internal/config"
	"github.com/yourusername/score-api/internal/domain/entity"
	pgRepo "github.com/yourusername/score-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/score-api/internal/repository/redis"
	"github.com/yourusername/score-api/internal/service"
	"github.com/yourusername/score-api/pkg/database"
)

// Полный пересчет взвешенных агрегатов и рейтинговых индексов. Запускается
// после массового пересчета pp или восстановления из бэкапа.
func main() {
	userID := flag.Uint("user", 0, "пересчитать только одного игрока (0 — всех)")
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	userRepo := pgRepo.NewUserRepo(db)
	scoreRepo := pgRepo.NewScoreRepo(db)
	statsRepo := pgRepo.NewStatsRepo(db)

	rankRepo, err := redisRepo.NewRankIndexRepo(redisClient)
	if err != nil {
		log.Fatalf("Failed to initialize RankIndexRepo: %v", err)
	}

	statsService := service.NewStatsService(scoreRepo, statsRepo, rankRepo)

	var ids []uint
	if *userID != 0 {
		ids = []uint{*userID}
	} else {
		ids, err = userRepo.AllIDs()
		if err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
	}

	fmt.Printf("Пересчет агрегатов для %d игроков...\n", len(ids))

	ctx := context.Background()
	failed := 0
	for _, id := range ids {
		user, err := userRepo.GetByID(id)
		if err != nil {
			log.Printf("Игрок %d не найден: %v", id, err)
			failed++
			continue
		}

		for mode := entity.ModeStd; mode <= entity.ModeMania; mode++ {
			for variant := entity.VariantVanilla; variant <= entity.VariantAutopilot; variant++ {
				if _, err := statsService.FullRecalc(ctx, user, mode, variant); err != nil {
					log.Printf("Пересчет игрока %d (%d/%d) не удался: %v", id, mode, variant, err)
					failed++
				}
			}
		}
	}

	if failed > 0 {
		fmt.Printf("Готово с ошибками: %d сбоев.\n", failed)
		os.Exit(1)
	}
	fmt.Println("Готово. Все агрегаты и индексы пересчитаны.")
}
