package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/score-api/internal/cache"
	"github.com/yourusername/score-api/internal/config"
	"github.com/yourusername/score-api/internal/domain/entity"
	"github.com/yourusername/score-api/internal/handler"
	"github.com/yourusername/score-api/internal/pkg/tasks"
	"github.com/yourusername/score-api/internal/pubsub"
	pgRepo "github.com/yourusername/score-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/score-api/internal/repository/redis"
	"github.com/yourusername/score-api/internal/service"
	"github.com/yourusername/score-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	scoreRepo := pgRepo.NewScoreRepo(db)
	beatmapRepo := pgRepo.NewBeatmapRepo(db)
	statsRepo := pgRepo.NewStatsRepo(db)
	achievementRepo := pgRepo.NewAchievementRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient, "score-api")
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}
	rankRepo, err := redisRepo.NewRankIndexRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize RankIndexRepo: %v", err)
		os.Exit(1)
	}
	submissionLock, err := redisRepo.NewSubmissionLock(cacheRepo)
	if err != nil {
		log.Printf("Failed to initialize SubmissionLock: %v", err)
		os.Exit(1)
	}

	// Внутрипроцессные кеши
	caches := cache.NewRegistry(cache.RegistryOptions{
		BoardCapacity:    cfg.Cache.BoardCapacity,
		PBCapacity:       cfg.Cache.PBCapacity,
		IdentityCapacity: cfg.Cache.IdentityCapacity,
		MaxAge:           cfg.Cache.CacheMaxAge(),
	})

	// Шина инвалидации: Redis Pub/Sub либо одиночный режим
	var provider pubsub.PubSubProvider = &pubsub.NoOpPubSub{}
	if cfg.PubSub.Enabled {
		redisProvider, errProv := pubsub.NewRedisPubSub(redisClient)
		if errProv != nil {
			log.Printf("Ошибка создания Redis PubSub провайдера: %v. Шина работает в одиночном режиме.", errProv)
		} else {
			log.Println("Redis PubSub провайдер успешно инициализирован")
			provider = redisProvider
		}
	}
	bus := pubsub.NewBus(provider)

	// Хранилище реплеев
	replayStore, err := service.NewFSReplayStore(cfg.Submission.ReplayDir)
	if err != nil {
		log.Printf("Failed to initialize replay store: %v", err)
		os.Exit(1)
	}

	// Клиент внешнего pp-калькулятора
	perfClient := service.NewHTTPPerformanceClient(
		cfg.Performance.URL,
		time.Duration(cfg.Performance.TimeoutMS)*time.Millisecond,
		cfg.Performance.Retries,
	)

	taskRunner := tasks.NewRunner()

	// Инициализируем сервисы
	authService := service.NewAuthService(userRepo, caches)
	statsService := service.NewStatsService(scoreRepo, statsRepo, rankRepo)
	leaderboardService := service.NewLeaderboardService(scoreRepo, beatmapRepo, caches, cacheRepo)
	achievementService := service.NewAchievementService(achievementRepo)
	replayService := service.NewReplayService(scoreRepo, userRepo, replayStore, caches)

	ppCap := func(mode entity.Mode, variant entity.Variant) float64 {
		switch variant {
		case entity.VariantRelax:
			return cfg.Submission.PPCapRelax
		case entity.VariantAutopilot:
			return cfg.Submission.PPCapAutopilot
		default:
			return cfg.Submission.PPCapVanilla
		}
	}

	submissionService := service.NewSubmissionService(
		userRepo, scoreRepo, beatmapRepo,
		authService, statsService, leaderboardService, achievementService,
		perfClient, replayStore, submissionLock,
		bus, taskRunner, caches, ppCap,
	)

	// Регистрируем обработчики инвалидации и запускаем шину
	invalidator := service.NewInvalidator(userRepo, statsService, leaderboardService, caches, cacheRepo)
	invalidator.Register(bus)
	if err := bus.Start(); err != nil {
		log.Printf("Failed to start invalidation bus: %v", err)
		os.Exit(1)
	}

	// Инициализируем обработчики
	scoreHandler := handler.NewScoreHandler(submissionService)
	leaderboardHandler := handler.NewLeaderboardHandler(authService, leaderboardService)
	replayHandler := handler.NewReplayHandler(replayService)

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// CORS нужен только сайту; игровой клиент его не использует
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}))

	// Контрактные маршруты игрового клиента
	web := router.Group("/web")
	{
		web.POST("/osu-submit-modular-selector.php", scoreHandler.Submit)
		web.GET("/osu-osz2-getscores.php", leaderboardHandler.GetScores)
		web.GET("/osu-getreplay.php", replayHandler.GetRaw)
	}

	// Маршруты сайта
	api := router.Group("/api")
	{
		api.GET("/replays/:id", replayHandler.GetFull)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Сначала дожидаемся фоновых задач: они еще могут публиковать события
	if !taskRunner.Shutdown(time.Duration(cfg.Server.ShutdownTimeout) * time.Second) {
		log.Println("Часть фоновых задач не завершилась, продолжаем остановку")
	}

	bus.Stop()
	if err := provider.Close(); err != nil {
		log.Printf("Error closing PubSub provider: %v", err)
	}

	log.Println("Server exited properly")
}
