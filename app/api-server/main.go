package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/chainfolio/chainfolio/config"
	"github.com/chainfolio/chainfolio/internal/api/handlers"
	"github.com/chainfolio/chainfolio/internal/api/middleware"
	"github.com/chainfolio/chainfolio/internal/api/routes"
	"github.com/chainfolio/chainfolio/internal/cache"
	"github.com/chainfolio/chainfolio/internal/logger"
	"github.com/chainfolio/chainfolio/internal/models"
	"github.com/chainfolio/chainfolio/internal/providers/verifier"
	mongorepo "github.com/chainfolio/chainfolio/internal/repositories/mongo"
	pgrepo "github.com/chainfolio/chainfolio/internal/repositories/postgres"
	"github.com/chainfolio/chainfolio/internal/services"
	"github.com/chainfolio/chainfolio/internal/workers"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	// Init MongoDB (resume documents)
	if err := config.InitMongo(); err != nil {
		log.WithError(err).Fatal("MongoDB init failed")
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.WithError(err).Fatal("MongoDB index bootstrap failed")
	}
	log.Info("MongoDB connected")

	// Init PostgreSQL (verification audit trail)
	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Fatal("PostgreSQL init failed")
	}
	if err := config.PostgresDB.AutoMigrate(&models.VerificationAudit{}); err != nil {
		log.WithError(err).Fatal("PostgreSQL migration failed")
	}
	log.Info("PostgreSQL connected")

	// Init Redis (cache + verification queue)
	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("Redis init failed")
	}
	log.Info("Redis connected")

	db := config.MongoClient.Database(config.MongoDBName())

	resumeRepo := mongorepo.NewResumeRepo(db)
	auditRepo := pgrepo.NewAuditRepo(config.PostgresDB)
	redisCache := cache.NewRedisCache(config.RedisClient)

	resumeSvc := services.NewResumeService(resumeRepo, redisCache)
	verificationSvc := services.NewVerificationService(resumeRepo, auditRepo, config.RedisClient)

	pool := &workers.VerificationWorkerPool{
		Redis:         config.RedisClient,
		Verifications: verificationSvc,
		Resumes:       resumeSvc,
		Provider:      verifier.NewSimulated(),
		Logger:        log,
	}
	if err := pool.Start(context.Background()); err != nil {
		log.WithError(err).Fatal("verification worker pool failed to start")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Resume:       handlers.NewResumeHandler(resumeSvc),
		Verification: handlers.NewVerificationHandler(verificationSvc),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
