package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"uploadkit/internal/config"
	"uploadkit/internal/database"
	"uploadkit/internal/domain/upload"
	"uploadkit/internal/middleware"
	"uploadkit/internal/pkg/fileupload"
	jwtsvc "uploadkit/internal/pkg/jwt"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env: %v", err)
	}

	cfg, err := config.LoadUploadRuntimeConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrate(&upload.Upload{}); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	for _, dir := range []string{cfg.UploadDir, cfg.TmpDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	uploadService := upload.NewService(upload.NewRepository(db), cfg.UploadDir, cfg.StaticBase)
	uploadHandler := upload.NewHandler(uploadService)
	receiver := &fileupload.Receiver{
		TempDir:           cfg.TmpDir,
		MaxFileSize:       cfg.MaxFileSize,
		BlockedExtensions: cfg.BlockedExtensions,
		Fields:            []string{upload.FileField},
	}

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxMemory
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorLogger())

	r.Static(cfg.StaticBase, cfg.UploadDir)

	v1 := r.Group("/api/v1")
	{
		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		upload.RegisterRoutes(protected, uploadHandler, middleware.Uploads(receiver, cfg.MaxMemory, cfg.MaxBodySize()))
	}

	log.Printf("listening on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
