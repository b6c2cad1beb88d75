package main

import (
	"fmt"
	"log"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/AH100-1/book-project/internal/cache"
	"github.com/AH100-1/book-project/internal/catalog"
	"github.com/AH100-1/book-project/internal/config"
	"github.com/AH100-1/book-project/internal/engine"
	"github.com/AH100-1/book-project/internal/excel"
	"github.com/AH100-1/book-project/internal/handlers"
	"github.com/AH100-1/book-project/internal/jobs"
	"github.com/AH100-1/book-project/internal/resolver"
	"github.com/AH100-1/book-project/internal/version"
)

func main() {
	settings := config.Load()
	if err := settings.Validate(); err != nil {
		log.Printf("warning: %v (ISBN resolution will fail)", err)
	}

	for _, dir := range []string{settings.UploadDir, settings.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("create %s: %v", dir, err)
		}
	}

	resultCache := cache.New()
	store := jobs.NewStore()

	res := resolver.NewClient(resolver.Options{
		APIKey:    settings.ResolverAPIKey,
		Timeout:   settings.RequestTimeout,
		Threshold: settings.SimilarityThreshold,
	})
	cat := catalog.NewClient(catalog.Options{
		Timeout:       settings.RequestTimeout,
		PageDelay:     settings.PageDelay,
		MaxPartitions: settings.MaxPartitions,
	})

	eng := engine.New(res, cat, resultCache, store, excel.NewResultWriter(settings.OutputDir), engine.Options{
		RecordDelay: settings.RecordDelay,
	})
	runner := engine.NewRunner(eng, store)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	uploadHandler := handlers.NewUploadHandler(settings.UploadDir)
	verifyHandler := handlers.NewVerifyHandler(runner, settings.UploadDir, settings.RegionName, settings.SchoolLevel)
	jobHandler := handlers.NewJobHandler(store)
	searchHandler := handlers.NewSearchHandler(res, cat)
	metaHandler := handlers.NewMetaHandler(settings, resultCache)
	downloadHandler := handlers.NewDownloadHandler(settings.OutputDir)

	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"service": "library-book-verifier",
			"version": version.Version,
		})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "ok",
			"version": version.Version,
		})
	})

	e.GET("/api/regions", metaHandler.Regions)
	e.GET("/api/school-levels", metaHandler.SchoolLevels)
	e.GET("/api/settings", metaHandler.Settings)
	e.GET("/api/cache/stats", metaHandler.CacheStats)

	e.POST("/api/upload", uploadHandler.Upload)
	e.POST("/api/verify/:fileID", verifyHandler.Verify)

	e.GET("/api/jobs", jobHandler.List)
	e.GET("/api/jobs/:id", jobHandler.Get)
	e.DELETE("/api/jobs/:id", jobHandler.Delete)

	e.POST("/api/search/resolve", searchHandler.Resolve)
	e.POST("/api/search/isbn", searchHandler.ISBN)
	e.POST("/api/search/book", searchHandler.Book)

	e.GET("/api/download/:filename", downloadHandler.Download)

	log.Printf("Starting book verifier v%s on port %s", version.Version, settings.Port)
	if err := e.Start(fmt.Sprintf(":%s", settings.Port)); err != nil {
		log.Fatal(err)
	}
}
