package server

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kutoven/wbreviews/internal/artifacts"
	"github.com/kutoven/wbreviews/pkg/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const usage = `Wildberries Reviews Scraper API

Endpoints:
- GET /scrape?url=<product_url> - Scrape reviews from product page
- GET /status - Check scraping status and list generated files`

const exampleScrapeURL = "/scrape?url=https://www.wildberries.ru/catalog/521896959/feedbacks?imtId=234818091"

// Dispatcher starts scrape jobs without waiting for them.
type Dispatcher interface {
	Dispatch(url string) (models.ScrapeJob, error)
}

// ArtifactLister lists generated CSV files, newest first.
type ArtifactLister interface {
	List() ([]models.Artifact, error)
}

// Server exposes the job API over HTTP.
type Server struct {
	jobs      Dispatcher
	artifacts ArtifactLister
	outputDir string
	logger    zerolog.Logger
}

// New creates a Server. outputDir is only echoed back to clients.
func New(jobs Dispatcher, lister ArtifactLister, outputDir string, logger zerolog.Logger) *Server {
	return &Server{
		jobs:      jobs,
		artifacts: lister,
		outputDir: outputDir,
		logger:    logger,
	}
}

// Router builds the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.logger))
	r.Use(prometheusMiddleware())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowMethods = []string{"GET", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/", s.handleIndex)
	r.GET("/scrape", s.handleScrape)
	r.GET("/status", s.handleStatus)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "wbreviews"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func (s *Server) handleIndex(c *gin.Context) {
	c.String(http.StatusOK, usage)
}

func (s *Server) handleScrape(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing 'url' parameter",
			"example": exampleScrapeURL,
		})
		return
	}

	job, err := s.jobs.Dispatch(url)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to start scraping: " + err.Error(),
			"example": exampleScrapeURL,
		})
		return
	}

	s.logger.Info().Int64("job_id", job.ID).Str("url", url).Msg("Scrape job accepted")

	c.JSON(http.StatusAccepted, gin.H{
		"status":      "Scraping started",
		"job_id":      job.ID,
		"url":         job.URL,
		"output_file": job.OutputPath,
		"message":     "Check /status endpoint for progress",
	})
}

type fileInfo struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	CreatedAt int64  `json:"created_at"`
}

func (s *Server) handleStatus(c *gin.Context) {
	files, err := s.artifacts.List()
	if err != nil {
		if errors.Is(err, artifacts.ErrNoOutputDir) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Output directory does not exist"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read status: " + err.Error()})
		return
	}

	if len(files) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"status":           "No CSV files found",
			"output_directory": s.outputDir,
			"message":          "Use /scrape?url=<product_url> to start scraping",
		})
		return
	}

	all := make([]fileInfo, 0, len(files))
	for _, f := range files {
		all = append(all, fileInfo{
			Name:      f.Name,
			SizeBytes: f.SizeBytes,
			CreatedAt: f.ModTime.UnixMilli(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            "OK",
		"total_files":       len(files),
		"latest_file":       files[0].Name,
		"latest_size_bytes": files[0].SizeBytes,
		"all_files":         all,
	})
}
