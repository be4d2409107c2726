package models

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// NotAvailable is written in place of any review field whose source element is missing.
const NotAvailable = "N/A"

// CSVHeader is the fixed header row of every output artifact.
var CSVHeader = []string{"Date", "Author", "Text", "Rating", "Photos", "Video", "Tags"}

// Review is one customer review as rendered on the product feedback page.
//
// Reviews are values: they are built once by the extractor through NewReview
// and never modified afterwards.
type Review struct {
	Date        string `json:"date"`
	Author      string `json:"author"`
	Text        string `json:"text"`
	Rating      string `json:"rating"`
	PhotosCount int    `json:"photos_count"`
	HasVideo    bool   `json:"has_video"`
	Tags        string `json:"tags"`
}

// NewReview builds a Review, replacing every blank text field with NotAvailable.
func NewReview(date, author, text, rating string, photos int, hasVideo bool, tags string) Review {
	if photos < 0 {
		photos = 0
	}
	return Review{
		Date:        orNotAvailable(date),
		Author:      orNotAvailable(author),
		Text:        orNotAvailable(text),
		Rating:      orNotAvailable(rating),
		PhotosCount: photos,
		HasVideo:    hasVideo,
		Tags:        orNotAvailable(tags),
	}
}

// Record returns the review as a CSV row in CSVHeader order.
func (r Review) Record() []string {
	video := "No"
	if r.HasVideo {
		video = "Yes"
	}
	return []string{
		r.Date,
		r.Author,
		r.Text,
		r.Rating,
		strconv.Itoa(r.PhotosCount),
		video,
		r.Tags,
	}
}

func orNotAvailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

// ScrapeJob is one scrape of one product page into one CSV artifact.
// Jobs are not persisted; the artifact on disk is the only trace they leave.
type ScrapeJob struct {
	ID         int64     `json:"id"`
	URL        string    `json:"url"`
	OutputPath string    `json:"output_file"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewScrapeJob creates a job whose id is the creation timestamp in milliseconds.
func NewScrapeJob(url, outputDir string, now time.Time) ScrapeJob {
	id := now.UnixMilli()
	return ScrapeJob{
		ID:         id,
		URL:        url,
		OutputPath: filepath.Join(outputDir, fmt.Sprintf("reviews_%d.csv", id)),
		CreatedAt:  now,
	}
}

// Artifact describes a generated CSV file in the output directory.
type Artifact struct {
	Name      string    `json:"name"`
	Path      string    `json:"-"`
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"-"`
}

// JobResult summarizes a finished job.
type JobResult struct {
	Job       ScrapeJob     `json:"job"`
	Reviews   int           `json:"reviews"`
	Rendered  int           `json:"rendered"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration"`
	Error     error         `json:"-"`
	Succeeded bool          `json:"succeeded"`
}
