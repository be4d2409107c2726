package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/kutoven/wbreviews/pkg/models"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) string {
	t.Helper()
	return readFixture(t, "feedbacks.html")
}

func readFixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(b)
}

func TestParseReviews(t *testing.T) {
	reviews, skipped := ParseReviews(context.Background(), loadFixture(t))
	require.Zero(t, skipped)
	require.Len(t, reviews, 4)

	first := reviews[0]
	require.Equal(t, "12 октября, 14:05", first.Date)
	require.Equal(t, "Анна", first.Author)
	require.Equal(t, "Отличные кроссовки. Сели по размеру, \"как влитые\".", first.Text)
	require.Equal(t, "5", first.Rating)
	require.Equal(t, 2, first.PhotosCount)
	require.True(t, first.HasVideo)
	require.Equal(t, "Цвет: черный; Размер: 42", first.Tags)
}

func TestParseReviewsMissingText(t *testing.T) {
	reviews, _ := ParseReviews(context.Background(), loadFixture(t))

	second := reviews[1]
	require.Equal(t, models.NotAvailable, second.Text)
	require.Equal(t, "Игорь", second.Author)
	require.Equal(t, "Вчера, 09:12", second.Date)
	require.Equal(t, "3", second.Rating)
	require.Equal(t, models.NotAvailable, second.Tags)
	require.Zero(t, second.PhotosCount)
	require.False(t, second.HasVideo)
}

func TestParseReviewsMissingRating(t *testing.T) {
	reviews, _ := ParseReviews(context.Background(), loadFixture(t))

	third := reviews[2]
	require.Equal(t, models.NotAvailable, third.Rating)
	require.Equal(t, "Мария", third.Author)
	require.Equal(t, "Без оценки", third.Text)

	fourth := reviews[3]
	require.Equal(t, models.NotAvailable, fourth.Rating)
	require.Equal(t, models.NotAvailable, fourth.Author)
}

func TestParseReviewsRenderedText(t *testing.T) {
	reviews, skipped := ParseReviews(context.Background(), readFixture(t, "rendering.html"))
	require.Zero(t, skipped)
	require.Len(t, reviews, 3)

	first := reviews[0]
	require.Equal(t, "Анна", first.Author)
	require.Equal(t, "Первая строка\nВторая строка", first.Text)
	require.Equal(t, "Цвет: черный", first.Tags)

	second := reviews[1]
	require.Equal(t, "Олег", second.Author)
	require.Equal(t, "4 октября, 10:00", second.Date)
	require.Equal(t, "Достоинства: лёгкие\nНедостатки: нет", second.Text)
	require.Equal(t, "Размер: 42", second.Tags)

	third := reviews[2]
	require.Equal(t, models.NotAvailable, third.Author)
	require.Equal(t, models.NotAvailable, third.Text)
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  a   b  ", "a b"},
		{"\n\nline one\n   \nline  two\n", "line one\nline two"},
		{"   ", ""},
		{"цена\u00a0100", "цена\u00a0100"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, normalizeText(tt.in), "%q", tt.in)
	}
}

func TestParseReviewsSkipsMalformedContainer(t *testing.T) {
	orig := containerParser
	t.Cleanup(func() { containerParser = orig })
	containerParser = func(s *goquery.Selection) (models.Review, error) {
		if strings.Contains(s.Text(), "Игорь") {
			return models.Review{}, NewEngineError(ErrCodeElementExtraction, "broken container", errors.New("unexpected layout"))
		}
		return orig(s)
	}

	reviews, skipped := ParseReviews(context.Background(), loadFixture(t))
	require.Equal(t, 1, skipped)
	require.Len(t, reviews, 3)
	require.Equal(t, "Анна", reviews[0].Author)
	require.Equal(t, "Мария", reviews[1].Author)
	require.Equal(t, "2 сентября", reviews[2].Date)
}

func TestParseReviewsFieldsNeverEmpty(t *testing.T) {
	reviews, _ := ParseReviews(context.Background(), loadFixture(t))
	for i, r := range reviews {
		for _, cell := range r.Record() {
			require.NotEmpty(t, cell, "review %d has an empty cell", i)
		}
	}
}

func TestParseReviewsEmptyPage(t *testing.T) {
	reviews, skipped := ParseReviews(context.Background(), "<html><body>Отзывов пока нет</body></html>")
	require.Empty(t, reviews)
	require.Zero(t, skipped)
}

func TestParseContainerRejectsNonElement(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div class="feedback__text">plain</div>`))
	require.NoError(t, err)

	text := doc.Find(".feedback__text").Contents().First()
	_, err = parseContainer(text)
	require.ErrorIs(t, err, ErrElementExtraction)
}

func TestRatingFromClass(t *testing.T) {
	tests := []struct {
		class string
		want  string
	}{
		{"feedback__rating stars-line star1", "1"},
		{"feedback__rating stars-line star2", "2"},
		{"feedback__rating stars-line star3", "3"},
		{"feedback__rating stars-line star4", "4"},
		{"feedback__rating stars-line star5", "5"},
		{"feedback__rating stars-line", models.NotAvailable},
		{"star0", models.NotAvailable},
		{"", models.NotAvailable},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, RatingFromClass(tt.class), tt.class)
	}
}

func TestExtractReadsPageSnapshot(t *testing.T) {
	page := &fakePage{html: loadFixture(t)}
	reviews, skipped, err := Extract(context.Background(), page)
	require.NoError(t, err)
	require.Zero(t, skipped)
	require.Len(t, reviews, 4)
}
