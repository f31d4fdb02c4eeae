package analytics

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/beforest/brandvoice/internal/domain/transform"
	apperrors "github.com/beforest/brandvoice/pkg/errors"
	"github.com/beforest/brandvoice/pkg/util"
)

// Service builds dashboard aggregates.
type Service interface {
	Report(ctx context.Context, userID int64, timeframe string) (Report, error)
}

// Source loads the rows a report is computed from.
type Source interface {
	ListSince(ctx context.Context, userID int64, since time.Time) ([]transform.Transformation, error)
}

type service struct {
	source Source
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the analytics domain.
func NewService(source Source, logger *slog.Logger) Service {
	return &service{source: source, logger: logger.With("component", "analytics.service"), now: util.NowUTC}
}

func (s *service) Report(ctx context.Context, userID int64, timeframe string) (Report, error) {
	timeframe = strings.TrimSpace(timeframe)
	window, ok := windows[timeframe]
	if !ok {
		timeframe = DefaultTimeframe
		window = windows[DefaultTimeframe]
	}
	end := s.now()
	start := end.Add(-window)

	rows, err := s.source.ListSince(ctx, userID, start)
	if err != nil {
		return Report{}, apperrors.Wrap("storage_error", "failed to load analytics", err)
	}
	report := aggregate(rows)
	report.Timeframe = timeframe
	report.DateRange = DateRange{Start: start, End: end}
	s.logger.Debug("analytics computed", "user_id", userID, "timeframe", timeframe, "rows", len(rows))
	return report, nil
}

func aggregate(rows []transform.Transformation) Report {
	report := Report{
		TotalTransformations:         len(rows),
		ContentTypeBreakdown:         map[string]int{},
		TargetAudienceBreakdown:      map[string]int{},
		FeedbackBreakdown:            map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0},
		DailyVolume:                  map[string]int{},
		TopPerformingTransformations: []TopTransformation{},
	}
	if len(rows) == 0 {
		return report
	}

	var (
		totalProcessing int64
		qualitySum      float64
		qualityCount    int
		changeSum       float64
		top             []TopTransformation
	)
	for _, row := range rows {
		report.ContentTypeBreakdown[row.ContentType]++
		report.TargetAudienceBreakdown[row.TargetAudience]++
		report.DailyVolume[row.CreatedAt.UTC().Format("2006-01-02")]++
		totalProcessing += row.ProcessingTimeMs
		changeSum += row.LengthChangePercent
		report.PerformanceMetrics.TotalOriginalChars += row.OriginalLength
		report.PerformanceMetrics.TotalTransformedChars += row.TransformedLength

		if row.QualityScore != nil {
			qualitySum += *row.QualityScore
			qualityCount++
		}
		if row.UserFeedback != nil {
			report.FeedbackBreakdown[strconv.Itoa(*row.UserFeedback)]++
		}
		if row.QualityScore != nil && row.UserFeedback != nil {
			top = append(top, TopTransformation{
				ID:             row.ID,
				ContentType:    row.ContentType,
				TargetAudience: row.TargetAudience,
				QualityScore:   *row.QualityScore,
				UserFeedback:   *row.UserFeedback,
				CreatedAt:      row.CreatedAt,
			})
		}
	}

	n := float64(len(rows))
	report.AvgProcessingTimeMs = int64(math.Round(float64(totalProcessing) / n))
	report.AvgLengthChangePercent = util.Round2(changeSum / n)
	if qualityCount > 0 {
		report.AvgQualityScore = util.Round2(qualitySum / float64(qualityCount))
	}
	report.PerformanceMetrics.AvgOriginalLength = int(math.Round(float64(report.PerformanceMetrics.TotalOriginalChars) / n))
	report.PerformanceMetrics.AvgTransformedLength = int(math.Round(float64(report.PerformanceMetrics.TotalTransformedChars) / n))

	sort.SliceStable(top, func(i, j int) bool {
		return top[i].QualityScore+float64(top[i].UserFeedback) > top[j].QualityScore+float64(top[j].UserFeedback)
	})
	if len(top) > topPerformingLimit {
		top = top[:topPerformingLimit]
	}
	if len(top) > 0 {
		report.TopPerformingTransformations = top
	}
	return report
}
