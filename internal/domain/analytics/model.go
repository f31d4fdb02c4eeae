package analytics

import "time"

// Timeframes accepted by Report. Anything else falls back to DefaultTimeframe.
var windows = map[string]time.Duration{
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
	"1y":  365 * 24 * time.Hour,
}

// DefaultTimeframe applies to unknown or missing values.
const DefaultTimeframe = "7d"

const topPerformingLimit = 5

// Report aggregates a user's transformations over a window.
type Report struct {
	TotalTransformations         int                 `json:"total_transformations"`
	Timeframe                    string              `json:"timeframe"`
	DateRange                    DateRange           `json:"date_range"`
	ContentTypeBreakdown         map[string]int      `json:"content_type_breakdown"`
	TargetAudienceBreakdown      map[string]int      `json:"target_audience_breakdown"`
	AvgProcessingTimeMs          int64               `json:"avg_processing_time_ms"`
	AvgQualityScore              float64             `json:"avg_quality_score"`
	AvgLengthChangePercent       float64             `json:"avg_length_change_percent"`
	FeedbackBreakdown            map[string]int      `json:"feedback_breakdown"`
	DailyVolume                  map[string]int      `json:"daily_volume"`
	TopPerformingTransformations []TopTransformation `json:"top_performing_transformations"`
	PerformanceMetrics           PerformanceMetrics  `json:"performance_metrics"`
}

// DateRange bounds the report window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TopTransformation is a highly rated row.
type TopTransformation struct {
	ID             string    `json:"id"`
	ContentType    string    `json:"content_type"`
	TargetAudience string    `json:"target_audience"`
	QualityScore   float64   `json:"quality_score"`
	UserFeedback   int       `json:"user_feedback"`
	CreatedAt      time.Time `json:"created_at"`
}

// PerformanceMetrics sums content sizes.
type PerformanceMetrics struct {
	TotalOriginalChars    int `json:"total_original_chars"`
	TotalTransformedChars int `json:"total_transformed_chars"`
	AvgOriginalLength     int `json:"avg_original_length"`
	AvgTransformedLength  int `json:"avg_transformed_length"`
}
