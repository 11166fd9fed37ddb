package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	ChatTurnsTotal              metric.Int64Counter
	HintPipelineDurationSeconds metric.Float64Histogram
	EntitiesExtractedTotal      metric.Int64Counter
	LLMFallbacksTotal           metric.Int64Counter
	DbQueryDurationSeconds      metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments once, using the
// meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("Pathavana")
		var err error
		m := &AppMetrics{}

		m.ChatTurnsTotal, err = meter.Int64Counter(
			"chat_turns_total",
			metric.WithDescription("Total number of chat turns processed"),
			metric.WithUnit("{turn}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create chat_turns_total: %v", err)
		}

		m.HintPipelineDurationSeconds, err = meter.Float64Histogram(
			"hint_pipeline_duration_seconds",
			metric.WithDescription("Duration of one hint pipeline pass plus reply generation in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create hint_pipeline_duration_seconds: %v", err)
		}

		m.EntitiesExtractedTotal, err = meter.Int64Counter(
			"entities_extracted_total",
			metric.WithDescription("Total number of entities extracted from chat turns"),
			metric.WithUnit("{entity}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create entities_extracted_total: %v", err)
		}

		m.LLMFallbacksTotal, err = meter.Int64Counter(
			"llm_fallbacks_total",
			metric.WithDescription("Total number of chat turns answered by template fallback after an LLM failure"),
			metric.WithUnit("{turn}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create llm_fallbacks_total: %v", err)
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
