package models

// MetricsFields is the allow-list of provider fields forwarded for a ticker.
// Names are the provider's own; "52WeekChange" is kept literally.
var MetricsFields = []string{
	"symbol",
	"trailingEps",
	"forwardEps",
	"lastDividendValue",
	"lastDividendDate",
	"fiftyTwoWeekLow",
	"fiftyTwoWeekHigh",
	"52WeekChange",
	"currentPrice",
	"targetHighPrice",
	"targetLowPrice",
	"targetMeanPrice",
	"targetMedianPrice",
	"totalRevenue",
	"revenuePerShare",
	"dividendYield",
	"marketCap",
	"recommendationMean",
	"recommendationKey",
}

var metricsFieldSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(MetricsFields))
	for _, f := range MetricsFields {
		m[f] = struct{}{}
	}
	return m
}()

// MetricsRecord is a sparse projection of a provider payload onto MetricsFields.
// Missing fields are absent, never nil.
type MetricsRecord map[string]any

// ProjectMetrics copies the allow-listed, non-nil fields of raw into a new record.
func ProjectMetrics(raw map[string]any) MetricsRecord {
	rec := MetricsRecord{}
	for _, key := range MetricsFields {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		rec[key] = v
	}
	return rec
}

// IsMetricsField reports whether key is part of the allow-list.
func IsMetricsField(key string) bool {
	_, ok := metricsFieldSet[key]
	return ok
}

// Symbol returns the record's symbol field, or fallback when absent.
func (r MetricsRecord) Symbol(fallback string) string {
	if s, ok := r["symbol"].(string); ok && s != "" {
		return s
	}
	return fallback
}

func (r MetricsRecord) Empty() bool {
	return len(r) == 0
}
