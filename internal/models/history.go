package models

import (
	"encoding/json"
	"time"
)

// HistoryBar is one OHLCV bar. Field names match what the dashboard charts
// expect (Date, Close, ...). Dividends and StockSplits are zero on days
// without a corporate action; a split is the numerator/denominator ratio.
type HistoryBar struct {
	Date        time.Time `json:"Date"`
	Open        float64   `json:"Open"`
	High        float64   `json:"High"`
	Low         float64   `json:"Low"`
	Close       float64   `json:"Close"`
	Volume      int64     `json:"Volume"`
	Dividends   float64   `json:"Dividends"`
	StockSplits float64   `json:"Stock Splits"`
}

// HistorySeries is ordered oldest first.
type HistorySeries []HistoryBar

// Encode serializes the series as a JSON array of per-bar records with
// ISO-8601 UTC timestamps. An empty series encodes as "[]".
func (s HistorySeries) Encode() (string, error) {
	out := make([]HistoryBar, len(s))
	for i, b := range s {
		b.Date = b.Date.UTC()
		out[i] = b
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
