package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestProjectMetrics_AllowListOnly(t *testing.T) {
	raw := map[string]any{
		"symbol":              "AAPL",
		"currentPrice":        190.0,
		"targetMedianPrice":   210.0,
		"longBusinessSummary": "Apple designs...",
		"fullTimeEmployees":   161000.0,
	}
	rec := ProjectMetrics(raw)
	if len(rec) != 3 {
		t.Fatalf("expected 3 fields, got %d: %v", len(rec), rec)
	}
	for k := range rec {
		if !IsMetricsField(k) {
			t.Fatalf("non allow-listed key %q leaked", k)
		}
	}
	if rec.Symbol("") != "AAPL" {
		t.Fatalf("symbol: got %q", rec.Symbol(""))
	}
}

func TestProjectMetrics_OmitsMissingAndNil(t *testing.T) {
	rec := ProjectMetrics(map[string]any{
		"symbol":        "XYZ",
		"dividendYield": nil,
		"52WeekChange":  0.12,
	})
	if _, ok := rec["dividendYield"]; ok {
		t.Fatal("nil dividendYield should be omitted")
	}
	if rec["52WeekChange"] != 0.12 {
		t.Fatalf("52WeekChange: got %v", rec["52WeekChange"])
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "null") {
		t.Fatalf("serialized record contains null: %s", data)
	}
}

func TestProjectMetrics_Empty(t *testing.T) {
	rec := ProjectMetrics(map[string]any{"unrelated": 1})
	if !rec.Empty() {
		t.Fatalf("expected empty record, got %v", rec)
	}
	if rec.Symbol("MSFT") != "MSFT" {
		t.Fatal("expected fallback symbol")
	}
}

func TestParseSentiment(t *testing.T) {
	valid := map[string]Sentiment{
		"Bullish":   Bullish,
		"bearish":   Bearish,
		" NEUTRAL ": Neutral,
	}
	for in, want := range valid {
		got, err := ParseSentiment(in)
		if err != nil {
			t.Fatalf("ParseSentiment(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseSentiment(%q) = %q, want %q", in, got, want)
		}
	}

	for _, in := range []string{"", "Positive", "bull"} {
		if _, err := ParseSentiment(in); err == nil {
			t.Fatalf("expected %q to be rejected", in)
		}
	}
}

func TestHistorySeriesEncode(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	s := HistorySeries{
		{Date: time.Date(2024, 1, 2, 9, 30, 0, 0, est), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100},
		{Date: time.Date(2024, 1, 3, 9, 30, 0, 0, est), Open: 1.5, High: 2.5, Low: 1, Close: 2, Volume: 200, Dividends: 0.24},
	}
	out, err := s.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(decoded))
	}
	if decoded[0]["Date"] != "2024-01-02T14:30:00Z" {
		t.Fatalf("date not UTC ISO-8601: %v", decoded[0]["Date"])
	}
	if decoded[1]["Close"] != 2.0 {
		t.Fatalf("close: got %v", decoded[1]["Close"])
	}
	if decoded[1]["Dividends"] != 0.24 || decoded[0]["Stock Splits"] != 0.0 {
		t.Fatalf("corporate actions: got %v / %v", decoded[1]["Dividends"], decoded[0]["Stock Splits"])
	}

	empty, err := HistorySeries(nil).Encode()
	if err != nil || empty != "[]" {
		t.Fatalf("empty series: got %q, %v", empty, err)
	}
}

func TestNewChatExchange(t *testing.T) {
	ex := NewChatExchange("q", "a", 1500*time.Millisecond)
	if ex.TimeTaken != 1.5 {
		t.Fatalf("time taken: got %f", ex.TimeTaken)
	}
	if NewChatExchange("q", "a", -time.Second).TimeTaken != 0 {
		t.Fatal("negative durations should clamp to 0")
	}
}
