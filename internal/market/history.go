package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/form"
	"github.com/shopspring/decimal"

	"github.com/kjannette/stock-researcher/internal/httputil"
	"github.com/kjannette/stock-researcher/internal/models"
)

// barSource loads daily bars for symbol between start and end.
type barSource func(ctx context.Context, symbol string, start, end time.Time) (models.HistorySeries, error)

// chartCall is a finance.Backend bound to a single history request. It sends
// the chart query through the client's session (timeout, User-Agent, cookies)
// and keeps the dividend and split events the finance-go decoder ignores.
type chartCall struct {
	client  *YahooClient
	actions map[string]corporateAction
}

type corporateAction struct {
	dividend float64
	split    float64
}

type chartEnvelope struct {
	Chart struct {
		Result []struct {
			Events struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
				Splits map[string]struct {
					Date        int64   `json:"date"`
					Numerator   float64 `json:"numerator"`
					Denominator float64 `json:"denominator"`
				} `json:"splits"`
			} `json:"events"`
		} `json:"result"`
		Error *finance.YfinError `json:"error"`
	} `json:"chart"`
}

var _ finance.Backend = (*chartCall)(nil)

func (cc *chartCall) Call(path string, body *form.Values, ctx *context.Context, v interface{}) error {
	reqCtx := context.Background()
	if ctx != nil {
		reqCtx = *ctx
	}

	body.Set("events", "div,splits")
	u := cc.client.queryURL + "/" + strings.TrimPrefix(path, "/") + "?" + body.Encode()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build chart request: %w", err)
	}
	cc.client.decorate(req)

	resp, err := httputil.Do(reqCtx, cc.client.httpClient, req)
	if err != nil {
		if httputil.StatusCode(err) == http.StatusNotFound {
			return ErrNotFound
		}
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read chart: %w", err)
	}

	var env chartEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode chart: %w", err)
	}
	if e := env.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			return ErrNotFound
		}
		return fmt.Errorf("chart error %s: %s", e.Code, e.Description)
	}
	// finance-go indexes result[0] without a length check.
	if len(env.Chart.Result) == 0 {
		return ErrNotFound
	}

	events := env.Chart.Result[0].Events
	cc.actions = make(map[string]corporateAction, len(events.Dividends)+len(events.Splits))
	for _, d := range events.Dividends {
		key := dayKey(d.Date)
		a := cc.actions[key]
		a.dividend = d.Amount
		cc.actions[key] = a
	}
	for _, s := range events.Splits {
		if s.Denominator == 0 {
			continue
		}
		key := dayKey(s.Date)
		a := cc.actions[key]
		a.split = s.Numerator / s.Denominator
		cc.actions[key] = a
	}

	return json.Unmarshal(raw, v)
}

func dayKey(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.DateOnly)
}

// chartBars reads daily bars through the finance-go chart iterator.
func (c *YahooClient) chartBars(ctx context.Context, symbol string, start, end time.Time) (models.HistorySeries, error) {
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.FromUnix(int(start.Unix())),
		End:      datetime.FromUnix(int(end.Unix())),
		Interval: datetime.OneDay,
	}
	params.Context = &ctx

	call := &chartCall{client: c}
	iter := chart.Client{B: call}.Get(params)

	var series models.HistorySeries
	for iter.Next() {
		b := iter.Bar()
		date := time.Unix(int64(b.Timestamp), 0).UTC()
		action := call.actions[date.Format(time.DateOnly)]
		series = append(series, models.HistoryBar{
			Date:        date,
			Open:        decimalFloat(b.Open),
			High:        decimalFloat(b.High),
			Low:         decimalFloat(b.Low),
			Close:       decimalFloat(b.Close),
			Volume:      int64(b.Volume),
			Dividends:   action.dividend,
			StockSplits: action.split,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return series, nil
}

func decimalFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// FetchHistory returns daily OHLCV bars covering period, ending now.
func (c *YahooClient) FetchHistory(ctx context.Context, ticker, period string) (models.HistorySeries, error) {
	ticker = normalizeTicker(ticker)
	if strings.TrimSpace(period) == "" {
		period = DefaultPeriod
	}

	end := time.Now().UTC()
	start, err := PeriodStart(period, end)
	if err != nil {
		return nil, err
	}

	series, err := c.bars(ctx, ticker, start, end)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ticker)
		}
		return nil, fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ticker)
	}
	return series, nil
}

