package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coinhist/coin-history-crawler/internal/pipeline"
)

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	records := []pipeline.Record{
		{
			Slug:       "bitcoin",
			Symbol:     "BTC",
			Name:       "Bitcoin",
			Date:       time.Date(2013, time.September, 14, 0, 0, 0, 0, time.UTC),
			Rank:       1,
			Open:       92,
			High:       100,
			Low:        90,
			Close:      95,
			Volume:     1234567,
			MarketCap:  1234567890,
			CloseRatio: 0.5,
			Spread:     10,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, []string{
		"slug", "symbol", "name", "date", "rank",
		"open", "high", "low", "close", "volume", "market",
		"close_ratio", "spread",
	}, rows[0])
	require.Equal(t, []string{
		"bitcoin", "BTC", "Bitcoin", "2013-09-14", "1",
		"92", "100", "90", "95", "1234567", "1234567890",
		"0.5", "10",
	}, rows[1])
}

func TestWriteCSVEmptyTableStillHasHeader(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
