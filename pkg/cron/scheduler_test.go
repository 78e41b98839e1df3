package cron

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/finhelm/statement-api/internal/domain/transaction"
	"github.com/finhelm/statement-api/pkg/money"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedStore(t *testing.T) *transaction.MemoryStore {
	t.Helper()

	store := transaction.NewMemoryStore()
	tx := transaction.Transaction{
		ID:          "2024_03_stmt.pdf_0",
		Date:        transaction.NewDate(2024, time.March, 1),
		Description: "STAPLES",
		Amount:      money.FromFloat(-45.67),
		Category:    "Supplies",
	}
	store.Put("2024", "03", []transaction.Transaction{tx}, nil)
	store.Put("2024", "04", nil, nil)
	require.NoError(t, store.MarkProcessed("2024", "03"))
	return store
}

func TestSweepPublishesGauges(t *testing.T) {
	s := NewScheduler(seedStore(t), "", testLogger())

	s.RunNow()

	require.Equal(t, 2.0, testutil.ToFloat64(monthsTotal.WithLabelValues("2024")))
	require.Equal(t, 1.0, testutil.ToFloat64(monthsProcessed.WithLabelValues("2024")))
	require.Equal(t, 0.0, testutil.ToFloat64(yearCompleted.WithLabelValues("2024")))
}

func TestSweepMarksCompletedYears(t *testing.T) {
	store := seedStore(t)
	require.NoError(t, store.MarkProcessed("2024", "04"))

	NewScheduler(store, "", testLogger()).RunNow()

	require.Equal(t, 1.0, testutil.ToFloat64(yearCompleted.WithLabelValues("2024")))
}

func TestStartAndStop(t *testing.T) {
	s := NewScheduler(transaction.NewMemoryStore(), DefaultSchedule, testLogger())

	require.NoError(t, s.Start())

	ctx := s.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not drain")
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(transaction.NewMemoryStore(), "not a schedule", testLogger())
	require.Error(t, s.Start())
}
