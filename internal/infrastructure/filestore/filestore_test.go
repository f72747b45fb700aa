package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonetracer/internal/domain/models"
)

func TestReportStore_AddAndList(t *testing.T) {
	dir := t.TempDir()
	store := NewReportStore(filepath.Join(dir, "data"), "reports.json")
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	total, err := store.Add(ctx, &models.Report{Number: "+14158586273", Type: "scam", Description: "fake IRS"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, err = store.Add(ctx, &models.Report{Number: "+442071838750", Type: "spam"})
	require.NoError(t, err)

	r := &models.Report{Number: "+14158586273", Type: "robocall"}
	total, err = store.Add(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.NotEmpty(t, r.ID)
	assert.False(t, r.Timestamp.IsZero())

	reports, err := store.ListByNumber(ctx, "+14158586273")
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "scam", reports[0].Type)
	assert.Equal(t, "fake IRS", reports[0].Description)
	assert.Equal(t, "robocall", reports[1].Type)

	// a fresh store over the same file sees the same data
	reopened := NewReportStore(filepath.Join(dir, "data"), "reports.json")
	reports, err = reopened.ListByNumber(ctx, "+442071838750")
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestReportStore_MissingAndCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store := NewReportStore(dir, "reports.json")
	ctx := context.Background()

	reports, err := store.ListByNumber(ctx, "+14158586273")
	require.NoError(t, err)
	assert.Empty(t, reports)

	corrupt := []byte(`[{"number":"+14158586273","type":"scam"},`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reports.json"), corrupt, 0o644))

	reports, err = store.ListByNumber(ctx, "+14158586273")
	require.NoError(t, err)
	assert.Empty(t, reports)

	total, err := store.Add(ctx, &models.Report{Number: "+14158586273", Type: "spam"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	// the unreadable file is kept byte for byte next to the new one
	aside, err := filepath.Glob(filepath.Join(dir, "reports.json.corrupt-*"))
	require.NoError(t, err)
	require.Len(t, aside, 1)
	data, err := os.ReadFile(aside[0])
	require.NoError(t, err)
	assert.Equal(t, corrupt, data)

	reports, err = store.ListByNumber(ctx, "+14158586273")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "spam", reports[0].Type)
}

func TestHistoryStore_CorruptFileSetAside(t *testing.T) {
	dir := t.TempDir()
	store := NewHistoryStore(dir, "history.json", 10)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "history.json"), []byte("{not json"), 0o644))
	require.NoError(t, store.Add(ctx, models.HistoryEntry{Number: "+1", Timestamp: time.Now().UTC()}))

	aside, err := filepath.Glob(filepath.Join(dir, "history.json.corrupt-*"))
	require.NoError(t, err)
	assert.Len(t, aside, 1)

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "+1", entries[0].Number)
}

func TestReportStore_FileIsIndentedArray(t *testing.T) {
	dir := t.TempDir()
	store := NewReportStore(dir, "reports.json")

	_, err := store.Add(context.Background(), &models.Report{Number: "+1", Type: "spam"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "reports.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[\n  {\n    \"id\"")

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestHistoryStore_NewestFirstAndTrimmed(t *testing.T) {
	dir := t.TempDir()
	store := NewHistoryStore(dir, "history.json", 3)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, n := range []string{"+1", "+2", "+3", "+4", "+5"} {
		require.NoError(t, store.Add(ctx, models.HistoryEntry{
			Number:    n,
			Valid:     true,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := store.Recent(ctx, 20)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "+5", entries[0].Number)
	assert.Equal(t, "+4", entries[1].Number)
	assert.Equal(t, "+3", entries[2].Number)

	entries, err = store.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestHistoryStore_DefaultLimit(t *testing.T) {
	store := NewHistoryStore(t.TempDir(), "history.json", 0)
	assert.Equal(t, 50, store.limit)

	entries, err := store.Recent(context.Background(), 20)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
