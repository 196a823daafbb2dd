package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStagingStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStagingStore()
	imp := &StagedImport{ID: uuid.New(), UserID: uuid.New(), Kind: ImportExam, Markers: []StagedMarker{{Name: "Glicose", Value: fp(90)}}}

	require.NoError(t, s.Save(ctx, imp, time.Minute))

	got, err := s.Get(ctx, imp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Glicose", got.Markers[0].Name)

	// stored copies are independent of the caller's value
	got.Markers[0].Name = "edited"
	again, err := s.Get(ctx, imp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Glicose", again.Markers[0].Name)

	require.NoError(t, s.Delete(ctx, imp.ID))
	_, err = s.Get(ctx, imp.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStagingStoreExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)
	s := NewMemoryStagingStore()
	s.now = func() time.Time { return now }

	imp := &StagedImport{ID: uuid.New(), Kind: ImportMeal}
	require.NoError(t, s.Save(ctx, imp, 30*time.Minute))

	now = now.Add(29 * time.Minute)
	_, err := s.Get(ctx, imp.ID)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = s.Get(ctx, imp.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
