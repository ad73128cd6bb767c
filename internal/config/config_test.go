package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/score-api/internal/pkg/errors"
)

func setCompleteEnv(t *testing.T) {
	t.Setenv("DATABASE_HOST", "localhost")
	t.Setenv("DATABASE_USER", "scores")
	t.Setenv("DATABASE_DBNAME", "scores_db")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("PERFORMANCE_URL", "http://localhost:7727")
}

func TestLoad_Complete(t *testing.T) {
	// Arrange
	setCompleteEnv(t)

	// Act
	cfg, err := Load("")

	// Assert: конфигурация собралась, умолчания кешей на месте
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 512, cfg.Cache.BoardCapacity)
	assert.Equal(t, 4096, cfg.Cache.PBCapacity)
	assert.Equal(t, "data/replays", cfg.Submission.ReplayDir)
}

func TestLoad_IncompleteDatabase(t *testing.T) {
	// Arrange
	setCompleteEnv(t)
	t.Setenv("DATABASE_HOST", "")

	// Act
	_, err := Load("")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestLoad_MissingPerformanceURL(t *testing.T) {
	// Arrange
	setCompleteEnv(t)
	t.Setenv("PERFORMANCE_URL", "")

	// Act
	_, err := Load("")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
