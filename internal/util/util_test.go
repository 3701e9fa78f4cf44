package util

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSilentWrap(t *testing.T) {
	err := NewNotExistErrorf("board %d not found", 7)
	assert.Equal(t, "board 7 not found", err.Error())
	assert.ErrorIs(t, err, ErrNotExist)
	assert.NotErrorIs(t, err, ErrInvalidArgument)

	wrapped := fmt.Errorf("load board: %w", err)
	assert.ErrorIs(t, wrapped, ErrNotExist)

	var sw SilentWrap
	assert.True(t, errors.As(wrapped, &sw))
	assert.Equal(t, "board 7 not found", sw.Message)
}

func TestSilentWrapWithoutArgs(t *testing.T) {
	err := NewInvalidArgumentErrorf("100% wrong")
	assert.Equal(t, "100% wrong", err.Error())
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TASKBOARD_TEST_VALUE", "")
	assert.Equal(t, "fallback", EnvOrDefault("TASKBOARD_TEST_VALUE", "fallback"))
	t.Setenv("TASKBOARD_TEST_VALUE", "set")
	assert.Equal(t, "set", EnvOrDefault("TASKBOARD_TEST_VALUE", "fallback"))

	t.Setenv("TASKBOARD_TEST_TTL", "90m")
	assert.Equal(t, 90*time.Minute, EnvDuration("TASKBOARD_TEST_TTL", time.Hour))
	t.Setenv("TASKBOARD_TEST_TTL", "soon")
	assert.Equal(t, time.Hour, EnvDuration("TASKBOARD_TEST_TTL", time.Hour))
	t.Setenv("TASKBOARD_TEST_TTL", "-5m")
	assert.Equal(t, time.Hour, EnvDuration("TASKBOARD_TEST_TTL", time.Hour))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, SplitList(" http://a, ,http://b "))
	assert.Nil(t, SplitList(""))
}
