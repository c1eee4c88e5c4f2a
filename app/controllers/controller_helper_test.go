package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	got, err := parseDate("05/03/2026")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = parseDate("2026-03-05")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = parseDate("03/05/2026 12:00")
	assert.Error(t, err)

	_, err = parseDate("31/02/2026")
	assert.Error(t, err)
}

func TestParseOptionalDate(t *testing.T) {
	got, err := parseOptionalDate("  ")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseOptionalDate("01/01/2026")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2026, got.Year())
}

func TestParseOptionalInt(t *testing.T) {
	got, err := parseOptionalInt("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseOptionalInt(" 7 ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 7, *got)

	_, err = parseOptionalInt("seven")
	assert.Error(t, err)
}

func TestParseOptionalFloat(t *testing.T) {
	got, err := parseOptionalFloat("12.5")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 12.5, *got, 1e-9)

	// Comma decimal separator, as submitted by Spanish locale forms
	got, err = parseOptionalFloat("12,5")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 12.5, *got, 1e-9)

	got, err = parseOptionalFloat("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseOptionalFloat("heavy")
	assert.Error(t, err)
}
