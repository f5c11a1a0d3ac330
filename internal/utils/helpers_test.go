package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/documind/documind/internal/utils"
)

func TestParseYMD(t *testing.T) {
	got, err := utils.ParseYMD("2023-11-15")

	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, time.November, 15, 0, 0, 0, 0, time.UTC), got)

	_, err = utils.ParseYMD("15/11/2023")
	assert.Error(t, err)

	_, err = utils.ParseYMD("")
	assert.Error(t, err)
}

func TestFormatYMD(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	late := time.Date(2023, time.June, 1, 23, 30, 0, 0, est)

	assert.Equal(t, "2023-06-02", utils.FormatYMD(late), "renders the UTC date")
}

func TestParseFormatRoundTrip(t *testing.T) {
	got, err := utils.ParseYMD("2024-02-29")

	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", utils.FormatYMD(got))
}
