package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Devworks Bootcamp":        "devworks-bootcamp",
		"  ModernTech  Bootcamp! ": "moderntech-bootcamp",
		"UI/UX 101":                "ui-ux-101",
		"":                         "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ann@example.com", NormalizeEmail("  Ann@Example.COM "))
}

func TestFormatDate(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	assert.Equal(t, "2024-12-31", FormatDate(time.Date(2025, 1, 1, 3, 0, 0, 0, loc)))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b c", "d"}, SplitList(" a, b c ;;d,"))
	assert.Empty(t, SplitList(""))
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$12,500", FormatUSD(12500))
	assert.Equal(t, "$0", FormatUSD(0))
	assert.Equal(t, "-$1,000", FormatUSD(-1000))
}

func TestCeilAverage(t *testing.T) {
	assert.Nil(t, CeilAverage(nil))
	v := 7.2
	assert.Equal(t, 8.0, *CeilAverage(&v))
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", RequestID(ctx))
	assert.Equal(t, "", RequestID(context.Background()))
}
