package timing

import (
	"testing"

	"github.com/jacokyle01/epd-analysis/models"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		actual int64
		want   models.TimeClass
	}{
		{1100, models.OnBudget},
		{1250, models.OnBudget},
		{750, models.OnBudget},
		{1251, models.Overrun},
		{1400, models.Overrun},
		{749, models.Underrun},
		{600, models.Underrun},
	}
	for _, tt := range tests {
		out := Classify(1000, tt.actual, 2)
		assert.Equal(t, int64(125), out.MarginPerPositionMs)
		assert.Equal(t, int64(250), out.MarginMs)
		assert.Equal(t, tt.want, out.Class, "actual %d", tt.actual)
	}
}

func TestMarginClamp(t *testing.T) {
	assert.Equal(t, int64(50), AuditMargin.For(100))
	assert.Equal(t, int64(200), AuditMargin.For(5000))
	assert.Equal(t, int64(10), StopMargin.For(20))
	assert.Equal(t, int64(100), StopMargin.For(1000))
	assert.Equal(t, int64(75), StopMargin.For(300))
}

func TestClassifyNoPositions(t *testing.T) {
	out := Classify(0, 0, 0)
	assert.Equal(t, models.OnBudget, out.Class)
	assert.Equal(t, int64(0), out.MarginMs)
}
