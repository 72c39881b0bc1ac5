package commands

import (
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"

	"github.com/wonny/macrodash/internal/contracts"
)

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "-", formatValue(null.Float{}))
	assert.Equal(t, "7000.0000", formatValue(null.FloatFrom(7000)))
}

func TestFormatDelta(t *testing.T) {
	assert.Equal(t, "-", formatDelta(null.Float{}, contracts.DeltaPercent))
	assert.Equal(t, "+1.25%", formatDelta(null.FloatFrom(1.25), contracts.DeltaPercent))
	assert.Equal(t, "-0.0100", formatDelta(null.FloatFrom(-0.01), contracts.DeltaAbsolute))
}
