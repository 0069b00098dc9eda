package search_test

import (
	"testing"
	"time"

	"github.com/kestrelchess/kestrel/pkg/board"
	"github.com/kestrelchess/kestrel/pkg/search"
	"github.com/stretchr/testify/assert"
)

func TestTimeControl_LimitsClampToOneSecondOnAlmostExhaustedClock(t *testing.T) {
	tc := search.TimeControl{White: 50 * time.Millisecond, Black: 50 * time.Millisecond, MovesToGo: 1}

	soft, hard := tc.Limits(board.White)
	assert.GreaterOrEqual(t, soft, time.Second)
	assert.GreaterOrEqual(t, hard, time.Second)
}

func TestTimeControl_LimitsScaleWithRemainingClockAboveTheFloor(t *testing.T) {
	tc := search.TimeControl{White: 2 * time.Minute, Black: 2 * time.Minute}

	soft, hard := tc.Limits(board.White)
	assert.Greater(t, soft, time.Second)
	assert.Equal(t, 3*soft, hard)
}
