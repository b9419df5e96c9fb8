package v1

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func filterCtx(t *testing.T, query string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/v1/analytics/applications?"+query, nil)
	return c
}

func TestParseStatsFilter(t *testing.T) {
	t.Run("Should parse comma separated id lists", func(t *testing.T) {
		f, err := parseStatsFilter(filterCtx(t, "platform=1,2&userId=7"))
		assert.NoError(t, err)
		assert.Equal(t, []int64{1, 2}, f.PlatformIDs)
		assert.Equal(t, []int64{7}, f.UserIDs)
		assert.Nil(t, f.ProfileID)
		assert.Nil(t, f.Range)
	})

	t.Run("Should parse the date range", func(t *testing.T) {
		f, err := parseStatsFilter(filterCtx(t, "startDate=2026-03-09&endDate=2026-03-15"))
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), f.Range.Start)
		assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), f.Range.End)
	})

	t.Run("Should reject a lone startDate", func(t *testing.T) {
		_, err := parseStatsFilter(filterCtx(t, "startDate=2026-03-09"))
		assert.Error(t, err)
	})

	t.Run("Should reject an inverted range", func(t *testing.T) {
		_, err := parseStatsFilter(filterCtx(t, "startDate=2026-03-15&endDate=2026-03-09"))
		assert.Error(t, err)
	})

	t.Run("Should reject a non-numeric id", func(t *testing.T) {
		_, err := parseStatsFilter(filterCtx(t, "platform=1,upwork"))
		assert.Error(t, err)
	})
}
