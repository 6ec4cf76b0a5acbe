package utils_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"streamhive-backend/utils"
)

func parseFrom(t *testing.T, rawQuery string) utils.Pagination {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	return utils.ParsePagination(c)
}

func TestParsePagination(t *testing.T) {
	p := parseFrom(t, "")
	require.Equal(t, 1, p.Page)
	require.Equal(t, 10, p.Limit)

	p = parseFrom(t, "page=3&limit=25")
	require.Equal(t, 3, p.Page)
	require.Equal(t, 25, p.Limit)
	require.Equal(t, 50, p.Offset())

	// Non-positive and garbage values fall back to the defaults.
	p = parseFrom(t, "page=0&limit=-5")
	require.Equal(t, 1, p.Page)
	require.Equal(t, 10, p.Limit)

	p = parseFrom(t, "page=abc&limit=xyz")
	require.Equal(t, 1, p.Page)
	require.Equal(t, 10, p.Limit)
	require.Equal(t, 0, p.Offset())
}

func TestTotalPages(t *testing.T) {
	p := utils.Pagination{Page: 1, Limit: 5}
	require.EqualValues(t, 0, p.TotalPages(0))
	require.EqualValues(t, 1, p.TotalPages(1))
	require.EqualValues(t, 1, p.TotalPages(5))
	require.EqualValues(t, 2, p.TotalPages(6))
	require.EqualValues(t, 3, p.TotalPages(12))
}

func TestValidID(t *testing.T) {
	require.True(t, utils.ValidID("0c7b4f11-2d1a-4f27-9f0a-3a1df9f1a111"))
	require.False(t, utils.ValidID(""))
	require.False(t, utils.ValidID("not-a-uuid"))
	require.False(t, utils.ValidID("123"))
}
