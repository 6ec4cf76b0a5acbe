package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Pagination carries a 1-indexed page and a page size parsed from the query
// string. Absent or non-positive values fall back to the defaults.
type Pagination struct {
	Page  int
	Limit int
}

func ParsePagination(c *gin.Context) Pagination {
	p := Pagination{Page: DefaultPage, Limit: DefaultLimit}

	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages is ceil(total/limit).
func (p Pagination) TotalPages(total int64) int64 {
	return (total + int64(p.Limit) - 1) / int64(p.Limit)
}
