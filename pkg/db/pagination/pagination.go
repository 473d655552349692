package pagination

import "gorm.io/gorm"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Pagination is page/size paging as bound from query strings.
type Pagination struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=20" validate:"gte=1,lte=100"`
}

// PageInfo describes the slice of results returned to the caller.
type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
}

func (p Pagination) normalized() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	return p
}

// Limit returns the effective page size.
func (p Pagination) Limit() int {
	return p.normalized().PageSize
}

// Offset returns the row offset for the page.
func (p Pagination) Offset() int {
	n := p.normalized()
	return (n.Page - 1) * n.PageSize
}

// Apply attaches the limit/offset to a gorm statement.
func (p Pagination) Apply(stmt *gorm.DB) *gorm.DB {
	return stmt.Limit(p.Limit()).Offset(p.Offset())
}

// BuildPageInfo combines the request paging with a total count.
func BuildPageInfo(p Pagination, total int64) PageInfo {
	n := p.normalized()
	return PageInfo{
		Page:       n.Page,
		PageSize:   n.PageSize,
		TotalCount: total,
	}
}
