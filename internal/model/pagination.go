package model

const (
	DefaultUserPageSize = 4
	DefaultPageSize     = 5
	MaxPageSize         = 100
)

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pages returns how many pages of size limit are needed for total items.
func Pages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
