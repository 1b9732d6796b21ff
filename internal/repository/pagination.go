package repository

const (
	// DefaultPerPage is used when the caller does not set a page size.
	DefaultPerPage = 20
	// MaxPerPage caps the page size regardless of what the caller asks for.
	MaxPerPage = 100
)

// NormalizePageArgs clamps pagination arguments into the supported range.
func NormalizePageArgs(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// TotalPages returns the page count for a total row count at a page size.
func TotalPages(total int64, perPage int) int64 {
	if total == 0 {
		return 0
	}
	return (total + int64(perPage) - 1) / int64(perPage)
}
