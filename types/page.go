package types

const (
	PageSize = 4096 // 4KB page
)

// PageNum is a zero-based page number inside one paged file.
type PageNum = uint32
