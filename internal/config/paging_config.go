package config

type Paging struct{}

var _ PagingConfig = Paging{}

// GetPageSize is the number of notes requested per page after the first.
func (Paging) GetPageSize() int {
	return GetEnvInt("PAGE_SIZE", 10)
}

// GetInitialLoadSize is the number of notes requested for the first page.
func (Paging) GetInitialLoadSize() int {
	return GetEnvInt("INITIAL_LOAD_SIZE", 10)
}
