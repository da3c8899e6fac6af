package notes

import "github.com/pkg/errors"

var (
	BackwardPaginationErr = errors.New("backward pagination is not supported")
	SourceInvalidatedErr  = errors.New("source has been invalidated")
)
