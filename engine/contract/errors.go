package contract

import "errors"

var (
	ErrModelInvoke   = errors.New("model invoke failed")
	ErrEmbedding     = errors.New("embedding failed")
	ErrValidation    = errors.New("validation failed")
	ErrConfigInvalid = errors.New("domain config invalid")
)
