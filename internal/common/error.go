package common

import "fmt"

var (
	ErrUnknownLogLevel     = fmt.Errorf("unknown log level")
	ErrUnknownMediaType    = fmt.Errorf("unknown media type")
	ErrNoCategories        = fmt.Errorf("no categories configured")
	ErrInvalidCategoryName = fmt.Errorf("invalid category name")
	ErrInvalidProtection   = fmt.Errorf("invalid protection settings")
	ErrPublisherNotReady   = fmt.Errorf("publisher is not configured")
	ErrInvalidEnvValue     = fmt.Errorf("invalid environment value")
)
