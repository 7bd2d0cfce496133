package model

import "errors"

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrUnknownProvider         = errors.New("unknown provider")
	ErrUnknownSocialActionType = errors.New("unknown social action type")
	ErrInvalidRecord           = errors.New("invalid record")
)

func isRecordErr(err error) bool {
	return errors.Is(err, ErrInvalidRecord)
}
