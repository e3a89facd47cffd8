package service

import "errors"

var (
	ErrFilenameRequired    = errors.New("filename is required")
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
	ErrFileTooLarge        = errors.New("file exceeds the maximum upload size")
	ErrImageIDRequired     = errors.New("imageId is required")
	ErrKeyNotOwned         = errors.New("key is outside the caller's namespace")
	ErrInvalidToken        = errors.New("invalid continuation token")
	ErrUpstream            = errors.New("upstream service failure")
)
