package service

import "errors"

// 业务错误定义
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateLink       = errors.New("link url already exists")
	ErrValidation          = errors.New("invalid input")
	ErrExportFormatInvalid = errors.New("unsupported export format")
)
