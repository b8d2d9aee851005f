package permission

import "errors"

var (
	ErrCustomPermissionsNotFound = errors.New("custom permissions not found")
	ErrUnknownPermission         = errors.New("unknown permission")
	ErrPermissionDenied          = errors.New("permission denied")
)
