package employee

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrUserAlreadyLinked  = errors.New("user is already linked to another employee")
	ErrLinkedUserNotFound = errors.New("linked user not found")
	ErrDepartmentNotFound = errors.New("department does not exist")
	ErrTeamNotFound       = errors.New("team does not exist")
	ErrNoEmployeeRecord   = errors.New("no employee record is linked to this account")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrFileTooLarge       = errors.New("file exceeds the 10 MiB limit")
	ErrInvalidFileType    = errors.New("file type is not allowed")
	ErrForbidden          = errors.New("not allowed to access this employee")
)
