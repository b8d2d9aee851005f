package department

import "errors"

var (
	ErrDepartmentNotFound   = errors.New("department not found")
	ErrDepartmentNameExists = errors.New("department with this name already exists")
	ErrDepartmentInUse      = errors.New("department still has employees or teams")
	ErrForbidden            = errors.New("not allowed to manage departments")
)
