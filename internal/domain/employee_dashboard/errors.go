package employee_dashboard

import "errors"

var ErrNoEmployeeRecord = errors.New("no employee record is linked to this account")
