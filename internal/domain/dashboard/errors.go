package dashboard

import "errors"

var ErrForbidden = errors.New("not allowed to view the HR dashboard")
