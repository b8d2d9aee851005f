package payroll

import "errors"

var (
	ErrPayslipNotFound         = errors.New("payslip not found")
	ErrPayslipExists           = errors.New("a payslip already exists for this employee and period")
	ErrPayslipAlreadyPublished = errors.New("payslip already published, cannot modify")
	ErrPayslipNotPublished     = errors.New("payslip is not published")
	ErrPayslipPDFNotFound      = errors.New("payslip PDF not available")
	ErrInvalidPDF              = errors.New("only PDF files are accepted")
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrNoEmployeeRecord        = errors.New("no employee record is linked to this account")
	ErrForbidden               = errors.New("not allowed to manage payslips")
)
