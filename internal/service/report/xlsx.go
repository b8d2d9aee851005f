package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/report"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/export"
)

func (s *ReportServiceImpl) WritePayrollSummaryXLSX(w io.Writer, r report.PayrollSummaryReport) error {
	rows := make([][]interface{}, 0, len(r.Employees))
	for _, e := range r.Employees {
		rows = append(rows, []interface{}{
			e.EmployeeName,
			e.Department,
			e.GrossSalary.StringFixed(2),
			e.Deductions.StringFixed(2),
			e.NetSalary.StringFixed(2),
		})
	}

	return export.WriteWorkbook(w,
		export.Sheet{
			Name:   "Payroll",
			Header: []string{"Employee", "Department", "Gross", "Deductions", "Net"},
			Rows:   rows,
		},
		export.Sheet{
			Name:   "Totals",
			Header: []string{"Period", "Employees", "Gross", "Deductions", "Net"},
			Rows: [][]interface{}{{
				periodLabel(r.PeriodYear, r.PeriodMonth),
				r.TotalEmployees,
				r.TotalGross.StringFixed(2),
				r.TotalDeductions.StringFixed(2),
				r.TotalNet.StringFixed(2),
			}},
		},
	)
}

func (s *ReportServiceImpl) WriteLeaveSummaryXLSX(w io.Writer, r report.LeaveSummaryReport) error {
	employees := make([][]interface{}, 0, len(r.Employees))
	for _, e := range r.Employees {
		employees = append(employees, []interface{}{e.EmployeeName, e.Department, e.Requests, e.DaysTaken})
	}

	return export.WriteWorkbook(w,
		export.Sheet{
			Name:   "Days Taken",
			Header: []string{"Employee", "Department", "Approved Requests", "Days"},
			Rows:   employees,
		},
		export.Sheet{Name: "By Status", Header: []string{"Status", "Requests"}, Rows: countRows(r.ByStatus)},
		export.Sheet{Name: "By Type", Header: []string{"Type", "Requests"}, Rows: countRows(r.ByType)},
	)
}

func (s *ReportServiceImpl) WriteNewHireXLSX(w io.Writer, r report.NewHireReport) error {
	rows := make([][]interface{}, 0, len(r.Employees))
	for _, e := range r.Employees {
		account := "no"
		if e.HasAccount {
			account = "yes"
		}
		rows = append(rows, []interface{}{e.FullName, e.Email, e.Position, e.Department, e.HireDate, account})
	}

	return export.WriteWorkbook(w, export.Sheet{
		Name:   "New Hires",
		Header: []string{"Name", "Email", "Position", "Department", "Hire Date", "Account"},
		Rows:   rows,
	})
}

// countRows sorts keys so exports are stable.
func countRows(counts map[string]int64) [][]interface{} {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]interface{}, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []interface{}{k, counts[k]})
	}
	return rows
}

func periodLabel(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
