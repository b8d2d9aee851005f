package dashboard

// DashboardResponse is the HR overview
type DashboardResponse struct {
	Employees     EmployeeSummaryResponse `json:"employees"`
	Leave         LeaveSummaryResponse    `json:"leave"`
	Illness       IllnessSummaryResponse  `json:"illness"`
	Payslips      PayslipSummaryResponse  `json:"payslips"`
	Invoices      map[string]InvoiceTotal `json:"invoices"`
	UnreadNotices int                     `json:"unread_notifications"`
}

type EmployeeSummaryResponse struct {
	TotalEmployee int64            `json:"total_employee"`
	NewEmployee   int64            `json:"new_employee"`
	ByDepartment  map[string]int64 `json:"by_department"`
}

type LeaveSummaryResponse struct {
	Pending       int64 `json:"pending"`
	ApprovedToday int64 `json:"approved_today"`
}

type IllnessSummaryResponse struct {
	TotalActive    int64            `json:"total_active"`
	TotalRecovered int64            `json:"total_recovered"`
	TotalChronic   int64            `json:"total_chronic"`
	ByType         map[string]int64 `json:"by_type"`
}

type PayslipSummaryResponse struct {
	Month     int   `json:"month"`
	Year      int   `json:"year"`
	Draft     int64 `json:"draft"`
	Published int64 `json:"published"`
	Viewed    int64 `json:"viewed"`
}
