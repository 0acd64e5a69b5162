package reports

import "ponto/internal/domain/timeclock"

type DayView struct {
	Date           string            `json:"date"`
	Punches        []timeclock.Punch `json:"punches"`
	Summary        string            `json:"summary"`
	Worked         string            `json:"worked"`
	WorkedMinutes  int64             `json:"workedMinutes"`
	Balance        string            `json:"balance"`
	BalanceMinutes int64             `json:"balanceMinutes"`
}

// ReportView is the JSON shape of a Report.
type ReportView struct {
	EmployeeID          string    `json:"employeeId"`
	EmployeeName        string    `json:"employeeName"`
	CPF                 string    `json:"cpf"`
	Start               string    `json:"start"`
	End                 string    `json:"end"`
	TargetShiftMinutes  int       `json:"targetShiftMinutes"`
	Days                []DayView `json:"days"`
	Total               string    `json:"total"`
	TotalMinutes        int64     `json:"totalMinutes"`
	BalanceTotal        string    `json:"balanceTotal"`
	BalanceTotalMinutes int64     `json:"balanceTotalMinutes"`
	SkippedRecords      int       `json:"skippedRecords"`
}

func (r Report) View() ReportView {
	days := make([]DayView, 0, len(r.Days))
	for _, day := range r.Days {
		days = append(days, DayView{
			Date:           day.Date,
			Punches:        day.Punches,
			Summary:        day.Summary(),
			Worked:         day.WorkedText(),
			WorkedMinutes:  timeclock.Minutes(day.Worked),
			Balance:        day.BalanceText(),
			BalanceMinutes: timeclock.Minutes(day.Balance),
		})
	}
	return ReportView{
		EmployeeID:          r.EmployeeID,
		EmployeeName:        r.EmployeeName,
		CPF:                 r.CPF,
		Start:               r.Start,
		End:                 r.End,
		TargetShiftMinutes:  r.TargetShiftMinutes,
		Days:                days,
		Total:               r.TotalText(),
		TotalMinutes:        timeclock.Minutes(r.Total),
		BalanceTotal:        r.BalanceTotalText(),
		BalanceTotalMinutes: timeclock.Minutes(r.BalanceTotal),
		SkippedRecords:      r.SkippedRecords,
	}
}
