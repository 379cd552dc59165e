package model

type DashboardStats struct {
	TotalPatients     int `json:"total_patients" db:"total_patients"`
	TodayAppointments int `json:"today_appointments" db:"today_appointments"`
	WeekAppointments  int `json:"week_appointments" db:"week_appointments"`
}

// DashboardRedirect is returned to patients, who use the portal instead.
type DashboardRedirect struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}
