package report

import (
	"time"

	"github.com/dmitrijs2005/fieldkeeper/internal/client/models"
)

const (
	AttendanceSheetName = "Employee Attendance"
	ShopVisitSheetName  = "Shop Visits"

	// NotAvailable fills location cells of records captured without a fix.
	NotAvailable = "N/A"

	DateLayout = "2006-01-02"
)

var AttendanceColumns = []Column{
	{"Date", 15},
	{"Employee ID", 15},
	{"Employee Name", 20},
	{"Latitude", 15},
	{"Longitude", 15},
	{"Bike Kilometers", 15},
	{"Photo Taken", 10},
}

var ShopVisitColumns = []Column{
	{"Date", 15},
	{"Employee ID", 15},
	{"Employee Name", 20},
	{"Shop Owner", 20},
	{"Shop Owner Email", 25},
	{"Latitude", 15},
	{"Longitude", 15},
	{"Visit Successful", 15},
	{"Photo Taken", 10},
}

// FileName is <prefix>_<YYYY-MM-DD>.xlsx for the calendar date of t.
func FileName(prefix string, t time.Time) string {
	return prefix + "_" + t.Format(DateLayout) + ".xlsx"
}

func AttendanceRow(r *models.AttendanceRecord, loc *time.Location) []any {
	lat, lon := coordinates(r.Location)
	return []any{
		r.Timestamp.In(loc).Format(DateLayout),
		r.EmployeeID,
		r.EmployeeName,
		lat,
		lon,
		r.Kilometers,
		yesNo(r.HasPhoto()),
	}
}

func ShopVisitRow(r *models.ShopVisitRecord, loc *time.Location) []any {
	lat, lon := coordinates(r.Location)
	return []any{
		r.Timestamp.In(loc).Format(DateLayout),
		r.EmployeeID,
		r.EmployeeName,
		r.OwnerName,
		r.OwnerEmail,
		lat,
		lon,
		yesNo(r.VisitSuccessful),
		yesNo(r.HasPhoto()),
	}
}

func coordinates(l *models.Location) (any, any) {
	if l == nil {
		return NotAvailable, NotAvailable
	}
	return l.Latitude, l.Longitude
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
