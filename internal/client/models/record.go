// Package models defines the field records captured by employees, the
// encrypted envelopes they are persisted as, and the helpers shared between
// the codec, the record log and the report generator.
package models

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/fieldkeeper/internal/common"
)

// Category classifies a record kind. Each category has its own log.
type Category string

const (
	CategoryAttendance Category = "attendance"
	CategoryShopVisit  Category = "shop-visit"
)

// Categories lists every known category in report order.
var Categories = []Category{CategoryAttendance, CategoryShopVisit}

// ParseCategory maps a stored key back to a Category.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryAttendance, CategoryShopVisit:
		return c, nil
	default:
		return "", fmt.Errorf("%w: unknown category %q", common.ErrValidation, s)
	}
}

// Location is a GPS fix handed over by the capture collaborator.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FieldRecord is implemented by every record variant.
type FieldRecord interface {
	Category() Category
	Validate() error
	GetEmployeeID() string
	GetTimestamp() time.Time
	SetTimestamp(t time.Time)
	HasPhoto() bool
	// WithPhotoPlaceholder returns a copy whose photo is replaced by
	// PhotoPlaceholder. The receiver is left untouched.
	WithPhotoPlaceholder() FieldRecord
}

// AttendanceRecord is a start-of-day check-in with the bike odometer reading.
type AttendanceRecord struct {
	EmployeeID   string    `json:"employeeId"`
	EmployeeName string    `json:"employeeName"`
	Photo        *string   `json:"photo"`
	Location     *Location `json:"location"`
	Kilometers   float64   `json:"kilometers"`
	Timestamp    time.Time `json:"timestamp"`
}

func (r *AttendanceRecord) Category() Category       { return CategoryAttendance }
func (r *AttendanceRecord) GetEmployeeID() string    { return r.EmployeeID }
func (r *AttendanceRecord) GetTimestamp() time.Time  { return r.Timestamp }
func (r *AttendanceRecord) SetTimestamp(t time.Time) { r.Timestamp = t }
func (r *AttendanceRecord) HasPhoto() bool           { return r.Photo != nil }

func (r *AttendanceRecord) WithPhotoPlaceholder() FieldRecord {
	c := *r
	c.Photo = PhotoPlaceholder(r.Photo)
	return &c
}

func (r *AttendanceRecord) Validate() error {
	v := &common.ValidationError{}
	validateIdentity(v, r.EmployeeID, r.EmployeeName)
	validateLocation(v, r.Location)
	if math.IsNaN(r.Kilometers) || math.IsInf(r.Kilometers, 0) {
		v.Add("kilometers", "must be a number")
	} else if r.Kilometers < 0 {
		v.Add("kilometers", "must be non-negative")
	}
	return v.OrNil()
}

// ShopVisitRecord is a visit to a retail shop and its outcome.
type ShopVisitRecord struct {
	EmployeeID      string    `json:"employeeId"`
	EmployeeName    string    `json:"employeeName"`
	Photo           *string   `json:"photo"`
	Location        *Location `json:"location"`
	OwnerName       string    `json:"ownerName"`
	OwnerEmail      string    `json:"ownerEmail"`
	VisitSuccessful bool      `json:"visitSuccessful"`
	Timestamp       time.Time `json:"timestamp"`
}

func (r *ShopVisitRecord) Category() Category       { return CategoryShopVisit }
func (r *ShopVisitRecord) GetEmployeeID() string    { return r.EmployeeID }
func (r *ShopVisitRecord) GetTimestamp() time.Time  { return r.Timestamp }
func (r *ShopVisitRecord) SetTimestamp(t time.Time) { r.Timestamp = t }
func (r *ShopVisitRecord) HasPhoto() bool           { return r.Photo != nil }

func (r *ShopVisitRecord) WithPhotoPlaceholder() FieldRecord {
	c := *r
	c.Photo = PhotoPlaceholder(r.Photo)
	return &c
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

func (r *ShopVisitRecord) Validate() error {
	v := &common.ValidationError{}
	validateIdentity(v, r.EmployeeID, r.EmployeeName)
	validateLocation(v, r.Location)
	if strings.TrimSpace(r.OwnerName) == "" {
		v.Add("ownerName", "is required")
	}
	switch {
	case strings.TrimSpace(r.OwnerEmail) == "":
		v.Add("ownerEmail", "is required")
	case !emailPattern.MatchString(r.OwnerEmail):
		v.Add("ownerEmail", "is not a valid email address")
	}
	return v.OrNil()
}

// NewRecord returns an empty record of the variant stored under c.
func NewRecord(c Category) (FieldRecord, error) {
	switch c {
	case CategoryAttendance:
		return &AttendanceRecord{}, nil
	case CategoryShopVisit:
		return &ShopVisitRecord{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown category %q", common.ErrValidation, c)
	}
}

func validateIdentity(v *common.ValidationError, id, name string) {
	if strings.TrimSpace(id) == "" {
		v.Add("employeeId", "is required")
	}
	if strings.TrimSpace(name) == "" {
		v.Add("employeeName", "is required")
	}
}

func validateLocation(v *common.ValidationError, l *Location) {
	if l == nil {
		return
	}
	if math.IsNaN(l.Latitude) || l.Latitude < -90 || l.Latitude > 90 {
		v.Add("location.latitude", "must be within [-90, 90]")
	}
	if math.IsNaN(l.Longitude) || l.Longitude < -180 || l.Longitude > 180 {
		v.Add("location.longitude", "must be within [-180, 180]")
	}
}
