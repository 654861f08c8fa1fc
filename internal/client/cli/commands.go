package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/fieldkeeper/internal/client/models"
	"github.com/dmitrijs2005/fieldkeeper/internal/client/services"
	"github.com/dmitrijs2005/fieldkeeper/internal/common"
)

// test seams for interactive input
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

var errNotLoggedIn = errors.New("please log in first")

func (a *App) Login(ctx context.Context, args []string) error {
	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		u, err := getSimpleText(a.reader, "Username", a.out)
		if err != nil {
			return err
		}
		username = u
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	id, err := a.auth.Login(ctx, username, string(password))
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			return errors.New("invalid username or password")
		}
		return err
	}

	a.println(fmt.Sprintf("Welcome, %s (%s)", id.Name, id.Role))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout()
	a.println("Logged out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	id, ok := a.auth.Current()
	if !ok {
		return errNotLoggedIn
	}
	a.println(fmt.Sprintf("%s (id %s, role %s)", id.Name, id.ID, id.Role))
	return nil
}

func (a *App) identity() (models.Identity, error) {
	id, ok := a.auth.Current()
	if !ok {
		return models.Identity{}, errNotLoggedIn
	}
	return id, nil
}

// Attendance records the start-of-day check-in of the logged-in employee.
func (a *App) Attendance(ctx context.Context) error {
	id, err := a.identity()
	if err != nil {
		return err
	}

	kmText, err := getSimpleText(a.reader, "Bike kilometers", a.out)
	if err != nil {
		return err
	}
	km, err := ParseFloat(kmText)
	if err != nil {
		return fmt.Errorf("kilometers: %w", err)
	}

	photo, loc, err := a.capture()
	if err != nil {
		return err
	}

	rec := &models.AttendanceRecord{
		EmployeeID:   id.ID,
		EmployeeName: id.Name,
		Photo:        photo,
		Location:     loc,
		Kilometers:   km,
	}

	ack, err := a.submit(ctx, models.CategoryAttendance, rec)
	if err != nil {
		return describe(err)
	}
	a.println(fmt.Sprintf("Attendance saved (%s)", ack.EnvelopeID))
	return nil
}

// Visit records a shop visit. With auto_report set, a fresh report is
// generated right after.
func (a *App) Visit(ctx context.Context) error {
	id, err := a.identity()
	if err != nil {
		return err
	}

	owner, err := getSimpleText(a.reader, "Shop owner name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Shop owner email", a.out)
	if err != nil {
		return err
	}
	answer, err := getSimpleText(a.reader, "Visit successful? (y/n)", a.out)
	if err != nil {
		return err
	}
	successful, err := ParseYesNo(answer)
	if err != nil {
		return err
	}

	photo, loc, err := a.capture()
	if err != nil {
		return err
	}

	rec := &models.ShopVisitRecord{
		EmployeeID:      id.ID,
		EmployeeName:    id.Name,
		Photo:           photo,
		Location:        loc,
		OwnerName:       owner,
		OwnerEmail:      email,
		VisitSuccessful: successful,
	}

	ack, err := a.submit(ctx, models.CategoryShopVisit, rec)
	if err != nil {
		return describe(err)
	}
	a.println(fmt.Sprintf("Shop visit saved (%s)", ack.EnvelopeID))

	if a.config != nil && a.config.AutoReport {
		return a.Report(ctx)
	}
	return nil
}

// submit appends rec. Once started, the append is not cancelled by ctx.
func (a *App) submit(ctx context.Context, category models.Category, rec models.FieldRecord) (services.Ack, error) {
	var ack services.Ack
	err := a.storeOp(func() (err error) {
		ack, err = a.submitter.Submit(context.WithoutCancel(ctx), category, rec)
		return err
	})
	return ack, err
}

// capture stands in for the camera and GPS collaborators.
func (a *App) capture() (*string, *models.Location, error) {
	path, err := getSimpleText(a.reader, "Photo file (blank for none)", a.out)
	if err != nil {
		return nil, nil, err
	}
	photo, err := ReadPhoto(path)
	if err != nil {
		return nil, nil, err
	}

	locText, err := getSimpleText(a.reader, "Location as lat,lon (blank for none)", a.out)
	if err != nil {
		return nil, nil, err
	}
	loc, err := ParseLocation(locText)
	if err != nil {
		return nil, nil, err
	}
	return photo, loc, nil
}

func (a *App) Report(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	var rep *services.Report
	err := a.storeOp(func() (err error) {
		rep, err = a.reports.Generate(ctx)
		return err
	})
	if err != nil {
		return err
	}

	locations, err := a.sinks.PutAll(ctx, rep.Name, rep.Data)
	for _, l := range locations {
		a.println("Report saved to", l)
	}
	if err != nil {
		return err
	}

	a.println(fmt.Sprintf("%d attendance and %d shop visit rows", rep.Attendance, rep.ShopVisits))
	if rep.Unreadable > 0 {
		a.println(fmt.Sprintf("Warning: %d records could not be read and were skipped", rep.Unreadable))
	}
	for _, c := range rep.Degraded {
		a.println(fmt.Sprintf("Warning: %s storage is unreadable, sheet left empty", c))
	}
	return nil
}

func (a *App) LastReport(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	sum, err := a.reports.LastReport(ctx)
	if errors.Is(err, common.ErrNotFound) {
		a.println("No report generated yet")
		return nil
	}
	if err != nil {
		return err
	}

	a.println(fmt.Sprintf("%s generated %s, %d unreadable records",
		sum.Name, sum.At.Format("2006-01-02 15:04"), sum.Unreadable))
	return nil
}

// describe turns a validation error into a one-line hint listing the
// offending fields.
func describe(err error) error {
	var ve *common.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	parts := make([]string, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return fmt.Errorf("not saved: %s", strings.Join(parts, "; "))
}
