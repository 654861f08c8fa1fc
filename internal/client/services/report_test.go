package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/fieldkeeper/internal/client/codec"
	"github.com/dmitrijs2005/fieldkeeper/internal/client/models"
	"github.com/dmitrijs2005/fieldkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fieldkeeper/internal/client/repositories/records"
	"github.com/dmitrijs2005/fieldkeeper/internal/common"
	"github.com/dmitrijs2005/fieldkeeper/internal/logging"
	"github.com/dmitrijs2005/fieldkeeper/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sheetRows(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func newReport(recs records.Repository, meta metadata.Repository, log logging.Logger) *ReportService {
	return NewReportService(newCodec(), recs, meta, log,
		WithReportClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
	)
}

func TestReport_EndToEnd(t *testing.T) {
	ctx := context.Background()
	recs := records.NewMemoryRepository()
	sub := newSubmission(recs, newCodec())

	_, err := sub.Submit(ctx, models.CategoryAttendance, attendance())
	require.NoError(t, err)
	_, err = sub.Submit(ctx, models.CategoryShopVisit, shopVisit())
	require.NoError(t, err)

	rep, err := newReport(recs, nil, logging.Discard()).Generate(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Field_Report_2025-01-01.xlsx", rep.Name)
	assert.Equal(t, 1, rep.Attendance)
	assert.Equal(t, 1, rep.ShopVisits)
	assert.Zero(t, rep.Unreadable)
	assert.Empty(t, rep.Degraded)

	att := sheetRows(t, rep.Data, report.AttendanceSheetName)
	require.Len(t, att, 2)
	assert.Equal(t, []string{"2025-01-01", "2", "Test Employee", "12.97", "77.59", "42.5", "No"}, att[1])

	visits := sheetRows(t, rep.Data, report.ShopVisitSheetName)
	require.Len(t, visits, 2)
	assert.Equal(t, "Visit Successful", visits[0][7])
	assert.Equal(t, "Yes", visits[1][7])
	assert.Equal(t, report.NotAvailable, visits[1][5])
	assert.Equal(t, report.NotAvailable, visits[1][6])
}

func TestReport_SkipsCorruptEnvelope(t *testing.T) {
	ctx := context.Background()
	recs := records.NewMemoryRepository()
	sub := newSubmission(recs, newCodec())
	log, buf := bufferedLogger(t)

	first := attendance()
	first.EmployeeName = "First"
	_, err := sub.Submit(ctx, models.CategoryAttendance, first)
	require.NoError(t, err)

	require.NoError(t, recs.Append(ctx, models.CategoryAttendance, models.Envelope{
		ID: "broken", Ciphertext: "%%% not base64 %%%", Timestamp: fixedNow, EmployeeID: "2",
	}))

	second := attendance()
	second.EmployeeName = "Second"
	_, err = sub.Submit(ctx, models.CategoryAttendance, second)
	require.NoError(t, err)

	rep, err := newReport(recs, nil, log).Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Attendance)
	assert.Equal(t, 1, rep.Unreadable)

	rows := sheetRows(t, rep.Data, report.AttendanceSheetName)
	require.Len(t, rows, 3)
	assert.Equal(t, "First", rows[1][2])
	assert.Equal(t, "Second", rows[2][2])

	assert.Contains(t, buf.String(), "skipping unreadable record")
	assert.Contains(t, buf.String(), "envelope_id=broken")
}

func TestReport_EnvelopeFromAnotherKeyIsSkipped(t *testing.T) {
	ctx := context.Background()
	recs := records.NewMemoryRepository()

	otherKey := make([]byte, 32)
	foreign := codec.New(staticKeys{key: otherKey})
	text, err := foreign.Encrypt(ctx, shopVisit())
	require.NoError(t, err)
	require.NoError(t, recs.Append(ctx, models.CategoryShopVisit, models.Envelope{ID: "foreign", Ciphertext: text}))

	rep, err := newReport(recs, nil, logging.Discard()).Generate(ctx)
	require.NoError(t, err)
	assert.Zero(t, rep.ShopVisits)
	assert.Equal(t, 1, rep.Unreadable)
	assert.Len(t, sheetRows(t, rep.Data, report.ShopVisitSheetName), 1)
}

func TestReport_NullPayloadIsSkipped(t *testing.T) {
	ctx := context.Background()
	recs := records.NewMemoryRepository()
	c := newCodec()

	text, err := c.EncryptValue(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, recs.Append(ctx, models.CategoryAttendance, models.Envelope{ID: "null", Ciphertext: text}))
	_, err = newSubmission(recs, c).Submit(ctx, models.CategoryAttendance, attendance())
	require.NoError(t, err)

	rep, err := newReport(recs, nil, logging.Discard()).Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Attendance)
	assert.Equal(t, 1, rep.Unreadable)

	rows := sheetRows(t, rep.Data, report.AttendanceSheetName)
	require.Len(t, rows, 2)
	assert.Equal(t, "Test Employee", rows[1][2])
}

type degradedRecords struct {
	records.Repository
	category models.Category
}

func (d degradedRecords) ReadAll(ctx context.Context, c models.Category) ([]models.Envelope, error) {
	if c == d.category {
		return []models.Envelope{}, common.ErrStorageDegraded
	}
	return d.Repository.ReadAll(ctx, c)
}

func TestReport_DegradedCategoryYieldsEmptySheet(t *testing.T) {
	ctx := context.Background()
	mem := records.NewMemoryRepository()
	_, err := newSubmission(mem, newCodec()).Submit(ctx, models.CategoryShopVisit, shopVisit())
	require.NoError(t, err)

	recs := degradedRecords{Repository: mem, category: models.CategoryAttendance}
	rep, err := newReport(recs, nil, logging.Discard()).Generate(ctx)
	require.NoError(t, err)

	assert.Equal(t, []models.Category{models.CategoryAttendance}, rep.Degraded)
	assert.Len(t, sheetRows(t, rep.Data, report.AttendanceSheetName), 1)
	assert.Equal(t, 1, rep.ShopVisits)
}

type brokenRecords struct{ records.Repository }

func (brokenRecords) ReadAll(context.Context, models.Category) ([]models.Envelope, error) {
	return nil, errors.New("connection refused")
}

func TestReport_StorageErrorAborts(t *testing.T) {
	_, err := newReport(brokenRecords{}, nil, logging.Discard()).Generate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestReport_MissingKeyAborts(t *testing.T) {
	ctx := context.Background()
	recs := records.NewMemoryRepository()
	_, err := newSubmission(recs, newCodec()).Submit(ctx, models.CategoryAttendance, attendance())
	require.NoError(t, err)

	noKey := codec.New(staticKeys{err: errors.New("secret store offline")})
	s := NewReportService(noKey, recs, nil, logging.Discard())

	_, err = s.Generate(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDecrypt)
}

func TestReport_EmptyLogs(t *testing.T) {
	rep, err := newReport(records.NewMemoryRepository(), nil, logging.Discard()).Generate(context.Background())
	require.NoError(t, err)

	assert.Len(t, sheetRows(t, rep.Data, report.AttendanceSheetName), 1)
	assert.Len(t, sheetRows(t, rep.Data, report.ShopVisitSheetName), 1)
}

func TestReport_NameAndDatesFollowTimezone(t *testing.T) {
	ctx := context.Background()
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	late := time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)
	recs := records.NewMemoryRepository()
	sub := NewSubmissionService(newCodec(), recs, logging.Discard(), WithClock(func() time.Time { return late }))
	_, err = sub.Submit(ctx, models.CategoryAttendance, attendance())
	require.NoError(t, err)

	s := NewReportService(newCodec(), recs, nil, logging.Discard(),
		WithReportClock(func() time.Time { return late }),
		WithLocation(tokyo),
		WithPrefix("Beat"),
	)
	rep, err := s.Generate(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Beat_2025-01-02.xlsx", rep.Name)
	assert.Equal(t, "2025-01-02", sheetRows(t, rep.Data, report.AttendanceSheetName)[1][0])
}

func TestReport_RemembersLastReport(t *testing.T) {
	ctx := context.Background()
	recs := records.NewMemoryRepository()
	meta := metadata.NewMemoryRepository()
	require.NoError(t, recs.Append(ctx, models.CategoryAttendance, models.Envelope{ID: "x", Ciphertext: "garbage"}))

	s := newReport(recs, meta, logging.Discard())

	_, err := s.LastReport(ctx)
	require.ErrorIs(t, err, common.ErrNotFound)

	_, err = s.Generate(ctx)
	require.NoError(t, err)

	sum, err := s.LastReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReportSummary{Name: "Field_Report_2025-01-01.xlsx", At: fixedNow, Unreadable: 1}, sum)

	raw, err := meta.Get(ctx, MetaLastReportUnreadable)
	require.NoError(t, err)
	assert.Equal(t, "1", string(raw))
}

func TestReport_NoMetadataRepository(t *testing.T) {
	s := newReport(records.NewMemoryRepository(), nil, logging.Discard())
	_, err := s.LastReport(context.Background())
	assert.ErrorIs(t, err, common.ErrNotFound)
}
