package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/fieldkeeper/internal/client/codec"
	"github.com/dmitrijs2005/fieldkeeper/internal/client/models"
	"github.com/dmitrijs2005/fieldkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fieldkeeper/internal/client/repositories/records"
	"github.com/dmitrijs2005/fieldkeeper/internal/common"
	"github.com/dmitrijs2005/fieldkeeper/internal/logging"
	"github.com/dmitrijs2005/fieldkeeper/internal/report"
)

// Metadata keys written after every generated report.
const (
	MetaLastReportName       = "last_report_name"
	MetaLastReportAt         = "last_report_at"
	MetaLastReportUnreadable = "last_report_unreadable"
)

const DefaultReportPrefix = "Field_Report"

// Decrypter turns envelope ciphertext back into a field record.
type Decrypter interface {
	Decrypt(ctx context.Context, category models.Category, ciphertext string) (models.FieldRecord, error)
}

// Report is a generated workbook plus what went into it.
type Report struct {
	Name string
	Data []byte

	// Attendance and ShopVisits count the data rows of each sheet.
	Attendance int
	ShopVisits int

	// Unreadable counts envelopes skipped because they failed to decrypt.
	Unreadable int
	// Degraded lists categories whose log could not be read at all.
	Degraded []models.Category

	GeneratedAt time.Time
}

// ReportSummary is the record kept about the most recent report.
type ReportSummary struct {
	Name       string
	At         time.Time
	Unreadable int
}

type ReportService struct {
	codec   Decrypter
	records records.Repository
	meta    metadata.Repository
	log     logging.Logger

	loc    *time.Location
	prefix string
	now    func() time.Time
}

type ReportOption func(*ReportService)

func WithReportClock(now func() time.Time) ReportOption {
	return func(s *ReportService) { s.now = now }
}

// WithLocation sets the timezone used for row dates and the file name.
func WithLocation(loc *time.Location) ReportOption {
	return func(s *ReportService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithPrefix(prefix string) ReportOption {
	return func(s *ReportService) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewReportService builds the generator. meta may be nil, in which case no
// report history is kept.
func NewReportService(dec Decrypter, recs records.Repository, meta metadata.Repository, log logging.Logger, opts ...ReportOption) *ReportService {
	s := &ReportService{
		codec:   dec,
		records: recs,
		meta:    meta,
		log:     log,
		loc:     time.Local,
		prefix:  DefaultReportPrefix,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Generate reads both record logs and renders them into a two-sheet
// workbook. Envelopes that fail to decrypt are skipped and counted; an
// unreadable log contributes an empty sheet. Only a missing key or a
// storage error other than degradation aborts the report.
func (s *ReportService) Generate(ctx context.Context) (*Report, error) {
	now := s.now().In(s.loc)
	rep := &Report{
		Name:        report.FileName(s.prefix, now),
		GeneratedAt: now,
	}

	attendance, err := s.rows(ctx, models.CategoryAttendance, rep)
	if err != nil {
		return nil, err
	}
	visits, err := s.rows(ctx, models.CategoryShopVisit, rep)
	if err != nil {
		return nil, err
	}
	rep.Attendance, rep.ShopVisits = len(attendance), len(visits)

	rep.Data, err = report.Build([]report.Sheet{
		{Name: report.AttendanceSheetName, Columns: report.AttendanceColumns, Rows: attendance},
		{Name: report.ShopVisitSheetName, Columns: report.ShopVisitColumns, Rows: visits},
	}, report.Properties{Title: rep.Name, Created: now})
	if err != nil {
		return nil, fmt.Errorf("build workbook: %w", err)
	}

	if rep.Unreadable > 0 {
		s.log.Warn(ctx, "report generated with unreadable records", "report", rep.Name, "unreadable", rep.Unreadable)
	}
	s.log.Info(ctx, "report generated", "report", rep.Name,
		"attendance_rows", rep.Attendance, "shop_visit_rows", rep.ShopVisits)

	s.remember(ctx, rep)

	return rep, nil
}

func (s *ReportService) rows(ctx context.Context, category models.Category, rep *Report) ([][]any, error) {
	envs, err := s.records.ReadAll(ctx, category)
	switch {
	case errors.Is(err, common.ErrStorageDegraded):
		s.log.Warn(ctx, "record log unreadable, sheet left empty", "category", category, "error", err)
		rep.Degraded = append(rep.Degraded, category)
		return [][]any{}, nil
	case err != nil:
		return nil, fmt.Errorf("read %s records: %w", category, err)
	}

	rows := make([][]any, 0, len(envs))
	for _, env := range envs {
		rec, err := s.codec.Decrypt(ctx, category, env.Ciphertext)
		if err != nil {
			var de *codec.DecryptError
			if errors.As(err, &de) && de.Stage == codec.StageKey {
				return nil, fmt.Errorf("report key unavailable: %w", err)
			}
			s.log.Warn(ctx, "skipping unreadable record", "category", category, "envelope_id", env.ID, "error", err)
			rep.Unreadable++
			continue
		}

		switch r := rec.(type) {
		case *models.AttendanceRecord:
			rows = append(rows, report.AttendanceRow(r, s.loc))
		case *models.ShopVisitRecord:
			rows = append(rows, report.ShopVisitRow(r, s.loc))
		default:
			s.log.Warn(ctx, "skipping record of unexpected kind", "category", category, "envelope_id", env.ID)
			rep.Unreadable++
		}
	}
	return rows, nil
}

// remember stores the report summary. Failures are logged only; the report
// itself is already built.
func (s *ReportService) remember(ctx context.Context, rep *Report) {
	if s.meta == nil {
		return
	}
	values := []struct {
		key   string
		value string
	}{
		{MetaLastReportName, rep.Name},
		{MetaLastReportAt, rep.GeneratedAt.UTC().Format(time.RFC3339)},
		{MetaLastReportUnreadable, strconv.Itoa(rep.Unreadable)},
	}
	for _, v := range values {
		if err := s.meta.Set(ctx, v.key, []byte(v.value)); err != nil {
			s.log.Warn(ctx, "could not record report history", "key", v.key, "error", err)
			return
		}
	}
}

// LastReport returns the summary of the most recent report, or
// common.ErrNotFound when none was generated yet.
func (s *ReportService) LastReport(ctx context.Context) (ReportSummary, error) {
	if s.meta == nil {
		return ReportSummary{}, common.ErrNotFound
	}

	name, err := s.meta.Get(ctx, MetaLastReportName)
	if err != nil {
		return ReportSummary{}, err
	}
	sum := ReportSummary{Name: string(name)}

	if at, err := s.meta.Get(ctx, MetaLastReportAt); err == nil {
		if t, err := time.Parse(time.RFC3339, string(at)); err == nil {
			sum.At = t.In(s.loc)
		}
	}
	if n, err := s.meta.Get(ctx, MetaLastReportUnreadable); err == nil {
		sum.Unreadable, _ = strconv.Atoi(string(n))
	}
	return sum, nil
}
