package services

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/dmitrijs2005/fieldkeeper/internal/client/models"
	"github.com/dmitrijs2005/fieldkeeper/internal/client/repositories/records"
	"github.com/dmitrijs2005/fieldkeeper/internal/common"
	"github.com/dmitrijs2005/fieldkeeper/internal/logging"
	"github.com/google/uuid"
)

// Encrypter turns a field record into envelope ciphertext.
type Encrypter interface {
	Encrypt(ctx context.Context, record models.FieldRecord) (string, error)
}

// Ack confirms that a record was persisted.
type Ack struct {
	EnvelopeID string
	Category   models.Category
	Timestamp  time.Time
}

type SubmissionService struct {
	codec   Encrypter
	records records.Repository
	log     logging.Logger
	now     func() time.Time
}

type SubmissionOption func(*SubmissionService)

// WithClock replaces time.Now as the source of submission timestamps.
func WithClock(now func() time.Time) SubmissionOption {
	return func(s *SubmissionService) { s.now = now }
}

func NewSubmissionService(codec Encrypter, recs records.Repository, log logging.Logger, opts ...SubmissionOption) *SubmissionService {
	s := &SubmissionService{codec: codec, records: recs, log: log, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Submit validates, encrypts and appends one record. A validation or
// encryption failure leaves the record log untouched.
func (s *SubmissionService) Submit(ctx context.Context, category models.Category, record models.FieldRecord) (Ack, error) {
	if err := s.validate(category, record); err != nil {
		s.log.Warn(ctx, "submission rejected", "category", category, "error", err)
		return Ack{}, err
	}

	if record.GetTimestamp().IsZero() {
		record.SetTimestamp(s.now().UTC())
	}

	ciphertext, err := s.codec.Encrypt(ctx, record)
	if err != nil {
		s.log.Error(ctx, "encryption failed", "category", category, "error", err)
		return Ack{}, fmt.Errorf("encrypt %s record: %w", category, err)
	}

	env := models.Envelope{
		ID:         uuid.NewString(),
		Ciphertext: ciphertext,
		Timestamp:  record.GetTimestamp(),
		EmployeeID: record.GetEmployeeID(),
	}

	if err := s.records.Append(ctx, category, env); err != nil {
		s.log.Error(ctx, "append failed", "category", category, "envelope_id", env.ID, "error", err)
		return Ack{}, fmt.Errorf("append %s record: %w", category, err)
	}

	s.log.Info(ctx, "record submitted", "category", category, "envelope_id", env.ID)

	return Ack{EnvelopeID: env.ID, Category: category, Timestamp: env.Timestamp}, nil
}

func (s *SubmissionService) validate(category models.Category, record models.FieldRecord) error {
	if _, err := models.ParseCategory(string(category)); err != nil {
		v := &common.ValidationError{}
		v.Add("category", fmt.Sprintf("unknown category %q", category))
		return v
	}
	if isNil(record) {
		v := &common.ValidationError{}
		v.Add("record", "is required")
		return v
	}
	if record.Category() != category {
		v := &common.ValidationError{}
		v.Add("category", fmt.Sprintf("record of kind %s submitted as %s", record.Category(), category))
		return v
	}
	return record.Validate()
}

func isNil(record models.FieldRecord) bool {
	if record == nil {
		return true
	}
	rv := reflect.ValueOf(record)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
