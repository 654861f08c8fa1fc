package services

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/dmitrijs2005/fieldkeeper/internal/client/codec"
	"github.com/dmitrijs2005/fieldkeeper/internal/client/models"
	"github.com/dmitrijs2005/fieldkeeper/internal/cryptox"
	"github.com/dmitrijs2005/fieldkeeper/internal/logging"
)

type staticKeys struct {
	key []byte
	err error
}

func (s staticKeys) Key(context.Context) ([]byte, error) { return s.key, s.err }

func testKey() []byte {
	key := make([]byte, cryptox.KeySize)
	for i := range key {
		key[i] = byte(i * 7)
	}
	return key
}

func newCodec() *codec.Codec {
	return codec.New(staticKeys{key: testKey()})
}

func bufferedLogger(t *testing.T) (logging.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return logging.NewSlogLogger(slog.New(h)), &buf
}

func attendance() *models.AttendanceRecord {
	return &models.AttendanceRecord{
		EmployeeID:   "2",
		EmployeeName: "Test Employee",
		Location:     &models.Location{Latitude: 12.97, Longitude: 77.59},
		Kilometers:   42.5,
	}
}

func shopVisit() *models.ShopVisitRecord {
	return &models.ShopVisitRecord{
		EmployeeID:      "2",
		EmployeeName:    "Test Employee",
		OwnerName:       "Shop Owner",
		OwnerEmail:      "a@b.com",
		VisitSuccessful: true,
	}
}
