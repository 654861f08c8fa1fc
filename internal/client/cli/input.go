package cli

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/fieldkeeper/internal/client/models"
	"golang.org/x/term"
)

// test seams for terminal access
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// MaxPhotoSize caps the photo file read from disk.
const MaxPhotoSize = 10 << 20

// GetSimpleText prints a prompt to w and reads one line from reader. If EOF
// occurs after some input was read, the partial line is returned.
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword reads a password without echo when stdin is a terminal and
// falls back to a plain line read otherwise.
//
// The returned byte slice should be wiped by the caller when no longer needed.
func GetPassword(reader *bufio.Reader, w io.Writer) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		s, err := GetSimpleText(reader, "Enter password", w)
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	}

	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// ParseFloat accepts a decimal comma as well as a point.
func ParseFloat(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, errors.New("a number is required")
	}
	return strconv.ParseFloat(s, 64)
}

// ParseLocation reads "lat,lon" (or "lat lon"). Blank input means no fix.
func ParseLocation(s string) (*models.Location, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	if len(parts) != 2 {
		return nil, fmt.Errorf("expected \"latitude,longitude\", got %q", s)
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}
	return &models.Location{Latitude: lat, Longitude: lon}, nil
}

// ParseYesNo maps y/yes/true/1 and n/no/false/0, case-insensitively.
func ParseYesNo(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1":
		return true, nil
	case "n", "no", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("answer yes or no, got %q", s)
}

// ReadPhoto loads an image file as a data URL, the format the camera
// capture produces. A blank path means no photo.
func ReadPhoto(path string) (*string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxPhotoSize+1))
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	if len(data) > MaxPhotoSize {
		return nil, fmt.Errorf("photo is larger than %d bytes", MaxPhotoSize)
	}
	if len(data) == 0 {
		return nil, errors.New("photo file is empty")
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("photo is not an image (%s)", mime)
	}

	url := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
	return &url, nil
}
