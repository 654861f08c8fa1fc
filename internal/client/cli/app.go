package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/fieldkeeper/internal/auth"
	"github.com/dmitrijs2005/fieldkeeper/internal/client/codec"
	"github.com/dmitrijs2005/fieldkeeper/internal/client/config"
	"github.com/dmitrijs2005/fieldkeeper/internal/client/models"
	"github.com/dmitrijs2005/fieldkeeper/internal/client/services"
	"github.com/dmitrijs2005/fieldkeeper/internal/client/sinks"
	"github.com/dmitrijs2005/fieldkeeper/internal/client/store"
	"github.com/dmitrijs2005/fieldkeeper/internal/cryptox"
	"github.com/dmitrijs2005/fieldkeeper/internal/logging"
)

type App struct {
	config    *config.Config
	log       logging.Logger
	auth      *services.AuthService
	submitter *services.SubmissionService
	reports   *services.ReportService
	sinks     sinks.Multi
	store     *store.Store
	reader    *bufio.Reader
	out       io.Writer

	// busy is held while a command writes to the store; Close waits for it.
	busy   sync.Mutex
	closed bool
}

var errClosed = errors.New("store is closed")

// NewApp opens the configured store and wires the services on top of it.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	st, err := store.Open(ctx, c.StoreDriver, c.StoreDSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if st.Quarantined != "" {
		log.Warn(ctx, "unreadable store moved aside, starting empty", "path", st.Quarantined)
	}

	app, err := newApp(ctx, c, log, st)
	if err != nil {
		st.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, log logging.Logger, st *store.Store) (*App, error) {
	var keys cryptox.KeyProvider
	if c.KeyFile != "" {
		keys = cryptox.NewFileKeyProvider(c.KeyFile, c.KDFSalt)
	} else {
		keys = cryptox.NewPassphraseKeyProvider(c.Passphrase, c.KDFSalt)
	}
	cdc := codec.New(keys)

	dir, err := buildDirectory(c.Users)
	if err != nil {
		return nil, err
	}

	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	local, err := sinks.NewLocalSink(c.ReportDir)
	if err != nil {
		return nil, fmt.Errorf("report dir: %w", err)
	}
	out := sinks.Multi{local}
	if c.S3Enabled() {
		s3sink, err := sinks.NewS3Sink(ctx, sinks.S3Options{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			Prefix:       "reports",
		})
		if err != nil {
			return nil, fmt.Errorf("s3 sink: %w", err)
		}
		out = append(out, s3sink)
	}
	if c.UploadURL != "" {
		httpSink, err := sinks.NewHTTPSink(c.UploadURL, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, httpSink)
	}

	return &App{
		config:    c,
		log:       log,
		auth:      services.NewAuthService(dir, auth.NewIssuer([]byte(c.TokenSecret), c.TokenTTL), log),
		submitter: services.NewSubmissionService(cdc, st.Records, log),
		reports: services.NewReportService(cdc, st.Records, st.Metadata, log,
			services.WithLocation(loc),
			services.WithPrefix(c.ReportPrefix),
		),
		sinks:  out,
		store:  st,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func buildDirectory(users []config.UserConfig) (*auth.Directory, error) {
	entries := make([]auth.User, 0, len(users))
	for _, u := range users {
		hash := []byte(u.PasswordHash)
		if len(hash) == 0 {
			h, err := auth.HashPassword(u.Password)
			if err != nil {
				return nil, fmt.Errorf("user %s: %w", u.Username, err)
			}
			hash = h
		}
		entries = append(entries, auth.User{
			Identity:     models.Identity{ID: u.ID, Name: u.Name, Role: u.Role},
			Username:     u.Username,
			PasswordHash: hash,
		})
	}
	return auth.NewDirectory(entries)
}

// Run starts the REPL and blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	a.println("Welcome to fieldkeeper (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}

// Close waits for a store write in progress, then closes the store. It is
// safe to call more than once.
func (a *App) Close() error {
	a.busy.Lock()
	defer a.busy.Unlock()

	if a.closed || a.store == nil {
		a.closed = true
		return nil
	}
	a.closed = true
	return a.store.Close()
}

// storeOp runs fn unless the store is closed. Close blocks until fn returns.
func (a *App) storeOp(fn func() error) error {
	a.busy.Lock()
	defer a.busy.Unlock()

	if a.closed {
		return errClosed
	}
	return fn()
}

func (a *App) isLoggedIn() bool {
	return a.auth.Authenticated()
}

func (a *App) status() string {
	if id, ok := a.auth.Current(); ok {
		return fmt.Sprintf("(%s)", id.Name)
	}
	return ""
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
