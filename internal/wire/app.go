package wire

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/mithrel/lessonplan/internal/assistant"
	"github.com/mithrel/lessonplan/internal/client"
	"github.com/mithrel/lessonplan/internal/config"
	"github.com/mithrel/lessonplan/internal/controller"
	"github.com/mithrel/lessonplan/internal/db"
	"github.com/mithrel/lessonplan/internal/ingest"
	"github.com/mithrel/lessonplan/internal/keys"
)

// App aggregates the major services for easy injection.
type App struct {
	Cfg       *viper.Viper
	Log       *log.Logger
	Store     *db.Store
	Client    *client.Client
	Session   *controller.Session
	Assistant *assistant.Assistant
	Ingester  *ingest.Ingester
}

// BuildApp wires dependencies with the provided config. Logs go to
// stderr so they never mix with rendered output.
func BuildApp(ctx context.Context, v *viper.Viper) (*App, error) {
	return BuildAppWithLog(ctx, v, os.Stderr)
}

// BuildAppWithLog is BuildApp with an explicit log destination.
func BuildAppWithLog(ctx context.Context, v *viper.Viper, logOut io.Writer) (*App, error) {
	if err := config.CheckConfigValidity(v); err != nil {
		return nil, err
	}
	logger := log.New(logOut, "lessonplan ", log.LstdFlags)

	dbPath := config.ResolveDBPath(v)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	store, err := db.Open(ctx, "sqlite://"+dbPath)
	if err != nil {
		return nil, err
	}

	token, err := keys.Resolve(v)
	if err != nil {
		logger.Printf("auth: token lookup failed: %v", err)
	}
	timeout, _ := time.ParseDuration(v.GetString("request_timeout"))
	cl := client.New(v.GetString("server_url"), token, timeout)

	session := controller.NewSession(cl,
		controller.WithRecorder(db.Recorder{Lessons: store.Lessons}),
		controller.WithLogger(logger),
	)

	asst := assistant.New(store.Chunks, v.GetInt("retrieval.max_chunks"), logger)
	ing, err := ingest.New(store.Chunks, v.GetInt("ingest.chunk_size"), v.GetInt("ingest.chunk_overlap"), logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &App{
		Cfg:       v,
		Log:       logger,
		Store:     store,
		Client:    cl,
		Session:   session,
		Assistant: asst,
		Ingester:  ing,
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	return a.Store.Close()
}
