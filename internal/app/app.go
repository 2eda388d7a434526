package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sbs-go/internal/config"
	"sbs-go/internal/database"
	"sbs-go/internal/database/migrations"
	"sbs-go/internal/encryption"
	"sbs-go/internal/filestore"
	"sbs-go/internal/fs"
	"sbs-go/internal/model"
	"sbs-go/internal/processing"
	"sbs-go/internal/sbs"
)

// SBSApp is the application layer between the CLI and the sbs Service.
// It constructs all dependencies from config, acts as the configured user,
// exposes the operations that take raw file paths, and on Close waits for
// queued processing before releasing the database.
type SBSApp struct {
	cfg       *config.Config
	store     *database.SQLiteStore
	processor *processing.Processor
	service   *sbs.Service
	finder    *fs.Finder
	logger    sbs.Logger
	op        *Operation
	logFile   *os.File
	cancel    context.CancelFunc
}

// NewSBSApp creates a fully wired SBSApp from the given config.
// operation names the CLI command being run (e.g. "ImportDocument").
// The caller must call Close when done.
func NewSBSApp(cfg *config.Config, operation string) (*SBSApp, error) {
	if strings.TrimSpace(cfg.UserID) == "" {
		return nil, fmt.Errorf("no user configured")
	}

	clock := sbs.RealClock{}
	op := NewOperation(operation, clock.Now())

	slogger, logFile, err := newLogger(cfg.LogDir, op.ID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	store, err := database.NewStoreFromConfig(cfg.Database)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating database: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	fail := func(err error) (*SBSApp, error) {
		cancel()
		store.Close()
		logFile.Close()
		return nil, err
	}

	backend, err := filestore.NewBackendFromConfig(ctx, cfg.Files)
	if err != nil {
		return fail(fmt.Errorf("creating file store: %w", err))
	}
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fail(fmt.Errorf("creating encryptor: %w", err))
	}

	processor, err := processing.NewProcessor(store.Jobs(), cfg.Processing, logger, clock, sbs.UUIDGenerator{})
	if err != nil {
		return fail(fmt.Errorf("creating processor: %w", err))
	}

	svc := sbs.NewService(store.Documents(), store.Memory(), filestore.NewStore(backend, enc),
		processor, logger, clock, sbs.UUIDGenerator{})
	svc.SetMinConfidence(cfg.Memory.Threshold())
	processor.Start(ctx, svc.ProcessDocument, svc.FailDocument)

	return &SBSApp{
		cfg:       cfg,
		store:     store,
		processor: processor,
		service:   svc,
		finder:    fs.NewFinder(cfg.Import.Ignore),
		logger:    logger,
		op:        op,
		logFile:   logFile,
		cancel:    cancel,
	}, nil
}

// UserID returns the user every operation acts as.
func (a *SBSApp) UserID() string {
	return a.cfg.UserID
}

// Service exposes the service for operations that need no path handling.
func (a *SBSApp) Service() *sbs.Service {
	return a.service
}

// ImportPath imports the file at rawPath, or every supported file of the
// directory at rawPath (and its subdirectories when recursive is set). name
// applies to a single file only. A file that fails to import does not stop
// the others; the failures are returned joined.
func (a *SBSApp) ImportPath(rawPath, name, sourceLang, targetLang string, recursive bool) ([]*model.Document, error) {
	files, err := a.finder.Find(rawPath, recursive)
	if err != nil {
		return nil, err
	}
	if len(files) > 1 {
		name = ""
	}

	var docs []*model.Document
	var errs []error
	for _, p := range files {
		doc, err := a.ImportFile(p, name, sourceLang, targetLang)
		if err != nil {
			a.logger.Warn("import failed", "path", p, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		docs = append(docs, doc)
	}
	return docs, errors.Join(errs...)
}

// ImportFile reads the file at rawPath and imports it. Processing runs in
// the background and finishes before Close returns.
func (a *SBSApp) ImportFile(rawPath, name, sourceLang, targetLang string) (*model.Document, error) {
	p, isDir, err := a.finder.Resolve(rawPath)
	if err != nil {
		return nil, err
	}
	if isDir {
		return nil, model.NewValidation("path", "%s is a directory", p)
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return a.service.ImportDocument(context.Background(), a.cfg.UserID, sbs.ImportRequest{
		Name:           name,
		FileName:       filepath.Base(p),
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
		Content:        f,
	})
}

// ImportTMXFile adds the translation units of a TMX file to the memory.
func (a *SBSApp) ImportTMXFile(rawPath, sourceLang, targetLang string, confidence *float64) (int, error) {
	f, err := os.Open(rawPath)
	if err != nil {
		return 0, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return a.service.ImportTMX(context.Background(), a.cfg.UserID, f, sourceLang, targetLang, confidence)
}

// WriteOriginal writes the stored original of a document to w, or to
// rawPath when w is nil.
func (a *SBSApp) WriteOriginal(documentID, rawPath string, w io.Writer) error {
	if w == nil {
		f, err := os.Create(rawPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	_, err := a.service.OriginalFile(context.Background(), a.cfg.UserID, documentID, w)
	return err
}

// Jobs returns the processing jobs of an owned document, oldest first.
func (a *SBSApp) Jobs(documentID string) ([]*model.ProcessingJob, error) {
	if _, err := a.service.GetDocument(context.Background(), a.cfg.UserID, documentID); err != nil {
		return nil, err
	}
	return a.store.Jobs().ListJobs(context.Background(), documentID)
}

// DBStatus reports the schema version of the database.
func (a *SBSApp) DBStatus() (migrations.Status, string, error) {
	st, err := migrations.ReadStatus(a.store.DB())
	return st, a.store.Path(), err
}

// Fail marks the current operation as failed for the closing log line.
func (a *SBSApp) Fail(err error) {
	a.op.Fail(err)
}

// Close drains the processor, then closes the database and the log file.
func (a *SBSApp) Close() error {
	a.processor.Close()
	a.cancel()

	a.op.Finish(sbs.RealClock{}.Now())
	a.logger.Info("operation finished", "operation", a.op.Name, "status", a.op.Status, "elapsed", a.op.Elapsed())

	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
