// Package testutil builds fully wired in-memory components for tests.
package testutil

import (
	"context"
	"net/mail"
	"path/filepath"
	"sync"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/campusmove/movplan/core"
	"github.com/campusmove/movplan/core/bus"
	"github.com/campusmove/movplan/core/class"
	"github.com/campusmove/movplan/core/movement"
	"github.com/campusmove/movplan/core/planner"
	"github.com/campusmove/movplan/storage"
	"github.com/campusmove/movplan/storage/docstore/memdoc"
	"github.com/campusmove/movplan/storage/localstore"
)

// Logger records what is logged instead of printing it.
type Logger struct {
	mu       sync.Mutex
	Messages []string
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(msg string) {
	l.mu.Lock()
	l.Messages = append(l.Messages, msg)
	l.mu.Unlock()
}

func (l *Logger) Debug(msg string, _ ...interface{}) { l.log(msg) }
func (l *Logger) Info(msg string, _ ...interface{})  { l.log(msg) }
func (l *Logger) Warn(msg string, _ ...interface{})  { l.log(msg) }
func (l *Logger) Error(msg string, _ ...interface{}) { l.log(msg) }
func (l *Logger) Fatal(msg string, _ ...interface{}) { l.log(msg) }

func (l *Logger) Logged() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.Messages...)
}

// NewValidator returns a validator with every custom tag registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	movement.InitValidators(validate, translator)
	return validate, translator
}

func Config(t *testing.T) *core.Config {
	return &core.Config{
		AppName:          "Student Movement Plan",
		Env:              "TEST",
		Debug:            true,
		TestMode:         true,
		DefaultFromEmail: mail.Address{Name: "Student Movement Plan", Address: "noreply@localhost"},
		Storage: core.StorageConfig{
			Documents: core.DocumentsMemory,
			Classes:   core.ClassesDocument,
			LocalPath: filepath.Join(t.TempDir(), "localstorage.json"),
		},
	}
}

// Env is a planner over an in-memory document store and a temporary local store.
type Env struct {
	Conf      *core.Config
	Validate  *validator.Validate
	Logger    *Logger
	Repos     *storage.Repositories
	Services  planner.Services
	Stores    planner.Stores
	Planner   *planner.Planner
	MailSvc   core.EmailService
	Translate ut.Translator
}

// NewEnv wires every layer. mailSvc may be nil.
func NewEnv(t *testing.T, mailSvc core.EmailService, opts ...planner.Options) *Env {
	t.Helper()
	conf := Config(t)
	validate, translator := NewValidator()
	logger := new(Logger)

	local, err := localstore.Open(conf.Storage.LocalPath)
	if err != nil {
		t.Fatalf("localstore.Open() failed: %v", err)
	}
	repos, err := storage.NewRepositories(conf, memdoc.Open(), local)
	if err != nil {
		t.Fatalf("storage.NewRepositories() failed: %v", err)
	}

	svcs := repos.Services(validate)
	stores := planner.NewStores(svcs, logger)
	var o planner.Options
	if len(opts) > 0 {
		o = opts[0]
	}
	p := planner.New(stores, validate, logger, mailSvc, o)
	if err = p.Refresh(context.Background()); err != nil {
		t.Fatalf("planner.Refresh() failed: %v", err)
	}

	return &Env{
		Conf:      conf,
		Validate:  validate,
		Logger:    logger,
		Repos:     repos,
		Services:  svcs,
		Stores:    stores,
		Planner:   p,
		MailSvc:   mailSvc,
		Translate: translator,
	}
}

func (env *Env) AddClass(t *testing.T, name string, size int) class.Class {
	t.Helper()
	cls, err := env.Stores.Classes.Add(context.Background(), class.Form{Name: name, Size: size})
	if err != nil {
		t.Fatalf("AddClass() failed: %v", err)
	}
	return cls
}

func (env *Env) AddBus(t *testing.T, typ string, capacity int) bus.Bus {
	t.Helper()
	b, err := env.Stores.Buses.Add(context.Background(), bus.Form{Type: typ, Capacity: capacity})
	if err != nil {
		t.Fatalf("AddBus() failed: %v", err)
	}
	return b
}

func (env *Env) AddMovement(t *testing.T, day, className string, classSize int) movement.Movement {
	t.Helper()
	m, err := env.Stores.Movements.Add(context.Background(), movement.Form{
		Day:           day,
		ClassName:     className,
		ClassSize:     classSize,
		BusType:       "Coach",
		Capacity:      50,
		InCharge:      "Dr. X",
		InChargePhone: "+250700000000",
	})
	if err != nil {
		t.Fatalf("AddMovement() failed: %v", err)
	}
	return m
}
