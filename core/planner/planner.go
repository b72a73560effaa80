// Package planner composes the movement planning screen: it owns the selection state,
// pre-fills the movement form, runs the capacity check before saving and produces reports.
// Selection state is shared by every client; the planner serves a single planning desk.
package planner

import (
	"bytes"
	"context"
	"io"
	"net/mail"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/campusmove/movplan/core"
	"github.com/campusmove/movplan/core/bus"
	"github.com/campusmove/movplan/core/capacity"
	"github.com/campusmove/movplan/core/class"
	"github.com/campusmove/movplan/core/export"
	"github.com/campusmove/movplan/core/movement"
)

// Toast messages
const (
	MsgAdded        = "Movement added successfully"
	MsgAddFailed    = "Failed to add movement"
	MsgUpdated      = "Movement updated successfully"
	MsgUpdateFailed = "Failed to update movement"
	MsgDeleted      = "Movement deleted successfully"
	MsgDeleteFailed = "Failed to delete movement"
	MsgExported     = "Report exported successfully"
	MsgExportFailed = "Failed to export report"
	MsgMailed       = "Report sent successfully"
	MsgMailFailed   = "Failed to send report"

	ToastSuccess = "success"
	ToastError   = "error"
)

var (
	nowFunc = time.Now // mockable

	ErrNoMailService = errors.New("email is not configured")
)

type (
	Toast struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}

	Selection struct {
		ClassID string `json:"class_id"`
		BusID   string `json:"bus_id"`
		EditID  string `json:"edit_id"`
	}

	SubmitResult struct {
		Movement movement.Movement `json:"movement"`
		Warning  string            `json:"warning,omitempty"`
		Toast    Toast             `json:"toast"`
	}

	Options struct {
		// BlockOverbooked refuses submissions that overbook their day instead of only warning.
		BlockOverbooked bool
	}

	Planner struct {
		Stores

		validate *validator.Validate
		logger   core.Logger
		mailSvc  core.EmailService
		opts     Options

		mu  sync.RWMutex
		sel Selection
	}
)

func success(msg string) Toast { return Toast{Message: msg, Type: ToastSuccess} }
func failure(msg string) Toast { return Toast{Message: msg, Type: ToastError} }

// New returns a planner over stores. mailSvc may be nil, which disables MailExport.
func New(stores Stores, validate *validator.Validate, logger core.Logger, mailSvc core.EmailService, opts Options) *Planner {
	return &Planner{
		Stores:   stores,
		validate: validate,
		logger:   logger,
		mailSvc:  mailSvc,
		opts:     opts,
	}
}

// =========================================================================
// Selection

func (p *Planner) Selection() Selection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sel
}

// SelectClass pre-fills the form with a class. An empty id clears the selection.
func (p *Planner) SelectClass(id string) error {
	if id != "" {
		if _, ok := p.Classes.Get(id); !ok {
			return class.ErrNotFound
		}
	}
	p.mu.Lock()
	p.sel.ClassID = id
	p.mu.Unlock()
	return nil
}

// SelectBus pre-fills the form with a bus. An empty id clears the selection.
func (p *Planner) SelectBus(id string) error {
	if id != "" {
		if _, ok := p.Buses.Get(id); !ok {
			return bus.ErrNotFound
		}
	}
	p.mu.Lock()
	p.sel.BusID = id
	p.mu.Unlock()
	return nil
}

// BeginEdit loads a movement into the form, dropping any class or bus selection.
func (p *Planner) BeginEdit(id string) error {
	if _, ok := p.Movements.Get(id); !ok {
		return movement.ErrNotFound
	}
	p.mu.Lock()
	p.sel = Selection{EditID: id}
	p.mu.Unlock()
	return nil
}

func (p *Planner) CancelEdit() {
	p.mu.Lock()
	p.sel.EditID = ""
	p.mu.Unlock()
}

// SetSelection applies sel as a whole: the edit record, then the class and bus selected on top of it.
func (p *Planner) SetSelection(sel Selection) error {
	if sel.EditID != "" {
		if err := p.BeginEdit(sel.EditID); err != nil {
			return err
		}
	} else {
		p.CancelEdit()
	}
	if err := p.SelectClass(sel.ClassID); err != nil {
		return err
	}
	return p.SelectBus(sel.BusID)
}

// Draft returns the movement form as it should be shown: the record being edited,
// overridden by the selected class and bus.
func (p *Planner) Draft() movement.Form {
	sel := p.Selection()

	var f movement.Form
	if sel.EditID != "" {
		if m, ok := p.Movements.Get(sel.EditID); ok {
			f = movement.FormOf(m)
		}
	}
	if cls, ok := p.Classes.Get(sel.ClassID); ok && sel.ClassID != "" {
		f.ClassName = cls.Name
		f.ClassSize = cls.Size
	}
	if b, ok := p.Buses.Get(sel.BusID); ok && sel.BusID != "" {
		f.BusType = b.Type
		f.Capacity = b.Capacity
	}
	return f
}

// =========================================================================
// Movements

// resolve fills the class size and bus capacity snapshots from the current lists when they are missing.
func (p *Planner) resolve(f *movement.Form) {
	f.Clean()
	if f.ClassSize == 0 && f.ClassName != "" {
		if cls, ok := class.FindByName(p.Classes.Items(), f.ClassName); ok {
			f.ClassSize = cls.Size
		}
	}
	if f.Capacity == 0 && f.BusType != "" {
		if b, ok := bus.FindByType(p.Buses.Items(), f.BusType); ok {
			f.Capacity = b.Capacity
		}
	}
}

// CheckCapacity runs the pre-commit capacity check for classSize more students on day.
// excludeID is the movement being edited, if any.
func (p *Planner) CheckCapacity(day string, classSize int, excludeID string) capacity.CheckResult {
	return capacity.Check(p.Movements.Items(), p.Buses.Items(), day, classSize, excludeID)
}

// Submit adds a movement, or replaces movement id when id is not empty.
// Overbooking only produces a warning unless Options.BlockOverbooked is set.
// Validation errors are returned as is, with no toast.
func (p *Planner) Submit(ctx context.Context, id string, f movement.Form) (SubmitResult, error) {
	p.resolve(&f)
	if err := f.Validate(p.validate); err != nil {
		return SubmitResult{}, err
	}

	check := p.CheckCapacity(f.Day, f.ClassSize, id)
	res := SubmitResult{Warning: check.Warning}
	if !check.OK() && p.opts.BlockOverbooked {
		return res, core.NewValidationError(errors.New(check.Warning), core.FieldError{Field: "classSize", Error: check.Warning})
	}

	if id == "" {
		m, err := p.Movements.Add(ctx, f)
		if err != nil {
			res.Toast = failure(MsgAddFailed)
			return res, err
		}
		res.Movement, res.Toast = m, success(MsgAdded)

		p.mu.Lock()
		p.sel.ClassID, p.sel.BusID = "", ""
		p.mu.Unlock()
		return res, nil
	}

	m, err := p.Movements.Edit(ctx, id, f)
	if err != nil {
		res.Toast = failure(MsgUpdateFailed)
		return res, err
	}
	res.Movement, res.Toast = m, success(MsgUpdated)

	p.mu.Lock()
	if p.sel.EditID == id {
		p.sel.EditID = ""
	}
	p.mu.Unlock()
	return res, nil
}

func (p *Planner) Delete(ctx context.Context, id string) (Toast, error) {
	if err := p.Movements.Remove(ctx, id); err != nil {
		return failure(MsgDeleteFailed), err
	}
	p.mu.Lock()
	if p.sel.EditID == id {
		p.sel.EditID = ""
	}
	p.mu.Unlock()
	return success(MsgDeleted), nil
}

func (p *Planner) WeeklySummary() []capacity.DaySummary {
	return capacity.Week(p.Movements.Items(), p.Buses.Items())
}

// =========================================================================
// Reports

// Export writes every movement to w.
func (p *Planner) Export(w io.Writer, format export.Format) (Toast, error) {
	if err := export.Write(w, format, p.Movements.Items()); err != nil {
		p.logger.Error("exporting movements", err)
		return failure(MsgExportFailed), err
	}
	return success(MsgExported), nil
}

// ExportFilename is the download name of a report exported now.
func (p *Planner) ExportFilename(format export.Format) string {
	return export.Filename(format, nowFunc())
}

// MailExport emails the report to every address in to.
func (p *Planner) MailExport(to []mail.Address, format export.Format) (Toast, error) {
	if p.mailSvc == nil {
		return failure(MsgMailFailed), ErrNoMailService
	}
	if len(to) == 0 {
		return failure(MsgMailFailed), core.NewValidationError(nil, core.FieldError{Field: "to", Error: "this field is required"})
	}

	buf := new(bytes.Buffer)
	if err := export.Write(buf, format, p.Movements.Items()); err != nil {
		p.logger.Error("exporting movements", err)
		return failure(MsgMailFailed), err
	}

	msg := &core.EmailMessage{
		To:      to,
		Subject: "Movement schedule",
		BodyStr: "Please find attached the student movement schedule.",
	}
	if err := msg.Attach(buf, p.ExportFilename(format), format.ContentType()); err != nil {
		return failure(MsgMailFailed), errors.Wrap(err, "attaching report")
	}
	p.mailSvc.SendMessages(msg)
	return success(MsgMailed), nil
}
