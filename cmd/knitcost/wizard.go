package main

import (
	"bufio"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/myintmo/knitcost/internal/config"
	"github.com/myintmo/knitcost/internal/costing"
	"github.com/myintmo/knitcost/internal/db"
	"github.com/myintmo/knitcost/internal/errors"
	"github.com/myintmo/knitcost/internal/ops"
	"github.com/myintmo/knitcost/internal/photo"
	"github.com/myintmo/knitcost/internal/schema"
	"github.com/myintmo/knitcost/internal/wizard"
)

// control is a prompt-level navigation command.
type control int

const (
	ctrlNone control = iota
	ctrlBack
	ctrlQuit
	ctrlDiscard
)

// session drives one interactive wizard run. Input and output are
// injected so tests can script a full walk-through.
type session struct {
	db      *sql.DB
	cfg     *config.Config
	m       *wizard.Machine
	scanner *bufio.Scanner
	out     io.Writer
}

// runWizardNew starts a fresh wizard, overwriting any stored draft.
func runWizardNew(database *sql.DB, cfg *config.Config, in io.Reader, out io.Writer) error {
	m := wizard.New(db.NewDraftStore(database), cfg.CurrencySymbol)
	return newSession(database, cfg, m, in, out).run()
}

// runWizardResume continues the stored draft at its saved step, or
// starts fresh when the slot is empty.
func runWizardResume(database *sql.DB, cfg *config.Config, in io.Reader, out io.Writer) error {
	m, err := wizard.Resume(db.NewDraftStore(database), cfg.CurrencySymbol)
	if err != nil {
		return err
	}
	s := newSession(database, cfg, m, in, out)
	fmt.Fprintf(s.out, "Resuming at step %d of %d: %s\n", m.Index()+1, schema.Count(), m.Step().Title)
	return s.run()
}

func newSession(database *sql.DB, cfg *config.Config, m *wizard.Machine, in io.Reader, out io.Writer) *session {
	return &session{db: database, cfg: cfg, m: m, scanner: bufio.NewScanner(in), out: out}
}

// run loops over the step sequence until the record is committed, the
// session is quit (draft persists), or the draft is discarded.
func (s *session) run() error {
	fmt.Fprintln(s.out, "Enter a value, or: /back, /quit (keep draft), /discard")
	for {
		step := s.m.Step()
		switch step.Kind {
		case schema.KindStyleGroup:
			done, err := s.styleStep()
			if err != nil || done {
				return err
			}
		case schema.KindComputed:
			fmt.Fprintf(s.out, "\n[%d/%d] %s: %s\n",
				s.m.Index()+1, schema.Count(), step.Title, s.m.ComputedDisplay(step))
			if _, err := s.m.Advance(); err != nil {
				return err
			}
		case schema.KindPreview:
			done, err := s.previewStep()
			if err != nil || done {
				return err
			}
		default:
			done, err := s.fieldStep(step)
			if err != nil || done {
				return err
			}
		}
	}
}

// fieldStep prompts for one numeric entry field. Blank keeps the
// current value; any entered value is autosaved before validation so a
// rejected value survives a quit.
func (s *session) fieldStep(step schema.Step) (bool, error) {
	fmt.Fprintf(s.out, "\n[%d/%d] %s\n", s.m.Index()+1, schema.Count(), step.Title)
	if step.Hint != "" {
		fmt.Fprintf(s.out, "  %s\n", step.Hint)
	}

	raw, _ := s.m.Draft().Field(step.Field)
	line, ctrl, ok := s.prompt(fmt.Sprintf("%s [%s]", step.Title, displayRaw(raw)))
	if !ok || ctrl == ctrlQuit {
		return true, s.quit()
	}
	switch ctrl {
	case ctrlDiscard:
		return true, s.discard()
	case ctrlBack:
		s.m.Retreat()
		return false, nil
	}

	if line != "" {
		if err := s.m.SetField(step.Field, line); err != nil {
			return false, err
		}
	}
	if _, err := s.m.Advance(); err != nil {
		s.reject(err)
	}
	return false, nil
}

// styleStep prompts for the style sub-fields as one atomic unit, then
// validates the group.
func (s *session) styleStep() (bool, error) {
	d := s.m.Draft()
	fmt.Fprintf(s.out, "\n[%d/%d] Style details\n", s.m.Index()+1, schema.Count())

	prompts := []struct {
		label   string
		current string
		set     func(string) error
	}{
		{"Name", d.Name, func(v string) error { s.m.SetName(v); return nil }},
		{"Description", d.Description, func(v string) error { s.m.SetDescription(v); return nil }},
		{"Composition", d.Composition, func(v string) error { s.m.SetComposition(v); return nil }},
		{"Gauge (" + costing.GaugeOptions() + ")", gaugeLabel(d.Gauge), func(v string) error {
			g, err := costing.ParseGauge(v)
			if err != nil {
				return err
			}
			s.m.SetGauge(g)
			return nil
		}},
		{"Weight per piece (grams)", displayRaw(d.WeightGrams), func(v string) error { s.m.SetWeight(v); return nil }},
		{"Photo file path", photoLabel(d.Photo), s.setPhotoFromPath},
		{"Currency symbol", d.Currency, func(v string) error { s.m.SetCurrency(v); return nil }},
	}

	for _, p := range prompts {
		line, ctrl, ok := s.prompt(fmt.Sprintf("%s [%s]", p.label, p.current))
		if !ok || ctrl == ctrlQuit {
			return true, s.quit()
		}
		switch ctrl {
		case ctrlDiscard:
			return true, s.discard()
		case ctrlBack:
			// First step; nothing to go back to.
			continue
		}
		if line == "" {
			continue
		}
		if err := p.set(line); err != nil {
			s.reject(err)
		}
	}

	if _, err := s.m.Advance(); err != nil {
		s.reject(err)
	}
	return false, nil
}

// previewStep lists every value with its source step and handles the
// save / jump-to-edit choice. Returns done=true when the session ends.
func (s *session) previewStep() (bool, error) {
	fmt.Fprintf(s.out, "\n[%d/%d] Review and save\n", s.m.Index()+1, schema.Count())
	for _, row := range s.m.PreviewRows() {
		fmt.Fprintf(s.out, "  %2d  %-38s %s\n", row.StepIndex, row.Label, row.Value)
	}

	line, ctrl, ok := s.prompt("save, edit <step#>")
	if !ok || ctrl == ctrlQuit {
		return true, s.quit()
	}
	if ctrl == ctrlDiscard {
		return true, s.discard()
	}
	if ctrl == ctrlBack {
		s.m.Retreat()
		return false, nil
	}

	switch {
	case line == "save":
		return s.commit()
	case strings.HasPrefix(line, "edit "):
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "edit ")))
		if err != nil {
			s.reject(errors.NewInvalidRequest("edit takes a step number, e.g. 'edit 2'"))
			return false, nil
		}
		s.m.JumpTo(n)
		return false, nil
	case line == "":
		return false, nil
	default:
		s.reject(errors.NewInvalidRequest("unknown choice: " + line))
		return false, nil
	}
}

// commit saves the record and clears the draft in one transaction. The
// machine's in-memory draft is passed through so the commit reflects
// this session even when draft autosaves have been failing.
func (s *session) commit() (bool, error) {
	out, err := ops.Commit(s.db, ops.CommitInput{AppVersion: Version, Draft: s.m.Draft()})
	if err != nil {
		if errors.Is(err, errors.ErrValidationRejected) {
			s.reject(err)
			return false, nil
		}
		return true, err
	}

	r := out.Record
	currency := r.Style.Currency
	fmt.Fprintf(s.out, "\nSaved %s: FOB %s%s/piece, final %s%s/piece\n",
		r.ID,
		currency, costing.RoundMoney(r.Snapshot.FOBPerPiece).StringFixed(2),
		currency, costing.RoundMoney(r.Snapshot.FinalPerPiece).StringFixed(2))
	return true, nil
}

func (s *session) quit() error {
	fmt.Fprintln(s.out, "Draft saved. Run 'knitcost resume' to continue.")
	return nil
}

func (s *session) discard() error {
	if err := s.m.Discard(); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Draft discarded.")
	return nil
}

// prompt reads one trimmed line. ok is false on end of input, which is
// treated as quit by callers (the draft is already autosaved).
func (s *session) prompt(label string) (line string, ctrl control, ok bool) {
	fmt.Fprintf(s.out, "%s > ", label)
	if !s.scanner.Scan() {
		return "", ctrlNone, false
	}
	line = strings.TrimSpace(s.scanner.Text())
	switch line {
	case "/back":
		return "", ctrlBack, true
	case "/quit":
		return "", ctrlQuit, true
	case "/discard":
		return "", ctrlDiscard, true
	}
	return line, ctrlNone, true
}

// reject prints a step rejection inline; the step pointer stays put.
func (s *session) reject(err error) {
	if kErr, ok := err.(*errors.KnitError); ok {
		fmt.Fprintf(s.out, "! %s\n", kErr.Message)
		return
	}
	fmt.Fprintf(s.out, "! %v\n", err)
}

// setPhotoFromPath reads an image file and stores it through the photo
// codec (downscale + JPEG re-encode).
func (s *session) setPhotoFromPath(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read photo: %v", err)
	}
	ref, err := photo.Compress(raw, s.cfg.PhotoMaxDimensionPx, s.cfg.PhotoQuality)
	if err != nil {
		return err
	}
	s.m.SetPhoto(ref)
	return nil
}

func displayRaw(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "blank"
	}
	return raw
}

func gaugeLabel(g costing.Gauge) string {
	if !g.IsValid() {
		return "unset"
	}
	return g.String()
}

func photoLabel(p *costing.PhotoRef) string {
	if p == nil {
		return "none"
	}
	return fmt.Sprintf("%dx%d %s", p.Width, p.Height, p.MimeType)
}
