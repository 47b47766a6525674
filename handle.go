// Package gdx implements the GDX (GAMS Data eXchange) binary container
// format: a self-describing on-disk representation of multi-dimensional
// symbols (sets, parameters, variables, equations, aliases).
//
// A Handle is created empty, opens at most one file at a time, and is
// destroyed with the handle (spec.md §3's "Lifecycles"). It assembles
// the leaf packages — uel, settext, acronym, symtab, domain, filter,
// reccodec, session, stream, section, specval — behind the state
// machine described in spec.md §4.9.
package gdx

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gdxlib/gdx/acronym"
	"github.com/gdxlib/gdx/compress"
	"github.com/gdxlib/gdx/domain"
	"github.com/gdxlib/gdx/errs"
	"github.com/gdxlib/gdx/filter"
	"github.com/gdxlib/gdx/internal/options"
	"github.com/gdxlib/gdx/reccodec"
	"github.com/gdxlib/gdx/section"
	"github.com/gdxlib/gdx/session"
	"github.com/gdxlib/gdx/settext"
	"github.com/gdxlib/gdx/specval"
	"github.com/gdxlib/gdx/stream"
	"github.com/gdxlib/gdx/symtab"
	"github.com/gdxlib/gdx/uel"
)

// state is a Handle's position in the OpenWrite/OpenRead state machine
// (spec.md §4.9).
type state uint8

const (
	stateIdle state = iota
	stateOpen
	stateWriting
	stateReading
	stateUelReg
	stateClosed
)

// uelMode distinguishes the three UELRegister* families while
// stateUelReg is active (spec.md §4.9's "UelRegistering").
type uelMode uint8

const (
	uelModeNone uelMode = iota
	uelModeRaw
	uelModeMap
	uelModeStr
)

// Handle is a single GDX file session: at most one file open at a time,
// not safe for concurrent use from multiple goroutines (spec.md §5).
type Handle struct {
	logger *slog.Logger

	st       state
	readMode bool

	uelRegMode uelMode

	stream *stream.ByteStream
	header *section.FileHeader

	uels     *uel.Table
	symbols  *symtab.Table
	settexts *settext.Pool
	acronyms *acronym.List
	checker  *domain.Checker
	filters  *filter.Registry
	specials     specval.Table
	readSpecials *specval.Table // overrides specials for DataRead* decoding only, nil = use specials

	storeDomainSets   bool
	allowBogusDomains bool
	mapAcronymsToNaN  bool
	defaultCompressed bool
	defaultAlgo       compress.Algorithm
	convertVersion    section.Version

	errQueue errs.Queue

	writeSess   *session.WriteSession
	writeSymbol int
	readSess    *session.ReadSession
	readSymbol  int

	lastErrorRecords []reccodec.Record

	traceLevel int
}

// Option configures a Handle at Create time.
type Option = options.Option[*Handle]

// WithLogger overrides the handle's slog.Logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return options.New(func(h *Handle) error {
		h.logger = l
		return nil
	})
}

// WithStoreDomainSets overrides the default (true) of the StoreDomainSets
// flag. The flag is only stored and reported by StoreDomainSets: the
// domain checker is built before options are applied and never drops a
// parent set's membership bitmap, whatever the flag's value.
func WithStoreDomainSets(v bool) Option {
	return options.New(func(h *Handle) error {
		h.storeDomainSets = v
		return nil
	})
}

// WithAllowBogusDomains sets the AllowBogusDomains flag (default false).
// The flag is only stored and reported by AllowBogusDomains; strict-domain
// checking does not consult it.
func WithAllowBogusDomains(v bool) Option {
	return options.New(func(h *Handle) error {
		h.allowBogusDomains = v
		return nil
	})
}

// WithMapAcronymsToNaN controls whether decoded acronym values collapse
// to a plain NaN instead of round-tripping through DecodeAcronym
// (SPEC_FULL.md item 2).
func WithMapAcronymsToNaN(v bool) Option {
	return options.New(func(h *Handle) error {
		h.mapAcronymsToNaN = v
		return nil
	})
}

// Create returns a new, unopened Handle (spec.md §6's Create/Destroy
// family; Destroy is Go's garbage collector plus Close for the file
// descriptor).
func Create(opts ...Option) (*Handle, error) {
	h := &Handle{
		logger:          slog.Default(),
		st:              stateIdle,
		uels:            uel.NewTable(),
		symbols:         symtab.NewTable(),
		settexts:        settext.NewPool(),
		acronyms:        acronym.NewList(),
		specials:        specval.Default(),
		storeDomainSets: true,
		defaultAlgo:     compress.AlgorithmNone,
		convertVersion:  section.VersionCurrent,
	}
	h.checker = domain.NewChecker(h.storeDomainSets)
	h.filters = filter.NewRegistry()

	if err := options.Apply(h, opts...); err != nil {
		return nil, err
	}

	return h, nil
}

// fail records err in the handle's error queue (if non-nil) and
// returns it unchanged, so call sites can `return h.fail(err)`.
func (h *Handle) fail(err error) error {
	if err == nil {
		return nil
	}

	h.errQueue.Push(err)
	h.logger.Debug("gdx: call failed", "kind", errs.KindOf(err), "error", err)

	return err
}

func (h *Handle) wrongMode(context string) error {
	return h.fail(fmt.Errorf("%w: %s", errs.ErrWrongMode, context))
}

// ErrorCount returns the total number of errors recorded on this handle
// since Create (spec.md §7).
func (h *Handle) ErrorCount() int { return h.errQueue.Count() }

// ErrorStr returns the message for the 1-based recorded error ec, or ""
// if out of range (spec.md §7).
func (h *Handle) ErrorStr(ec int) string {
	return h.errQueue.At(ec)
}

// GetLastError returns the most recently recorded error and clears it
// from the queue, or nil if the queue is empty (spec.md §7).
func (h *Handle) GetLastError() error {
	return h.errQueue.Last()
}

// SetTraceLevel sets the verbosity of internal diagnostic logging
// (spec.md §6). Level 0 logs only warnings and above; level 1 adds info
// and level 2 or higher adds debug. The handle logs failed calls at debug
// level and unresolved domain parents at Close at warn level; the session
// and domain packages do not log.
func (h *Handle) SetTraceLevel(level int) {
	h.traceLevel = level

	lvl := slog.LevelWarn
	switch {
	case level >= 2:
		lvl = slog.LevelDebug
	case level == 1:
		lvl = slog.LevelInfo
	}

	h.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
