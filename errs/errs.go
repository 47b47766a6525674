// Package errs defines the sentinel errors shared by every gdx package and
// the per-handle error queue exposed through the facade's
// ErrorCount/ErrorStr/GetLastError family.
//
// Callers match a specific failure with errors.Is(err, errs.ErrWrongMode)
// rather than string comparison; call sites wrap a sentinel with extra
// context via fmt.Errorf("%w: ...", errs.ErrX).
package errs

import "errors"

// Kind classifies a sentinel error for ErrorStr rendering and for callers
// that want to branch on a category rather than an exact sentinel.
type Kind uint8

const (
	KindIO Kind = iota
	KindBadMagic
	KindIncompatibleEncoding
	KindBadMarker
	KindVersionTooNew
	KindFilenameEmpty
	KindFileNotOpen
	KindWrongMode
	KindBadName
	KindBadUEL
	KindDuplicateUEL
	KindUelMapCollision
	KindKeyOutOfOrder
	KindDuplicateKey
	KindDomainViolation
	KindBadSymbolNumber
	KindBadDimension
	KindBadType
	KindSetTextNotFound
	KindAcronymCollision
	KindSpecialValueCollision
	KindFilterAlreadyExists
	KindFilterUnknown
	KindReadPastEnd
	KindCorrupt
)

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return "Unknown"
}

var kindNames = map[Kind]string{
	KindIO:                    "Io",
	KindBadMagic:              "BadMagic",
	KindIncompatibleEncoding:  "IncompatibleEncoding",
	KindBadMarker:             "BadMarker",
	KindVersionTooNew:         "VersionTooNew",
	KindFilenameEmpty:         "FilenameEmpty",
	KindFileNotOpen:           "FileNotOpen",
	KindWrongMode:             "WrongMode",
	KindBadName:               "BadName",
	KindBadUEL:                "BadUEL",
	KindDuplicateUEL:          "DuplicateUEL",
	KindUelMapCollision:       "UelMapCollision",
	KindKeyOutOfOrder:         "KeyOutOfOrder",
	KindDuplicateKey:          "DuplicateKey",
	KindDomainViolation:       "DomainViolation",
	KindBadSymbolNumber:       "BadSymbolNumber",
	KindBadDimension:          "BadDimension",
	KindBadType:               "BadType",
	KindSetTextNotFound:       "SetTextNotFound",
	KindAcronymCollision:      "AcronymCollision",
	KindSpecialValueCollision: "SpecialValueCollision",
	KindFilterAlreadyExists:   "FilterAlreadyExists",
	KindFilterUnknown:         "FilterUnknown",
	KindReadPastEnd:           "ReadPastEnd",
	KindCorrupt:               "Corrupt",
}

// sentinelError pairs a stable message with a Kind so the error queue can
// render ErrorStr without re-parsing wrapped text.
type sentinelError struct {
	kind Kind
	msg  string
}

func (e *sentinelError) Error() string { return e.msg }

func newErr(k Kind, msg string) error { return &sentinelError{kind: k, msg: msg} }

// KindOf extracts the Kind carried by a sentinel (or one of its wrappers).
// Returns KindCorrupt if err does not wrap a gdx sentinel.
func KindOf(err error) Kind {
	var se *sentinelError
	if errors.As(err, &se) {
		return se.kind
	}

	return KindCorrupt
}

// Sentinels. Match with errors.Is.
var (
	ErrIO                    = newErr(KindIO, "I/O error")
	ErrBadMagic              = newErr(KindBadMagic, "bad magic byte")
	ErrIncompatibleEncoding  = newErr(KindIncompatibleEncoding, "incompatible number encoding")
	ErrBadMarker             = newErr(KindBadMarker, "bad section marker")
	ErrVersionTooNew         = newErr(KindVersionTooNew, "file version too new for this reader")
	ErrFilenameEmpty         = newErr(KindFilenameEmpty, "filename is empty")
	ErrFileNotOpen           = newErr(KindFileNotOpen, "no file is open")
	ErrWrongMode             = newErr(KindWrongMode, "call not valid in current state")
	ErrBadName               = newErr(KindBadName, "identifier is not a valid name")
	ErrBadUEL                = newErr(KindBadUEL, "UEL name is invalid")
	ErrDuplicateUEL          = newErr(KindDuplicateUEL, "UEL name already registered")
	ErrUelMapCollision       = newErr(KindUelMapCollision, "user-map index already in use")
	ErrKeyOutOfOrder         = newErr(KindKeyOutOfOrder, "Data not sorted when writing raw")
	ErrDuplicateKey          = newErr(KindDuplicateKey, "duplicate key in symbol data")
	ErrDomainViolation       = newErr(KindDomainViolation, "Domain violation")
	ErrBadSymbolNumber       = newErr(KindBadSymbolNumber, "symbol number out of range")
	ErrBadDimension          = newErr(KindBadDimension, "dimension out of range")
	ErrBadType               = newErr(KindBadType, "unknown symbol type")
	ErrSetTextNotFound       = newErr(KindSetTextNotFound, "set text index not found")
	ErrAcronymCollision      = newErr(KindAcronymCollision, "acronym name already defined")
	ErrSpecialValueCollision = newErr(KindSpecialValueCollision, "special values must be pairwise distinct")
	ErrFilterAlreadyExists   = newErr(KindFilterAlreadyExists, "filter number already registered")
	ErrFilterUnknown         = newErr(KindFilterUnknown, "filter number not registered")
	ErrReadPastEnd           = newErr(KindReadPastEnd, "read past end of data section")
	ErrCorrupt               = newErr(KindCorrupt, "file is corrupt")
)
