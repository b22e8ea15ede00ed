package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Syntax
	SynInfo          Code = 2000
	SynUnexpectedEOF Code = 2001
	SynExpectedChar  Code = 2002
	SynExpectedToken Code = 2003
	SynBadNumber     Code = 2004
	SynTrailingInput Code = 2005

	// Semantic
	SemaInfo         Code = 3000
	SemaTypeMismatch Code = 3001
	SemaMissingElse  Code = 3002
	SemaInfiniteType Code = 3003

	// IO
	IOLoadFileError Code = 4001
	IOCacheError    Code = 4002

	// Project
	ProjManifestError Code = 5001

	// Observability
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:       "Unknown error",
	SynInfo:           "Syntax information",
	SynUnexpectedEOF:  "Unexpected end of input",
	SynExpectedChar:   "Expected character",
	SynExpectedToken:  "Expected token",
	SynBadNumber:      "Malformed number literal",
	SynTrailingInput:  "Trailing input after expression",
	SemaInfo:          "Semantic information",
	SemaTypeMismatch:  "Type mismatch",
	SemaMissingElse:   "If expression without else",
	SemaInfiniteType:  "Infinite type",
	IOLoadFileError:   "I/O load file error",
	IOCacheError:      "Result cache error",
	ProjManifestError: "Invalid rill.toml",
	ObsTimings:        "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
