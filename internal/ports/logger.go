package ports

import "github.com/altiplano-labs/camlink/pkg/log"

// Logger re-exports the logging abstraction so inner layers depend on
// ports alone.
type Logger = log.Logger

// Field re-exports the structured logging field type.
type Field = log.Field

// Field constructors, re-exported for callers of Logger.
var (
	String   = log.String
	Int      = log.Int
	Uint32   = log.Uint32
	Bool     = log.Bool
	Duration = log.Duration
	Err      = log.Err
	Any      = log.Any
)
