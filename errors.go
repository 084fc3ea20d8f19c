package pgcopy

import (
	"errors"

	"github.com/jackc/pgproto3/v2"
)

// SQLSTATE codes for the error conditions this package's callers most often
// need to distinguish. See https://www.postgresql.org/docs/current/errcodes-appendix.html
// for the complete list; PgError.Code carries whatever the server sent, these
// constants merely name the common ones.
const (
	PgErrorConnectionExceptionCode           = "08000"
	PgErrorConnectionFailureCode             = "08006"
	PgErrorProtocolViolationCode             = "08P01"
	PgErrorFeatureNotSupportedCode           = "0A000"
	PgErrorDataExceptionCode                 = "22000"
	PgErrorCharacterNotInRepertoireCode      = "22021"
	PgErrorNullValueNotAllowedCode           = "22004"
	PgErrorNumericValueOutOfRangeCode        = "22003"
	PgErrorStringDataRightTruncationCode     = "22001"
	PgErrorUnterminatedCStringCode           = "22024"
	PgErrorInvalidTextRepresentationCode     = "22P02"
	PgErrorInvalidBinaryRepresentationCode   = "22P03"
	PgErrorBadCopyFileFormatCode             = "22P04"
	PgErrorUntranslatableCharacterCode       = "22P05"
	PgErrorIntegrityConstraintViolationCode  = "23000"
	PgErrorRestrictViolationCode             = "23001"
	PgErrorNotNullViolationCode              = "23502"
	PgErrorForeignKeyViolationCode           = "23503"
	PgErrorUniqueViolationCode               = "23505"
	PgErrorCheckViolationCode                = "23514"
	PgErrorExclusionViolationCode            = "23P01"
	PgErrorInvalidCursorStateCode            = "24000"
	PgErrorInvalidTransactionStateCode       = "25000"
	PgErrorActiveSqlTransactionCode          = "25001"
	PgErrorInFailedSqlTransactionCode        = "25P02"
	PgErrorInvalidSqlStatementNameCode       = "26000"
	PgErrorTransactionRollbackCode           = "40000"
	PgErrorTRSerializationFailureCode        = "40001"
	PgErrorTRDeadlockDetectedCode            = "40P01"
	PgErrorSyntaxErrorOrAccessRuleViolation  = "42000"
	PgErrorSyntaxErrorCode                   = "42601"
	PgErrorInsufficientPrivilegeCode         = "42501"
	PgErrorDatatypeMismatchCode              = "42804"
	PgErrorUndefinedColumnCode               = "42703"
	PgErrorUndefinedTableCode                = "42P01"
	PgErrorInsufficientResourcesCode         = "53000"
	PgErrorDiskFullCode                      = "53100"
	PgErrorOutOfMemoryCode                   = "53200"
	PgErrorTooManyConnectionsCode            = "53300"
	PgErrorOperatorInterventionCode          = "57000"
	PgErrorQueryCanceledCode                 = "57014"
	PgErrorAdminShutdownCode                 = "57P01"
	PgErrorCrashShutdownCode                 = "57P02"
	PgErrorCannotConnectNowCode              = "57P03"
	PgErrorSystemErrorCode                   = "58000"
	PgErrorIoErrorCode                       = "58030"
	PgErrorInternalErrorCode                 = "XX000"
	PgErrorDataCorruptedCode                 = "XX001"
)

// PgError represents an error reported by the PostgreSQL server. See
// http://www.postgresql.org/docs/current/protocol-error-fields.html for
// detailed field description.
type PgError struct {
	Severity         string
	Code             string
	Message          string
	Detail           string
	Hint             string
	Position         int32
	InternalPosition int32
	InternalQuery    string
	Where            string
	SchemaName       string
	TableName        string
	ColumnName       string
	DataTypeName     string
	ConstraintName   string
	File             string
	Line             int32
	Routine          string
}

func (pe *PgError) Error() string {
	return pe.Severity + ": " + pe.Message + " (SQLSTATE " + pe.Code + ")"
}

// SQLState returns the SQLState of the error.
func (pe *PgError) SQLState() string {
	return pe.Code
}

func errorResponseToPgError(msg *pgproto3.ErrorResponse) *PgError {
	return &PgError{
		Severity:         msg.Severity,
		Code:             msg.Code,
		Message:          msg.Message,
		Detail:           msg.Detail,
		Hint:             msg.Hint,
		Position:         msg.Position,
		InternalPosition: msg.InternalPosition,
		InternalQuery:    msg.InternalQuery,
		Where:            msg.Where,
		SchemaName:       msg.SchemaName,
		TableName:        msg.TableName,
		ColumnName:       msg.ColumnName,
		DataTypeName:     msg.DataTypeName,
		ConstraintName:   msg.ConstraintName,
		File:             msg.File,
		Line:             msg.Line,
		Routine:          msg.Routine,
	}
}

// ProgrammingError reports misuse of the COPY entry points, e.g. beginning a
// copy on a statement that is not COPY at all.
type ProgrammingError struct {
	msg string
}

func (e *ProgrammingError) Error() string {
	return e.msg
}

func errCodeIs(err error, code string) bool {
	var pgErr *PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// IsUniqueViolation reports whether err is a server error with SQLSTATE
// 23505.
func IsUniqueViolation(err error) bool {
	return errCodeIs(err, PgErrorUniqueViolationCode)
}

// IsQueryCanceled reports whether err is a server error with SQLSTATE
// 57014, the code the server uses to echo a client-side CopyFail.
func IsQueryCanceled(err error) bool {
	return errCodeIs(err, PgErrorQueryCanceledCode)
}

// IsBadCopyFileFormat reports whether err is a server error with SQLSTATE
// 22P04.
func IsBadCopyFileFormat(err error) bool {
	return errCodeIs(err, PgErrorBadCopyFileFormatCode)
}

// IsSyntaxError reports whether err is a server error with SQLSTATE 42601.
func IsSyntaxError(err error) bool {
	return errCodeIs(err, PgErrorSyntaxErrorCode)
}
