package pgcopy

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrWouldBlock is returned by Transport.Send when the transport's send
// buffer is full. The Copy controller retries the send until the transport
// accepts the data; callers of Copy never observe it.
var ErrWouldBlock = errors.New("send buffer full")

// ResultStatus classifies a CommandResult the way the server's execution
// status does.
type ResultStatus int

const (
	StatusCommandOK ResultStatus = iota
	StatusTuplesOK
	StatusCopyIn
	StatusCopyOut
	StatusFatalError
)

func (s ResultStatus) String() string {
	switch s {
	case StatusCommandOK:
		return "COMMAND_OK"
	case StatusTuplesOK:
		return "TUPLES_OK"
	case StatusCopyIn:
		return "COPY_IN"
	case StatusCopyOut:
		return "COPY_OUT"
	case StatusFatalError:
		return "FATAL_ERROR"
	default:
		return "invalid status"
	}
}

// CommandTag is the command completion tag reported by the server, e.g.
// "COPY 5".
type CommandTag string

// RowsAffected returns the number of rows the command affected, or 0 if the
// tag carries no count.
func (ct CommandTag) RowsAffected() int64 {
	s := string(ct)
	index := strings.LastIndex(s, " ")
	if index == -1 {
		return 0
	}
	n, _ := strconv.ParseInt(s[index+1:], 10, 64)
	return n
}

// CommandResult is the outcome of one server command as observed by the
// transport. For StatusCopyIn and StatusCopyOut, Format carries the overall
// COPY format code negotiated by the server. For StatusFatalError, Err holds
// the server error.
type CommandResult struct {
	Status     ResultStatus
	CommandTag CommandTag
	Format     int16
	Err        *PgError
}

// Transport is the connection collaborator a Copy drives. It owns protocol
// framing and the socket; the Copy controller only produces and consumes
// row/value-level bytes.
//
// Implementations are assumed synchronous and single-caller, matching the
// one-copy-per-connection model enforced by the surrounding connection
// layer.
type Transport interface {
	// Send transmits one block of COPY data to the server. It may return
	// ErrWouldBlock, in which case the same block must be offered again.
	Send(data []byte) error

	// Receive returns the next block of COPY data from the server, or
	// (nil, nil) when the server has finished sending. A server error
	// arriving mid-stream is returned as an error.
	Receive() ([]byte, error)

	// SendCopyDone tells the server the client finished sending COPY data.
	SendCopyDone() error

	// SendCopyFail aborts the COPY from the client side. msg travels to the
	// server and is echoed back in the resulting error.
	SendCopyFail(msg string) error

	// GetResult consumes protocol messages until the outcome of the current
	// command is known, leaving the connection in a request-able state for
	// non-COPY outcomes.
	GetResult() (*CommandResult, error)
}
