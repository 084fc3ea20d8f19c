package pgcopy

import (
	"io"

	"github.com/jackc/chunkreader/v2"
	"github.com/jackc/pgproto3/v2"
	"github.com/pkg/errors"
)

// Frontend is a Transport over the PostgreSQL frontend/backend wire
// protocol. It frames COPY data into protocol messages and distills the
// message flow back into CommandResults. It does not own the underlying
// connection; closing it is the caller's business.
type Frontend struct {
	f *pgproto3.Frontend

	txStatus byte

	// Result state observed ahead of GetResult by Receive.
	pendingTag CommandTag
	pendingErr *PgError
	seenReady  bool
}

// NewFrontend creates a Frontend reading protocol messages from r and
// writing them to w, normally both sides of one established, authenticated
// connection.
func NewFrontend(r io.Reader, w io.Writer) *Frontend {
	return &Frontend{f: pgproto3.NewFrontend(chunkreader.New(r), w)}
}

// SendQuery dispatches sql through the simple query protocol. For a COPY
// statement the next GetResult reports StatusCopyIn or StatusCopyOut and the
// session can begin.
func (fe *Frontend) SendQuery(sql string) error {
	fe.pendingTag = ""
	fe.pendingErr = nil
	fe.seenReady = false
	return fe.f.Send(&pgproto3.Query{String: sql})
}

// Send transmits one block of COPY data.
func (fe *Frontend) Send(data []byte) error {
	return fe.f.Send(&pgproto3.CopyData{Data: data})
}

// SendCopyDone tells the server the client finished sending COPY data.
func (fe *Frontend) SendCopyDone() error {
	return fe.f.Send(&pgproto3.CopyDone{})
}

// SendCopyFail aborts the COPY from the client side with msg as the reason.
func (fe *Frontend) SendCopyFail(msg string) error {
	return fe.f.Send(&pgproto3.CopyFail{Message: msg})
}

// Receive returns the next block of COPY OUT data, or (nil, nil) once the
// server finished the stream. A server error cuts the stream and is returned
// after being recorded for the following GetResult.
func (fe *Frontend) Receive() ([]byte, error) {
	for {
		msg, err := fe.f.Receive()
		if err != nil {
			return nil, err
		}

		switch msg := msg.(type) {
		case *pgproto3.CopyData:
			// msg.Data aliases the read buffer and is overwritten by the
			// next Receive.
			data := make([]byte, len(msg.Data))
			copy(data, msg.Data)
			return data, nil
		case *pgproto3.CopyDone:
			return nil, nil
		case *pgproto3.CommandComplete:
			fe.pendingTag = CommandTag(msg.CommandTag)
			return nil, nil
		case *pgproto3.ErrorResponse:
			pgErr := errorResponseToPgError(msg)
			fe.pendingErr = pgErr
			return nil, pgErr
		case *pgproto3.ReadyForQuery:
			fe.txStatus = msg.TxStatus
			fe.seenReady = true
			return nil, nil
		case *pgproto3.NoticeResponse, *pgproto3.ParameterStatus, *pgproto3.NotificationResponse:
			// Asynchronous traffic, not part of the stream.
		default:
			return nil, errors.Errorf("unexpected message during COPY OUT: %T", msg)
		}
	}
}

// GetResult consumes protocol messages until the outcome of the current
// command is known. COPY initiation results return as soon as the server
// switches to copy mode; every other outcome is reported only after
// ReadyForQuery, so the connection is immediately usable again.
func (fe *Frontend) GetResult() (*CommandResult, error) {
	res := &CommandResult{}
	if fe.pendingErr != nil {
		res.Status = StatusFatalError
		res.Err = fe.pendingErr
		fe.pendingErr = nil
	} else if fe.pendingTag != "" {
		res.CommandTag = fe.pendingTag
		fe.pendingTag = ""
	}
	if fe.seenReady {
		fe.seenReady = false
		return res, nil
	}

	for {
		msg, err := fe.f.Receive()
		if err != nil {
			return nil, err
		}

		switch msg := msg.(type) {
		case *pgproto3.CopyInResponse:
			res.Status = StatusCopyIn
			res.Format = int16(msg.OverallFormat)
			return res, nil
		case *pgproto3.CopyOutResponse:
			res.Status = StatusCopyOut
			res.Format = int16(msg.OverallFormat)
			return res, nil
		case *pgproto3.RowDescription:
			res.Status = StatusTuplesOK
		case *pgproto3.DataRow:
			// Row payloads are out of scope here; the tag still tells how
			// many there were.
		case *pgproto3.CommandComplete:
			res.CommandTag = CommandTag(msg.CommandTag)
		case *pgproto3.EmptyQueryResponse:
		case *pgproto3.ErrorResponse:
			res.Status = StatusFatalError
			res.Err = errorResponseToPgError(msg)
		case *pgproto3.ReadyForQuery:
			fe.txStatus = msg.TxStatus
			return res, nil
		case *pgproto3.NoticeResponse, *pgproto3.ParameterStatus, *pgproto3.NotificationResponse:
		default:
			return nil, errors.Errorf("unexpected message while reading result: %T", msg)
		}
	}
}

// TxStatus returns the transaction status byte from the last ReadyForQuery:
// 'I' idle, 'T' in transaction, 'E' in a failed transaction. It is 0 before
// the first result has been read.
func (fe *Frontend) TxStatus() byte {
	return fe.txStatus
}
