package pgcopy

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/jackc/pgio"

	"github.com/jackc/pgcopy/pgtype"
)

// Direction of a COPY session: IN moves data client to server, OUT server
// to client.
type Direction int8

const (
	DirectionIn Direction = iota
	DirectionOut
)

func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "invalid direction"
	}
}

// Binary COPY file header: signature, flags, header extension length.
const copySignature = "PGCOPY\n\377\r\n\000"

// Blocks larger than this are segmented before they reach the transport so
// one oversized Write cannot exceed the transport's flow-control window.
const maxSendChunk = 65536

// Config carries the collaborators a Copy needs. The zero value works: a
// default ConnInfo and Map are used and logging is disabled.
type Config struct {
	ConnInfo *pgtype.ConnInfo
	TypeMap  *pgtype.Map
	Logger   Logger
	LogLevel LogLevel
}

// Copy is one active COPY session. It is created by Begin after the server
// confirmed COPY-IN or COPY-OUT status and must be finalized exactly once
// with Finish. A Copy is not safe for concurrent use, matching the
// one-session-per-connection model.
type Copy struct {
	transport Transport
	connInfo  *pgtype.ConnInfo
	typeMap   *pgtype.Map
	logger    Logger
	logLevel  LogLevel

	direction  Direction
	format     int16
	finished   bool
	drained    bool
	framedRows bool
	rowCount   int64

	iterBlock []byte
	iterErr   error
}

// Begin consumes the pending result of the COPY statement the caller just
// dispatched and opens the session. A statement that was not COPY at all
// fails with ProgrammingError; a server error at initiation is returned
// as-is. In both cases no session is opened and nothing needs cleanup.
func Begin(transport Transport, config *Config) (*Copy, error) {
	c := &Copy{transport: transport, rowCount: -1, logLevel: LogLevelDebug}
	if config != nil {
		c.connInfo = config.ConnInfo
		c.typeMap = config.TypeMap
		c.logger = config.Logger
		if config.LogLevel != 0 {
			c.logLevel = config.LogLevel
		}
	}
	if c.connInfo == nil {
		c.connInfo = pgtype.NewConnInfo()
	}
	if c.typeMap == nil {
		c.typeMap = pgtype.NewMap()
	}

	res, err := transport.GetResult()
	if err != nil {
		return nil, err
	}

	switch res.Status {
	case StatusCopyIn:
		c.direction = DirectionIn
	case StatusCopyOut:
		c.direction = DirectionOut
	case StatusFatalError:
		return nil, res.Err
	default:
		return nil, &ProgrammingError{
			msg: fmt.Sprintf("copy expects a COPY ... FROM STDIN or COPY ... TO STDOUT statement, statement reported %s", res.Status),
		}
	}
	c.format = res.Format

	if c.shouldLog(LogLevelDebug) {
		c.log(LogLevelDebug, "copy started", map[string]interface{}{"direction": c.direction.String(), "format": c.format})
	}

	return c, nil
}

// Run executes fn inside a scoped COPY session: Begin, fn, then Finish on
// every path, exactly once. A panic in fn aborts the session before the
// panic continues unwinding, so the connection is never left mid-COPY. The
// returned row count is -1 unless the session completed successfully.
func Run(transport Transport, config *Config, fn func(*Copy) error) (int64, error) {
	c, err := Begin(transport, config)
	if err != nil {
		return -1, err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = c.Finish(fmt.Errorf("copy callback panicked: %v", r))
			panic(r)
		}
	}()

	err = c.Finish(fn(c))
	return c.RowsAffected(), err
}

// Direction returns the session direction.
func (c *Copy) Direction() Direction {
	return c.direction
}

// Format returns the negotiated COPY format code.
func (c *Copy) Format() int16 {
	return c.format
}

// RowsAffected returns the server-reported row count of a successfully
// finished session, or -1 while the session is open or after a failure.
func (c *Copy) RowsAffected() int64 {
	return c.rowCount
}

// Write sends a block of raw COPY data. Blocks need not align with row
// boundaries: the server consumes the byte stream independently of how it
// was chunked. Oversized blocks are segmented and transport backpressure is
// retried internally, so Write never reports a partial transfer.
func (c *Copy) Write(data []byte) error {
	if err := c.ensureOpen(DirectionIn, "write"); err != nil {
		return err
	}
	return c.send(data)
}

// WriteRow encodes one row with the codecs resolved for the session format
// and sends it. A nil value is SQL NULL. A codec failure leaves the stream
// untouched; the caller must still finalize the session with the error (Run
// does this automatically).
func (c *Copy) WriteRow(values ...interface{}) error {
	if err := c.ensureOpen(DirectionIn, "write_row"); err != nil {
		return err
	}

	var buf []byte
	var err error
	if c.format == pgtype.BinaryFormatCode {
		buf, err = c.formatRowBinary(values)
	} else {
		buf, err = c.formatRowText(values)
	}
	if err != nil {
		return err
	}

	if err := c.send(buf); err != nil {
		return err
	}
	c.framedRows = true
	return nil
}

func (c *Copy) formatRowText(values []interface{}) ([]byte, error) {
	buf := make([]byte, 0, 64)
	for i, v := range values {
		if i > 0 {
			buf = append(buf, '\t')
		}
		if v == nil {
			buf = append(buf, '\\', 'N')
			continue
		}

		df, err := c.typeMap.DumperFor(v, pgtype.TextFormatCode)
		if err != nil {
			return nil, err
		}
		b, err := df(c.connInfo).Dump(v)
		if err != nil {
			return nil, err
		}
		buf = append(buf, b...)
	}
	return append(buf, '\n'), nil
}

func (c *Copy) formatRowBinary(values []interface{}) ([]byte, error) {
	buf := make([]byte, 0, 64)
	if !c.framedRows {
		buf = append(buf, copySignature...)
		buf = pgio.AppendInt32(buf, 0)
		buf = pgio.AppendInt32(buf, 0)
	}

	buf = pgio.AppendInt16(buf, int16(len(values)))
	for _, v := range values {
		if v == nil {
			buf = pgio.AppendInt32(buf, -1)
			continue
		}

		df, err := c.typeMap.DumperFor(v, pgtype.BinaryFormatCode)
		if err != nil {
			return nil, err
		}
		b, err := df(c.connInfo).Dump(v)
		if err != nil {
			return nil, err
		}
		buf = pgio.AppendInt32(buf, int32(len(b)))
		buf = append(buf, b...)
	}
	return buf, nil
}

// Read returns the next block of COPY OUT data exactly as the server
// delivered it. It returns an empty block once the stream is exhausted, and
// keeps returning empty on subsequent calls.
func (c *Copy) Read() ([]byte, error) {
	if c.direction != DirectionOut {
		return nil, &ProgrammingError{msg: "read is only valid for a COPY ... TO STDOUT session"}
	}
	if c.finished || c.drained {
		return nil, nil
	}

	data, err := c.transport.Receive()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		c.drained = true
		return nil, nil
	}
	return data, nil
}

// Next advances block-wise iteration over a COPY OUT stream. It returns
// false on exhaustion or error; the iteration is not restartable.
//
//	for copy.Next() {
//		process(copy.Bytes())
//	}
//	err = copy.Finish(copy.Err())
func (c *Copy) Next() bool {
	c.iterBlock, c.iterErr = c.Read()
	return c.iterErr == nil && len(c.iterBlock) > 0
}

// Bytes returns the block read by the last call to Next.
func (c *Copy) Bytes() []byte {
	return c.iterBlock
}

// Err returns the error that stopped iteration, if any.
func (c *Copy) Err() error {
	return c.iterErr
}

// Finish finalizes the session. Call it exactly once on every exit path,
// passing the error (or nil) the copy block ended with.
//
// With a nil opErr a COPY IN stream is terminated (binary trailer if rows
// were framed, then the done marker) and the server's completion result
// supplies the row count. If sending the termination itself fails, the
// session is aborted instead so the pending result is still consumed. With a non-nil opErr the session is aborted: COPY
// IN sends the failure marker carrying opErr's message so the server rolls
// the data back, COPY OUT discards the remaining stream. Either way the
// pending result is consumed so the connection is left request-able, and the
// transaction is left in the failed state by the server.
//
// Finish returns opErr unchanged unless the abort surfaced a different
// server-side error; then that error wins, with opErr's message embedded in
// it by the server for diagnosis.
func (c *Copy) Finish(opErr error) error {
	if c.finished {
		return opErr
	}
	c.finished = true

	if opErr != nil {
		err := c.abort(opErr)
		if c.shouldLog(LogLevelError) {
			c.log(LogLevelError, "copy aborted", map[string]interface{}{"err": err})
		}
		return err
	}

	switch c.direction {
	case DirectionIn:
		if c.format == pgtype.BinaryFormatCode && c.framedRows {
			if err := c.send(pgio.AppendInt16(nil, -1)); err != nil {
				return c.abort(err)
			}
		}
		if err := c.transport.SendCopyDone(); err != nil {
			return c.abort(err)
		}
	case DirectionOut:
		if err := c.drain(); err != nil {
			return c.abort(err)
		}
	}

	res, err := c.transport.GetResult()
	if err != nil {
		return err
	}
	if res.Err != nil {
		// rowCount keeps its sentinel: nothing was committed.
		return res.Err
	}

	c.rowCount = res.CommandTag.RowsAffected()
	if c.shouldLog(LogLevelInfo) {
		c.log(LogLevelInfo, "copy finished", map[string]interface{}{"direction": c.direction.String(), "rowCount": c.rowCount})
	}
	return nil
}

func (c *Copy) abort(opErr error) error {
	if c.direction == DirectionIn {
		if err := c.transport.SendCopyFail(opErr.Error()); err != nil {
			return opErr
		}
	} else {
		// Discard whatever the server still has buffered; the error we
		// already hold is the interesting one.
		_ = c.drain()
	}

	res, err := c.transport.GetResult()
	if err != nil || res == nil || res.Err == nil {
		return opErr
	}

	var pgErr *PgError
	if stderrors.As(opErr, &pgErr) && pgErr.Code == res.Err.Code && pgErr.Message == res.Err.Message {
		return opErr
	}
	return res.Err
}

func (c *Copy) drain() error {
	if c.drained {
		return nil
	}
	for {
		data, err := c.transport.Receive()
		if err != nil {
			return err
		}
		if len(data) == 0 {
			c.drained = true
			return nil
		}
	}
}

// send pushes data to the transport in flow-control sized segments,
// retrying each segment for as long as the transport signals backpressure.
func (c *Copy) send(data []byte) error {
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxSendChunk {
			chunk = data[:maxSendChunk]
		}

		if c.shouldLog(LogLevelTrace) {
			c.log(LogLevelTrace, "copy send", map[string]interface{}{"data": logDataBytes(chunk)})
		}

		for {
			err := c.transport.Send(chunk)
			if err == nil {
				break
			}
			if err == ErrWouldBlock {
				continue
			}
			return err
		}

		data = data[len(chunk):]
	}
	return nil
}

func (c *Copy) ensureOpen(dir Direction, op string) error {
	if c.finished {
		return &ProgrammingError{msg: "copy session is finished"}
	}
	if c.direction != dir {
		return &ProgrammingError{msg: fmt.Sprintf("%s is only valid for a COPY %s session", op, dir)}
	}
	return nil
}

func (c *Copy) shouldLog(lvl LogLevel) bool {
	return c.logger != nil && c.logLevel >= lvl
}

func (c *Copy) log(lvl LogLevel, msg string, data map[string]interface{}) {
	c.logger.Log(context.Background(), lvl, msg, data)
}
