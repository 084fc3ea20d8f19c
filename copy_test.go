package pgcopy_test

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackc/pgcopy"
	"github.com/jackc/pgcopy/pgtype"
)

// testTransport is a scripted Transport. GetResult pops results in order,
// Receive pops recvBlocks, and everything sent is recorded.
type testTransport struct {
	results []*pgcopy.CommandResult

	recvBlocks [][]byte
	recvErr    error

	sent       [][]byte
	blockSends int
	sendErr    error
	sendErrAt  int // 1-based Send call index at which sendErr fires
	sendCalls  int

	copyDone    bool
	copyDoneErr error
	copyFail    []string
}

func (tt *testTransport) Send(data []byte) error {
	if tt.blockSends > 0 {
		tt.blockSends--
		return pgcopy.ErrWouldBlock
	}
	tt.sendCalls++
	if tt.sendErrAt != 0 && tt.sendCalls >= tt.sendErrAt {
		return tt.sendErr
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	tt.sent = append(tt.sent, buf)
	return nil
}

func (tt *testTransport) Receive() ([]byte, error) {
	if len(tt.recvBlocks) == 0 {
		if tt.recvErr != nil {
			err := tt.recvErr
			tt.recvErr = nil
			return nil, err
		}
		return nil, nil
	}
	b := tt.recvBlocks[0]
	tt.recvBlocks = tt.recvBlocks[1:]
	return b, nil
}

func (tt *testTransport) SendCopyDone() error {
	if tt.copyDoneErr != nil {
		return tt.copyDoneErr
	}
	tt.copyDone = true
	return nil
}

func (tt *testTransport) SendCopyFail(msg string) error {
	tt.copyFail = append(tt.copyFail, msg)
	return nil
}

func (tt *testTransport) GetResult() (*pgcopy.CommandResult, error) {
	if len(tt.results) == 0 {
		return nil, errors.New("testTransport: no result scripted")
	}
	r := tt.results[0]
	tt.results = tt.results[1:]
	return r, nil
}

func (tt *testTransport) sentBytes() []byte {
	var buf bytes.Buffer
	for _, b := range tt.sent {
		buf.Write(b)
	}
	return buf.Bytes()
}

func copyInTransport(format int16, final *pgcopy.CommandResult) *testTransport {
	return &testTransport{
		results: []*pgcopy.CommandResult{
			{Status: pgcopy.StatusCopyIn, Format: format},
			final,
		},
	}
}

func TestCopyInTextWriteRow(t *testing.T) {
	tt := copyInTransport(pgtype.TextFormatCode, &pgcopy.CommandResult{Status: pgcopy.StatusCommandOK, CommandTag: "COPY 2"})

	c, err := pgcopy.Begin(tt, nil)
	require.NoError(t, err)
	require.Equal(t, pgcopy.DirectionIn, c.Direction())
	require.Equal(t, int64(-1), c.RowsAffected())

	require.NoError(t, c.WriteRow(int32(10), int32(20), "hello"))
	require.NoError(t, c.WriteRow(int32(40), nil, "world"))
	require.NoError(t, c.Finish(nil))

	require.Equal(t, []byte("10\t20\thello\n40\t\\N\tworld\n"), tt.sentBytes())
	require.True(t, tt.copyDone)
	require.Equal(t, int64(2), c.RowsAffected())
}

// The expected stream below is the standard binary COPY file layout:
// signature, int32 flags, int32 extension length, then per row an int16
// field count and int32-length-prefixed fields with -1 for NULL, closed by
// an int16 -1 trailer.
const copyBinaryExpectedHex = "5047434f50590aff0d0a00" + // signature
	"00000000" + "00000000" + // flags, extension length
	"0003" + "00000004" + "0000000a" + "00000004" + "00000014" + "00000005" + "68656c6c6f" +
	"0003" + "00000004" + "00000028" + "ffffffff" + "00000005" + "776f726c64" +
	"ffff"

func TestCopyInBinaryWriteRow(t *testing.T) {
	tt := copyInTransport(pgtype.BinaryFormatCode, &pgcopy.CommandResult{Status: pgcopy.StatusCommandOK, CommandTag: "COPY 2"})

	c, err := pgcopy.Begin(tt, nil)
	require.NoError(t, err)
	require.Equal(t, pgtype.BinaryFormatCode, c.Format())

	require.NoError(t, c.WriteRow(int32(10), int32(20), "hello"))
	require.NoError(t, c.WriteRow(int32(40), nil, "world"))
	require.NoError(t, c.Finish(nil))

	want, err := hex.DecodeString(copyBinaryExpectedHex)
	require.NoError(t, err)
	require.Equal(t, want, tt.sentBytes())
	require.True(t, tt.copyDone)
	require.Equal(t, int64(2), c.RowsAffected())
}

func TestCopyInBinaryNoRowsOmitsFraming(t *testing.T) {
	tt := copyInTransport(pgtype.BinaryFormatCode, &pgcopy.CommandResult{Status: pgcopy.StatusCommandOK, CommandTag: "COPY 0"})

	c, err := pgcopy.Begin(tt, nil)
	require.NoError(t, err)
	require.NoError(t, c.Finish(nil))

	// No rows were framed, so neither header nor trailer was produced.
	require.Empty(t, tt.sentBytes())
	require.True(t, tt.copyDone)
	require.Equal(t, int64(0), c.RowsAffected())
}

func TestCopyInChunkedWriteEquivalence(t *testing.T) {
	payload := []byte("10\t20\thello\n40\t\\N\tworld\n")

	whole := copyInTransport(pgtype.TextFormatCode, &pgcopy.CommandResult{Status: pgcopy.StatusCommandOK, CommandTag: "COPY 2"})
	c, err := pgcopy.Begin(whole, nil)
	require.NoError(t, err)
	require.NoError(t, c.Write(payload))
	require.NoError(t, c.Finish(nil))

	byteAtATime := copyInTransport(pgtype.TextFormatCode, &pgcopy.CommandResult{Status: pgcopy.StatusCommandOK, CommandTag: "COPY 2"})
	c, err = pgcopy.Begin(byteAtATime, nil)
	require.NoError(t, err)
	for i := range payload {
		require.NoError(t, c.Write(payload[i : i+1]))
	}
	require.NoError(t, c.Finish(nil))

	require.Equal(t, whole.sentBytes(), byteAtATime.sentBytes())
}

func TestCopyInWriteSegmentsLargeBlocks(t *testing.T) {
	tt := copyInTransport(pgtype.TextFormatCode, &pgcopy.CommandResult{Status: pgcopy.StatusCommandOK, CommandTag: "COPY 1"})

	c, err := pgcopy.Begin(tt, nil)
	require.NoError(t, err)

	payload := bytes.Repeat([]byte("x"), 200000)
	require.NoError(t, c.Write(payload))
	require.NoError(t, c.Finish(nil))

	for _, b := range tt.sent {
		require.LessOrEqual(t, len(b), 65536)
	}
	require.Equal(t, payload, tt.sentBytes())
}

func TestCopyInWriteRetriesOnWouldBlock(t *testing.T) {
	tt := copyInTransport(pgtype.TextFormatCode, &pgcopy.CommandResult{Status: pgcopy.StatusCommandOK, CommandTag: "COPY 1"})
	tt.blockSends = 3

	c, err := pgcopy.Begin(tt, nil)
	require.NoError(t, err)
	require.NoError(t, c.Write([]byte("1\n")))
	require.NoError(t, c.Finish(nil))

	require.Equal(t, []byte("1\n"), tt.sentBytes())
}

func TestCopyInServerErrorOnFinish(t *testing.T) {
	tt := copyInTransport(pgtype.TextFormatCode, &pgcopy.CommandResult{
		Status: pgcopy.StatusFatalError,
		Err: &pgcopy.PgError{
			Severity:       "ERROR",
			Code:           pgcopy.PgErrorUniqueViolationCode,
			Message:        `duplicate key value violates unique constraint "copy_in_pkey"`,
			ConstraintName: "copy_in_pkey",
		},
	})

	c, err := pgcopy.Begin(tt, nil)
	require.NoError(t, err)
	require.NoError(t, c.WriteRow(int32(1), nil, "a"))
	require.NoError(t, c.WriteRow(int32(1), nil, "b"))

	err = c.Finish(nil)
	require.Error(t, err)

	var pgErr *pgcopy.PgError
	require.True(t, errors.As(err, &pgErr))
	require.Equal(t, pgcopy.PgErrorUniqueViolationCode, pgErr.Code)

	// The failed copy must not leave a partial count behind.
	require.Equal(t, int64(-1), c.RowsAffected())
	require.True(t, tt.copyDone)
}

func TestCopyInCallerAbort(t *testing.T) {
	opErr := errors.New("test error")
	tt := copyInTransport(pgtype.TextFormatCode, &pgcopy.CommandResult{
		Status: pgcopy.StatusFatalError,
		Err: &pgcopy.PgError{
			Severity: "ERROR",
			Code:     pgcopy.PgErrorQueryCanceledCode,
			Message:  "COPY from stdin failed: test error",
		},
	})

	c, err := pgcopy.Begin(tt, nil)
	require.NoError(t, err)
	require.NoError(t, c.WriteRow(int32(1), nil, "a"))

	err = c.Finish(opErr)
	require.Error(t, err)

	var pgErr *pgcopy.PgError
	require.True(t, errors.As(err, &pgErr))
	require.Equal(t, pgcopy.PgErrorQueryCanceledCode, pgErr.Code)
	require.Contains(t, err.Error(), "test error")

	require.Equal(t, []string{"test error"}, tt.copyFail)
	require.False(t, tt.copyDone)
	require.Equal(t, int64(-1), c.RowsAffected())
}

func TestCopyInAbortKeepsOriginalServerError(t *testing.T) {
	// The error being finalized with is itself the server error the abort
	// surfaces again; the caller must get back the value it already holds.
	serverErr := &pgcopy.PgError{
		Severity: "ERROR",
		Code:     pgcopy.PgErrorBadCopyFileFormatCode,
		Message:  "invalid field count in binary file",
	}
	tt := copyInTransport(pgtype.BinaryFormatCode, &pgcopy.CommandResult{
		Status: pgcopy.StatusFatalError,
		Err: &pgcopy.PgError{
			Severity: "ERROR",
			Code:     pgcopy.PgErrorBadCopyFileFormatCode,
			Message:  "invalid field count in binary file",
		},
	})

	c, err := pgcopy.Begin(tt, nil)
	require.NoError(t, err)

	err = c.Finish(serverErr)
	require.Same(t, error(serverErr), err)
}

func TestCopyInCopyDoneFailureConsumesResult(t *testing.T) {
	tt := copyInTransport(pgtype.TextFormatCode, &pgcopy.CommandResult{
		Status: pgcopy.StatusFatalError,
		Err:    &pgcopy.PgError{Severity: "ERROR", Code: pgcopy.PgErrorQueryCanceledCode, Message: "COPY from stdin failed: broken pipe"},
	})
	tt.copyDoneErr = errors.New("broken pipe")

	c, err := pgcopy.Begin(tt, nil)
	require.NoError(t, err)
	require.NoError(t, c.WriteRow(int32(1), nil, "a"))

	err = c.Finish(nil)
	require.Error(t, err)

	// Even though the done marker never went out, the session fell back to
	// the abort path and the pending result was consumed.
	require.Equal(t, []string{"broken pipe"}, tt.copyFail)
	require.Empty(t, tt.results)
	require.Equal(t, int64(-1), c.RowsAffected())
}

func TestCopyInBinaryTrailerSendFailureAborts(t *testing.T) {
	tt := copyInTransport(pgtype.BinaryFormatCode, &pgcopy.CommandResult{
		Status: pgcopy.StatusFatalError,
		Err:    &pgcopy.PgError{Severity: "ERROR", Code: pgcopy.PgErrorQueryCanceledCode, Message: "COPY from stdin failed: write failed"},
	})
	tt.sendErr = errors.New("write failed")
	tt.sendErrAt = 2 // header+row goes out, the trailer send fails

	c, err := pgcopy.Begin(tt, nil)
	require.NoError(t, err)
	require.NoError(t, c.WriteRow(int32(1), nil, "a"))

	err = c.Finish(nil)
	require.Error(t, err)

	require.Len(t, tt.copyFail, 1)
	require.False(t, tt.copyDone)
	require.Empty(t, tt.results)
	require.Equal(t, int64(-1), c.RowsAffected())
}

func TestCopyInDataErrorLeavesStreamUntouched(t *testing.T) {
	tt := copyInTransport(pgtype.TextFormatCode, &pgcopy.CommandResult{
		Status: pgcopy.StatusFatalError,
		Err: &pgcopy.PgError{
			Severity: "ERROR",
			Code:     pgcopy.PgErrorQueryCanceledCode,
			Message:  "COPY from stdin failed: PostgreSQL text fields cannot contain NUL (0x00) bytes",
		},
	})

	c, err := pgcopy.Begin(tt, nil)
	require.NoError(t, err)

	err = c.WriteRow(int32(1), nil, "bad\x00value")
	require.Error(t, err)

	var dataErr *pgtype.DataError
	require.True(t, errors.As(err, &dataErr))
	require.Empty(t, tt.sent)

	err = c.Finish(err)
	require.Error(t, err)
	require.Contains(t, err.Error(), "NUL")
	require.Len(t, tt.copyFail, 1)
}

func TestBeginRejectsNonCopyStatement(t *testing.T) {
	for _, status := range []pgcopy.ResultStatus{pgcopy.StatusTuplesOK, pgcopy.StatusCommandOK} {
		tt := &testTransport{results: []*pgcopy.CommandResult{{Status: status, CommandTag: "SELECT 1"}}}

		_, err := pgcopy.Begin(tt, nil)
		require.Error(t, err)

		var progErr *pgcopy.ProgrammingError
		require.True(t, errors.As(err, &progErr), "status %s", status)
	}
}

func TestBeginReturnsServerError(t *testing.T) {
	tt := &testTransport{results: []*pgcopy.CommandResult{{
		Status: pgcopy.StatusFatalError,
		Err:    &pgcopy.PgError{Severity: "ERROR", Code: pgcopy.PgErrorSyntaxErrorCode, Message: `syntax error at or near "frmo"`},
	}}}

	_, err := pgcopy.Begin(tt, nil)
	require.Error(t, err)

	var pgErr *pgcopy.PgError
	require.True(t, errors.As(err, &pgErr))
	require.Equal(t, pgcopy.PgErrorSyntaxErrorCode, pgErr.Code)
}

func TestCopyOutRead(t *testing.T) {
	blocks := [][]byte{[]byte("10\t20\thello\n"), []byte("40\t\\N\tworld\n")}
	tt := &testTransport{
		results: []*pgcopy.CommandResult{
			{Status: pgcopy.StatusCopyOut, Format: pgtype.TextFormatCode},
			{Status: pgcopy.StatusCommandOK, CommandTag: "COPY 2"},
		},
		recvBlocks: blocks,
	}

	c, err := pgcopy.Begin(tt, nil)
	require.NoError(t, err)
	require.Equal(t, pgcopy.DirectionOut, c.Direction())

	for _, want := range blocks {
		got, err := c.Read()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	// Exhaustion is idempotent.
	for i := 0; i < 3; i++ {
		got, err := c.Read()
		require.NoError(t, err)
		require.Empty(t, got)
	}

	require.NoError(t, c.Finish(nil))
	require.Equal(t, int64(2), c.RowsAffected())

	// Still empty after finalization.
	got, err := c.Read()
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestCopyOutIterate(t *testing.T) {
	blocks := [][]byte{[]byte("a\n"), []byte("b\n"), []byte("c\n")}
	tt := &testTransport{
		results: []*pgcopy.CommandResult{
			{Status: pgcopy.StatusCopyOut, Format: pgtype.TextFormatCode},
			{Status: pgcopy.StatusCommandOK, CommandTag: "COPY 3"},
		},
		recvBlocks: blocks,
	}

	c, err := pgcopy.Begin(tt, nil)
	require.NoError(t, err)

	var got [][]byte
	for c.Next() {
		got = append(got, c.Bytes())
	}
	require.NoError(t, c.Err())
	require.Equal(t, blocks, got)

	require.False(t, c.Next())

	require.NoError(t, c.Finish(nil))
	require.Equal(t, int64(3), c.RowsAffected())
}

func TestCopyOutFinishDrainsUnreadBlocks(t *testing.T) {
	tt := &testTransport{
		results: []*pgcopy.CommandResult{
			{Status: pgcopy.StatusCopyOut, Format: pgtype.TextFormatCode},
			{Status: pgcopy.StatusCommandOK, CommandTag: "COPY 2"},
		},
		recvBlocks: [][]byte{[]byte("a\n"), []byte("b\n")},
	}

	c, err := pgcopy.Begin(tt, nil)
	require.NoError(t, err)

	// Abandon the stream without reading it.
	require.NoError(t, c.Finish(nil))
	require.Empty(t, tt.recvBlocks)
	require.Equal(t, int64(2), c.RowsAffected())
}

func TestCopyWrongDirectionOperations(t *testing.T) {
	out := &testTransport{results: []*pgcopy.CommandResult{{Status: pgcopy.StatusCopyOut, Format: pgtype.TextFormatCode}}}
	c, err := pgcopy.Begin(out, nil)
	require.NoError(t, err)

	var progErr *pgcopy.ProgrammingError
	require.True(t, errors.As(c.Write([]byte("x")), &progErr))
	require.True(t, errors.As(c.WriteRow(int32(1)), &progErr))

	in := &testTransport{results: []*pgcopy.CommandResult{{Status: pgcopy.StatusCopyIn, Format: pgtype.TextFormatCode}}}
	c, err = pgcopy.Begin(in, nil)
	require.NoError(t, err)

	_, err = c.Read()
	require.True(t, errors.As(err, &progErr))
}

func TestCopyWriteAfterFinish(t *testing.T) {
	tt := copyInTransport(pgtype.TextFormatCode, &pgcopy.CommandResult{Status: pgcopy.StatusCommandOK, CommandTag: "COPY 0"})

	c, err := pgcopy.Begin(tt, nil)
	require.NoError(t, err)
	require.NoError(t, c.Finish(nil))

	var progErr *pgcopy.ProgrammingError
	require.True(t, errors.As(c.Write([]byte("x")), &progErr))
	require.True(t, errors.As(c.WriteRow(int32(1)), &progErr))
}

func TestCopyFinishIsIdempotentOnError(t *testing.T) {
	opErr := errors.New("boom")
	tt := copyInTransport(pgtype.TextFormatCode, &pgcopy.CommandResult{
		Status: pgcopy.StatusFatalError,
		Err:    &pgcopy.PgError{Severity: "ERROR", Code: pgcopy.PgErrorQueryCanceledCode, Message: "COPY from stdin failed: boom"},
	})

	c, err := pgcopy.Begin(tt, nil)
	require.NoError(t, err)

	require.Error(t, c.Finish(opErr))

	// A second Finish touches nothing and hands back what it was given.
	require.Same(t, opErr, c.Finish(opErr))
	require.NoError(t, c.Finish(nil))
	require.Len(t, tt.copyFail, 1)
}

func TestRunFinalizesOnSuccess(t *testing.T) {
	tt := copyInTransport(pgtype.TextFormatCode, &pgcopy.CommandResult{Status: pgcopy.StatusCommandOK, CommandTag: "COPY 2"})

	rows, err := pgcopy.Run(tt, nil, func(c *pgcopy.Copy) error {
		if err := c.WriteRow(int32(10), int32(20), "hello"); err != nil {
			return err
		}
		return c.WriteRow(int32(40), nil, "world")
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), rows)
	require.True(t, tt.copyDone)
}

func TestRunFinalizesOnCallbackError(t *testing.T) {
	tt := copyInTransport(pgtype.TextFormatCode, &pgcopy.CommandResult{
		Status: pgcopy.StatusFatalError,
		Err:    &pgcopy.PgError{Severity: "ERROR", Code: pgcopy.PgErrorQueryCanceledCode, Message: "COPY from stdin failed: row 3 rejected"},
	})

	rows, err := pgcopy.Run(tt, nil, func(c *pgcopy.Copy) error {
		if err := c.WriteRow(int32(1), nil, "a"); err != nil {
			return err
		}
		return errors.New("row 3 rejected")
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "row 3 rejected")
	require.Equal(t, int64(-1), rows)
	require.Equal(t, []string{"row 3 rejected"}, tt.copyFail)
	require.False(t, tt.copyDone)
}

func TestRunFinalizesOnCallbackPanic(t *testing.T) {
	tt := copyInTransport(pgtype.TextFormatCode, &pgcopy.CommandResult{
		Status: pgcopy.StatusFatalError,
		Err:    &pgcopy.PgError{Severity: "ERROR", Code: pgcopy.PgErrorQueryCanceledCode, Message: "COPY from stdin failed: copy callback panicked: boom"},
	})

	require.PanicsWithValue(t, "boom", func() {
		_, _ = pgcopy.Run(tt, nil, func(c *pgcopy.Copy) error {
			if err := c.Write([]byte("1\n")); err != nil {
				return err
			}
			panic("boom")
		})
	})

	// The session was aborted before the panic continued unwinding: the
	// failure marker carries the panic text and the pending result was
	// consumed, leaving the connection request-able.
	require.Len(t, tt.copyFail, 1)
	require.Contains(t, tt.copyFail[0], "boom")
	require.False(t, tt.copyDone)
	require.Empty(t, tt.results)
}

func TestRunReportsBeginFailure(t *testing.T) {
	tt := &testTransport{results: []*pgcopy.CommandResult{{Status: pgcopy.StatusTuplesOK, CommandTag: "SELECT 1"}}}

	called := false
	rows, err := pgcopy.Run(tt, nil, func(c *pgcopy.Copy) error {
		called = true
		return nil
	})
	require.Error(t, err)
	require.False(t, called)
	require.Equal(t, int64(-1), rows)
}

func TestCopyUsesConfiguredConnInfo(t *testing.T) {
	ci := pgtype.NewConnInfo()
	require.NoError(t, ci.SetClientEncoding("LATIN1"))

	tt := copyInTransport(pgtype.TextFormatCode, &pgcopy.CommandResult{Status: pgcopy.StatusCommandOK, CommandTag: "COPY 1"})

	c, err := pgcopy.Begin(tt, &pgcopy.Config{ConnInfo: ci})
	require.NoError(t, err)
	require.NoError(t, c.WriteRow("héllo"))
	require.NoError(t, c.Finish(nil))

	require.Equal(t, []byte{'h', 0xe9, 'l', 'l', 'o', '\n'}, tt.sentBytes())
}

type capturedLog struct {
	level pgcopy.LogLevel
	msg   string
	data  map[string]interface{}
}

type recordingLogger struct {
	logs []capturedLog
}

func (rl *recordingLogger) Log(ctx context.Context, level pgcopy.LogLevel, msg string, data map[string]interface{}) {
	rl.logs = append(rl.logs, capturedLog{level: level, msg: msg, data: data})
}

func TestCommandTagRowsAffected(t *testing.T) {
	tests := []struct {
		tag  pgcopy.CommandTag
		want int64
	}{
		{tag: "COPY 5", want: 5},
		{tag: "COPY 0", want: 0},
		{tag: "INSERT 0 3", want: 3},
		{tag: "CREATE TABLE", want: 0},
		{tag: "", want: 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.tag.RowsAffected(), string(tt.tag))
	}
}

func TestLogLevelFromString(t *testing.T) {
	for _, s := range []string{"trace", "debug", "info", "warn", "error", "none"} {
		lvl, err := pgcopy.LogLevelFromString(s)
		require.NoError(t, err)
		require.Equal(t, s, lvl.String())
	}

	_, err := pgcopy.LogLevelFromString("verbose")
	require.Error(t, err)
}

func TestCopyLogsSessionLifecycle(t *testing.T) {
	logger := &recordingLogger{}
	tt := copyInTransport(pgtype.TextFormatCode, &pgcopy.CommandResult{Status: pgcopy.StatusCommandOK, CommandTag: "COPY 1"})

	c, err := pgcopy.Begin(tt, &pgcopy.Config{Logger: logger, LogLevel: pgcopy.LogLevelTrace})
	require.NoError(t, err)
	require.NoError(t, c.WriteRow(int32(1), nil, "a"))
	require.NoError(t, c.Finish(nil))

	var msgs []string
	for _, l := range logger.logs {
		msgs = append(msgs, l.msg)
	}
	require.Contains(t, msgs, "copy started")
	require.Contains(t, msgs, "copy finished")
}

func TestCopyLogsAbort(t *testing.T) {
	logger := &recordingLogger{}
	tt := copyInTransport(pgtype.TextFormatCode, &pgcopy.CommandResult{
		Status: pgcopy.StatusFatalError,
		Err:    &pgcopy.PgError{Severity: "ERROR", Code: pgcopy.PgErrorQueryCanceledCode, Message: "COPY from stdin failed: boom"},
	})

	c, err := pgcopy.Begin(tt, &pgcopy.Config{Logger: logger, LogLevel: pgcopy.LogLevelError})
	require.NoError(t, err)
	require.Error(t, c.Finish(errors.New("boom")))

	found := false
	for _, l := range logger.logs {
		if l.msg == "copy aborted" && l.level == pgcopy.LogLevelError {
			found = true
		}
	}
	require.True(t, found)

	// LogLevelError must have suppressed the debug-level start entry.
	for _, l := range logger.logs {
		require.False(t, strings.HasPrefix(l.msg, "copy started"))
	}
}
