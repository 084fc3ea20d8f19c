package pgtype

// DataError reports a value that cannot be represented in the requested wire
// format, such as a NUL byte in a text-format string. It is raised before
// any bytes are produced.
type DataError struct {
	msg string
}

func (e *DataError) Error() string {
	return e.msg
}
