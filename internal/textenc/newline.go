package textenc

import "bytes"

// Newline names a line-ending convention.
type Newline string

const (
	CRLF Newline = "CRLF"
	LF   Newline = "LF"
)

// Terminator returns the byte sequence for the convention.
func (n Newline) Terminator() string {
	if n == LF {
		return "\n"
	}
	return "\r\n"
}

// ValidNewline reports whether name is a recognized convention.
func ValidNewline(name string) bool {
	return Newline(name) == CRLF || Newline(name) == LF
}

// DetectNewline picks the dominant line ending by counting CR-LF
// pairs against bare LFs. Ties favor CRLF.
func DetectNewline(data []byte) Newline {
	crlf := bytes.Count(data, []byte("\r\n"))
	bare := bytes.Count(data, []byte("\n")) - crlf
	if bare > crlf {
		return LF
	}
	return CRLF
}
