package textenc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// sjis encodes a string as CP932 bytes for fixtures.
func sjis(t *testing.T, s string) []byte {
	t.Helper()
	out, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(s))
	require.NoError(t, err)
	return out
}

func TestDetect_BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a,b\n1,2\n")...)
	assert.Equal(t, UTF8WithBOM, Detect(data))
}

func TestDetect_UTF8(t *testing.T) {
	assert.Equal(t, UTF8, Detect([]byte("商品名,価格\nりんご,100\n")))
}

func TestDetect_CP932(t *testing.T) {
	data := sjis(t, "商品名,価格\nりんご,100\n")
	assert.Equal(t, CP932, Detect(data))
}

func TestDetect_FallbackLatin1(t *testing.T) {
	// 0x81 starts a CP932 double-byte sequence but 0x0A is not a valid
	// trail byte, and a bare 0x81 is not valid UTF-8 either.
	data := []byte{0x81, 0x0A, 0x81}
	assert.Equal(t, Latin1, Detect(data))
}

func TestDetect_EmptyIsUTF8(t *testing.T) {
	assert.Equal(t, UTF8, Detect(nil))
}

func TestDecode_StripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a,b")...)
	text, lossy := Decode(data, UTF8WithBOM)
	assert.Equal(t, "a,b", text)
	assert.False(t, lossy)
}

func TestDecode_CP932RoundTrip(t *testing.T) {
	orig := "JANコード,商品名\n4901234567890,ウィジェット\n"
	text, lossy := Decode(sjis(t, orig), CP932)
	assert.Equal(t, orig, text)
	assert.False(t, lossy)
}

func TestDecode_LossyMarksReplacement(t *testing.T) {
	text, lossy := Decode([]byte{'a', 0xFF, 0xFE, 'b'}, UTF8)
	assert.True(t, lossy)
	assert.Contains(t, text, "�")
}

func TestEncode_BOMPrefix(t *testing.T) {
	out, err := Encode("a,b", UTF8WithBOM)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF, 'a', ',', 'b'}, out)
}

func TestEncode_CP932(t *testing.T) {
	out, err := Encode("商品名", CP932)
	require.NoError(t, err)
	assert.Equal(t, sjis(t, "商品名"), out)
}

func TestEncode_ReplacesUnsupported(t *testing.T) {
	// Hebrew has no CP932 representation; output must still be produced.
	out, err := Encode("שלום", CP932)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestEncode_UnknownEncoding(t *testing.T) {
	_, err := Encode("x", Encoding("ebcdic"))
	assert.Error(t, err)
}

func TestDetectNewline(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Newline
	}{
		{"all crlf", "a\r\nb\r\nc\r\n", CRLF},
		{"all lf", "a\nb\nc\n", LF},
		{"mixed lf wins", "a\r\nb\nc\nd\n", LF},
		{"tie favors crlf", "a\r\nb\n", CRLF},
		{"empty", "", CRLF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectNewline([]byte(tt.data)))
		})
	}
}

func TestNewlineTerminator(t *testing.T) {
	assert.Equal(t, "\r\n", CRLF.Terminator())
	assert.Equal(t, "\n", LF.Terminator())
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("utf-8"))
	assert.True(t, Valid("utf-8-sig"))
	assert.True(t, Valid("cp932"))
	assert.True(t, Valid("latin-1"))
	assert.False(t, Valid("utf-16"))
}
