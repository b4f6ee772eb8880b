package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codacy-stress-test/libassuan/errcode"
)

func TestParseCommandSplitsVerbAndArgs(t *testing.T) {
	msg := ParseCommand([]byte("ECHO hello world"))
	assert.Equal(t, KindCommand, msg.Kind)
	assert.Equal(t, "ECHO", msg.Verb)
	assert.Equal(t, "hello world", msg.Args)
}

func TestParseCommandNoArgs(t *testing.T) {
	msg := ParseCommand([]byte("NOP"))
	assert.Equal(t, "NOP", msg.Verb)
	assert.Equal(t, "", msg.Args)
}

func TestParseCommandTrimsLeadingWhitespace(t *testing.T) {
	msg := ParseCommand([]byte("   NOP"))
	assert.Equal(t, "NOP", msg.Verb)
}

func TestParseReplyOK(t *testing.T) {
	msg, err := ParseReply([]byte("OK we are good"))
	assert.NoError(t, err)
	assert.Equal(t, KindOK, msg.Kind)
	assert.Equal(t, "we are good", msg.Info)
}

func TestParseReplyERR(t *testing.T) {
	msg, err := ParseReply([]byte("ERR 275 Unknown command"))
	assert.NoError(t, err)
	assert.Equal(t, KindERR, msg.Kind)
	assert.Equal(t, errcode.UnknownCommand, msg.Code)
	assert.Equal(t, "Unknown command", msg.Desc)
}

func TestParseReplyERRNoDescription(t *testing.T) {
	msg, err := ParseReply([]byte("ERR 99"))
	assert.NoError(t, err)
	assert.Equal(t, errcode.Canceled, msg.Code)
	assert.Equal(t, "", msg.Desc)
}

func TestParseReplyStatus(t *testing.T) {
	msg, err := ParseReply([]byte("S NEED 3"))
	assert.NoError(t, err)
	assert.Equal(t, KindStatus, msg.Kind)
	assert.Equal(t, "NEED", msg.Keyword)
	assert.Equal(t, "3", msg.Args)
}

func TestParseReplyData(t *testing.T) {
	msg, err := ParseReply([]byte("D ab%25c"))
	assert.NoError(t, err)
	assert.Equal(t, KindData, msg.Kind)
	assert.Equal(t, []byte("ab%c"), msg.Data)
}

func TestParseReplyInquire(t *testing.T) {
	msg, err := ParseReply([]byte("INQUIRE NEED 3"))
	assert.NoError(t, err)
	assert.Equal(t, KindInquire, msg.Kind)
	assert.Equal(t, "NEED", msg.Keyword)
	assert.Equal(t, "3", msg.Args)
}

func TestParseReplyEndAndCancel(t *testing.T) {
	msg, err := ParseReply([]byte("END"))
	assert.NoError(t, err)
	assert.Equal(t, KindEnd, msg.Kind)

	msg, err = ParseReply([]byte("CAN"))
	assert.NoError(t, err)
	assert.Equal(t, KindCancel, msg.Kind)
}

func TestParseReplyComment(t *testing.T) {
	msg, err := ParseReply([]byte("# a comment"))
	assert.NoError(t, err)
	assert.Equal(t, KindComment, msg.Kind)
	assert.Equal(t, "a comment", msg.Text)
}

func TestParseReplyUnknownTokenIsInvalidResponse(t *testing.T) {
	_, err := ParseReply([]byte("WAT nope"))
	code, ok := errcode.As(err)
	assert.True(t, ok)
	assert.Equal(t, errcode.InvalidResponse, code)
}

func TestEncodeHelpers(t *testing.T) {
	assert.Equal(t, []byte("ECHO hello"), EncodeCommand("ECHO", "hello"))
	assert.Equal(t, []byte("NOP"), EncodeCommand("NOP", ""))
	assert.Equal(t, []byte("OK"), EncodeOK(""))
	assert.Equal(t, []byte("OK done"), EncodeOK("done"))
	assert.Equal(t, []byte("ERR 275 Unknown command"), EncodeERR(errcode.UnknownCommand, "Unknown command"))
	assert.Equal(t, []byte("S NEED 3"), EncodeStatus("NEED", "3"))
	assert.Equal(t, []byte("INQUIRE NEED 3"), EncodeInquire("NEED", "3"))
}
