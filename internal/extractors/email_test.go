package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plainEML = "From: alice@example.com\r\n" +
	"To: bob@example.com\r\n" +
	"Subject: Quarterly report\r\n" +
	"Date: Mon, 01 Jan 2024 10:00:00 +0000\r\n" +
	"Content-Type: text/plain\r\n\r\n" +
	"The figures are attached.\r\n"

const multipartEML = "From: alice@example.com\r\n" +
	"To: bob@example.com, carol@example.com\r\n" +
	"Subject: Mixed content\r\n" +
	"Content-Type: multipart/mixed; boundary=BOUNDARY\r\n\r\n" +
	"--BOUNDARY\r\n" +
	"Content-Type: text/plain\r\n\r\n" +
	"Plain body here.\r\n" +
	"--BOUNDARY\r\n" +
	"Content-Type: application/pdf\r\n" +
	"Content-Disposition: attachment; filename=\"report.pdf\"\r\n\r\n" +
	"%PDF-1.4 fake bytes\r\n" +
	"--BOUNDARY--\r\n"

func TestEmailExtractorPlainBody(t *testing.T) {
	e := NewEmailExtractor()
	result, err := e.ExtractBytes(context.Background(), []byte(plainEML), "message/rfc822", nil)
	require.NoError(t, err)
	assert.Contains(t, result.Content, "figures are attached")
	assert.Equal(t, "Quarterly report", result.Metadata.Email.Subject)
	assert.Equal(t, "alice@example.com", result.Metadata.Email.FromEmail)
}

func TestEmailExtractorMultipartWithAttachment(t *testing.T) {
	e := NewEmailExtractor()
	result, err := e.ExtractBytes(context.Background(), []byte(multipartEML), "message/rfc822", nil)
	require.NoError(t, err)
	assert.Contains(t, result.Content, "Plain body here")
	assert.ElementsMatch(t, []string{"bob@example.com", "carol@example.com"}, result.Metadata.Email.ToEmails)

	attachments, ok := result.Metadata.Additional["attachments"].([]Attachment)
	require.True(t, ok)
	require.Len(t, attachments, 1)
	assert.Equal(t, "report.pdf", attachments[0].Name)
	assert.False(t, attachments[0].IsImage)
}

func TestEmailExtractorMalformedHeaderIsParsingError(t *testing.T) {
	e := NewEmailExtractor()
	_, err := e.ExtractBytes(context.Background(), []byte("not an email at all\x00\x01"), "message/rfc822", nil)
	assert.Error(t, err)
}
