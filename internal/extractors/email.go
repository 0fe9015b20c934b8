package extractors

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"unicode/utf16"

	"github.com/richardlehane/mscfb"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/kerr"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// EmailExtractor parses .eml (RFC 822, via net/mail) and .msg (Outlook's
// compound-file format, via richardlehane/mscfb) into headers, a body
// (preferring plain text, falling back to HTML-converted-to-Markdown),
// and an attachment manifest.
type EmailExtractor struct{ base }

func NewEmailExtractor() *EmailExtractor {
	return &EmailExtractor{base{
		name:     "email",
		version:  "1.0.0",
		priority: 50,
		mimes:    []string{"message/rfc822", "application/vnd.ms-outlook"},
	}}
}

func (e *EmailExtractor) ExtractFile(ctx context.Context, path, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	return extractFileViaBytes(ctx, path, mimeType, cfg, e.ExtractBytes)
}

// Attachment describes one email attachment surfaced in
// metadata.additional["attachments"].
type Attachment struct {
	Name    string `json:"name"`
	Mime    string `json:"mime"`
	Size    int    `json:"size"`
	IsImage bool   `json:"is_image"`
}

func (e *EmailExtractor) ExtractBytes(_ context.Context, content []byte, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	if mimeType == "application/vnd.ms-outlook" {
		return extractMSG(content, mimeType, cfg)
	}
	return extractEML(content, mimeType, cfg)
}

func extractEML(content []byte, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(content))
	if err != nil {
		return nil, kerr.NewParsingError("parse email headers", err)
	}

	meta := &types.EmailMetadata{
		Subject: msg.Header.Get("Subject"),
		Date:    msg.Header.Get("Date"),
	}
	if from, err := msg.Header.AddressList("From"); err == nil && len(from) > 0 {
		meta.FromEmail = from[0].Address
	}
	if to, err := msg.Header.AddressList("To"); err == nil {
		for _, addr := range to {
			meta.ToEmails = append(meta.ToEmails, addr.Address)
		}
	}

	body, attachments, err := parseEMLBody(msg.Header.Get("Content-Type"), msg.Body, cfg)
	if err != nil {
		return nil, err
	}

	return &types.ExtractionResult{
		Content:  body,
		MimeType: mimeType,
		Metadata: types.Metadata{
			Email:      meta,
			Additional: map[string]any{"attachments": attachments},
		},
	}, nil
}

// parseEMLBody walks a (possibly nested) multipart MIME body, preferring
// text/plain parts; text/html parts are converted through the HTML
// extractor's Markdown conversion when no plain-text part exists.
// Non-text, non-inline parts become Attachment entries.
func parseEMLBody(contentType string, body io.Reader, cfg *config.ExtractionConfig) (string, []Attachment, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		raw, _ := io.ReadAll(body)
		return string(raw), nil, nil
	}

	if !strings.HasPrefix(mediaType, "multipart/") {
		raw, _ := io.ReadAll(body)
		return string(raw), nil, nil
	}

	reader := multipart.NewReader(body, params["boundary"])

	var plain, html string
	var attachments []Attachment

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		partType := part.Header.Get("Content-Type")
		baseType, _, _ := mime.ParseMediaType(partType)
		disposition := part.Header.Get("Content-Disposition")

		raw, _ := io.ReadAll(decodeTransfer(part.Header.Get("Content-Transfer-Encoding"), part))

		switch {
		case strings.HasPrefix(baseType, "text/plain") && !strings.Contains(disposition, "attachment"):
			plain += string(raw)
		case strings.HasPrefix(baseType, "text/html") && !strings.Contains(disposition, "attachment"):
			html += string(raw)
		case strings.HasPrefix(baseType, "multipart/"):
			nestedPlain, nestedAtt, _ := parseEMLBody(partType, bytes.NewReader(raw), cfg)
			if nestedPlain != "" {
				plain += nestedPlain
			}
			attachments = append(attachments, nestedAtt...)
		default:
			name := part.FileName()
			if name == "" {
				name = "attachment"
			}
			attachments = append(attachments, Attachment{
				Name:    name,
				Mime:    baseType,
				Size:    len(raw),
				IsImage: strings.HasPrefix(baseType, "image/"),
			})
		}
	}

	if plain != "" {
		return plain, attachments, nil
	}
	if html != "" {
		converted, err := NewHTMLExtractor().ExtractBytes(context.Background(), []byte(html), "text/html", cfg)
		if err == nil {
			return converted.Content, attachments, nil
		}
		return html, attachments, nil
	}
	return "", attachments, nil
}

func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

// msgPropertyNames maps the MAPI property tags this extractor recognizes
// to the field they populate; property stream names follow the pattern
// "__substg1.0_<tag hex><type hex>".
var msgPropertyNames = map[string]string{
	"0037": "subject",
	"1000": "body",
	"0C1A": "sender_name",
	"0C1F": "sender_email",
	"0E04": "display_to",
	"0E1F": "transport_headers",
}

// extractMSG reads Outlook's compound-file (.msg) format via mscfb,
// recovering the handful of MAPI property streams this extractor
// recognizes. Full MAPI property parsing (recipient tables, nested
// attachment storages with their own property sets) is out of scope;
// this surfaces subject/body/sender and lists embedded streams named
// like attachment storages ("__attach_version1.0_#...") as Attachment
// placeholders without their payload bytes.
func extractMSG(content []byte, mimeType string, _ *config.ExtractionConfig) (*types.ExtractionResult, error) {
	doc, err := mscfb.New(bytes.NewReader(content))
	if err != nil {
		return nil, kerr.NewParsingError("open MSG compound file", err)
	}

	fields := map[string]string{}
	var attachments []Attachment

	for entry, entryErr := doc.Next(); entryErr == nil; entry, entryErr = doc.Next() {
		name := entry.Name
		if strings.HasPrefix(name, "__attach_version1.0_#") {
			attachments = append(attachments, Attachment{Name: name, Size: int(entry.Size)})
			continue
		}
		if !strings.HasPrefix(name, "__substg1.0_") {
			continue
		}

		tag := strings.TrimPrefix(name, "__substg1.0_")
		if len(tag) < 4 {
			continue
		}
		propName, ok := msgPropertyNames[strings.ToUpper(tag[:4])]
		if !ok {
			continue
		}

		raw, err := io.ReadAll(entry)
		if err != nil {
			continue
		}
		decoded := decodeMSGString(tag, raw)
		if existing, ok := fields[propName]; !ok || existing == "" {
			fields[propName] = decoded
		}
	}

	meta := &types.EmailMetadata{
		Subject:   fields["subject"],
		FromEmail: fields["sender_email"],
	}

	return &types.ExtractionResult{
		Content:  fields["body"],
		MimeType: mimeType,
		Metadata: types.Metadata{
			Email:      meta,
			Additional: map[string]any{"attachments": attachments},
		},
	}, nil
}

// decodeMSGString interprets a property stream's payload as UTF-16LE
// (type suffix "001F") or single-byte text (type suffix "001E"),
// matching the two string property types MAPI defines.
func decodeMSGString(tag string, data []byte) string {
	if len(tag) < 8 {
		return string(data)
	}
	if strings.EqualFold(tag[4:8], "001F") {
		return utf16LEToString(data)
	}
	return string(data)
}

func utf16LEToString(data []byte) string {
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}
	units := make([]uint16, len(data)/2)
	for i := range units {
		units[i] = uint16(data[2*i]) | uint16(data[2*i+1])<<8
	}
	return string(utf16.Decode(units))
}
