package api

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/textproto"
)

type multipartField struct {
	name  string
	value string
}

type multipartFile struct {
	field       string
	filename    string
	contentType string
	reader      io.Reader
}

// Multipart accumulates form fields and files for PostMultipart. Field order is kept.
type Multipart struct {
	fields []multipartField
	files  []multipartFile
}

// NewMultipart returns an empty multipart form.
func NewMultipart() *Multipart {
	return &Multipart{}
}

// Set appends a text field.
func (m *Multipart) Set(name, value string) *Multipart {
	m.fields = append(m.fields, multipartField{name: name, value: value})
	return m
}

// MethodOverride adds Laravel's _method field, needed because PHP only parses
// multipart bodies on POST.
func (m *Multipart) MethodOverride(method string) *Multipart {
	return m.Set("_method", method)
}

// File appends a file part. A nil reader is ignored.
func (m *Multipart) File(field, filename, contentType string, r io.Reader) *Multipart {
	if r == nil {
		return m
	}
	m.files = append(m.files, multipartFile{field: field, filename: filename, contentType: contentType, reader: r})
	return m
}

// Value returns the first value set for name.
func (m *Multipart) Value(name string) string {
	for _, f := range m.fields {
		if f.name == name {
			return f.value
		}
	}
	return ""
}

// HasFile reports whether a file was attached under field.
func (m *Multipart) HasFile(field string) bool {
	for _, f := range m.files {
		if f.field == field {
			return true
		}
	}
	return false
}

func (m *Multipart) encode() (io.Reader, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range m.fields {
		if err := writer.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}
	for _, f := range m.files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+escapeQuotes(f.field)+`"; filename="`+escapeQuotes(f.filename)+`"`)
		contentType := f.contentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.reader); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

func escapeQuotes(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
