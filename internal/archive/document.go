package archive

import (
	"bytes"
	"strings"
)

const crlf = "\r\n"

// Field is a single "Name: Value" header line.
type Field struct {
	Name  string
	Value string
}

// Part is one boundary-delimited section of a multipart document.
type Part struct {
	Fields []Field
	Body   []byte
}

// Document is an ordered, immutable multipart document. Parts share the
// document's boundary token and are rendered in order, followed by the
// closing delimiter.
type Document struct {
	Headers  []Field
	Boundary string
	Parts    []Part
}

func writeFields(buf *bytes.Buffer, fields []Field) {
	for _, f := range fields {
		buf.WriteString(f.Name)
		buf.WriteString(": ")
		buf.WriteString(f.Value)
		buf.WriteString(crlf)
	}
}

// Render writes the part with the given boundary: the delimiter line, its
// fields, a blank line, the body and a trailing blank line.
func (p Part) Render(boundary string) []byte {
	var buf bytes.Buffer
	p.renderTo(&buf, boundary)
	return buf.Bytes()
}

func (p Part) renderTo(buf *bytes.Buffer, boundary string) {
	buf.WriteString("--")
	buf.WriteString(boundary)
	buf.WriteString(crlf)
	writeFields(buf, p.Fields)
	buf.WriteString(crlf)
	buf.Write(p.Body)
	buf.WriteString(crlf + crlf)
}

// Render joins the header block, every part and the closing delimiter.
func (d *Document) Render() []byte {
	size := 256
	for _, p := range d.Parts {
		size += len(p.Body) + 256
	}

	var buf bytes.Buffer
	buf.Grow(size)

	writeFields(&buf, d.Headers)
	buf.WriteString(crlf)
	for _, p := range d.Parts {
		p.renderTo(&buf, d.Boundary)
	}
	buf.WriteString("--")
	buf.WriteString(d.Boundary)
	buf.WriteString("--" + crlf)

	return buf.Bytes()
}

var filenameEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quoteFilename returns name as a quoted-string parameter value.
func quoteFilename(name string) string {
	return `"` + filenameEscaper.Replace(name) + `"`
}
