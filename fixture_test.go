package docx2md

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	relImage     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relHyperlink = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	relAFChunk   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/aFChunk"
	relPackage   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/package"
)

// pngData starts with the PNG signature; the rest is filler.
var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDRfake-image-bytes")

// fixture describes an in-memory .docx package.
type fixture struct {
	body      string
	rels      []string
	rootRels  []string
	overrides []string
	parts     map[string][]byte
}

type fixtureOption func(*fixture)

func withPart(name string, data []byte) fixtureOption {
	return func(f *fixture) { f.parts[name] = data }
}

func withRel(id, relType, target string) fixtureOption {
	return func(f *fixture) {
		f.rels = append(f.rels, fmt.Sprintf(`<Relationship Id="%s" Type="%s" Target="%s"/>`, id, relType, target))
	}
}

func withExternalRel(id, relType, target string) fixtureOption {
	return func(f *fixture) {
		f.rels = append(f.rels, fmt.Sprintf(`<Relationship Id="%s" Type="%s" Target="%s" TargetMode="External"/>`, id, relType, target))
	}
}

func withOverride(part, contentType string) fixtureOption {
	return func(f *fixture) {
		f.overrides = append(f.overrides, fmt.Sprintf(`<Override PartName="/%s" ContentType="%s"/>`, part, contentType))
	}
}

func withStyles(styles string) fixtureOption {
	return withPart("word/styles.xml", []byte(`<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`+styles+`</w:styles>`))
}

func withNumbering(numbering string) fixtureOption {
	return withPart("word/numbering.xml", []byte(`<w:numbering xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`+numbering+`</w:numbering>`))
}

func withCoreProperties(title, creator string) fixtureOption {
	return func(f *fixture) {
		f.parts["docProps/core.xml"] = []byte(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">` +
			`<dc:title>` + title + `</dc:title><dc:creator>` + creator + `</dc:creator></cp:coreProperties>`)
		f.rootRels = append(f.rootRels, `<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>`)
	}
}

// withImage stores pngData at word/media/<name> and relates it as id.
func withImage(id, name string) fixtureOption {
	return func(f *fixture) {
		withPart("word/media/"+name, pngData)(f)
		withRel(id, relImage, "media/"+name)(f)
	}
}

// buildDocx assembles a minimal WordprocessingML package around body.
func buildDocx(t *testing.T, body string, opts ...fixtureOption) []byte {
	t.Helper()
	f := &fixture{body: body, parts: map[string][]byte{}}
	for _, opt := range opts {
		opt(f)
	}

	f.parts["[Content_Types].xml"] = []byte(`<?xml version="1.0" encoding="UTF-8"?>` +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Default Extension="png" ContentType="image/png"/>` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		strings.Join(f.overrides, "") + `</Types>`)
	f.parts["_rels/.rels"] = []byte(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
		strings.Join(f.rootRels, "") + `</Relationships>`)
	if len(f.rels) > 0 {
		f.parts["word/_rels/document.xml.rels"] = []byte(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			strings.Join(f.rels, "") + `</Relationships>`)
	}
	if _, ok := f.parts["word/document.xml"]; !ok {
		f.parts["word/document.xml"] = []byte(documentXML(f.body))
	}
	return zipParts(t, f.parts)
}

func documentXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"` +
		` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"` +
		` xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"` +
		` xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"` +
		` xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"` +
		` xmlns:m="http://schemas.openxmlformats.org/officeDocument/2006/math"` +
		` xmlns:o="urn:schemas-microsoft-com:office:office"` +
		` xmlns:v="urn:schemas-microsoft-com:vml">` +
		`<w:body>` + body + `<w:sectPr/></w:body></w:document>`
}

// zipParts writes parts in name order, [Content_Types].xml first.
func zipParts(t *testing.T, parts map[string][]byte) []byte {
	t.Helper()
	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(parts[name])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func para(text string) string {
	return `<w:p>` + run(text) + `</w:p>`
}

func styledPara(styleID, text string) string {
	return `<w:p><w:pPr><w:pStyle w:val="` + styleID + `"/></w:pPr>` + run(text) + `</w:p>`
}

func listPara(numID, ilvl int, text string) string {
	return fmt.Sprintf(`<w:p><w:pPr><w:numPr><w:ilvl w:val="%d"/><w:numId w:val="%d"/></w:numPr></w:pPr>%s</w:p>`, ilvl, numID, run(text))
}

func run(text string) string {
	return `<w:r><w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

func formattedRun(props, text string) string {
	return `<w:r><w:rPr>` + props + `</w:rPr><w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

// drawingRun is an inline picture referencing the image relationship rid.
func drawingRun(rid, descr string) string {
	return `<w:r><w:drawing><wp:inline><wp:extent cx="100" cy="100"/>` +
		`<wp:docPr id="1" name="Picture 1" descr="` + descr + `"/>` +
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">` +
		`<pic:pic><pic:blipFill><a:blip r:embed="` + rid + `"/></pic:blipFill></pic:pic>` +
		`</a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`
}

func tableXML(rows ...[]string) string {
	var b strings.Builder
	b.WriteString(`<w:tbl><w:tblPr/><w:tblGrid/>`)
	for _, row := range rows {
		b.WriteString(`<w:tr>`)
		for _, cell := range row {
			b.WriteString(`<w:tc><w:tcPr/>` + para(cell) + `</w:tc>`)
		}
		b.WriteString(`</w:tr>`)
	}
	b.WriteString(`</w:tbl>`)
	return b.String()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func convertDocx(t *testing.T, data []byte, mode ImageMode, opts ...Option) *Result {
	t.Helper()
	opts = append([]Option{WithImageMode(mode), WithLogger(quietLogger())}, opts...)
	result, err := New(opts...).Convert(data, "doc.docx")
	require.NoError(t, err)
	return result
}

func archiveNames(t *testing.T, archive []byte) []string {
	t.Helper()
	entries, err := ReadArchive(archive)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}
