package docx2md

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const exampleBody = `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Title</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>Hello world</w:t></w:r></w:p>`

func exampleDocx(t *testing.T) []byte {
	return buildDocx(t, exampleBody+`<w:p>`+drawingRun("rId5", "")+`</w:p>`, withImage("rId5", "image1.png"))
}

func TestConvertSeparate(t *testing.T) {
	result := convertDocx(t, exampleDocx(t), ImageSeparate)

	assert.Equal(t, "# Title\n\nHello world\n\n![image1](images/image1.png)\n", result.Markdown)
	assert.Equal(t, "doc", result.Filename)
	assert.Equal(t, ImageSeparate, result.Mode)
	assert.Empty(t, result.Warnings)
	require.Len(t, result.Images, 1)
	assert.Equal(t, "image1.png", result.Images[0].Name)
	assert.Equal(t, "image/png", result.Images[0].MIMEType)
	assert.Equal(t, pngData, result.Images[0].Data)

	archive, err := Bundle(result)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc.md", "images/", "images/image1.png"}, archiveNames(t, archive))

	entries, err := ReadArchive(archive)
	require.NoError(t, err)
	assert.Equal(t, result.Markdown, string(entries[0].Data))
	assert.Equal(t, pngData, entries[2].Data)
}

func TestConvertImageModes(t *testing.T) {
	data := exampleDocx(t)
	tests := []struct {
		mode        ImageMode
		wantImage   string
		wantEntries []string
	}{
		{
			mode:        ImageInline,
			wantImage:   "![image1](data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData) + ")",
			wantEntries: []string{"doc.md", "images/", "images/image1.png"},
		},
		{
			mode:        ImageSeparate,
			wantImage:   "![image1](images/image1.png)",
			wantEntries: []string{"doc.md", "images/", "images/image1.png"},
		},
		{
			mode:        ImageOmit,
			wantImage:   "[image omitted]",
			wantEntries: []string{"doc.md"},
		},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			result := convertDocx(t, data, tt.mode)
			assert.Equal(t, "# Title\n\nHello world\n\n"+tt.wantImage+"\n", result.Markdown)
			// Every mode extracts the same assets.
			assert.Len(t, result.Images, 1)

			archive, err := Bundle(result)
			require.NoError(t, err)
			assert.Equal(t, tt.wantEntries, archiveNames(t, archive))
		})
	}
}

func TestConvertRepeatedImage(t *testing.T) {
	body := `<w:p>` + drawingRun("rId5", "") + `</w:p><w:p>` + drawingRun("rId5", "") + `</w:p>`
	result := convertDocx(t, buildDocx(t, body, withImage("rId5", "image1.png")), ImageSeparate)

	require.Len(t, result.Images, 2)
	assert.Equal(t, "image1.png", result.Images[0].Name)
	assert.Equal(t, "image1-2.png", result.Images[1].Name)
	assert.Equal(t, "![image1](images/image1.png)\n\n![image1-2](images/image1-2.png)\n", result.Markdown)
	assert.Equal(t, len(result.Images), strings.Count(result.Markdown, "](images/"))
}

func TestConvertImageNames(t *testing.T) {
	body := `<w:p>` + drawingRun("rId5", "") + drawingRun("rId6", "") + drawingRun("rId7", "") + `</w:p>`
	data := buildDocx(t, body,
		withImage("rId5", "My Photo.PNG"),
		withImage("rId6", "my_photo.png"),
		withPart("word/media/blob", pngData),
		withRel("rId7", relImage, "media/blob"),
	)
	result := convertDocx(t, data, ImageSeparate)

	require.Len(t, result.Images, 3)
	assert.Equal(t, "My_Photo.png", result.Images[0].Name)
	assert.Equal(t, "my_photo-2.png", result.Images[1].Name)
	assert.Equal(t, "blob.png", result.Images[2].Name)
	assert.Equal(t, "image/png", result.Images[2].MIMEType)
}

func TestConvertImageAltText(t *testing.T) {
	titled := func(attrs string) string {
		return `<w:r><w:drawing><wp:inline><wp:docPr id="1" name="Picture 1" ` + attrs + `/>` +
			`<a:graphic><a:graphicData><pic:pic><pic:nvPicPr><pic:cNvPr id="0" name="img"/></pic:nvPicPr>` +
			`<pic:blipFill><a:blip r:embed="rId5"/></pic:blipFill></pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`
	}
	tests := []struct {
		name string
		run  string
		want string
	}{
		{name: "description", run: drawingRun("rId5", "A *chart*"), want: `![A \*chart\*](images/image1.png)`},
		{name: "title", run: titled(`title="Sales"`), want: `![Sales](images/image1.png)`},
		{name: "description over title", run: titled(`title="Sales" descr="Sales by month"`), want: `![Sales by month](images/image1.png)`},
		{name: "name stem", run: drawingRun("rId5", ""), want: `![image1](images/image1.png)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `<w:p>` + tt.run + `</w:p>`
			result := convertDocx(t, buildDocx(t, body, withImage("rId5", "image1.png")), ImageSeparate)
			assert.Equal(t, tt.want+"\n", result.Markdown)
		})
	}
}

func TestConvertUnresolvedImages(t *testing.T) {
	body := `<w:p>` + drawingRun("rId5", "") + `</w:p>` +
		`<w:p>` + drawingRun("rId99", "") + `</w:p>` +
		`<w:p>` + drawingRun("rId6", "") + `</w:p>`
	data := buildDocx(t, body,
		withRel("rId5", relImage, "media/missing.png"),
		withExternalRel("rId6", relImage, "https://example.com/a.png"),
	)
	result := convertDocx(t, data, ImageSeparate)

	assert.Empty(t, result.Images)
	assert.Equal(t, "[image omitted]\n\n[image omitted]\n\n[image omitted]\n", result.Markdown)
	require.Len(t, result.Warnings, 3)
	assert.Equal(t, WarningImageSkipped, result.Warnings[0].Kind)
	assert.Equal(t, "word/media/missing.png", result.Warnings[0].Part)
	assert.Equal(t, WarningImageSkipped, result.Warnings[1].Kind)
	assert.Equal(t, WarningImageExternal, result.Warnings[2].Kind)
	assert.Equal(t, "https://example.com/a.png", result.Warnings[2].Part)
}

func TestConvertErrors(t *testing.T) {
	ole := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 1024)...)
	noDocument := zipParts(t, map[string][]byte{"hello.txt": []byte("hi")})
	truncated := buildDocx(t, "", withPart("word/document.xml", []byte(`<w:document xmlns:w="x"><w:body><w:p><w:r>`)))
	wrongRoot := buildDocx(t, "", withPart("word/document.xml", []byte(`<w:settings xmlns:w="x"/>`)))

	tests := []struct {
		name     string
		data     []byte
		source   string
		wantKind ParseErrorKind
		wantPart string
	}{
		{name: "plain text", data: []byte("just some text"), source: "notes.docx", wantKind: NotDocument},
		{name: "empty", data: nil, source: "empty.docx", wantKind: NotDocument},
		{name: "legacy word", data: ole, source: "old.doc", wantKind: NotDocument},
		{name: "ole container", data: ole, source: "locked.docx", wantKind: Unsupported},
		{name: "zip without document", data: noDocument, source: "archive.docx", wantKind: NotDocument},
		{name: "truncated document", data: truncated, source: "doc.docx", wantKind: Corrupt, wantPart: "word/document.xml"},
		{name: "wrong root element", data: wrongRoot, source: "doc.docx", wantKind: Corrupt, wantPart: "word/document.xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New(WithLogger(quietLogger())).Convert(tt.data, tt.source)
			require.Error(t, err)
			assert.Nil(t, result)

			var convErr *ConversionError
			require.ErrorAs(t, err, &convErr)
			assert.Equal(t, "parse", convErr.Stage)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.wantKind, parseErr.Kind)
			assert.Equal(t, tt.wantPart, parseErr.Part)
			assert.Equal(t, tt.wantKind == NotDocument, IsNotDocument(err))
			assert.NotEmpty(t, UserMessage(err))
		})
	}
}

func TestConvertCorruptOffset(t *testing.T) {
	data := buildDocx(t, "", withPart("word/document.xml", []byte(`<w:document xmlns:w="x"><w:body><w:p></w:r></w:body></w:document>`)))
	_, err := New(WithLogger(quietLogger())).Convert(data, "doc.docx")

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, Corrupt, parseErr.Kind)
	assert.Greater(t, parseErr.Offset, int64(0))
	assert.Contains(t, err.Error(), "offset=")
}

func TestConvertIgnoresBrokenSideParts(t *testing.T) {
	data := buildDocx(t, para("Body"), withPart("word/styles.xml", []byte(`<w:styles><w:style`)))
	result := convertDocx(t, data, ImageSeparate)

	assert.Equal(t, "Body\n", result.Markdown)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningPartIgnored, result.Warnings[0].Kind)
	assert.Equal(t, "word/styles.xml", result.Warnings[0].Part)
}

func TestConvertContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(WithLogger(quietLogger())).ConvertContext(ctx, exampleDocx(t), "doc.docx")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "The conversion was cancelled.", UserMessage(err))
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Quarterly Report.docx")
	require.NoError(t, os.WriteFile(path, exampleDocx(t), 0o644))

	result, err := New(WithLogger(quietLogger())).ConvertFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly Report", result.Filename)
	assert.Contains(t, result.String(), "Quarterly Report.md")
	assert.Contains(t, result.String(), "1 images, 0 warnings")

	_, err = New(WithLogger(quietLogger())).ConvertFile(filepath.Join(dir, "missing.docx"))
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "read", convErr.Stage)
}

func TestConvertDeterministic(t *testing.T) {
	data := exampleDocx(t)
	for _, mode := range []ImageMode{ImageInline, ImageSeparate, ImageOmit} {
		t.Run(string(mode), func(t *testing.T) {
			first := convertDocx(t, data, mode)
			second := convertDocx(t, data, mode)
			assert.Equal(t, first, second)

			a, err := Bundle(first)
			require.NoError(t, err)
			b, err := Bundle(second)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(a, b), "archives differ")
		})
	}
	assert.Equal(t, ConversionID(data, ImageOmit), ConversionID(data, ImageOmit))
	assert.NotEqual(t, ConversionID(data, ImageOmit), ConversionID(data, ImageInline))
}

func TestConvertFrontMatter(t *testing.T) {
	data := buildDocx(t, para("Body"), withCoreProperties("Report", "Ann Lee"))
	result := convertDocx(t, data, ImageSeparate, WithFrontMatter(true))

	want := "---\n" +
		"title: Report\n" +
		"author: Ann Lee\n" +
		"source: doc.docx\n" +
		"images: separate\n" +
		"conversion_id: " + ConversionID(data, ImageSeparate).String() + "\n" +
		"---\n\n" +
		"Body\n"
	assert.Equal(t, want, result.Markdown)
	assert.Equal(t, "Report", result.Title)

	plain := convertDocx(t, data, ImageSeparate)
	assert.Equal(t, "Body\n", plain.Markdown)
	assert.Equal(t, "Report", plain.Title)
}

func TestConvertEmbeddedWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Name"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Qty"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "apple"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 3))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	object := `<w:p><w:r><w:object><o:OLEObject Type="Embed" ProgID="%s" r:id="%s"/></w:object></w:r></w:p>`
	body := para("Before") +
		fmt.Sprintf(object, "Excel.Sheet.12", "rId9") +
		fmt.Sprintf(object, "Package", "rId10")
	data := buildDocx(t, body,
		withRel("rId9", relPackage, "embeddings/Book1.xlsx"),
		withPart("word/embeddings/Book1.xlsx", buf.Bytes()),
		withRel("rId10", relPackage, "embeddings/oleObject1.bin"),
		withPart("word/embeddings/oleObject1.bin", []byte("opaque")),
	)
	result := convertDocx(t, data, ImageSeparate)

	assert.Equal(t, "Before\n\n| Name | Qty |\n| --- | --- |\n| apple | 3 |\n", result.Markdown)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningObjectSkipped, result.Warnings[0].Kind)
	assert.Equal(t, "word/embeddings/oleObject1.bin", result.Warnings[0].Part)
}

func TestConvertAltChunks(t *testing.T) {
	htmlChunk := `<html><head><title>Ignored title</title><style>p { color: red }</style></head>` +
		`<body><h2>Imported</h2><p>Some <b>bold</b> text<img src="x.png"></p></body></html>`
	body := para("Intro") +
		`<w:altChunk r:id="rId10"/>` +
		`<w:altChunk r:id="rId11"/>` +
		`<w:altChunk r:id="rId12"/>`
	data := buildDocx(t, body,
		withRel("rId10", relAFChunk, "afchunk.htm"),
		withPart("word/afchunk.htm", []byte(htmlChunk)),
		withRel("rId11", relAFChunk, "afchunk.txt"),
		withPart("word/afchunk.txt", []byte("first line\r\n\r\nsecond line\r\n")),
		withRel("rId12", relAFChunk, "afchunk.rtf"),
		withPart("word/afchunk.rtf", []byte(`{\rtf1 hi}`)),
	)
	result := convertDocx(t, data, ImageSeparate)

	assert.Equal(t, "Intro\n\n## Imported\n\nSome **bold** text\n\nfirst line\n\nsecond line\n", result.Markdown)
	assert.NotContains(t, result.Markdown, "Ignored title")
	assert.NotContains(t, result.Markdown, "color")
	assert.Empty(t, result.Images)

	require.Len(t, result.Warnings, 2)
	assert.Equal(t, WarningImageSkipped, result.Warnings[0].Kind)
	assert.Equal(t, "word/afchunk.htm", result.Warnings[0].Part)
	assert.Equal(t, WarningPartIgnored, result.Warnings[1].Kind)
	assert.Equal(t, "word/afchunk.rtf", result.Warnings[1].Part)
}

func TestNewInvalidMode(t *testing.T) {
	c := New(WithImageMode("bogus"), WithLogger(quietLogger()))
	assert.Equal(t, ImageSeparate, c.Mode())

	c = New(WithImageMode("embed"), WithLogger(quietLogger()))
	assert.Equal(t, ImageInline, c.Mode())
}

func TestParseImageMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ImageMode
		wantErr bool
	}{
		{in: "inline", want: ImageInline},
		{in: "Embed-Inline", want: ImageInline},
		{in: "separate", want: ImageSeparate},
		{in: "separate-files", want: ImageSeparate},
		{in: "", want: ImageSeparate},
		{in: " omit ", want: ImageOmit},
		{in: "none", want: ImageOmit},
		{in: "thumbnails", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseImageMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBaseFilename(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{source: "report.docx", want: "report"},
		{source: "/home/ann/My Report.docx", want: "My Report"},
		{source: `C:\Users\ann\notes.docx`, want: "notes"},
		{source: "archive.tar.docx", want: "archive.tar"},
		{source: "what?.docx", want: "what_"},
		{source: "", want: "document"},
		{source: ".docx", want: "document"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, baseFilename(tt.source))
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "not document", err: &ConversionError{Err: notDocument(errors.New("x"))}, want: "This file is not a Word document (.docx)."},
		{name: "corrupt", err: &ConversionError{Err: corrupt("word/document.xml", 3, errors.New("x"))}, want: "This Word document is damaged and could not be read."},
		{name: "unsupported", err: &ParseError{Kind: Unsupported, Offset: -1}, want: "This Word document uses a feature that cannot be converted, such as password protection."},
		{name: "bundle", err: &BundleError{Err: errors.New("x")}, want: "Failed to generate download. Please try again."},
		{name: "deadline", err: context.DeadlineExceeded, want: "The conversion was cancelled."},
		{name: "other", err: errors.New("boom"), want: "An unexpected error occurred."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestErrorStrings(t *testing.T) {
	err := &ConversionError{Source: "doc.docx", Stage: "parse", Err: corrupt("word/document.xml", 42, errors.New("unexpected EOF"))}
	assert.Equal(t, `conversion failed for "doc.docx" during parse: corrupt document part="word/document.xml" offset=42: unexpected EOF`, err.Error())
	assert.Equal(t, `bundle archive entry "images/a.png": boom`, (&BundleError{Entry: "images/a.png", Err: errors.New("boom")}).Error())
}
