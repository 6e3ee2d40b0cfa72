// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package docx2md

import (
	"bytes"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nicholasgasior/docx2md/internal/ooxml"
	"github.com/nicholasgasior/docx2md/internal/textenc"
)

// altChunk lowers an imported content part (w:altChunk). HTML becomes a
// Markdown fragment, plain text becomes paragraphs and other formats are
// ignored with a warning.
func (d *docxPackage) altChunk(rid string) []node {
	rel, ok := d.rels[rid]
	if !ok || rel.External() {
		d.warn(WarningPartIgnored, "", fmt.Sprintf("imported content %q has no part in the document", rid))
		return nil
	}
	part := ooxml.ResolveTarget(d.main, rel.Target)
	data, err := d.pkg.ReadPart(part)
	if err != nil {
		d.warn(WarningPartIgnored, part, fmt.Sprintf("imported content could not be read: %v", err))
		return nil
	}

	contentType := d.types.Lookup(part)
	mediaType, params, _ := mime.ParseMediaType(contentType)
	ext := strings.ToLower(path.Ext(part))
	switch {
	case strings.Contains(mediaType, "html") || ext == ".html" || ext == ".htm" || ext == ".xhtml":
		md, skipped, err := htmlFragment(textenc.Decode(data, params["charset"]))
		if err != nil {
			d.warn(WarningPartIgnored, part, fmt.Sprintf("imported HTML could not be converted: %v", err))
			return nil
		}
		if skipped > 0 {
			d.warn(WarningImageSkipped, part, fmt.Sprintf("%d image(s) in imported HTML were dropped", skipped))
		}
		if md == "" {
			return nil
		}
		return []node{&fragmentNode{markdown: md}}
	case mediaType == "text/plain" || ext == ".txt":
		return textParagraphs(textenc.Decode(data, params["charset"]))
	}

	if contentType == "" {
		contentType = ext
	}
	d.warn(WarningPartIgnored, part, fmt.Sprintf("imported content of type %q is not supported", contentType))
	return nil
}

// htmlFragment converts an HTML document to Markdown. Scripts and styles are
// removed; images are removed and counted since they have no asset.
func htmlFragment(src string) (md string, images int, err error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return "", 0, fmt.Errorf("parse HTML: %w", err)
	}
	var prune func(n *html.Node)
	prune = func(n *html.Node) {
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			if c.Type == html.ElementNode {
				switch c.DataAtom {
				case atom.Script, atom.Style, atom.Noscript, atom.Title:
					n.RemoveChild(c)
				case atom.Img, atom.Picture, atom.Svg:
					images++
					n.RemoveChild(c)
				default:
					prune(c)
				}
			}
			c = next
		}
	}
	prune(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", 0, fmt.Errorf("render HTML: %w", err)
	}
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithHeadingStyle("atx"),
			),
			table.NewTablePlugin(),
		),
	)
	md, err = conv.ConvertString(buf.String())
	if err != nil {
		return "", 0, fmt.Errorf("convert HTML to markdown: %w", err)
	}
	return strings.TrimSpace(md), images, nil
}

func textParagraphs(text string) []node {
	var blocks []node
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		blocks = append(blocks, &paragraphNode{children: []node{&runNode{text: line}}})
	}
	return blocks
}
