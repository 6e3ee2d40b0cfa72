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

// Package ooxml reads the packaging layer of Office Open XML files: the ZIP
// part index, relationship parts and the content-type table.
package ooxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// Common OOXML namespaces and relationship types.
const (
	NSRelationships    = "http://schemas.openxmlformats.org/package/2006/relationships"
	NSContentTypes     = "http://schemas.openxmlformats.org/package/2006/content-types"
	NSWordprocessingML = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NSDrawingML        = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NSRelDoc           = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSOMML             = "http://schemas.openxmlformats.org/officeDocument/2006/math"

	RelOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RelImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	RelHyperlink      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
)

// ErrPartNotFound is returned when a part is absent from the package.
var ErrPartNotFound = errors.New("part not found")

// Relationship represents an OOXML relationship.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// External reports whether the relationship points outside the package.
func (r Relationship) External() bool {
	return strings.EqualFold(r.TargetMode, "External")
}

type relationships struct {
	XMLName       xml.Name       `xml:"Relationships"`
	Relationships []Relationship `xml:"Relationship"`
}

// Package is an opened OOXML container with its parts indexed by name.
type Package struct {
	parts map[string]*zip.File
}

// Open indexes the parts of an OOXML container held in memory.
func Open(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}
	p := &Package{parts: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		p.parts[strings.TrimPrefix(f.Name, "/")] = f
	}
	return p, nil
}

// Has reports whether the package contains the named part.
func (p *Package) Has(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// ReadPart returns the content of the named part.
func (p *Package) ReadPart(name string) ([]byte, error) {
	f, ok := p.parts[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrPartNotFound)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", name, err)
	}
	return data, nil
}

// Relationships parses the relationship part belonging to source. A missing
// relationship part yields an empty map.
func (p *Package) Relationships(source string) (map[string]Relationship, error) {
	relsPath := RelsPathFor(source)
	data, err := p.ReadPart(relsPath)
	if errors.Is(err, ErrPartNotFound) {
		return map[string]Relationship{}, nil
	}
	if err != nil {
		return nil, err
	}
	var rels relationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("decode %q: %w", relsPath, err)
	}
	result := make(map[string]Relationship, len(rels.Relationships))
	for _, rel := range rels.Relationships {
		result[rel.ID] = rel
	}
	return result, nil
}

// MainDocument returns the part name of the main document, following the
// officeDocument relationship from the package root.
func (p *Package) MainDocument() (string, error) {
	rels, err := p.Relationships("")
	if err != nil {
		return "", err
	}
	for _, rel := range rels {
		if rel.Type == RelOfficeDocument && !rel.External() {
			return ResolveTarget("", rel.Target), nil
		}
	}
	if p.Has("word/document.xml") {
		return "word/document.xml", nil
	}
	return "", fmt.Errorf("main document: %w", ErrPartNotFound)
}

// ContentTypes maps part names and extensions to MIME types as declared in
// [Content_Types].xml.
type ContentTypes struct {
	defaults  map[string]string
	overrides map[string]string
}

// ContentTypes parses [Content_Types].xml. A missing or malformed table yields
// an empty lookup.
func (p *Package) ContentTypes() *ContentTypes {
	ct := &ContentTypes{defaults: map[string]string{}, overrides: map[string]string{}}
	data, err := p.ReadPart("[Content_Types].xml")
	if err != nil {
		return ct
	}
	var types struct {
		Defaults []struct {
			Extension   string `xml:"Extension,attr"`
			ContentType string `xml:"ContentType,attr"`
		} `xml:"Default"`
		Overrides []struct {
			PartName    string `xml:"PartName,attr"`
			ContentType string `xml:"ContentType,attr"`
		} `xml:"Override"`
	}
	if err := xml.Unmarshal(data, &types); err != nil {
		return ct
	}
	for _, d := range types.Defaults {
		ct.defaults[strings.ToLower(d.Extension)] = d.ContentType
	}
	for _, o := range types.Overrides {
		ct.overrides[strings.TrimPrefix(o.PartName, "/")] = o.ContentType
	}
	return ct
}

// Lookup returns the declared content type of a part, or "".
func (ct *ContentTypes) Lookup(part string) string {
	if v, ok := ct.overrides[part]; ok {
		return v
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(part)), ".")
	return ct.defaults[ext]
}

// RelsPathFor returns the .rels path for a given part. The package root uses
// "_rels/.rels".
func RelsPathFor(filePath string) string {
	if filePath == "" {
		return "_rels/.rels"
	}
	dir := path.Dir(filePath)
	base := path.Base(filePath)
	if dir == "." {
		return "_rels/" + base + ".rels"
	}
	return dir + "/_rels/" + base + ".rels"
}

// ResolveTarget resolves a relationship target against the part that owns the
// relationship.
func ResolveTarget(basePath, target string) string {
	target = strings.ReplaceAll(target, "\\", "/")
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	if basePath == "" {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return strings.TrimPrefix(path.Join(path.Dir(basePath), target), "/")
}

// Attr returns the value of the attribute with the given local name.
func Attr(start xml.StartElement, local string) string {
	for _, a := range start.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// RelAttr returns the value of an r:-namespaced attribute such as r:id or
// r:embed.
func RelAttr(start xml.StartElement, local string) string {
	for _, a := range start.Attr {
		if a.Name.Local == local && (a.Name.Space == NSRelDoc || a.Name.Space == "r") {
			return a.Value
		}
	}
	return ""
}

