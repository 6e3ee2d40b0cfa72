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
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// conversionNamespace scopes conversion ids so they never collide with other
// name-based UUIDs.
var conversionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/nicholasgasior/docx2md"))

// ConversionID returns a deterministic identifier for converting data under
// mode. The same input always yields the same id.
func ConversionID(data []byte, mode ImageMode) uuid.UUID {
	name := make([]byte, 0, len(data)+len(mode)+1)
	name = append(name, mode...)
	name = append(name, 0)
	name = append(name, data...)
	return uuid.NewSHA1(conversionNamespace, name)
}

type frontMatter struct {
	Title        string    `yaml:"title,omitempty"`
	Author       string    `yaml:"author,omitempty"`
	Source       string    `yaml:"source"`
	Images       ImageMode `yaml:"images"`
	ConversionID string    `yaml:"conversion_id"`
}

func (fm frontMatter) render() (string, error) {
	out, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}
	return "---\n" + string(out) + "---\n\n", nil
}
