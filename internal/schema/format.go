// Copyright 2024 The TagWire Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package schema

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/tagwire/tagwire/internal/ident"
)

// Format canonically re-prints s: imports first (each rendered as
// `import 'path';` or `import 'path' as alias;` when the alias does not
// match the path's inferred stem), then declarations in normalized-name
// order, separated by blank lines. This is the implementation behind the
// `tagwire format` command.
func (s *Schema) Format(w io.Writer) error {
	var b strings.Builder
	for _, name := range s.ImportOrder {
		imp, ok := s.Imports.Get(name)
		if !ok {
			continue
		}
		stem := stemOf(imp.Path)
		if stem == imp.Alias.SnakeCase() {
			fmt.Fprintf(&b, "import '%s';\n", imp.Path)
		} else {
			fmt.Fprintf(&b, "import '%s' as %s;\n", imp.Path, imp.Alias.Original())
		}
	}
	if s.Imports.Len() > 0 && s.Declarations.Len() > 0 {
		b.WriteString("\n")
	}
	first := true
	s.Declarations.Range(func(_ ident.Identifier, decl *Declaration) bool {
		if !first {
			b.WriteString("\n")
		}
		first = false
		formatDeclaration(&b, decl)
		return true
	})
	_, err := io.WriteString(w, b.String())
	return err
}

func formatDeclaration(b *strings.Builder, decl *Declaration) {
	keyword := "struct"
	if decl.Kind == DeclChoice {
		keyword = "choice"
	}
	fmt.Fprintf(b, "%s %s {\n", keyword, decl.Name.Original())
	decl.Fields.Range(func(_ ident.Identifier, f *Field) bool {
		rule := f.Rule.String()
		if rule != "" {
			rule += " "
		}
		fmt.Fprintf(b, "  %s%s : %s = %d;\n", rule, f.Name.Original(), f.Type.Format(), f.Index)
		return true
	})
	b.WriteString("}\n")
}

// stemOf returns the final path component with its extension stripped,
// the value an import's alias is inferred from when no explicit "as"
// clause is written.
func stemOf(p string) string {
	base := path.Base(p)
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return strings.ToLower(base)
}
