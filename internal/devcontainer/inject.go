// Package devcontainer injects per-repository Codespaces permission grants
// into a devcontainer.json-shaped file (spec §6 "Container-config
// injection"). The file is read tolerating JSONC (comments and trailing
// commas), and writes are idempotent: re-running with the same inputs
// produces the same document.
package devcontainer

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Permissions describes what a repository is granted when a Codespace
// attaches to it.
type Permissions struct {
	Permissions string // --permissions value, pass-through
	Tool        string // -t/--tool value, pass-through
}

// Inject updates path so that
// $.customizations.codespaces.repositories["<owner>/<repo>"] holds an object
// built from perm, for every owner/repo pair, creating the file if it does
// not exist.
func Inject(path string, ownerRepos []string, perm Permissions) error {
	raw, err := readExistingOrEmpty(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	doc := stripJSONC(raw)
	if strings.TrimSpace(doc) == "" {
		doc = "{}"
	}
	if !gjson.Valid(doc) {
		return fmt.Errorf("%s: not valid JSON after stripping comments", path)
	}

	entry := map[string]any{}
	if perm.Permissions != "" {
		entry["permissions"] = perm.Permissions
	}
	if perm.Tool != "" {
		entry["tool"] = perm.Tool
	}

	for _, ownerRepo := range ownerRepos {
		// sjson path segments are dot-separated; escape '.'/'*'/'?' in the
		// literal "owner/repo" key so a dotted repo name can't split the path.
		pathExpr := "customizations.codespaces.repositories." + escapeSjsonKey(ownerRepo)

		doc, err = sjson.Set(doc, pathExpr, entry)
		if err != nil {
			return fmt.Errorf("inject %s into %s: %w", ownerRepo, path, err)
		}
	}

	return os.WriteFile(path, []byte(doc+"\n"), 0o644)
}

func readExistingOrEmpty(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// escapeSjsonKey escapes the characters sjson treats specially ('.', '*' and
// '?' for path syntax) in a literal map key such as "acme/alpha".
func escapeSjsonKey(key string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return r.Replace(key)
}

// stripJSONC removes "//" line comments, "/* */" block comments, and
// trailing commas before an object/array close, so the result parses as
// strict JSON. It is string-aware: characters inside JSON string literals
// are left untouched.
func stripJSONC(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	inString := false
	escaped := false
	i := 0
	for i < len(src) {
		c := src[i]

		if inString {
			b.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			i++
			continue
		}

		switch {
		case c == '"':
			inString = true
			b.WriteByte(c)
			i++
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			i += 2
			for i+1 < len(src) && !(src[i] == '*' && src[i+1] == '/') {
				i++
			}
			i += 2
		case c == ',':
			j := i + 1
		lookahead:
			for j < len(src) {
				switch {
				case isJSONWhitespace(src[j]):
					j++
				case src[j] == '/' && j+1 < len(src) && src[j+1] == '/':
					for j < len(src) && src[j] != '\n' {
						j++
					}
				case src[j] == '/' && j+1 < len(src) && src[j+1] == '*':
					j += 2
					for j+1 < len(src) && !(src[j] == '*' && src[j+1] == '/') {
						j++
					}
					j += 2
				default:
					break lookahead
				}
			}
			if j < len(src) && (src[j] == '}' || src[j] == ']') {
				i++ // drop the trailing comma
				continue
			}
			b.WriteByte(c)
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}

	return b.String()
}

func isJSONWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
