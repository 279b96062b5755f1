// Package workspace emits the multi-root editor workspace file describing
// the reconciled directories (spec §6 "Editor workspace file").
package workspace

import (
	"encoding/json"
	"os"
)

// DefaultFileName is the file the emitter writes by default.
const DefaultFileName = "entire-project.code-workspace"

// Folder is one entry in the workspace file's "folders" array.
type Folder struct {
	Path string `json:"path"`
}

// Document is the full JSON shape spec §6 requires.
type Document struct {
	Folders []Folder `json:"folders"`
}

// Build constructs the Document: the working directory first (as "."),
// followed by each target's path relative to the working directory, in the
// form "../<name>" since targets live in the workspace's parent directory.
func Build(targetNames []string) Document {
	folders := make([]Folder, 0, len(targetNames)+1)
	folders = append(folders, Folder{Path: "."})
	for _, name := range targetNames {
		folders = append(folders, Folder{Path: "../" + name})
	}
	return Document{Folders: folders}
}

// Write serializes doc as indented JSON to path.
func Write(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
