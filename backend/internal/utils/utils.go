package utils

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

func GenerateConfirmationCode(len int) string {
	code := uuid.NewString()
	return code[:len]
}

// ExportFilename turns a caller supplied download name into a safe file name
// with an .xlsx extension. An empty or unusable name yields fallback.
func ExportFilename(requested, fallback string) string {
	name := filepath.Base(strings.TrimSpace(requested))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == '"' || r == '\\' || r == '/' {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return fallback
	}
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		name += ".xlsx"
	}
	return name
}
