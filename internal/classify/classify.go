// Package classify maps file paths to a FileCategory and a display language
// tag, feeding the code/document/config split the splitter factory routes
// on.
package classify

import (
	"path/filepath"
	"strings"

	"github.com/jamaly87/codebase-semantic-search/internal/models"
)

type entry struct {
	category models.FileCategory
	language string
}

var byExt = map[string]entry{
	".java": {models.CategoryCode, "java"},
	".go":   {models.CategoryCode, "go"},
	".ts":   {models.CategoryCode, "typescript"},
	".tsx":  {models.CategoryCode, "typescript"},
	".js":   {models.CategoryCode, "javascript"},
	".jsx":  {models.CategoryCode, "javascript"},
	".mjs":  {models.CategoryCode, "javascript"},
	".cjs":  {models.CategoryCode, "javascript"},
	".py":   {models.CategoryCode, "python"},
	".rb":   {models.CategoryCode, "ruby"},
	".rs":   {models.CategoryCode, "rust"},
	".c":    {models.CategoryCode, "c"},
	".h":    {models.CategoryCode, "c"},
	".cpp":  {models.CategoryCode, "cpp"},
	".hpp":  {models.CategoryCode, "cpp"},
	".cs":   {models.CategoryCode, "csharp"},
	".kt":   {models.CategoryCode, "kotlin"},

	".md":       {models.CategoryDocument, "markdown"},
	".markdown": {models.CategoryDocument, "markdown"},
	".mdx":      {models.CategoryDocument, "markdown"},
	".txt":      {models.CategoryDocument, "text"},
	".doc":      {models.CategoryDocument, "doc"},
	".docx":     {models.CategoryDocument, "docx"},
	".pdf":      {models.CategoryDocument, "pdf"},

	".yaml":       {models.CategoryConfig, "yaml"},
	".yml":        {models.CategoryConfig, "yaml"},
	".json":       {models.CategoryConfig, "json"},
	".toml":       {models.CategoryConfig, "toml"},
	".ini":        {models.CategoryConfig, "ini"},
	".properties": {models.CategoryConfig, "properties"},
	".env":        {models.CategoryConfig, "env"},
	".xml":        {models.CategoryConfig, "xml"},
}

// Classify returns the category and language tag for a file path. Files
// with no recognized extension are CategoryOther with an empty language;
// the splitter factory still routes these through the token splitter.
func Classify(path string) (models.FileCategory, string) {
	ext := strings.ToLower(filepath.Ext(path))
	if e, ok := byExt[ext]; ok {
		return e.category, e.language
	}
	return models.CategoryOther, ""
}
