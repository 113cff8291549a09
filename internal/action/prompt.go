// SPDX-License-Identifier: MIT
package action

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/skaphos/gitfleet/internal/model"
)

// Template is one pre-baked assistant prompt. ShouldRun reports whether
// the template applies to a repository, with the skip reason when not.
// Prompts may contain {{name}} placeholders; Vars supplies extra values
// beyond the defaults from promptVars.
type Template struct {
	Name        string
	Description string
	Prompt      string
	ShouldRun   func(repo model.Repository, path string) (bool, string)
	Vars        func(repo model.Repository) map[string]string
}

const licensePrompt = `Create an MIT LICENSE file in the root of this repository.

Use the following details:
- Year: {{year}}
- Copyright holder: {{license_author}}

The MIT LICENSE should be the standard format with the copyright line:
"Copyright (c) {{year}} {{license_author}}"

Create the file as LICENSE (no extension).`

// licenseFilenames are the spellings an existing license may use.
var licenseFilenames = []string{"LICENSE", "LICENSE.md", "LICENSE.txt", "license", "license.md", "license.txt"}

// Templates returns the built-in prompt templates in display order.
func Templates() []Template {
	return []Template{
		{
			Name:        "init",
			Description: "initialize CLAUDE.md via the assistant's /init command",
			Prompt:      "/init",
			ShouldRun: func(repo model.Repository, path string) (bool, string) {
				if repo.Archived {
					return false, "repository is archived"
				}
				if repo.Fork {
					return false, "repository is a fork"
				}
				if fileExists(filepath.Join(path, "CLAUDE.md")) {
					return false, "CLAUDE.md already exists"
				}
				return true, ""
			},
		},
		{
			Name:        "readme",
			Description: "generate README.md via the readme-generator skill",
			Prompt: "Use the readme-generator skill to create a comprehensive README.md " +
				"for this project. Analyze the codebase and generate appropriate " +
				"documentation including installation, usage, features, and any other " +
				"relevant sections.",
			ShouldRun: func(repo model.Repository, path string) (bool, string) {
				if repo.Archived {
					return false, "repository is archived"
				}
				if repo.Fork {
					return false, "repository is a fork"
				}
				if fileExists(filepath.Join(path, "README.md")) {
					return false, "README.md already exists"
				}
				return true, ""
			},
		},
		{
			Name:        "license",
			Description: "add an MIT LICENSE file",
			Prompt:      licensePrompt,
			ShouldRun: func(repo model.Repository, path string) (bool, string) {
				if repo.Archived {
					return false, "repository is archived"
				}
				if strings.TrimSpace(os.Getenv("LICENSE_AUTHOR")) == "" {
					return false, "LICENSE_AUTHOR is not set"
				}
				for _, name := range licenseFilenames {
					if fileExists(filepath.Join(path, name)) {
						return false, name + " already exists"
					}
				}
				return true, ""
			},
			Vars: func(repo model.Repository) map[string]string {
				vars := promptVars(repo)
				vars["year"] = fmt.Sprintf("%d", time.Now().Year())
				vars["license_author"] = strings.TrimSpace(os.Getenv("LICENSE_AUTHOR"))
				return vars
			},
		},
	}
}

// LookupTemplate finds a built-in template by name.
func LookupTemplate(name string) (Template, bool) {
	for _, tpl := range Templates() {
		if tpl.Name == name {
			return tpl, true
		}
	}
	return Template{}, false
}

// ResolveTemplate maps exec input to a template: a known template name
// selects the built-in, anything else runs as a raw prompt.
func ResolveTemplate(input string) Template {
	if tpl, ok := LookupTemplate(input); ok {
		return tpl
	}
	return Template{
		Name:        "raw",
		Description: "ad-hoc prompt",
		Prompt:      input,
		ShouldRun:   func(model.Repository, string) (bool, string) { return true, "" },
	}
}

// promptVars are the substitutions available to every prompt.
func promptVars(repo model.Repository) map[string]string {
	return map[string]string{
		"repo_name":      repo.Name,
		"repo_full_name": repo.FullName,
		"default_branch": repo.DefaultBranch,
		"description":    repo.Description,
		"language":       repo.Language,
	}
}

// ExpandPrompt substitutes {{name}} placeholders in a prompt.
func ExpandPrompt(prompt string, vars map[string]string) string {
	for name, value := range vars {
		prompt = strings.ReplaceAll(prompt, "{{"+name+"}}", value)
	}
	return prompt
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
