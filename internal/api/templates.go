package api

import (
	"html/template"
	"path/filepath"
)

// LoadTemplates parses the layout, page and partial templates under root
// (the directory containing "templates/"). Missing pattern groups are
// skipped so a partial-less deployment still loads.
func LoadTemplates(root string) (*template.Template, error) {
	funcs := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		// percent computes 100*num/den, guarding the empty-session case.
		"percent": func(num, den int) int {
			if den == 0 {
				return 0
			}
			return num * 100 / den
		},
	}

	t := template.New("base").Funcs(funcs)

	patterns := []string{
		filepath.Join(root, "templates/layouts/*.html"),
		filepath.Join(root, "templates/pages/*.html"),
		filepath.Join(root, "templates/partials/*.html"),
	}
	for _, p := range patterns {
		if matches, _ := filepath.Glob(p); len(matches) == 0 {
			continue
		}
		if _, err := t.ParseGlob(p); err != nil {
			return nil, err
		}
	}

	return t, nil
}
