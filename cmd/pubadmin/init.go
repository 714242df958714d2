package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eringen/pubadmin/scaffold"
)

// scaffoldData holds the template variables passed to every scaffold template.
type scaffoldData struct {
	ProjectName   string
	ModuleName    string
	SiteName      string
	SessionSecret string
}

func runInit(name string) error {
	dirName := name
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		dirName = name[idx+1:]
	}

	if _, err := os.Stat(dirName); err == nil {
		return fmt.Errorf("directory %q already exists", dirName)
	}

	secret, err := newSecret()
	if err != nil {
		return err
	}
	data := scaffoldData{
		ProjectName:   dirName,
		ModuleName:    name,
		SiteName:      toTitle(dirName),
		SessionSecret: secret,
	}

	fmt.Printf("Creating pubadmin deployment: %s\n\n", dirName)
	if err := writeScaffold(dirName, data); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Done! Next steps:")
	fmt.Println()
	fmt.Printf("  cd %s\n", dirName)
	fmt.Println("  cp .env.example .env   # set API_BASE_URL")
	fmt.Println("  go mod tidy && go run .")
	return nil
}

// writeScaffold renders every embedded template into dir, stripping the
// .tmpl suffix and renaming dotenv to .env.example.
func writeScaffold(dir string, data scaffoldData) error {
	root := "templates"
	return fs.WalkDir(scaffold.Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		outPath := strings.TrimSuffix(filepath.Join(dir, relPath), ".tmpl")
		if filepath.Base(outPath) == "dotenv" {
			outPath = filepath.Join(filepath.Dir(outPath), ".env.example")
		}
		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		content, err := scaffold.Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		tmpl, err := template.New(filepath.Base(path)).Parse(string(content))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		if err := renderTo(f, tmpl, data); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		fmt.Printf("  created %s\n", outPath)
		return nil
	})
}

// renderTo executes tmpl into w and closes it. A failed close is reported,
// since buffered output may not have reached the disk.
func renderTo(w io.WriteCloser, tmpl *template.Template, data any) error {
	if err := tmpl.Execute(w, data); err != nil {
		w.Close()
		return fmt.Errorf("execute template %s: %w", tmpl.Name(), err)
	}
	return w.Close()
}

func newSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

var titleCaser = cases.Title(language.English)

// toTitle converts a hyphenated name to a title-case string.
// e.g. "acme-admin" -> "Acme Admin"
func toTitle(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "-", " "))
}
