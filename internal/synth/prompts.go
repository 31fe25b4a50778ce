package synth

import (
	"embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/krishanki/PhonePixie/internal/models"
)

//go:embed prompts/system.txt
var systemPrompt string

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.New("prompts").ParseFS(promptFS, "prompts/*.tmpl"))

type searchData struct {
	Query    string
	Budget   string
	Brands   string
	Features string
	Count    int
	Phones   string
}

type compareData struct {
	Query  string
	Phones string
}

type detailsData struct {
	Query string
	Phone string
}

type textData struct {
	Query   string
	History []models.ConversationTurn
}

func renderPrompt(name string, data interface{}) (string, error) {
	var b strings.Builder
	if err := prompts.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return b.String(), nil
}

// catalogJSON serializes entries exactly as held in the catalog
func catalogJSON(v interface{}) (string, error) {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode catalog data: %w", err)
	}
	return string(buf), nil
}

func quote(text string) string {
	return strconv.Quote(strings.TrimSpace(text))
}
