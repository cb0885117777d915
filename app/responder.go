package app

import (
	"context"
	_ "embed"
	"fmt"
	"math/rand/v2"
	"strings"
	"text/template"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed seed/personas.yaml
var seedYAML []byte

// seedPersona is a persona entry of the seed file plus its canned answer.
type seedPersona struct {
	Persona        `yaml:",inline"`
	Response       string   `yaml:"response"`
	QuickQuestions []string `yaml:"quick_questions"`
}

type seedFile struct {
	DefaultResponse   string         `yaml:"default_response"`
	FallbackQuestions []string       `yaml:"fallback_questions"`
	Personas          []*seedPersona `yaml:"personas"`
}

// catalog holds the seed personas and the parsed response templates.
type catalog struct {
	personas          []*Persona
	responses         map[string]*template.Template
	defaultResponse   *template.Template
	questions         map[string][]string
	fallbackQuestions []string
}

// responseData is what a response template can reference.
type responseData struct {
	Title string
	Query string
	Week  string
	Now   time.Time
}

var seed = mustLoadCatalog(seedYAML)

func mustLoadCatalog(raw []byte) *catalog {
	c, err := loadCatalog(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func loadCatalog(raw []byte) (*catalog, error) {
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Wrap(err, "parse seed personas")
	}
	if len(file.FallbackQuestions) == 0 {
		return nil, errors.New("seed file has no fallback questions")
	}

	c := &catalog{
		responses:         make(map[string]*template.Template),
		questions:         make(map[string][]string),
		fallbackQuestions: file.FallbackQuestions,
	}
	var err error
	if c.defaultResponse, err = template.New("default").Parse(file.DefaultResponse); err != nil {
		return nil, errors.Wrap(err, "parse default response")
	}
	for _, sp := range file.Personas {
		p := sp.Persona
		if err := normalizePersona(&p); err != nil {
			return nil, errors.Wrapf(err, "seed persona %q", sp.Code)
		}
		c.personas = append(c.personas, &p)
		if len(sp.QuickQuestions) > 0 {
			c.questions[p.Code] = sp.QuickQuestions
		}
		if strings.TrimSpace(sp.Response) == "" {
			continue
		}
		tmpl, err := template.New(p.Code).Parse(sp.Response)
		if err != nil {
			return nil, errors.Wrapf(err, "parse response of %q", p.Code)
		}
		c.responses[p.Code] = tmpl
	}
	return c, nil
}

// generateResponse writes the canned markdown answer of persona p to query.
// Personas without their own template use the default one.
func (c *catalog) generateResponse(p *Persona, query string, now time.Time) string {
	tmpl, ok := c.responses[p.Code]
	if !ok {
		tmpl = c.defaultResponse
	}
	title := p.Title
	if title == "" {
		title = "Assistant"
	}
	year, week := now.ISOWeek()
	data := responseData{
		Title: title,
		Query: query,
		Week:  fmt.Sprintf("%d-W%02d", year, week),
		Now:   now,
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		log.WithField("persona", p.Code).Errorf("Failed to execute response template: %v", err)
		return fmt.Sprintf("**%s** could not answer \"%s\" right now.", title, query)
	}
	return strings.TrimRight(b.String(), "\n")
}

// quickQuestions returns the suggested questions for a persona, or the
// generic set when it has none.
func (c *catalog) quickQuestions(personaCode string) []string {
	if qs, ok := c.questions[personaCode]; ok {
		return qs
	}
	return c.fallbackQuestions
}

func newConversationID(now time.Time) string {
	return fmt.Sprintf("conv_%d_%s", now.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// thinkingDelay waits a random time between the configured bounds, returning
// early with the context's error if ctx ends first.
func thinkingDelay(ctx context.Context, minDelay, maxDelay time.Duration) error {
	d := minDelay
	if span := maxDelay - minDelay; span > 0 {
		d += rand.N(span)
	}
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
