package mkresume

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alnah/go-mkresume/internal/schema"
	"github.com/alnah/go-mkresume/internal/yamlutil"
)

// Name is the subject's name.
type Name struct {
	First string `yaml:"first"`
	Last  string `yaml:"last"`
}

func (n Name) String() string { return n.First + " " + n.Last }

// Document is a validated résumé. Every list field is non-nil after Parse.
type Document struct {
	Name      Name     `yaml:"name"`
	Positions []string `yaml:"positions"`
	Address   string   `yaml:"address"`
	Phone     string   `yaml:"phone"`
	Email     string   `yaml:"email"`
	Photo     string   `yaml:"photo,omitempty"` // relative to the document

	Website  string `yaml:"website,omitempty"`
	Github   string `yaml:"github,omitempty"`
	Gitlab   string `yaml:"gitlab,omitempty"`
	Linkedin string `yaml:"linkedin,omitempty"`
	Orcid    string `yaml:"orcid,omitempty"`

	Quote   string `yaml:"quote,omitempty"`
	Summary string `yaml:"summary,omitempty"`

	Experience    []Experience   `yaml:"experience"`
	Education     []Education    `yaml:"education"`
	Honors        []Honor        `yaml:"honors"`
	Committees    []Committee    `yaml:"committees"`
	Presentations []Presentation `yaml:"presentations"`
	Projects      []Project      `yaml:"projects"`
	Skills        []SkillGroup   `yaml:"skills"`
	Hobbies       []string       `yaml:"hobbies"`

	Publications *Publications `yaml:"publications,omitempty"`
	Cover        *CoverLetter  `yaml:"cover,omitempty"`

	// Path is the file the document was read from. Relative photo and
	// bibliography paths resolve against its directory.
	Path string `yaml:"-"`
}

var dateRangeRule = schema.Map(
	schema.Required("from", schema.Date()),
	schema.Optional("to", schema.Date()),
)

var strList = schema.Seq(schema.Str())

var documentRule = schema.Map(
	schema.Required("name", schema.Map(
		schema.Required("first", schema.Str()),
		schema.Required("last", schema.Str()),
	)),
	schema.Required("positions", strList),
	schema.Required("address", schema.Str()),
	schema.Required("phone", schema.Str()),
	schema.Required("email", schema.Str()),
	schema.Optional("photo", schema.Str()),
	schema.Optional("website", schema.Str()),
	schema.Optional("github", schema.Str()),
	schema.Optional("gitlab", schema.Str()),
	schema.Optional("linkedin", schema.Str()),
	schema.Optional("orcid", schema.Str()),
	schema.Optional("quote", schema.Str()),
	schema.Optional("summary", schema.Str()),
	schema.Optional("experience", schema.Seq(schema.Map(
		schema.Required("title", schema.Str()),
		schema.Required("organization", schema.Str()),
		schema.Required("location", schema.Str()),
		schema.Required("dates", dateRangeRule),
		schema.Required("tasks", strList),
	))),
	schema.Optional("education", schema.Seq(schema.Map(
		schema.Required("degree", schema.Str()),
		schema.Required("institution", schema.Str()),
		schema.Required("location", schema.Str()),
		schema.Required("dates", dateRangeRule),
		schema.Optional("thesis", schema.Str()),
		schema.Optional("details", strList),
	))),
	schema.Optional("honors", schema.Seq(schema.Map(
		schema.Required("role", schema.Str()),
		schema.Required("event", schema.Str()),
		schema.Required("location", schema.Str()),
		schema.Required("date", schema.Date()),
	))),
	schema.Optional("committees", schema.Seq(schema.Map(
		schema.Required("role", schema.Str()),
		schema.Required("organization", schema.Str()),
		schema.Required("location", schema.Str()),
		schema.Required("dates", dateRangeRule),
	))),
	schema.Optional("presentations", schema.Seq(schema.Map(
		schema.Required("title", schema.Str()),
		schema.Required("event", schema.Str()),
		schema.Required("location", schema.Str()),
		schema.Required("date", schema.Date()),
		schema.Optional("role", schema.Str()),
	))),
	schema.Optional("projects", schema.Seq(schema.Map(
		schema.Required("title", schema.Str()),
		schema.Required("description", schema.Str()),
		schema.Optional("role", schema.Str()),
		schema.Optional("url", schema.Str()),
		schema.Optional("dates", dateRangeRule),
	))),
	schema.Optional("skills", schema.Seq(schema.Map(
		schema.Required("category", schema.Str()),
		schema.Required("items", strList),
	))),
	schema.Optional("hobbies", strList),
	schema.Optional("publications", schema.Map(
		schema.Required("keys", strList),
		schema.Optional("bibfiles", strList),
		schema.Optional("boldnames", strList),
	)),
	schema.Optional("cover", schema.Map(
		schema.Required("recipient", schema.Map(
			schema.Required("name", schema.Str()),
			schema.Optional("organization", schema.Str()),
			schema.Optional("address", schema.Str()),
		)),
		schema.Required("opening", schema.Str()),
		schema.Required("body", strList),
		schema.Required("closing", schema.Str()),
		schema.Optional("date", schema.Date()),
		schema.Optional("title", schema.Str()),
		schema.Optional("enclosure", schema.Str()),
	)),
)

// Parse validates data against the document schema and decodes it. file
// labels error positions and becomes Document.Path. Every problem found is
// reported in one *ValidationError.
func Parse(file string, data []byte) (*Document, error) {
	node, err := schema.Parse(file, data, documentRule)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := yamlutil.Decode(node, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadDocument, file, err)
	}
	doc.Path = file
	doc.normalize()
	return &doc, nil
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided document path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadDocument, err)
	}
	return Parse(path, data)
}

// normalize replaces absent lists with empty ones.
func (d *Document) normalize() {
	d.Positions = nonNil(d.Positions)
	d.Experience = nonNil(d.Experience)
	d.Education = nonNil(d.Education)
	d.Honors = nonNil(d.Honors)
	d.Committees = nonNil(d.Committees)
	d.Presentations = nonNil(d.Presentations)
	d.Projects = nonNil(d.Projects)
	d.Skills = nonNil(d.Skills)
	d.Hobbies = nonNil(d.Hobbies)

	for i := range d.Experience {
		d.Experience[i].Tasks = nonNil(d.Experience[i].Tasks)
	}
	for i := range d.Education {
		d.Education[i].Details = nonNil(d.Education[i].Details)
	}
	for i := range d.Skills {
		d.Skills[i].Items = nonNil(d.Skills[i].Items)
	}
	if p := d.Publications; p != nil {
		p.Keys = nonNil(p.Keys)
		p.BibFiles = nonNil(p.BibFiles)
		p.BoldNames = nonNil(p.BoldNames)
	}
	if c := d.Cover; c != nil {
		c.Body = nonNil(c.Body)
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Resolve returns path relative to the document's directory, or path
// unchanged when it is absolute or the document has no Path.
func (d *Document) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || d.Path == "" {
		return path
	}
	return filepath.Join(filepath.Dir(d.Path), path)
}

// Entries returns the entries of one category in document order.
func (d *Document) Entries(c Category) []Entry {
	switch c {
	case CategoryExperience:
		return toEntries(d.Experience)
	case CategoryEducation:
		return toEntries(d.Education)
	case CategoryHonors:
		return toEntries(d.Honors)
	case CategoryCommittees:
		return toEntries(d.Committees)
	case CategoryPresentations:
		return toEntries(d.Presentations)
	case CategoryProjects:
		return toEntries(d.Projects)
	default:
		return nil
	}
}

func toEntries[T Entry](items []T) []Entry {
	out := make([]Entry, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// Warning is a non-fatal problem reported by Lint.
type Warning struct {
	File    string
	Path    string // e.g. experience[1].dates
	Message string
}

func (w Warning) String() string {
	if w.File == "" {
		return w.Path + ": " + w.Message
	}
	return w.File + ": " + w.Path + ": " + w.Message
}

// Lint reports suspicious but accepted content. Today that is date ranges
// ending before they start.
func (d *Document) Lint() []Warning {
	var warnings []Warning
	for _, c := range Categories {
		for i, e := range d.Entries(c) {
			p := e.Period()
			if p.Valid() {
				continue
			}
			warnings = append(warnings, Warning{
				File:    d.Path,
				Path:    fmt.Sprintf("%s[%d].dates", c, i),
				Message: fmt.Sprintf("range ends (%s) before it starts (%s)", p.To, p.From),
			})
		}
	}
	return warnings
}
