package mkresume

// Category names a list of dated entries in a document. The value is the
// document key of the list.
type Category string

const (
	CategoryExperience    Category = "experience"
	CategoryEducation     Category = "education"
	CategoryHonors        Category = "honors"
	CategoryCommittees    Category = "committees"
	CategoryPresentations Category = "presentations"
	CategoryProjects      Category = "projects"
)

// Categories lists the entry categories in document order.
var Categories = []Category{
	CategoryExperience,
	CategoryEducation,
	CategoryHonors,
	CategoryCommittees,
	CategoryPresentations,
	CategoryProjects,
}

// Entry is the view shared by every dated entry.
type Entry interface {
	Category() Category
	// Period returns the entry's dates. Single-date entries start and end
	// on the same day; undated entries return the zero range.
	Period() DateRange
}

type Experience struct {
	Title        string    `yaml:"title"`
	Organization string    `yaml:"organization"`
	Location     string    `yaml:"location"`
	Dates        DateRange `yaml:"dates"`
	Tasks        []string  `yaml:"tasks"`
}

type Education struct {
	Degree      string    `yaml:"degree"`
	Institution string    `yaml:"institution"`
	Location    string    `yaml:"location"`
	Dates       DateRange `yaml:"dates"`
	Thesis      string    `yaml:"thesis,omitempty"`
	Details     []string  `yaml:"details"`
}

type Honor struct {
	Role     string `yaml:"role"`
	Event    string `yaml:"event"`
	Location string `yaml:"location"`
	Date     Date   `yaml:"date"`
}

type Committee struct {
	Role         string    `yaml:"role"`
	Organization string    `yaml:"organization"`
	Location     string    `yaml:"location"`
	Dates        DateRange `yaml:"dates"`
}

type Presentation struct {
	Title    string `yaml:"title"`
	Event    string `yaml:"event"`
	Location string `yaml:"location"`
	Date     Date   `yaml:"date"`
	Role     string `yaml:"role,omitempty"`
}

type Project struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Role        string     `yaml:"role,omitempty"`
	URL         string     `yaml:"url,omitempty"`
	Dates       *DateRange `yaml:"dates,omitempty"`
}

func (Experience) Category() Category { return CategoryExperience }
func (Education) Category() Category { return CategoryEducation }
func (Honor) Category() Category { return CategoryHonors }
func (Committee) Category() Category { return CategoryCommittees }
func (Presentation) Category() Category { return CategoryPresentations }
func (Project) Category() Category { return CategoryProjects }

func (e Experience) Period() DateRange { return e.Dates }
func (e Education) Period() DateRange { return e.Dates }
func (e Honor) Period() DateRange { return singleDay(e.Date) }
func (e Committee) Period() DateRange { return e.Dates }
func (e Presentation) Period() DateRange { return singleDay(e.Date) }

func (e Project) Period() DateRange {
	if e.Dates == nil {
		return DateRange{}
	}
	return *e.Dates
}

func singleDay(d Date) DateRange {
	return DateRange{From: d, To: &d}
}

// SkillGroup is a labelled list of skills.
type SkillGroup struct {
	Category string   `yaml:"category"`
	Items    []string `yaml:"items"`
}

// Publications selects bibliography entries to typeset.
type Publications struct {
	Keys      []string `yaml:"keys"`      // citation keys, in render order
	BibFiles  []string `yaml:"bibfiles"`  // relative to the document
	BoldNames []string `yaml:"boldnames"` // author names set in bold
}

// Recipient addresses a cover letter.
type Recipient struct {
	Name         string `yaml:"name"`
	Organization string `yaml:"organization,omitempty"`
	Address      string `yaml:"address,omitempty"`
}

// CoverLetter is the content of the "cover" mode.
type CoverLetter struct {
	Recipient Recipient `yaml:"recipient"`
	Opening   string    `yaml:"opening"`
	Body      []string  `yaml:"body"` // paragraphs
	Closing   string    `yaml:"closing"`
	Date      *Date     `yaml:"date,omitempty"`
	Title     string    `yaml:"title,omitempty"`
	Enclosure string    `yaml:"enclosure,omitempty"`
}
