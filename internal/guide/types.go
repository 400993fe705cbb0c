package guide

// Document is the root of a guideline dataset. It is loaded once and never
// mutated afterwards.
type Document struct {
	Title    string  `yaml:"title" json:"title"`
	Subtitle string  `yaml:"subtitle" json:"subtitle"`
	Preface  string  `yaml:"preface" json:"preface"` // markdown
	Authors  string  `yaml:"authors" json:"authors"` // markdown
	Entries  []Entry `yaml:"entries" json:"entries"`
}

// Entry is a top-level guideline. Parent entries group SubItems; leaf
// entries carry Content directly.
type Entry struct {
	ID       ID         `yaml:"id" json:"id"`
	Code     string     `yaml:"code" json:"code"`
	Category string     `yaml:"category" json:"category"`
	Title    string     `yaml:"title" json:"title"`
	Keywords []string   `yaml:"keywords" json:"keywords"`
	Content  []string   `yaml:"content" json:"content"`
	Note     string     `yaml:"note,omitempty" json:"note,omitempty"`
	IsParent bool       `yaml:"isParent,omitempty" json:"isParent,omitempty"`
	SubItems []SubEntry `yaml:"subItems,omitempty" json:"subItems,omitempty"`
}

// SubEntry is the second level of a parent entry.
type SubEntry struct {
	ID              ID                `yaml:"id" json:"id"`
	Title           string            `yaml:"title" json:"title"`
	Type            string            `yaml:"type,omitempty" json:"type,omitempty"`
	Content         []string          `yaml:"content,omitempty" json:"content,omitempty"`
	Image           string            `yaml:"image,omitempty" json:"image,omitempty"`
	BottomImage     string            `yaml:"bottomImage,omitempty" json:"bottomImage,omitempty"`
	BottomImage2    string            `yaml:"bottomImage2,omitempty" json:"bottomImage2,omitempty"`
	Note            string            `yaml:"note,omitempty" json:"note,omitempty"`
	GrandChildItems []GrandChildEntry `yaml:"grandChildItems,omitempty" json:"grandChildItems,omitempty"`

	// Display hints only.
	Alignment  string `yaml:"alignment,omitempty" json:"alignment,omitempty"`
	Scrollable bool   `yaml:"scrollable,omitempty" json:"scrollable,omitempty"`
}

// GrandChildEntry is the third and deepest level.
type GrandChildEntry struct {
	ID           ID       `yaml:"id" json:"id"`
	Code         string   `yaml:"code,omitempty" json:"code,omitempty"`
	Title        string   `yaml:"title" json:"title"`
	Content      []string `yaml:"content" json:"content"`
	Image        string   `yaml:"image,omitempty" json:"image,omitempty"`
	Image2       string   `yaml:"image2,omitempty" json:"image2,omitempty"`
	BottomImage  string   `yaml:"bottomImage,omitempty" json:"bottomImage,omitempty"`
	BottomImage2 string   `yaml:"bottomImage2,omitempty" json:"bottomImage2,omitempty"`
	Note         string   `yaml:"note,omitempty" json:"note,omitempty"`
}

// TextLayout reports whether sub entry content renders as paragraphs rather
// than an ordered list.
func (s SubEntry) TextLayout() bool {
	return s.Type == "text"
}

// HasBody reports whether the sub entry renders a body panel above its
// grandchildren.
func (s SubEntry) HasBody() bool {
	return len(s.Content) > 0 || s.Image != ""
}

// Find returns the entry with the given id.
func (d *Document) Find(id ID) (Entry, bool) {
	for _, e := range d.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// FindSub returns the sub entry with the given id.
func (e Entry) FindSub(id ID) (SubEntry, bool) {
	for _, s := range e.SubItems {
		if s.ID == id {
			return s, true
		}
	}
	return SubEntry{}, false
}
