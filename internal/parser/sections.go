package parser

// Slot names one of the five semantic sections of a knowledge document.
type Slot string

const (
	SlotBase     Slot = "base"
	SlotMedidas  Slot = "medidas"
	SlotTabelas  Slot = "tabelas"
	SlotQueries  Slot = "queries"
	SlotExemplos Slot = "exemplos"
)

// Measure is a business measure (usually a DAX expression).
type Measure struct {
	Name        string `json:"name"`
	Expression  string `json:"expression,omitempty"`
	Description string `json:"description,omitempty"`
}

// Table is a table of the semantic model.
type Table struct {
	Name        string   `json:"name"`
	Columns     []string `json:"columns,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Query is an example query the assistant can adapt.
type Query struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

// Example is a sample question/answer interaction.
type Example struct {
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
}

// Sections is the structured form of a knowledge document. List slots are
// never nil so that all five keys always serialize.
type Sections struct {
	Base     string    `json:"base"`
	Medidas  []Measure `json:"medidas"`
	Tabelas  []Table   `json:"tabelas"`
	Queries  []Query   `json:"queries"`
	Exemplos []Example `json:"exemplos"`
}

// Stats summarizes a parse so callers can spot degenerate documents.
type Stats struct {
	Medidas  int  `json:"medidas"`
	Tabelas  int  `json:"tabelas"`
	Queries  int  `json:"queries"`
	Exemplos int  `json:"exemplos"`
	HasBase  bool `json:"hasBase"`
}

func emptySections() Sections {
	return Sections{
		Medidas:  []Measure{},
		Tabelas:  []Table{},
		Queries:  []Query{},
		Exemplos: []Example{},
	}
}

func (s Sections) Stats() Stats {
	return Stats{
		Medidas:  len(s.Medidas),
		Tabelas:  len(s.Tabelas),
		Queries:  len(s.Queries),
		Exemplos: len(s.Exemplos),
		HasBase:  s.Base != "",
	}
}

// Normalize replaces nil list slots with empty ones. Values decoded from
// storage or the cache go through it before leaving the service.
func (s Sections) Normalize() Sections {
	if s.Medidas == nil {
		s.Medidas = []Measure{}
	}
	if s.Tabelas == nil {
		s.Tabelas = []Table{}
	}
	if s.Queries == nil {
		s.Queries = []Query{}
	}
	if s.Exemplos == nil {
		s.Exemplos = []Example{}
	}
	return s
}
