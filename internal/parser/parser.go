// Package parser turns free-form knowledge documents into the sections used to
// ground the BI assistant.
//
// A document is split by section markers: markdown headings ("## Medidas"),
// bracketed titles ("[TABELAS]") or banners ("=== Queries ==="). Text before
// the first marker, and text under a marker no slot recognizes, lands in base.
// Inside list slots every item becomes a structured record.
//
// Parse is pure and total: it never fails, and the same input always yields
// the same Sections.
package parser

import (
	"regexp"
	"strings"

	"github.com/duke-git/lancet/v2/strutil"
)

var (
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	bracketRe = regexp.MustCompile(`^\[([^\[\]]+)\]$`)
	bannerRe  = regexp.MustCompile(`^={2,}\s*([^=]+?)\s*={2,}$`)
	bulletRe  = regexp.MustCompile(`^([-*+]|\d{1,3}[.)])\s+`)
	ruleRe    = regexp.MustCompile(`^(-{3,}|\*{3,}|_{3,})$`)
)

var slotAliases = map[string]Slot{
	"base":                   SlotBase,
	"base de conhecimento":   SlotBase,
	"conhecimento":           SlotBase,
	"conhecimento base":      SlotBase,
	"contexto":               SlotBase,
	"contexto geral":         SlotBase,
	"knowledge":              SlotBase,
	"knowledge base":         SlotBase,
	"base knowledge":         SlotBase,
	"context":                SlotBase,
	"overview":               SlotBase,
	"visao geral":            SlotBase,
	"medidas":                SlotMedidas,
	"medidas dax":            SlotMedidas,
	"measures":               SlotMedidas,
	"metricas":               SlotMedidas,
	"metrics":                SlotMedidas,
	"tabelas":                SlotTabelas,
	"tables":                 SlotTabelas,
	"modelo de dados":        SlotTabelas,
	"data model":             SlotTabelas,
	"schema":                 SlotTabelas,
	"queries":                SlotQueries,
	"query":                  SlotQueries,
	"consultas":              SlotQueries,
	"exemplos de queries":    SlotQueries,
	"exemplos de consultas":  SlotQueries,
	"example queries":        SlotQueries,
	"sql":                    SlotQueries,
	"dax queries":            SlotQueries,
	"exemplos":               SlotExemplos,
	"examples":               SlotExemplos,
	"exemplos de perguntas":  SlotExemplos,
	"exemplos de interacoes": SlotExemplos,
	"example interactions":   SlotExemplos,
	"interacoes":             SlotExemplos,
	"perguntas e respostas":  SlotExemplos,
	"q&a":                    SlotExemplos,
	"faq":                    SlotExemplos,
}

var accentFolder = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "ò", "o", "ô", "o", "õ", "o", "ö", "o",
	"ú", "u", "ù", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n",
)

// Parse splits content into sections.
func Parse(content string) Sections {
	s := &scanner{
		slot:  SlotBase,
		items: make(map[Slot][]*block),
	}
	for _, raw := range strings.Split(normalizeNewlines(content), "\n") {
		s.feed(raw)
	}
	return s.sections()
}

// LookupSlot reports which slot a marker title selects.
func LookupSlot(title string) (Slot, bool) {
	slot, ok := slotAliases[normalizeTitle(title)]
	return slot, ok
}

type marker struct {
	title   string
	level   int // heading depth, 0 for bracket and banner markers
	bracket bool
}

func parseMarker(trimmed string) (marker, bool) {
	if m := headingRe.FindStringSubmatch(trimmed); m != nil {
		return marker{title: strings.TrimSpace(strings.TrimRight(m[2], "#")), level: len(m[1])}, true
	}
	if m := bracketRe.FindStringSubmatch(trimmed); m != nil {
		return marker{title: m[1], bracket: true}, true
	}
	if m := bannerRe.FindStringSubmatch(trimmed); m != nil {
		return marker{title: m[1]}, true
	}
	return marker{}, false
}

type itemStart int

const (
	startPlain itemStart = iota
	startBullet
	startHeading
)

type line struct {
	text string
	code bool
}

type block struct {
	start itemStart
	head  string
	lines []line
}

func (b *block) add(l line) {
	b.lines = append(b.lines, l)
}

func (b *block) empty() bool {
	if b.head != "" {
		return false
	}
	for _, l := range b.lines {
		if !strutil.IsBlank(l.text) {
			return false
		}
	}
	return true
}

type scanner struct {
	slot    Slot
	base    []string
	items   map[Slot][]*block
	cur     *block
	brk     bool
	inFence bool
}

func (s *scanner) feed(raw string) {
	trimmed := strings.TrimSpace(raw)

	if isFence(trimmed) {
		s.inFence = !s.inFence
		if s.slot == SlotBase {
			s.base = append(s.base, raw)
		} else if s.cur == nil {
			s.open(startPlain, "")
		}
		return
	}

	if s.inFence {
		if s.slot == SlotBase {
			s.base = append(s.base, raw)
			return
		}
		if s.cur == nil {
			s.open(startPlain, "")
		}
		s.cur.add(line{text: strings.TrimRight(raw, " \t"), code: true})
		return
	}

	if m, ok := parseMarker(trimmed); ok {
		slot, known := LookupSlot(m.title)
		switch {
		case known:
			s.switchTo(slot)
			return
		case s.slot != SlotBase && m.level >= 3:
			s.open(startHeading, cleanName(m.title))
			return
		case s.slot != SlotBase && m.bracket:
			// "[Total Sales]" inside a list slot is a DAX reference, not a marker
		default:
			s.switchTo(SlotBase)
			s.base = append(s.base, raw)
			return
		}
	}

	if s.slot == SlotBase {
		s.base = append(s.base, raw)
		return
	}

	if strutil.IsBlank(trimmed) {
		if s.cur != nil && s.cur.start != startHeading {
			s.brk = true
		}
		return
	}
	if ruleRe.MatchString(trimmed) {
		s.cur = nil
		s.brk = false
		return
	}

	if loc := bulletRe.FindStringIndex(trimmed); loc != nil && !isIndented(raw) {
		text := trimmed[loc[1]:]
		continues := s.cur != nil && !s.brk && s.cur.start != startBullet
		if s.slot == SlotExemplos && s.cur != nil && !s.brk {
			switch sp, _ := splitSpeaker(text); {
			case sp == speakerAnswer:
				continues = true
			case sp == speakerQuestion && s.cur.answered():
				continues = false
			}
		}
		if continues {
			s.cur.add(line{text: trimmed})
		} else {
			s.open(startBullet, text)
		}
		return
	}

	if s.cur == nil || s.brk || s.startsItem(raw, trimmed) {
		s.open(startPlain, trimmed)
		return
	}
	s.cur.add(line{text: trimmed})
}

// startsItem reports whether a plain line opens a new record even though no
// blank line separates it from the current one. Items under a sub-heading
// only split on speaker turns.
func (s *scanner) startsItem(raw, trimmed string) bool {
	if s.slot == SlotExemplos {
		sp, _ := splitSpeaker(trimmed)
		return sp == speakerQuestion && s.cur.answered()
	}
	if isIndented(raw) || s.cur.start == startHeading {
		return false
	}
	switch s.slot {
	case SlotMedidas:
		_, expr := splitAssignment(trimmed)
		return expr != ""
	case SlotTabelas:
		name, _, _ := splitColumns(trimmed)
		name = cleanName(name)
		return name != "" && !strings.ContainsAny(name, " \t")
	}
	return false
}

func (s *scanner) open(start itemStart, head string) {
	s.cur = &block{start: start, head: strings.TrimSpace(head)}
	s.items[s.slot] = append(s.items[s.slot], s.cur)
	s.brk = false
}

func (s *scanner) switchTo(slot Slot) {
	s.slot = slot
	s.cur = nil
	s.brk = false
}

func (s *scanner) sections() Sections {
	out := emptySections()
	out.Base = strings.TrimSpace(strings.Join(s.base, "\n"))

	for _, b := range s.items[SlotMedidas] {
		if !b.empty() {
			out.Medidas = append(out.Medidas, b.measure())
		}
	}
	for _, b := range s.items[SlotTabelas] {
		if !b.empty() {
			out.Tabelas = append(out.Tabelas, b.table())
		}
	}
	for _, b := range s.items[SlotQueries] {
		if !b.empty() {
			out.Queries = append(out.Queries, b.query())
		}
	}
	for _, b := range s.items[SlotExemplos] {
		if !b.empty() {
			out.Exemplos = append(out.Exemplos, b.example())
		}
	}
	return out
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func normalizeTitle(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, "*`_ ")
	s = strings.TrimSuffix(s, ":")
	s = accentFolder.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func isFence(trimmed string) bool {
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

func isIndented(raw string) bool {
	return strings.HasPrefix(raw, " ") || strings.HasPrefix(raw, "\t")
}
