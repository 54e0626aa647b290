package parser

import (
	"strings"

	"github.com/duke-git/lancet/v2/slice"
	"github.com/duke-git/lancet/v2/strutil"
)

type speaker int

const (
	speakerNone speaker = iota
	speakerQuestion
	speakerAnswer
)

var speakerKeys = map[string]speaker{
	"p":          speakerQuestion,
	"pergunta":   speakerQuestion,
	"q":          speakerQuestion,
	"question":   speakerQuestion,
	"usuario":    speakerQuestion,
	"user":       speakerQuestion,
	"cliente":    speakerQuestion,
	"r":          speakerAnswer,
	"resposta":   speakerAnswer,
	"a":          speakerAnswer,
	"answer":     speakerAnswer,
	"assistente": speakerAnswer,
	"assistant":  speakerAnswer,
	"ia":         speakerAnswer,
	"ai":         speakerAnswer,
	"bot":        speakerAnswer,
}

func (b *block) text() []string {
	var out []string
	for _, l := range b.lines {
		if !l.code {
			out = append(out, l.text)
		}
	}
	return out
}

func (b *block) code() string {
	var out []string
	for _, l := range b.lines {
		if l.code {
			out = append(out, l.text)
		}
	}
	return strings.Trim(strings.Join(out, "\n"), "\n")
}

func (b *block) measure() Measure {
	name, expr := splitAssignment(b.head)
	var desc string
	if expr == "" {
		name, desc = splitLabel(name)
	}

	exprParts := []string{expr}
	descParts := []string{desc}
	for _, l := range b.text() {
		l = stripBullet(l)
		if strings.HasPrefix(l, "=") {
			exprParts = append(exprParts, strings.TrimSpace(strings.TrimPrefix(l, "=")))
			continue
		}
		descParts = append(descParts, l)
	}
	exprParts = append(exprParts, b.code())

	return Measure{
		Name:        cleanName(name),
		Expression:  joinNonBlank("\n", exprParts),
		Description: joinNonBlank(" ", descParts),
	}
}

func (b *block) table() Table {
	name, columns, desc := splitColumns(b.head)

	descParts := []string{desc}
	for _, l := range b.text() {
		if loc := bulletRe.FindStringIndex(l); loc != nil {
			columns = append(columns, cleanName(l[loc[1]:]))
			continue
		}
		descParts = append(descParts, l)
	}
	descParts = append(descParts, b.code())

	columns = slice.Filter(columns, func(_ int, c string) bool {
		return c != ""
	})
	if len(columns) == 0 {
		columns = nil
	}

	return Table{
		Name:        cleanName(name),
		Columns:     columns,
		Description: joinNonBlank(" ", descParts),
	}
}

func (b *block) query() Query {
	text := b.text()
	if code := b.code(); code != "" {
		return Query{
			Title: cleanName(joinNonBlank(" ", append([]string{b.head}, text...))),
			Text:  code,
		}
	}
	if len(text) == 0 {
		return Query{Text: b.head}
	}
	return Query{
		Title: cleanName(b.head),
		Text:  strings.Join(text, "\n"),
	}
}

// answered reports whether an answer speaker line already belongs to b.
func (b *block) answered() bool {
	if sp, _ := splitSpeaker(b.head); sp == speakerAnswer {
		return true
	}
	for _, l := range b.lines {
		if sp, _ := splitSpeaker(stripBullet(strings.TrimSpace(l.text))); sp == speakerAnswer {
			return true
		}
	}
	return false
}

func (b *block) example() Example {
	all := make([]string, 0, len(b.lines)+1)
	if b.head != "" {
		all = append(all, b.head)
	}
	for _, l := range b.lines {
		all = append(all, stripBullet(strings.TrimSpace(l.text)))
	}

	var question, answer []string
	target := speakerQuestion
	prefixed := false
	for _, l := range all {
		sp, rest := splitSpeaker(l)
		if sp != speakerNone {
			prefixed = true
			target = sp
			l = rest
		}
		if target == speakerAnswer {
			answer = append(answer, l)
		} else {
			question = append(question, l)
		}
	}

	if !prefixed && len(all) > 0 {
		question, answer = all[:1], all[1:]
	}

	return Example{
		Question: joinNonBlank(" ", question),
		Answer:   joinNonBlank("\n", answer),
	}
}

// splitAssignment splits "Name = EXPR" (or "Name := EXPR"). Comparison
// operators are not assignments.
func splitAssignment(s string) (string, string) {
	idx := strings.Index(s, "=")
	if idx <= 0 {
		return s, ""
	}
	if idx+1 < len(s) && s[idx+1] == '=' {
		return s, ""
	}
	if strings.ContainsAny(s[idx-1:idx], "<>!") {
		return s, ""
	}
	name := strings.TrimSuffix(strings.TrimSpace(s[:idx]), ":")
	if strutil.IsBlank(name) {
		return s, ""
	}
	return name, strings.TrimSpace(s[idx+1:])
}

// splitLabel splits "Name: description".
func splitLabel(s string) (string, string) {
	idx := strings.Index(s, ": ")
	if idx <= 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx+2:])
}

// splitColumns understands "Name (a, b)" and "Name: a, b". A colon followed by
// prose without commas is a description.
func splitColumns(s string) (string, []string, string) {
	if open := strings.Index(s, "("); open > 0 && strings.HasSuffix(s, ")") {
		return s[:open], strutil.SplitAndTrim(s[open+1:len(s)-1], ","), ""
	}
	if idx := strings.Index(s, ":"); idx > 0 {
		rest := strings.TrimSpace(s[idx+1:])
		if strings.Contains(rest, ",") {
			return s[:idx], strutil.SplitAndTrim(rest, ","), ""
		}
		return s[:idx], nil, rest
	}
	return s, nil, ""
}

func splitSpeaker(l string) (speaker, string) {
	idx := strings.Index(l, ":")
	if idx <= 0 || idx > 20 {
		return speakerNone, l
	}
	sp, ok := speakerKeys[normalizeTitle(l[:idx])]
	if !ok {
		return speakerNone, l
	}
	return sp, strings.TrimSpace(strings.TrimLeft(l[idx+1:], "*"))
}

func stripBullet(l string) string {
	if loc := bulletRe.FindStringIndex(l); loc != nil {
		return l[loc[1]:]
	}
	return l
}

func cleanName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*`")
	s = strings.TrimSuffix(strings.TrimSpace(s), ":")
	return strings.TrimSpace(s)
}

func joinNonBlank(sep string, parts []string) string {
	parts = slice.Filter(parts, func(_ int, p string) bool {
		return !strutil.IsBlank(p)
	})
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, sep)
}
