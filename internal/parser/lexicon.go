package parser

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"
)

// inflections 单词同义词允许的词形变化后缀（importe → importes, budget → budgeted, cargo → cargos）
// 只接受封闭列表，避免 actual → actualización、total → totalizador 之类的误匹配
var inflections = []string{"s", "es", "ed", "ado", "ada", "os", "as"}

// defaultSynonyms 默认词库（西语 + 英语导出文件）
var defaultSynonyms = map[Concept][]string{
	ConceptAmount: {
		"amount", "importe", "monto", "cantidad", "valor", "value", "sum", "suma",
	},
	ConceptDate: {
		"date", "fecha", "fecha valor", "day", "dia", "period", "periodo", "month", "mes",
	},
	ConceptCategory: {
		"category", "categoria", "concept", "concepto", "tipo", "type", "nombre", "name",
		"description", "descripcion", "account", "cuenta", "partida",
	},
	ConceptDebit: {
		"debit", "debito", "debe", "cargo", "cargos",
	},
	ConceptCredit: {
		"credit", "credito", "haber", "abono", "abonos",
	},
	ConceptBudget: {
		"budget", "budgeted", "presupuesto", "presupuestado", "planeado", "plan",
	},
	ConceptActual: {
		"actual", "real", "ejecutado", "realizado",
	},
}

// Lexicon 列名同义词库
type Lexicon struct {
	synonyms map[Concept][]string
}

// NewLexicon 创建空词库
func NewLexicon() *Lexicon {
	return &Lexicon{synonyms: make(map[Concept][]string)}
}

// DefaultLexicon 默认词库（每次返回新实例）
func DefaultLexicon() *Lexicon {
	l := NewLexicon()
	for c, words := range defaultSynonyms {
		_ = l.Extend(c, words...)
	}
	return l
}

// Concepts 词库中的全部概念（排序后）
func (l *Lexicon) Concepts() []Concept {
	out := make([]Concept, 0, len(l.synonyms))
	for c := range l.synonyms {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Synonyms 某概念的同义词（副本）
func (l *Lexicon) Synonyms(c Concept) []string {
	words := l.synonyms[c]
	out := make([]string, len(words))
	copy(out, words)
	return out
}

// Extend 追加同义词（规范化后去重）
func (l *Lexicon) Extend(c Concept, words ...string) error {
	if !isKnownConcept(c) {
		return fmt.Errorf("unknown lexicon concept: %q", c)
	}
	existing := make(map[string]bool, len(l.synonyms[c]))
	for _, w := range l.synonyms[c] {
		existing[w] = true
	}
	for _, w := range words {
		w = strings.Join(Tokenize(w), " ")
		if w == "" || existing[w] {
			continue
		}
		existing[w] = true
		l.synonyms[c] = append(l.synonyms[c], w)
	}
	return nil
}

// Matches 表头是否命中某概念
func (l *Lexicon) Matches(header string, c Concept) bool {
	tokens := Tokenize(header)
	if len(tokens) == 0 {
		return false
	}
	joined := " " + strings.Join(tokens, " ") + " "
	for _, syn := range l.synonyms[c] {
		if matchSynonym(tokens, joined, syn) {
			return true
		}
	}
	return false
}

// Match 表头命中的全部概念；同一概念只记一次，不同概念不去重
func (l *Lexicon) Match(header string) []Concept {
	var out []Concept
	for _, c := range l.Concepts() {
		if l.Matches(header, c) {
			out = append(out, c)
		}
	}
	return out
}

// FirstMatch 第一个命中某概念的表头（原始文本）
func (l *Lexicon) FirstMatch(headers []string, c Concept) (string, bool) {
	for _, h := range headers {
		if l.Matches(h, c) {
			return h, true
		}
	}
	return "", false
}

func matchSynonym(tokens []string, joined, syn string) bool {
	if strings.Contains(syn, " ") {
		return strings.Contains(joined, " "+syn+" ")
	}
	for _, tok := range tokens {
		if tok == syn {
			return true
		}
		if rest, ok := strings.CutPrefix(tok, syn); ok && isInflection(rest) {
			return true
		}
	}
	return false
}

func isInflection(suffix string) bool {
	for _, s := range inflections {
		if suffix == s {
			return true
		}
	}
	return false
}

func isKnownConcept(c Concept) bool {
	switch c {
	case ConceptAmount, ConceptDate, ConceptCategory, ConceptDebit, ConceptCredit, ConceptBudget, ConceptActual:
		return true
	}
	return false
}

// LoadLexicon 读取 YAML 扩展词库并合并到默认词库
//
//	amount: [betrag, "net amount"]
//	date: [datum]
func LoadLexicon(path string) (*Lexicon, error) {
	l := DefaultLexicon()
	if path == "" {
		return l, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}

	var extra map[string][]string
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := l.Extend(Concept(strings.ToLower(strings.TrimSpace(k))), extra[k]...); err != nil {
			return nil, err
		}
	}
	return l, nil
}
