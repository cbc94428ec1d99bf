package analyzer

import (
	"strings"
	"unicode"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// posSymbol is the IPA part of speech for punctuation and whitespace.
const posSymbol = "記号"

// Token represents a single analyzed unit of text.
type Token struct {
	Surface    string // The text as it appears (e.g. "行っ")
	BaseForm   string // The dictionary form (e.g. "行く")
	Reading    string // Katakana pronunciation, empty for unknown words
	PrimaryPOS string
}

// Sentence represents a sentence containing tokens.
type Sentence struct {
	Index  int
	Text   string
	Tokens []Token
}

// Analyzer handles text segmentation.
type Analyzer struct {
	t *tokenizer.Tokenizer
}

// New creates an analyzer backed by the IPA dictionary.
func New() (*Analyzer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Analyzer{t: t}, nil
}

// Analyze breaks text into tokens with readings and base forms.
// Symbols and whitespace are dropped.
func (a *Analyzer) Analyze(text string) []Token {
	var result []Token
	for _, token := range a.t.Tokenize(text) {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		if strings.TrimSpace(token.Surface) == "" {
			continue
		}

		// IPA features: 0 POS, 1-3 sub POS, 4-5 conjugation, 6 base form, 7 reading.
		features := token.Features()
		primaryPOS := ""
		if len(features) > 0 {
			primaryPOS = features[0]
		}
		if primaryPOS == posSymbol || isPunct(token.Surface) {
			continue
		}

		base := token.Surface
		if len(features) > 6 && features[6] != "*" {
			base = features[6]
		}
		reading := ""
		if len(features) > 7 && features[7] != "*" {
			reading = features[7]
		}

		result = append(result, Token{
			Surface:    token.Surface,
			BaseForm:   base,
			Reading:    reading,
			PrimaryPOS: primaryPOS,
		})
	}
	return result
}

// AnalyzeDocument splits the text into sentences and tokenizes each sentence.
// Sentence indexes count only non-blank sentences.
func (a *Analyzer) AnalyzeDocument(text string) []Sentence {
	var result []Sentence
	for _, s := range splitSentences(text) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		result = append(result, Sentence{
			Index:  len(result),
			Text:   s,
			Tokens: a.Analyze(s),
		})
	}
	return result
}

// Candidates returns the forms worth looking up for a token: the base form
// first, then the surface form when it differs.
func Candidates(tok Token) []string {
	var out []string
	for _, w := range []string{tok.BaseForm, tok.Surface} {
		w = strings.TrimSpace(w)
		if w == "" || w == "*" {
			continue
		}
		if len(out) > 0 && out[0] == w {
			continue
		}
		out = append(out, w)
	}
	return out
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		end := false
		switch r {
		// 。(3002), ！(FF01), ？(FF1F)
		case '。', '！', '？', '\n':
			end = true
		case '.', '!', '?':
			// Latin terminators only end a sentence before whitespace or the end of text.
			end = i == len(runes)-1 || unicode.IsSpace(runes[i+1])
		}
		if end {
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}

func isPunct(s string) bool {
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}
