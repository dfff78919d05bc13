package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Each extractor applies an ordered list of patterns: the most
// format-specific rules come first and the first rule with any match wins.
// Within a rule the leftmost occurrence is taken, since receipts place
// primary fields before later mentions of the same shape.

var idRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)n[úu]mero de operaci[óo]n[\s:#]*([A-Za-z0-9-]{6,24})`),
	regexp.MustCompile(`(?i)(?:operaci[óo]n|comprobante|referencia|c[óo]digo)[\s:#]*([A-Za-z0-9-]{6,24})`),
	regexp.MustCompile(`\bID[\s:#]*([A-Za-z0-9-]{4,24})`),
}

// ExtractTransactionID looks for a labeled alphanumeric code of bounded
// length near known receipt-ID labels. Absent when no label-adjacent token
// matches.
func ExtractTransactionID(text string) Result[string] {
	for _, re := range idRules {
		if m := re.FindStringSubmatchIndex(text); m != nil {
			return found(text[m[2]:m[3]], Span{m[2], m[3]}, ConfidenceHigh)
		}
	}
	return absent[string]()
}

var amountRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:total|monto|importe)[\s:]*\$?\s*(\d(?:[\d.,]*\d)?)`),
	regexp.MustCompile(`\$\s*(\d(?:[\d.,]*\d)?)`),
	regexp.MustCompile(`(?i)(\d(?:[\d.,]*\d)?)\s*(?:pesos|ars)\b`),
}

// DirectionCue carries the directional signals captured around the amount
// token. Sign and direction can conflict, so final resolution happens in the
// classifier, not here.
type DirectionCue struct {
	Keyword  Direction // income/expense keyword cue, empty when none
	Signed   bool      // a literal sign was present on the raw token
	Negative bool      // the literal sign was negative
}

// ExtractAmount locates a currency-marked numeric token and hands it to the
// locale parser. The numeric substring is resolved by the separator policy;
// any adjacent sign and the receipt's keyword cue are recorded as a side
// output for the classifier.
func ExtractAmount(text string) (Result[decimal.Decimal], DirectionCue) {
	cue := DirectionCue{Keyword: keywordCue(text)}

	for _, re := range amountRules {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			start, end := m[2], m[3]
			value, conf, err := ParseLocalizedDecimal(text[start:end])
			if err != nil {
				continue
			}
			cue.Signed, cue.Negative = literalSign(text, start, end)
			return found(value, Span{start, end}, conf), cue
		}
	}
	return absent[decimal.Decimal](), cue
}

// literalSign inspects the characters around a numeric token for a leading
// minus, trailing minus, explicit plus or parenthesization.
func literalSign(text string, start, end int) (signed, negative bool) {
	// walk left over spaces and the currency mark
	i := start - 1
	for i >= 0 && (text[i] == ' ' || text[i] == '$') {
		i--
	}
	if i >= 0 {
		switch text[i] {
		case '-':
			return true, true
		case '+':
			return true, false
		case '(':
			if closedAfter(text, end) {
				return true, true
			}
		}
	}

	j := end
	for j < len(text) && text[j] == ' ' {
		j++
	}
	if j < len(text) && text[j] == '-' {
		return true, true
	}
	return false, false
}

func closedAfter(text string, end int) bool {
	for j := end; j < len(text) && j < end+3; j++ {
		if text[j] == ')' {
			return true
		}
	}
	return false
}

type dateRule struct {
	re    *regexp.Regexp
	parse func(groups []string) (time.Time, error)
}

var dateRules = []dateRule{
	{regexp.MustCompile(`(?i)(\d{1,2})\s+de\s+([a-záéíóú]+)\s+de\s+(\d{4})`), parseSpanishDate},
	{regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2,4})\b`), parseDayFirst},
	{regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`), parseISO},
	{regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})-(\d{2,4})\b`), parseDayFirst},
}

// ExtractDate locates a date-shaped token (month-name or numeric-separated)
// and resolves it through the locale date parser. A token that fails every
// known shape yields absent, never an error.
func ExtractDate(text string) Result[time.Time] {
	for _, rule := range dateRules {
		for _, m := range rule.re.FindAllStringSubmatchIndex(text, -1) {
			groups := make([]string, 0, 3)
			for g := 1; g*2 < len(m); g++ {
				groups = append(groups, text[m[2*g]:m[2*g+1]])
			}
			t, err := rule.parse(groups)
			if err != nil {
				continue
			}
			return found(t, Span{m[0], m[1]}, ConfidenceHigh)
		}
	}
	return absent[time.Time]()
}

var descriptionRules = []*regexp.Regexp{
	regexp.MustCompile(`(?im)^(?:detalle|descripci[óo]n|concepto)[\s:]+(.+)$`),
	regexp.MustCompile(`(?im)\b(?:motivo|raz[óo]n)[\s:]+(.+)$`),
}

// fieldLabel marks lines that carry another extractor's field rather than
// free description text.
var fieldLabel = regexp.MustCompile(`(?i)^(?:detalle|descripci[óo]n|concepto|operaci[óo]n|n[úu]mero|comprobante|referencia|c[óo]digo|vendedor|comercio|destinatario|remitente|total|monto|importe|fecha|id)\b`)

// ExtractDescription prefers a labeled description line; otherwise it picks
// the longest non-label line adjacent to the amount token, and finally the
// first non-empty line of the whole text.
func ExtractDescription(text string, amount Result[decimal.Decimal]) Result[string] {
	for _, re := range descriptionRules {
		if m := re.FindStringSubmatchIndex(text); m != nil {
			v := strings.TrimSpace(text[m[2]:m[3]])
			if len(v) > 3 {
				return found(clip(v, 200), Span{m[2], m[3]}, ConfidenceHigh)
			}
		}
	}

	lines, offsets := splitLines(text)

	if amount.Found {
		amountLine := lineAt(offsets, lines, amount.Span.Start)
		best := -1
		for i := amountLine - 1; i <= amountLine+1; i++ {
			if i < 0 || i >= len(lines) {
				continue
			}
			line := strings.TrimSpace(lines[i])
			if line == "" || fieldLabel.MatchString(line) {
				continue
			}
			if best == -1 || len(line) > len(strings.TrimSpace(lines[best])) {
				best = i
			}
		}
		if best >= 0 {
			v := strings.TrimSpace(lines[best])
			return found(clip(v, 200), Span{offsets[best], offsets[best] + len(lines[best])}, ConfidenceLow)
		}
	}

	for i, line := range lines {
		v := strings.TrimSpace(line)
		if v != "" {
			return found(clip(v, 200), Span{offsets[i], offsets[i] + len(line)}, ConfidenceLow)
		}
	}
	return absent[string]()
}

var merchantRules = []*regexp.Regexp{
	regexp.MustCompile(`(?im)^(?:vendedor|comercio|destinatario|remitente|para)[\s:]+(.+)$`),
	regexp.MustCompile(`\bde\s+([A-ZÁÉÍÓÚÑ][\wáéíóúñÁÉÍÓÚÑ.'-]*(?:\s+[A-ZÁÉÍÓÚÑ][\wáéíóúñÁÉÍÓÚÑ.'-]*)*)\s+el\b`),
	regexp.MustCompile(`(?m)\ben\s+([A-Z0-9ÁÉÍÓÚÑ][^\n.]{1,60}?)\s*(?:\.|$)`),
}

// ExtractMerchant looks for a labeled counterparty field, then for the
// "de <Name> el <fecha>" and "en <Comercio>" receipt phrasings. Absent when
// none match.
func ExtractMerchant(text string) Result[string] {
	for _, re := range merchantRules {
		if m := re.FindStringSubmatchIndex(text); m != nil {
			v := strings.TrimSpace(text[m[2]:m[3]])
			if len(v) > 2 {
				return found(clip(v, 100), Span{m[2], m[3]}, ConfidenceHigh)
			}
		}
	}
	return absent[string]()
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max]))
}

// splitLines returns the lines of text and the byte offset of each line.
func splitLines(text string) ([]string, []int) {
	lines := strings.Split(text, "\n")
	offsets := make([]int, len(lines))
	pos := 0
	for i, line := range lines {
		offsets[i] = pos
		pos += len(line) + 1
	}
	return lines, offsets
}

// lineAt returns the index of the line containing byte offset pos.
func lineAt(offsets []int, lines []string, pos int) int {
	for i := len(offsets) - 1; i >= 0; i-- {
		if pos >= offsets[i] {
			return i
		}
	}
	return 0
}
