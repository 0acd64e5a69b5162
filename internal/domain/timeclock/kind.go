package timeclock

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Kind is the canonical punch type.
type Kind int

const (
	KindUnknown Kind = iota
	KindEntry
	KindBreak
	KindExit
)

var kindNames = map[Kind]string{
	KindEntry: "entry",
	KindBreak: "break",
	KindExit:  "exit",
}

var kindCodes = map[Kind]string{
	KindEntry: "E",
	KindBreak: "P",
	KindExit:  "S",
}

var kindCodeAliases = map[string]Kind{
	"e": KindEntry,
	"p": KindBreak,
	"b": KindBreak,
	"s": KindExit,
	"x": KindExit,
}

// Checked in order; exit before entry so that "clock-out" never hits an entry alias.
var kindSubstrings = []struct {
	needle string
	kind   Kind
}{
	{"saida", KindExit},
	{"exit", KindExit},
	{"clock-out", KindExit},
	{"pausa", KindBreak},
	{"intervalo", KindBreak},
	{"break", KindBreak},
	{"entrada", KindEntry},
	{"entry", KindEntry},
	{"clock-in", KindEntry},
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Code is the one-letter label used on printed reports.
func (k Kind) Code() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return "?"
}

func (k Kind) Valid() bool {
	return k == KindEntry || k == KindBreak || k == KindExit
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, ok := ParseKind(string(text))
	if !ok {
		return &UnknownKindError{Value: string(text)}
	}
	*k = parsed
	return nil
}

// ParseKind normalizes the punch type text sent by clients and stored by older
// versions ("Entrada", "ENTRADA", "saída", "E", ...).
func ParseKind(raw string) (Kind, bool) {
	folded := foldText(raw)
	if folded == "" {
		return KindUnknown, false
	}
	if kind, ok := kindCodeAliases[folded]; ok {
		return kind, true
	}
	for _, candidate := range kindSubstrings {
		if strings.Contains(folded, candidate.needle) {
			return candidate.kind, true
		}
	}
	return KindUnknown, false
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldText(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	folded, _, err := transform.String(accentFolder, trimmed)
	if err != nil {
		return trimmed
	}
	return strings.ReplaceAll(folded, "_", "-")
}
