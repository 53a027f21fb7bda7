package dialog

import (
	"strings"

	"github.com/tbourn/go-meal-agent/internal/sysutil"
)

// command is a recognized slash-style instruction. Commands are matched by
// literal case-insensitive prefix and take priority over state routing.
type command int

const (
	cmdNone command = iota
	cmdStart
	cmdCancel
	cmdSave
	cmdContinue
	cmdSearch
	cmdPreferences
	cmdLogout
)

// commandPrefixes maps every accepted prefix (English and Spanish) onto its
// command. Longer prefixes are matched first so "/search" never swallows a
// hypothetical longer variant.
var commandPrefixes = []struct {
	prefix string
	cmd    command
}{
	{"/preferencias", cmdPreferences},
	{"/preferences", cmdPreferences},
	{"/continuar", cmdContinue},
	{"/continue", cmdContinue},
	{"/cancelar", cmdCancel},
	{"/empezar", cmdStart},
	{"/guardar", cmdSave},
	{"/cancel", cmdCancel},
	{"/logout", cmdLogout},
	{"/buscar", cmdSearch},
	{"/search", cmdSearch},
	{"/start", cmdStart},
	{"/salir", cmdLogout},
	{"/save", cmdSave},
}

// matchCommand returns the command a message begins with, if any.
func matchCommand(text string) command {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, c := range commandPrefixes {
		if strings.HasPrefix(t, c.prefix) {
			return c.cmd
		}
	}
	return cmdNone
}

// Login keywords accepted in either language.
var loginKeywords = []string{"login", "acceder", "ingresar"}

// minLoginTokens is the keyword plus username plus password.
const minLoginTokens = 3

// parseLogin intercepts an authentication-style message: a login keyword
// plus at least the minimum token count. It returns the username/password
// pair following the keyword.
func parseLogin(text string) (username, password string, ok bool) {
	fields := strings.Fields(text)
	if len(fields) < minLoginTokens {
		return "", "", false
	}
	head := strings.ToLower(fields[0])
	for _, kw := range loginKeywords {
		if head == kw {
			return fields[1], fields[2], true
		}
	}
	return "", "", false
}

// Affirmative and negative reply words, both languages.
var affirmatives = map[string]struct{}{
	"si": {}, "sí": {}, "claro": {}, "ok": {}, "okay": {},
	"sure": {}, "yep": {}, "yeah": {}, "dale": {},
}

var negatives = map[string]struct{}{
	"no": {}, "nope": {}, "nah": {}, "never": {}, "nunca": {},
}

func isAffirmative(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if _, ok := affirmatives[t]; ok {
		return true
	}
	return sysutil.IsTruthy(t)
}

func isNegative(text string) bool {
	_, ok := negatives[strings.ToLower(strings.TrimSpace(text))]
	return ok
}
