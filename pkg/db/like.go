package db

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern lowercases search and wraps it for a substring LIKE match.
// Wildcards typed by the user match literally; queries must use
// `LIKE ? ESCAPE '\'`, which both postgres and sqlite accept.
func ContainsPattern(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(search))) + "%"
}
