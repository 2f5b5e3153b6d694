package ecomschema

import "strings"

// ensureIfNotExists rewrites "CREATE TABLE <name>" to the IF NOT EXISTS
// form unless the statement already carries it.
func ensureIfNotExists(name, ddl string) string {
	if strings.Contains(strings.ToUpper(ddl), "IF NOT EXISTS") {
		return ddl
	}
	return strings.Replace(ddl, "CREATE TABLE "+name, "CREATE TABLE IF NOT EXISTS "+name, 1)
}
