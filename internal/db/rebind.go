// Caminho: internal/db/rebind.go
// Resumo: Tradução de placeholders '?' para o formato do driver ativo.

package db

import "strconv"

var currentDriver Driver = DriverSQLite

// setCurrentDriver registra o driver escolhido por Connect.
func setCurrentDriver(d Driver) { currentDriver = d }

// IsPostgres informa se o driver ativo é Postgres.
func IsPostgres() bool { return currentDriver == DriverPostgres }

// Rebind converte placeholders '?' para o formato específico do driver.
// Para Postgres (pgx) reescreve como $1, $2, ...; para SQLite retorna a query inalterada.
func Rebind(query string) string {
    if !IsPostgres() {
        return query
    }
    out := make([]byte, 0, len(query)+8)
    n := 0
    for i := 0; i < len(query); i++ {
        if query[i] == '?' {
            n++
            out = append(out, '$')
            out = strconv.AppendInt(out, int64(n), 10)
            continue
        }
        out = append(out, query[i])
    }
    return string(out)
}
