// Caminho: internal/db/db.go
// Resumo: Abertura da conexão com o banco de dados a partir de DATABASE_URL.
// Suporta Postgres (driver pgx) e SQLite (driver puro Go) com o mesmo código de acesso.

package db

import (
    "database/sql"
    "fmt"

    _ "github.com/jackc/pgx/v5/stdlib" // registra driver pgx
    _ "modernc.org/sqlite"             // registra driver sqlite puro Go
)

// Connect estabelece a conexão com o banco de dados a partir de DATABASE_URL.
func Connect(databaseURL string) (*sql.DB, error) {
    driver, dsn := ParseDSN(databaseURL)
    sqldb, err := sql.Open(string(driver), dsn)
    if err != nil {
        return nil, fmt.Errorf("open db: %w", err)
    }
    if err := sqldb.Ping(); err != nil {
        return nil, fmt.Errorf("ping db: %w", err)
    }
    setCurrentDriver(driver)
    return sqldb, nil
}
