// Caminho: internal/db/migrate.go
// Resumo: Migrações mínimas para criar as tabelas do site (users, projects, orcamentos,
// contatos e sessions).

package db

import (
    "context"
    "database/sql"
)

// Migrate aplica o schema necessário para operação do serviço.
func Migrate(ctx context.Context, sqldb *sql.DB) error {
    var stmts []string
    if IsPostgres() {
        stmts = []string{
            `CREATE TABLE IF NOT EXISTS users (
                id BIGSERIAL PRIMARY KEY,
                email TEXT NOT NULL UNIQUE,
                nome TEXT NOT NULL,
                password_hash TEXT NOT NULL,
                role TEXT NOT NULL DEFAULT 'user',
                uid TEXT NOT NULL DEFAULT '',
                ativo BOOLEAN NOT NULL DEFAULT TRUE,
                created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
                updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
            );`,
            `CREATE TABLE IF NOT EXISTS projects (
                id BIGSERIAL PRIMARY KEY,
                titulo TEXT NOT NULL,
                descricao TEXT NOT NULL,
                categoria TEXT NOT NULL,
                tipo TEXT NOT NULL,
                plataforma TEXT NOT NULL,
                imagem TEXT NOT NULL DEFAULT '',
                tecnologias TEXT NOT NULL DEFAULT '[]',
                link TEXT NOT NULL DEFAULT '',
                tipo_link TEXT NOT NULL DEFAULT '',
                repositorio TEXT NOT NULL DEFAULT '',
                destaque BOOLEAN NOT NULL DEFAULT FALSE,
                ativo BOOLEAN NOT NULL DEFAULT TRUE,
                ordem INTEGER NOT NULL DEFAULT 0,
                created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
                updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
            );`,
            `CREATE TABLE IF NOT EXISTS orcamentos (
                id BIGSERIAL PRIMARY KEY,
                nome TEXT NOT NULL,
                email TEXT NOT NULL,
                telefone TEXT NOT NULL,
                empresa TEXT NOT NULL DEFAULT '',
                tipo_servico TEXT NOT NULL,
                prazo TEXT NOT NULL,
                dias_personalizados TEXT NOT NULL DEFAULT '',
                data_inicio TEXT NOT NULL DEFAULT '',
                orcamento TEXT NOT NULL,
                descricao_projeto TEXT NOT NULL,
                status TEXT NOT NULL DEFAULT 'pendente',
                observacoes TEXT NOT NULL DEFAULT '',
                created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
                updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
            );`,
            `CREATE INDEX IF NOT EXISTS idx_orcamentos_status ON orcamentos(status);`,
            `CREATE TABLE IF NOT EXISTS contatos (
                id BIGSERIAL PRIMARY KEY,
                nome TEXT NOT NULL,
                email TEXT NOT NULL,
                telefone TEXT NOT NULL DEFAULT '',
                mensagem TEXT NOT NULL,
                lido BOOLEAN NOT NULL DEFAULT FALSE,
                respondido BOOLEAN NOT NULL DEFAULT FALSE,
                created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
            );`,
            `CREATE TABLE IF NOT EXISTS sessions (
                id BIGSERIAL PRIMARY KEY,
                user_id BIGINT NOT NULL REFERENCES users(id),
                session_id TEXT NOT NULL UNIQUE,
                token_hash TEXT NOT NULL UNIQUE,
                expires_at TIMESTAMPTZ NOT NULL,
                revoked_at TIMESTAMPTZ NULL,
                created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
            );`,
            `CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);`,
            `CREATE INDEX IF NOT EXISTS idx_sessions_token_hash ON sessions(token_hash);`,
        }
    } else {
        stmts = []string{
            `CREATE TABLE IF NOT EXISTS users (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                email TEXT NOT NULL UNIQUE,
                nome TEXT NOT NULL,
                password_hash TEXT NOT NULL,
                role TEXT NOT NULL DEFAULT 'user',
                uid TEXT NOT NULL DEFAULT '',
                ativo BOOLEAN NOT NULL DEFAULT 1,
                created_at TIMESTAMP NOT NULL,
                updated_at TIMESTAMP NOT NULL
            );`,
            `CREATE TABLE IF NOT EXISTS projects (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                titulo TEXT NOT NULL,
                descricao TEXT NOT NULL,
                categoria TEXT NOT NULL,
                tipo TEXT NOT NULL,
                plataforma TEXT NOT NULL,
                imagem TEXT NOT NULL DEFAULT '',
                tecnologias TEXT NOT NULL DEFAULT '[]',
                link TEXT NOT NULL DEFAULT '',
                tipo_link TEXT NOT NULL DEFAULT '',
                repositorio TEXT NOT NULL DEFAULT '',
                destaque BOOLEAN NOT NULL DEFAULT 0,
                ativo BOOLEAN NOT NULL DEFAULT 1,
                ordem INTEGER NOT NULL DEFAULT 0,
                created_at TIMESTAMP NOT NULL,
                updated_at TIMESTAMP NOT NULL
            );`,
            `CREATE TABLE IF NOT EXISTS orcamentos (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                nome TEXT NOT NULL,
                email TEXT NOT NULL,
                telefone TEXT NOT NULL,
                empresa TEXT NOT NULL DEFAULT '',
                tipo_servico TEXT NOT NULL,
                prazo TEXT NOT NULL,
                dias_personalizados TEXT NOT NULL DEFAULT '',
                data_inicio TEXT NOT NULL DEFAULT '',
                orcamento TEXT NOT NULL,
                descricao_projeto TEXT NOT NULL,
                status TEXT NOT NULL DEFAULT 'pendente',
                observacoes TEXT NOT NULL DEFAULT '',
                created_at TIMESTAMP NOT NULL,
                updated_at TIMESTAMP NOT NULL
            );`,
            `CREATE INDEX IF NOT EXISTS idx_orcamentos_status ON orcamentos(status);`,
            `CREATE TABLE IF NOT EXISTS contatos (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                nome TEXT NOT NULL,
                email TEXT NOT NULL,
                telefone TEXT NOT NULL DEFAULT '',
                mensagem TEXT NOT NULL,
                lido BOOLEAN NOT NULL DEFAULT 0,
                respondido BOOLEAN NOT NULL DEFAULT 0,
                created_at TIMESTAMP NOT NULL
            );`,
            `CREATE TABLE IF NOT EXISTS sessions (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                user_id INTEGER NOT NULL,
                session_id TEXT NOT NULL,
                token_hash TEXT NOT NULL,
                expires_at TIMESTAMP NOT NULL,
                revoked_at TIMESTAMP NULL,
                created_at TIMESTAMP NOT NULL,
                UNIQUE(session_id),
                UNIQUE(token_hash),
                FOREIGN KEY(user_id) REFERENCES users(id)
            );`,
            `CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);`,
            `CREATE INDEX IF NOT EXISTS idx_sessions_token_hash ON sessions(token_hash);`,
        }
    }

    for _, s := range stmts {
        if _, err := sqldb.ExecContext(ctx, s); err != nil {
            return err
        }
    }
    return nil
}
