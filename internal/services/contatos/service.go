// Caminho: internal/services/contatos/service.go
// Resumo: Serviço de contatos do formulário público. O estado (novo/lido/respondido)
// é derivado dos booleanos lido e respondido; marcar como lido é idempotente.

package contatossvc

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/sitelogic/site_api/internal/db"
    "github.com/sitelogic/site_api/internal/domain"
)

type Service struct {
    DB *sql.DB
}

func New(sqldb *sql.DB) *Service {
    return &Service{DB: sqldb}
}

// CreateInput espelha o payload do formulário público de contato.
type CreateInput struct {
    Nome     string `json:"nome"`
    Email    string `json:"email"`
    Telefone string `json:"telefone"`
    Mensagem string `json:"mensagem"`
}

const contatoCols = `id, nome, email, telefone, mensagem, lido, respondido, created_at`

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Contato, error) {
    in.Email = strings.ToLower(strings.TrimSpace(in.Email))
    if strings.TrimSpace(in.Nome) == "" {
        return domain.Contato{}, domain.NewValidationError("nome é obrigatório")
    }
    if in.Email == "" || !strings.Contains(in.Email, "@") {
        return domain.Contato{}, domain.NewValidationError("email inválido")
    }
    if strings.TrimSpace(in.Mensagem) == "" {
        return domain.Contato{}, domain.NewValidationError("mensagem é obrigatória")
    }

    now := time.Now().UTC()
    var id int64
    if db.IsPostgres() {
        q := db.Rebind(`INSERT INTO contatos (nome, email, telefone, mensagem, lido, respondido, created_at) VALUES (?,?,?,?,?,?,?) RETURNING id`)
        if err := s.DB.QueryRowContext(ctx, q, in.Nome, in.Email, in.Telefone, in.Mensagem, false, false, now).Scan(&id); err != nil {
            return domain.Contato{}, err
        }
    } else {
        res, err := s.DB.ExecContext(ctx, db.Rebind(`INSERT INTO contatos (nome, email, telefone, mensagem, lido, respondido, created_at) VALUES (?,?,?,?,?,?,?)`), in.Nome, in.Email, in.Telefone, in.Mensagem, false, false, now)
        if err != nil {
            return domain.Contato{}, err
        }
        id, _ = res.LastInsertId()
    }
    return s.FindOne(ctx, id)
}

// FindAll lista contatos, mais recentes primeiro, opcionalmente filtrados pelo
// estado derivado (novo, lido ou respondido).
func (s *Service) FindAll(ctx context.Context, status string) ([]domain.Contato, error) {
    q := `SELECT ` + contatoCols + ` FROM contatos`
    args := []any{}
    switch status {
    case "":
        // sem filtro
    case domain.ContatoNovo:
        q += ` WHERE lido = ? AND respondido = ?`
        args = append(args, false, false)
    case domain.ContatoLido:
        q += ` WHERE lido = ? AND respondido = ?`
        args = append(args, true, false)
    case domain.ContatoRespondido:
        q += ` WHERE respondido = ?`
        args = append(args, true)
    default:
        return nil, domain.NewValidationError("status inválido")
    }
    q += ` ORDER BY created_at DESC, id DESC`

    rows, err := s.DB.QueryContext(ctx, db.Rebind(q), args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := []domain.Contato{}
    for rows.Next() {
        var c domain.Contato
        if err := rows.Scan(&c.ID, &c.Nome, &c.Email, &c.Telefone, &c.Mensagem, &c.Lido, &c.Respondido, &c.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, c)
    }
    return out, rows.Err()
}

func (s *Service) FindOne(ctx context.Context, id int64) (domain.Contato, error) {
    var c domain.Contato
    row := s.DB.QueryRowContext(ctx, db.Rebind(`SELECT `+contatoCols+` FROM contatos WHERE id = ? LIMIT 1`), id)
    if err := row.Scan(&c.ID, &c.Nome, &c.Email, &c.Telefone, &c.Mensagem, &c.Lido, &c.Respondido, &c.CreatedAt); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return domain.Contato{}, domain.ErrNotFound
        }
        return domain.Contato{}, err
    }
    return c, nil
}

// MarkAsRead marca o contato como lido. Chamar de novo não tem efeito.
func (s *Service) MarkAsRead(ctx context.Context, id int64) (domain.Contato, error) {
    if _, err := s.FindOne(ctx, id); err != nil {
        return domain.Contato{}, err
    }
    if _, err := s.DB.ExecContext(ctx, db.Rebind(`UPDATE contatos SET lido = ? WHERE id = ?`), true, id); err != nil {
        return domain.Contato{}, err
    }
    return s.FindOne(ctx, id)
}

// MarkAsResponded marca como respondido; respondido implica lido.
func (s *Service) MarkAsResponded(ctx context.Context, id int64) (domain.Contato, error) {
    if _, err := s.FindOne(ctx, id); err != nil {
        return domain.Contato{}, err
    }
    if _, err := s.DB.ExecContext(ctx, db.Rebind(`UPDATE contatos SET lido = ?, respondido = ? WHERE id = ?`), true, true, id); err != nil {
        return domain.Contato{}, err
    }
    return s.FindOne(ctx, id)
}

// Remove exclui o contato definitivamente.
func (s *Service) Remove(ctx context.Context, id int64) error {
    res, err := s.DB.ExecContext(ctx, db.Rebind(`DELETE FROM contatos WHERE id = ?`), id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return domain.ErrNotFound
    }
    return nil
}

// GetStats agrega os totais por estado derivado.
func (s *Service) GetStats(ctx context.Context) (domain.ContatoStats, error) {
    rows, err := s.DB.QueryContext(ctx, `SELECT lido, respondido, COUNT(1) FROM contatos GROUP BY lido, respondido`)
    if err != nil {
        return domain.ContatoStats{}, err
    }
    defer rows.Close()

    var st domain.ContatoStats
    for rows.Next() {
        var (
            lido, respondido bool
            n                int
        )
        if err := rows.Scan(&lido, &respondido, &n); err != nil {
            return domain.ContatoStats{}, err
        }
        st.Total += n
        switch {
        case respondido:
            st.Respondidos += n
        case lido:
            st.Lidos += n
        default:
            st.Novos += n
        }
    }
    return st, rows.Err()
}
