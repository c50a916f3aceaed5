// Caminho: internal/services/users/service.go
// Resumo: CRUD de usuários do painel administrativo. Remoção é lógica
// (ativo=false) para preservar histórico; listagens só retornam ativos.

package userssvc

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "log"
    "strings"
    "time"

    "golang.org/x/crypto/bcrypt"

    "github.com/sitelogic/site_api/internal/contants"
    "github.com/sitelogic/site_api/internal/db"
    "github.com/sitelogic/site_api/internal/domain"
    "github.com/sitelogic/site_api/internal/identity"
)

type Service struct {
    DB       *sql.DB
    Identity identity.Provider
}

func New(sqldb *sql.DB, provider identity.Provider) *Service {
    if provider == nil {
        provider = identity.NewLocal()
    }
    return &Service{DB: sqldb, Identity: provider}
}

// CreateInput carrega os campos aceitos na criação de um usuário.
type CreateInput struct {
    Email    string `json:"email"`
    Password string `json:"password"`
    Nome     string `json:"nome"`
    Role     string `json:"role"`
}

// UpdateInput usa ponteiros para distinguir "ausente" de "vazio" em updates parciais.
type UpdateInput struct {
    Email    *string `json:"email"`
    Password *string `json:"password"`
    Nome     *string `json:"nome"`
    Role     *string `json:"role"`
    Ativo    *bool   `json:"ativo"`
}

// Create valida, provisiona a identidade externa e insere o usuário.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.PublicUser, error) {
    in.Email = strings.ToLower(strings.TrimSpace(in.Email))
    if in.Email == "" || !strings.Contains(in.Email, "@") {
        return domain.PublicUser{}, domain.NewValidationError("email inválido")
    }
    if len(in.Password) < contants.MinPasswordLength {
        return domain.PublicUser{}, domain.NewValidationError(fmt.Sprintf("senha deve ter no mínimo %d caracteres", contants.MinPasswordLength))
    }
    if strings.TrimSpace(in.Nome) == "" {
        return domain.PublicUser{}, domain.NewValidationError("nome é obrigatório")
    }
    if in.Role == "" {
        in.Role = domain.RoleUser
    }
    if !domain.IsValidRole(in.Role) {
        return domain.PublicUser{}, domain.NewValidationError("role inválida")
    }

    if exists, err := s.emailTaken(ctx, in.Email, 0); err != nil {
        return domain.PublicUser{}, err
    } else if exists {
        return domain.PublicUser{}, domain.ErrConflict
    }

    uid, err := s.Identity.ProvisionUID(ctx, in.Email, in.Nome)
    if err != nil {
        // Falha do provedor externo não bloqueia a criação: cai para o UID local.
        log.Printf("[WARN] provisionamento de identidade para %s falhou: %v", in.Email, err)
        uid, _ = identity.NewLocal().ProvisionUID(ctx, in.Email, in.Nome)
    }
    hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
    if err != nil {
        return domain.PublicUser{}, fmt.Errorf("hash password: %w", err)
    }

    now := time.Now().UTC()
    u := domain.User{Email: in.Email, Nome: in.Nome, Role: in.Role, UID: uid, Ativo: true, CreatedAt: now, UpdatedAt: now}
    if db.IsPostgres() {
        q := db.Rebind(`INSERT INTO users (email, nome, password_hash, role, uid, ativo, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?) RETURNING id`)
        if err := s.DB.QueryRowContext(ctx, q, u.Email, u.Nome, string(hash), u.Role, u.UID, true, now, now).Scan(&u.ID); err != nil {
            return domain.PublicUser{}, err
        }
    } else {
        res, err := s.DB.ExecContext(ctx, db.Rebind(`INSERT INTO users (email, nome, password_hash, role, uid, ativo, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?)`), u.Email, u.Nome, string(hash), u.Role, u.UID, true, now, now)
        if err != nil {
            return domain.PublicUser{}, err
        }
        u.ID, _ = res.LastInsertId()
    }
    return u.Public(), nil
}

// FindAll lista usuários ativos, mais recentes primeiro.
func (s *Service) FindAll(ctx context.Context) ([]domain.PublicUser, error) {
    q := db.Rebind(`SELECT id, email, nome, role, ativo, created_at FROM users WHERE ativo = ? ORDER BY created_at DESC, id DESC`)
    rows, err := s.DB.QueryContext(ctx, q, true)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := []domain.PublicUser{}
    for rows.Next() {
        var u domain.User
        if err := rows.Scan(&u.ID, &u.Email, &u.Nome, &u.Role, &u.Ativo, &u.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, u.Public())
    }
    return out, rows.Err()
}

// FindOne retorna um usuário ativo pelo ID.
func (s *Service) FindOne(ctx context.Context, id int64) (domain.PublicUser, error) {
    var u domain.User
    q := db.Rebind(`SELECT id, email, nome, role, ativo, created_at FROM users WHERE id = ? AND ativo = ? LIMIT 1`)
    row := s.DB.QueryRowContext(ctx, q, id, true)
    if err := row.Scan(&u.ID, &u.Email, &u.Nome, &u.Role, &u.Ativo, &u.CreatedAt); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return domain.PublicUser{}, domain.ErrNotFound
        }
        return domain.PublicUser{}, err
    }
    return u.Public(), nil
}

// Update aplica um update parcial; password é re-hasheada quando presente.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (domain.PublicUser, error) {
    if _, err := s.FindOne(ctx, id); err != nil {
        return domain.PublicUser{}, err
    }

    sets := []string{}
    args := []any{}
    if in.Email != nil {
        email := strings.ToLower(strings.TrimSpace(*in.Email))
        if email == "" || !strings.Contains(email, "@") {
            return domain.PublicUser{}, domain.NewValidationError("email inválido")
        }
        if taken, err := s.emailTaken(ctx, email, id); err != nil {
            return domain.PublicUser{}, err
        } else if taken {
            return domain.PublicUser{}, domain.ErrConflict
        }
        sets = append(sets, "email = ?")
        args = append(args, email)
    }
    if in.Password != nil {
        if len(*in.Password) < contants.MinPasswordLength {
            return domain.PublicUser{}, domain.NewValidationError(fmt.Sprintf("senha deve ter no mínimo %d caracteres", contants.MinPasswordLength))
        }
        hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
        if err != nil {
            return domain.PublicUser{}, fmt.Errorf("hash password: %w", err)
        }
        sets = append(sets, "password_hash = ?")
        args = append(args, string(hash))
    }
    if in.Nome != nil {
        if strings.TrimSpace(*in.Nome) == "" {
            return domain.PublicUser{}, domain.NewValidationError("nome é obrigatório")
        }
        sets = append(sets, "nome = ?")
        args = append(args, *in.Nome)
    }
    if in.Role != nil {
        if !domain.IsValidRole(*in.Role) {
            return domain.PublicUser{}, domain.NewValidationError("role inválida")
        }
        sets = append(sets, "role = ?")
        args = append(args, *in.Role)
    }
    if in.Ativo != nil {
        sets = append(sets, "ativo = ?")
        args = append(args, *in.Ativo)
    }
    if len(sets) > 0 {
        sets = append(sets, "updated_at = ?")
        args = append(args, time.Now().UTC())
        args = append(args, id)
        q := db.Rebind(fmt.Sprintf(`UPDATE users SET %s WHERE id = ?`, strings.Join(sets, ", ")))
        if _, err := s.DB.ExecContext(ctx, q, args...); err != nil {
            return domain.PublicUser{}, err
        }
    }

    // Relê sem o filtro de ativo: um update pode ter desativado o usuário.
    var u domain.User
    row := s.DB.QueryRowContext(ctx, db.Rebind(`SELECT id, email, nome, role, ativo, created_at FROM users WHERE id = ? LIMIT 1`), id)
    if err := row.Scan(&u.ID, &u.Email, &u.Nome, &u.Role, &u.Ativo, &u.CreatedAt); err != nil {
        return domain.PublicUser{}, err
    }
    return u.Public(), nil
}

// Remove desativa o usuário e revoga suas sessões abertas.
func (s *Service) Remove(ctx context.Context, id int64) error {
    if _, err := s.FindOne(ctx, id); err != nil {
        return err
    }
    now := time.Now().UTC()
    if _, err := s.DB.ExecContext(ctx, db.Rebind(`UPDATE users SET ativo = ?, updated_at = ? WHERE id = ?`), false, now, id); err != nil {
        return err
    }
    _, err := s.DB.ExecContext(ctx, db.Rebind(`UPDATE sessions SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL`), now, id)
    return err
}

func (s *Service) emailTaken(ctx context.Context, email string, ignoreID int64) (bool, error) {
    var n int
    q := db.Rebind(`SELECT COUNT(1) FROM users WHERE email = ? AND id <> ?`)
    if err := s.DB.QueryRowContext(ctx, q, email, ignoreID).Scan(&n); err != nil {
        return false, err
    }
    return n > 0, nil
}
