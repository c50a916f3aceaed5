// Caminho: internal/services/auth/service.go
// Resumo: Serviço de autenticação do painel: login, registro e validação de token.
// Tokens são JWTs assinados (HS256) com sessão persistida por hash para permitir
// validação e revogação server-side.

package authsvc

import (
    "context"
    "crypto/sha256"
    "database/sql"
    "encoding/hex"
    "errors"
    "fmt"
    "strconv"
    "strings"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/google/uuid"
    "golang.org/x/crypto/bcrypt"

    "github.com/sitelogic/site_api/internal/db"
    "github.com/sitelogic/site_api/internal/domain"
)

// Service agrega dependências necessárias para autenticação.
type Service struct {
    DB        *sql.DB
    SecretKey string
    TokenTTL  time.Duration
}

// New cria uma instância do serviço de autenticação.
func New(sqldb *sql.DB, secret string, tokenTTL time.Duration) *Service {
    return &Service{DB: sqldb, SecretKey: secret, TokenTTL: tokenTTL}
}

// Login autentica por email/password e emite um token de acesso.
// Retorna ErrInvalidCredentials tanto para email inexistente quanto senha errada.
func (s *Service) Login(ctx context.Context, email, password string) (string, domain.PublicUser, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    var u domain.User
    q := db.Rebind(`SELECT id, email, nome, password_hash, role, ativo, created_at FROM users WHERE email = ? LIMIT 1`)
    row := s.DB.QueryRowContext(ctx, q, email)
    if err := row.Scan(&u.ID, &u.Email, &u.Nome, &u.PasswordHash, &u.Role, &u.Ativo, &u.CreatedAt); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return "", domain.PublicUser{}, domain.ErrInvalidCredentials
        }
        return "", domain.PublicUser{}, err
    }
    if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
        return "", domain.PublicUser{}, domain.ErrInvalidCredentials
    }
    if !u.Ativo {
        return "", domain.PublicUser{}, domain.ErrUnauthorized
    }

    token, err := s.issueToken(ctx, u)
    if err != nil {
        return "", domain.PublicUser{}, err
    }
    return token, u.Public(), nil
}

// Register cria um usuário com papel padrão "user" e já o autentica.
// Retorna ErrConflict se o email já existir.
func (s *Service) Register(ctx context.Context, email, password, nome string) (string, domain.PublicUser, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
    if err != nil {
        return "", domain.PublicUser{}, fmt.Errorf("hash password: %w", err)
    }
    now := time.Now().UTC()
    u := domain.User{Email: email, Nome: nome, Role: domain.RoleUser, Ativo: true, CreatedAt: now}

    if db.IsPostgres() {
        q := db.Rebind(`INSERT INTO users (email, nome, password_hash, role, ativo, created_at, updated_at) VALUES (?,?,?,?,?,?,?) RETURNING id`)
        if err := s.DB.QueryRowContext(ctx, q, email, nome, string(hash), u.Role, true, now, now).Scan(&u.ID); err != nil {
            return "", domain.PublicUser{}, domain.ErrConflict
        }
    } else {
        res, err := s.DB.ExecContext(ctx, db.Rebind(`INSERT INTO users (email, nome, password_hash, role, ativo, created_at, updated_at) VALUES (?,?,?,?,?,?,?)`), email, nome, string(hash), u.Role, true, now, now)
        if err != nil {
            return "", domain.PublicUser{}, domain.ErrConflict
        }
        u.ID, _ = res.LastInsertId()
    }

    token, err := s.issueToken(ctx, u)
    if err != nil {
        return "", domain.PublicUser{}, err
    }
    return token, u.Public(), nil
}

// Validate verifica assinatura, expiração e sessão ativa de um token.
// Um token meramente inválido não é erro: retorna (false, nil).
func (s *Service) Validate(ctx context.Context, token string) (bool, error) {
    id, _, err := s.Authenticate(ctx, token)
    if err != nil {
        if errors.Is(err, domain.ErrUnauthorized) {
            return false, nil
        }
        return false, err
    }
    return id > 0, nil
}

// Authenticate valida um token e retorna (userID, role).
// Retorna domain.ErrUnauthorized para qualquer token inválido, expirado ou revogado.
func (s *Service) Authenticate(ctx context.Context, token string) (int64, string, error) {
    token = strings.TrimSpace(token)
    if token == "" {
        return 0, "", domain.ErrUnauthorized
    }
    tok, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, errors.New("algoritmo inválido")
        }
        return []byte(s.SecretKey), nil
    })
    if err != nil || !tok.Valid {
        return 0, "", domain.ErrUnauthorized
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return 0, "", domain.ErrUnauthorized
    }
    sub, _ := claims["sub"].(string)
    role, _ := claims["rol"].(string)
    userID := parseSubject(sub)
    if userID <= 0 {
        return 0, "", domain.ErrUnauthorized
    }

    // Sessão server-side: o token precisa existir, não estar revogado nem expirado.
    hash := sha256.Sum256([]byte(token))
    var (
        expiresAt time.Time
        revokedAt sql.NullTime
        ativo     bool
    )
    q := db.Rebind(`SELECT s.expires_at, s.revoked_at, u.ativo
        FROM sessions s
        JOIN users u ON u.id = s.user_id
        WHERE s.token_hash = ? LIMIT 1`)
    row := s.DB.QueryRowContext(ctx, q, hex.EncodeToString(hash[:]))
    if err := row.Scan(&expiresAt, &revokedAt, &ativo); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return 0, "", domain.ErrUnauthorized
        }
        return 0, "", err
    }
    if revokedAt.Valid || time.Now().After(expiresAt) || !ativo {
        return 0, "", domain.ErrUnauthorized
    }
    return userID, role, nil
}

// issueToken assina o JWT com claims mínimas e persiste a sessão correspondente.
func (s *Service) issueToken(ctx context.Context, u domain.User) (string, error) {
    sessionID := uuid.NewString()
    now := time.Now().UTC()
    expires := now.Add(s.TokenTTL)
    claims := jwt.MapClaims{
        "sub": fmt.Sprintf("user|%d", u.ID),
        "sid": sessionID,
        "rol": u.Role,
        "iat": now.Unix(),
        "exp": expires.Unix(),
    }
    token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.SecretKey))
    if err != nil {
        return "", fmt.Errorf("sign token: %w", err)
    }
    hash := sha256.Sum256([]byte(token))
    ins := db.Rebind(`INSERT INTO sessions (user_id, session_id, token_hash, expires_at, created_at) VALUES (?,?,?,?,?)`)
    if _, err := s.DB.ExecContext(ctx, ins, u.ID, sessionID, hex.EncodeToString(hash[:]), expires, now); err != nil {
        return "", fmt.Errorf("insert session: %w", err)
    }
    return token, nil
}

// parseSubject extrai o ID numérico de um subject no formato "user|<id>".
func parseSubject(sub string) int64 {
    if !strings.HasPrefix(sub, "user|") {
        return 0
    }
    parts := strings.SplitN(sub, "|", 2)
    if len(parts) != 2 {
        return 0
    }
    n, err := strconv.ParseInt(parts[1], 10, 64)
    if err != nil {
        return 0
    }
    return n
}
