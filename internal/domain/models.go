// Caminho: internal/domain/models.go
// Resumo: Modelos de domínio do site (User, Project, Orcamento, Contato, Session)
// e erros centrais compartilhados pelos serviços.

package domain

import (
    "errors"
    "time"
)

// User representa um usuário do painel administrativo.
type User struct {
    ID           int64     `json:"id"`
    Email        string    `json:"email"`
    Nome         string    `json:"nome"`
    PasswordHash string    `json:"-"`
    Role         string    `json:"role"`
    UID          string    `json:"-"`
    Ativo        bool      `json:"ativo"`
    CreatedAt    time.Time `json:"createdAt"`
    UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser é a projeção de User retornada pela API (nunca inclui a senha).
type PublicUser struct {
    ID        int64     `json:"id"`
    Email     string    `json:"email"`
    Nome      string    `json:"nome"`
    Role      string    `json:"role"`
    CreatedAt time.Time `json:"createdAt"`
}

// Public devolve a projeção segura do usuário.
func (u User) Public() PublicUser {
    return PublicUser{ID: u.ID, Email: u.Email, Nome: u.Nome, Role: u.Role, CreatedAt: u.CreatedAt}
}

// Papéis de usuário aceitos.
const (
    RoleUser       = "user"
    RoleAdmin      = "admin"
    RoleSuperAdmin = "super_admin"
)

// IsValidRole informa se o papel é um dos aceitos.
func IsValidRole(role string) bool {
    switch role {
    case RoleUser, RoleAdmin, RoleSuperAdmin:
        return true
    }
    return false
}

// Project representa um projeto do portfólio.
type Project struct {
    ID          int64     `json:"id"`
    Titulo      string    `json:"titulo"`
    Descricao   string    `json:"descricao"`
    Categoria   string    `json:"categoria"`
    Tipo        string    `json:"tipo"`
    Plataforma  string    `json:"plataforma"`
    Imagem      string    `json:"imagem,omitempty"`
    Tecnologias []string  `json:"tecnologias"`
    Link        string    `json:"link,omitempty"`
    TipoLink    string    `json:"tipoLink,omitempty"`
    Repositorio string    `json:"repositorio,omitempty"`
    Destaque    bool      `json:"destaque"`
    Ativo       bool      `json:"ativo"`
    Ordem       int       `json:"ordem"`
    CreatedAt   time.Time `json:"createdAt"`
    UpdatedAt   time.Time `json:"updatedAt"`
}

// Orcamento representa uma solicitação de orçamento enviada pelo site público.
type Orcamento struct {
    ID                 int64     `json:"id"`
    Nome               string    `json:"nome"`
    Email              string    `json:"email"`
    Telefone           string    `json:"telefone"`
    Empresa            string    `json:"empresa,omitempty"`
    TipoServico        string    `json:"tipoServico"`
    Prazo              string    `json:"prazo"`
    DiasPersonalizados string    `json:"diasPersonalizados,omitempty"`
    DataInicio         string    `json:"dataInicio,omitempty"`
    Orcamento          string    `json:"orcamento"`
    DescricaoProjeto   string    `json:"descricaoProjeto"`
    Status             string    `json:"status"`
    Observacoes        string    `json:"observacoes,omitempty"`
    CreatedAt          time.Time `json:"createdAt"`
    UpdatedAt          time.Time `json:"updatedAt"`
}

// Status possíveis de um orçamento. A transição é livre: o admin pode definir
// qualquer status a qualquer momento.
const (
    OrcamentoPendente   = "pendente"
    OrcamentoEmAnalise  = "em_analise"
    OrcamentoRespondido = "respondido"
    OrcamentoFechado    = "fechado"
)

// IsValidOrcamentoStatus informa se o status pertence ao conjunto aceito.
func IsValidOrcamentoStatus(status string) bool {
    switch status {
    case OrcamentoPendente, OrcamentoEmAnalise, OrcamentoRespondido, OrcamentoFechado:
        return true
    }
    return false
}

// OrcamentoStats agrega contagens de orçamentos por status.
type OrcamentoStats struct {
    Total       int `json:"total"`
    Pendentes   int `json:"pendentes"`
    EmAnalise   int `json:"emAnalise"`
    Respondidos int `json:"respondidos"`
    Fechados    int `json:"fechados"`
}

// Contato representa uma mensagem enviada pelo formulário de contato.
type Contato struct {
    ID         int64     `json:"id"`
    Nome       string    `json:"nome"`
    Email      string    `json:"email"`
    Telefone   string    `json:"telefone,omitempty"`
    Mensagem   string    `json:"mensagem"`
    Lido       bool      `json:"lido"`
    Respondido bool      `json:"respondido"`
    CreatedAt  time.Time `json:"createdAt"`
}

// Status deriva o estado do contato a partir dos booleanos lido/respondido.
func (c Contato) Status() string {
    switch {
    case c.Respondido:
        return ContatoRespondido
    case c.Lido:
        return ContatoLido
    default:
        return ContatoNovo
    }
}

// Estados derivados de um contato.
const (
    ContatoNovo       = "novo"
    ContatoLido       = "lido"
    ContatoRespondido = "respondido"
)

// ContatoStats agrega contagens de contatos por estado derivado.
type ContatoStats struct {
    Total       int `json:"total"`
    Novos       int `json:"novos"`
    Lidos       int `json:"lidos"`
    Respondidos int `json:"respondidos"`
}

// Session representa uma sessão emitida no login; o token de acesso é um JWT
// cujo hash é persistido para permitir validação e revogação server-side.
type Session struct {
    ID        int64
    UserID    int64
    SessionID string
    TokenHash string
    ExpiresAt time.Time
    RevokedAt *time.Time
    CreatedAt time.Time
}

// Erros comuns de domínio.
var (
    ErrInvalidCredentials = errors.New("email ou senha incorretos")
    ErrUnauthorized       = errors.New("não autorizado")
    ErrNotFound           = errors.New("não encontrado")
    ErrConflict           = errors.New("registro já existente")
)

// ValidationError indica um payload que falhou na validação de campos.
type ValidationError struct {
    Msg string
}

// Error retorna a mensagem de validação.
func (e *ValidationError) Error() string { return e.Msg }

// NewValidationError cria um erro de validação com a mensagem informada.
func NewValidationError(msg string) error { return &ValidationError{Msg: msg} }

// IsValidation informa se err é (ou embrulha) um erro de validação.
func IsValidation(err error) bool {
    var ve *ValidationError
    return errors.As(err, &ve)
}
