// Caminho: internal/services/orcamentos/service.go
// Resumo: Serviço de orçamentos: recebe pedidos do formulário público, notifica por
// e-mail e expõe as operações do painel (listagem, status, resposta, estatísticas).
// A criação nunca falha por erro de e-mail; o envio é despachado fora do caminho
// da requisição quando há fila configurada.

package orcamentossvc

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "log"
    "strings"
    "time"

    "github.com/sitelogic/site_api/internal/db"
    "github.com/sitelogic/site_api/internal/domain"
    emailsvc "github.com/sitelogic/site_api/internal/services/email"
)

// Notificador abstrai os envios de e-mail do fluxo de orçamentos.
type Notificador interface {
    EnviarNovoOrcamento(ctx context.Context, d emailsvc.NovoOrcamentoData) error
    EnviarResposta(ctx context.Context, to, assunto, mensagem, valorOrcamento, prazoEntrega string) error
}

type Service struct {
    DB       *sql.DB
    Notifier Notificador
    Queue    *emailsvc.Dispatcher
}

// New cria o serviço. notifier e queue podem ser nil (e-mail desabilitado / envio síncrono).
func New(sqldb *sql.DB, notifier Notificador, queue *emailsvc.Dispatcher) *Service {
    return &Service{DB: sqldb, Notifier: notifier, Queue: queue}
}

// CreateInput espelha o payload do formulário público de orçamento.
type CreateInput struct {
    Nome               string `json:"nome"`
    Email              string `json:"email"`
    Telefone           string `json:"telefone"`
    Empresa            string `json:"empresa"`
    TipoServico        string `json:"tipoServico"`
    Prazo              string `json:"prazo"`
    DiasPersonalizados string `json:"diasPersonalizados"`
    DataInicio         string `json:"dataInicio"`
    Orcamento          string `json:"orcamento"`
    DescricaoProjeto   string `json:"descricaoProjeto"`
}

const orcamentoCols = `id, nome, email, telefone, empresa, tipo_servico, prazo, dias_personalizados, data_inicio, orcamento, descricao_projeto, status, observacoes, created_at, updated_at`

// Create registra o pedido com status pendente e dispara as notificações.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Orcamento, error) {
    in.Email = strings.ToLower(strings.TrimSpace(in.Email))
    for campo, valor := range map[string]string{
        "nome": in.Nome, "telefone": in.Telefone, "tipoServico": in.TipoServico,
        "prazo": in.Prazo, "orcamento": in.Orcamento, "descricaoProjeto": in.DescricaoProjeto,
    } {
        if strings.TrimSpace(valor) == "" {
            return domain.Orcamento{}, domain.NewValidationError(campo+" é obrigatório")
        }
    }
    if in.Email == "" || !strings.Contains(in.Email, "@") {
        return domain.Orcamento{}, domain.NewValidationError("email inválido")
    }

    now := time.Now().UTC()
    args := []any{in.Nome, in.Email, in.Telefone, in.Empresa, in.TipoServico, in.Prazo, in.DiasPersonalizados, in.DataInicio, in.Orcamento, in.DescricaoProjeto, domain.OrcamentoPendente, "", now, now}
    var id int64
    if db.IsPostgres() {
        q := db.Rebind(`INSERT INTO orcamentos (nome, email, telefone, empresa, tipo_servico, prazo, dias_personalizados, data_inicio, orcamento, descricao_projeto, status, observacoes, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?) RETURNING id`)
        if err := s.DB.QueryRowContext(ctx, q, args...).Scan(&id); err != nil {
            return domain.Orcamento{}, err
        }
    } else {
        res, err := s.DB.ExecContext(ctx, db.Rebind(`INSERT INTO orcamentos (nome, email, telefone, empresa, tipo_servico, prazo, dias_personalizados, data_inicio, orcamento, descricao_projeto, status, observacoes, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`), args...)
        if err != nil {
            return domain.Orcamento{}, err
        }
        id, _ = res.LastInsertId()
    }

    o, err := s.FindOne(ctx, id)
    if err != nil {
        return domain.Orcamento{}, err
    }
    s.notifyNovo(o)
    return o, nil
}

// notifyNovo despacha as notificações do orçamento recém-criado. Falha de e-mail
// nunca derruba a criação: sem fila, o envio roda síncrono e o erro só é logado.
func (s *Service) notifyNovo(o domain.Orcamento) {
    if s.Notifier == nil {
        return
    }
    data := emailsvc.NovoOrcamentoData{
        Nome:               o.Nome,
        Email:              o.Email,
        Telefone:           o.Telefone,
        Empresa:            o.Empresa,
        TipoServico:        o.TipoServico,
        Prazo:              o.Prazo,
        DiasPersonalizados: o.DiasPersonalizados,
        DataInicio:         o.DataInicio,
        Orcamento:          o.Orcamento,
        DescricaoProjeto:   o.DescricaoProjeto,
    }
    if s.Queue != nil {
        s.Queue.Enqueue(emailsvc.Job{
            Desc: fmt.Sprintf("novo orcamento #%d", o.ID),
            Send: func(ctx context.Context) error {
                return s.Notifier.EnviarNovoOrcamento(ctx, data)
            },
        })
        return
    }
    ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
    defer cancel()
    if err := s.Notifier.EnviarNovoOrcamento(ctx, data); err != nil {
        log.Printf("[WARN] email de novo orcamento #%d falhou: %v", o.ID, err)
    }
}

// FindAll lista orçamentos, opcionalmente filtrados por status, mais recentes primeiro.
func (s *Service) FindAll(ctx context.Context, status string) ([]domain.Orcamento, error) {
    q := `SELECT ` + orcamentoCols + ` FROM orcamentos`
    args := []any{}
    if status != "" {
        if !domain.IsValidOrcamentoStatus(status) {
            return nil, domain.NewValidationError("status inválido")
        }
        q += ` WHERE status = ?`
        args = append(args, status)
    }
    q += ` ORDER BY created_at DESC, id DESC`

    rows, err := s.DB.QueryContext(ctx, db.Rebind(q), args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := []domain.Orcamento{}
    for rows.Next() {
        var o domain.Orcamento
        if err := scanOrcamento(rows, &o); err != nil {
            return nil, err
        }
        out = append(out, o)
    }
    return out, rows.Err()
}

func (s *Service) FindOne(ctx context.Context, id int64) (domain.Orcamento, error) {
    var o domain.Orcamento
    row := s.DB.QueryRowContext(ctx, db.Rebind(`SELECT `+orcamentoCols+` FROM orcamentos WHERE id = ? LIMIT 1`), id)
    if err := scanOrcamento(row, &o); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return domain.Orcamento{}, domain.ErrNotFound
        }
        return domain.Orcamento{}, err
    }
    return o, nil
}

// UpdateStatus troca o status e, opcionalmente, as observações internas.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string, observacoes *string) (domain.Orcamento, error) {
    if !domain.IsValidOrcamentoStatus(status) {
        return domain.Orcamento{}, domain.NewValidationError("status inválido")
    }
    if _, err := s.FindOne(ctx, id); err != nil {
        return domain.Orcamento{}, err
    }
    now := time.Now().UTC()
    if observacoes != nil {
        q := db.Rebind(`UPDATE orcamentos SET status = ?, observacoes = ?, updated_at = ? WHERE id = ?`)
        if _, err := s.DB.ExecContext(ctx, q, status, *observacoes, now, id); err != nil {
            return domain.Orcamento{}, err
        }
    } else {
        q := db.Rebind(`UPDATE orcamentos SET status = ?, updated_at = ? WHERE id = ?`)
        if _, err := s.DB.ExecContext(ctx, q, status, now, id); err != nil {
            return domain.Orcamento{}, err
        }
    }
    return s.FindOne(ctx, id)
}

// EnviarResposta envia a resposta composta no painel ao solicitante e marca o
// orçamento como respondido. Aqui o envio é síncrono: o admin precisa saber na
// hora se o e-mail saiu.
func (s *Service) EnviarResposta(ctx context.Context, id int64, assunto, mensagem, valorOrcamento, prazoEntrega string) (domain.Orcamento, error) {
    if strings.TrimSpace(assunto) == "" {
        return domain.Orcamento{}, domain.NewValidationError("assunto é obrigatório")
    }
    if strings.TrimSpace(mensagem) == "" {
        return domain.Orcamento{}, domain.NewValidationError("mensagem é obrigatória")
    }
    o, err := s.FindOne(ctx, id)
    if err != nil {
        return domain.Orcamento{}, err
    }
    if s.Notifier == nil {
        // Sem SMTP configurado a resposta só é registrada no log.
        log.Printf("[WARN] SMTP desabilitado; resposta ao orcamento #%d para %s: %s", o.ID, o.Email, assunto)
    } else if err := s.Notifier.EnviarResposta(ctx, o.Email, assunto, mensagem, valorOrcamento, prazoEntrega); err != nil {
        return domain.Orcamento{}, fmt.Errorf("enviar resposta: %w", err)
    }
    return s.UpdateStatus(ctx, id, domain.OrcamentoRespondido, nil)
}

// Remove exclui o orçamento definitivamente.
func (s *Service) Remove(ctx context.Context, id int64) error {
    res, err := s.DB.ExecContext(ctx, db.Rebind(`DELETE FROM orcamentos WHERE id = ?`), id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return domain.ErrNotFound
    }
    return nil
}

// GetStats agrega os totais por status em uma única passada.
func (s *Service) GetStats(ctx context.Context) (domain.OrcamentoStats, error) {
    rows, err := s.DB.QueryContext(ctx, `SELECT status, COUNT(1) FROM orcamentos GROUP BY status`)
    if err != nil {
        return domain.OrcamentoStats{}, err
    }
    defer rows.Close()

    var st domain.OrcamentoStats
    for rows.Next() {
        var (
            status string
            n      int
        )
        if err := rows.Scan(&status, &n); err != nil {
            return domain.OrcamentoStats{}, err
        }
        st.Total += n
        switch status {
        case domain.OrcamentoPendente:
            st.Pendentes = n
        case domain.OrcamentoEmAnalise:
            st.EmAnalise = n
        case domain.OrcamentoRespondido:
            st.Respondidos = n
        case domain.OrcamentoFechado:
            st.Fechados = n
        }
    }
    return st, rows.Err()
}

type rowScanner interface {
    Scan(dest ...any) error
}

func scanOrcamento(row rowScanner, o *domain.Orcamento) error {
    return row.Scan(&o.ID, &o.Nome, &o.Email, &o.Telefone, &o.Empresa, &o.TipoServico, &o.Prazo, &o.DiasPersonalizados, &o.DataInicio, &o.Orcamento, &o.DescricaoProjeto, &o.Status, &o.Observacoes, &o.CreatedAt, &o.UpdatedAt)
}
