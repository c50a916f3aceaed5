// Caminho: internal/services/email/notifier.go
// Resumo: Notificações de orçamento por e-mail: aviso para a equipe e confirmação para o
// cliente (despachados em paralelo), além da resposta manual enviada pelo painel.

package emailsvc

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "sync"
    "time"

    "github.com/sitelogic/site_api/internal/contants"
)

// NovoOrcamentoData carrega os dados do orçamento recém-criado usados nos e-mails.
type NovoOrcamentoData struct {
    Nome               string
    Email              string
    Telefone           string
    Empresa            string
    TipoServico        string
    Prazo              string
    DiasPersonalizados string
    DataInicio         string
    Orcamento          string
    DescricaoProjeto   string
}

// Notifier compõe e envia as notificações de orçamento sobre um Service SMTP.
type Notifier struct {
    svc       *Service
    teamInbox string
    adminURL  string
}

// NewNotifier cria um Notifier. teamInbox é a caixa interna que recebe novos orçamentos;
// publicBaseURL (opcional) compõe o link para o painel admin nos e-mails internos.
func NewNotifier(svc *Service, teamInbox, publicBaseURL string) *Notifier {
    adminURL := ""
    if base := strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"); base != "" {
        adminURL = base + "/admin/orcamentos"
    }
    return &Notifier{svc: svc, teamInbox: teamInbox, adminURL: adminURL}
}

// EnviarNovoOrcamento envia o aviso interno e a confirmação ao cliente, em paralelo.
// Não há garantia de ordem entre os dois envios; o erro retornado agrega as falhas.
func (n *Notifier) EnviarNovoOrcamento(ctx context.Context, d NovoOrcamentoData) error {
    prazoTexto := FormatarPrazo(d.Prazo, d.DiasPersonalizados, d.DataInicio)
    base := map[string]any{
        "Nome":        d.Nome,
        "Email":       d.Email,
        "Telefone":    d.Telefone,
        "Empresa":     d.Empresa,
        "TipoServico": FormatarTipoServico(d.TipoServico),
        "Orcamento":   FormatarOrcamento(d.Orcamento),
        "Prazo":       prazoTexto,
        "Descricao":   d.DescricaoProjeto,
        "AdminURL":    n.adminURL,
    }

    msgs := []Params{
        {
            To:           []string{n.teamInbox},
            Subject:      fmt.Sprintf("%s - %s", contants.EmailSubjectNovoOrcamento, d.Nome),
            TemplateName: contants.TemplateNovoOrcamento,
            Data:         base,
        },
        {
            To:           []string{d.Email},
            Subject:      contants.EmailSubjectOrcamentoRecebido,
            TemplateName: contants.TemplateOrcamentoRecebido,
            Data:         base,
        },
    }

    var wg sync.WaitGroup
    errs := make([]error, len(msgs))
    for i, p := range msgs {
        wg.Add(1)
        go func(i int, p Params) {
            defer wg.Done()
            errs[i] = n.svc.Send(ctx, p)
        }(i, p)
    }
    wg.Wait()
    return errors.Join(errs...)
}

// EnviarResposta envia a resposta composta pelo admin ao e-mail do solicitante.
func (n *Notifier) EnviarResposta(ctx context.Context, to, assunto, mensagem, valorOrcamento, prazoEntrega string) error {
    data := map[string]any{
        "Mensagem":       mensagem,
        "ValorOrcamento": valorOrcamento,
        "PrazoEntrega":   prazoEntrega,
        "Ano":            time.Now().Year(),
    }
    return n.svc.Send(ctx, Params{
        To:           []string{to},
        Subject:      assunto,
        TemplateName: contants.TemplateRespostaOrcamento,
        Data:         data,
    })
}

// FormatarTipoServico traduz o valor do formulário para o rótulo exibido nos e-mails.
func FormatarTipoServico(tipo string) string {
    tipos := map[string]string{
        "desenvolvimento-sites": "Desenvolvimento de Sites",
        "desenvolvimento-app":   "Desenvolvimento de Aplicativos",
        "loja-virtual":          "Loja Virtual (E-commerce)",
        "design":                "Design e Identidade Visual",
        "consultoria":           "Consultoria em Tecnologia",
        "manutencao":            "Manutenção e Suporte",
        "outros":                "Outros",
    }
    if v, ok := tipos[tipo]; ok {
        return v
    }
    return tipo
}

// FormatarOrcamento traduz a faixa de orçamento para o rótulo exibido nos e-mails.
func FormatarOrcamento(orcamento string) string {
    faixas := map[string]string{
        "ate-5k":     "Até R$ 5.000",
        "5k-15k":     "R$ 5.000 - R$ 15.000",
        "15k-50k":    "R$ 15.000 - R$ 50.000",
        "50k-100k":   "R$ 50.000 - R$ 100.000",
        "acima-100k": "Acima de R$ 100.000",
        "conversar":  "Prefiro conversar",
    }
    if v, ok := faixas[orcamento]; ok {
        return v
    }
    return orcamento
}

// FormatarPrazo traduz o prazo, tratando o caso personalizado (dias e/ou data de início).
func FormatarPrazo(prazo, diasPersonalizados, dataInicio string) string {
    prazos := map[string]string{
        "urgente":   "Urgente (até 2 semanas)",
        "1-mes":     "1 mês",
        "2-3-meses": "2-3 meses",
        "3-6-meses": "3-6 meses",
        "flexivel":  "Flexível",
    }
    if prazo == "personalizado" {
        texto := "Personalizado: "
        if diasPersonalizados != "" {
            texto += diasPersonalizados + " dias"
        }
        if dataInicio != "" {
            if diasPersonalizados != "" {
                texto += ", "
            }
            texto += "início em " + formatarData(dataInicio)
        }
        return texto
    }
    if v, ok := prazos[prazo]; ok {
        return v
    }
    return prazo
}

// formatarData converte uma data ISO (AAAA-MM-DD) para o formato brasileiro.
func formatarData(iso string) string {
    if t, err := time.Parse("2006-01-02", strings.TrimSpace(iso)); err == nil {
        return t.Format("02/01/2006")
    }
    return iso
}
