// Caminho: internal/contants/contants.go
// Resumo: Constantes globais do sistema.

package contants

// Tamanho mínimo aceito para senhas de usuários do painel.
const MinPasswordLength = 6

// Assunto do e-mail interno de novo orçamento (prefixado com o nome do cliente).
const EmailSubjectNovoOrcamento = "Novo Orçamento"

// Assunto do e-mail de confirmação enviado ao cliente.
const EmailSubjectOrcamentoRecebido = "Orçamento Recebido - Site Logic"

// Nomes dos templates de e-mail embutidos.
const (
    TemplateNovoOrcamento     = "novo_orcamento.html"
    TemplateOrcamentoRecebido = "orcamento_recebido.html"
    TemplateRespostaOrcamento = "resposta_orcamento.html"
)

// Tentativas máximas de envio de uma notificação de e-mail pela fila interna.
const EmailMaxAttempts = 3
