// Caminho: pkg/httpapi/orcamentos.go
// Resumo: Rotas de orçamentos: criação pública (com throttle por IP) e gestão
// autenticada no painel (listagem, status, resposta por e-mail, estatísticas).

package httpapi

import (
    "encoding/json"
    "net/http"
    "strings"

    orcamentossvc "github.com/sitelogic/site_api/internal/services/orcamentos"
)

func orcamentoRoutes(w http.ResponseWriter, r *http.Request, path string) {
    switch {
    case path == "/orcamentos" && r.Method == http.MethodPost:
        orcamentoCreateHandler(w, r)
        return

    case path == "/orcamentos" && r.Method == http.MethodGet:
        orcamentoListHandler(w, r)
        return

    case path == "/orcamentos/stats" && r.Method == http.MethodGet:
        orcamentoStatsHandler(w, r)
        return
    }

    rest := strings.TrimPrefix(path, "/orcamentos/")
    switch {
    case strings.HasSuffix(rest, "/status") && r.Method == http.MethodPatch:
        orcamentoUpdateStatusHandler(w, r, strings.TrimSuffix(rest, "/status"))
    case strings.HasSuffix(rest, "/send-email") && r.Method == http.MethodPost:
        orcamentoSendEmailHandler(w, r, strings.TrimSuffix(rest, "/send-email"))
    case !strings.Contains(rest, "/") && r.Method == http.MethodGet:
        orcamentoGetHandler(w, r, rest)
    case !strings.Contains(rest, "/") && r.Method == http.MethodDelete:
        orcamentoDeleteHandler(w, r, rest)
    default:
        methodNotAllowed(w)
    }
}

// orcamentoCreateHandler recebe o formulário público de orçamento.
func orcamentoCreateHandler(w http.ResponseWriter, r *http.Request) {
    if !allowPublicForm(w, r, "orcamento", "ORC") {
        return
    }
    var in orcamentossvc.CreateInput
    if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "ORC_400_002", "message": "JSON inválido"})
        return
    }
    o, err := orcamentos.Create(r.Context(), in)
    if err != nil {
        writeError(w, "ORC", err)
        return
    }
    logInfo("orcamento #%d criado por %s", o.ID, o.Email)
    writeJSON(w, http.StatusCreated, o)
}

func orcamentoListHandler(w http.ResponseWriter, r *http.Request) {
    if !requireAuth(w, r, "ORC") {
        return
    }
    list, err := orcamentos.FindAll(r.Context(), strings.TrimSpace(r.URL.Query().Get("status")))
    if err != nil {
        writeError(w, "ORC", err)
        return
    }
    writeJSON(w, http.StatusOK, list)
}

func orcamentoStatsHandler(w http.ResponseWriter, r *http.Request) {
    if !requireAuth(w, r, "ORC") {
        return
    }
    stats, err := orcamentos.GetStats(r.Context())
    if err != nil {
        writeError(w, "ORC", err)
        return
    }
    writeJSON(w, http.StatusOK, stats)
}

func orcamentoGetHandler(w http.ResponseWriter, r *http.Request, seg string) {
    if !requireAuth(w, r, "ORC") {
        return
    }
    id, ok := parseID(seg)
    if !ok {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "ORC_400_003", "message": "ID inválido"})
        return
    }
    o, err := orcamentos.FindOne(r.Context(), id)
    if err != nil {
        writeError(w, "ORC", err)
        return
    }
    writeJSON(w, http.StatusOK, o)
}

func orcamentoUpdateStatusHandler(w http.ResponseWriter, r *http.Request, seg string) {
    if !requireAuth(w, r, "ORC") {
        return
    }
    id, ok := parseID(seg)
    if !ok {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "ORC_400_003", "message": "ID inválido"})
        return
    }
    var req struct {
        Status      string  `json:"status"`
        Observacoes *string `json:"observacoes"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "ORC_400_002", "message": "JSON inválido"})
        return
    }
    o, err := orcamentos.UpdateStatus(r.Context(), id, req.Status, req.Observacoes)
    if err != nil {
        writeError(w, "ORC", err)
        return
    }
    writeJSON(w, http.StatusOK, o)
}

func orcamentoSendEmailHandler(w http.ResponseWriter, r *http.Request, seg string) {
    if !requireAuth(w, r, "ORC") {
        return
    }
    id, ok := parseID(seg)
    if !ok {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "ORC_400_003", "message": "ID inválido"})
        return
    }
    var req struct {
        Assunto        string `json:"assunto"`
        Mensagem       string `json:"mensagem"`
        ValorOrcamento string `json:"valorOrcamento"`
        PrazoEntrega   string `json:"prazoEntrega"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "ORC_400_002", "message": "JSON inválido"})
        return
    }
    o, err := orcamentos.EnviarResposta(r.Context(), id, req.Assunto, req.Mensagem, req.ValorOrcamento, req.PrazoEntrega)
    if err != nil {
        writeError(w, "ORC", err)
        return
    }
    logInfo("resposta do orcamento #%d enviada para %s", o.ID, o.Email)
    writeJSON(w, http.StatusOK, map[string]any{"success": true, "orcamento": o, "assunto": req.Assunto})
}

func orcamentoDeleteHandler(w http.ResponseWriter, r *http.Request, seg string) {
    if !requireAuth(w, r, "ORC") {
        return
    }
    id, ok := parseID(seg)
    if !ok {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "ORC_400_003", "message": "ID inválido"})
        return
    }
    if err := orcamentos.Remove(r.Context(), id); err != nil {
        writeError(w, "ORC", err)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
