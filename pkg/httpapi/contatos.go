// Caminho: pkg/httpapi/contatos.go
// Resumo: Rotas de contatos: criação pública (com throttle por IP) e gestão
// autenticada (listagem, marcação lido/respondido, estatísticas).

package httpapi

import (
    "encoding/json"
    "net/http"
    "strings"

    "github.com/sitelogic/site_api/internal/domain"
    contatossvc "github.com/sitelogic/site_api/internal/services/contatos"
)

func contatoRoutes(w http.ResponseWriter, r *http.Request, path string) {
    switch {
    case path == "/contatos" && r.Method == http.MethodPost:
        contatoCreateHandler(w, r)
        return

    case path == "/contatos" && r.Method == http.MethodGet:
        contatoListHandler(w, r)
        return

    case path == "/contatos/stats" && r.Method == http.MethodGet:
        contatoStatsHandler(w, r)
        return
    }

    rest := strings.TrimPrefix(path, "/contatos/")
    switch {
    case strings.HasSuffix(rest, "/read") && r.Method == http.MethodPatch:
        contatoMarkHandler(w, r, strings.TrimSuffix(rest, "/read"), false)
    case strings.HasSuffix(rest, "/responded") && r.Method == http.MethodPatch:
        contatoMarkHandler(w, r, strings.TrimSuffix(rest, "/responded"), true)
    case !strings.Contains(rest, "/") && r.Method == http.MethodGet:
        contatoGetHandler(w, r, rest)
    case !strings.Contains(rest, "/") && r.Method == http.MethodDelete:
        contatoDeleteHandler(w, r, rest)
    default:
        methodNotAllowed(w)
    }
}

// contatoCreateHandler recebe o formulário público de contato.
func contatoCreateHandler(w http.ResponseWriter, r *http.Request) {
    if !allowPublicForm(w, r, "contato", "CONT") {
        return
    }
    var in contatossvc.CreateInput
    if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "CONT_400_002", "message": "JSON inválido"})
        return
    }
    c, err := contatos.Create(r.Context(), in)
    if err != nil {
        writeError(w, "CONT", err)
        return
    }
    logInfo("contato #%d criado por %s", c.ID, c.Email)
    writeJSON(w, http.StatusCreated, contatoPayload(c))
}

func contatoListHandler(w http.ResponseWriter, r *http.Request) {
    if !requireAuth(w, r, "CONT") {
        return
    }
    list, err := contatos.FindAll(r.Context(), strings.TrimSpace(r.URL.Query().Get("status")))
    if err != nil {
        writeError(w, "CONT", err)
        return
    }
    out := make([]map[string]any, 0, len(list))
    for _, c := range list {
        out = append(out, contatoPayload(c))
    }
    writeJSON(w, http.StatusOK, out)
}

func contatoStatsHandler(w http.ResponseWriter, r *http.Request) {
    if !requireAuth(w, r, "CONT") {
        return
    }
    stats, err := contatos.GetStats(r.Context())
    if err != nil {
        writeError(w, "CONT", err)
        return
    }
    writeJSON(w, http.StatusOK, stats)
}

func contatoGetHandler(w http.ResponseWriter, r *http.Request, seg string) {
    if !requireAuth(w, r, "CONT") {
        return
    }
    id, ok := parseID(seg)
    if !ok {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "CONT_400_003", "message": "ID inválido"})
        return
    }
    c, err := contatos.FindOne(r.Context(), id)
    if err != nil {
        writeError(w, "CONT", err)
        return
    }
    writeJSON(w, http.StatusOK, contatoPayload(c))
}

func contatoMarkHandler(w http.ResponseWriter, r *http.Request, seg string, responded bool) {
    if !requireAuth(w, r, "CONT") {
        return
    }
    id, ok := parseID(seg)
    if !ok {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "CONT_400_003", "message": "ID inválido"})
        return
    }
    var (
        c   domain.Contato
        err error
    )
    if responded {
        c, err = contatos.MarkAsResponded(r.Context(), id)
    } else {
        c, err = contatos.MarkAsRead(r.Context(), id)
    }
    if err != nil {
        writeError(w, "CONT", err)
        return
    }
    writeJSON(w, http.StatusOK, contatoPayload(c))
}

func contatoDeleteHandler(w http.ResponseWriter, r *http.Request, seg string) {
    if !requireAuth(w, r, "CONT") {
        return
    }
    id, ok := parseID(seg)
    if !ok {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "CONT_400_003", "message": "ID inválido"})
        return
    }
    if err := contatos.Remove(r.Context(), id); err != nil {
        writeError(w, "CONT", err)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// contatoPayload anexa o estado derivado ao JSON do contato.
func contatoPayload(c domain.Contato) map[string]any {
    return map[string]any{
        "id":         c.ID,
        "nome":       c.Nome,
        "email":      c.Email,
        "telefone":   c.Telefone,
        "mensagem":   c.Mensagem,
        "lido":       c.Lido,
        "respondido": c.Respondido,
        "status":     c.Status(),
        "createdAt":  c.CreatedAt,
    }
}
