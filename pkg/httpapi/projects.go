// Caminho: pkg/httpapi/projects.go
// Resumo: Rotas do portfólio de projetos. Listagem é pública (apenas ativos);
// com token válido a listagem inclui inativos e as mutações são liberadas.

package httpapi

import (
    "encoding/json"
    "net/http"
    "strings"

    projectssvc "github.com/sitelogic/site_api/internal/services/projects"
)

func projectRoutes(w http.ResponseWriter, r *http.Request, path string) {
    switch {
    case path == "/projects" && r.Method == http.MethodGet:
        projectListHandler(w, r)
        return

    case path == "/projects" && r.Method == http.MethodPost:
        projectCreateHandler(w, r)
        return
    }

    seg := strings.TrimPrefix(path, "/projects/")
    if strings.Contains(seg, "/") {
        methodNotAllowed(w)
        return
    }
    switch r.Method {
    case http.MethodGet:
        projectGetHandler(w, r, seg)
    case http.MethodPatch:
        projectUpdateHandler(w, r, seg)
    case http.MethodDelete:
        projectDeleteHandler(w, r, seg)
    default:
        methodNotAllowed(w)
    }
}

func projectListHandler(w http.ResponseWriter, r *http.Request) {
    somenteAtivos := !isAuthenticated(r)
    list, err := projects.FindAll(r.Context(), somenteAtivos)
    if err != nil {
        writeError(w, "PROJ", err)
        return
    }
    writeJSON(w, http.StatusOK, list)
}

func projectCreateHandler(w http.ResponseWriter, r *http.Request) {
    if !requireAuth(w, r, "PROJ") {
        return
    }
    var in projectssvc.CreateInput
    if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "PROJ_400_002", "message": "JSON inválido"})
        return
    }
    p, err := projects.Create(r.Context(), in)
    if err != nil {
        writeError(w, "PROJ", err)
        return
    }
    logInfo("projeto #%d criado: %s", p.ID, p.Titulo)
    writeJSON(w, http.StatusCreated, p)
}

func projectGetHandler(w http.ResponseWriter, r *http.Request, seg string) {
    id, ok := parseID(seg)
    if !ok {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "PROJ_400_003", "message": "ID inválido"})
        return
    }
    p, err := projects.FindOne(r.Context(), id)
    if err != nil {
        writeError(w, "PROJ", err)
        return
    }
    writeJSON(w, http.StatusOK, p)
}

func projectUpdateHandler(w http.ResponseWriter, r *http.Request, seg string) {
    if !requireAuth(w, r, "PROJ") {
        return
    }
    id, ok := parseID(seg)
    if !ok {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "PROJ_400_003", "message": "ID inválido"})
        return
    }
    var in projectssvc.UpdateInput
    if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "PROJ_400_002", "message": "JSON inválido"})
        return
    }
    p, err := projects.Update(r.Context(), id, in)
    if err != nil {
        writeError(w, "PROJ", err)
        return
    }
    writeJSON(w, http.StatusOK, p)
}

func projectDeleteHandler(w http.ResponseWriter, r *http.Request, seg string) {
    if !requireAuth(w, r, "PROJ") {
        return
    }
    id, ok := parseID(seg)
    if !ok {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "PROJ_400_003", "message": "ID inválido"})
        return
    }
    if err := projects.Remove(r.Context(), id); err != nil {
        writeError(w, "PROJ", err)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
