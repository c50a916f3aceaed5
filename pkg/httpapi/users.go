// Caminho: pkg/httpapi/users.go
// Resumo: Rotas de usuários do painel; todas exigem token válido.

package httpapi

import (
    "encoding/json"
    "net/http"
    "strings"

    userssvc "github.com/sitelogic/site_api/internal/services/users"
)

func userRoutes(w http.ResponseWriter, r *http.Request, path string) {
    if !requireAuth(w, r, "USER") {
        return
    }
    switch {
    case path == "/users" && r.Method == http.MethodGet:
        userListHandler(w, r)
        return

    case path == "/users" && r.Method == http.MethodPost:
        userCreateHandler(w, r)
        return
    }

    seg := strings.TrimPrefix(path, "/users/")
    if strings.Contains(seg, "/") {
        methodNotAllowed(w)
        return
    }
    switch r.Method {
    case http.MethodGet:
        userGetHandler(w, r, seg)
    case http.MethodPatch:
        userUpdateHandler(w, r, seg)
    case http.MethodDelete:
        userDeleteHandler(w, r, seg)
    default:
        methodNotAllowed(w)
    }
}

func userListHandler(w http.ResponseWriter, r *http.Request) {
    list, err := users.FindAll(r.Context())
    if err != nil {
        writeError(w, "USER", err)
        return
    }
    writeJSON(w, http.StatusOK, list)
}

func userCreateHandler(w http.ResponseWriter, r *http.Request) {
    var in userssvc.CreateInput
    if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "USER_400_002", "message": "JSON inválido"})
        return
    }
    u, err := users.Create(r.Context(), in)
    if err != nil {
        writeError(w, "USER", err)
        return
    }
    logInfo("usuario #%d criado: %s", u.ID, u.Email)
    writeJSON(w, http.StatusCreated, u)
}

func userGetHandler(w http.ResponseWriter, r *http.Request, seg string) {
    id, ok := parseID(seg)
    if !ok {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "USER_400_003", "message": "ID inválido"})
        return
    }
    u, err := users.FindOne(r.Context(), id)
    if err != nil {
        writeError(w, "USER", err)
        return
    }
    writeJSON(w, http.StatusOK, u)
}

func userUpdateHandler(w http.ResponseWriter, r *http.Request, seg string) {
    id, ok := parseID(seg)
    if !ok {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "USER_400_003", "message": "ID inválido"})
        return
    }
    var in userssvc.UpdateInput
    if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "USER_400_002", "message": "JSON inválido"})
        return
    }
    u, err := users.Update(r.Context(), id, in)
    if err != nil {
        writeError(w, "USER", err)
        return
    }
    writeJSON(w, http.StatusOK, u)
}

func userDeleteHandler(w http.ResponseWriter, r *http.Request, seg string) {
    id, ok := parseID(seg)
    if !ok {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "USER_400_003", "message": "ID inválido"})
        return
    }
    if err := users.Remove(r.Context(), id); err != nil {
        writeError(w, "USER", err)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
