// Caminho: pkg/httpapi/auth.go
// Resumo: Rotas de autenticação do painel: login (com rate limit e lockout),
// registro e validação de token.

package httpapi

import (
    "encoding/json"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/sitelogic/site_api/internal/contants"
    "github.com/sitelogic/site_api/internal/domain"
    "github.com/sitelogic/site_api/internal/kv"
)

func authRoutes(w http.ResponseWriter, r *http.Request, path string) {
    if r.Method != http.MethodPost {
        methodNotAllowed(w)
        return
    }
    switch path {
    case "/auth/login":
        authLoginHandler(w, r)
    case "/auth/register":
        authRegisterHandler(w, r)
    case "/auth/validate":
        authValidateHandler(w, r)
    default:
        writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "code": "HTTP_404", "message": "Rota não encontrada", "path": path})
    }
}

func authLoginHandler(w http.ResponseWriter, r *http.Request) {
    // Rate limit por IP + lockout por conta
    ip := clientIP(r)
    if ok, _, _ := rateAllow(r.Context(), "rl:login:ip:"+ip, int64(cfg.LoginIPLimit), time.Duration(cfg.LoginIPWindowMinutes)*time.Minute); !ok {
        writeJSON(w, http.StatusTooManyRequests, map[string]any{"success": false, "code": "AUTH_429_IP", "message": "Muitas tentativas. Tente mais tarde."})
        return
    }
    var req struct {
        Email    string `json:"email"`
        Password string `json:"password"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "AUTH_400_001", "message": "JSON inválido"})
        return
    }
    email := strings.ToLower(strings.TrimSpace(req.Email))
    if locked, _ := kv.IsLocked(r.Context(), "lock:login:user:"+email); locked {
        writeJSON(w, http.StatusTooManyRequests, map[string]any{"success": false, "code": "AUTH_429_LOCK", "message": "Conta temporariamente bloqueada."})
        return
    }
    token, user, err := auth.Login(r.Context(), email, req.Password)
    if err != nil {
        logWarn("login failed for '%s': %v", email, err)
        if ok, n, _ := kv.AllowRate(r.Context(), "rl:loginfail:user:"+email, int64(cfg.LoginFailLockThreshold), time.Duration(cfg.LoginFailLockTTLMinutes)*time.Minute); !ok || n >= int64(cfg.LoginFailLockThreshold) {
            _ = kv.SetLock(r.Context(), "lock:login:user:"+email, time.Duration(cfg.LoginFailLockTTLMinutes)*time.Minute)
        }
        writeError(w, "AUTH", err)
        return
    }
    logInfo("login success for '%s'", email)
    kv.Del(r.Context(), "rl:loginfail:user:"+email, "lock:login:user:"+email)
    writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

func authRegisterHandler(w http.ResponseWriter, r *http.Request) {
    var req struct {
        Email    string `json:"email"`
        Password string `json:"password"`
        Nome     string `json:"nome"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "AUTH_400_001", "message": "JSON inválido"})
        return
    }
    email := strings.ToLower(strings.TrimSpace(req.Email))
    if email == "" || !strings.Contains(email, "@") {
        writeError(w, "AUTH", domain.NewValidationError("email inválido"))
        return
    }
    if len(req.Password) < contants.MinPasswordLength {
        writeError(w, "AUTH", domain.NewValidationError("senha muito curta"))
        return
    }
    if strings.TrimSpace(req.Nome) == "" {
        writeError(w, "AUTH", domain.NewValidationError("nome é obrigatório"))
        return
    }
    token, user, err := auth.Register(r.Context(), email, req.Password, req.Nome)
    if err != nil {
        if errors.Is(err, domain.ErrConflict) {
            writeJSON(w, http.StatusConflict, map[string]any{"success": false, "code": "AUTH_409_001", "message": "E-mail já cadastrado"})
            return
        }
        writeError(w, "AUTH", err)
        return
    }
    logInfo("register success for '%s'", email)
    writeJSON(w, http.StatusCreated, map[string]any{"token": token, "user": user})
}

func authValidateHandler(w http.ResponseWriter, r *http.Request) {
    var req struct {
        Token string `json:"token"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Token) == "" {
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": "AUTH_400_002", "message": "token ausente"})
        return
    }
    valid, err := auth.Validate(r.Context(), req.Token)
    if err != nil {
        writeError(w, "AUTH", err)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"valid": valid})
}
