// Caminho: pkg/httpapi/httpapi.go
// Resumo: Ponto de entrada HTTP compartilhado entre Vercel e servidor local: roteamento
// por caminho/método, CORS, logging de requisições e inicialização dos singletons
// (banco, serviços, e-mail e Redis).

package httpapi

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "log"
    "net/http"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/joho/godotenv"
    "golang.org/x/crypto/bcrypt"

    "github.com/sitelogic/site_api/internal/config"
    "github.com/sitelogic/site_api/internal/db"
    "github.com/sitelogic/site_api/internal/domain"
    "github.com/sitelogic/site_api/internal/identity"
    "github.com/sitelogic/site_api/internal/kv"
    authsvc "github.com/sitelogic/site_api/internal/services/auth"
    contatossvc "github.com/sitelogic/site_api/internal/services/contatos"
    emailsvc "github.com/sitelogic/site_api/internal/services/email"
    orcamentossvc "github.com/sitelogic/site_api/internal/services/orcamentos"
    projectssvc "github.com/sitelogic/site_api/internal/services/projects"
    userssvc "github.com/sitelogic/site_api/internal/services/users"
)

// writeJSON escreve uma resposta JSON com status e payload arbitrários.
func writeJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json; charset=utf-8")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(v)
}

// writeError traduz erros de domínio em envelopes {success, code, message}.
func writeError(w http.ResponseWriter, area string, err error) {
    switch {
    case domain.IsValidation(err):
        writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "code": area + "_400_001", "message": err.Error()})
    case errors.Is(err, domain.ErrNotFound):
        writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "code": area + "_404_001", "message": "Registro não encontrado"})
    case errors.Is(err, domain.ErrConflict):
        writeJSON(w, http.StatusConflict, map[string]any{"success": false, "code": area + "_409_001", "message": "Registro já existente"})
    case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthorized):
        writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "code": area + "_401_001", "message": err.Error()})
    default:
        logError("%s: erro interno: %v", area, err)
        writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "code": area + "_500_001", "message": "Erro interno"})
    }
}

// healthHandler responde OK para verificação de saúde do serviço.
func healthHandler(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, http.StatusOK, map[string]any{
        "ok":      true,
        "service": cfg.ServiceName,
        "status":  "healthy",
    })
}

// rootHandler responde um resumo básico do serviço.
func rootHandler(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, http.StatusOK, map[string]any{
        "ok":        true,
        "service":   cfg.ServiceName,
        "version":   cfg.Version,
        "endpoints": []string{"/healthz", "/auth/login", "/auth/register", "/auth/validate", "/orcamentos", "/contatos", "/projects", "/users"},
    })
}

// Handler é o ponto de entrada exigido pelo runtime Go da Vercel.
// Roteia as requisições por caminho e método, delegando para handlers específicos.
func Handler(w http.ResponseWriter, r *http.Request) {
    // Request logging (método, caminho, status, duração, UA, bytes)
    sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
    start := time.Now()
    defer func() {
        dur := time.Since(start)
        ua := strings.TrimSpace(r.Header.Get("User-Agent"))
        logInfo("%s %s -> %d (%s) ua=%q bytes=%d", r.Method, r.URL.Path, sw.status, dur.String(), ua, sw.nbytes)
    }()
    w = sw

    if applyCORS(w, r) {
        return
    }

    path := strings.TrimSuffix(r.URL.Path, "/")
    if path == "" {
        path = "/"
    }

    // init falhou (ex.: banco indisponível): responde 503 em vez de derrubar o runtime
    if (!inited || sqldb == nil) && path != "/" && path != "/healthz" {
        logWarn("requisição %s %s antes da inicialização dos serviços", r.Method, path)
        writeJSON(w, http.StatusServiceUnavailable, map[string]any{
            "success": false,
            "code":    "HTTP_503_INIT",
            "message": "Serviço indisponível. Tente novamente.",
        })
        return
    }

    switch {
    case path == "/":
        rootHandler(w, r)
        return

    case path == "/healthz":
        healthHandler(w, r)
        return

    case strings.HasPrefix(path, "/auth/"):
        authRoutes(w, r, path)
        return

    case path == "/orcamentos" || strings.HasPrefix(path, "/orcamentos/"):
        orcamentoRoutes(w, r, path)
        return

    case path == "/contatos" || strings.HasPrefix(path, "/contatos/"):
        contatoRoutes(w, r, path)
        return

    case path == "/projects" || strings.HasPrefix(path, "/projects/"):
        projectRoutes(w, r, path)
        return

    case path == "/users" || strings.HasPrefix(path, "/users/"):
        userRoutes(w, r, path)
        return

    // Compatibilidade com rewrites que incluem o prefixo /api
    case strings.HasPrefix(path, "/api/") || path == "/api":
        r.URL.Path = strings.TrimPrefix(r.URL.Path, "/api")
        Handler(w, r)
        return
    }

    writeJSON(w, http.StatusNotFound, map[string]any{
        "success": false,
        "code":    "HTTP_404",
        "message": "Rota não encontrada",
        "path":    path,
    })
}

// applyCORS aplica os cabeçalhos de CORS e resolve o preflight.
// Retorna true quando a requisição já foi respondida (OPTIONS).
func applyCORS(w http.ResponseWriter, r *http.Request) bool {
    origin := strings.TrimSpace(r.Header.Get("Origin"))
    if origin != "" && originAllowed(origin) {
        w.Header().Set("Access-Control-Allow-Origin", origin)
        w.Header().Set("Vary", "Origin")
        w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
        w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
    }
    if r.Method == http.MethodOptions {
        w.WriteHeader(http.StatusNoContent)
        return true
    }
    return false
}

func originAllowed(origin string) bool {
    for _, o := range cfg.CORSAllowedOrigins {
        if o == "*" || strings.EqualFold(o, origin) {
            return true
        }
    }
    return false
}

// methodNotAllowed responde 405 em rota conhecida com método errado.
func methodNotAllowed(w http.ResponseWriter) {
    writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"success": false, "code": "HTTP_405", "message": "Método não permitido"})
}

// Instâncias de singletons para ambiente serverless.
var (
    inited     = false
    cfg        *config.Config
    sqldb      *sql.DB
    mailer     *emailsvc.Service
    notifier   *emailsvc.Notifier
    dispatcher *emailsvc.Dispatcher

    auth       *authsvc.Service
    users      *userssvc.Service
    projects   *projectssvc.Service
    orcamentos *orcamentossvc.Service
    contatos   *contatossvc.Service
)

// rateAllow indireciona o rate limiter; os testes substituem a função.
var rateAllow = kv.AllowRate

// init prepara dependências (DB, migrações, serviços) na primeira invocação.
func init() {
    if inited {
        return
    }
    // Em desenvolvimento, preferimos que o .env local sobrescreva variáveis já definidas
    _ = godotenv.Overload()
    cfg = config.Load()

    dbURL := cfg.DatabaseURL
    // Em serverless (Vercel/Lambda), sem DATABASE_URL, use SQLite em /tmp (área gravável)
    if strings.TrimSpace(dbURL) == "" && serverlessRuntime() {
        dbURL = "/tmp/site_api.db"
    }

    var err error
    sqldb, err = db.Connect(dbURL)
    if err != nil {
        log.Printf("db connect error: %v", err)
        return
    }
    if err := db.Migrate(context.Background(), sqldb); err != nil {
        log.Printf("db migrate error: %v", err)
        return
    }
    seedAdmin(sqldb)

    mailer = emailsvc.FromConfig(cfg)
    if mailer == nil {
        logInfo("email disabled: missing EMAIL_SERVER_SMTP_HOST; skipping mail send")
    } else {
        notifier = emailsvc.NewNotifier(mailer, cfg.EmailOrcamentos, cfg.PublicBaseURL)
        // Em serverless o envio é síncrono antes da resposta; com servidor próprio,
        // os e-mails passam pela fila com retry.
        if !serverlessRuntime() {
            dispatcher = emailsvc.NewDispatcher(64, 20*time.Second, logWarn)
        }
    }

    auth = authsvc.New(sqldb, cfg.SecretKey, time.Duration(cfg.TokenExpireSeconds)*time.Second)
    users = userssvc.New(sqldb, identity.NewLocal())
    projects = projectssvc.New(sqldb)
    orcamentos = orcamentossvc.New(sqldb, notifierOrNil(), dispatcher)
    contatos = contatossvc.New(sqldb)

    // Redis (rate limit / lockout); permissivo quando ausente
    if err := kv.Init(cfg.RedisURL, cfg.RedisHost, cfg.RedisPort, cfg.RedisPass, cfg.RedisTLS); err != nil {
        logWarn("redis init failed: %v", err)
    }
    inited = true
}

// notifierOrNil evita interface não-nula embrulhando ponteiro nulo.
func notifierOrNil() orcamentossvc.Notificador {
    if notifier == nil {
        return nil
    }
    return notifier
}

func serverlessRuntime() bool {
    return os.Getenv("VERCEL") != "" || os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// seedAdmin cria (ou reativa) o admin inicial a partir das envs ADMIN_AUTH_*.
func seedAdmin(sqldb *sql.DB) {
    email := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_AUTH_EMAIL")))
    pass := os.Getenv("ADMIN_AUTH_PASSWORD")
    nome := os.Getenv("ADMIN_AUTH_NAME")
    if email == "" || pass == "" {
        return
    }
    if nome == "" {
        nome = "Administrador"
    }
    var (
        id    int64
        ativo bool
    )
    err := sqldb.QueryRow(db.Rebind(`SELECT id, ativo FROM users WHERE email = ? LIMIT 1`), email).Scan(&id, &ativo)
    now := time.Now().UTC()
    switch {
    case err == nil:
        if !ativo {
            if _, e := sqldb.Exec(db.Rebind(`UPDATE users SET ativo = ?, updated_at = ? WHERE id = ?`), true, now, id); e != nil {
                log.Printf("seed admin: failed to activate existing user: %v", e)
            } else {
                log.Printf("seed admin: activated existing user '%s'", email)
            }
        }
    case errors.Is(err, sql.ErrNoRows):
        hash, _ := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
        if _, e := sqldb.Exec(db.Rebind(`INSERT INTO users (email, nome, password_hash, role, ativo, created_at, updated_at) VALUES (?,?,?,?,?,?,?)`), email, nome, string(hash), domain.RoleAdmin, true, now, now); e != nil {
            log.Printf("seed admin failed: %v", e)
        }
    default:
        log.Printf("seed admin select failed: %v", err)
    }
}

// authenticate valida o header Authorization: Bearer e retorna (userID, role).
func authenticate(r *http.Request) (int64, string, error) {
    h := r.Header.Get("Authorization")
    if !strings.HasPrefix(strings.ToLower(h), "bearer ") {
        return 0, "", domain.ErrUnauthorized
    }
    token := strings.TrimSpace(h[len("Bearer "):])
    return auth.Authenticate(r.Context(), token)
}

// requireAuth responde 401 e retorna false quando a requisição não está autenticada.
func requireAuth(w http.ResponseWriter, r *http.Request, area string) bool {
    if _, _, err := authenticate(r); err != nil {
        if errors.Is(err, domain.ErrUnauthorized) {
            writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "code": area + "_401_001", "message": "Token ausente ou inválido"})
        } else {
            writeError(w, area, err)
        }
        return false
    }
    return true
}

// isAuthenticated informa se a requisição carrega um token válido, sem responder nada.
func isAuthenticated(r *http.Request) bool {
    _, _, err := authenticate(r)
    return err == nil
}

// parseID extrai um ID numérico de um segmento de caminho.
func parseID(seg string) (int64, bool) {
    n, err := strconv.ParseInt(strings.TrimSpace(seg), 10, 64)
    if err != nil || n <= 0 {
        return 0, false
    }
    return n, true
}

// allowPublicForm aplica o rate limit por IP dos formulários públicos.
// Retorna false (e responde 429) quando o limite foi excedido.
func allowPublicForm(w http.ResponseWriter, r *http.Request, form, area string) bool {
    ip := clientIP(r)
    window := time.Duration(cfg.FormIPWindowMinutes) * time.Minute
    if ok, _, _ := rateAllow(r.Context(), "rl:"+form+":ip:"+ip, int64(cfg.FormIPLimit), window); !ok {
        writeJSON(w, http.StatusTooManyRequests, map[string]any{"success": false, "code": area + "_429_001", "message": "Muitas solicitações. Tente mais tarde."})
        return false
    }
    return true
}

// statusWriter captura status/bytes para logging.
type statusWriter struct {
    http.ResponseWriter
    status int
    nbytes int
}

func (w *statusWriter) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
    n, err := w.ResponseWriter.Write(b)
    w.nbytes += n
    return n, err
}

// Logging helpers com níveis simples (DEBUG, INFO, WARN, ERROR)
func logEnabled(level string) bool {
    order := map[string]int{"DEBUG": 10, "INFO": 20, "WARN": 30, "ERROR": 40}
    cur := "INFO"
    if cfg != nil && strings.TrimSpace(cfg.LogLevel) != "" {
        cur = strings.ToUpper(strings.TrimSpace(cfg.LogLevel))
    }
    return order[strings.ToUpper(level)] >= order[cur]
}

func logDebug(format string, args ...any) {
    if logEnabled("DEBUG") {
        log.Printf("[DEBUG] "+format, args...)
    }
}
func logInfo(format string, args ...any) {
    if logEnabled("INFO") {
        log.Printf("[INFO]  "+format, args...)
    }
}
func logWarn(format string, args ...any) {
    if logEnabled("WARN") {
        log.Printf("[WARN]  "+format, args...)
    }
}
func logError(format string, args ...any) {
    if logEnabled("ERROR") {
        log.Printf("[ERROR] "+format, args...)
    }
}

// clientIP extrai IP do X-Forwarded-For ou RemoteAddr
func clientIP(r *http.Request) string {
    if r == nil {
        return ""
    }
    if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
        parts := strings.Split(xff, ",")
        if len(parts) > 0 {
            return strings.TrimSpace(parts[0])
        }
    }
    host := r.RemoteAddr
    if i := strings.LastIndex(host, ":"); i > 0 {
        host = host[:i]
    }
    return host
}
