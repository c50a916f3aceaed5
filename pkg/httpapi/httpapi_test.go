// Caminho: pkg/httpapi/httpapi_test.go
// Resumo: Testes ponta a ponta da API sobre httptest, com SQLite real em diretório
// temporário e e-mail desabilitado.

package httpapi

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "net/http/httptest"
    "path/filepath"
    "testing"
    "time"

    "github.com/sitelogic/site_api/internal/config"
    "github.com/sitelogic/site_api/internal/db"
    authsvc "github.com/sitelogic/site_api/internal/services/auth"
    contatossvc "github.com/sitelogic/site_api/internal/services/contatos"
    orcamentossvc "github.com/sitelogic/site_api/internal/services/orcamentos"
    projectssvc "github.com/sitelogic/site_api/internal/services/projects"
    userssvc "github.com/sitelogic/site_api/internal/services/users"
)

// setupTestAPI troca os singletons do pacote por instâncias sobre um banco temporário.
func setupTestAPI(t *testing.T) {
    t.Helper()
    sqldbTest, err := db.Connect(filepath.Join(t.TempDir(), "test.db"))
    if err != nil {
        t.Fatalf("connect: %v", err)
    }
    t.Cleanup(func() { _ = sqldbTest.Close() })
    if err := db.Migrate(context.Background(), sqldbTest); err != nil {
        t.Fatalf("migrate: %v", err)
    }

    cfg = config.Load()
    sqldb = sqldbTest
    mailer, notifier, dispatcher = nil, nil, nil
    auth = authsvc.New(sqldb, "test-secret", time.Hour)
    users = userssvc.New(sqldb, nil)
    projects = projectssvc.New(sqldb)
    orcamentos = orcamentossvc.New(sqldb, nil, nil)
    contatos = contatossvc.New(sqldb)
    inited = true
}

func doJSON(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
    t.Helper()
    var buf bytes.Buffer
    if body != nil {
        if err := json.NewEncoder(&buf).Encode(body); err != nil {
            t.Fatalf("encode body: %v", err)
        }
    }
    req := httptest.NewRequest(method, path, &buf)
    req.Header.Set("Content-Type", "application/json")
    if token != "" {
        req.Header.Set("Authorization", "Bearer "+token)
    }
    rec := httptest.NewRecorder()
    Handler(rec, req)

    out := map[string]any{}
    if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
        _ = json.Unmarshal(rec.Body.Bytes(), &out)
    }
    return rec, out
}

// adminToken registra um usuário e devolve um token válido.
func adminToken(t *testing.T) string {
    t.Helper()
    rec, out := doJSON(t, http.MethodPost, "/auth/register", "", map[string]any{
        "email":    fmt.Sprintf("admin%d@sitelogic.com", time.Now().UnixNano()),
        "password": "admin@2025",
        "nome":     "Admin",
    })
    if rec.Code != http.StatusCreated {
        t.Fatalf("register admin: status %d body %s", rec.Code, rec.Body.String())
    }
    token, _ := out["token"].(string)
    if token == "" {
        t.Fatal("registro não retornou token")
    }
    return token
}

func TestHealthAndRoot(t *testing.T) {
    setupTestAPI(t)
    rec, out := doJSON(t, http.MethodGet, "/healthz", "", nil)
    if rec.Code != http.StatusOK || out["status"] != "healthy" {
        t.Fatalf("healthz: status %d body %s", rec.Code, rec.Body.String())
    }
    rec, _ = doJSON(t, http.MethodGet, "/", "", nil)
    if rec.Code != http.StatusOK {
        t.Fatalf("root: status %d", rec.Code)
    }
}

func TestAuthFlow(t *testing.T) {
    setupTestAPI(t)

    rec, out := doJSON(t, http.MethodPost, "/auth/register", "", map[string]any{
        "email": "dev@sitelogic.com", "password": "segredo1", "nome": "Dev",
    })
    if rec.Code != http.StatusCreated {
        t.Fatalf("register: status %d body %s", rec.Code, rec.Body.String())
    }
    token, _ := out["token"].(string)

    t.Run("registro duplicado retorna 409", func(t *testing.T) {
        rec, _ := doJSON(t, http.MethodPost, "/auth/register", "", map[string]any{
            "email": "dev@sitelogic.com", "password": "segredo1", "nome": "Clone",
        })
        if rec.Code != http.StatusConflict {
            t.Fatalf("esperava 409, veio %d", rec.Code)
        }
    })

    t.Run("login com as mesmas credenciais", func(t *testing.T) {
        rec, out := doJSON(t, http.MethodPost, "/auth/login", "", map[string]any{
            "email": "dev@sitelogic.com", "password": "segredo1",
        })
        if rec.Code != http.StatusOK {
            t.Fatalf("login: status %d body %s", rec.Code, rec.Body.String())
        }
        if tk, _ := out["token"].(string); tk == "" {
            t.Fatal("login sem token")
        }
        user, _ := out["user"].(map[string]any)
        if user == nil || user["email"] != "dev@sitelogic.com" {
            t.Fatalf("payload de usuário inesperado: %v", out["user"])
        }
        if _, exposto := user["password"]; exposto {
            t.Fatal("senha exposta no payload")
        }
    })

    t.Run("senha errada retorna 401 com mensagem única", func(t *testing.T) {
        rec, out := doJSON(t, http.MethodPost, "/auth/login", "", map[string]any{
            "email": "dev@sitelogic.com", "password": "errada",
        })
        if rec.Code != http.StatusUnauthorized {
            t.Fatalf("esperava 401, veio %d", rec.Code)
        }
        if out["message"] != "email ou senha incorretos" {
            t.Fatalf("mensagem inesperada: %v", out["message"])
        }
    })

    t.Run("validate distingue token real de forjado", func(t *testing.T) {
        rec, out := doJSON(t, http.MethodPost, "/auth/validate", "", map[string]any{"token": token})
        if rec.Code != http.StatusOK || out["valid"] != true {
            t.Fatalf("token real rejeitado: %d %s", rec.Code, rec.Body.String())
        }
        rec, out = doJSON(t, http.MethodPost, "/auth/validate", "", map[string]any{"token": token + "x"})
        if rec.Code != http.StatusOK || out["valid"] != false {
            t.Fatalf("token forjado aceito: %d %s", rec.Code, rec.Body.String())
        }
    })
}

func TestOrcamentoEndpoints(t *testing.T) {
    setupTestAPI(t)
    token := adminToken(t)

    pedido := map[string]any{
        "nome":             "João Silva",
        "email":            "joao@example.com",
        "telefone":         "(85) 99999-9999",
        "tipoServico":      "desenvolvimento-sites",
        "prazo":            "1-mes",
        "orcamento":        "5k-15k",
        "descricaoProjeto": "Site institucional",
    }

    t.Run("formulário público cria com 201", func(t *testing.T) {
        rec, out := doJSON(t, http.MethodPost, "/api/orcamentos", "", pedido)
        if rec.Code != http.StatusCreated {
            t.Fatalf("esperava 201, veio %d: %s", rec.Code, rec.Body.String())
        }
        if out["status"] != "pendente" {
            t.Fatalf("status inicial inesperado: %v", out["status"])
        }
    })

    t.Run("payload incompleto retorna 400", func(t *testing.T) {
        rec, _ := doJSON(t, http.MethodPost, "/orcamentos", "", map[string]any{"nome": "Só nome"})
        if rec.Code != http.StatusBadRequest {
            t.Fatalf("esperava 400, veio %d", rec.Code)
        }
    })

    t.Run("listagem exige token", func(t *testing.T) {
        rec, _ := doJSON(t, http.MethodGet, "/orcamentos", "", nil)
        if rec.Code != http.StatusUnauthorized {
            t.Fatalf("esperava 401, veio %d", rec.Code)
        }
        rec, _ = doJSON(t, http.MethodGet, "/orcamentos", token, nil)
        if rec.Code != http.StatusOK {
            t.Fatalf("esperava 200, veio %d: %s", rec.Code, rec.Body.String())
        }
    })

    t.Run("patch de status em id ausente retorna 404", func(t *testing.T) {
        rec, _ := doJSON(t, http.MethodPatch, "/orcamentos/9999/status", token, map[string]any{"status": "em_analise"})
        if rec.Code != http.StatusNotFound {
            t.Fatalf("esperava 404, veio %d", rec.Code)
        }
    })

    t.Run("stats autenticadas", func(t *testing.T) {
        rec, out := doJSON(t, http.MethodGet, "/orcamentos/stats", token, nil)
        if rec.Code != http.StatusOK {
            t.Fatalf("stats: %d %s", rec.Code, rec.Body.String())
        }
        if out["total"] != float64(1) || out["pendentes"] != float64(1) {
            t.Fatalf("stats inesperadas: %v", out)
        }
    })
}

func TestContatoEndpoints(t *testing.T) {
    setupTestAPI(t)
    token := adminToken(t)

    rec, out := doJSON(t, http.MethodPost, "/contatos", "", map[string]any{
        "nome": "Pedro", "email": "pedro@example.com", "mensagem": "Olá!",
    })
    if rec.Code != http.StatusCreated {
        t.Fatalf("create contato: %d %s", rec.Code, rec.Body.String())
    }
    id := int64(out["id"].(float64))
    if out["status"] != "novo" {
        t.Fatalf("status derivado inesperado: %v", out["status"])
    }

    t.Run("marcar lido é idempotente", func(t *testing.T) {
        for i := 0; i < 2; i++ {
            rec, out := doJSON(t, http.MethodPatch, fmt.Sprintf("/contatos/%d/read", id), token, nil)
            if rec.Code != http.StatusOK || out["lido"] != true || out["status"] != "lido" {
                t.Fatalf("markAsRead (%d): %d %s", i, rec.Code, rec.Body.String())
            }
        }
    })

    t.Run("filtro por estado derivado", func(t *testing.T) {
        req := httptest.NewRequest(http.MethodGet, "/contatos?status=lido", nil)
        req.Header.Set("Authorization", "Bearer "+token)
        w := httptest.NewRecorder()
        Handler(w, req)
        if w.Code != http.StatusOK {
            t.Fatalf("findAll: %d %s", w.Code, w.Body.String())
        }
        var list []map[string]any
        if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
            t.Fatalf("decode: %v", err)
        }
        if len(list) != 1 {
            t.Fatalf("esperava 1 lido, veio %d", len(list))
        }
    })
}

func TestProjectEndpoints(t *testing.T) {
    setupTestAPI(t)
    token := adminToken(t)

    novo := map[string]any{
        "titulo":      "Portfolio",
        "descricao":   "Site de portfólio",
        "categoria":   "Website",
        "tipo":        "Site",
        "plataforma":  "Web",
        "tecnologias": []string{"Go"},
        "ordem":       1,
    }

    t.Run("mutação exige token", func(t *testing.T) {
        rec, _ := doJSON(t, http.MethodPost, "/projects", "", novo)
        if rec.Code != http.StatusUnauthorized {
            t.Fatalf("esperava 401, veio %d", rec.Code)
        }
    })

    rec, out := doJSON(t, http.MethodPost, "/projects", token, novo)
    if rec.Code != http.StatusCreated {
        t.Fatalf("create project: %d %s", rec.Code, rec.Body.String())
    }
    id := int64(out["id"].(float64))

    t.Run("patch parcial preserva o resto", func(t *testing.T) {
        rec, out := doJSON(t, http.MethodPatch, fmt.Sprintf("/projects/%d", id), token, map[string]any{"destaque": true})
        if rec.Code != http.StatusOK {
            t.Fatalf("patch: %d %s", rec.Code, rec.Body.String())
        }
        if out["destaque"] != true || out["titulo"] != "Portfolio" {
            t.Fatalf("patch parcial inesperado: %v", out)
        }
    })

    t.Run("listagem pública esconde inativos", func(t *testing.T) {
        if _, err := projects.Update(context.Background(), id, inativoUpdate()); err != nil {
            t.Fatalf("desativar: %v", err)
        }
        req := httptest.NewRequest(http.MethodGet, "/projects", nil)
        w := httptest.NewRecorder()
        Handler(w, req)
        var list []map[string]any
        if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
            t.Fatalf("decode: %v", err)
        }
        if len(list) != 0 {
            t.Fatalf("projeto inativo visível publicamente: %v", list)
        }
    })

    t.Run("delete em id ausente retorna 404", func(t *testing.T) {
        rec, _ := doJSON(t, http.MethodDelete, "/projects/9999", token, nil)
        if rec.Code != http.StatusNotFound {
            t.Fatalf("esperava 404, veio %d", rec.Code)
        }
    })
}

func inativoUpdate() projectssvc.UpdateInput {
    f := false
    return projectssvc.UpdateInput{Ativo: &f}
}

func TestUserEndpoints(t *testing.T) {
    setupTestAPI(t)
    token := adminToken(t)

    rec, out := doJSON(t, http.MethodPost, "/users", token, map[string]any{
        "email": "equipe@sitelogic.com", "password": "segredo1", "nome": "Equipe",
    })
    if rec.Code != http.StatusCreated {
        t.Fatalf("create user: %d %s", rec.Code, rec.Body.String())
    }
    id := int64(out["id"].(float64))

    t.Run("duplicado retorna 409", func(t *testing.T) {
        rec, _ := doJSON(t, http.MethodPost, "/users", token, map[string]any{
            "email": "equipe@sitelogic.com", "password": "segredo1", "nome": "Clone",
        })
        if rec.Code != http.StatusConflict {
            t.Fatalf("esperava 409, veio %d", rec.Code)
        }
    })

    t.Run("remoção lógica", func(t *testing.T) {
        rec, _ := doJSON(t, http.MethodDelete, fmt.Sprintf("/users/%d", id), token, nil)
        if rec.Code != http.StatusOK {
            t.Fatalf("delete: %d", rec.Code)
        }
        rec, _ = doJSON(t, http.MethodGet, fmt.Sprintf("/users/%d", id), token, nil)
        if rec.Code != http.StatusNotFound {
            t.Fatalf("esperava 404 após remoção, veio %d", rec.Code)
        }
    })
}

func TestLimiteDosFormulariosPublicos(t *testing.T) {
    setupTestAPI(t)
    original := rateAllow
    t.Cleanup(func() { rateAllow = original })
    rateAllow = func(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
        return false, limit, nil
    }

    rec, out := doJSON(t, http.MethodPost, "/contatos", "", map[string]any{
        "nome": "Bloqueado", "email": "bloqueado@example.com", "mensagem": "Olá!",
    })
    if rec.Code != http.StatusTooManyRequests || out["code"] != "CONT_429_001" {
        t.Fatalf("esperava 429 CONT_429_001, veio %d %s", rec.Code, rec.Body.String())
    }

    rec, out = doJSON(t, http.MethodPost, "/orcamentos", "", map[string]any{
        "nome": "Bloqueado", "email": "bloqueado@example.com",
        "tipoServico": "site-institucional", "descricaoProjeto": "Projeto",
    })
    if rec.Code != http.StatusTooManyRequests || out["code"] != "ORC_429_001" {
        t.Fatalf("esperava 429 ORC_429_001, veio %d %s", rec.Code, rec.Body.String())
    }
}

func TestServicoNaoInicializado(t *testing.T) {
    setupTestAPI(t)
    inited = false
    t.Cleanup(func() { inited = true })

    rec, out := doJSON(t, http.MethodGet, "/projects", "", nil)
    if rec.Code != http.StatusServiceUnavailable || out["code"] != "HTTP_503_INIT" {
        t.Fatalf("esperava 503 HTTP_503_INIT, veio %d %s", rec.Code, rec.Body.String())
    }

    // Health continua respondendo para sondas
    rec, _ = doJSON(t, http.MethodGet, "/healthz", "", nil)
    if rec.Code != http.StatusOK {
        t.Fatalf("healthz deveria responder mesmo sem init: %d", rec.Code)
    }
}

func TestRotaDesconhecida(t *testing.T) {
    setupTestAPI(t)
    rec, out := doJSON(t, http.MethodGet, "/nada-aqui", "", nil)
    if rec.Code != http.StatusNotFound || out["code"] != "HTTP_404" {
        t.Fatalf("esperava 404 HTTP_404, veio %d %s", rec.Code, rec.Body.String())
    }
}
