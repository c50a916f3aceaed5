// Caminho: internal/services/contatos/service_test.go
// Resumo: Testes do serviço de contatos (estado derivado, idempotência, estatísticas).

package contatossvc

import (
    "context"
    "errors"
    "path/filepath"
    "testing"

    "github.com/sitelogic/site_api/internal/db"
    "github.com/sitelogic/site_api/internal/domain"
)

func newTestService(t *testing.T) *Service {
    t.Helper()
    sqldb, err := db.Connect(filepath.Join(t.TempDir(), "test.db"))
    if err != nil {
        t.Fatalf("connect: %v", err)
    }
    t.Cleanup(func() { _ = sqldb.Close() })
    if err := db.Migrate(context.Background(), sqldb); err != nil {
        t.Fatalf("migrate: %v", err)
    }
    return New(sqldb)
}

func criar(t *testing.T, svc *Service, nome string) domain.Contato {
    t.Helper()
    c, err := svc.Create(context.Background(), CreateInput{
        Nome:     nome,
        Email:    nome + "@example.com",
        Mensagem: "Mensagem de " + nome,
    })
    if err != nil {
        t.Fatalf("create %s: %v", nome, err)
    }
    return c
}

func TestCreate(t *testing.T) {
    ctx := context.Background()
    svc := newTestService(t)

    c := criar(t, svc, "pedro")
    if c.Lido || c.Respondido || c.Status() != domain.ContatoNovo {
        t.Fatalf("contato novo com estado inesperado: %+v", c)
    }

    casos := []CreateInput{
        {Nome: "", Email: "x@example.com", Mensagem: "oi"},
        {Nome: "X", Email: "sem-arroba", Mensagem: "oi"},
        {Nome: "X", Email: "x@example.com", Mensagem: "  "},
    }
    for _, in := range casos {
        if _, err := svc.Create(ctx, in); !domain.IsValidation(err) {
            t.Fatalf("esperava erro de validação para %+v, veio %v", in, err)
        }
    }
}

func TestMarcacoes(t *testing.T) {
    ctx := context.Background()
    svc := newTestService(t)
    c := criar(t, svc, "ana")

    t.Run("markAsRead é idempotente", func(t *testing.T) {
        got, err := svc.MarkAsRead(ctx, c.ID)
        if err != nil {
            t.Fatalf("markAsRead: %v", err)
        }
        if !got.Lido || got.Status() != domain.ContatoLido {
            t.Fatalf("estado após leitura inesperado: %+v", got)
        }
        repetido, err := svc.MarkAsRead(ctx, c.ID)
        if err != nil {
            t.Fatalf("markAsRead repetido: %v", err)
        }
        if !repetido.Lido || repetido.Respondido {
            t.Fatalf("segunda marcação alterou estado: %+v", repetido)
        }
    })

    t.Run("responder implica lido", func(t *testing.T) {
        outro := criar(t, svc, "bia")
        got, err := svc.MarkAsResponded(ctx, outro.ID)
        if err != nil {
            t.Fatalf("markAsResponded: %v", err)
        }
        if !got.Lido || !got.Respondido || got.Status() != domain.ContatoRespondido {
            t.Fatalf("estado após resposta inesperado: %+v", got)
        }
    })

    t.Run("id ausente retorna NotFound", func(t *testing.T) {
        if _, err := svc.MarkAsRead(ctx, 9999); !errors.Is(err, domain.ErrNotFound) {
            t.Fatalf("esperava ErrNotFound, veio %v", err)
        }
    })
}

func TestFindAllAndStats(t *testing.T) {
    ctx := context.Background()
    svc := newTestService(t)

    criar(t, svc, "novo1")
    criar(t, svc, "novo2")
    lido := criar(t, svc, "lido1")
    if _, err := svc.MarkAsRead(ctx, lido.ID); err != nil {
        t.Fatalf("markAsRead: %v", err)
    }
    resp := criar(t, svc, "resp1")
    if _, err := svc.MarkAsResponded(ctx, resp.ID); err != nil {
        t.Fatalf("markAsResponded: %v", err)
    }

    t.Run("filtros por estado derivado", func(t *testing.T) {
        for status, want := range map[string]int{
            domain.ContatoNovo:       2,
            domain.ContatoLido:       1,
            domain.ContatoRespondido: 1,
            "":                       4,
        } {
            list, err := svc.FindAll(ctx, status)
            if err != nil {
                t.Fatalf("findAll %q: %v", status, err)
            }
            if len(list) != want {
                t.Fatalf("findAll %q: esperava %d, veio %d", status, want, len(list))
            }
        }
        if _, err := svc.FindAll(ctx, "arquivado"); !domain.IsValidation(err) {
            t.Fatalf("esperava erro de validação, veio %v", err)
        }
    })

    t.Run("estatísticas", func(t *testing.T) {
        st, err := svc.GetStats(ctx)
        if err != nil {
            t.Fatalf("getStats: %v", err)
        }
        want := domain.ContatoStats{Total: 4, Novos: 2, Lidos: 1, Respondidos: 1}
        if st != want {
            t.Fatalf("stats inesperadas: %+v", st)
        }
    })
}

func TestRemove(t *testing.T) {
    ctx := context.Background()
    svc := newTestService(t)
    c := criar(t, svc, "tmp")
    if err := svc.Remove(ctx, c.ID); err != nil {
        t.Fatalf("remove: %v", err)
    }
    if err := svc.Remove(ctx, c.ID); !errors.Is(err, domain.ErrNotFound) {
        t.Fatalf("esperava ErrNotFound, veio %v", err)
    }
}
