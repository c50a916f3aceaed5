// Caminho: internal/services/projects/service_test.go
// Resumo: Testes do CRUD de projetos (ordenação, update parcial, tecnologias em JSON).

package projectssvc

import (
    "context"
    "errors"
    "path/filepath"
    "reflect"
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

func criar(t *testing.T, svc *Service, titulo string, ordem int, ativo bool) domain.Project {
    t.Helper()
    p, err := svc.Create(context.Background(), CreateInput{
        Titulo:      titulo,
        Descricao:   "descrição de " + titulo,
        Categoria:   "Website",
        Tipo:        "Site",
        Plataforma:  "Web",
        Tecnologias: []string{"Go", "SQLite"},
        Ordem:       ordem,
        Ativo:       &ativo,
    })
    if err != nil {
        t.Fatalf("create %s: %v", titulo, err)
    }
    return p
}

func TestCreateAndFind(t *testing.T) {
    ctx := context.Background()
    svc := newTestService(t)

    t.Run("campos obrigatórios", func(t *testing.T) {
        _, err := svc.Create(ctx, CreateInput{Titulo: "Sem descrição"})
        if !domain.IsValidation(err) {
            t.Fatalf("esperava erro de validação, veio %v", err)
        }
    })

    t.Run("tecnologias fazem ida e volta pelo JSON", func(t *testing.T) {
        p := criar(t, svc, "Loja", 1, true)
        got, err := svc.FindOne(ctx, p.ID)
        if err != nil {
            t.Fatalf("findOne: %v", err)
        }
        if !reflect.DeepEqual(got.Tecnologias, []string{"Go", "SQLite"}) {
            t.Fatalf("tecnologias inesperadas: %v", got.Tecnologias)
        }
    })

    t.Run("tecnologias em branco são rejeitadas", func(t *testing.T) {
        _, err := svc.Create(ctx, CreateInput{
            Titulo:      "Inválido",
            Descricao:   "descrição",
            Categoria:   "Website",
            Tipo:        "Site",
            Plataforma:  "Web",
            Tecnologias: []string{"Go", " "},
        })
        if !domain.IsValidation(err) {
            t.Fatalf("esperava erro de validação, veio %v", err)
        }
    })

    t.Run("listagem ordena por ordem e filtra inativos", func(t *testing.T) {
        criar(t, svc, "Terceiro", 30, true)
        criar(t, svc, "Segundo", 20, true)
        criar(t, svc, "Oculto", 10, false)

        ativos, err := svc.FindAll(ctx, true)
        if err != nil {
            t.Fatalf("findAll ativos: %v", err)
        }
        for i := 1; i < len(ativos); i++ {
            if ativos[i-1].Ordem > ativos[i].Ordem {
                t.Fatalf("listagem fora de ordem: %+v", ativos)
            }
        }
        for _, p := range ativos {
            if p.Titulo == "Oculto" {
                t.Fatal("projeto inativo apareceu na listagem pública")
            }
        }

        todos, err := svc.FindAll(ctx, false)
        if err != nil {
            t.Fatalf("findAll todos: %v", err)
        }
        if len(todos) != len(ativos)+1 {
            t.Fatalf("listagem completa deveria incluir o inativo: %d vs %d", len(todos), len(ativos))
        }
    })
}

func TestUpdateParcial(t *testing.T) {
    ctx := context.Background()
    svc := newTestService(t)
    p := criar(t, svc, "Original", 1, true)

    titulo := "Renomeado"
    destaque := true
    got, err := svc.Update(ctx, p.ID, UpdateInput{Titulo: &titulo, Destaque: &destaque})
    if err != nil {
        t.Fatalf("update: %v", err)
    }
    if got.Titulo != "Renomeado" || !got.Destaque {
        t.Fatalf("campos pedidos não aplicados: %+v", got)
    }
    // Campos não informados permanecem intactos
    if got.Descricao != p.Descricao || got.Ordem != p.Ordem || !reflect.DeepEqual(got.Tecnologias, p.Tecnologias) {
        t.Fatalf("update parcial alterou campos não pedidos: %+v", got)
    }

    if _, err := svc.Update(ctx, 9999, UpdateInput{Titulo: &titulo}); !errors.Is(err, domain.ErrNotFound) {
        t.Fatalf("esperava ErrNotFound, veio %v", err)
    }

    vazias := []string{""}
    if _, err := svc.Update(ctx, p.ID, UpdateInput{Tecnologias: &vazias}); !domain.IsValidation(err) {
        t.Fatalf("esperava erro de validação para tecnologia em branco, veio %v", err)
    }
}

func TestRemove(t *testing.T) {
    ctx := context.Background()
    svc := newTestService(t)
    p := criar(t, svc, "Descartável", 1, true)

    if err := svc.Remove(ctx, p.ID); err != nil {
        t.Fatalf("remove: %v", err)
    }
    if _, err := svc.FindOne(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
        t.Fatalf("esperava ErrNotFound após delete, veio %v", err)
    }
    if err := svc.Remove(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
        t.Fatalf("esperava ErrNotFound na segunda remoção, veio %v", err)
    }
}
