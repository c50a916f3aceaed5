// Caminho: internal/services/orcamentos/service_test.go
// Resumo: Testes do fluxo de orçamentos com notifier falso: a criação nunca depende
// do e-mail, status e estatísticas seguem o conjunto aceito.

package orcamentossvc

import (
    "context"
    "errors"
    "path/filepath"
    "testing"

    "github.com/sitelogic/site_api/internal/db"
    "github.com/sitelogic/site_api/internal/domain"
    emailsvc "github.com/sitelogic/site_api/internal/services/email"
)

// fakeNotifier registra as chamadas e devolve o erro configurado.
type fakeNotifier struct {
    novoErr     error
    respostaErr error

    novos     []emailsvc.NovoOrcamentoData
    respostas []string
}

func (f *fakeNotifier) EnviarNovoOrcamento(ctx context.Context, d emailsvc.NovoOrcamentoData) error {
    f.novos = append(f.novos, d)
    return f.novoErr
}

func (f *fakeNotifier) EnviarResposta(ctx context.Context, to, assunto, mensagem, valorOrcamento, prazoEntrega string) error {
    f.respostas = append(f.respostas, to)
    return f.respostaErr
}

func newTestService(t *testing.T, notifier Notificador) *Service {
    t.Helper()
    sqldb, err := db.Connect(filepath.Join(t.TempDir(), "test.db"))
    if err != nil {
        t.Fatalf("connect: %v", err)
    }
    t.Cleanup(func() { _ = sqldb.Close() })
    if err := db.Migrate(context.Background(), sqldb); err != nil {
        t.Fatalf("migrate: %v", err)
    }
    return New(sqldb, notifier, nil)
}

func entradaValida() CreateInput {
    return CreateInput{
        Nome:             "João Silva",
        Email:            "joao@example.com",
        Telefone:         "(85) 99999-9999",
        Empresa:          "Empresa X",
        TipoServico:      "desenvolvimento-sites",
        Prazo:            "1-mes",
        Orcamento:        "5k-15k",
        DescricaoProjeto: "Site institucional moderno",
    }
}

func TestCreate(t *testing.T) {
    ctx := context.Background()

    t.Run("cria pendente e notifica", func(t *testing.T) {
        fake := &fakeNotifier{}
        svc := newTestService(t, fake)
        o, err := svc.Create(ctx, entradaValida())
        if err != nil {
            t.Fatalf("create: %v", err)
        }
        if o.Status != domain.OrcamentoPendente {
            t.Fatalf("status inicial esperado pendente, veio %q", o.Status)
        }
        if len(fake.novos) != 1 || fake.novos[0].Email != "joao@example.com" {
            t.Fatalf("notificação não disparada: %+v", fake.novos)
        }
    })

    t.Run("falha de e-mail não derruba a criação", func(t *testing.T) {
        fake := &fakeNotifier{novoErr: errors.New("smtp indisponível")}
        svc := newTestService(t, fake)
        o, err := svc.Create(ctx, entradaValida())
        if err != nil {
            t.Fatalf("create: %v", err)
        }
        got, err := svc.FindOne(ctx, o.ID)
        if err != nil {
            t.Fatalf("findOne: %v", err)
        }
        if got.Status != domain.OrcamentoPendente {
            t.Fatalf("registro não persistido como pendente: %q", got.Status)
        }
    })

    t.Run("campos obrigatórios", func(t *testing.T) {
        svc := newTestService(t, nil)
        in := entradaValida()
        in.DescricaoProjeto = ""
        if _, err := svc.Create(ctx, in); !domain.IsValidation(err) {
            t.Fatalf("esperava erro de validação, veio %v", err)
        }
        in = entradaValida()
        in.Email = "sem-arroba"
        if _, err := svc.Create(ctx, in); !domain.IsValidation(err) {
            t.Fatalf("esperava erro de validação de email, veio %v", err)
        }
    })
}

func TestUpdateStatus(t *testing.T) {
    ctx := context.Background()
    svc := newTestService(t, nil)
    o, err := svc.Create(ctx, entradaValida())
    if err != nil {
        t.Fatalf("create: %v", err)
    }

    t.Run("troca livre entre os status aceitos", func(t *testing.T) {
        for _, st := range []string{domain.OrcamentoEmAnalise, domain.OrcamentoFechado, domain.OrcamentoPendente} {
            got, err := svc.UpdateStatus(ctx, o.ID, st, nil)
            if err != nil {
                t.Fatalf("updateStatus %s: %v", st, err)
            }
            if got.Status != st {
                t.Fatalf("status não aplicado: %q", got.Status)
            }
        }
    })

    t.Run("observações só mudam quando enviadas", func(t *testing.T) {
        obs := "cliente pediu ligação"
        got, err := svc.UpdateStatus(ctx, o.ID, domain.OrcamentoEmAnalise, &obs)
        if err != nil {
            t.Fatalf("updateStatus: %v", err)
        }
        if got.Observacoes != obs {
            t.Fatalf("observações não aplicadas: %q", got.Observacoes)
        }
        got, err = svc.UpdateStatus(ctx, o.ID, domain.OrcamentoFechado, nil)
        if err != nil {
            t.Fatalf("updateStatus: %v", err)
        }
        if got.Observacoes != obs {
            t.Fatalf("observações perdidas em update sem o campo: %q", got.Observacoes)
        }
    })

    t.Run("status desconhecido e id ausente", func(t *testing.T) {
        if _, err := svc.UpdateStatus(ctx, o.ID, "cancelado", nil); !domain.IsValidation(err) {
            t.Fatalf("esperava erro de validação, veio %v", err)
        }
        if _, err := svc.UpdateStatus(ctx, 9999, domain.OrcamentoFechado, nil); !errors.Is(err, domain.ErrNotFound) {
            t.Fatalf("esperava ErrNotFound, veio %v", err)
        }
    })
}

func TestEnviarResposta(t *testing.T) {
    ctx := context.Background()
    fake := &fakeNotifier{}
    svc := newTestService(t, fake)
    o, err := svc.Create(ctx, entradaValida())
    if err != nil {
        t.Fatalf("create: %v", err)
    }
    fake.novos = nil

    got, err := svc.EnviarResposta(ctx, o.ID, "Proposta", "Segue proposta em anexo.", "R$ 12.000", "6 semanas")
    if err != nil {
        t.Fatalf("enviarResposta: %v", err)
    }
    if got.Status != domain.OrcamentoRespondido {
        t.Fatalf("resposta deveria marcar respondido, veio %q", got.Status)
    }
    if len(fake.respostas) != 1 || fake.respostas[0] != "joao@example.com" {
        t.Fatalf("resposta não enviada ao solicitante: %+v", fake.respostas)
    }

    if _, err := svc.EnviarResposta(ctx, 9999, "A", "B", "", ""); !errors.Is(err, domain.ErrNotFound) {
        t.Fatalf("esperava ErrNotFound, veio %v", err)
    }
    if _, err := svc.EnviarResposta(ctx, o.ID, " ", "B", "", ""); !domain.IsValidation(err) {
        t.Fatalf("esperava erro de validação de assunto, veio %v", err)
    }
}

func TestFindAllAndStats(t *testing.T) {
    ctx := context.Background()
    svc := newTestService(t, nil)

    for i := 0; i < 3; i++ {
        if _, err := svc.Create(ctx, entradaValida()); err != nil {
            t.Fatalf("create: %v", err)
        }
    }
    o, err := svc.Create(ctx, entradaValida())
    if err != nil {
        t.Fatalf("create: %v", err)
    }
    if _, err := svc.UpdateStatus(ctx, o.ID, domain.OrcamentoFechado, nil); err != nil {
        t.Fatalf("updateStatus: %v", err)
    }

    t.Run("filtro por status", func(t *testing.T) {
        pendentes, err := svc.FindAll(ctx, domain.OrcamentoPendente)
        if err != nil {
            t.Fatalf("findAll: %v", err)
        }
        if len(pendentes) != 3 {
            t.Fatalf("esperava 3 pendentes, veio %d", len(pendentes))
        }
        if _, err := svc.FindAll(ctx, "qualquer"); !domain.IsValidation(err) {
            t.Fatalf("esperava erro de validação de status, veio %v", err)
        }
    })

    t.Run("estatísticas por status", func(t *testing.T) {
        st, err := svc.GetStats(ctx)
        if err != nil {
            t.Fatalf("getStats: %v", err)
        }
        want := domain.OrcamentoStats{Total: 4, Pendentes: 3, Fechados: 1}
        if st != want {
            t.Fatalf("stats inesperadas: %+v", st)
        }
    })
}

func TestRemove(t *testing.T) {
    ctx := context.Background()
    svc := newTestService(t, nil)
    o, err := svc.Create(ctx, entradaValida())
    if err != nil {
        t.Fatalf("create: %v", err)
    }
    if err := svc.Remove(ctx, o.ID); err != nil {
        t.Fatalf("remove: %v", err)
    }
    if err := svc.Remove(ctx, o.ID); !errors.Is(err, domain.ErrNotFound) {
        t.Fatalf("esperava ErrNotFound, veio %v", err)
    }
}
