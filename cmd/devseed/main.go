// Caminho: cmd/devseed/main.go
// Resumo: Utilitário de desenvolvimento: limpa o banco, cria o admin padrão, popula
// projetos/orçamentos/contatos de demonstração e autentica exibindo o token.

package main

import (
    "context"
    "database/sql"
    "fmt"
    "log"
    "os"
    "time"

    "github.com/joho/godotenv"
    "golang.org/x/crypto/bcrypt"

    "github.com/sitelogic/site_api/internal/config"
    "github.com/sitelogic/site_api/internal/db"
    "github.com/sitelogic/site_api/internal/domain"
    authsvc "github.com/sitelogic/site_api/internal/services/auth"
    contatossvc "github.com/sitelogic/site_api/internal/services/contatos"
    orcamentossvc "github.com/sitelogic/site_api/internal/services/orcamentos"
    projectssvc "github.com/sitelogic/site_api/internal/services/projects"
)

func main() {
    _ = godotenv.Load()
    cfg := config.Load()

    sqldb, err := db.Connect(cfg.DatabaseURL)
    if err != nil {
        log.Fatalf("db connect: %v", err)
    }
    if err := db.Migrate(context.Background(), sqldb); err != nil {
        log.Fatalf("migrate: %v", err)
    }

    ctx := context.Background()
    log.Println("Populando banco de dados...")

    // Limpar dados antigos
    for _, table := range []string{"contatos", "orcamentos", "projects", "sessions", "users"} {
        if _, err := sqldb.Exec("DELETE FROM " + table); err != nil {
            log.Fatalf("limpar %s: %v", table, err)
        }
    }

    email, pass := seedAdmin(sqldb)
    seedProjects(ctx, sqldb)
    seedOrcamentos(ctx, sqldb)
    seedContatos(ctx, sqldb)

    svc := authsvc.New(sqldb, cfg.SecretKey, time.Duration(cfg.TokenExpireSeconds)*time.Second)
    token, user, err := svc.Login(ctx, email, pass)
    if err != nil {
        log.Fatalf("login error: %v", err)
    }
    log.Printf("Banco populado com sucesso; admin=%s (id=%d)", user.Email, user.ID)
    fmt.Println("TOKEN=", token)
}

// seedAdmin cria o admin padrão (ADMIN_AUTH_* ou defaults de desenvolvimento).
func seedAdmin(sqldb *sql.DB) (email, pass string) {
    email = os.Getenv("ADMIN_AUTH_EMAIL")
    pass = os.Getenv("ADMIN_AUTH_PASSWORD")
    nome := os.Getenv("ADMIN_AUTH_NAME")
    if email == "" {
        email = "admin@sitelogic.com"
    }
    if pass == "" {
        pass = "admin@2025"
    }
    if nome == "" {
        nome = "Administrador"
    }
    hash, _ := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
    now := time.Now().UTC()
    if _, err := sqldb.Exec(db.Rebind(`INSERT INTO users (email, nome, password_hash, role, ativo, created_at, updated_at) VALUES (?,?,?,?,?,?,?)`), email, nome, string(hash), domain.RoleSuperAdmin, true, now, now); err != nil {
        log.Fatalf("seed admin failed: %v", err)
    }
    log.Printf("Usuário admin criado: %s", email)
    return email, pass
}

func seedProjects(ctx context.Context, sqldb *sql.DB) {
    svc := projectssvc.New(sqldb)
    seeds := []projectssvc.CreateInput{
        {
            Titulo:      "App Delivery Premium",
            Descricao:   "Aplicativo completo de delivery com sistema de pedidos em tempo real, pagamento integrado, rastreamento de entrega e chat com estabelecimento.",
            Categoria:   "Mobile",
            Tipo:        "Aplicativo",
            Plataforma:  "iOS/Android",
            Imagem:      "https://images.unsplash.com/photo-1512941937669-90a1b58e7e9c?w=1600&q=80",
            Tecnologias: []string{"React Native", "Firebase", "Stripe", "Google Maps API"},
            Link:        "https://play.google.com",
            TipoLink:    "playstore",
            Destaque:    true,
            Ordem:       1,
        },
        {
            Titulo:      "E-commerce Fashion Store",
            Descricao:   "Loja virtual completa para moda feminina com sistema de pagamento, carrinho e painel administrativo.",
            Categoria:   "Website",
            Tipo:        "Site",
            Plataforma:  "Web",
            Imagem:      "https://images.unsplash.com/photo-1460925895917-afdab827c52f?w=800&q=80",
            Tecnologias: []string{"Next.js", "Stripe", "Tailwind CSS", "MongoDB"},
            Link:        "https://example.com",
            TipoLink:    "site",
            Ordem:       2,
        },
        {
            Titulo:      "App Fitness Tracker",
            Descricao:   "Aplicativo de acompanhamento fitness com treinos personalizados e tracking de progresso.",
            Categoria:   "Mobile",
            Tipo:        "Aplicativo",
            Plataforma:  "iOS/Android",
            Imagem:      "https://images.unsplash.com/photo-1517836357463-d25dfeac3438?w=800&q=80",
            Tecnologias: []string{"Flutter", "Firebase", "HealthKit", "Google Fit"},
            Link:        "https://apps.apple.com",
            TipoLink:    "appstore",
            Ordem:       3,
        },
        {
            Titulo:      "Portal Institucional Médico",
            Descricao:   "Website institucional para clínica médica com agendamento online e telemedicina.",
            Categoria:   "Website",
            Tipo:        "Site",
            Plataforma:  "Web",
            Imagem:      "https://images.unsplash.com/photo-1576091160399-112ba8d25d1d?w=800&q=80",
            Tecnologias: []string{"React", "Node.js", "PostgreSQL", "WebRTC"},
            Link:        "https://example.com",
            TipoLink:    "site",
            Ordem:       4,
        },
        {
            Titulo:      "App Gestão Financeira",
            Descricao:   "Controle financeiro pessoal com gráficos interativos e sincronização multi-dispositivo.",
            Categoria:   "Mobile",
            Tipo:        "Aplicativo",
            Plataforma:  "iOS/Android",
            Imagem:      "https://images.unsplash.com/photo-1554224155-6726b3ff858f?w=800&q=80",
            Tecnologias: []string{"React Native", "MongoDB", "Chart.js"},
            Link:        "https://play.google.com",
            TipoLink:    "playstore",
            Ordem:       5,
        },
        {
            Titulo:      "Landing Page Imobiliária",
            Descricao:   "Site moderno para corretora com busca avançada de imóveis e tour virtual 360°.",
            Categoria:   "Website",
            Tipo:        "Site",
            Plataforma:  "Web",
            Imagem:      "https://images.unsplash.com/photo-1560518883-ce09059eeffa?w=800&q=80",
            Tecnologias: []string{"Vue.js", "Three.js", "AWS", "Mapbox"},
            Link:        "https://example.com",
            TipoLink:    "site",
            Ordem:       6,
        },
    }
    for _, in := range seeds {
        if _, err := svc.Create(ctx, in); err != nil {
            log.Fatalf("seed projeto %q: %v", in.Titulo, err)
        }
    }
    log.Printf("%d projetos criados", len(seeds))
}

func seedOrcamentos(ctx context.Context, sqldb *sql.DB) {
    // Sem notifier: seed não dispara e-mails.
    svc := orcamentossvc.New(sqldb, nil, nil)
    seeds := []orcamentossvc.CreateInput{
        {
            Nome:             "João Silva",
            Email:            "joao@example.com",
            Telefone:         "(85) 99999-9999",
            Empresa:          "Empresa X",
            TipoServico:      "desenvolvimento-sites",
            Prazo:            "1-mes",
            Orcamento:        "5k-15k",
            DescricaoProjeto: "Preciso de um site institucional moderno para minha empresa",
        },
        {
            Nome:             "Maria Santos",
            Email:            "maria@example.com",
            Telefone:         "(85) 98888-8888",
            Empresa:          "Startup Y",
            TipoServico:      "desenvolvimento-app",
            Prazo:            "3-6-meses",
            Orcamento:        "15k-50k",
            DescricaoProjeto: "Desenvolvimento de app de delivery",
        },
    }
    for i, in := range seeds {
        o, err := svc.Create(ctx, in)
        if err != nil {
            log.Fatalf("seed orcamento %q: %v", in.Nome, err)
        }
        // O segundo entra já em análise, para a listagem de exemplo ter variedade.
        if i == 1 {
            if _, err := svc.UpdateStatus(ctx, o.ID, domain.OrcamentoEmAnalise, nil); err != nil {
                log.Fatalf("seed orcamento status: %v", err)
            }
        }
    }
    log.Printf("%d orçamentos criados", len(seeds))
}

func seedContatos(ctx context.Context, sqldb *sql.DB) {
    svc := contatossvc.New(sqldb)
    seeds := []contatossvc.CreateInput{
        {
            Nome:     "Pedro Costa",
            Email:    "pedro@example.com",
            Telefone: "(85) 97777-7777",
            Mensagem: "Gostaria de saber mais sobre os serviços de desenvolvimento web.",
        },
        {
            Nome:     "Ana Paula",
            Email:    "ana@example.com",
            Telefone: "(85) 96666-6666",
            Mensagem: "Tenho interesse em desenvolver um aplicativo mobile.",
        },
    }
    for i, in := range seeds {
        c, err := svc.Create(ctx, in)
        if err != nil {
            log.Fatalf("seed contato %q: %v", in.Nome, err)
        }
        if i == 1 {
            if _, err := svc.MarkAsRead(ctx, c.ID); err != nil {
                log.Fatalf("seed contato lido: %v", err)
            }
        }
    }
    log.Printf("%d contatos criados", len(seeds))
}
