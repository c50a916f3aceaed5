// Caminho: internal/services/projects/service.go
// Resumo: CRUD do portfólio de projetos exibido no site. Tecnologias são mantidas
// como JSON na coluna texto; listagens públicas ordenam por "ordem".

package projectssvc

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/sitelogic/site_api/internal/db"
    "github.com/sitelogic/site_api/internal/domain"
)

type Service struct {
    DB *sql.DB
}

func New(sqldb *sql.DB) *Service {
    return &Service{DB: sqldb}
}

// CreateInput carrega os campos aceitos na criação de um projeto.
type CreateInput struct {
    Titulo      string   `json:"titulo"`
    Descricao   string   `json:"descricao"`
    Categoria   string   `json:"categoria"`
    Tipo        string   `json:"tipo"`
    Plataforma  string   `json:"plataforma"`
    Imagem      string   `json:"imagem"`
    Tecnologias []string `json:"tecnologias"`
    Link        string   `json:"link"`
    TipoLink    string   `json:"tipoLink"`
    Repositorio string   `json:"repositorio"`
    Destaque    bool     `json:"destaque"`
    Ativo       *bool    `json:"ativo"`
    Ordem       int      `json:"ordem"`
}

// UpdateInput usa ponteiros para permitir updates parciais.
type UpdateInput struct {
    Titulo      *string   `json:"titulo"`
    Descricao   *string   `json:"descricao"`
    Categoria   *string   `json:"categoria"`
    Tipo        *string   `json:"tipo"`
    Plataforma  *string   `json:"plataforma"`
    Imagem      *string   `json:"imagem"`
    Tecnologias *[]string `json:"tecnologias"`
    Link        *string   `json:"link"`
    TipoLink    *string   `json:"tipoLink"`
    Repositorio *string   `json:"repositorio"`
    Destaque    *bool     `json:"destaque"`
    Ativo       *bool     `json:"ativo"`
    Ordem       *int      `json:"ordem"`
}

const projectCols = `id, titulo, descricao, categoria, tipo, plataforma, imagem, tecnologias, link, tipo_link, repositorio, destaque, ativo, ordem, created_at, updated_at`

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Project, error) {
    for campo, valor := range map[string]string{
        "titulo": in.Titulo, "descricao": in.Descricao, "categoria": in.Categoria,
        "tipo": in.Tipo, "plataforma": in.Plataforma,
    } {
        if strings.TrimSpace(valor) == "" {
            return domain.Project{}, domain.NewValidationError(campo+" é obrigatório")
        }
    }
    ativo := true
    if in.Ativo != nil {
        ativo = *in.Ativo
    }
    tecs, err := encodeTecnologias(in.Tecnologias)
    if err != nil {
        return domain.Project{}, err
    }

    now := time.Now().UTC()
    args := []any{in.Titulo, in.Descricao, in.Categoria, in.Tipo, in.Plataforma, in.Imagem, tecs, in.Link, in.TipoLink, in.Repositorio, in.Destaque, ativo, in.Ordem, now, now}
    var id int64
    if db.IsPostgres() {
        q := db.Rebind(`INSERT INTO projects (titulo, descricao, categoria, tipo, plataforma, imagem, tecnologias, link, tipo_link, repositorio, destaque, ativo, ordem, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?) RETURNING id`)
        if err := s.DB.QueryRowContext(ctx, q, args...).Scan(&id); err != nil {
            return domain.Project{}, err
        }
    } else {
        res, err := s.DB.ExecContext(ctx, db.Rebind(`INSERT INTO projects (titulo, descricao, categoria, tipo, plataforma, imagem, tecnologias, link, tipo_link, repositorio, destaque, ativo, ordem, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`), args...)
        if err != nil {
            return domain.Project{}, err
        }
        id, _ = res.LastInsertId()
    }
    return s.FindOne(ctx, id)
}

// FindAll lista projetos; quando somenteAtivos é true filtra para o site público.
// Ordena por ordem crescente e desempata pelos mais recentes.
func (s *Service) FindAll(ctx context.Context, somenteAtivos bool) ([]domain.Project, error) {
    q := `SELECT ` + projectCols + ` FROM projects`
    args := []any{}
    if somenteAtivos {
        q += ` WHERE ativo = ?`
        args = append(args, true)
    }
    q += ` ORDER BY ordem ASC, created_at DESC, id DESC`

    rows, err := s.DB.QueryContext(ctx, db.Rebind(q), args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := []domain.Project{}
    for rows.Next() {
        p, err := scanProject(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    return out, rows.Err()
}

func (s *Service) FindOne(ctx context.Context, id int64) (domain.Project, error) {
    row := s.DB.QueryRowContext(ctx, db.Rebind(`SELECT `+projectCols+` FROM projects WHERE id = ? LIMIT 1`), id)
    p, err := scanProject(row)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return domain.Project{}, domain.ErrNotFound
        }
        return domain.Project{}, err
    }
    return p, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (domain.Project, error) {
    if _, err := s.FindOne(ctx, id); err != nil {
        return domain.Project{}, err
    }

    sets := []string{}
    args := []any{}
    add := func(col string, v any) {
        sets = append(sets, col+" = ?")
        args = append(args, v)
    }
    if in.Titulo != nil {
        add("titulo", *in.Titulo)
    }
    if in.Descricao != nil {
        add("descricao", *in.Descricao)
    }
    if in.Categoria != nil {
        add("categoria", *in.Categoria)
    }
    if in.Tipo != nil {
        add("tipo", *in.Tipo)
    }
    if in.Plataforma != nil {
        add("plataforma", *in.Plataforma)
    }
    if in.Imagem != nil {
        add("imagem", *in.Imagem)
    }
    if in.Tecnologias != nil {
        tecs, err := encodeTecnologias(*in.Tecnologias)
        if err != nil {
            return domain.Project{}, err
        }
        add("tecnologias", tecs)
    }
    if in.Link != nil {
        add("link", *in.Link)
    }
    if in.TipoLink != nil {
        add("tipo_link", *in.TipoLink)
    }
    if in.Repositorio != nil {
        add("repositorio", *in.Repositorio)
    }
    if in.Destaque != nil {
        add("destaque", *in.Destaque)
    }
    if in.Ativo != nil {
        add("ativo", *in.Ativo)
    }
    if in.Ordem != nil {
        add("ordem", *in.Ordem)
    }
    if len(sets) > 0 {
        add("updated_at", time.Now().UTC())
        args = append(args, id)
        q := db.Rebind(fmt.Sprintf(`UPDATE projects SET %s WHERE id = ?`, strings.Join(sets, ", ")))
        if _, err := s.DB.ExecContext(ctx, q, args...); err != nil {
            return domain.Project{}, err
        }
    }
    return s.FindOne(ctx, id)
}

// Remove exclui o projeto definitivamente.
func (s *Service) Remove(ctx context.Context, id int64) error {
    res, err := s.DB.ExecContext(ctx, db.Rebind(`DELETE FROM projects WHERE id = ?`), id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return domain.ErrNotFound
    }
    return nil
}

type rowScanner interface {
    Scan(dest ...any) error
}

func scanProject(row rowScanner) (domain.Project, error) {
    var (
        p    domain.Project
        tecs string
    )
    err := row.Scan(&p.ID, &p.Titulo, &p.Descricao, &p.Categoria, &p.Tipo, &p.Plataforma, &p.Imagem, &tecs, &p.Link, &p.TipoLink, &p.Repositorio, &p.Destaque, &p.Ativo, &p.Ordem, &p.CreatedAt, &p.UpdatedAt)
    if err != nil {
        return domain.Project{}, err
    }
    p.Tecnologias = []string{}
    if tecs != "" {
        if err := json.Unmarshal([]byte(tecs), &p.Tecnologias); err != nil {
            return domain.Project{}, fmt.Errorf("tecnologias inválidas no projeto %d: %w", p.ID, err)
        }
    }
    return p, nil
}

func encodeTecnologias(tecs []string) (string, error) {
    if tecs == nil {
        tecs = []string{}
    }
    for _, t := range tecs {
        if strings.TrimSpace(t) == "" {
            return "", domain.NewValidationError("tecnologias não pode conter entradas vazias")
        }
    }
    b, err := json.Marshal(tecs)
    if err != nil {
        return "", err
    }
    return string(b), nil
}
