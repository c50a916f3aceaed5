// Caminho: internal/identity/provider.go
// Resumo: Provisionamento de identidade externa como capacidade plugável.
// O provider local é o default e gera um UID placeholder; falhas de um provider
// externo nunca bloqueiam a criação do usuário.

package identity

import (
    "context"

    "github.com/google/uuid"
)

// Provider provisiona um identificador externo (UID) para um novo usuário.
type Provider interface {
    // ProvisionUID devolve o UID a associar ao usuário recém-criado.
    ProvisionUID(ctx context.Context, email, nome string) (string, error)
}

// Local é o provider default: não fala com nenhum serviço externo e gera um
// identificador placeholder localmente.
type Local struct{}

// NewLocal cria o provider local.
func NewLocal() Local { return Local{} }

// ProvisionUID gera um UID placeholder com prefixo local_.
func (Local) ProvisionUID(ctx context.Context, email, nome string) (string, error) {
    return "local_" + uuid.NewString(), nil
}
