// Caminho: api/index.go
// Resumo: Ponto de entrada serverless (Vercel). Apenas reexporta o handler compartilhado.

package handler

import (
    "net/http"

    "github.com/sitelogic/site_api/pkg/httpapi"
)

// Handler é o ponto de entrada exigido pelo runtime Go da Vercel.
func Handler(w http.ResponseWriter, r *http.Request) {
    httpapi.Handler(w, r)
}
