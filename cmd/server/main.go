// Caminho: cmd/server/main.go
// Resumo: Servidor HTTP local para desenvolvimento. Encapsula o handler compartilhado
// e expõe a API na porta configurada (PORT, default 3001).

package main

import (
    "log"
    "net/http"
    "os"

    "github.com/sitelogic/site_api/pkg/httpapi"
)

// main inicia um servidor HTTP local e encaminha todas as rotas para o handler da API.
func main() {
    http.HandleFunc("/", httpapi.Handler)
    port := os.Getenv("PORT")
    if port == "" {
        port = "3001"
    }
    addr := ":" + port
    log.Printf("API iniciada em http://localhost%v", addr)
    if err := http.ListenAndServe(addr, nil); err != nil {
        log.Fatalf("server error: %v", err)
    }
}
