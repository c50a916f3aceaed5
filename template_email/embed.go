// Caminho: template_email/embed.go
// Resumo: Templates de e-mail embutidos no binário.

package template_email

import "embed"

// FS expõe os templates HTML embutidos.
//
//go:embed *.html
var FS embed.FS
