// Caminho: internal/config/config.go
// Resumo: Carrega e expõe variáveis de configuração do serviço a partir de variáveis de ambiente.
// Inclui defaults seguros para desenvolvimento e centraliza chaves usadas no serviço.

package config

import (
    "os"
    "strconv"
    "strings"
)

// Config representa as configurações necessárias do serviço.
type Config struct {
    DeploymentEnv string
    LogLevel      string

    // Servidor HTTP
    Port               string
    CORSAllowedOrigins []string

    // Banco de dados (Postgres/SQLite)
    DatabaseURL string

    // Redis (opcional; rate limit de login e formulários públicos)
    RedisHost string
    RedisPort int
    RedisPass string
    RedisTLS  bool
    RedisURL  string

    // Rate limit (configuráveis por env)
    LoginIPLimit            int
    LoginIPWindowMinutes    int
    LoginFailLockThreshold  int
    LoginFailLockTTLMinutes int
    FormIPLimit             int
    FormIPWindowMinutes     int

    // JWT / Segurança
    SecretKey          string
    TokenExpireSeconds int

    // E-mail (SMTP)
    EmailUsername       string
    EmailPassword       string
    EmailSMTPHost       string
    EmailSMTPPort       int
    EmailSMTPEncryption string // NONE | STARTTLS | SSL/TLS
    EmailTemplateDir    string
    EmailFromAddress    string
    EmailFromName       string
    // Caixa interna que recebe as notificações de novos orçamentos.
    EmailOrcamentos string

    // Metadados
    ServiceName string
    Version     string

    // URL pública base (frontend) para compor links em e-mails
    PublicBaseURL string
}

// getenv retorna o valor de uma variável de ambiente, ou o default se não definido.
func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// getenvInt retorna uma variável de ambiente como inteiro, ou o default se ausente/inválido.
func getenvInt(key string, def int) int {
    if v := os.Getenv(key); v != "" {
        if n, err := strconv.Atoi(v); err == nil {
            return n
        }
    }
    return def
}

// getenvBool retorna uma variável de ambiente como bool, ou o default se ausente/inválido.
func getenvBool(key string, def bool) bool {
    if v := os.Getenv(key); v != "" {
        if b, err := strconv.ParseBool(v); err == nil {
            return b
        }
    }
    return def
}

// getenvList retorna uma lista separada por vírgulas, sem itens vazios.
func getenvList(key string, def []string) []string {
    v := os.Getenv(key)
    if strings.TrimSpace(v) == "" {
        return def
    }
    parts := strings.Split(v, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        if s := strings.TrimSpace(p); s != "" {
            out = append(out, s)
        }
    }
    return out
}

// Load carrega as variáveis de configuração a partir do ambiente e devolve uma instância de Config.
func Load() *Config {
    return &Config{
        DeploymentEnv: getenv("DEPLOYMENT_ENVIRONMENT", "development"),
        LogLevel:      getenv("LOG_LEVEL", "INFO"),

        Port:               getenv("PORT", "3001"),
        CORSAllowedOrigins: getenvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),

        DatabaseURL: getenv("DATABASE_URL", ""),

        RedisHost: getenv("REDIS_HOST", ""),
        RedisPort: getenvInt("REDIS_PORT", 0),
        RedisPass: getenv("REDIS_PASSWORD", ""),
        RedisTLS:  getenvBool("REDIS_USE_TLS", false),
        RedisURL:  getenv("REDIS_URL", ""),

        // Defaults: login IP 20/5min; lock >=5 falhas por 15min; formulários 10/10min
        LoginIPLimit:            getenvInt("LOGIN_IP_LIMIT", 20),
        LoginIPWindowMinutes:    getenvInt("LOGIN_IP_WINDOW_MINUTES", 5),
        LoginFailLockThreshold:  getenvInt("LOGIN_FAIL_LOCK_THRESHOLD", 5),
        LoginFailLockTTLMinutes: getenvInt("LOGIN_FAIL_LOCK_TTL_MINUTES", 15),
        FormIPLimit:             getenvInt("FORM_IP_LIMIT", 10),
        FormIPWindowMinutes:     getenvInt("FORM_IP_WINDOW_MINUTES", 10),

        SecretKey:          getenv("SECRET_KEY", "change-me"),
        TokenExpireSeconds: getenvInt("TOKEN_EXPIRE_SECONDS", 86400),

        EmailUsername:       getenv("EMAIL_SERVER_USERNAME", ""),
        EmailPassword:       getenv("EMAIL_SERVER_PASSWORD", ""),
        EmailSMTPHost:       getenv("EMAIL_SERVER_SMTP_HOST", ""),
        EmailSMTPPort:       getenvInt("EMAIL_SERVER_SMTP_PORT", 587),
        EmailSMTPEncryption: getenv("EMAIL_SERVER_SMTP_ENCRYPTION", "STARTTLS"),
        EmailTemplateDir:    getenv("EMAIL_SERVER_TEMPLATE_DIR", ""),
        EmailFromAddress:    getenv("EMAIL_FROM_ADDRESS", getenv("EMAIL_SERVER_USERNAME", "")),
        EmailFromName:       getenv("EMAIL_FROM_NAME", "Site Logic"),
        EmailOrcamentos:     getenv("EMAIL_ORCAMENTOS", getenv("EMAIL_SERVER_USERNAME", "")),

        ServiceName: getenv("OTEL_SERVICE_NAME", "site_api"),
        Version:     getenv("SERVICE_VERSION", "0.1.0"),

        PublicBaseURL: getenv("PUBLIC_BASE_URL", ""),
    }
}
