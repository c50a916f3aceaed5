// Caminho: internal/services/email/queue.go
// Resumo: Fila interna de envio de e-mails. O caminho de escrita nunca espera pelo envio:
// o job entra na fila e um worker em background tenta entregar com retry limitado.

package emailsvc

import (
    "context"
    "sync"
    "time"

    "github.com/sitelogic/site_api/internal/contants"
)

// Job é uma unidade de envio enfileirada no dispatcher.
type Job struct {
    // Desc identifica o job nos logs (ex.: "novo orcamento 12").
    Desc string
    // Send executa o envio propriamente dito.
    Send func(ctx context.Context) error
}

// Dispatcher consome jobs de e-mail em background com retry limitado.
// Falha definitiva é apenas logada; nunca propaga ao caminho da requisição.
type Dispatcher struct {
    jobs    chan Job
    logf    func(format string, args ...any)
    timeout time.Duration

    wg       sync.WaitGroup
    stopOnce sync.Once
}

// NewDispatcher cria e inicia o dispatcher com um único worker.
// logf recebe mensagens de falha (formato printf).
func NewDispatcher(buffer int, sendTimeout time.Duration, logf func(format string, args ...any)) *Dispatcher {
    if buffer <= 0 {
        buffer = 64
    }
    if sendTimeout <= 0 {
        sendTimeout = 20 * time.Second
    }
    if logf == nil {
        logf = func(string, ...any) {}
    }
    d := &Dispatcher{
        jobs:    make(chan Job, buffer),
        logf:    logf,
        timeout: sendTimeout,
    }
    d.wg.Add(1)
    go d.run()
    return d
}

// Enqueue entrega o job à fila sem bloquear. Se a fila estiver cheia o job é
// descartado com log; a criação do registro que o originou já foi confirmada.
func (d *Dispatcher) Enqueue(job Job) {
    select {
    case d.jobs <- job:
    default:
        d.logf("email queue cheia, descartando job %q", job.Desc)
    }
}

// Close interrompe o worker após drenar os jobs já enfileirados.
func (d *Dispatcher) Close() {
    d.stopOnce.Do(func() { close(d.jobs) })
    d.wg.Wait()
}

// run consome a fila, tentando cada job até contants.EmailMaxAttempts vezes.
func (d *Dispatcher) run() {
    defer d.wg.Done()
    for job := range d.jobs {
        d.attempt(job)
    }
}

func (d *Dispatcher) attempt(job Job) {
    for tent := 1; tent <= contants.EmailMaxAttempts; tent++ {
        ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
        err := job.Send(ctx)
        cancel()
        if err == nil {
            return
        }
        if tent == contants.EmailMaxAttempts {
            d.logf("email %q falhou após %d tentativas: %v", job.Desc, tent, err)
            return
        }
        d.logf("email %q falhou (tentativa %d): %v", job.Desc, tent, err)
        time.Sleep(time.Duration(tent) * 2 * time.Second)
    }
}
