package audit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const writeTimeout = 5 * time.Second

// AuditLogger writes entries in the background so a slow or failing audit
// store never delays or fails the request being audited.
type AuditLogger struct {
	service *Service
	wg      sync.WaitGroup
}

func NewAuditLogger(service *Service) *AuditLogger {
	return &AuditLogger{
		service: service,
	}
}

// Log queues entry for writing. The request context is detached so the write
// survives the end of the request.
func (l *AuditLogger) Log(ctx context.Context, entry Entry) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		defer cancel()

		if err := l.service.Log(writeCtx, entry); err != nil {
			log.Error().
				Err(err).
				Str("action", entry.Action).
				Str("entity_type", entry.EntityType).
				Msg("Failed to write audit log")
		}
	}()
}

// LogSync writes entry before returning.
func (l *AuditLogger) LogSync(ctx context.Context, entry Entry) error {
	return l.service.Log(ctx, entry)
}

// Wait blocks until every queued entry has been written.
func (l *AuditLogger) Wait() {
	l.wg.Wait()
}
