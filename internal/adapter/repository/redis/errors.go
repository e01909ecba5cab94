package redis

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/infrastructure/metrics"
)

// storeError reports timeouts and network failures as
// domain.ErrStoreUnavailable.
func storeError(err error) error {
	if err == nil || errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return err
}

func observe(m *metrics.Metrics, operation string, err error) {
	if m == nil {
		return
	}
	m.RedisOperations.WithLabelValues(operation).Inc()
	if err != nil {
		m.RedisErrors.WithLabelValues(operation).Inc()
	}
}
