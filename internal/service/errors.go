package service

import (
	"errors"

	"github.com/storyboarder/ai-service/internal/apperr"
	"github.com/storyboarder/ai-service/internal/client"
)

var (
	ErrJobNotFound        = errors.New("job not found")
	ErrJobNotCompleted    = errors.New("job not completed")
	ErrJobAlreadyFinished = errors.New("job already finished")
)

// upstreamError classifies a provider failure once, keeping the provider's
// own message when it sent one.
func upstreamError(err error, fallback string) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if msg, ok := client.ProviderMessage(err); ok {
		return apperr.Upstream(msg, err)
	}
	return apperr.Upstream(fallback, err)
}
