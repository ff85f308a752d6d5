// Package digest composes the weekly herd digest and delivers it over WhatsApp.
package digest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/domain/models"
	"github.com/mamadbah2/feedlot/internal/engine"
	"github.com/mamadbah2/feedlot/internal/service/accounting"
	client "github.com/mamadbah2/feedlot/pkg/clients/whatsapp"
)

const (
	dateLayout  = "2006-01-02"
	sendTimeout = 10 * time.Second
)

// ErrNoRecipient is returned when neither the request nor the configuration
// names a recipient.
var ErrNoRecipient = errors.New("digest recipient is not configured")

// Reporter is the part of the accounting service the digest reads from.
type Reporter interface {
	CostReport(ctx context.Context, farmID string) (*accounting.CostReport, error)
	Project(ctx context.Context, farmID string, params engine.ProjectionParams) (*accounting.ProjectionReport, error)
}

// Service builds and sends herd digests.
type Service struct {
	reporter  Reporter
	client    client.Client
	recipient string
	params    engine.ProjectionParams
	logger    *zap.Logger
}

// NewService wires a digest service. params are the projection defaults the
// digest reports profit under.
func NewService(reporter Reporter, whatsappClient client.Client, recipient string, params engine.ProjectionParams, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reporter:  reporter,
		client:    whatsappClient,
		recipient: recipient,
		params:    params,
		logger:    logger,
	}
}

// Compose renders the digest of one farm: head count, total cost, average
// cost per group and the projected profit under the default parameters.
func (s *Service) Compose(ctx context.Context, farmID string) (string, error) {
	costs, err := s.reporter.CostReport(ctx, farmID)
	if err != nil {
		return "", fmt.Errorf("cost report: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Herd digest %s (%s)\n", farmID, costs.AsOf.Format(dateLayout))
	fmt.Fprintf(&b, "Animals: %d\n", len(costs.Animals))
	fmt.Fprintf(&b, "Total cost: %s\n", costs.Total.StringFixed(2))

	if len(costs.Groups) > 0 {
		b.WriteString("Average cost per group:\n")
		for _, g := range costs.Groups {
			fmt.Fprintf(&b, "- %s: %s (%d head)\n", g.GroupID, g.AverageTotal.StringFixed(2), g.AnimalCount)
		}
	}

	projection, err := s.reporter.Project(ctx, farmID, s.params)
	if err != nil {
		if !errors.Is(err, engine.ErrInvalidProjection) {
			return "", fmt.Errorf("projection: %w", err)
		}
		s.logger.Warn("digest projection defaults are invalid", zap.String("farm_id", farmID), zap.Error(err))
		b.WriteString("Projection: not configured.")
		return b.String(), nil
	}

	summary := projection.Summary
	if summary.Count == 0 {
		b.WriteString("Projection: no active animals.")
		return b.String(), nil
	}
	fmt.Fprintf(&b, "Projected profit (%s): %s total, %s per head over %d animals.",
		describeTarget(s.params), summary.TotalProfit.StringFixed(2), summary.AverageProfit.StringFixed(2), summary.Count)
	return b.String(), nil
}

// Send delivers a single text message.
func (s *Service) Send(ctx context.Context, req models.OutboundMessageRequest) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         req.To,
		Body:       req.Message,
		PreviewURL: req.PreviewURL,
	})
	return err
}

// SendDigest composes the digest of farmID and sends it to "to", or to the
// configured recipient when "to" is empty.
func (s *Service) SendDigest(ctx context.Context, farmID, to string) error {
	if to == "" {
		to = s.recipient
	}
	if to == "" {
		return ErrNoRecipient
	}

	message, err := s.Compose(ctx, farmID)
	if err != nil {
		return err
	}
	if len(message) > client.MaxBodyLength {
		message = message[:client.MaxBodyLength]
	}

	if err := s.Send(ctx, models.OutboundMessageRequest{To: to, Message: message}); err != nil {
		return fmt.Errorf("send digest for farm %s: %w", farmID, err)
	}
	s.logger.Info("digest sent", zap.String("farm_id", farmID), zap.String("to", to))
	return nil
}

func describeTarget(p engine.ProjectionParams) string {
	if p.Mode == engine.TargetDate {
		return "sale on " + p.TargetDate.Format(dateLayout)
	}
	return fmt.Sprintf("target %.0f kg", p.TargetWeightKg)
}
