// Package notifier composes and sends outcome emails for provisioning flows.
// Sends are best effort: a transport failure is logged and counted, never
// returned to the caller.
package notifier

import (
	"context"

	"github.com/kursadbilgin/cosmos-provisioner/internal/domain"
	"github.com/kursadbilgin/cosmos-provisioner/internal/observability"
	"go.uber.org/zap"
)

// Sender delivers a composed message. Implementations: SMTP (production) or
// webhook (environments without a mail account).
type Sender interface {
	Send(ctx context.Context, subject string, body string) error
}

// Notifier renders outcome templates and hands them to the transport.
type Notifier struct {
	sender  Sender
	logger  *zap.Logger
	metrics *observability.Metrics

	// subscriptionID and resourceGroup feed the portal link in the
	// success template.
	subscriptionID string
	resourceGroup  string
	now            nowFunc
}

func New(sender Sender, subscriptionID string, resourceGroup string, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Notifier{
		sender:         sender,
		logger:         logger,
		subscriptionID: subscriptionID,
		resourceGroup:  resourceGroup,
		now:            defaultNow,
	}
}

func (n *Notifier) SetMetrics(metrics *observability.Metrics) {
	if n == nil {
		return
	}
	n.metrics = metrics
}

func (n *Notifier) CreateSucceeded(ctx context.Context, req domain.AccountRequest) {
	subject, body := createSuccessMessage(req, n.subscriptionID, n.resourceGroup, n.now())
	n.send(ctx, req.Name, "create_success", subject, body)
}

func (n *Notifier) CreateFailed(ctx context.Context, accountName string, errorText string) {
	subject, body := createFailureMessage(accountName, errorText)
	n.send(ctx, accountName, "create_failure", subject, body)
}

func (n *Notifier) DeleteSucceeded(ctx context.Context, accountName string) {
	subject, body := deleteSuccessMessage(accountName)
	n.send(ctx, accountName, "delete_success", subject, body)
}

func (n *Notifier) DeleteFailed(ctx context.Context, accountName string, errorText string) {
	subject, body := deleteFailureMessage(accountName, errorText)
	n.send(ctx, accountName, "delete_failure", subject, body)
}

func (n *Notifier) send(ctx context.Context, accountName string, kind string, subject string, body string) {
	if err := n.sender.Send(ctx, subject, body); err != nil {
		n.logger.Error("notification send failed",
			zap.String("accountName", accountName),
			zap.String("kind", kind),
			zap.Error(err),
		)
		if n.metrics != nil {
			n.metrics.IncNotificationFailed(kind)
		}
		return
	}

	n.logger.Info("notification sent",
		zap.String("accountName", accountName),
		zap.String("kind", kind),
	)
	if n.metrics != nil {
		n.metrics.IncNotificationSent(kind)
	}
}
