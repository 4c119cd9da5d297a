package services

import (
	"context"
	"time"

	"github.com/parkonomy/kiosk-backend/pkg/payment"
	"github.com/parkonomy/kiosk-backend/pkg/resultbus"
	"go.uber.org/zap"
)

// PaymentTerminal is the subset of the terminal client the bridge needs
type PaymentTerminal interface {
	Mode() string
	MakePayment(ctx context.Context, req payment.Request) (*payment.Response, error)
	CancelTransaction(ctx context.Context) error
	RedirectURL(req payment.Request) (string, error)
}

var _ PaymentTerminal = (*payment.Client)(nil)

// PaymentHandoff tells the kiosk how the payment continues. RedirectURL is
// set in redirect mode; in direct mode the terminal is already charging.
type PaymentHandoff struct {
	Reference   string `json:"reference"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

type paymentBridge struct {
	terminal      PaymentTerminal
	bus           resultbus.Bus
	logger        *zap.Logger
	cancelTimeout time.Duration
}

// NewPaymentBridge creates a new PaymentBridge implementation
func NewPaymentBridge(terminal PaymentTerminal, bus resultbus.Bus, logger *zap.Logger) PaymentBridge {
	return &paymentBridge{
		terminal:      terminal,
		bus:           bus,
		logger:        logger,
		cancelTimeout: 10 * time.Second,
	}
}

// Initiate starts a payment. In direct mode the terminal call runs in the
// background and its outcome is published on the bus like a callback would be.
func (b *paymentBridge) Initiate(ctx context.Context, reference string, amount int64) (*PaymentHandoff, error) {
	req := payment.Request{Amount: amount, ClientReference: reference}
	paymentsTotal.WithLabelValues("initiated").Inc()

	if b.terminal.Mode() == payment.ModeRedirect {
		u, err := b.terminal.RedirectURL(req)
		if err != nil {
			return nil, err
		}
		b.logger.Info("Payment handed to terminal page", zap.String("reference", reference), zap.Int64("amount", amount))
		return &PaymentHandoff{Reference: reference, RedirectURL: u}, nil
	}

	go b.charge(req)
	return &PaymentHandoff{Reference: reference}, nil
}

// charge runs outside any request context; the terminal client enforces its own timeout.
func (b *paymentBridge) charge(req payment.Request) {
	result := resultbus.Result{ClientReference: req.ClientReference}

	resp, err := b.terminal.MakePayment(context.Background(), req)
	if err != nil {
		b.logger.Warn("Payment request failed", zap.String("reference", req.ClientReference), zap.Error(err))
		result.Reason = "Payment terminal unavailable"
	} else {
		result.TransactionStatus = resp.TransactionStatus
	}

	if err := b.bus.Publish(context.Background(), result); err != nil {
		b.logger.Error("Failed to publish payment result", zap.String("reference", req.ClientReference), zap.Error(err))
	}
}

// Cancel is fire-and-forget
func (b *paymentBridge) Cancel(ctx context.Context, reference string) {
	paymentsTotal.WithLabelValues("cancelled").Inc()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.cancelTimeout)
	defer cancel()
	if err := b.terminal.CancelTransaction(ctx); err != nil {
		b.logger.Warn("Error cancelling transaction", zap.String("reference", reference), zap.Error(err))
		return
	}
	b.logger.Info("Transaction cancelled", zap.String("reference", reference))
}

// Deliver publishes a terminal callback result
func (b *paymentBridge) Deliver(ctx context.Context, result resultbus.Result) error {
	return b.bus.Publish(ctx, result)
}
