package payment

import (
	"context"
	"encoding/json"
	"log/slog"

	"trailer-rental/internal/domain/payment"
	"trailer-rental/internal/pkg/config"
	"trailer-rental/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const minorUnits = 100

const metadataPaymentIntent = "payment_intent"

type paymentIntents interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Capture(id string, params *stripe.PaymentIntentCaptureParams) (*stripe.PaymentIntent, error)
	Cancel(id string, params *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error)
}

type invoices interface {
	New(params *stripe.InvoiceParams) (*stripe.Invoice, error)
}

type invoiceItems interface {
	New(params *stripe.InvoiceItemParams) (*stripe.InvoiceItem, error)
}

type customers interface {
	New(params *stripe.CustomerParams) (*stripe.Customer, error)
}

// StripeProcessor places manual-capture holds with Stripe PaymentIntents.
type StripeProcessor struct {
	intents       paymentIntents
	invoices      invoices
	invoiceItems  invoiceItems
	customers     customers
	webhookSecret string
	logger        *slog.Logger
}

func NewStripeProcessor(cfg config.Config, logger *slog.Logger) *StripeProcessor {
	api := client.New(cfg.Payment.SecretKey, nil)
	return &StripeProcessor{
		intents:       api.PaymentIntents,
		invoices:      api.Invoices,
		invoiceItems:  api.InvoiceItems,
		customers:     api.Customers,
		webhookSecret: cfg.Payment.WebhookSecret,
		logger:        logger,
	}
}

func (p *StripeProcessor) Authorize(ctx context.Context, req payment.AuthorizationRequest) (*payment.Authorization, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount * minorUnits),
		Currency:           stripe.String(req.Currency),
		CaptureMethod:      stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Metadata:           req.Metadata,
	}
	if req.CustomerRef != "" {
		params.Customer = stripe.String(req.CustomerRef)
	}
	params.Context = ctx

	pi, err := p.intents.New(params)
	if err != nil {
		return nil, p.translate(ctx, "authorize", err)
	}
	return &payment.Authorization{Handle: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// Capture takes amount from the hold, or the whole capturable amount when the
// hold is smaller.
func (p *StripeProcessor) Capture(ctx context.Context, handle string, amount int64, _ string) (*payment.CaptureResult, error) {
	get := &stripe.PaymentIntentParams{}
	get.Context = ctx
	pi, err := p.intents.Get(handle, get)
	if err != nil {
		return nil, p.translate(ctx, "capture", err)
	}
	if pi.Status != stripe.PaymentIntentStatusRequiresCapture {
		return nil, errs.NewPaymentError(errs.PaymentInvalidState,
			errs.Newf("payment intent %s is %s", pi.ID, pi.Status))
	}

	toCapture := min(amount*minorUnits, pi.AmountCapturable)
	if toCapture <= 0 {
		return nil, errs.NewPaymentError(errs.PaymentInvalidState,
			errs.Newf("payment intent %s has nothing capturable", pi.ID))
	}

	params := &stripe.PaymentIntentCaptureParams{AmountToCapture: stripe.Int64(toCapture)}
	params.Context = ctx
	captured, err := p.intents.Capture(handle, params)
	if err != nil {
		return nil, p.translate(ctx, "capture", err)
	}

	result := &payment.CaptureResult{CaptureID: captured.ID, Amount: toCapture / minorUnits}
	if captured.LatestCharge != nil && captured.LatestCharge.ID != "" {
		result.CaptureID = captured.LatestCharge.ID
	}
	if captured.Customer != nil {
		result.CustomerRef = captured.Customer.ID
	}
	return result, nil
}

// CreateInvoice opens an automatically collected invoice for the rental and
// adds the outstanding amount as its line item.
func (p *StripeProcessor) CreateInvoice(ctx context.Context, req payment.InvoiceRequest) (string, error) {
	if req.CustomerRef == "" {
		return "", errs.Newf("payment intent %s has no customer to invoice", req.AuthorizationID)
	}
	metadata := map[string]string{
		metadataPaymentIntent:         req.AuthorizationID,
		payment.MetadataReservationID: req.ReservationID.String(),
	}
	params := &stripe.InvoiceParams{
		Customer:         stripe.String(req.CustomerRef),
		AutoAdvance:      stripe.Bool(true),
		CollectionMethod: stripe.String(string(stripe.InvoiceCollectionMethodChargeAutomatically)),
		Metadata:         metadata,
	}
	params.Context = ctx

	inv, err := p.invoices.New(params)
	if err != nil {
		return "", p.translate(ctx, "create invoice", err)
	}
	if req.Outstanding <= 0 {
		return inv.ID, nil
	}

	item := &stripe.InvoiceItemParams{
		Customer:    stripe.String(req.CustomerRef),
		Invoice:     stripe.String(inv.ID),
		Amount:      stripe.Int64(req.Outstanding * minorUnits),
		Currency:    stripe.String(req.Currency),
		Description: stripe.String("Rental extension beyond the card hold"),
		Metadata:    metadata,
	}
	item.Context = ctx
	if _, err := p.invoiceItems.New(item); err != nil {
		return "", p.translate(ctx, "add outstanding invoice item", err)
	}
	return inv.ID, nil
}

func (p *StripeProcessor) VoidAuthorization(ctx context.Context, handle string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	if _, err := p.intents.Cancel(handle, params); err != nil {
		return p.translate(ctx, "void authorization", err)
	}
	return nil
}

func (p *StripeProcessor) CreateCustomer(ctx context.Context, profile payment.CustomerProfile) (string, error) {
	params := &stripe.CustomerParams{
		Name:  stripe.String(profile.Name),
		Email: stripe.String(profile.Email),
		Phone: stripe.String(profile.Phone),
		Address: &stripe.AddressParams{
			Line1:      stripe.String(profile.Street),
			City:       stripe.String(profile.City),
			PostalCode: stripe.String(profile.PostalCode),
			Country:    stripe.String(profile.Country),
		},
		Metadata: map[string]string{payment.MetadataUserID: profile.UserID.String()},
	}
	params.Context = ctx

	c, err := p.customers.New(params)
	if err != nil {
		return "", p.translate(ctx, "create customer", err)
	}
	return c.ID, nil
}

// ParseWebhook verifies the Stripe-Signature header and maps the event onto
// the lifecycle's closed event set. Other event types return
// ErrUnsupportedEvent.
func (p *StripeProcessor) ParseWebhook(payload []byte, signature string) (payment.WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, errs.Wrap(err, "verify webhook signature")
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentAmountCapturableUpdated, stripe.EventTypePaymentIntentSucceeded:
		pi, reservationID, err := decodeIntent(event)
		if err != nil {
			return nil, err
		}
		return payment.AuthorizationSucceeded{
			ID:              event.ID,
			AuthorizationID: pi.ID,
			ReservationID:   reservationID,
		}, nil
	case stripe.EventTypePaymentIntentPaymentFailed:
		pi, reservationID, err := decodeIntent(event)
		if err != nil {
			return nil, err
		}
		failed := payment.AuthorizationFailed{
			ID:              event.ID,
			AuthorizationID: pi.ID,
			ReservationID:   reservationID,
		}
		if pi.LastPaymentError != nil {
			failed.FailureMessage = string(pi.LastPaymentError.Code)
			if failed.FailureMessage == "" {
				failed.FailureMessage = pi.LastPaymentError.Msg
			}
		}
		return failed, nil
	default:
		return nil, errs.Wrapf(payment.ErrUnsupportedEvent, "event type %s", event.Type)
	}
}

// decodeIntent reads the PaymentIntent out of the event. A missing or
// malformed reservation id leaves uuid.Nil so the lookup falls back to the
// authorization id.
func decodeIntent(event stripe.Event) (*stripe.PaymentIntent, uuid.UUID, error) {
	if event.Data == nil {
		return nil, uuid.Nil, errs.Newf("event %s has no data", event.ID)
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, uuid.Nil, errs.Wrapf(err, "decode payment intent in event %s", event.ID)
	}
	reservationID, err := uuid.Parse(pi.Metadata[payment.MetadataReservationID])
	if err != nil {
		return &pi, uuid.Nil, nil
	}
	return &pi, reservationID, nil
}

// translate maps a Stripe API error onto the payment failure taxonomy.
func (p *StripeProcessor) translate(ctx context.Context, op string, err error) error {
	var stripeErr *stripe.Error
	if !errs.As(err, &stripeErr) {
		if ctx.Err() != nil {
			return errs.NewPaymentError(errs.PaymentTimeout, errs.Wrap(err, op))
		}
		return errs.NewPaymentError(errs.PaymentProcessorError, errs.Wrap(err, op))
	}

	p.logger.WarnContext(ctx, "stripe request failed",
		slog.String("operation", op),
		slog.String("type", string(stripeErr.Type)),
		slog.String("code", string(stripeErr.Code)),
		slog.Int("status", stripeErr.HTTPStatusCode),
		slog.String("request_id", stripeErr.RequestID))

	switch {
	case stripeErr.Type == stripe.ErrorTypeCard:
		return errs.NewPaymentError(errs.PaymentDeclined, errs.Wrap(err, op))
	case stripeErr.Code == stripe.ErrorCodePaymentIntentUnexpectedState:
		return errs.NewPaymentError(errs.PaymentInvalidState, errs.Wrap(err, op))
	default:
		return errs.NewPaymentError(errs.PaymentProcessorError, errs.Wrap(err, op))
	}
}
