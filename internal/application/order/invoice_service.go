package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/destocard/backend/internal/domain/address"
	"github.com/destocard/backend/internal/domain/identity"
	"github.com/destocard/backend/internal/domain/order"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/destocard/backend/internal/infrastructure/printing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvoiceUnpaid is returned for invoices of orders that were not paid
var ErrInvoiceUnpaid = shared.NewDomainError(shared.ErrInvalidState.Code, "La facture n'est disponible que pour une commande payée")

// InvoiceService builds the PDF invoice of a completed order
type InvoiceService struct {
	userRepo    identity.UserRepository
	addressRepo address.AddressRepository
	template    *printing.InvoiceTemplate
	renderer    printing.PDFRenderer
	logger      *zap.Logger
}

// NewInvoiceService creates an invoice service
func NewInvoiceService(
	userRepo identity.UserRepository,
	addressRepo address.AddressRepository,
	template *printing.InvoiceTemplate,
	renderer printing.PDFRenderer,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		userRepo:    userRepo,
		addressRepo: addressRepo,
		template:    template,
		renderer:    renderer,
		logger:      logger,
	}
}

// Render returns the invoice of o as PDF
func (s *InvoiceService) Render(ctx context.Context, o *order.Order) ([]byte, error) {
	data, err := s.BuildData(ctx, o)
	if err != nil {
		return nil, err
	}
	html, err := s.template.Render(data)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	pdf, err := s.renderer.Render(ctx, html)
	if err != nil {
		s.logger.Error("Invoice rendering failed",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
		return nil, err
	}
	s.logger.Debug("Invoice rendered",
		zap.String("reference", o.Reference),
		zap.Duration("duration", time.Since(start)))
	return pdf, nil
}

// BuildData gathers buyer, address and seller names for the invoice of o
func (s *InvoiceService) BuildData(ctx context.Context, o *order.Order) (printing.InvoiceData, error) {
	if o.Status != order.StatusCompleted {
		return printing.InvoiceData{}, ErrInvoiceUnpaid
	}

	buyer, err := s.userRepo.FindByID(ctx, o.BuyerID)
	if err != nil {
		return printing.InvoiceData{}, err
	}

	data := printing.InvoiceData{
		Reference:  o.Reference,
		IssuedAt:   o.CreatedAt,
		PaidAt:     o.PaidAt,
		BuyerName:  buyer.FullName(),
		BuyerEmail: buyer.Email,
		Total:      o.Total,
		Currency:   strings.ToUpper(o.Currency),
	}

	if o.ShippingAddressID != nil {
		addr, err := s.addressRepo.FindByID(ctx, *o.ShippingAddressID)
		switch {
		case err == nil:
			data.AddressLines = addressLines(addr)
		case errors.Is(err, shared.ErrNotFound):
			// Deleted since checkout; the invoice is still valid without it.
		default:
			return printing.InvoiceData{}, err
		}
	}

	sellers, err := s.sellerNames(ctx, o)
	if err != nil {
		return printing.InvoiceData{}, err
	}
	for _, it := range o.Items {
		data.Lines = append(data.Lines, printing.InvoiceLine{
			Title:     it.Title,
			Seller:    sellers[it.SellerID],
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return data, nil
}

func (s *InvoiceService) sellerNames(ctx context.Context, o *order.Order) (map[uuid.UUID]string, error) {
	ids := make([]uuid.UUID, 0, len(o.Items))
	seen := make(map[uuid.UUID]bool, len(o.Items))
	for _, it := range o.Items {
		if !seen[it.SellerID] {
			seen[it.SellerID] = true
			ids = append(ids, it.SellerID)
		}
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}

func addressLines(a *address.Address) []string {
	lines := []string{a.FullName, a.Street}
	if a.Complement != "" {
		lines = append(lines, a.Complement)
	}
	return append(lines, a.PostalCode+" "+a.City, a.Country)
}
