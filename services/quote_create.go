package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// DefaultCodeAttempts bounds the collision retry loop when no limit is configured.
const DefaultCodeAttempts = 5

var (
	ErrNotQuoteOwner  = errors.New("quote belongs to another partner")
	ErrMissingClient  = errors.New("client name is required")
	ErrMissingPartner = errors.New("partner is required")
)

// CodeCollisionError is returned when every generated quote number was
// already taken.
type CodeCollisionError struct {
	Attempts int
	LastCode string
}

func (e *CodeCollisionError) Error() string {
	return fmt.Sprintf("could not allocate a unique quote number after %d attempts (last %s)", e.Attempts, e.LastCode)
}

func (e *CodeCollisionError) Unwrap() error { return ErrCodeCollision }

// QuoteLineRequest asks for one catalog item priced by margin or custom price.
type QuoteLineRequest struct {
	CatalogItemID string
	Price         PriceInput
}

// NewQuoteRequest carries everything a partner submits to create a quote.
type NewQuoteRequest struct {
	PartnerID   string
	Partner     PartnerSnapshot
	Client      ClientInfo
	ProjectName string
	EventDate   time.Time
	Terms       string
	Lines       []QuoteLineRequest
}

// LineError ties a pricing failure to the request line that caused it.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// PriceLine prices a catalog item for a quote line. Inactive items cannot
// be added to new quotes.
func PriceLine(item CatalogItem, in PriceInput) (QuoteLineItem, error) {
	if item.Status == CatalogInactive {
		return QuoteLineItem{}, fmt.Errorf("%w: %s", ErrCatalogItemInactive, item.Name)
	}
	pricing, err := ComputeLinePricing(item.BasePrice, in, item.MinMarginPct, item.MaxMarginPct)
	if err != nil {
		return QuoteLineItem{}, err
	}
	return QuoteLineItem{
		CatalogItemID: item.ID,
		Name:          item.Name,
		Category:      item.Category,
		Unit:          item.Unit,
		MinMarginPct:  item.MinMarginPct,
		MaxMarginPct:  item.MaxMarginPct,
		LinePricing:   pricing,
	}, nil
}

// PriceLines loads and prices each requested line in order. Failures are
// wrapped in *LineError with the 1-based line number.
func PriceLines(app core.App, lines []QuoteLineRequest) ([]QuoteLineItem, error) {
	items := make([]QuoteLineItem, 0, len(lines))
	for i, line := range lines {
		catalogItem, err := LoadCatalogItem(app, line.CatalogItemID)
		if err != nil {
			return nil, &LineError{Line: i + 1, Err: err}
		}
		item, err := PriceLine(catalogItem, line.Price)
		if err != nil {
			return nil, &LineError{Line: i + 1, Err: err}
		}
		item.SortOrder = i + 1
		items = append(items, item)
	}
	return items, nil
}

// BuildQuote resolves and prices every requested line and computes the
// finalized totals. The result is a draft with no quote number yet.
func BuildQuote(app core.App, req NewQuoteRequest, taxRatePct decimal.Decimal) (*Quote, error) {
	if req.PartnerID == "" {
		return nil, ErrMissingPartner
	}
	if strings.TrimSpace(req.Client.Name) == "" {
		return nil, ErrMissingClient
	}
	if len(req.Lines) == 0 {
		return nil, ErrEmptyQuote
	}

	items, err := PriceLines(app, req.Lines)
	if err != nil {
		return nil, err
	}

	q := &Quote{
		PartnerID:   req.PartnerID,
		Partner:     req.Partner,
		Client:      req.Client,
		ProjectName: strings.TrimSpace(req.ProjectName),
		EventDate:   req.EventDate,
		Terms:       req.Terms,
		Status:      StatusDraft,
		Items:       items,
	}
	totals, err := FinalizeTotals(q.Pricings(), taxRatePct)
	if err != nil {
		return nil, err
	}
	q.Totals = totals
	return q, nil
}

// QuoteWriter is the part of the store CreateQuoteWithCode needs.
type QuoteWriter interface {
	CreateQuote(q *Quote) (string, error)
}

// CodeOptions controls quote number generation.
type CodeOptions struct {
	Prefix      string
	MaxAttempts int
	Now         func() time.Time
	Random      RandomSource
}

// CreateQuoteWithCode stamps q with a fresh quote number and persists it,
// regenerating the number whenever the store reports a collision.
func CreateQuoteWithCode(store QuoteWriter, q *Quote, opts CodeOptions) (string, error) {
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultCodeAttempts
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		q.QuoteNumber = GenerateQuoteCode(opts.Prefix, q.Partner.Name, q.Client.Name, now(), opts.Random)
		id, err := store.CreateQuote(q)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, ErrCodeCollision) {
			return "", err
		}
		log.Printf("quote_create: quote number %s taken (attempt %d/%d), retrying", q.QuoteNumber, attempt, attempts)
	}
	return "", &CodeCollisionError{Attempts: attempts, LastCode: q.QuoteNumber}
}

// Actor is the authenticated caller of a quote operation.
type Actor struct {
	Role      ActorRole
	PartnerID string
}

// CanRead reports whether the actor may see q. Admins see every quote.
func (a Actor) CanRead(q *Quote) bool {
	return a.Role == RoleAdmin || (a.PartnerID != "" && a.PartnerID == q.PartnerID)
}

// TransitionRequest asks to move a quote to a new status.
type TransitionRequest struct {
	QuoteID      string
	To           QuoteStatus
	Actor        Actor
	Now          time.Time
	ValidityDays int
	// BlockExpired treats an expired quote as being in the expired state,
	// which has no outgoing transitions.
	BlockExpired bool
}

// StatusStore is the part of the store TransitionQuote needs.
type StatusStore interface {
	FindByID(id string) (*Quote, error)
	UpdateStatus(id string, expected, next QuoteStatus) error
}

// TransitionQuote validates and applies a status change. The write is
// conditional on the status read here, so a concurrent change surfaces as
// ErrStatusConflict instead of being overwritten.
func TransitionQuote(store StatusStore, req TransitionRequest) (*Quote, error) {
	q, err := store.FindByID(req.QuoteID)
	if err != nil {
		return nil, err
	}
	if req.Actor.Role == RolePartner && q.PartnerID != req.Actor.PartnerID {
		return nil, ErrNotQuoteOwner
	}

	current := q.Status
	if req.BlockExpired {
		now := req.Now
		if now.IsZero() {
			now = time.Now()
		}
		if IsExpired(q.CreatedAt, now, req.ValidityDays) {
			current = StatusExpired
		}
	}

	if err := CheckTransition(current, req.To, req.Actor.Role, len(q.Items)); err != nil {
		return nil, err
	}
	if err := store.UpdateStatus(q.ID, q.Status, req.To); err != nil {
		return nil, err
	}

	log.Printf("quote_status: quote %s moved %s -> %s by %s", q.QuoteNumber, q.Status, req.To, req.Actor.Role)
	q.Status = req.To
	return q, nil
}

// QuoteDeleter is the part of the store DeleteQuoteAs needs.
type QuoteDeleter interface {
	FindByID(id string) (*Quote, error)
	DeleteQuote(id string) error
}

// DeleteQuoteAs removes a quote if actor is allowed to.
func DeleteQuoteAs(store QuoteDeleter, id string, actor Actor) error {
	q, err := store.FindByID(id)
	if err != nil {
		return err
	}
	if err := CheckDelete(q.Status, actor.Role); err != nil {
		return err
	}
	return store.DeleteQuote(id)
}
