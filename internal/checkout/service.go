package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
	"github.com/RoyceAzure/lab/storefront/internal/payment"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type CartStore interface {
	Get(ctx context.Context, sessionID string) (model.CartState, error)
	Clear(ctx context.Context, sessionID string) (model.CartState, error)
}

type ProfileRepository interface {
	Get(ctx context.Context, sessionID string) (*model.UserProfile, error)
	Save(ctx context.Context, sessionID string, profile model.UserProfile) error
}

type PaymentGateway interface {
	Rate() decimal.Decimal
	Currency() string
	NewRequest(email string, amount decimal.Decimal) (payment.Request, error)
}

type IService interface {
	Begin(ctx context.Context, sessionID string) (*model.CheckoutSession, error)
	Get(ctx context.Context, sessionID string) (*model.CheckoutSession, error)
	UpdateShipping(ctx context.Context, sessionID string, info model.ShippingInfo) (*model.CheckoutSession, error)
	SubmitShipping(ctx context.Context, sessionID string, info *model.ShippingInfo) (*model.CheckoutSession, error)
	Back(ctx context.Context, sessionID string) (*model.CheckoutSession, error)
	Abandon(ctx context.Context, sessionID string) error
	PaymentRequest(ctx context.Context, sessionID string) (payment.Request, error)
	PaymentSucceeded(ctx context.Context, sessionID string, reference string) (*model.CheckoutSession, error)
	PaymentClosed(ctx context.Context, sessionID string) (*model.CheckoutSession, error)
}

var _ IService = (*Service)(nil)

const (
	DefaultSessionTTL    = 30 * time.Minute
	DefaultSweepInterval = time.Minute
)

/*
Service 每個購物 session 最多一個進行中的結帳
閒置超過 sessionTTL 的結帳會被背景清除，請使用 defer 呼叫 Stop()
*/
type Service struct {
	carts     CartStore
	profiles  ProfileRepository
	gateway   PaymentGateway
	publisher EventPublisher
	logger    *zerolog.Logger
	now       func() time.Time

	sessionTTL    time.Duration
	sweepInterval time.Duration

	// mu 只保護 sessions，單一結帳的狀態由 checkoutSession.mu 保護
	mu       sync.Mutex
	sessions map[string]*checkoutSession

	cancel chan struct{}
	once   sync.Once
}

type checkoutSession struct {
	mu sync.Mutex
	model.CheckoutSession
	pendingReference string
	lastSeen         atomic.Int64
}

func (cs *checkoutSession) touch(now time.Time) {
	cs.lastSeen.Store(now.UnixNano())
}

type Option func(*Service)

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

func WithSweepInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}

func NewService(carts CartStore, profiles ProfileRepository, gateway PaymentGateway, publisher EventPublisher, logger *zerolog.Logger, opts ...Option) *Service {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	s := &Service{
		carts:         carts,
		profiles:      profiles,
		gateway:       gateway,
		publisher:     publisher,
		logger:        logger,
		now:           time.Now,
		sessionTTL:    DefaultSessionTTL,
		sweepInterval: DefaultSweepInterval,
		sessions:      make(map[string]*checkoutSession),
		cancel:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.background()
	return s
}

func (s *Service) snapshot(cs *checkoutSession) *model.CheckoutSession {
	out := cs.CheckoutSession
	return &out
}

// acquire 取得並鎖住 session 的結帳，回傳前確認它沒有被取代或移除
// 鎖的順序固定為 checkoutSession.mu -> Service.mu
func (s *Service) acquire(sessionID string) (*checkoutSession, error) {
	s.mu.Lock()
	cs, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	cs.mu.Lock()
	s.mu.Lock()
	current := s.sessions[sessionID] == cs
	s.mu.Unlock()
	if !current {
		cs.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	cs.touch(s.now())
	return cs, nil
}

// Len 目前保存的結帳數
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Service) sweep() {
	now := s.now().UnixNano()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cs := range s.sessions {
		if time.Duration(now-cs.lastSeen.Load()) >= s.sessionTTL {
			delete(s.sessions, id)
		}
	}
}

func (s *Service) background() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.cancel:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Service) Stop() {
	s.once.Do(func() {
		close(s.cancel)
	})
}

func (s *Service) summarize(cart model.CartState) model.OrderSummary {
	return Summarize(cart, s.gateway.Rate(), s.gateway.Currency())
}

func (s *Service) publish(ctx context.Context, evt event.Event) {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Error().Err(err).
			Str("session_id", evt.GetAggregateID()).
			Str("event", string(evt.Type())).
			Msg("failed to publish checkout event")
	}
}

// Begin 進入結帳，已有的結帳會被重新開始
// 有保存的 profile 時預填表單，否則視為訪客
func (s *Service) Begin(ctx context.Context, sessionID string) (*model.CheckoutSession, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	shipping := model.ShippingInfo{Country: model.DefaultCountry}
	guest := true
	p, err := s.profiles.Get(ctx, sessionID)
	switch {
	case err == nil && p != nil:
		guest = false
		shipping = Prefill(*p)
	case err != nil:
		// 讀不到 profile 不影響結帳，以訪客身分繼續
		s.logger.Debug().Err(err).Str("session_id", sessionID).Msg("checkout without stored profile")
	}

	now := s.now().UTC()
	cs := &checkoutSession{CheckoutSession: model.CheckoutSession{
		ID:        uuid.NewString(),
		Step:      model.StepShippingInfo,
		Guest:     guest,
		Shipping:  shipping,
		Summary:   s.summarize(cart),
		CreatedAt: now,
		UpdatedAt: now,
	}}
	cs.touch(now)

	s.mu.Lock()
	s.sessions[sessionID] = cs
	out := s.snapshot(cs)
	s.mu.Unlock()

	s.logger.Info().
		Str("session_id", sessionID).
		Str("checkout_id", cs.ID).
		Bool("guest", guest).
		Msg("checkout started")
	s.publish(ctx, event.NewCheckoutStartedEvent(sessionID, guest, out.Summary.Total, cart.CloneLines()))
	return out, nil
}

// Prefill 名字以第一個空白切開：名 = 第一個字，姓 = 其餘
func Prefill(p model.UserProfile) model.ShippingInfo {
	first, last := "", ""
	if parts := strings.Fields(p.Name); len(parts) > 0 {
		first = parts[0]
		last = strings.Join(parts[1:], " ")
	}
	country := p.Country
	if country == "" {
		country = model.DefaultCountry
	}
	return model.ShippingInfo{
		Email:     p.Email,
		FirstName: first,
		LastName:  last,
		Phone:     p.Phone,
		Address:   p.Address,
		City:      p.City,
		State:     p.State,
		Country:   country,
	}
}

func (s *Service) Get(ctx context.Context, sessionID string) (*model.CheckoutSession, error) {
	cs, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer cs.mu.Unlock()
	return s.snapshot(cs), nil
}

// UpdateShipping 只更新表單內容，不轉換步驟
// 密碼不會回傳給前端，沒有帶密碼時沿用已保存的
func (s *Service) UpdateShipping(ctx context.Context, sessionID string, info model.ShippingInfo) (*model.CheckoutSession, error) {
	cs, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer cs.mu.Unlock()
	if cs.Step != model.StepShippingInfo {
		return nil, fmt.Errorf("%w: shipping is read-only at %s", ErrInvalidTransition, cs.Step)
	}
	if info.Country == "" {
		info.Country = model.DefaultCountry
	}
	if info.Password == "" {
		info.Password = cs.Shipping.Password
	}
	cs.Shipping = info
	cs.UpdatedAt = s.now().UTC()
	return s.snapshot(cs), nil
}

// SubmitShipping info 為 nil 時使用已保存的表單
func (s *Service) SubmitShipping(ctx context.Context, sessionID string, info *model.ShippingInfo) (*model.CheckoutSession, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	cs, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer cs.mu.Unlock()
	to, err := Next(cs.Step, TriggerSubmitShipping)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	if info != nil {
		if info.Country == "" {
			info.Country = model.DefaultCountry
		}
		if info.Password == "" {
			info.Password = cs.Shipping.Password
		}
		cs.Shipping = *info
	}
	if err := Validate(cs.Shipping, cs.Guest); err != nil {
		return nil, err
	}

	cs.Step = to
	cs.Summary = s.summarize(cart)
	cs.UpdatedAt = s.now().UTC()
	return s.snapshot(cs), nil
}

func (s *Service) Back(ctx context.Context, sessionID string) (*model.CheckoutSession, error) {
	cs, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer cs.mu.Unlock()
	to, err := Next(cs.Step, TriggerBack)
	if err != nil {
		return nil, err
	}
	cs.Step = to
	cs.pendingReference = ""
	cs.UpdatedAt = s.now().UTC()
	return s.snapshot(cs), nil
}

// Abandon 丟棄結帳，購物車保持不變
func (s *Service) Abandon(ctx context.Context, sessionID string) error {
	cs, err := s.acquire(sessionID)
	if err != nil {
		return err
	}
	step := cs.Step
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	cs.mu.Unlock()

	if step != model.StepConfirmed {
		s.logger.Info().Str("session_id", sessionID).Stringer("step", step).Msg("checkout abandoned")
		s.publish(ctx, event.NewCheckoutAbandonedEvent(sessionID, step))
	}
	return nil
}

// PaymentRequest 付款元件初始化參數，只能在 Payment 步驟取得
// 金額以當下購物車重新計算
func (s *Service) PaymentRequest(ctx context.Context, sessionID string) (payment.Request, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return payment.Request{}, fmt.Errorf("load cart: %w", err)
	}

	cs, err := s.acquire(sessionID)
	if err != nil {
		return payment.Request{}, err
	}
	defer cs.mu.Unlock()
	if cs.Step != model.StepPayment {
		return payment.Request{}, fmt.Errorf("%w: payment not available at %s", ErrInvalidTransition, cs.Step)
	}
	if cart.IsEmpty() {
		return payment.Request{}, ErrEmptyCart
	}

	cs.Summary = s.summarize(cart)
	req, err := s.gateway.NewRequest(cs.Shipping.Email, cs.Summary.ConvertedTotal)
	if err != nil {
		return payment.Request{}, err
	}
	cs.pendingReference = req.Reference
	cs.UpdatedAt = s.now().UTC()

	s.logger.Info().
		Str("session_id", sessionID).
		Str("reference", req.Reference).
		Int64("amount", req.AmountMinorUnits).
		Str("currency", req.Currency).
		Msg("payment requested")
	return req, nil
}

// PaymentSucceeded 付款成功回呼
// 清空購物車後無法復原；訪客要求建立帳號時寫入 profile，寫入失敗只記錄不回滾
// 狀態轉換在 session 鎖內完成，清空購物車、寫入 profile、發布事件都在鎖外
func (s *Service) PaymentSucceeded(ctx context.Context, sessionID string, reference string) (*model.CheckoutSession, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to load cart on payment success")
	}
	lines := cart.CloneLines()

	cs, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	to, err := Next(cs.Step, TriggerPaymentSuccess)
	if err != nil {
		cs.mu.Unlock()
		return nil, err
	}

	if reference == "" {
		reference = cs.pendingReference
	}
	shipping := cs.Shipping
	createAccount := cs.Guest && cs.Shipping.CreateAccount
	summary := cs.Summary

	cs.Step = to
	cs.OrderReference = reference
	cs.pendingReference = ""
	cs.Shipping.Password = ""
	cs.UpdatedAt = s.now().UTC()
	out := s.snapshot(cs)
	cs.mu.Unlock()

	if _, err := s.carts.Clear(ctx, sessionID); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to clear cart after payment")
	}

	accountCreated := false
	if createAccount {
		if err := s.profiles.Save(ctx, sessionID, accountProfile(shipping)); err != nil {
			s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to create account after payment")
		} else {
			accountCreated = true
		}
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Str("reference", reference).
		Str("total", summary.Total.StringFixed(2)).
		Bool("account_created", accountCreated).
		Msg("checkout confirmed")
	s.publish(ctx, event.NewCheckoutConfirmedEvent(sessionID, reference, shipping.Email, summary, lines, accountCreated))
	return out, nil
}

// PaymentClosed 使用者關閉付款或付款失敗，停在 Payment，購物車不動
func (s *Service) PaymentClosed(ctx context.Context, sessionID string) (*model.CheckoutSession, error) {
	cs, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	if step := cs.Step; step != model.StepPayment {
		cs.mu.Unlock()
		return nil, fmt.Errorf("%w: payment close at %s", ErrInvalidTransition, step)
	}

	reference := cs.pendingReference
	cs.UpdatedAt = s.now().UTC()
	out := s.snapshot(cs)
	cs.mu.Unlock()

	s.logger.Warn().
		Str("session_id", sessionID).
		Str("reference", reference).
		Msg("payment cancelled")
	s.publish(ctx, event.NewPaymentClosedEvent(sessionID, reference))
	return out, nil
}

func accountProfile(info model.ShippingInfo) model.UserProfile {
	return model.UserProfile{
		Email:   info.Email,
		Name:    info.FullName(),
		Phone:   info.Phone,
		Address: info.Address,
		City:    info.City,
		State:   info.State,
		Country: info.Country,
	}
}
