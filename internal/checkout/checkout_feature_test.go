package checkout_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/cart"
	"github.com/RoyceAzure/lab/storefront/internal/checkout"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model/command"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
	"github.com/RoyceAzure/lab/storefront/internal/payment"
	"github.com/RoyceAzure/lab/storefront/internal/profile"
	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
)

const sessionID = "feature-session"

type checkoutTestContext struct {
	ctx     context.Context
	carts   *cart.Store
	svc     *checkout.Service
	session *model.CheckoutSession
	err     error
}

func (c *checkoutTestContext) reset() {
	c.ctx = context.Background()
	c.carts = cart.NewStore(cart.NewMemoryRepo(), nil)
	profiles := profile.NewRepository(kv.NewMemoryStore())
	c.svc = checkout.NewService(c.carts, profiles, payment.NewGateway(payment.Config{PublicKey: "pk_test"}), nil, nil)
	c.session = nil
	c.err = nil
}

func (c *checkoutTestContext) anEmptyCart() error {
	s, err := c.carts.Get(c.ctx, sessionID)
	if err != nil {
		return err
	}
	if !s.IsEmpty() {
		return fmt.Errorf("expected empty cart, got %d lines", len(s.Lines))
	}
	return nil
}

func (c *checkoutTestContext) iAddProduct(id int, size, color string, qty int, price string) error {
	p := model.Product{ID: id, Title: fmt.Sprintf("product %d", id), Price: decimal.RequireFromString(price)}
	_, err := c.carts.Dispatch(c.ctx, sessionID, command.NewAddItemCommand(p, qty, size, color))
	return err
}

func (c *checkoutTestContext) iApplyPromoCode(code string) error {
	_, err := c.carts.Dispatch(c.ctx, sessionID, command.NewApplyPromoCodeCommand(code))
	return err
}

func (c *checkoutTestContext) theCartHasLines(n int) error {
	s, err := c.carts.Get(c.ctx, sessionID)
	if err != nil {
		return err
	}
	if len(s.Lines) != n {
		return fmt.Errorf("expected %d lines, got %d", n, len(s.Lines))
	}
	return nil
}

func (c *checkoutTestContext) theLineHasQuantity(id int, size, color string, qty int) error {
	s, err := c.carts.Get(c.ctx, sessionID)
	if err != nil {
		return err
	}
	idx := s.IndexOf(model.LineKey{ProductID: id, Size: size, Color: color})
	if idx < 0 {
		return fmt.Errorf("line %d/%s/%s not found", id, size, color)
	}
	if got := s.Lines[idx].Quantity; got != qty {
		return fmt.Errorf("expected quantity %d, got %d", qty, got)
	}
	return nil
}

func (c *checkoutTestContext) theCartSubtotalIs(want string) error {
	s, err := c.carts.Get(c.ctx, sessionID)
	if err != nil {
		return err
	}
	if !s.Subtotal.Equal(decimal.RequireFromString(want)) {
		return fmt.Errorf("expected subtotal %s, got %s", want, s.Subtotal)
	}
	return nil
}

func (c *checkoutTestContext) theCartDiscountRateIs(want string) error {
	s, err := c.carts.Get(c.ctx, sessionID)
	if err != nil {
		return err
	}
	if !s.DiscountRate.Equal(decimal.RequireFromString(want)) {
		return fmt.Errorf("expected discount rate %s, got %s", want, s.DiscountRate)
	}
	return nil
}

func (c *checkoutTestContext) iStartCheckout() error {
	c.session, c.err = c.svc.Begin(c.ctx, sessionID)
	return nil
}

func (c *checkoutTestContext) iSubmitValidShippingDetails() error {
	info := validShipping()
	c.session, c.err = c.svc.SubmitShipping(c.ctx, sessionID, &info)
	return c.err
}

func (c *checkoutTestContext) iSubmitShippingDetailsWithoutAZipCode() error {
	info := validShipping()
	info.ZipCode = ""
	_, c.err = c.svc.SubmitShipping(c.ctx, sessionID, &info)
	return nil
}

func (c *checkoutTestContext) thePaymentWindowIsClosed() error {
	_, c.err = c.svc.PaymentClosed(c.ctx, sessionID)
	return nil
}

func (c *checkoutTestContext) thePaymentSucceedsWithReference(ref string) error {
	c.session, c.err = c.svc.PaymentSucceeded(c.ctx, sessionID, ref)
	return c.err
}

func (c *checkoutTestContext) theCheckoutDeliveryFeeIs(want string) error {
	if c.err != nil {
		return fmt.Errorf("checkout failed: %v", c.err)
	}
	if !c.session.Summary.DeliveryFee.Equal(decimal.RequireFromString(want)) {
		return fmt.Errorf("expected delivery fee %s, got %s", want, c.session.Summary.DeliveryFee)
	}
	return nil
}

func (c *checkoutTestContext) theCheckoutStepIs(want string) error {
	cs, err := c.svc.Get(c.ctx, sessionID)
	if err != nil {
		return err
	}
	if cs.Step.String() != want {
		return fmt.Errorf("expected step %s, got %s", want, cs.Step)
	}
	return nil
}

func (c *checkoutTestContext) theOrderReferenceIs(want string) error {
	cs, err := c.svc.Get(c.ctx, sessionID)
	if err != nil {
		return err
	}
	if cs.OrderReference != want {
		return fmt.Errorf("expected order reference %s, got %s", want, cs.OrderReference)
	}
	return nil
}

func (c *checkoutTestContext) theCheckoutFailsWith(msg string) error {
	if c.err == nil {
		return fmt.Errorf("expected error containing %q", msg)
	}
	if !strings.Contains(c.err.Error(), msg) {
		return fmt.Errorf("expected error containing %q, got %v", msg, c.err)
	}
	return nil
}

func validShipping() model.ShippingInfo {
	return model.ShippingInfo{
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Phone:     "0800",
		Address:   "1 Analytical St",
		City:      "Lagos",
		State:     "Lagos",
		ZipCode:   "100001",
	}
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an empty cart$`, tc.anEmptyCart)

	// When steps
	ctx.Step(`^I add product (\d+) size "([^"]*)" color "([^"]*)" quantity (\d+) at (\d+(?:\.\d+)?)$`, tc.iAddProduct)
	ctx.Step(`^I apply promo code "([^"]*)"$`, tc.iApplyPromoCode)
	ctx.Step(`^I start checkout$`, tc.iStartCheckout)
	ctx.Step(`^I submit valid shipping details$`, tc.iSubmitValidShippingDetails)
	ctx.Step(`^I submit shipping details without a zip code$`, tc.iSubmitShippingDetailsWithoutAZipCode)
	ctx.Step(`^the payment window is closed$`, tc.thePaymentWindowIsClosed)
	ctx.Step(`^the payment succeeds with reference "([^"]*)"$`, tc.thePaymentSucceedsWithReference)

	// Then steps
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^the line for product (\d+) size "([^"]*)" color "([^"]*)" has quantity (\d+)$`, tc.theLineHasQuantity)
	ctx.Step(`^the cart subtotal is (\d+(?:\.\d+)?)$`, tc.theCartSubtotalIs)
	ctx.Step(`^the cart discount rate is (\d+(?:\.\d+)?)$`, tc.theCartDiscountRateIs)
	ctx.Step(`^the checkout delivery fee is (\d+(?:\.\d+)?)$`, tc.theCheckoutDeliveryFeeIs)
	ctx.Step(`^the checkout step is "([^"]*)"$`, tc.theCheckoutStepIs)
	ctx.Step(`^the order reference is "([^"]*)"$`, tc.theOrderReferenceIs)
	ctx.Step(`^the checkout fails with "([^"]*)"$`, tc.theCheckoutFailsWith)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
