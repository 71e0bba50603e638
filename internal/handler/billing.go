package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/kondate-app/kondate/internal/auth"
	"github.com/kondate-app/kondate/internal/billing"
	"github.com/kondate-app/kondate/internal/model"
	"github.com/kondate-app/kondate/internal/store"
)

type BillingHandler struct {
	client    *billing.Client
	userStore *store.UserStore
	returnURL string
	logger    *slog.Logger
}

func NewBillingHandler(client *billing.Client, us *store.UserStore, returnURL string, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{
		client:    client,
		userStore: us,
		returnURL: returnURL,
		logger:    logger,
	}
}

// Checkout starts a Stripe checkout for the PRO plan, creating the
// Stripe customer on first use.
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if !h.client.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "billing not configured")
		return
	}

	user, err := h.userStore.GetByID(auth.UserID(r.Context()))
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	if user.Plan == model.PlanPro {
		writeError(w, http.StatusConflict, "already on the pro plan")
		return
	}

	customerID := ""
	if user.StripeCustomerID != nil {
		customerID = *user.StripeCustomerID
	}
	if customerID == "" {
		customerID, err = h.client.CreateCustomer(user.Email)
		if err != nil {
			h.logger.Error("create stripe customer", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to start checkout")
			return
		}
		if err := h.userStore.UpdateStripeCustomerID(user.ID, customerID); err != nil {
			h.logger.Error("save stripe customer id", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to start checkout")
			return
		}
	}

	url, err := h.client.CreateCheckoutSession(customerID)
	if err != nil {
		h.logger.Error("create checkout session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start checkout")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Portal opens the Stripe billing portal for plan management.
func (h *BillingHandler) Portal(w http.ResponseWriter, r *http.Request) {
	if !h.client.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "billing not configured")
		return
	}

	user, err := h.userStore.GetByID(auth.UserID(r.Context()))
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		writeError(w, http.StatusConflict, "no billing account")
		return
	}

	url, err := h.client.CreateBillingPortalSession(*user.StripeCustomerID, h.returnURL)
	if err != nil {
		h.logger.Error("create portal session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to open portal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Webhook applies Stripe subscription events to the user's plan.
// Signature verification rejects forged calls.
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 65536))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	event, err := h.client.ConstructWebhookEvent(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		h.handleCheckoutCompleted(event)
	case "customer.subscription.deleted":
		h.handleSubscriptionDeleted(event)
	case "customer.subscription.updated":
		h.handleSubscriptionUpdated(event)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *BillingHandler) handleCheckoutCompleted(event stripe.Event) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		h.logger.Error("webhook unmarshal checkout session", "error", err)
		return
	}
	if sess.Customer == nil {
		h.logger.Warn("webhook checkout session missing customer")
		return
	}

	user, err := h.userByCustomer(sess.Customer.ID, sess.CustomerDetails)
	if err != nil || user == nil {
		h.logger.Error("webhook find user", "customer", sess.Customer.ID, "error", err)
		return
	}

	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		if err := h.userStore.UpdateStripeCustomerID(user.ID, sess.Customer.ID); err != nil {
			h.logger.Error("webhook save customer id", "error", err)
		}
	}

	if err := h.userStore.UpdatePlan(user.ID, model.PlanPro); err != nil {
		h.logger.Error("webhook upgrade plan", "error", err)
		return
	}
	h.logger.Info("plan upgraded", "user_id", user.ID)
}

func (h *BillingHandler) handleSubscriptionDeleted(event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.logger.Error("webhook unmarshal subscription", "error", err)
		return
	}
	if sub.Customer == nil {
		return
	}

	user, err := h.userStore.GetByStripeCustomerID(sub.Customer.ID)
	if err != nil || user == nil {
		return
	}

	if err := h.userStore.UpdatePlan(user.ID, model.PlanFree); err != nil {
		h.logger.Error("webhook downgrade plan", "error", err)
		return
	}
	h.logger.Info("plan downgraded", "user_id", user.ID)
}

func (h *BillingHandler) handleSubscriptionUpdated(event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.logger.Error("webhook unmarshal subscription", "error", err)
		return
	}
	if sub.Customer == nil {
		return
	}

	user, err := h.userStore.GetByStripeCustomerID(sub.Customer.ID)
	if err != nil || user == nil {
		return
	}

	plan := model.PlanFree
	if sub.Status == stripe.SubscriptionStatusActive || sub.Status == stripe.SubscriptionStatusTrialing {
		plan = model.PlanPro
	}
	if user.Plan == plan {
		return
	}
	if err := h.userStore.UpdatePlan(user.ID, plan); err != nil {
		h.logger.Error("webhook update plan", "error", err)
	}
}

// userByCustomer resolves the webhook's customer to a local user,
// falling back to the checkout email for first-time customers.
func (h *BillingHandler) userByCustomer(customerID string, details *stripe.CheckoutSessionCustomerDetails) (*model.User, error) {
	user, err := h.userStore.GetByStripeCustomerID(customerID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	if details != nil && details.Email != "" {
		return h.userStore.GetByEmail(details.Email)
	}
	return nil, nil
}
