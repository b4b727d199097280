// File: internal/infra/web/handlers.go
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"stockus-platform/internal/domain"
	"stockus-platform/internal/domain/model"
	"stockus-platform/internal/domain/ports/adapter"
	"stockus-platform/internal/usecase"
)

var validate = validator.New()

// ===== Wire helpers =====

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// writeDomainError maps sentinel errors to HTTP statuses. Anything unmapped
// is a 500 with a generic body; the cause stays in the server log.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrPromoInvalid),
		errors.Is(err, domain.ErrReferralInvalid),
		errors.Is(err, domain.ErrSelfReferral):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrAlreadyMember),
		errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrCohortNotOpen):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ===== Webhook =====

// webhookPayload mirrors the gateway's notification JSON.
type webhookPayload struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
}

// webhookHandler terminates the gateway's server-to-server notifications.
// Response codes steer the gateway's retry loop: 2xx stops it, 4xx stops it
// (the request can never succeed), 5xx makes it retry.
func webhookHandler(reconcileUC usecase.ReconcileUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload webhookPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		n := adapter.StatusNotification{
			OrderID:           payload.OrderID,
			TransactionID:     payload.TransactionID,
			TransactionStatus: payload.TransactionStatus,
			FraudStatus:       payload.FraudStatus,
			PaymentType:       payload.PaymentType,
			StatusCode:        payload.StatusCode,
			GrossAmount:       payload.GrossAmount,
			SignatureKey:      payload.SignatureKey,
		}

		res, err := reconcileUC.Process(r.Context(), n)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrBadSignature):
				writeError(w, http.StatusForbidden, "invalid signature")
			case errors.Is(err, domain.ErrNotFound):
				writeError(w, http.StatusNotFound, "unknown order")
			default:
				writeError(w, http.StatusInternalServerError, "processing failed")
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"order_id":  res.Payment.OrderID,
			"duplicate": res.Duplicate,
		})
	}
}

// ===== Auth =====

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Tier  string `json:"tier"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, Tier: string(u.Tier)}
}

func registerHandler(userUC usecase.UserUseCase, am *AuthManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if !readJSON(w, r, &req) {
			return
		}
		user, err := userUC.Register(r.Context(), req.Email, req.Name, req.Password)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if _, err := am.Mint(w, user); err != nil {
			writeError(w, http.StatusInternalServerError, "session failed")
			return
		}
		writeJSON(w, http.StatusCreated, toUserResponse(user))
	}
}

func loginHandler(userUC usecase.UserUseCase, am *AuthManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !readJSON(w, r, &req) {
			return
		}
		user, err := userUC.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if _, err := am.Mint(w, user); err != nil {
			writeError(w, http.StatusInternalServerError, "session failed")
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(user))
	}
}

func logoutHandler(am *AuthManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		am.Clear(w)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type profileResponse struct {
	User         userResponse      `json:"user"`
	Subscription *subscriptionJSON `json:"subscription,omitempty"`
	Referral     *referralJSON     `json:"referral,omitempty"`
}

type subscriptionJSON struct {
	Status  string    `json:"status"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

type referralJSON struct {
	Code          string `json:"code"`
	TotalUses     int    `json:"total_uses"`
	RewardsEarned int64  `json:"rewards_earned"`
}

func meHandler(userUC usecase.UserUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFrom(r.Context())
		p, err := userUC.Profile(r.Context(), claims.Subject)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		resp := profileResponse{User: toUserResponse(p.User)}
		if p.Subscription != nil {
			resp.Subscription = &subscriptionJSON{
				Status:  string(p.Subscription.Status),
				StartAt: p.Subscription.StartAt,
				EndAt:   p.Subscription.EndAt,
			}
		}
		if p.Referral != nil {
			resp.Referral = &referralJSON{
				Code:          p.Referral.Code,
				TotalUses:     p.Referral.TotalUses,
				RewardsEarned: p.Referral.RewardsEarned,
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ===== Checkout =====

type subscriptionCheckoutRequest struct {
	PromoCode    string `json:"promo_code" validate:"omitempty,max=32"`
	ReferralCode string `json:"referral_code" validate:"omitempty,max=32"`
}

type workshopCheckoutRequest struct {
	CohortID  string `json:"cohort_id" validate:"required,uuid4"`
	PromoCode string `json:"promo_code" validate:"omitempty,max=32"`
}

type checkoutResponse struct {
	OrderID        string `json:"order_id"`
	Token          string `json:"token"`
	RedirectURL    string `json:"redirect_url"`
	Amount         int64  `json:"amount"`
	OriginalAmount int64  `json:"original_amount"`
	Discount       int64  `json:"discount"`
}

func toCheckoutResponse(res *usecase.CheckoutResult) checkoutResponse {
	return checkoutResponse{
		OrderID:        res.OrderID,
		Token:          res.Token,
		RedirectURL:    res.RedirectURL,
		Amount:         res.Amount,
		OriginalAmount: res.OriginalAmount,
		Discount:       res.Discount,
	}
}

func subscriptionCheckoutHandler(checkoutUC usecase.CheckoutUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscriptionCheckoutRequest
		if !readJSON(w, r, &req) {
			return
		}
		claims := ClaimsFrom(r.Context())
		res, err := checkoutUC.SubscriptionCheckout(r.Context(), claims.Subject, req.PromoCode, req.ReferralCode)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toCheckoutResponse(res))
	}
}

func workshopCheckoutHandler(checkoutUC usecase.CheckoutUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req workshopCheckoutRequest
		if !readJSON(w, r, &req) {
			return
		}
		claims := ClaimsFrom(r.Context())
		res, err := checkoutUC.WorkshopCheckout(r.Context(), claims.Subject, req.CohortID, req.PromoCode)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toCheckoutResponse(res))
	}
}

type promoValidateRequest struct {
	Code string `json:"code" validate:"required,max=32"`
}

type promoValidateResponse struct {
	Valid           bool `json:"valid"`
	DiscountPercent int  `json:"discount_percent,omitempty"`
}

func promoValidateHandler(checkoutUC usecase.CheckoutUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req promoValidateRequest
		if !readJSON(w, r, &req) {
			return
		}
		promo, err := checkoutUC.PrevalidatePromo(r.Context(), req.Code)
		if err != nil {
			// An unusable code is a normal answer here, not a request error.
			if errors.Is(err, domain.ErrPromoInvalid) {
				writeJSON(w, http.StatusOK, promoValidateResponse{Valid: false})
				return
			}
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, promoValidateResponse{
			Valid:           true,
			DiscountPercent: promo.DiscountPercent,
		})
	}
}

type paymentJSON struct {
	OrderID   string     `json:"order_id"`
	Kind      string     `json:"kind"`
	Status    string     `json:"status"`
	Amount    int64      `json:"amount"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func paymentHistoryHandler(checkoutUC usecase.CheckoutUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFrom(r.Context())
		records, err := checkoutUC.History(r.Context(), claims.Subject, 50)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]paymentJSON, 0, len(records))
		for _, p := range records {
			out = append(out, paymentJSON{
				OrderID:   p.OrderID,
				Kind:      string(p.Kind),
				Status:    string(p.Status),
				Amount:    p.Amount,
				PaidAt:    p.PaidAt,
				CreatedAt: p.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// ===== Content =====

type reportJSON struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Summary        string `json:"summary"`
	Ticker         string `json:"ticker,omitempty"`
	Body           string `json:"body,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
	TargetPrice    *int64 `json:"target_price,omitempty"`
	FreePreview    bool   `json:"free_preview"`
	Locked         bool   `json:"locked"`
}

func toReportJSON(r *model.Report) reportJSON {
	return reportJSON{
		ID:             r.ID,
		Title:          r.Title,
		Summary:        r.Summary,
		Ticker:         r.Ticker,
		Body:           r.Body,
		Recommendation: r.Recommendation,
		TargetPrice:    r.TargetPrice,
		FreePreview:    r.FreePreview,
		Locked:         r.Locked,
	}
}

func reportsListHandler(contentUC usecase.ContentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reports, err := contentUC.ListReports(r.Context(), TierFrom(r.Context()))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]reportJSON, 0, len(reports))
		for _, rep := range reports {
			out = append(out, toReportJSON(rep))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func reportGetHandler(contentUC usecase.ContentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		report, err := contentUC.GetReport(r.Context(), TierFrom(r.Context()), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toReportJSON(report))
	}
}

type cohortJSON struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Price    *int64    `json:"price,omitempty"`
	StartsAt time.Time `json:"starts_at"`
}

func cohortsListHandler(contentUC usecase.ContentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cohorts, err := contentUC.ListOpenCohorts(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]cohortJSON, 0, len(cohorts))
		for _, c := range cohorts {
			out = append(out, cohortJSON{ID: c.ID, Title: c.Title, Price: c.Price, StartsAt: c.StartsAt})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// ===== Admin =====

type setTierRequest struct {
	Tier string `json:"tier" validate:"required,oneof=free member"`
}

func adminSetTierHandler(userUC usecase.UserUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setTierRequest
		if !readJSON(w, r, &req) {
			return
		}
		tier, err := model.ParseTier(req.Tier)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		user, err := userUC.SetTier(r.Context(), chi.URLParam(r, "id"), tier)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(user))
	}
}

func adminUsersListHandler(userUC usecase.UserUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := userUC.List(r.Context(), 0, 200)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]userResponse, 0, len(users))
		for _, u := range users {
			out = append(out, toUserResponse(u))
		}
		writeJSON(w, http.StatusOK, out)
	}
}
