package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		subscriptionsGrantedTotal,
		subscriptionsCancelledTotal,
		promoRedemptionsTotal,
		referralRewardsTotal,
	)
}

var (
	subscriptionsGrantedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_granted_total",
			Help: "Subscriptions created, labeled by source (webhook/admin).",
		},
		[]string{"source"},
	)

	subscriptionsCancelledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_cancelled_total",
			Help: "Subscriptions cancelled, labeled by source (webhook/admin).",
		},
		[]string{"source"},
	)

	promoRedemptionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "promo_redemptions_total",
			Help: "Promo usage increments applied by settled payments.",
		},
	)

	referralRewardsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "referral_rewards_total",
			Help: "Referral rewards recorded by settled payments.",
		},
	)
)

func IncSubscriptionGranted(source string)   { subscriptionsGrantedTotal.WithLabelValues(norm(source)).Inc() }
func IncSubscriptionCancelled(source string) { subscriptionsCancelledTotal.WithLabelValues(norm(source)).Inc() }
func IncPromoRedemption()                    { promoRedemptionsTotal.Inc() }
func IncReferralReward()                     { referralRewardsTotal.Inc() }
