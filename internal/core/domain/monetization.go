package domain

// MonetizationSettings are the per-user payout and ads preferences.
type MonetizationSettings struct {
	Enabled           bool    `json:"enabled"`
	AdsEnabled        bool    `json:"adsEnabled"`
	SubscriptionPrice float64 `json:"subscriptionPrice"`
	PayoutEmail       string  `json:"payoutEmail"`
}

// MonetizationCheckResult is stored as the result of a monetization_check job.
type MonetizationCheckResult struct {
	Eligible     bool     `json:"eligible"`
	PublicVideos int      `json:"publicVideos"`
	TotalViews   int64    `json:"totalViews"`
	Reasons      []string `json:"reasons,omitempty"`
}

const (
	MinPublicVideosForMonetization = 3
	MinViewsForMonetization        = 10000
)
