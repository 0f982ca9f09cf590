package api

import "fundlog/pkg/fundlog"

type holdingPayload struct {
	Code     string  `json:"code"`
	Quantity float64 `json:"quantity"`
}

type replaceHoldingsResponse struct {
	Stored   int               `json:"stored"`
	Holdings []fundlog.Holding `json:"holdings"`
}

// refreshResponse is a snapshot plus the category filter applied to it.
// Categories lists every category in the unfiltered snapshot.
type refreshResponse struct {
	fundlog.Snapshot
	Category   string   `json:"category,omitempty"`
	Categories []string `json:"categories"`
}
