package service

import "errors"

var (
	// ErrShopNotActive means the shop record is missing or the app was
	// uninstalled; rate requests for it must yield empty rates.
	ErrShopNotActive = errors.New("shop is not active")

	// ErrSessionUnavailable means no usable Admin API session could be
	// resolved for the shop (missing token or flagged for re-auth).
	ErrSessionUnavailable = errors.New("shop session not found")

	// ErrInventoryLookupFailed means the bulk inventory query failed;
	// the whole computation is aborted.
	ErrInventoryLookupFailed = errors.New("inventory lookup failed")

	// ErrMissingScope means the stored session lacks a required access
	// scope and the merchant has to re-authorize the app.
	ErrMissingScope = errors.New("missing required access scope")
)
