// File: utils/constants.go
package utils

import "time"

// CartCachePrefix is the prefix used for Redis cart keys.
const CartCachePrefix = "cart:"

// CartCacheTTL is how long an idle cart survives before it must be
// reconstructed from server state.
const CartCacheTTL = 7 * 24 * time.Hour

// SettingsCacheKey caches the platform settings document.
const SettingsCacheKey = "settings:platform"

// SettingsCacheTTL keeps fee changes applying within a minute.
const SettingsCacheTTL = time.Minute

// PayoutRunLockKey guards against overlapping payout runs across processes.
const PayoutRunLockKey = "lock:payout-run"

// PayoutRunLockTTL bounds how long a crashed run can hold the lock.
const PayoutRunLockTTL = 30 * time.Minute
