package service

import "time"

// Clock supplies the current time. Services take it as a dependency so
// tests can pin timestamps and quota windows.
type Clock func() time.Time
