package push

import "context"

// NopTransport accepts every payload without delivering it. Used when VAPID
// keys are not configured so the rest of the dispatch path (geofence
// matching, counting, metrics) still runs in development.
type NopTransport struct{}

func (NopTransport) Send(context.Context, Subscription, Payload) error { return nil }
