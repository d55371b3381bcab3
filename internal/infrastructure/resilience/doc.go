/*
Package resilience provides the circuit breaker guarding outbound calls to AI
providers and web pages.

	Closed --[ShouldTrip]--> Open --[Cooldown]--> Half-Open --[MaxRequests successes]--> Closed
	                                                  |
	                                              [failure]
	                                                  v
	                                                 Open

Usage:

	b := resilience.New("ai-openai", resilience.Settings{
		Cooldown:   30 * time.Second,
		ShouldTrip: func(c resilience.Counts) bool { return c.ConsecutiveFailures >= 5 },
	})
	text, err := resilience.Call(b, func() (string, error) { return provider.Complete(ctx, msgs, 1000) })

Each state change starts a new window; outcomes reported for an older window
are ignored.
*/
package resilience
