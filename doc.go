// Package acp is a Go client for the Agentic Checkout Protocol (ACP). It
// signs and sends checkout session requests, decodes responses into validated
// models, and verifies webhook deliveries.
//
// # Checkout
//
// Build a [Client] with [New] (or [NewClient] for a custom [Transport]) and call
// [Client.CreateSession], [Client.UpdateSession], [Client.GetSession],
// [Client.CompleteSession] or [Client.CancelSession]. Every request carries a
// Request-Id, Timestamp and Signature header; non-GET requests also carry an
// Idempotency-Key. Use [ContextWithRequestContext] to pin any of these values
// for a single call.
//
// API failures are returned as [*Error] and classify with errors.Is:
//
//	session, err := client.CreateSession(ctx, req)
//	if errors.Is(err, acp.ErrOutOfStock) {
//		// ask the buyer to change the cart
//	}
//
// # Webhooks
//
// [WebhookService.ParseWebhook] checks the signature of the raw body before
// decoding it. [WebhookHandler] wraps the service as an http.Handler and
// acknowledges deliveries with [WebhookAcknowledge].
//
// # Models
//
// Response models are built with ParseXxx functions from decoded JSON and are
// immutable. Payload returns the exact object they were built from.
package acp
