package rediskey

import "fmt"

// Row-change channels (global convention across services). The pattern forms
// are what the access manager psubscribes to.
const (
	SubscriptionPrefix = "subscriptions"
	EntitlementPrefix  = "entitlements"

	SubscriptionPattern = "subscriptions:*"
	EntitlementPattern  = "entitlements:*"
)

func NamespaceKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

// SubscriptionChannel returns "subscriptions:{businessID}".
func SubscriptionChannel(businessID string) string {
	return NamespaceKey(SubscriptionPrefix, businessID)
}

// EntitlementChannel returns "entitlements:{businessID}".
func EntitlementChannel(businessID string) string {
	return NamespaceKey(EntitlementPrefix, businessID)
}
