// Package credentials holds the application and user key material that the
// signed-request engine reads on every call.
//
// A Source is consulted once per request and must hand back a consistent
// snapshot: the consumer key, secret key, access token and access secret are
// returned together as a value, so a concurrent login or logout can never
// produce a signature that mixes two sessions.
//
// # Usage
//
//	store := credentials.NewStore("https://rest.ribbit.com/rest/1.0/")
//	store.SetApplicationCredentials(consumerKey, secretKey, appID, domain, accountID)
//
//	client, err := httpclient.New(store, httpclient.Config{})
package credentials
