// Package httpclient signs and dispatches requests to the Ribbit REST
// platform and classifies the responses into typed errors.
//
// A Client reads credentials, endpoint and proxy from a credentials.Source
// on every call. Relative URIs are resolved against the endpoint; URIs
// starting with "http" are used as given.
//
// # Basic Usage
//
//	store := credentials.NewStore("https://rest.ribbit.com/rest/1.0/")
//	store.SetApplicationCredentials(consumerKey, secretKey, appID, domain, accountID)
//
//	client, err := httpclient.New(store, httpclient.Config{})
//	if err != nil {
//	    return err
//	}
//
//	resp, err := client.Get(ctx, "users/"+userID)
//	if httpclient.IsNotFound(err) {
//	    // ...
//	}
//
// # Creating Resources
//
// Post answers with the Location of the created resource when the platform
// sends one; Response.Value returns it, falling back to the body.
//
//	resp, err := client.Post(ctx, map[string]string{"name": "Bob"}, "users")
//	id := resp.Value()
//
// # Streaming Downloads
//
// GetToSink and GetToFile copy the body without buffering it. Error
// responses never reach the sink. A failure after bytes were written is
// reported with IsPartial.
//
//	_, err := client.GetToFile(ctx, "media/app/greeting.mp3", "/tmp/greeting.mp3", "audio/mpeg")
//
// SignedURL embeds a signed GET into the URL itself, for players that fetch
// media without custom headers.
package httpclient
