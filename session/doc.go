// Package session performs the two-legged login that turns a username and
// password into a user access token, and keeps the result in a
// credentials.Store.
//
//	store := cfg.Store()
//	client, _ := httpclient.New(store, cfg.ClientConfig())
//	sessions := session.NewManager(client, store)
//
//	user, err := sessions.Login(ctx, "alice@example.com", password)
//	if errors.Is(err, session.ErrInvalidCredentials) {
//	    // ...
//	}
//
// Requests made after a successful login are signed with the user token.
package session
