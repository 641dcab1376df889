// Package signing builds the OAuth-style Authorization header the Ribbit
// platform expects on every REST call.
//
// A signature covers the request method, the normalized target URL and the
// sorted parameter set (protocol parameters, optional x_auth bootstrap
// credentials, an optional body signature and any query parameters already
// on the target). Both digests are HMAC-SHA1 keyed with
// "<secret key>&<access secret>".
//
// # Usage
//
//	signer := signing.NewSigner()
//	sig, err := signer.Sign(http.MethodPost, "https://rest.ribbit.com/rest/1.0/devices", body, nil, creds)
//	req.Header.Set("Authorization", sig.Header)
//
// Verify performs the server-side recomputation and is used by the fake
// platform in testutil.
package signing
