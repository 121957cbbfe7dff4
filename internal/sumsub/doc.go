// sumsub package is a client for the Sumsub identity verification (KYC) API.
//
// **signing**
// every request is authenticated with an HMAC-SHA256 signature over the request timestamp, method, path+query and body.
// Signer produces the X-App-Access-* headers for exactly one call; signatures are not cached or reused.
//
// **remote calls**
// Client wraps the endpoints used to issue WebSDK session links:
//
//	POST /resources/sdkIntegrations/levels/{levelName}/websdkLink?externalUserId={id}
//	GET  /resources/applicants/-;externalUserId={id}/one
//	POST /resources/applicants/{applicantId}/reset
//	POST /resources/applicants/{applicantId}/info/idDoc (multipart)
//
// **error handling**
// failures are returned as *Error with one of three kinds: transport, remote_rejection or protocol.
// Use KindOf() to classify an error returned by the client.
package sumsub
